package util

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
)

func TestNewULID(t *testing.T) {
	a := NewULID()
	b := NewULID()
	assert.NotEqual(t, a, b)
	_, err := ulid.Parse(a)
	assert.NoError(t, err)
}

func TestNewID(t *testing.T) {
	id := NewID()
	assert.True(t, IsUUID(id))
	assert.False(t, IsUUID("not-a-uuid"))
}

func TestNullHelpers(t *testing.T) {
	assert.False(t, StringToNullString("").Valid)
	assert.Equal(t, "x", StringToNullString("x").String)
	assert.False(t, TimeToNullTime(time.Time{}).Valid)
	now := time.Now()
	assert.True(t, TimeToNullTime(now).Valid)
}
