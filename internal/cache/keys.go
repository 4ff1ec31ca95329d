package cache

import "strings"

const (
	GlobalKeyPrefix = "synapse"
)

// Services and object types used in keys.
const (
	ServiceRoom         = "room"
	ServicePresence     = "presence"
	ServiceGamification = "gamification"

	TypeLeaderboard = "leaderboard"
	TypeQuiz        = "quiz"
	TypeCatalog     = "catalog"
)

// GenerateCacheKey builds prefix:service:type:id, with optional params joined
// by "_" as a trailing segment.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

func LeaderboardKey(roomID string) string {
	return GenerateCacheKey(ServiceRoom, TypeLeaderboard, roomID)
}

func PresenceKey(quizID string) string {
	return GenerateCacheKey(ServicePresence, TypeQuiz, quizID)
}

func AchievementCatalogKey() string {
	return GenerateCacheKey(ServiceGamification, TypeCatalog, "achievements")
}
