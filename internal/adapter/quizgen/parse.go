package quizgen

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"synapse/internal/domain"
)

// Greedy on purpose: the first '[' through the last ']'.
var jsonArrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)

var defaultOptions = []string{"A", "B", "C", "D"}

// stripThinking drops a leading <think>...</think> block some reasoning
// models emit before the answer.
func stripThinking(s string) string {
	start := strings.Index(s, "<think>")
	if start == -1 {
		return s
	}
	end := strings.Index(s, "</think>")
	if end == -1 || end < start {
		return s
	}
	return strings.TrimSpace(s[:start] + s[end+len("</think>"):])
}

// parseQuestions extracts and normalises the question array from a raw
// completion.
func parseQuestions(raw string) ([]domain.GeneratedQuestion, error) {
	match := jsonArrayPattern.FindString(stripThinking(raw))
	if match == "" {
		return nil, domain.NewParseError("no JSON array found in model response", nil)
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(match), &items); err != nil {
		return nil, domain.NewParseError("model response is not a valid JSON array", err)
	}
	if len(items) == 0 {
		return nil, domain.NewEmptyResultError()
	}

	out := make([]domain.GeneratedQuestion, 0, len(items))
	for i, item := range items {
		out = append(out, normalise(i, item))
	}
	return out, nil
}

type rawQuestion struct {
	Question    json.RawMessage `json:"question"`
	Type        json.RawMessage `json:"type"`
	Options     json.RawMessage `json:"options"`
	Correct     json.RawMessage `json:"correct"`
	Explanation json.RawMessage `json:"explanation"`
}

// normalise fills defaults for every field the model left out or got
// the wrong shape for. Entries that are not objects become all-default.
func normalise(index int, item json.RawMessage) domain.GeneratedQuestion {
	var rq rawQuestion
	_ = json.Unmarshal(item, &rq)

	q := domain.GeneratedQuestion{
		Question:    stringOr(rq.Question, fmt.Sprintf("Question %d", index+1)),
		Type:        domain.QuestionTypeMultipleChoice,
		Explanation: stringOr(rq.Explanation, ""),
	}
	if stringOr(rq.Type, "") == string(domain.QuestionTypeTrueFalse) {
		q.Type = domain.QuestionTypeTrueFalse
	}

	options, isArray := stringArray(rq.Options)
	if isArray {
		q.Options = options
	} else {
		q.Options = append([]string(nil), defaultOptions...)
	}

	fallback := "Unknown"
	if isArray && len(options) > 0 && options[0] != "" {
		fallback = options[0]
	}
	q.Correct = stringOr(rq.Correct, fallback)
	return q
}

// stringOr returns the JSON string value, or def for missing, null, empty
// and non-string values. Numbers are kept in their textual form.
func stringOr(raw json.RawMessage, def string) string {
	if len(raw) == 0 {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return def
		}
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil && n.String() != "0" {
		return n.String()
	}
	return def
}

// stringArray decodes a JSON array, stringifying non-string elements.
func stringArray(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		var s string
		if err := json.Unmarshal(e, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, strings.TrimSpace(string(e)))
	}
	return out, true
}
