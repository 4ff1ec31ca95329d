package quizgen

import (
	"fmt"

	"synapse/internal/domain"
)

var difficultyGuidelines = map[domain.Difficulty]string{
	domain.DifficultyEasy:   "Create straightforward questions that test basic recall and understanding. Answers should be clearly indicated in the source material.",
	domain.DifficultyMedium: "Create questions that require comprehension and connecting ideas. Some inference may be needed.",
	domain.DifficultyHard:   "Create challenging questions requiring analysis, synthesis, and critical evaluation of the material.",
}

func buildSystemPrompt(difficulty domain.Difficulty, count int) string {
	guideline, ok := difficultyGuidelines[difficulty]
	if !ok {
		guideline = difficultyGuidelines[domain.DifficultyMedium]
	}
	return fmt.Sprintf(`You are a quiz generator for educational content.

Task: Create exactly %d quiz questions from the provided text.

Guidelines:
- Mix question types: primarily multiple choice (4 options), with some true/false
- %s
- Questions must be answerable from the provided content
- All options should be plausible; exactly one is correct
- Avoid ambiguous or trick questions
- Write clear, direct questions
- Add a one sentence "explanation" of why the correct answer is right

Output format: JSON array with this structure for each question:
{
  "question": "Question text",
  "type": "multiple_choice" or "true_false",
  "options": ["A", "B", "C", "D"] or ["True", "False"],
  "correct": "The correct answer exactly as in options",
  "explanation": "Why it is correct"
}`, count, guideline)
}

func buildUserPrompt(content string, difficulty domain.Difficulty, count int) string {
	return fmt.Sprintf(`Based on the following document content, generate %d quiz questions at %s difficulty level:

---
%s
---

Return only the JSON array.`, count, difficulty, content)
}

// truncateContent cuts at a rune boundary so multi-byte text stays valid.
func truncateContent(content string) string {
	runes := []rune(content)
	if len(runes) <= domain.MaxContentChars {
		return content
	}
	return string(runes[:domain.MaxContentChars])
}
