package qgen

import (
	"fmt"
	"strings"

	"kysymyssota/internal/store"
)

const systemPrompt = `You are a quizmaster writing trivia questions for children aged 6-13.

Rules:
- Every question is multiple choice with exactly one correct answer and exactly 3 wrong options.
- Wrong options must be plausible for the topic, not obviously silly, and must not accidentally be correct.
- Questions must be factual and verifiable. No trick questions, no opinions.
- Keep the language simple and the question a single clear sentence.
- Difficulty tiers, easiest first: apprentice, skilled, master, king, grandmaster. An apprentice question should be answerable by a 6-year-old; a grandmaster question may stump an adult.
- Use the default point value for the tier: apprentice 10, skilled 20, master 30, king 40, grandmaster 50.
- Do not repeat or trivially rephrase any question from the "already in the database" list.`

// buildUserMessage renders one generation request.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d questions.\n", input.Count)
	if input.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", input.Category)
	} else {
		b.WriteString("Category: your choice, vary across the batch\n")
	}
	if input.Tier != "" {
		fmt.Fprintf(&b, "Tier: %s\n", input.Tier)
	} else {
		b.WriteString("Tier: mix across the batch\n")
	}

	b.WriteString("\nAlready in the database:\n")
	b.WriteString(buildExisting(input.Existing, cfg.MaxExisting))

	return b.String()
}

// buildExisting lists existing question texts for dedup, newest first,
// capped at max.
func buildExisting(existing []store.Question, max int) string {
	if len(existing) == 0 {
		return "None"
	}

	if max > 0 && len(existing) > max {
		existing = existing[len(existing)-max:]
	}

	var b strings.Builder
	for i := len(existing) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "- %s\n", existing[i].Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
