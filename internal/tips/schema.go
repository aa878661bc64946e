package tips

import "github.com/abhisek/quizladder/internal/llm"

// TipSchema is the response shape requested from the LLM.
var TipSchema = &llm.Schema{
	Name:        "study-tip",
	Description: "A single short study tip for a missed quiz question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tip": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "One sentence, in the question's language, that helps the learner without giving the answer away",
			},
		},
		"required":             []any{"tip"},
		"additionalProperties": false,
	},
}

const tipSystemPrompt = `You help language learners who answered a quiz question incorrectly.
Write exactly one short sentence that points them toward the concept they missed.
Never state the correct answer outright. Reply in the same language as the question.`
