package assist

import "github.com/abhisek/cifra/internal/llm"

// HintSchema is the structured answer for a step explanation.
var HintSchema = &llm.Schema{
	Name:        "step-hint",
	Description: "A plain-language explanation of one tutorial step for an older learner",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "What to do on this step, 2-3 short sentences in Russian",
			},
			"tips": map[string]any{
				"type":        "array",
				"maxItems":    3,
				"items":       map[string]any{"type": "string"},
				"description": "Optional short tips, one sentence each",
			},
		},
		"required":             []any{"explanation", "tips"},
		"additionalProperties": false,
	},
}
