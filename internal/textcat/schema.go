package textcat

import "github.com/abhisek/synthgen/internal/llm"

// TaskSchema is the structured output of the prompt generator.
var TaskSchema = &llm.Schema{
	Name:        "textcat-task",
	Description: "A text classification task description and its possible labels",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"classification_task": map[string]any{
				"type":        "string",
				"description": "The classification task to be performed.",
			},
			"labels": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "The possible labels for the classification task.",
			},
		},
		"required":             []any{"classification_task", "labels"},
		"additionalProperties": false,
	},
}

// DescriptionSchema describes a dataset description input.
var DescriptionSchema = &llm.Schema{
	Name:        "textcat-dataset-description",
	Description: "A dataset description and the labels it should use",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{
				"type":        "string",
				"description": "The description of the dataset.",
			},
			"labels": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "The possible labels for the classification task.",
			},
		},
		"required":             []any{"description", "labels"},
		"additionalProperties": false,
	},
}

// ExampleSchema is the structured output of the data generator.
var ExampleSchema = &llm.Schema{
	Name:        "textcat-example",
	Description: "One text classification example",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input_text": map[string]any{
				"type":        "string",
				"description": "The input text specified by the classification task.",
			},
			"label": map[string]any{
				"type":        "string",
				"description": "The correct label of the input text.",
			},
			"misleading_label": map[string]any{
				"type":        "string",
				"description": "An incorrect label that is related to the task.",
			},
		},
		"required":             []any{"input_text", "label", "misleading_label"},
		"additionalProperties": false,
	},
}

// Label schemas only fix the shape of the answer. Candidate filtering
// happens after parsing so an off-list label degrades to DefaultLabel
// instead of failing the call.
var (
	singleLabelSchema = &llm.Schema{
		Name:        "textcat-label",
		Description: "The single label that best describes the text",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"labels": map[string]any{"type": "string"},
			},
			"required":             []any{"labels"},
			"additionalProperties": false,
		},
	}

	multiLabelSchema = &llm.Schema{
		Name:        "textcat-labels",
		Description: "The labels that best describe the text",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"labels": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required":             []any{"labels"},
			"additionalProperties": false,
		},
	}
)

func labelSchema(n int) *llm.Schema {
	if n == 1 {
		return singleLabelSchema
	}
	return multiLabelSchema
}
