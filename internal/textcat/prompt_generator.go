package textcat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/synthgen/internal/llm"
)

// PurposePrompt tags prompt generation requests in the event log.
const PurposePrompt = "textcat-prompt"

// PromptGenerator turns a dataset description into a classification task.
type PromptGenerator struct {
	provider llm.Provider
	params   GenerationParams
}

// NewPromptGenerator takes the next provider from src and configures it
// for task generation.
func NewPromptGenerator(ctx context.Context, src ProviderSource) (*PromptGenerator, error) {
	p, err := src.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("prompt generator provider: %w", err)
	}
	return &PromptGenerator{
		provider: p,
		params: GenerationParams{
			Temperature: promptTemperature,
			MaxTokens:   defaultMaxTokens,
		},
	}, nil
}

// Params returns the generation settings used for every call.
func (g *PromptGenerator) Params() GenerationParams {
	return g.params
}

// Generate produces a classification task for description.
func (g *PromptGenerator) Generate(ctx context.Context, description string) (*TextClassificationTask, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("dataset description is required")
	}

	ctx = llm.WithPurpose(ctx, PurposePrompt)
	req := g.params.request(PromptCreationPrompt, description, TaskSchema)

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate classification task: %w", err)
	}

	var task TextClassificationTask
	if err := json.Unmarshal(resp.Content, &task); err != nil {
		return nil, fmt.Errorf("parse classification task: %w", err)
	}
	return &task, nil
}
