package textcat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/synthgen/internal/labels"
	"github.com/abhisek/synthgen/internal/llm"
)

// PurposeLabel tags labelling requests in the event log.
const PurposeLabel = "textcat-labeller"

// Labeller assigns up to n labels from a fixed candidate set to a text.
type Labeller struct {
	provider   llm.Provider
	params     GenerationParams
	context    string
	candidates []string
	n          int
}

// NewLabeller takes the next provider from src and configures it to label
// texts for the task described by taskContext.
func NewLabeller(ctx context.Context, src ProviderSource, taskContext string, candidates []string, n int) (*Labeller, error) {
	if n < 1 {
		return nil, fmt.Errorf("labels per text must be at least 1, got %d", n)
	}
	candidates = labels.Preprocess(candidates)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("at least one candidate label is required")
	}

	p, err := src.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("labeller provider: %w", err)
	}
	return &Labeller{
		provider: p,
		params: GenerationParams{
			Temperature: labellerTemperature,
			MaxTokens:   defaultMaxTokens,
		},
		context:    taskContext,
		candidates: candidates,
		n:          n,
	}, nil
}

// Params returns the generation settings used for every call.
func (l *Labeller) Params() GenerationParams {
	return l.params
}

// Candidates returns the normalized candidate labels.
func (l *Labeller) Candidates() []string {
	return l.candidates
}

// labelOutput accepts "labels" as a string (n == 1) or a list.
type labelOutput struct {
	Labels labelList `json:"labels"`
}

type labelList []string

func (l *labelList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = labelList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// Label returns the labels for text: candidates only, deduplicated, at
// most n. When none of the model's answers is a candidate the result is
// [DefaultLabel].
func (l *Labeller) Label(ctx context.Context, text string) ([]string, error) {
	ctx = llm.WithPurpose(ctx, PurposeLabel)
	req := l.params.request(labelSystemPrompt, buildLabelPrompt(l.context, l.candidates, l.n, text), labelSchema(l.n))

	resp, err := l.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("label text: %w", err)
	}

	var raw labelOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}
	return l.filter(raw.Labels), nil
}

func (l *Labeller) filter(got []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, g := range got {
		n := labels.Normalize(g)
		if seen[n] || !labels.Contains(l.candidates, n) {
			continue
		}
		seen[n] = true
		out = append(out, n)
		if len(out) == l.n {
			break
		}
	}
	if len(out) == 0 {
		return []string{DefaultLabel}
	}
	return out
}
