package textcat

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/abhisek/synthgen/internal/llm"
)

// PurposeData tags example generation requests in the event log.
const PurposeData = "textcat-data"

// DefaultLanguage is the language generated texts are written in.
const DefaultLanguage = "English"

// DataGeneratorOptions configures a DataGenerator.
type DataGeneratorOptions struct {
	// Difficulty and Clarity fix the style of every example. "mixed" or
	// empty picks one per example.
	Difficulty Difficulty
	Clarity    Clarity

	Temperature float64

	// IsSample caps responses at a short budget for quick previews.
	IsSample bool

	// Language defaults to DefaultLanguage.
	Language string
}

// DataParams are the effective settings of a DataGenerator.
type DataParams struct {
	GenerationParams

	// Difficulty and Clarity are nil when the generator samples freely.
	Difficulty *Difficulty
	Clarity    *Clarity

	// Seed drives per-example style sampling and request seeds.
	Seed uint32

	Language string
}

// DataGenerator writes classification examples for a task.
type DataGenerator struct {
	provider llm.Provider
	params   DataParams

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDataGenerator takes the next provider from src and configures it for
// example generation. Every call draws a fresh seed.
func NewDataGenerator(ctx context.Context, src ProviderSource, opts DataGeneratorOptions) (*DataGenerator, error) {
	p, err := src.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("data generator provider: %w", err)
	}

	maxTokens := defaultMaxTokens
	if opts.IsSample {
		maxTokens = sampleMaxTokens
	}
	language := opts.Language
	if language == "" {
		language = DefaultLanguage
	}

	seed := rand.Uint32()
	return &DataGenerator{
		provider: p,
		params: DataParams{
			GenerationParams: GenerationParams{
				Temperature: opts.Temperature,
				MaxTokens:   maxTokens,
				TopK:        dataTopK,
				TopP:        dataTopP,
			},
			Difficulty: opts.Difficulty.Param(),
			Clarity:    opts.Clarity.Param(),
			Seed:       seed,
			Language:   language,
		},
		rng: rand.New(rand.NewPCG(uint64(seed), 0)),
	}, nil
}

// Params returns the effective generation settings.
func (g *DataGenerator) Params() DataParams {
	return g.params
}

type exampleOutput struct {
	InputText       string `json:"input_text"`
	Label           string `json:"label"`
	MisleadingLabel string `json:"misleading_label"`
}

// Generate writes n examples for task, one request each. It stops at the
// first failed request and returns the examples produced so far with the
// error.
func (g *DataGenerator) Generate(ctx context.Context, task string, n int) ([]Example, error) {
	ctx = llm.WithPurpose(ctx, PurposeData)

	out := make([]Example, 0, n)
	for range n {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		difficulty, clarity, seed := g.draw()
		req := g.params.request(exampleSystemPrompt, buildExamplePrompt(task, difficulty, clarity, g.params.Language), ExampleSchema)
		req.Seed = &seed

		resp, err := g.provider.Generate(ctx, req)
		if err != nil {
			return out, fmt.Errorf("generate example: %w", err)
		}

		var raw exampleOutput
		if err := json.Unmarshal(resp.Content, &raw); err != nil {
			return out, fmt.Errorf("parse example: %w", err)
		}

		out = append(out, Example{
			Text:            strings.TrimSpace(raw.InputText),
			Label:           strings.TrimSpace(raw.Label),
			MisleadingLabel: strings.TrimSpace(raw.MisleadingLabel),
			Difficulty:      difficulty,
			Clarity:         clarity,
		})
	}
	return out, nil
}

// draw picks the style and request seed for the next example.
func (g *DataGenerator) draw() (Difficulty, Clarity, int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var d Difficulty
	if g.params.Difficulty != nil {
		d = *g.params.Difficulty
	} else {
		d = Difficulties[g.rng.IntN(len(Difficulties))]
	}

	var c Clarity
	if g.params.Clarity != nil {
		c = *g.params.Clarity
	} else {
		c = Clarities[g.rng.IntN(len(Clarities))]
	}

	return d, c, int64(g.rng.Uint32())
}
