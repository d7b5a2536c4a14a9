package textcat

import "github.com/abhisek/synthgen/internal/llm"

// GenerationParams are the sampling settings a factory applies to every
// call it makes. Zero TopK or TopP leaves the endpoint default.
type GenerationParams struct {
	Temperature float64
	MaxTokens   int
	TopK        int
	TopP        float64
}

const (
	promptTemperature   = 0.8
	labellerTemperature = 0.7

	defaultMaxTokens = 2048
	sampleMaxTokens  = 256

	dataTopK = 50
	dataTopP = 0.95
)

func (p GenerationParams) request(system, user string, schema *llm.Schema) llm.Request {
	return llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: user}},
		Schema:      schema,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		TopK:        p.TopK,
		TopP:        p.TopP,
	}
}
