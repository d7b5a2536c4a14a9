// Package codegen renders a standalone Python script that reproduces a
// synthgen text-classification run with the distilabel library.
package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/gosimple/slug"

	"github.com/abhisek/synthgen/internal/labels"
	"github.com/abhisek/synthgen/internal/llm"
	"github.com/abhisek/synthgen/internal/textcat"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var scriptTemplate = template.Must(
	template.New("textcat.py.tmpl").
		Funcs(template.FuncMap{
			"py":      pyString,
			"pyFloat": pyFloat,
			"pyList":  pyList,
		}).
		ParseFS(templateFS, "templates/textcat.py.tmpl"),
)

// Options are the inputs of the generated script.
type Options struct {
	SystemPrompt string
	Difficulty   textcat.Difficulty
	Clarity      textcat.Clarity
	Labels       []string
	NumLabels    int
	NumRows      int
	Temperature  float64

	// Name becomes the distilabel pipeline name in slug form. Default:
	// "textcat".
	Name string

	// Model and BaseURL default to the serverless inference endpoint.
	Model   string
	BaseURL string
}

// DefaultOptions returns the defaults used by the CLI.
func DefaultOptions() Options {
	return Options{
		Difficulty:  textcat.Mixed,
		Clarity:     textcat.Mixed,
		NumLabels:   textcat.DefaultNumLabels,
		NumRows:     textcat.DefaultNumRows,
		Temperature: textcat.DefaultTemperature,
	}
}

type scriptData struct {
	Options
	PipelineName        string
	DifficultyLiteral   string
	ClarityLiteral      string
	MultiLabel          bool
	MaxTokens           int
	TopK                int
	TopP                float64
	LabellerTemperature float64
	DefaultLabel        string
}

// Render returns the Python source for opts. Labels are normalized first.
// Nothing is executed.
func Render(opts Options) (string, error) {
	if opts.NumLabels < 1 {
		return "", fmt.Errorf("num labels must be at least 1, got %d", opts.NumLabels)
	}
	if opts.NumRows < 1 {
		return "", fmt.Errorf("num rows must be at least 1, got %d", opts.NumRows)
	}
	if math.IsNaN(opts.Temperature) || math.IsInf(opts.Temperature, 0) {
		return "", fmt.Errorf("temperature must be finite")
	}

	opts.Labels = labels.Preprocess(opts.Labels)
	if opts.Model == "" {
		opts.Model = llm.DefaultInferenceModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = llm.InferenceConfig{Model: opts.Model}.InferenceBaseURL()
	}

	data := scriptData{
		Options:             opts,
		PipelineName:        pipelineName(opts.Name),
		DifficultyLiteral:   pyOptional(string(opts.Difficulty)),
		ClarityLiteral:      pyOptional(string(opts.Clarity)),
		MultiLabel:          opts.NumLabels > 1,
		MaxTokens:           2048,
		TopK:                50,
		TopP:                0.95,
		LabellerTemperature: 0.8,
		DefaultLabel:        textcat.DefaultLabel,
	}

	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render script: %w", err)
	}
	return buf.String(), nil
}

const defaultPipelineName = "textcat"

func pipelineName(name string) string {
	if n := slug.Make(name); n != "" {
		return n
	}
	return defaultPipelineName
}

// pyString renders s as a double-quoted Python string literal. Go and
// Python share the escapes strconv.Quote emits.
func pyString(s string) string {
	return strconv.Quote(strings.ToValidUTF8(s, "\uFFFD"))
}

// pyOptional renders "mixed" and empty as None.
func pyOptional(v string) string {
	if v == "" || v == textcat.Mixed {
		return "None"
	}
	return pyString(v)
}

// pyFloat renders f so Python reads it back as a float.
func pyFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func pyList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = pyString(it)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
