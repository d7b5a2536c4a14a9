package textcat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/abhisek/synthgen/internal/labels"
)

// Run defaults.
const (
	DefaultNumLabels   = 1
	DefaultNumRows     = 10
	DefaultTemperature = 0.9

	// maxBatches bounds the top-up rounds spent replacing duplicates.
	maxBatches = 3
)

// RunOptions configures a dataset generation run.
type RunOptions struct {
	// Description is turned into a task by the prompt generator. Ignored
	// when Task is set.
	Description string

	// Task is a ready classification task prompt.
	Task string

	// Labels override the labels inferred from Description.
	Labels []string

	NumLabels   int
	NumRows     int
	Difficulty  Difficulty
	Clarity     Clarity
	IsSample    bool

	// Temperature for example generation. Nil means DefaultTemperature;
	// a pointer to 0 requests greedy sampling.
	Temperature *float64

	// Progress, when set, is called after every example and every
	// labelled row.
	Progress func(Progress)
}

// Progress reports how far a run stage has got.
type Progress struct {
	Stage string // PurposeData or PurposeLabel
	Done  int
	Total int
}

func (o RunOptions) report(stage string, done, total int) {
	if o.Progress != nil {
		o.Progress(Progress{Stage: stage, Done: done, Total: total})
	}
}

func (o *RunOptions) applyDefaults() {
	if o.NumLabels == 0 {
		o.NumLabels = DefaultNumLabels
	}
	if o.NumRows == 0 {
		o.NumRows = DefaultNumRows
	}
	if o.Temperature == nil {
		t := DefaultTemperature
		o.Temperature = &t
	}
	if o.Difficulty == "" {
		o.Difficulty = Mixed
	}
	if o.Clarity == "" {
		o.Clarity = Mixed
	}
}

// Run generates a dataset: it resolves the task and labels, writes
// NumRows unique examples and, for multi-label datasets, labels each one.
// Calls are sequential; each stage takes its own provider from src.
func Run(ctx context.Context, src ProviderSource, opts RunOptions) (*Dataset, error) {
	opts.applyDefaults()
	if opts.NumLabels < 1 {
		return nil, fmt.Errorf("num labels must be at least 1, got %d", opts.NumLabels)
	}
	if opts.NumRows < 1 {
		return nil, fmt.Errorf("num rows must be at least 1, got %d", opts.NumRows)
	}

	task, candidates, err := resolveTask(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no labels: pass labels or describe a dataset that implies them")
	}

	prompt := WithLabelHints(task, candidates, opts.NumLabels)
	log.Debug().Str("task", prompt).Strs("labels", candidates).Msg("resolved classification task")

	examples, err := generateUnique(ctx, src, prompt, opts)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Task:      task,
		Labels:    candidates,
		NumLabels: opts.NumLabels,
		Rows:      make([]Row, 0, len(examples)),
	}

	if opts.NumLabels == 1 {
		for _, ex := range examples {
			row := Row{Text: ex.Text}
			if labels.Contains(candidates, ex.Label) {
				row.Label = labels.Normalize(ex.Label)
			}
			ds.Rows = append(ds.Rows, row)
		}
		return ds, nil
	}

	labeller, err := NewLabeller(ctx, src, prompt, candidates, opts.NumLabels)
	if err != nil {
		return nil, err
	}
	for i, ex := range examples {
		got, err := labeller.Label(ctx, ex.Text)
		if err != nil {
			return nil, err
		}
		ds.Rows = append(ds.Rows, Row{Text: ex.Text, Labels: got})
		opts.report(PurposeLabel, i+1, len(examples))
	}
	return ds, nil
}

// resolveTask returns the task prompt and its normalized labels.
func resolveTask(ctx context.Context, src ProviderSource, opts RunOptions) (string, []string, error) {
	if strings.TrimSpace(opts.Task) != "" {
		return strings.TrimSpace(opts.Task), labels.Preprocess(opts.Labels), nil
	}

	gen, err := NewPromptGenerator(ctx, src)
	if err != nil {
		return "", nil, err
	}
	t, err := gen.Generate(ctx, opts.Description)
	if err != nil {
		return "", nil, err
	}

	candidates := opts.Labels
	if len(candidates) == 0 {
		candidates = t.Labels
	}
	return t.ClassificationTask, labels.Preprocess(candidates), nil
}

// generateUnique collects NumRows examples with distinct, non-empty texts.
func generateUnique(ctx context.Context, src ProviderSource, prompt string, opts RunOptions) ([]Example, error) {
	gen, err := NewDataGenerator(ctx, src, DataGeneratorOptions{
		Difficulty:  opts.Difficulty,
		Clarity:     opts.Clarity,
		Temperature: *opts.Temperature,
		IsSample:    opts.IsSample,
	})
	if err != nil {
		return nil, err
	}

	var out []Example
	seen := make(map[string]bool)
	for batch := 0; batch < maxBatches && len(out) < opts.NumRows; batch++ {
		want := opts.NumRows - len(out)
		for range want {
			exs, err := gen.Generate(ctx, prompt, 1)
			if err != nil {
				return nil, err
			}
			ex := exs[0]
			key := strings.ToLower(ex.Text)
			if ex.Text == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, ex)
			opts.report(PurposeData, len(out), opts.NumRows)
		}
		log.Debug().Int("batch", batch).Int("rows", len(out)).Int("want", opts.NumRows).Msg("generated examples")
	}

	if len(out) < opts.NumRows {
		log.Warn().Int("rows", len(out)).Int("want", opts.NumRows).Msg("too many duplicate examples; returning fewer rows")
	}
	return out, nil
}
