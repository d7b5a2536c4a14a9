package textcat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/synthgen/internal/llm"
)

func fixed(mock *llm.MockProvider) llm.Fixed {
	return llm.Fixed{Provider: mock}
}

func exampleJSON(text, label string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{
		"input_text":       text,
		"label":            label,
		"misleading_label": "neutral",
	})
	return b
}

func TestDifficultyAndClarityParam(t *testing.T) {
	assert.Nil(t, Difficulty(Mixed).Param())
	assert.Nil(t, Difficulty("").Param())
	assert.Nil(t, Clarity(Mixed).Param())
	assert.Nil(t, Clarity("").Param())

	require.NotNil(t, DifficultyPhD.Param())
	assert.Equal(t, DifficultyPhD, *DifficultyPhD.Param())
	require.NotNil(t, ClarityAmbiguous.Param())
	assert.Equal(t, ClarityAmbiguous, *ClarityAmbiguous.Param())

	// Unknown values pass through verbatim.
	assert.Equal(t, Difficulty("kindergarten"), *Difficulty("kindergarten").Param())
}

func TestPromptGenerator(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"classification_task":"Classify the movie reviews as","labels":["positive","negative"]}`),
	})

	gen, err := NewPromptGenerator(context.Background(), fixed(mock))
	require.NoError(t, err)

	params := gen.Params()
	assert.Equal(t, 0.8, params.Temperature)
	assert.Equal(t, 2048, params.MaxTokens)

	task, err := gen.Generate(context.Background(), "A cinema collecting customer reviews.")
	require.NoError(t, err)
	assert.Equal(t, "Classify the movie reviews as", task.ClassificationTask)
	assert.Equal(t, []string{"positive", "negative"}, task.Labels)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, PromptCreationPrompt, req.System)
	assert.Equal(t, "A cinema collecting customer reviews.", req.Messages[0].Content)
	assert.Same(t, TaskSchema, req.Schema)
	assert.Equal(t, 0.8, req.Temperature)
	assert.Equal(t, 2048, req.MaxTokens)
}

func TestPromptGenerator_RequiresDescription(t *testing.T) {
	gen, err := NewPromptGenerator(context.Background(), fixed(llm.NewMockProvider()))
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "   ")
	require.Error(t, err)
}

func TestPromptGenerator_SurfacesProviderErrors(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})
	gen, err := NewPromptGenerator(context.Background(), fixed(mock))
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "news articles")
	var rl *llm.ErrRateLimit
	assert.True(t, errors.As(err, &rl), "expected ErrRateLimit, got %v", err)
}

// failingSource never yields a provider.
type failingSource struct{}

func (failingSource) Next(context.Context) (llm.Provider, error) {
	return nil, errors.New("no keys")
}

func TestFactoriesSurfaceSourceErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewPromptGenerator(ctx, failingSource{})
	assert.ErrorContains(t, err, "no keys")

	_, err = NewDataGenerator(ctx, failingSource{}, DataGeneratorOptions{})
	assert.ErrorContains(t, err, "no keys")

	_, err = NewLabeller(ctx, failingSource{}, "task", []string{"a"}, 1)
	assert.ErrorContains(t, err, "no keys")
}

func TestNewDataGenerator_Params(t *testing.T) {
	tests := []struct {
		name           string
		opts           DataGeneratorOptions
		wantDifficulty *Difficulty
		wantClarity    *Clarity
		wantMaxTokens  int
	}{
		{
			name:          "mixed sample",
			opts:          DataGeneratorOptions{Difficulty: Mixed, Clarity: Mixed, Temperature: 0.4, IsSample: true},
			wantMaxTokens: 256,
		},
		{
			name:           "fixed full",
			opts:           DataGeneratorOptions{Difficulty: DifficultyCollege, Clarity: ClarityClear, Temperature: 0.4},
			wantDifficulty: DifficultyCollege.Param(),
			wantClarity:    ClarityClear.Param(),
			wantMaxTokens:  2048,
		},
		{
			name:          "mixed difficulty only",
			opts:          DataGeneratorOptions{Difficulty: Mixed, Clarity: ClarityAmbiguous, Temperature: 0.4},
			wantClarity:   ClarityAmbiguous.Param(),
			wantMaxTokens: 2048,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewDataGenerator(context.Background(), fixed(llm.NewMockProvider()), tt.opts)
			require.NoError(t, err)

			p := gen.Params()
			assert.Equal(t, tt.wantDifficulty, p.Difficulty)
			assert.Equal(t, tt.wantClarity, p.Clarity)
			assert.Equal(t, tt.wantMaxTokens, p.MaxTokens)
			assert.Equal(t, 0.4, p.Temperature)
			assert.Equal(t, 50, p.TopK)
			assert.Equal(t, 0.95, p.TopP)
			assert.Equal(t, DefaultLanguage, p.Language)
		})
	}
}

func TestNewDataGenerator_FreshSeedPerCall(t *testing.T) {
	seeds := map[uint32]bool{}
	for range 8 {
		gen, err := NewDataGenerator(context.Background(), fixed(llm.NewMockProvider()), DataGeneratorOptions{})
		require.NoError(t, err)
		seeds[gen.Params().Seed] = true
	}
	// Eight 32-bit draws colliding down to one value would be astronomically
	// unlikely.
	assert.Greater(t, len(seeds), 1)
}

func TestDataGenerator_Generate(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: exampleJSON("Loved the soundtrack.", "positive")},
		llm.MockResponse{Content: exampleJSON("Two hours I will never get back.", "negative")},
	)
	gen, err := NewDataGenerator(context.Background(), fixed(mock), DataGeneratorOptions{
		Difficulty:  DifficultyHighSchool,
		Clarity:     ClarityClear,
		Temperature: 0.9,
	})
	require.NoError(t, err)

	exs, err := gen.Generate(context.Background(), "Classify movie reviews", 2)
	require.NoError(t, err)
	require.Len(t, exs, 2)
	assert.Equal(t, "Loved the soundtrack.", exs[0].Text)
	assert.Equal(t, "positive", exs[0].Label)
	assert.Equal(t, "neutral", exs[0].MisleadingLabel)
	assert.Equal(t, DifficultyHighSchool, exs[1].Difficulty)
	assert.Equal(t, ClarityClear, exs[1].Clarity)

	req := mock.Calls[0]
	assert.Same(t, ExampleSchema, req.Schema)
	assert.Equal(t, 2048, req.MaxTokens)
	assert.Equal(t, 50, req.TopK)
	assert.Equal(t, 0.95, req.TopP)
	assert.Equal(t, 0.9, req.Temperature)
	require.NotNil(t, req.Seed)
	assert.Contains(t, req.Messages[0].Content, "Classify movie reviews")
	assert.Contains(t, req.Messages[0].Content, "is clear and requires high school level education")
	assert.Contains(t, req.Messages[0].Content, "Write all values in English.")
}

func TestDataGenerator_MixedSamplesKnownValues(t *testing.T) {
	mock := llm.NewMockResponder(func(req llm.Request) llm.MockResponse {
		return llm.MockResponse{Content: exampleJSON("text", "a")}
	})
	gen, err := NewDataGenerator(context.Background(), fixed(mock), DataGeneratorOptions{Difficulty: Mixed, Clarity: Mixed})
	require.NoError(t, err)

	exs, err := gen.Generate(context.Background(), "task", 30)
	require.NoError(t, err)
	require.Len(t, exs, 30)
	for _, ex := range exs {
		assert.Contains(t, Difficulties, ex.Difficulty)
		assert.Contains(t, Clarities, ex.Clarity)
	}
}

func TestDataGenerator_StopsAtFirstError(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: exampleJSON("one", "a")},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("502")}},
	)
	gen, err := NewDataGenerator(context.Background(), fixed(mock), DataGeneratorOptions{})
	require.NoError(t, err)

	exs, err := gen.Generate(context.Background(), "task", 5)
	require.Error(t, err)
	assert.Len(t, exs, 1)
	assert.Equal(t, 2, mock.CallCount())
}

func TestDataGenerator_InvalidResponse(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"input_text":"missing labels"}`)})
	gen, err := NewDataGenerator(context.Background(), fixed(mock), DataGeneratorOptions{})
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "task", 1)
	var inv *llm.ErrInvalidResponse
	assert.True(t, errors.As(err, &inv), "expected ErrInvalidResponse, got %v", err)
}

func TestNewLabeller_Validation(t *testing.T) {
	src := fixed(llm.NewMockProvider())

	_, err := NewLabeller(context.Background(), src, "task", []string{"a"}, 0)
	require.Error(t, err)

	_, err = NewLabeller(context.Background(), src, "task", []string{"", " "}, 1)
	require.Error(t, err)

	l, err := NewLabeller(context.Background(), src, "task", []string{"World News", "sports", "Sports"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"world-news", "sports"}, l.Candidates())
	assert.Equal(t, 0.7, l.Params().Temperature)
	assert.Equal(t, 2048, l.Params().MaxTokens)
}

func TestLabeller_Label(t *testing.T) {
	candidates := []string{"sports", "politics", "world-news"}

	tests := []struct {
		name     string
		n        int
		response string
		want     []string
	}{
		{"single", 1, `{"labels":"sports"}`, []string{"sports"}},
		{"single normalized", 1, `{"labels":" World News "}`, []string{"world-news"}},
		{"single off list", 1, `{"labels":"weather"}`, []string{DefaultLabel}},
		{"multi", 2, `{"labels":["politics","world-news"]}`, []string{"politics", "world-news"}},
		{"multi truncated", 2, `{"labels":["sports","politics","world-news"]}`, []string{"sports", "politics"}},
		{"multi filtered and deduped", 3, `{"labels":["sports","weather","Sports"]}`, []string{"sports"}},
		{"multi empty", 2, `{"labels":[]}`, []string{DefaultLabel}},
		{"model says unknown", 2, `{"labels":["unknown"]}`, []string{DefaultLabel}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(tt.response)})
			l, err := NewLabeller(context.Background(), fixed(mock), "News articles.", candidates, tt.n)
			require.NoError(t, err)

			got, err := l.Label(context.Background(), "The minister resigned after the match-fixing scandal.")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			req := mock.Calls[0]
			assert.Equal(t, 0.7, req.Temperature)
			assert.Equal(t, 2048, req.MaxTokens)
			assert.Contains(t, req.Messages[0].Content, "News articles.")
			assert.Contains(t, req.Messages[0].Content, "- world-news")
			assert.Contains(t, req.Messages[0].Content, `answer "unknown"`)
		})
	}
}

func TestLabeller_SchemaShapeFollowsN(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"labels":["sports"]}`)})
	l, err := NewLabeller(context.Background(), fixed(mock), "", []string{"sports"}, 1)
	require.NoError(t, err)

	// A list where a single label is expected fails schema validation.
	_, err = l.Label(context.Background(), "text")
	var inv *llm.ErrInvalidResponse
	assert.True(t, errors.As(err, &inv), "expected ErrInvalidResponse, got %v", err)

	assert.Same(t, singleLabelSchema, labelSchema(1))
	assert.Same(t, multiLabelSchema, labelSchema(4))
}

func TestWithLabelHints(t *testing.T) {
	got := WithLabelHints("Classify the reviews.", []string{"positive", "negative"}, 1)
	assert.Equal(t, "Classify the reviews. Optional labels: positive, negative.", got)

	got = WithLabelHints("Classify the reviews", []string{"a", "b"}, 2)
	assert.Equal(t, "Classify the reviews. Optional labels: a, b. "+multiLabelHint, got)
}

func TestBuildLabelPrompt_Shapes(t *testing.T) {
	single := buildLabelPrompt("ctx", []string{"a"}, 1, "txt")
	assert.Contains(t, single, `{"labels": "label"}`)
	assert.Contains(t, single, "Provide the label that best describes the text.")

	multi := buildLabelPrompt("", []string{"a"}, 3, "txt")
	assert.Contains(t, multi, `{"labels": ["label", "label"]}`)
	assert.Contains(t, multi, "at most 3 labels")
	assert.NotContains(t, multi, "## Context")
}

// scriptedResponder answers each stage of a run by purpose.
func scriptedResponder(task string, texts []string, labelFor func(text string) string) func(llm.Request) llm.MockResponse {
	i := 0
	return func(req llm.Request) llm.MockResponse {
		switch req.Schema {
		case TaskSchema:
			return llm.MockResponse{Content: json.RawMessage(task)}
		case ExampleSchema:
			text := texts[i%len(texts)]
			i++
			return llm.MockResponse{Content: exampleJSON(text, labelFor(text))}
		default:
			b, _ := json.Marshal(map[string]any{"labels": strings.Split(labelFor(req.Messages[0].Content), ",")})
			return llm.MockResponse{Content: b}
		}
	}
}

func TestRun_SingleLabel(t *testing.T) {
	mock := llm.NewMockResponder(scriptedResponder(
		`{"classification_task":"Classify the customer reviews as","labels":["Positive","Negative"]}`,
		[]string{"Great service!", "Awful food.", "Great service!", "Meh, it was fine."},
		func(text string) string {
			switch {
			case strings.Contains(text, "Great"):
				return "positive"
			case strings.Contains(text, "Awful"):
				return "negative"
			}
			return "neutral"
		},
	))

	ds, err := Run(context.Background(), fixed(mock), RunOptions{
		Description: "Restaurant reviews",
		NumRows:     3,
	})
	require.NoError(t, err)

	assert.Equal(t, "Classify the customer reviews as", ds.Task)
	assert.Equal(t, []string{"positive", "negative"}, ds.Labels)
	assert.Equal(t, 1, ds.NumLabels)
	require.Len(t, ds.Rows, 3)
	assert.Equal(t, Row{Text: "Great service!", Label: "positive"}, ds.Rows[0])
	assert.Equal(t, Row{Text: "Awful food.", Label: "negative"}, ds.Rows[1])
	// Off-list labels are cleared; the duplicate text was skipped.
	assert.Equal(t, Row{Text: "Meh, it was fine."}, ds.Rows[2])

	// 1 task + 3 examples + 1 top-up after the duplicate; no labelling.
	assert.Equal(t, 5, mock.CallCount())
	for _, c := range mock.Calls {
		assert.NotEqual(t, labelSystemPrompt, c.System)
	}
	assert.Contains(t, mock.Calls[1].Messages[0].Content, "Optional labels: positive, negative.")
	assert.NotContains(t, mock.Calls[1].Messages[0].Content, multiLabelHint)
}

func TestRun_MultiLabel(t *testing.T) {
	mock := llm.NewMockResponder(scriptedResponder(
		`{}`,
		[]string{"Election results and the cup final.", "Transfer window rumours."},
		func(text string) string {
			if strings.Contains(text, "Election") {
				return "politics,sports"
			}
			return "sports"
		},
	))

	ds, err := Run(context.Background(), fixed(mock), RunOptions{
		Task:      "Categorize the news articles",
		Labels:    []string{"Sports", "Politics"},
		NumLabels: 2,
		NumRows:   2,
		IsSample:  true,
	})
	require.NoError(t, err)

	require.Len(t, ds.Rows, 2)
	assert.Equal(t, Row{Text: "Election results and the cup final.", Labels: []string{"politics", "sports"}}, ds.Rows[0])
	assert.Equal(t, Row{Text: "Transfer window rumours.", Labels: []string{"sports"}}, ds.Rows[1])

	// Explicit task skips the prompt generator.
	for _, c := range mock.Calls {
		assert.NotSame(t, TaskSchema, c.Schema)
	}
	gen := mock.Calls[0]
	assert.Equal(t, 256, gen.MaxTokens)
	assert.Contains(t, gen.Messages[0].Content, multiLabelHint)
	last := mock.Calls[len(mock.Calls)-1]
	assert.Same(t, multiLabelSchema, last.Schema)
}

func TestRun_ExplicitLabelsOverrideInferred(t *testing.T) {
	mock := llm.NewMockResponder(scriptedResponder(
		`{"classification_task":"Classify","labels":["x","y"]}`,
		[]string{"t1"},
		func(string) string { return "mine" },
	))

	ds, err := Run(context.Background(), fixed(mock), RunOptions{
		Description: "anything",
		Labels:      []string{"Mine", "Yours"},
		NumRows:     1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mine", "yours"}, ds.Labels)
	assert.Equal(t, "mine", ds.Rows[0].Label)
}

func TestRun_GivesUpOnEndlessDuplicates(t *testing.T) {
	mock := llm.NewMockResponder(scriptedResponder(`{}`, []string{"same"}, func(string) string { return "a" }))

	ds, err := Run(context.Background(), fixed(mock), RunOptions{Task: "t", Labels: []string{"a"}, NumRows: 4})
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 1)
	// First batch of 4, then two top-up batches of 3.
	assert.Equal(t, 10, mock.CallCount())
}

func TestRun_Temperature(t *testing.T) {
	zero := 0.0
	tests := []struct {
		name        string
		temperature *float64
		want        float64
	}{
		{"default", nil, DefaultTemperature},
		{"explicit zero", &zero, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockResponder(scriptedResponder(`{}`, []string{"only"}, func(string) string { return "a" }))
			_, err := Run(context.Background(), fixed(mock), RunOptions{
				Task:        "t",
				Labels:      []string{"a"},
				NumRows:     1,
				Temperature: tt.temperature,
			})
			require.NoError(t, err)
			require.Equal(t, 1, mock.CallCount())
			assert.Equal(t, tt.want, mock.Calls[0].Temperature)
		})
	}
}

func TestLabelSchemas_ShapeOnly(t *testing.T) {
	labelsProp := multiLabelSchema.Definition["properties"].(map[string]any)["labels"].(map[string]any)
	assert.NotContains(t, labelsProp, "maxItems")
	assert.NotContains(t, labelsProp, "enum")
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Run(ctx, fixed(llm.NewMockProvider()), RunOptions{Task: "t"})
	assert.ErrorContains(t, err, "no labels")

	_, err = Run(ctx, fixed(llm.NewMockProvider()), RunOptions{Task: "t", Labels: []string{"a"}, NumRows: -1})
	require.Error(t, err)

	mock := llm.NewMockProvider(llm.MockResponse{Err: fmt.Errorf("boom")})
	_, err = Run(ctx, fixed(mock), RunOptions{Task: "t", Labels: []string{"a"}})
	assert.ErrorContains(t, err, "boom")
}

func TestRun_ReportsProgress(t *testing.T) {
	mock := llm.NewMockResponder(scriptedResponder(
		`{}`,
		[]string{"one", "two"},
		func(string) string { return "a" },
	))

	var got []Progress
	_, err := Run(context.Background(), fixed(mock), RunOptions{
		Task:      "t",
		Labels:    []string{"a", "b"},
		NumLabels: 2,
		NumRows:   2,
		Progress:  func(p Progress) { got = append(got, p) },
	})
	require.NoError(t, err)

	assert.Equal(t, []Progress{
		{Stage: PurposeData, Done: 1, Total: 2},
		{Stage: PurposeData, Done: 2, Total: 2},
		{Stage: PurposeLabel, Done: 1, Total: 2},
		{Stage: PurposeLabel, Done: 2, Total: 2},
	}, got)
}
