package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/synthgen/internal/store"
)

// recordingRepo captures appended events in memory.
type recordingRepo struct {
	store.EventRepo
	mu     sync.Mutex
	events []store.LLMRequestEventData
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return nil
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"labels":"sports"}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 4, TotalTokens: 16},
	})
	p := WithLogging(mock, ProviderInference, repo)

	ctx := WithRunID(WithPurpose(context.Background(), "textcat-labeller"), "run-42")
	seed := int64(7)
	_, err := p.Generate(ctx, Request{
		System:    "Label the text.",
		Messages:  []Message{{Role: RoleUser, Content: "The striker scored twice."}},
		MaxTokens: 2048,
		Seed:      &seed,
	})
	require.NoError(t, err)
	require.Len(t, repo.events, 1)

	ev := repo.events[0]
	assert.Equal(t, "run-42", ev.RunID)
	assert.Equal(t, "textcat-labeller", ev.Purpose)
	assert.Equal(t, ProviderInference, ev.Provider)
	assert.Equal(t, "mock", ev.Model)
	assert.True(t, ev.Success)
	assert.Equal(t, 12, ev.InputTokens)
	assert.Equal(t, `{"labels":"sports"}`, ev.ResponseBody)
	assert.Contains(t, ev.RequestBody, "[system]\nLabel the text.")
	assert.Contains(t, ev.RequestBody, "max_tokens=2048")
	assert.Contains(t, ev.RequestBody, "seed=7")
}

func TestLoggingProvider_RecordsFailure(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("slow down")}})
	p := WithLogging(mock, ProviderInference, repo)

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)
	require.Len(t, repo.events, 1)
	assert.False(t, repo.events[0].Success)
	assert.Contains(t, repo.events[0].ErrorMessage, "slow down")
	assert.Equal(t, "unknown", repo.events[0].Purpose)
}

func TestLoggingProvider_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`"ok"`)})
	p := WithLogging(mock, ProviderMock, nil)

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, string(resp.Content))
}

func TestLoggingProvider_PersistsToStore(t *testing.T) {
	s, err := store.Open("file:logging_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`"ok"`)})
	p := WithLogging(mock, ProviderMock, s.EventRepo())
	_, err = p.Generate(WithPurpose(context.Background(), "textcat-data"), Request{})
	require.NoError(t, err)

	events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{Purpose: "textcat-data"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "mock", events[0].Model)
}

// slowProvider blocks until its context is done.
type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(slowProvider{}, 10*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "slow", p.ModelID())
}

func TestWithTimeout_ZeroDisables(t *testing.T) {
	inner := NewMockProvider()
	assert.Same(t, inner, WithTimeout(inner, 0))
}

func TestSerializeRequest_IncludesSchema(t *testing.T) {
	out := serializeRequest(Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
		Schema:   testSchema(),
	})
	assert.True(t, strings.HasPrefix(out, "[user]\nhi"))
	assert.Contains(t, out, "[schema: test-example]")
}
