package llm

import (
	"context"

	"github.com/abhisek/synthgen/internal/store"
)

// Pool builds providers on demand, each bound to the next API key of the
// configured rotation. Every generation task takes one provider from the
// pool when it is constructed, spreading load across keys.
type Pool struct {
	cfg       Config
	keys      *KeyRing
	eventRepo store.EventRepo
}

// NewPool validates cfg and creates a Pool. eventRepo may be nil, in which
// case requests are logged but not persisted.
func NewPool(cfg Config, eventRepo store.EventRepo) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pool{
		cfg:       cfg,
		keys:      NewKeyRing(cfg.Keys()...),
		eventRepo: eventRepo,
	}, nil
}

// Next returns a provider configured with the next API key.
func (p *Pool) Next(ctx context.Context) (Provider, error) {
	cfg := p.cfg
	if p.keys.Len() > 0 {
		cfg = cfg.WithAPIKey(p.keys.Next())
	}
	return NewProvider(ctx, cfg, p.eventRepo)
}

// Config returns the pool's configuration.
func (p *Pool) Config() Config {
	return p.cfg
}

// Fixed is a provider source that always returns the same provider.
// Useful with MockProvider in tests.
type Fixed struct {
	Provider Provider
}

// Next returns the wrapped provider.
func (f Fixed) Next(context.Context) (Provider, error) {
	return f.Provider, nil
}
