package llm

import "sync"

// KeyRing hands out API keys round-robin. It is safe for concurrent use.
type KeyRing struct {
	mu   sync.Mutex
	keys []string
	next int
}

// NewKeyRing creates a ring over keys in the given order.
func NewKeyRing(keys ...string) *KeyRing {
	return &KeyRing{keys: append([]string(nil), keys...)}
}

// Next returns the next key, wrapping after the last one.
// Returns "" when the ring is empty.
func (r *KeyRing) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.keys) == 0 {
		return ""
	}
	k := r.keys[r.next]
	r.next = (r.next + 1) % len(r.keys)
	return k
}

// Len returns the number of keys in the ring.
func (r *KeyRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}
