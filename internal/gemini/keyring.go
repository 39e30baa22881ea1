package gemini

import "sync/atomic"

// KeyRing rotates over a set of API keys so successive calls spread
// rate-limit load across credentials. It is safe for concurrent use and is
// injected into the client rather than living in package state.
type KeyRing struct {
	keys []string
	next atomic.Uint64
}

func NewKeyRing(keys []string) *KeyRing {
	return &KeyRing{keys: keys}
}

// Enabled reports whether any credentials are configured. When false,
// summarization is skipped upstream entirely.
func (r *KeyRing) Enabled() bool {
	return r != nil && len(r.keys) > 0
}

// Next returns the next key in round-robin order.
func (r *KeyRing) Next() (string, bool) {
	if !r.Enabled() {
		return "", false
	}
	n := r.next.Add(1) - 1
	return r.keys[n%uint64(len(r.keys))], true
}

func (r *KeyRing) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}
