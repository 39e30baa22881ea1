// Package progress holds the process-wide status table polled by the HTTP
// layer while transcription and minutes jobs run in the background.
package progress

import "sync"

// Status is one job's visible state. Progress is 0-100.
type Status struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Step     string `json:"step,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Tracker is shared across concurrently running jobs; each job writes only
// its own token's entry.
type Tracker struct {
	mu   sync.Mutex
	jobs map[string]Status
}

func NewTracker() *Tracker {
	return &Tracker{jobs: make(map[string]Status)}
}

func (t *Tracker) Set(token string, st Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[token] = st
}

func (t *Tracker) Get(token string) (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.jobs[token]
	return st, ok
}
