// Package costtracker accumulates token usage and estimated spend for calls
// to external AI APIs (embedding generation, genre suggestions).
package costtracker

import (
	"context"
	"sync"
)

// Event is one billable API call.
type Event struct {
	Operation    string // e.g. "embedding", "genre_suggest"
	Model        string
	InputTokens  int
	OutputTokens int
	AmountUSD    float64
}

// Tracker records usage events and reports running totals.
type Tracker interface {
	Record(ctx context.Context, event Event) error
	TotalUSD(ctx context.Context) (float64, error)
	ByOperation(ctx context.Context) (map[string]float64, error)
}

// InMemory is a process-local Tracker. Totals reset on restart; persistence
// is up to whoever scrapes them.
type InMemory struct {
	mu          sync.Mutex
	total       float64
	byOperation map[string]float64
}

func NewInMemory() *InMemory {
	return &InMemory{byOperation: make(map[string]float64)}
}

func (t *InMemory) Record(_ context.Context, event Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total += event.AmountUSD
	t.byOperation[event.Operation] += event.AmountUSD
	return nil
}

func (t *InMemory) TotalUSD(_ context.Context) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total, nil
}

func (t *InMemory) ByOperation(_ context.Context) (map[string]float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]float64, len(t.byOperation))
	for op, amount := range t.byOperation {
		out[op] = amount
	}
	return out, nil
}
