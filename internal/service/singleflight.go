package service

import (
	"context"
	"sync"
)

// group coalesces concurrent calls sharing the same key into one
// execution, matching C6's lock-protected in-flight map shape
// (spec.md §9's concurrency primitive choice) applied here per
// spec.md §4.10's single-flight requirement at the façade boundary.
type group struct {
	mu       sync.Mutex
	inFlight map[string]chan struct{}
	results  map[string]groupResult
}

type groupResult struct {
	value interface{}
	err   error
}

func newGroup() *group {
	return &group{inFlight: make(map[string]chan struct{}), results: make(map[string]groupResult)}
}

// do runs fn for key, coalescing concurrent callers sharing key onto
// one execution; every caller receives the same (value, err). A
// waiter whose ctx is cancelled returns ctx.Err() immediately instead
// of blocking until the leader finishes, mirroring C6's
// taxonomy.Resolver.Resolve wait (spec.md §5's single-flight
// cancellation point).
func (g *group) do(ctx context.Context, key string, fn func() (interface{}, error)) (interface{}, error) {
	g.mu.Lock()
	if wait, ok := g.inFlight[key]; ok {
		g.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		g.mu.Lock()
		res := g.results[key]
		g.mu.Unlock()
		return res.value, res.err
	}

	done := make(chan struct{})
	g.inFlight[key] = done
	g.mu.Unlock()

	value, err := fn()

	g.mu.Lock()
	g.results[key] = groupResult{value: value, err: err}
	delete(g.inFlight, key)
	g.mu.Unlock()
	close(done)

	return value, err
}
