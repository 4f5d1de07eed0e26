package services

import "sync"

// AttemptGuard de-duplicates concurrent deployment attempts against the same
// (vault, network) pair within one process. It is an optimization to avoid
// wasted duplicate submissions, not a cross-process guarantee; the executor's
// pre-existence check is what makes deployment idempotent at the network level.
type AttemptGuard interface {
	// TryAcquire marks the pair in flight. It returns false if an attempt for
	// the exact pair is already running.
	TryAcquire(vaultID, networkKey string) bool
	// Release clears the in-flight mark. Callers must release on every exit
	// path, success or failure.
	Release(vaultID, networkKey string)
}

type attemptGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewAttemptGuard creates an isolated guard instance. Guards are injected
// rather than shared globally so tests can instantiate one per case.
func NewAttemptGuard() AttemptGuard {
	return &attemptGuard{inFlight: make(map[string]struct{})}
}

func (g *attemptGuard) TryAcquire(vaultID, networkKey string) bool {
	key := vaultID + ":" + networkKey

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.inFlight[key]; exists {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

func (g *attemptGuard) Release(vaultID, networkKey string) {
	key := vaultID + ":" + networkKey

	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.inFlight, key)
}
