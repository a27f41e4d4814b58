// Package limiter provides the process-wide pacing gate used by the fetcher
// before every HTTP attempt, including retries.
package limiter

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/linkaudit/linkhealth-scanner/pkg/timeutil"
)

// Gate enforces a minimum interval between the start of any two requests
// made by the crawl engine, regardless of which worker goroutine makes
// them. Unlike a per-host limiter, it has no notion of host: the spec
// treats polite pacing as a single process-wide resource, not a property
// of each destination.
type Gate struct {
	mu          sync.Mutex
	rngMu       sync.Mutex
	baseDelay   time.Duration
	jitter      time.Duration
	lastFetchAt time.Time
	hasFetched  bool
	rng         *rand.Rand
}

// NewGate builds a Gate with the given base delay, jitter ceiling and
// deterministic random seed. A zero seed still produces a valid, if
// predictable, generator.
func NewGate(baseDelay, jitter time.Duration, randomSeed int64) *Gate {
	return &Gate{
		baseDelay: baseDelay,
		jitter:    jitter,
		rng:       rand.New(rand.NewSource(randomSeed)),
	}
}

// Wait blocks until the gate's minimum interval since the last request
// start has elapsed, then records the current time as the new last-fetch
// mark and returns. It returns ctx.Err() if the context is cancelled while
// waiting.
func (g *Gate) Wait(ctx context.Context) error {
	delay := g.reserve()
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// reserve computes how long the caller must wait before it may proceed,
// and immediately marks "now" as the last fetch time so that concurrent
// callers queue up rather than all firing at once.
func (g *Gate) reserve() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if !g.hasFetched {
		g.hasFetched = true
		g.lastFetchAt = now
		return 0
	}

	required := g.baseDelay + g.computeJitter()
	elapsed := now.Sub(g.lastFetchAt)

	var wait time.Duration
	if elapsed < required {
		wait = required - elapsed
	}

	g.lastFetchAt = now.Add(wait)
	return wait
}

func (g *Gate) computeJitter() time.Duration {
	if g.jitter <= 0 {
		return 0
	}
	g.rngMu.Lock()
	defer g.rngMu.Unlock()
	return timeutil.ComputeJitter(g.jitter, *g.rng)
}

// BaseDelay returns the configured minimum interval.
func (g *Gate) BaseDelay() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.baseDelay
}

// Jitter returns the configured jitter ceiling.
func (g *Gate) Jitter() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.jitter
}
