// Package ratelimit provides per-key request limiting with a process-local
// and a Redis-backed implementation.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Decision is the outcome of a limit check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Config is shared by both limiters.
type Config struct {
	RequestsPerMinute int
	Burst             int
}

func (c Config) normalized() Config {
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = 60
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	return c
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps a token bucket per key. Buckets idle for longer than
// idleTTL are dropped on later calls.
type MemoryLimiter struct {
	cfg       Config
	mu        sync.Mutex
	visitors  map[string]*visitor
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter creates a MemoryLimiter.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:      cfg.normalized(),
		visitors: make(map[string]*visitor),
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	v, ok := m.visitors[key]
	if !ok {
		perSecond := rate.Limit(float64(m.cfg.RequestsPerMinute) / 60.0)
		v = &visitor{limiter: rate.NewLimiter(perSecond, m.cfg.Burst)}
		m.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return Decision{Allowed: false, RetryAfter: time.Minute}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}
	return Decision{Allowed: true}, nil
}

func (m *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < m.idleTTL {
		return
	}
	m.lastSweep = now
	for k, v := range m.visitors {
		if now.Sub(v.lastSeen) > m.idleTTL {
			delete(m.visitors, k)
		}
	}
}
