package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type memoryLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	config   Config
	limit    rate.Limit

	cleanupT *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter creates a token bucket per key refilling at
// Requests/Window. Keys idle for two windows are dropped.
func NewMemoryLimiter(cfg Config) Stoppable {
	l := &memoryLimiter{
		limiters: make(map[string]*entry),
		config:   cfg,
		stopCh:   make(chan struct{}),
	}
	if cfg.Requests > 0 && cfg.Window > 0 {
		l.limit = rate.Every(cfg.Window / time.Duration(cfg.Requests))
	}

	interval := cfg.Window * 2
	if interval <= 0 {
		interval = time.Minute
	}
	l.cleanupT = time.NewTicker(interval)
	go l.cleanup()

	return l
}

func (l *memoryLimiter) Allow(key string) bool {
	if !l.config.Enabled {
		return true
	}

	l.mu.Lock()
	e, ok := l.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.config.Requests)}
		l.limiters[key] = e
	}
	e.lastSeen = time.Now()
	l.mu.Unlock()

	return e.limiter.Allow()
}

func (l *memoryLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, key)
}

func (l *memoryLimiter) cleanup() {
	for {
		select {
		case <-l.cleanupT.C:
			l.cleanupStale(time.Now())
		case <-l.stopCh:
			l.cleanupT.Stop()
			return
		}
	}
}

func (l *memoryLimiter) cleanupStale(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	threshold := l.config.Window * 2
	for key, e := range l.limiters {
		if now.Sub(e.lastSeen) > threshold {
			delete(l.limiters, key)
		}
	}
}

// Stop ends the cleanup goroutine. It is idempotent.
func (l *memoryLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *memoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
