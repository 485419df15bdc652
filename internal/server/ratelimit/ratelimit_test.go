package ratelimit

import (
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLimiter_Allow(t *testing.T) {
	limiter := NewMemoryLimiter(Config{Enabled: true, Requests: 3, Window: time.Minute})
	defer limiter.Stop()

	assert.True(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))

	assert.True(t, limiter.Allow("b"), "keys are independent")
}

func TestMemoryLimiter_Disabled(t *testing.T) {
	limiter := NewMemoryLimiter(Config{Enabled: false, Requests: 1, Window: time.Minute})
	defer limiter.Stop()

	for range 10 {
		assert.True(t, limiter.Allow("a"))
	}
}

func TestMemoryLimiter_Reset(t *testing.T) {
	limiter := NewMemoryLimiter(Config{Enabled: true, Requests: 1, Window: time.Minute})
	defer limiter.Stop()

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	limiter.Reset("a")
	assert.True(t, limiter.Allow("a"))
}

func TestMemoryLimiter_Refill(t *testing.T) {
	limiter := NewMemoryLimiter(Config{Enabled: true, Requests: 10, Window: 100 * time.Millisecond})
	defer limiter.Stop()

	for range 10 {
		limiter.Allow("a")
	}
	assert.False(t, limiter.Allow("a"))
	assert.Eventually(t, func() bool { return limiter.Allow("a") }, time.Second, 5*time.Millisecond)
}

func TestMemoryLimiter_CleanupStale(t *testing.T) {
	limiter := NewMemoryLimiter(Config{Enabled: true, Requests: 5, Window: time.Minute}).(*memoryLimiter)
	defer limiter.Stop()

	limiter.Allow("a")
	limiter.Allow("b")
	assert.Equal(t, 2, limiter.size())

	limiter.cleanupStale(time.Now())
	assert.Equal(t, 2, limiter.size())

	limiter.cleanupStale(time.Now().Add(3 * time.Minute))
	assert.Equal(t, 0, limiter.size())
}

func TestMemoryLimiter_StopIdempotent(t *testing.T) {
	limiter := NewMemoryLimiter(Config{Enabled: true, Requests: 1, Window: time.Minute})
	assert.NotPanics(t, func() {
		limiter.Stop()
		limiter.Stop()
	})
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	limiter := NewMemoryLimiter(Config{Enabled: true, Requests: 50, Window: time.Hour})
	defer limiter.Stop()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				if limiter.Allow("shared") {
					allowed.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(50), allowed.Load())
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, "9.9.9.9:1", "1.1.1.1"},
		{"forwarded single", map[string]string{"X-Forwarded-For": " 1.1.1.1 "}, "9.9.9.9:1", "1.1.1.1"},
		{"real ip", map[string]string{"X-Real-IP": "3.3.3.3"}, "9.9.9.9:1", "3.3.3.3"},
		{"remote addr", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote without port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(r))
		})
	}
}
