package ratelimit_test

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/appclacks/sleepslo/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	lock sync.Mutex
	now  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *fakeClock) Set(offset time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC).Add(offset)
}

func newLimiter(t *testing.T, config ratelimit.Configuration) (*ratelimit.Limiter, *fakeClock, *prometheus.Registry) {
	t.Helper()
	clock := &fakeClock{}
	clock.Set(0)
	reg := prometheus.NewRegistry()
	limiter, err := ratelimit.New(slog.Default(), config, reg, clock.Now)
	require.NoError(t, err)
	return limiter, clock, reg
}

func TestLimiterSlidingWindow(t *testing.T) {
	limiter, clock, reg := newLimiter(t, ratelimit.Configuration{Window: 60 * time.Second, MaxRequests: 5})
	key := "+15555550100"

	for i := 0; i < 5; i++ {
		clock.Set(time.Duration(i) * time.Second)
		decision := limiter.Check(key)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 4-i, decision.Remaining)
	}

	clock.Set(5 * time.Second)
	decision := limiter.Check(key)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, 55, decision.RetryAfter)

	clock.Set(5500 * time.Millisecond)
	decision = limiter.Check(key)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 55, decision.RetryAfter)

	clock.Set(65 * time.Second)
	decision = limiter.Check(key)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 4, decision.Remaining)

	expected := `
# HELP ratelimit_decisions_total Count the rate limiter decisions
# TYPE ratelimit_decisions_total counter
ratelimit_decisions_total{allowed="false"} 2
ratelimit_decisions_total{allowed="true"} 6
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ratelimit_decisions_total"))
}

func TestLimiterRejectionDoesNotExtendWindow(t *testing.T) {
	limiter, clock, _ := newLimiter(t, ratelimit.Configuration{Window: 10 * time.Second, MaxRequests: 1})
	assert.True(t, limiter.Check("a").Allowed)
	for i := 1; i < 10; i++ {
		clock.Set(time.Duration(i) * time.Second)
		decision := limiter.Check("a")
		assert.False(t, decision.Allowed)
		assert.Equal(t, 10-i, decision.RetryAfter)
	}
	clock.Set(11 * time.Second)
	assert.True(t, limiter.Check("a").Allowed)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	limiter, _, _ := newLimiter(t, ratelimit.Configuration{Window: time.Minute, MaxRequests: 2})
	assert.True(t, limiter.Check("a").Allowed)
	assert.True(t, limiter.Check("a").Allowed)
	assert.False(t, limiter.Check("a").Allowed)
	decision := limiter.Check("b")
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Remaining)
}

func TestLimiterSweep(t *testing.T) {
	limiter, clock, _ := newLimiter(t, ratelimit.Configuration{Window: time.Minute, MaxRequests: 2, MaxKeys: 3})
	for i := 0; i < 3; i++ {
		limiter.Check(fmt.Sprintf("key-%d", i))
	}
	assert.Equal(t, 3, limiter.Len())

	// still active keys are never swept
	clock.Set(30 * time.Second)
	limiter.Check("key-3")
	assert.Equal(t, 4, limiter.Len())

	clock.Set(2 * time.Minute)
	limiter.Check("key-4")
	assert.Equal(t, 1, limiter.Len())
}

func TestLimiterConcurrentSameKey(t *testing.T) {
	limiter, _, _ := newLimiter(t, ratelimit.Configuration{Window: time.Minute, MaxRequests: 10})
	var wg sync.WaitGroup
	var lock sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Check("same").Allowed {
				lock.Lock()
				allowed++
				lock.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}

func TestLimiterConfiguration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := ratelimit.New(slog.Default(), ratelimit.Configuration{Window: 0, MaxRequests: 5}, reg, nil)
	assert.ErrorContains(t, err, "window must be positive")
	_, err = ratelimit.New(slog.Default(), ratelimit.Configuration{Window: time.Minute, MaxRequests: 0}, reg, nil)
	assert.ErrorContains(t, err, "max requests must be positive")
}
