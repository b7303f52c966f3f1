package ratelimit

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	er "github.com/mcorbin/corbierror"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxKeys is the number of distinct keys above which stale keys are
// swept.
const DefaultMaxKeys = 1000

type Configuration struct {
	Window      time.Duration
	MaxRequests int
	MaxKeys     int
}

type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter int
}

// Limiter is a sliding window log: it keeps every accepted request
// timestamp per key and admits a request only when fewer than MaxRequests
// were accepted during the trailing window.
type Limiter struct {
	logger    *slog.Logger
	config    Configuration
	clock     func() time.Time
	decisions *prometheus.CounterVec
	keys      prometheus.Gauge

	lock    sync.Mutex
	buckets map[string][]time.Time
}

func New(logger *slog.Logger, config Configuration, registry *prometheus.Registry, clock func() time.Time) (*Limiter, error) {
	if config.Window <= 0 {
		return nil, er.Newf("the rate limit window must be positive, got %s", er.BadRequest, true, config.Window)
	}
	if config.MaxRequests <= 0 {
		return nil, er.Newf("the rate limit max requests must be positive, got %d", er.BadRequest, true, config.MaxRequests)
	}
	if config.MaxKeys <= 0 {
		config.MaxKeys = DefaultMaxKeys
	}
	if clock == nil {
		clock = time.Now
	}
	decisions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_decisions_total",
			Help: "Count the rate limiter decisions",
		},
		[]string{"allowed"})
	keys := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ratelimit_keys",
		Help: "Number of keys tracked by the rate limiter",
	})
	if err := registry.Register(decisions); err != nil {
		return nil, err
	}
	if err := registry.Register(keys); err != nil {
		return nil, err
	}
	return &Limiter{
		logger:    logger,
		config:    config,
		clock:     clock,
		decisions: decisions,
		keys:      keys,
		buckets:   make(map[string][]time.Time),
	}, nil
}

// Check records a request for key if it is admitted.
func (l *Limiter) Check(key string) Decision {
	l.lock.Lock()
	defer l.lock.Unlock()

	now := l.clock()
	cutoff := now.Add(-l.config.Window)
	timestamps := prune(l.buckets[key], cutoff)

	var decision Decision
	if len(timestamps) >= l.config.MaxRequests {
		wait := timestamps[0].Add(l.config.Window).Sub(now)
		decision = Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: int(math.Ceil(wait.Seconds())),
		}
	} else {
		timestamps = append(timestamps, now)
		decision = Decision{
			Allowed:   true,
			Remaining: l.config.MaxRequests - len(timestamps),
		}
	}
	l.buckets[key] = timestamps

	if len(l.buckets) > l.config.MaxKeys {
		l.sweep(cutoff)
	}
	l.keys.Set(float64(len(l.buckets)))
	l.decisions.WithLabelValues(fmt.Sprintf("%t", decision.Allowed)).Inc()
	return decision
}

// sweep removes the keys without activity since cutoff. Must be called
// with the lock held.
func (l *Limiter) sweep(cutoff time.Time) {
	before := len(l.buckets)
	for key, timestamps := range l.buckets {
		if len(timestamps) == 0 || timestamps[len(timestamps)-1].Before(cutoff) {
			delete(l.buckets, key)
		}
	}
	l.logger.Debug(fmt.Sprintf("rate limiter swept %d stale keys", before-len(l.buckets)))
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.buckets)
}

// prune drops the timestamps older than cutoff. timestamps is ordered.
func prune(timestamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(timestamps) && timestamps[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return timestamps
	}
	return append([]time.Time(nil), timestamps[i:]...)
}
