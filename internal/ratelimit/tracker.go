// Package ratelimit records the rate-limit signals the exchange returns.
// It never delays or rejects requests; callers read the snapshot to back off.
package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"userstream/pkg/core"
)

// Used-weight response headers, in lookup order.
const (
	HeaderUsedWeight   = "X-MBX-USED-WEIGHT"
	HeaderUsedWeight1m = "X-MBX-USED-WEIGHT-1M"
)

// Signal classifies a response status for rate-limit purposes.
type Signal int

const (
	// SignalNone is any status that is not a rate-limit signal.
	SignalNone Signal = iota
	// SignalThrottled is HTTP 429: back off or the key will be banned.
	SignalThrottled
	// SignalBanned is HTTP 418: the key is banned from the API.
	SignalBanned
)

// String returns the string representation of the signal.
func (s Signal) String() string {
	switch s {
	case SignalThrottled:
		return "throttled"
	case SignalBanned:
		return "banned"
	default:
		return "none"
	}
}

// Classify maps an HTTP status code to a Signal.
func Classify(statusCode int) Signal {
	switch statusCode {
	case http.StatusTeapot:
		return SignalBanned
	case http.StatusTooManyRequests:
		return SignalThrottled
	default:
		return SignalNone
	}
}

// Tracker holds the last observed API status. Updates replace the whole
// record at once so readers never see a torn value.
type Tracker struct {
	status  atomic.Pointer[core.APIStatus]
	logger  zerolog.Logger
	metrics *Metrics
	now     func() time.Time

	recorded atomic.Int64
	signals  atomic.Int64
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger rate-limit signals are reported to.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Tracker) {
		t.logger = l
	}
}

// WithMetrics exports every recorded response to m.
func WithMetrics(m *Metrics) Option {
	return func(t *Tracker) {
		t.metrics = m
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New creates a Tracker with an empty status.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.status.Store(&core.APIStatus{})
	return t
}

// Record stores the status code and used weight of a response and returns its
// classification. Bans and throttles are logged at critical severity; they are
// not errors and the response is still handed back by the caller.
func (t *Tracker) Record(statusCode int, header http.Header) Signal {
	weight := usedWeight(header)
	t.status.Store(&core.APIStatus{
		UsedWeight:     weight,
		ObservedAt:     t.now(),
		LastStatusCode: statusCode,
	})
	t.recorded.Add(1)

	signal := Classify(statusCode)
	if t.metrics != nil {
		t.metrics.observe(statusCode, weight, signal)
	}

	switch signal {
	case SignalBanned:
		t.signals.Add(1)
		t.logger.Error().
			Str("severity", "critical").
			Int("status", statusCode).
			Msg("received status 418: the api key is banned from the exchange api, see the exchange rest api limits")
	case SignalThrottled:
		t.signals.Add(1)
		t.logger.Error().
			Str("severity", "critical").
			Int("status", statusCode).
			Msg("received status 429: back off or the api key will be banned, see the exchange rest api limits")
	}
	return signal
}

// Snapshot returns a copy of the last recorded status.
func (t *Tracker) Snapshot() core.APIStatus {
	s := *t.status.Load()
	if s.UsedWeight != nil {
		w := *s.UsedWeight
		s.UsedWeight = &w
	}
	return s
}

// Stats returns counters of recorded responses.
func (t *Tracker) Stats() StatsSnapshot {
	return StatsSnapshot{
		Recorded: t.recorded.Load(),
		Signals:  t.signals.Load(),
	}
}

// StatsSnapshot is a point-in-time capture of tracker counters.
type StatsSnapshot struct {
	// Recorded is the number of responses recorded.
	Recorded int64
	// Signals is the number of 418 and 429 responses recorded.
	Signals int64
}

func usedWeight(header http.Header) *int64 {
	if header == nil {
		return nil
	}
	for _, name := range []string{HeaderUsedWeight, HeaderUsedWeight1m} {
		raw := strings.TrimSpace(header.Get(name))
		if raw == "" {
			continue
		}
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return &v
		}
	}
	return nil
}
