package ratelimit

import (
	"bytes"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_New(t *testing.T) {
	tracker := New()

	status := tracker.Snapshot()
	assert.Nil(t, status.UsedWeight)
	assert.True(t, status.ObservedAt.IsZero())
	assert.Equal(t, 0, status.LastStatusCode)
}

func TestTracker_Record(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tracker := New(WithClock(func() time.Time { return fixed }))

	header := http.Header{}
	header.Set(HeaderUsedWeight, "17")
	signal := tracker.Record(http.StatusOK, header)

	assert.Equal(t, SignalNone, signal)
	status := tracker.Snapshot()
	require.NotNil(t, status.UsedWeight)
	assert.Equal(t, int64(17), *status.UsedWeight)
	assert.Equal(t, fixed, status.ObservedAt)
	assert.Equal(t, http.StatusOK, status.LastStatusCode)
}

func TestTracker_RecordLastWriterWins(t *testing.T) {
	tracker := New()

	header := http.Header{}
	header.Set(HeaderUsedWeight, "5")
	tracker.Record(http.StatusOK, header)
	tracker.Record(http.StatusBadRequest, nil)

	status := tracker.Snapshot()
	assert.Nil(t, status.UsedWeight, "a response without the header clears the weight")
	assert.Equal(t, http.StatusBadRequest, status.LastStatusCode)
	assert.Equal(t, int64(2), tracker.Stats().Recorded)
}

func TestTracker_UsedWeightHeaders(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		want   *int64
	}{
		{"absent", nil, nil},
		{"spot_header", map[string]string{HeaderUsedWeight: "12"}, ptr(12)},
		{"futures_header", map[string]string{HeaderUsedWeight1m: "40"}, ptr(40)},
		{"both_prefers_plain", map[string]string{HeaderUsedWeight: "1", HeaderUsedWeight1m: "2"}, ptr(1)},
		{"not_a_number", map[string]string{HeaderUsedWeight: "abc"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			for k, v := range tt.header {
				header.Set(k, v)
			}
			assert.Equal(t, tt.want, usedWeight(header))
		})
	}
}

func TestTracker_SnapshotIsCopy(t *testing.T) {
	tracker := New()
	header := http.Header{}
	header.Set(HeaderUsedWeight, "3")
	tracker.Record(http.StatusOK, header)

	snap := tracker.Snapshot()
	*snap.UsedWeight = 999

	again := tracker.Snapshot()
	assert.Equal(t, int64(3), *again.UsedWeight)
}

// Comparing the status code against the strings "418" and "429" never matches.
func TestClassify_NumericStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Signal
	}{
		{"ok", http.StatusOK, SignalNone},
		{"bad_request", http.StatusBadRequest, SignalNone},
		{"banned", 418, SignalBanned},
		{"throttled", 429, SignalThrottled},
		{"server_error", http.StatusInternalServerError, SignalNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status))
		})
	}
}

func TestSignal_String(t *testing.T) {
	assert.Equal(t, "none", SignalNone.String())
	assert.Equal(t, "throttled", SignalThrottled.String())
	assert.Equal(t, "banned", SignalBanned.String())
}

func TestTracker_LogsCriticalSignals(t *testing.T) {
	var buf bytes.Buffer
	tracker := New(WithLogger(zerolog.New(&buf)))

	assert.Equal(t, SignalThrottled, tracker.Record(http.StatusTooManyRequests, nil))
	assert.Contains(t, buf.String(), `"severity":"critical"`)
	assert.Contains(t, buf.String(), `"status":429`)

	buf.Reset()
	assert.Equal(t, SignalBanned, tracker.Record(http.StatusTeapot, nil))
	assert.Contains(t, buf.String(), `"status":418`)

	buf.Reset()
	tracker.Record(http.StatusOK, nil)
	assert.Empty(t, buf.String())

	assert.Equal(t, int64(2), tracker.Stats().Signals)
}

func TestTracker_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg, "binance.com")
	require.NoError(t, err)

	tracker := New(WithMetrics(metrics))
	header := http.Header{}
	header.Set(HeaderUsedWeight, "21")
	tracker.Record(http.StatusOK, header)
	tracker.Record(http.StatusTooManyRequests, nil)
	tracker.Record(http.StatusTooManyRequests, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.responses.WithLabelValues("200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.responses.WithLabelValues("429")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.signals.WithLabelValues("throttled")))
	assert.Equal(t, 21.0, testutil.ToFloat64(metrics.usedWeight))
}

func TestNewMetrics_ReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg, "binance.com")
	require.NoError(t, err)
	second, err := NewMetrics(reg, "binance.com")
	require.NoError(t, err)

	New(WithMetrics(first)).Record(http.StatusOK, nil)
	New(WithMetrics(second)).Record(http.StatusOK, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(first.responses.WithLabelValues("200")))
}

func TestTracker_Concurrent(t *testing.T) {
	tracker := New()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			header := http.Header{}
			header.Set(HeaderUsedWeight, "7")
			tracker.Record(200+i%2, header)
			status := tracker.Snapshot()
			if assert.NotNil(t, status.UsedWeight) {
				assert.Equal(t, int64(7), *status.UsedWeight)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(100), tracker.Stats().Recorded)
}

func ptr(v int64) *int64 {
	return &v
}
