package ratelimit

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports tracker observations to Prometheus.
type Metrics struct {
	responses  *prometheus.CounterVec
	signals    *prometheus.CounterVec
	usedWeight prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with r.
// Collectors already registered by another client are reused.
func NewMetrics(r prometheus.Registerer, variant string) (*Metrics, error) {
	labels := prometheus.Labels{"variant": variant}

	m := &Metrics{
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "userstream", Subsystem: "rest", Name: "responses_total",
			Help:        "Listen-key REST responses by HTTP status code",
			ConstLabels: labels,
		}, []string{"status"}),
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "userstream", Subsystem: "rest", Name: "rate_limit_signals_total",
			Help:        "Ban (418) and throttle (429) responses",
			ConstLabels: labels,
		}, []string{"signal"}),
		usedWeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "userstream", Subsystem: "rest", Name: "used_weight",
			Help:        "Last used-weight header reported by the exchange",
			ConstLabels: labels,
		}),
	}

	var err error
	m.responses, err = register(r, m.responses)
	if err != nil {
		return nil, err
	}
	m.signals, err = register(r, m.signals)
	if err != nil {
		return nil, err
	}
	m.usedWeight, err = register(r, m.usedWeight)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](r prometheus.Registerer, c C) (C, error) {
	if err := r.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observe(statusCode int, weight *int64, signal Signal) {
	m.responses.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	if weight != nil {
		m.usedWeight.Set(float64(*weight))
	}
	if signal != SignalNone {
		m.signals.WithLabelValues(signal.String()).Inc()
	}
}
