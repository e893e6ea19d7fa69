package core

import (
	"net/http"
	"time"
)

// APIStatus is the last rate-limit signal observed from the exchange.
type APIStatus struct {
	// UsedWeight is the used-weight header value, nil when the header was absent.
	UsedWeight *int64 `json:"used_weight,omitempty"`
	// ObservedAt is when the response was recorded; zero before the first response.
	ObservedAt time.Time `json:"observed_at"`
	// LastStatusCode is the HTTP status of the last response.
	LastStatusCode int `json:"last_status_code"`
}

// Weight returns the used weight and whether it was reported.
func (s APIStatus) Weight() (int64, bool) {
	if s.UsedWeight == nil {
		return 0, false
	}
	return *s.UsedWeight, true
}

// Banned reports whether the last response was an HTTP 418.
func (s APIStatus) Banned() bool {
	return s.LastStatusCode == http.StatusTeapot
}

// Throttled reports whether the last response was an HTTP 429.
func (s APIStatus) Throttled() bool {
	return s.LastStatusCode == http.StatusTooManyRequests
}
