package core

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// SignatureParam is the payload key carrying the HMAC signature.
const SignatureParam = "signature"

// Params is a key-value request payload.
type Params map[string]any

// Encode returns the URL-encoded payload with keys in sorted order and the
// signature, if present, always last. The signed payload is exactly Encode
// of the params without the signature.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}

	keys := slices.Sorted(maps.Keys(p))
	var sb strings.Builder
	for _, k := range keys {
		if k == SignatureParam {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(formatParam(p[k])))
	}
	if sig, ok := p[SignatureParam]; ok {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(SignatureParam + "=" + url.QueryEscape(formatParam(sig)))
	}
	return sb.String()
}

// Clone returns a shallow copy of the params.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

func formatParam(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// RequestSpec describes one listen-key HTTP call.
type RequestSpec struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Query  string `json:"query,omitempty"`
	Body   Params `json:"body,omitempty"`
}

// NewRequestSpec creates a RequestSpec for method and path.
func NewRequestSpec(method, path string) *RequestSpec {
	return &RequestSpec{
		Method: method,
		Path:   path,
	}
}

// SetQuery sets the raw query string and returns the spec for chaining.
func (r *RequestSpec) SetQuery(query string) *RequestSpec {
	r.Query = query
	return r
}

// SetParam sets one body parameter and returns the spec for chaining.
func (r *RequestSpec) SetParam(key string, value any) *RequestSpec {
	if r.Body == nil {
		r.Body = make(Params)
	}
	r.Body[key] = value
	return r
}
