// Package transport dispatches listen-key REST requests and classifies their outcome.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	httpclient "userstream/internal/http"
	"userstream/internal/ratelimit"
	"userstream/pkg/core"
)

// HeaderAPIKey carries the raw API key on every request.
const HeaderAPIKey = "X-MBX-APIKEY"

// Config holds the per-client dispatch settings.
type Config struct {
	// BaseURI is joined with each request path.
	BaseURI string `validate:"required,url"`
	// UserAgent is sent as the User-Agent header.
	UserAgent string        `validate:"required"`
	Timeout   time.Duration `validate:"min=1ms"`
}

// Dispatcher sends one HTTP request per call, records the rate-limit signals of
// the response and returns the parsed JSON body. It does not retry and does not
// interpret exchange error payloads.
type Dispatcher struct {
	client  *httpclient.Client
	tracker *ratelimit.Tracker
	baseURI string
	logger  zerolog.Logger
}

var validate = validator.New()

// New creates a Dispatcher. A nil tracker gets a private one.
func New(config Config, tracker *ratelimit.Tracker, logger zerolog.Logger) (*Dispatcher, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid dispatcher config: %w", err)
	}

	client, err := httpclient.NewClient(&httpclient.Config{
		Timeout: config.Timeout,
		Headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": config.UserAgent,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	if tracker == nil {
		tracker = ratelimit.New(ratelimit.WithLogger(logger))
	}

	return &Dispatcher{
		client:  client,
		tracker: tracker,
		baseURI: strings.TrimRight(config.BaseURI, "/") + "/",
		logger:  logger,
	}, nil
}

// Tracker returns the rate-limit tracker updated by this dispatcher.
func (d *Dispatcher) Tracker() *ratelimit.Tracker {
	return d.tracker
}

// Close releases the underlying HTTP client.
func (d *Dispatcher) Close() error {
	return d.client.Close()
}

// URI composes base URI, path and optional query string.
func (d *Dispatcher) URI(path, query string) string {
	uri := d.baseURI + strings.TrimLeft(path, "/")
	if query != "" {
		uri += "?" + query
	}
	return uri
}

// Dispatch executes spec with apiKey in the API-key header. An empty apiKey is
// sent as is. POST and DELETE payloads are optional, PUT requires one. Payloads
// travel as form-encoded bodies.
func (d *Dispatcher) Dispatch(ctx context.Context, spec *core.RequestSpec, apiKey string) (*core.Response, error) {
	method := strings.ToUpper(spec.Method)
	body := spec.Body.Encode()

	opts := []httpclient.RequestOption{
		httpclient.WithHeader(HeaderAPIKey, apiKey),
	}

	var call func(context.Context, string, ...httpclient.RequestOption) (*resty.Response, error)
	switch method {
	case http.MethodPost:
		call = d.client.Post
		if body != "" {
			opts = append(opts, httpclient.WithFormBody(body))
		}
	case http.MethodPut:
		if body == "" {
			return nil, core.NewError(core.ErrorTypeMissingBody, "put requires a payload").WithOp("dispatch")
		}
		call = d.client.Put
		opts = append(opts, httpclient.WithFormBody(body))
	case http.MethodDelete:
		call = d.client.Delete
		if body != "" {
			opts = append(opts, httpclient.WithFormBody(body))
		}
	default:
		return nil, core.NewError(core.ErrorTypeUnsupportedMethod,
			fmt.Sprintf("unsupported http method: %q", spec.Method)).WithOp("dispatch")
	}

	uri := d.URI(spec.Path, spec.Query)
	resp, err := call(ctx, uri, opts...)
	if err != nil {
		if errors.Is(err, core.ErrClientClosed) {
			return nil, core.WrapError(core.ErrorTypeClientClosed, "dispatcher closed", err).WithOp("dispatch")
		}
		d.logger.Error().Err(err).
			Str("method", method).
			Str("path", spec.Path).
			Msg("http request failed")
		return nil, core.WrapError(core.ErrorTypeNetwork, strings.ToLower(method)+" "+spec.Path, err).WithOp("dispatch")
	}

	status := resp.StatusCode()
	d.tracker.Record(status, resp.Header())

	data := resp.Bytes()
	var parsed any
	if err := sonic.Unmarshal(data, &parsed); err != nil {
		d.logger.Error().Err(err).
			Str("method", method).
			Str("path", spec.Path).
			Int("status", status).
			Msg("response is not json")
		e := core.WrapError(core.ErrorTypeMalformedResponse, "decode response body", err).WithOp("dispatch")
		e.StatusCode = status
		e.Body = data
		return nil, e
	}

	d.logger.Debug().
		Str("method", method).
		Str("path", spec.Path).
		Int("status", status).
		Int("size", len(data)).
		Msg("http response")

	return &core.Response{
		StatusCode: status,
		Headers:    resp.Header(),
		Body:       data,
		Data:       parsed,
	}, nil
}
