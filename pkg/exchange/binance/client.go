package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"userstream/internal/ratelimit"
	"userstream/internal/transport"
	"userstream/pkg/core"
	"userstream/pkg/exchange"
)

var _ exchange.ListenKeyManager = (*Client)(nil)

// Dispatcher sends one listen-key request. *transport.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, spec *core.RequestSpec, apiKey string) (*core.Response, error)
	Close() error
}

// Client acquires, extends and revokes listen keys for one exchange variant.
// It is safe for concurrent use.
type Client struct {
	config     *core.Config
	endpoint   Endpoint
	dispatcher Dispatcher
	tracker    *ratelimit.Tracker
	registry   exchange.StreamRegistry
	locks      locker
	logger     zerolog.Logger
	now        func() time.Time
	closed     atomic.Bool

	keyMu      sync.RWMutex
	listenKey  string
	streamKeys map[string]string
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds configuration options for the Client.
type Options struct {
	Logger     zerolog.Logger
	Registry   exchange.StreamRegistry
	Dispatcher Dispatcher
	Tracker    *ratelimit.Tracker
	Registerer prometheus.Registerer
	Clock      func() time.Time
}

// WithLogger returns an option that sets the logger for the client.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithRegistry returns an option that sets where stream credentials are read from.
func WithRegistry(r exchange.StreamRegistry) Option {
	return func(o *Options) {
		o.Registry = r
	}
}

// WithDispatcher replaces the HTTP dispatcher.
func WithDispatcher(d Dispatcher) Option {
	return func(o *Options) {
		o.Dispatcher = d
	}
}

// WithTracker shares a rate-limit tracker between clients.
func WithTracker(t *ratelimit.Tracker) Option {
	return func(o *Options) {
		o.Tracker = t
	}
}

// WithMetricsRegisterer exports rate-limit metrics to r.
func WithMetricsRegisterer(r prometheus.Registerer) Option {
	return func(o *Options) {
		o.Registerer = r
	}
}

// WithClock sets the time source used for signature timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Clock = now
	}
}

// New creates a Client for config.Variant. An unknown variant fails with
// core.ErrUnsupportedVariant.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	endpoint, err := Resolve(config.Variant)
	if err != nil {
		return nil, err
	}

	options := &Options{
		Logger: zerolog.Nop(),
		Clock:  time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.Logger.With().
		Str("component", "userstream").
		Str("variant", config.Variant.String()).
		Logger()
	if config.LogLevel != "" {
		level, err := zerolog.ParseLevel(config.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		logger = logger.Level(level)
	}

	tracker := options.Tracker
	if tracker == nil {
		trackerOpts := []ratelimit.Option{ratelimit.WithLogger(logger)}
		if options.Registerer != nil {
			metrics, err := ratelimit.NewMetrics(options.Registerer, config.Variant.String())
			if err != nil {
				return nil, fmt.Errorf("register metrics: %w", err)
			}
			trackerOpts = append(trackerOpts, ratelimit.WithMetrics(metrics))
		}
		tracker = ratelimit.New(trackerOpts...)
	}

	dispatcher := options.Dispatcher
	if dispatcher == nil {
		baseURI := endpoint.BaseURI
		if config.BaseURL != "" {
			baseURI = config.BaseURL
		}
		dispatcher, err = transport.New(transport.Config{
			BaseURI:   baseURI,
			UserAgent: config.UserAgent(),
			Timeout:   config.Timeout,
		}, tracker, logger)
		if err != nil {
			return nil, fmt.Errorf("create dispatcher: %w", err)
		}
	}

	return &Client{
		config:     config,
		endpoint:   endpoint,
		dispatcher: dispatcher,
		tracker:    tracker,
		registry:   options.Registry,
		locks:      newLocker(config.LockMode),
		logger:     logger,
		now:        options.Clock,
		streamKeys: make(map[string]string),
	}, nil
}

// Variant returns the exchange variant the client was built for.
func (c *Client) Variant() core.Variant {
	return c.config.Variant
}

// Endpoint returns the resolved listen-key endpoint.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// Status returns the rate-limit signals of the most recent response.
func (c *Client) Status() core.APIStatus {
	return c.tracker.Snapshot()
}

// CurrentListenKey returns the key of the most recent successful Acquire, on any stream.
func (c *Client) CurrentListenKey() string {
	c.keyMu.RLock()
	defer c.keyMu.RUnlock()
	return c.listenKey
}

// ListenKey returns the key acquired for streamID.
func (c *Client) ListenKey(streamID string) (string, bool) {
	c.keyMu.RLock()
	defer c.keyMu.RUnlock()
	key, ok := c.streamKeys[streamID]
	return key, ok
}

// Close releases the HTTP client. Later calls fail with core.ErrClientClosed.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.dispatcher.Close()
}

// Acquire requests a new listen key. On success the key is stored as the
// current key and as the key of streamID. The response is returned whatever
// its status code.
func (c *Client) Acquire(ctx context.Context, streamID string, opts ...exchange.Option) (*core.Response, error) {
	const op = "acquire"

	unlock := c.locks.lock(streamID)
	defer unlock()

	creds, err := c.resolve(op, streamID, exchange.ApplyOptions(opts...).Credentials())
	if err != nil {
		return nil, err
	}

	spec := core.NewRequestSpec(http.MethodPost, c.endpoint.Path)
	if c.endpoint.RequiresSymbol {
		if creds.Symbol == "" {
			return nil, core.NewError(core.ErrorTypeMissingSymbol,
				"isolated margin listen keys require a symbol").WithOp(op).WithStream(streamID)
		}
		spec.SetParam("symbol", formatSymbol(creds.Symbol))
	}

	c.logger.Info().
		Str("stream_id", streamID).
		Str("symbol", creds.Symbol).
		Msg("acquiring listen key")

	resp, err := c.send(ctx, op, streamID, spec, creds)
	if err != nil {
		return nil, err
	}

	if key, ok := resp.ListenKey(); ok && resp.IsSuccess() {
		c.keyMu.Lock()
		c.listenKey = key
		c.streamKeys[streamID] = key
		c.keyMu.Unlock()

		c.logger.Info().
			Str("stream_id", streamID).
			Str("listen_key", c.config.Redact(key)).
			Msg("listen key acquired")
	}
	return resp, nil
}

// Keepalive extends the validity of a listen key. The key is taken from the
// call options, the key acquired for streamID, the current key or the registry,
// in that order.
func (c *Client) Keepalive(ctx context.Context, streamID string, opts ...exchange.Option) (*core.Response, error) {
	return c.withListenKey(ctx, "keepalive", http.MethodPut, streamID, opts)
}

// Revoke invalidates a listen key. The stored key is left in place.
func (c *Client) Revoke(ctx context.Context, streamID string, opts ...exchange.Option) (*core.Response, error) {
	return c.withListenKey(ctx, "revoke", http.MethodDelete, streamID, opts)
}

func (c *Client) withListenKey(ctx context.Context, op, method, streamID string, opts []exchange.Option) (*core.Response, error) {
	unlock := c.locks.lock(streamID)
	defer unlock()

	overrides := exchange.ApplyOptions(opts...).Credentials()
	creds, err := c.resolve(op, streamID, overrides)
	if err != nil {
		return nil, err
	}

	listenKey := c.pickListenKey(streamID, overrides.ListenKey, creds.ListenKey)
	if listenKey == "" {
		return nil, core.NewError(core.ErrorTypeMissingListenKey,
			"no listen key given, registered or acquired").WithOp(op).WithStream(streamID)
	}

	spec := core.NewRequestSpec(method, c.endpoint.Path).SetParam("listenKey", listenKey)
	if c.endpoint.RequiresSymbol && creds.Symbol != "" {
		spec.SetParam("symbol", formatSymbol(creds.Symbol))
	}

	c.logger.Info().
		Str("stream_id", streamID).
		Str("listen_key", c.config.Redact(listenKey)).
		Msg(op + " listen key")

	return c.send(ctx, op, streamID, spec, creds)
}

func (c *Client) resolve(op, streamID string, overrides core.Credentials) (core.Credentials, error) {
	if c.closed.Load() {
		return core.Credentials{}, core.NewError(core.ErrorTypeClientClosed, "client is closed").
			WithOp(op).WithStream(streamID)
	}

	creds, err := resolveCredentials(c.registry, streamID, overrides)
	if err != nil {
		return core.Credentials{}, annotate(err, op, streamID)
	}
	return creds, nil
}

// pickListenKey ranks an explicit override first, then the keys this client
// acquired, then whatever the registry holds.
func (c *Client) pickListenKey(streamID, override, registered string) string {
	if override != "" {
		return override
	}
	c.keyMu.RLock()
	defer c.keyMu.RUnlock()
	if key := c.streamKeys[streamID]; key != "" {
		return key
	}
	if c.listenKey != "" {
		return c.listenKey
	}
	return registered
}

func (c *Client) send(ctx context.Context, op, streamID string, spec *core.RequestSpec, creds core.Credentials) (*core.Response, error) {
	if c.config.SignRequests {
		body, err := signParams(spec.Body, creds.APISecret, c.now(), c.config.RecvWindow)
		if err != nil {
			return nil, annotate(err, op, streamID)
		}
		spec.Body = body
	}

	resp, err := c.dispatcher.Dispatch(ctx, spec, creds.APIKey)
	if err != nil {
		return nil, annotate(err, op, streamID)
	}

	event := c.logger.Debug()
	if resp.IsError() {
		event = c.logger.Warn()
		if apiErr, ok := resp.APIError(); ok {
			event = event.Int("code", int(apiErr.Code)).Str("msg", apiErr.Msg)
		}
	}
	event.
		Str("stream_id", streamID).
		Str("api_key", c.config.Redact(creds.APIKey)).
		Int("status", resp.StatusCode).
		Msg(op + " response")

	return resp, nil
}

// annotate returns a copy of the ExchangeError in err tagged with op and
// streamID. Errors from a StreamRegistry may be shared, so they are never
// modified in place.
func annotate(err error, op, streamID string) error {
	var e *core.ExchangeError
	if !errors.As(err, &e) {
		return err
	}
	annotated := *e
	annotated.Op = op
	if annotated.StreamID == "" {
		annotated.StreamID = streamID
	}
	return &annotated
}
