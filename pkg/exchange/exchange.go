package exchange

import (
	"context"

	"userstream/pkg/core"
)

// StreamRegistry supplies the credentials registered for a stream. It is owned
// by the caller that multiplexes user-data streams; lifecycle managers only read it.
type StreamRegistry interface {
	// StreamCredentials returns the credentials of streamID or core.ErrUnknownStream.
	StreamCredentials(streamID string) (core.Credentials, error)
}

// ListenKeyManager acquires, extends and revokes listen keys for user-data streams.
// A nil error with a response always means the exchange answered; callers inspect
// Response.StatusCode and Response.APIError to tell success from rejection.
type ListenKeyManager interface {
	Acquire(ctx context.Context, streamID string, opts ...Option) (*core.Response, error)
	Keepalive(ctx context.Context, streamID string, opts ...Option) (*core.Response, error)
	Revoke(ctx context.Context, streamID string, opts ...Option) (*core.Response, error)

	CurrentListenKey() string
	Status() core.APIStatus
	Variant() core.Variant
	Close() error
}
