package exchange

import "userstream/pkg/core"

// Option overrides a credential field for a single call. Overrides never mutate
// the registry.
type Option func(*Options)

type Options struct {
	APIKey    string
	APISecret string
	Symbol    string
	ListenKey string
}

func WithAPIKey(key string) Option {
	return func(o *Options) {
		o.APIKey = key
	}
}

func WithAPISecret(secret string) Option {
	return func(o *Options) {
		o.APISecret = secret
	}
}

func WithSymbol(symbol string) Option {
	return func(o *Options) {
		o.Symbol = symbol
	}
}

func WithListenKey(listenKey string) Option {
	return func(o *Options) {
		o.ListenKey = listenKey
	}
}

// WithCredentials overrides every non-empty field of c.
func WithCredentials(c core.Credentials) Option {
	return func(o *Options) {
		if c.APIKey != "" {
			o.APIKey = c.APIKey
		}
		if c.APISecret != "" {
			o.APISecret = c.APISecret
		}
		if c.Symbol != "" {
			o.Symbol = c.Symbol
		}
		if c.ListenKey != "" {
			o.ListenKey = c.ListenKey
		}
	}
}

func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Credentials returns the overrides as a credential set.
func (o *Options) Credentials() core.Credentials {
	return core.Credentials{
		APIKey:    o.APIKey,
		APISecret: o.APISecret,
		Symbol:    o.Symbol,
		ListenKey: o.ListenKey,
	}
}
