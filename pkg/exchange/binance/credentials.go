package binance

import (
	"errors"

	"userstream/pkg/core"
	"userstream/pkg/exchange"
)

// resolveCredentials merges call overrides with the credentials registered for
// streamID. Overrides win field by field. The registry is only read when one of
// key, secret and symbol is not overridden. The result is a fresh value, so
// neither the registry nor the overrides are changed.
func resolveCredentials(registry exchange.StreamRegistry, streamID string, overrides core.Credentials) (core.Credentials, error) {
	if overrides.APIKey != "" && overrides.APISecret != "" && overrides.Symbol != "" {
		return overrides, nil
	}

	if streamID == "" {
		return core.Credentials{}, core.NewError(core.ErrorTypeUnknownStream,
			"no stream id and credentials are not fully overridden")
	}
	if registry == nil {
		return core.Credentials{}, core.NewError(core.ErrorTypeUnknownStream,
			"no stream registry configured").WithStream(streamID)
	}

	stored, err := registry.StreamCredentials(streamID)
	if err != nil {
		if errors.Is(err, core.ErrUnknownStream) {
			return core.Credentials{}, err
		}
		return core.Credentials{}, core.WrapError(core.ErrorTypeUnknownStream,
			"read stream credentials", err).WithStream(streamID)
	}

	return core.Credentials{
		APIKey:    firstNonEmpty(overrides.APIKey, stored.APIKey),
		APISecret: firstNonEmpty(overrides.APISecret, stored.APISecret),
		Symbol:    firstNonEmpty(overrides.Symbol, stored.Symbol),
		ListenKey: firstNonEmpty(overrides.ListenKey, stored.ListenKey),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
