// Package binance manages listen keys for Binance user data streams.
// It covers spot, margin, isolated margin and futures, each on production and
// testnet, plus the regional Binance deployments and Jex.
//
// The package includes:
//   - Resolve: the static variant to endpoint table
//   - Sign: HMAC-SHA256 payload signatures
//   - Client: acquire, keepalive and revoke with per-client or per-stream locking
//
// Example usage:
//
//	registry := exchange.NewRegistry()
//	id := registry.Add(core.Credentials{APIKey: key, APISecret: secret})
//
//	client, err := binance.New(core.DefaultConfig(core.VariantSpot), binance.WithRegistry(registry))
//	resp, err := client.Acquire(ctx, id)
//	resp, err = client.Keepalive(ctx, id)
package binance
