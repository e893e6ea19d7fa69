package core

import "fmt"

// Credentials holds the values one lifecycle call is made with.
// An empty field means "not provided".
type Credentials struct {
	// APIKey is the public API key identifier, sent in the API-key header.
	APIKey string `json:"api_key" yaml:"api_key"`
	// APISecret is the private key used for signing payloads.
	APISecret string `json:"api_secret" yaml:"api_secret"`
	// Symbol is required by isolated margin user data streams.
	Symbol string `json:"symbol,omitempty" yaml:"symbol"`
	// ListenKey is the key keepalive and revoke act on.
	ListenKey string `json:"listen_key,omitempty" yaml:"listen_key"`
}

// String masks the key and hides the secret and listen key.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{APIKey:%s, Symbol:%s, ListenKey:%s}",
		MaskKey(c.APIKey), c.Symbol, MaskKey(c.ListenKey))
}

// MaskKey keeps the first and last four characters of long keys.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
