package core

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Version is the client's semantic version, embedded in the User-Agent header.
const Version = "1.0.0"

// DefaultProduct is the product name embedded in the User-Agent header.
const DefaultProduct = "userstream"

// DefaultRedactedText replaces secrets in log output.
const DefaultRedactedText = "*****"

// LockMode selects how lifecycle calls on one client are serialized.
type LockMode string

const (
	// LockPerClient serializes every lifecycle call on a client, whatever its stream.
	LockPerClient LockMode = "client"
	// LockPerStream serializes lifecycle calls per stream id only.
	LockPerStream LockMode = "stream"
)

// Config contains all configuration options for a listen-key client.
type Config struct {
	Variant Variant `json:"variant" yaml:"variant" validate:"required"`

	// BaseURL overrides the variant's base URI, e.g. for a proxy or a test server.
	// The listen-key path still comes from the variant.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url" validate:"omitempty,url"`

	// Product and Version form the User-Agent header "<product>/<version>".
	Product string `json:"product" yaml:"product" validate:"required"`
	Version string `json:"version" yaml:"version" validate:"required"`

	// Timeout is the maximum duration of one HTTP call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" validate:"min=1ms"`

	// SignRequests adds timestamp and HMAC signature to every listen-key payload.
	SignRequests bool          `json:"sign_requests" yaml:"sign_requests"`
	RecvWindow   time.Duration `json:"recv_window" yaml:"recv_window" validate:"min=0"`

	LockMode LockMode `json:"lock_mode" yaml:"lock_mode" validate:"omitempty,oneof=client stream"`

	// RevealSecrets logs keys and listen keys in clear text.
	RevealSecrets bool   `json:"reveal_secrets" yaml:"reveal_secrets"`
	RedactedText  string `json:"redacted_text" yaml:"redacted_text"`

	LogLevel string `json:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config initialized with sensible defaults for the given variant.
// Default values: 10s timeout, unsigned payloads, per-client locking, redacted secrets.
func DefaultConfig(variant Variant) *Config {
	return &Config{
		Variant:      variant,
		Product:      DefaultProduct,
		Version:      Version,
		Timeout:      10 * time.Second,
		RecvWindow:   5 * time.Second,
		LockMode:     LockPerClient,
		RedactedText: DefaultRedactedText,
		LogLevel:     "info",
	}
}

var validate = validator.New()

// Validate checks field constraints. Whether the variant has an endpoint is
// checked when the client is constructed.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// UserAgent returns the User-Agent header value.
func (c *Config) UserAgent() string {
	return c.Product + "/" + c.Version
}

// Redact returns s when secrets may be revealed, the redaction text otherwise.
func (c *Config) Redact(s string) string {
	if c.RevealSecrets {
		return s
	}
	if c.RedactedText == "" {
		return DefaultRedactedText
	}
	return c.RedactedText
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates the result.
// Durations are written as Go duration strings ("10s", "500ms").
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// WithBaseURL overrides the variant's base URI and returns the config for chaining.
func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithSigning enables or disables payload signing and returns the config for chaining.
func (c *Config) WithSigning(sign bool) *Config {
	c.SignRequests = sign
	return c
}

// WithLockMode sets the locking discipline and returns the config for chaining.
func (c *Config) WithLockMode(mode LockMode) *Config {
	c.LockMode = mode
	return c
}

// WithRevealSecrets enables or disables clear-text secrets in logs and returns the config for chaining.
func (c *Config) WithRevealSecrets(reveal bool) *Config {
	c.RevealSecrets = reveal
	return c
}
