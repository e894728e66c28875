package client

// Functional options that configure the Client during construction.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Client during construction in New.
//
// Options run in order before the resty clients are built, so the final
// http.Client (timeout and transport chain) is what every request uses.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout. The value must be
// greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithHTTPClient replaces the http.Client. Options applied after it (timeout,
// debug logging) modify the supplied client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.http = hc
		return nil
	}
}

// WithDebugLogging wraps the transport so each request/response is logged
// at debug level when enabled is true. Credentials are redacted.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			if _, already := c.http.Transport.(*debugTransport); !already {
				c.http.Transport = &debugTransport{base: c.http.Transport}
			}
		}
		return nil
	}
}

// WithLogger sets the logger used for client diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}

// WithBulkConfig tunes the executor behind DeleteProfiles.
func WithBulkConfig(b BulkConfig) Option {
	return func(c *Client) error {
		if b.Shards < 0 || b.QueueSize < 0 || b.MaxAttempts < 0 {
			return fmt.Errorf("bulk config values must be >= 0")
		}
		c.bulk = b
		return nil
	}
}
