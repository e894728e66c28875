// Package client is the Go SDK for the referral program admin API: login,
// the profile directory, profile detail and deletion.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Graziano10/referral-admin/client/internal/api"
	"github.com/Graziano10/referral-admin/client/internal/shardqueue"
	"github.com/Graziano10/referral-admin/client/internal/types"
	"github.com/Graziano10/referral-admin/session"
)

// DefaultHTTPTimeout bounds a single request unless WithHTTPTimeout says
// otherwise.
const DefaultHTTPTimeout = 15 * time.Second

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

type Client struct {
	baseURL string
	http    *http.Client
	session session.Provider
	logger  zerolog.Logger
	bulk    BulkConfig

	api  *api.Transport
	exec executor

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client for the API at baseURL. Every request except
// login carries the credential held by provider, and a 401 answer is
// reported to provider.HandleUnauthorized.
func New(baseURL string, provider session.Provider, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	if provider == nil {
		return nil, fmt.Errorf("session provider cannot be nil")
	}

	c := &Client{
		baseURL: baseURL,
		session: provider,
		http:    &http.Client{Timeout: DefaultHTTPTimeout},
		logger:  log.Logger,
		bulk:    DefaultBulkConfig(),
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.api = api.NewTransport(baseURL, c.http, provider, observeRequest, c.logger)
	if c.exec == nil {
		c.exec = shardqueue.NewShardExecutor(c.bulk.shardConfig(c.logger))
	}
	return c, nil
}

func observeRequest(op string, status int) {
	requestsTotal.WithLabelValues(op, strconv.Itoa(status)).Inc()
	if status == http.StatusUnauthorized {
		unauthorizedTotal.Inc()
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Close stops the bulk executor. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	return nil
}

// --------------------------------------------------------------------
// Session operations
// --------------------------------------------------------------------

// Login validates the credentials locally, authenticates and persists the
// returned token. Nothing is persisted when any step fails.
func (c *Client) Login(ctx context.Context, email, password string) (*SessionProfile, error) {
	req, err := types.NormalizeLogin(email, password)
	if err != nil {
		return nil, err
	}
	resp, err := c.api.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := c.session.Set(ctx, resp.Token); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	c.logger.Debug().Str("email", resp.Profile.Email).Msg("logged in")
	return &resp.Profile, nil
}

// Logout forgets the credential. The API has no logout endpoint.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}

// --------------------------------------------------------------------
// Directory operations - delegated to internal/api
// --------------------------------------------------------------------

// ListProfiles returns one page of the directory. Unset paging and sort
// fields take their defaults.
func (c *Client) ListProfiles(ctx context.Context, q ProfileQuery) (*ListProfilesResponse, error) {
	nq, err := types.NormalizeQuery(q)
	if err != nil {
		return nil, err
	}
	return c.api.ListProfiles(ctx, nq)
}

// GetProfile returns a profile and one page of the emails it referred.
func (c *Client) GetProfile(ctx context.Context, id string, opts DetailOptions) (*ProfileDetail, error) {
	return c.api.GetProfile(ctx, id, opts)
}

// DeleteProfile removes a single profile.
func (c *Client) DeleteProfile(ctx context.Context, id string) (*DeleteProfileResponse, error) {
	return c.api.DeleteProfile(ctx, id)
}
