package vk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Client performs the VK authorization code flow.
// It is safe for concurrent use and immutable after construction.
type Client struct {
	config   *Config
	flows    *flowHandler
	profiles *profileClient
	logger   *slog.Logger
}

// NewClient creates a new VK client with the given configuration.
// The configuration is copied; later changes to config have no effect.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfiguration)
	}

	cfg := *config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger.With("component", "vk", "provider", cfg.Provider.Name())

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newDefaultHTTPClient(cfg.Timeout, cfg.TLSConfig, cfg.InsecureSkipVerify, logger)
	}

	return &Client{
		config:   &cfg,
		flows:    newFlowHandler(&cfg, httpClient),
		profiles: newProfileClient(&cfg, httpClient),
		logger:   logger,
	}, nil
}

// Name returns the configured provider's name.
func (c *Client) Name() string {
	return c.config.Provider.Name()
}

// Endpoint returns the provider's authorization and token endpoints.
func (c *Client) Endpoint() oauth2.Endpoint {
	return c.flows.endpoint
}

// LoginURL builds the URL the browser is redirected to for user consent.
// returnURL must be an absolute URL registered with the VK application,
// without a fragment.
//
// returnURL is appended to the query unescaped, as VK expects. A query in
// returnURL therefore leaks into the login and token requests: with
// "https://example.com/cb?next=/a&b=1", b=1 becomes a top-level parameter.
// Keep return URLs query-free, or pre-encode the query.
func (c *Client) LoginURL(returnURL string, opts ...LoginOption) (string, error) {
	return c.flows.buildLoginURL(returnURL, opts...)
}

// Exchange exchanges an authorization code for a token. returnURL must be
// the one passed to LoginURL.
//
// A denial by VK, including an empty response, is reported as an error
// matching ErrAuthorizationDenied; a provider error object is a
// *ProviderError. Non-2xx statuses and network failures match
// ErrTransport, malformed bodies match ErrParse.
func (c *Client) Exchange(ctx context.Context, returnURL, code string) (*Token, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	token, err := c.flows.exchangeCode(ctx, returnURL, code)
	if err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) {
			c.logger.WarnContext(ctx, "authorization denied", "error_code", perr.Code)
		}
		return nil, err
	}

	c.logger.InfoContext(ctx, "authorization code exchanged", "user_id", token.UserID)
	return token, nil
}

// Profile fetches the basic profile of the user the token was issued for.
// A token without a user id fails with ErrNoUserID and no request is made.
func (c *Client) Profile(ctx context.Context, token *Token) (Profile, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if token == nil || token.UserID == 0 {
		return nil, ErrNoUserID
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return c.profiles.fetchProfile(ctx, token.UserID, token.AccessToken)
}

// NewAttempt starts a login attempt bound to this client.
func (c *Client) NewAttempt() *Attempt {
	id := uuid.NewString()
	return &Attempt{
		id:     id,
		client: c,
		logger: c.logger.With("attempt_id", id),
	}
}

// NewStateCodec returns a StateCodec keyed from the client secret.
func (c *Client) NewStateCodec() *StateCodec {
	return &StateCodec{
		key: deriveStateKey(c.config.ClientSecret),
		ttl: DefaultStateTTL,
	}
}
