package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/jeremyhahn/go-vkauth/pkg/vk"
)

// AuthClient is the contract a host authentication framework drives during
// an external login: build the login URL, exchange the code VK sends back,
// then fetch the user's data.
//
// ExchangeCodeForToken returns "" and a nil error when the provider did not
// issue a token. FetchProfile returns nil data when no user is known.
type AuthClient interface {
	BuildLoginURL(returnURL string) (string, error)
	ExchangeCodeForToken(ctx context.Context, returnURL, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (map[string]string, error)
}

// ClientFactory creates a fresh AuthClient for a single login attempt.
type ClientFactory func() AuthClient

// ProviderName identifies a registered external login provider.
type ProviderName string

// ProviderVK is the name the VK client is registered under.
const ProviderVK ProviderName = "VK"

// Registry accepts external login providers.
type Registry interface {
	RegisterClient(name ProviderName, factory ClientFactory, extraData map[string]string) error
}

// Provider is a named client factory with the extra data the host displays
// alongside it.
type Provider struct {
	Name      ProviderName
	Factory   ClientFactory
	ExtraData map[string]string
}

// Config contains the providers the service starts with.
type Config struct {
	Providers []Provider

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

var (
	// ErrProviderNotFound indicates a requested provider is not registered.
	ErrProviderNotFound = errors.New("api: provider not registered")
	// ErrDuplicateProvider indicates a provider name is already registered.
	ErrDuplicateProvider = errors.New("api: duplicate provider name")
	// ErrInvalidProvider indicates a provider has no name or no factory.
	ErrInvalidProvider = errors.New("api: invalid provider")
	// ErrNoAccessToken indicates the provider did not issue an access token.
	ErrNoAccessToken = errors.New("api: no access token issued")
	// ErrNoProfile indicates no user data was returned for the login.
	ErrNoProfile = errors.New("api: no user data")
)

// Service is an in-memory Registry that also runs the login callback step.
// It is safe for concurrent use.
type Service struct {
	mu        sync.RWMutex
	providers map[ProviderName]Provider
	logger    *slog.Logger
}

var _ Registry = (*Service)(nil)

// NewService builds a Service from the supplied configuration.
func NewService(cfg Config) (*Service, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		providers: make(map[ProviderName]Provider, len(cfg.Providers)),
		logger:    logger.With("component", "api"),
	}
	for i, p := range cfg.Providers {
		if err := s.RegisterClient(p.Name, p.Factory, p.ExtraData); err != nil {
			return nil, fmt.Errorf("api: provider at index %d: %w", i, err)
		}
	}
	return s, nil
}

// RegisterClient registers factory under name. extraData may be nil.
func (s *Service) RegisterClient(name ProviderName, factory ClientFactory, extraData map[string]string) error {
	if strings.TrimSpace(string(name)) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProvider)
	}
	if factory == nil {
		return fmt.Errorf("%w: %q has no factory", ErrInvalidProvider, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.providers == nil {
		s.providers = make(map[ProviderName]Provider)
	}
	if _, ok := s.providers[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateProvider, name)
	}
	s.providers[name] = Provider{Name: name, Factory: factory, ExtraData: maps.Clone(extraData)}
	return nil
}

// Providers returns the registered provider names in sorted order.
func (s *Service) Providers() []ProviderName {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.providers))
}

// ExtraData returns a copy of the extra data registered with name.
func (s *Service) ExtraData(name ProviderName) (map[string]string, error) {
	p, err := s.provider(name)
	if err != nil {
		return nil, err
	}
	return maps.Clone(p.ExtraData), nil
}

// Client returns a new AuthClient from the factory registered under name.
func (s *Service) Client(name ProviderName) (AuthClient, error) {
	p, err := s.provider(name)
	if err != nil {
		return nil, err
	}
	return p.Factory(), nil
}

// LoginURL builds the login URL of the named provider for returnURL.
func (s *Service) LoginURL(name ProviderName, returnURL string) (string, error) {
	client, err := s.Client(name)
	if err != nil {
		return "", err
	}
	return client.BuildLoginURL(returnURL)
}

// Identity is the result of a completed external login.
type Identity struct {
	Provider    ProviderName
	AccessToken string
	Data        map[string]string
}

// ID returns the provider's user id.
func (i *Identity) ID() string { return i.Data[vk.ProfileID] }

// Username returns the user's display name.
func (i *Identity) Username() string { return i.Data[vk.ProfileUsername] }

// Complete runs the callback step of a login with the named provider: a
// fresh client exchanges code for a token and then fetches the user data.
func (s *Service) Complete(ctx context.Context, name ProviderName, returnURL, code string) (*Identity, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := s.Client(name)
	if err != nil {
		return nil, err
	}

	token, err := client.ExchangeCodeForToken(ctx, returnURL, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if token == "" {
		s.log().InfoContext(ctx, "external login rejected", "provider", name)
		return nil, fmt.Errorf("%s: %w", name, ErrNoAccessToken)
	}

	data, err := client.FetchProfile(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNoProfile)
	}

	s.log().InfoContext(ctx, "external login completed", "provider", name, "user_id", data[vk.ProfileID])
	return &Identity{Provider: name, AccessToken: token, Data: data}, nil
}

func (s *Service) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

func (s *Service) provider(name ProviderName) (Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.providers[name]
	if !ok {
		return Provider{}, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	return p, nil
}

// VKOption customizes the VK client built by RegisterVK.
type VKOption func(*vk.Config)

// WithScope sets the permission scope requested at login.
func WithScope(scope string) VKOption {
	return func(c *vk.Config) { c.Scope = scope }
}

// WithLogger sets the VK client's logger.
func WithLogger(logger *slog.Logger) VKOption {
	return func(c *vk.Config) { c.Logger = logger }
}

// WithVKConfig applies an arbitrary change to the VK client configuration.
func WithVKConfig(fn func(*vk.Config)) VKOption {
	return VKOption(fn)
}

// RegisterVK registers the VK client under ProviderVK. Each login attempt
// gets its own vk.Attempt; the underlying vk.Client is shared.
func RegisterVK(reg Registry, appID, appSecret string, opts ...VKOption) error {
	if reg == nil {
		return fmt.Errorf("%w: registry is nil", ErrInvalidProvider)
	}

	cfg := &vk.Config{ClientID: appID, ClientSecret: appSecret}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := vk.NewClient(cfg)
	if err != nil {
		return err
	}

	return reg.RegisterClient(ProviderVK, func() AuthClient { return client.NewAttempt() }, nil)
}

// Ensure the VK attempt satisfies the host contract.
var _ AuthClient = (*vk.Attempt)(nil)
