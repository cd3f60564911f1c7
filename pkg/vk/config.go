package vk

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultAPIVersion is the VK API version sent with API method calls.
const DefaultAPIVersion = "5.131"

// Config contains the VK client configuration.
type Config struct {
	// Provider supplies the endpoints. Defaults to VK().
	Provider Provider

	// ClientID is the VK application id.
	ClientID string

	// ClientSecret is the VK application secure key.
	ClientSecret string

	// Scope is the permission scope requested at login, e.g. "email,offline".
	// It may be empty. See Scope() for building it from permissions.
	Scope string

	// APIVersion is the VK API version used for API method calls.
	APIVersion string

	// PublicProfileLookup disables sending the access token with users.get,
	// looking the profile up by user id only.
	PublicProfileLookup bool

	// Timeout is the HTTP client timeout for provider requests.
	Timeout time.Duration

	// TLSConfig allows custom TLS configuration.
	TLSConfig *tls.Config

	// InsecureSkipVerify disables TLS certificate verification (not recommended).
	InsecureSkipVerify bool

	// HTTPClient overrides the HTTP client built from Timeout and TLSConfig.
	HTTPClient HTTPClient

	// Logger receives request and flow diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Validate checks the configuration and fills in defaults.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfiguration)
	}

	if _, err := RequireNonEmpty(c.ClientID, "client_id"); err != nil {
		return err
	}
	if _, err := RequireNonEmpty(c.ClientSecret, "client_secret"); err != nil {
		return err
	}

	if c.Provider == nil {
		c.Provider = VK()
	}
	if c.Provider.AuthURL() == "" || c.Provider.TokenURL() == "" || c.Provider.APIURL() == "" {
		return fmt.Errorf("%w: provider %q has incomplete endpoints", ErrInvalidConfiguration, c.Provider.Name())
	}

	if strings.TrimSpace(c.APIVersion) == "" {
		c.APIVersion = DefaultAPIVersion
	}

	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}

	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	return nil
}

// RequireNonEmpty returns value unchanged, or an ErrInvalidConfiguration
// naming the parameter when value is empty or all whitespace.
func RequireNonEmpty(value, name string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s can't be empty", ErrInvalidConfiguration, name)
	}
	return value, nil
}

// configEnv holds raw env values for the client configuration.
type configEnv struct {
	ClientID            string        `env:"VK_CLIENT_ID"`
	ClientSecret        string        `env:"VK_CLIENT_SECRET"`
	Scope               string        `env:"VK_SCOPE"`
	APIVersion          string        `env:"VK_API_VERSION"            envDefault:"5.131"`
	PublicProfileLookup bool          `env:"VK_PUBLIC_PROFILE_LOOKUP"`
	Timeout             time.Duration `env:"VK_TIMEOUT"                envDefault:"30s"`
	AuthURL             string        `env:"VK_AUTH_URL"`
	TokenURL            string        `env:"VK_TOKEN_URL"`
	APIURL              string        `env:"VK_API_URL"`
}

// LoadConfigFromEnv builds a Config from VK_* environment variables.
// VK_AUTH_URL, VK_TOKEN_URL and VK_API_URL, when set, must all be set and
// select a custom provider. The result is not validated; NewClient does that.
func LoadConfigFromEnv() (*Config, error) {
	var raw configEnv
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("%w: parse env: %v", ErrInvalidConfiguration, err)
	}
	cfg := &Config{
		ClientID:            raw.ClientID,
		ClientSecret:        raw.ClientSecret,
		Scope:               strings.TrimSpace(raw.Scope),
		APIVersion:          raw.APIVersion,
		PublicProfileLookup: raw.PublicProfileLookup,
		Timeout:             raw.Timeout,
	}

	// Endpoint overrides replace all three endpoints or none.
	if raw.AuthURL != "" || raw.TokenURL != "" || raw.APIURL != "" {
		p, err := CustomProvider(ProviderConfig{
			ProviderName:  "vk",
			AuthEndpoint:  raw.AuthURL,
			TokenEndpoint: raw.TokenURL,
			APIEndpoint:   raw.APIURL,
		})
		if err != nil {
			return nil, err
		}
		cfg.Provider = p
	}

	return cfg, nil
}
