package vk

import (
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// Provider defines the endpoints of a VK-compatible OAuth 2.0 provider.
type Provider interface {
	// Name returns the provider's identifier.
	Name() string

	// AuthURL returns the authorization endpoint URL.
	AuthURL() string

	// TokenURL returns the token endpoint URL.
	TokenURL() string

	// APIURL returns the base URL of the API methods, e.g. "https://api.vk.com/method/".
	APIURL() string
}

// ProviderConfig holds configuration for a custom provider, such as a
// regional mirror, an egress proxy or a test stub.
type ProviderConfig struct {
	ProviderName  string
	AuthEndpoint  string
	TokenEndpoint string
	APIEndpoint   string
}

// customProvider implements Provider with user-supplied configuration.
type customProvider struct {
	config ProviderConfig
}

// CustomProvider creates a Provider from custom configuration.
func CustomProvider(cfg ProviderConfig) (Provider, error) {
	if strings.TrimSpace(cfg.ProviderName) == "" {
		return nil, fmt.Errorf("%w: provider name is required", ErrInvalidConfiguration)
	}
	if strings.TrimSpace(cfg.AuthEndpoint) == "" {
		return nil, fmt.Errorf("%w: auth endpoint is required", ErrInvalidConfiguration)
	}
	if strings.TrimSpace(cfg.TokenEndpoint) == "" {
		return nil, fmt.Errorf("%w: token endpoint is required", ErrInvalidConfiguration)
	}
	if strings.TrimSpace(cfg.APIEndpoint) == "" {
		return nil, fmt.Errorf("%w: api endpoint is required", ErrInvalidConfiguration)
	}
	return &customProvider{config: cfg}, nil
}

func (p *customProvider) Name() string     { return p.config.ProviderName }
func (p *customProvider) AuthURL() string  { return p.config.AuthEndpoint }
func (p *customProvider) TokenURL() string { return p.config.TokenEndpoint }
func (p *customProvider) APIURL() string   { return p.config.APIEndpoint }

type vkProvider struct{}

// VK returns the pre-configured vk.com provider.
func VK() Provider {
	return &vkProvider{}
}

func (p *vkProvider) Name() string { return "vk" }
func (p *vkProvider) AuthURL() string {
	return "https://oauth.vk.com/authorize"
}
func (p *vkProvider) TokenURL() string {
	return "https://oauth.vk.com/access_token"
}
func (p *vkProvider) APIURL() string {
	return "https://api.vk.com/method/"
}

// Endpoint returns the provider's endpoints as an oauth2.Endpoint.
// VK expects client credentials as query parameters.
func Endpoint(p Provider) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   p.AuthURL(),
		TokenURL:  p.TokenURL(),
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// methodURL joins the API base URL and a method name.
func methodURL(p Provider, method string) string {
	return strings.TrimRight(p.APIURL(), "/") + "/" + method
}
