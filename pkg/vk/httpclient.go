package vk

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"
)

// HTTPClient sends provider requests. Config.HTTPClient replaces the default.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type defaultHTTPClient struct {
	client *http.Client
}

// newDefaultHTTPClient creates an HTTP client for provider requests.
// It never retries: a failed round trip is reported to the caller.
func newDefaultHTTPClient(timeout time.Duration, tlsConfig *tls.Config, insecureSkipVerify bool, logger *slog.Logger) HTTPClient {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if tlsConfig != nil {
		tlsCfg = tlsConfig.Clone()
	}
	tlsCfg.InsecureSkipVerify = tlsCfg.InsecureSkipVerify || insecureSkipVerify

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSClientConfig:       tlsCfg,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	return &defaultHTTPClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &loggingTransport{base: transport, logger: logger},
		},
	}
}

// Do executes the HTTP request.
func (c *defaultHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// loggingTransport wraps an http.RoundTripper and logs each round trip at
// debug level. Only scheme, host and path are logged; the query carries
// client_secret, code and access_token.
type loggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)

	if t.logger == nil {
		return resp, err
	}

	attrs := []any{
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
		"duration", time.Since(start),
	}
	if err != nil {
		t.logger.DebugContext(req.Context(), "provider request failed", append(attrs, "error", err)...)
		return nil, err
	}
	t.logger.DebugContext(req.Context(), "provider request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}
