package vk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 1 << 20

// loginOptions holds optional authorization request parameters.
type loginOptions struct {
	state      string
	display    string
	apiVersion string
	revoke     bool
}

// LoginOption customizes the authorization URL.
type LoginOption func(*loginOptions)

// WithState adds an opaque state value that VK echoes back on redirect.
func WithState(state string) LoginOption {
	return func(o *loginOptions) { o.state = state }
}

// WithDisplay selects the authorization page type: "page", "popup" or "mobile".
func WithDisplay(display string) LoginOption {
	return func(o *loginOptions) { o.display = display }
}

// WithRevoke forces VK to ask for permissions again even if already granted.
func WithRevoke() LoginOption {
	return func(o *loginOptions) { o.revoke = true }
}

// WithAPIVersion adds the API version parameter "v" to the authorization URL.
func WithAPIVersion(v string) LoginOption {
	return func(o *loginOptions) { o.apiVersion = v }
}

// queryArg is a single query parameter. Raw values are appended verbatim.
type queryArg struct {
	key   string
	value string
	raw   bool
}

// appendQuery appends args to base in order.
func appendQuery(base string, args ...queryArg) string {
	var b strings.Builder
	b.WriteString(base)

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	for _, a := range args {
		b.WriteString(sep)
		sep = "&"
		b.WriteString(url.QueryEscape(a.key))
		b.WriteByte('=')
		if a.raw {
			b.WriteString(a.value)
		} else {
			b.WriteString(url.QueryEscape(a.value))
		}
	}
	return b.String()
}

// validateReturnURL checks that returnURL is a non-empty absolute URL
// without a fragment. redirect_uri is sent unescaped, so a '#' would cut
// off every parameter after it.
func validateReturnURL(returnURL string) error {
	if strings.TrimSpace(returnURL) == "" {
		return fmt.Errorf("%w: return url is required", ErrInvalidRedirectURL)
	}
	u, err := url.Parse(returnURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRedirectURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q is not absolute", ErrInvalidRedirectURL, returnURL)
	}
	// A bare trailing '#' parses to an empty Fragment but still truncates.
	if u.Fragment != "" || strings.Contains(returnURL, "#") {
		return fmt.Errorf("%w: %q has a fragment", ErrInvalidRedirectURL, returnURL)
	}
	return nil
}

// transportError wraps a request failure in ErrTransport. *url.Error is
// unwrapped first because its message carries the full request URL,
// including client_secret.
func transportError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// statusError builds a *StatusError from a non-2xx response body.
func statusError(code int, body []byte) error {
	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return &StatusError{StatusCode: code, Body: string(bytes.TrimSpace(body))}
}

// flowHandler performs the authorization code flow against the token endpoint.
type flowHandler struct {
	config     *Config
	httpClient HTTPClient
	endpoint   oauth2.Endpoint
}

// newFlowHandler creates a new flow handler.
func newFlowHandler(config *Config, httpClient HTTPClient) *flowHandler {
	return &flowHandler{
		config:     config,
		httpClient: httpClient,
		endpoint:   Endpoint(config.Provider),
	}
}

// buildLoginURL builds the authorization URL. redirect_uri is appended
// unescaped and the parameter order is fixed, so equal inputs give
// byte-identical URLs.
func (f *flowHandler) buildLoginURL(returnURL string, opts ...LoginOption) (string, error) {
	if err := validateReturnURL(returnURL); err != nil {
		return "", err
	}

	var o loginOptions
	for _, opt := range opts {
		opt(&o)
	}

	args := []queryArg{
		{key: "client_id", value: f.config.ClientID},
		{key: "redirect_uri", value: returnURL, raw: true},
		{key: "scope", value: f.config.Scope},
		{key: "response_type", value: "code"},
	}
	if o.display != "" {
		args = append(args, queryArg{key: "display", value: o.display})
	}
	if o.apiVersion != "" {
		args = append(args, queryArg{key: "v", value: o.apiVersion})
	}
	if o.revoke {
		args = append(args, queryArg{key: "revoke", value: "1"})
	}
	if o.state != "" {
		args = append(args, queryArg{key: "state", value: o.state})
	}

	return appendQuery(f.endpoint.AuthURL, args...), nil
}

// exchangeCode exchanges an authorization code for a token with a single
// GET request to the token endpoint.
func (f *flowHandler) exchangeCode(ctx context.Context, returnURL, code string) (*Token, error) {
	if err := validateReturnURL(returnURL); err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: authorization code is required", ErrAuthorizationDenied)
	}

	tokenURL := appendQuery(f.endpoint.TokenURL,
		queryArg{key: "client_id", value: f.config.ClientID},
		queryArg{key: "redirect_uri", value: returnURL, raw: true},
		queryArg{key: "client_secret", value: f.config.ClientSecret},
		queryArg{key: "code", value: code},
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenURL, nil)
	if err != nil {
		return nil, transportError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body)
	}

	return parseTokenResponse(body, time.Now())
}

// parseTokenResponse decodes a token endpoint response body.
func parseTokenResponse(body []byte, now time.Time) (*Token, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrAuthorizationDenied)
	}

	var tokenResp struct {
		AccessToken      string          `json:"access_token"`
		ExpiresIn        int64           `json:"expires_in"`
		UserID           json.Number     `json:"user_id"`
		Email            string          `json:"email"`
		Error            json.RawMessage `json:"error"`
		ErrorDescription string          `json:"error_description"`
	}

	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("%w: token response: %v", ErrParse, err)
	}

	if len(tokenResp.Error) > 0 && string(tokenResp.Error) != "null" {
		code := string(tokenResp.Error)
		var s string
		if err := json.Unmarshal(tokenResp.Error, &s); err == nil {
			code = s
		}
		return nil, &ProviderError{Code: code, Description: tokenResp.ErrorDescription}
	}

	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access_token in token response", ErrParse)
	}
	if tokenResp.UserID == "" {
		return nil, fmt.Errorf("%w: no user_id in token response", ErrParse)
	}
	userID, err := tokenResp.UserID.Int64()
	if err != nil || userID == 0 {
		return nil, fmt.Errorf("%w: invalid user_id %q", ErrParse, tokenResp.UserID)
	}

	token := &Token{
		AccessToken: tokenResp.AccessToken,
		UserID:      userID,
		Email:       tokenResp.Email,
	}
	if tokenResp.ExpiresIn > 0 {
		token.Expiry = now.Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}

	return token, nil
}
