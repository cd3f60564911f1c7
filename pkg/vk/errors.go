package vk

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration indicates the client configuration is invalid.
	ErrInvalidConfiguration = errors.New("vk: invalid configuration")

	// ErrInvalidRedirectURL indicates the return URL is empty or not absolute.
	ErrInvalidRedirectURL = errors.New("vk: invalid redirect url")

	// ErrAuthorizationDenied indicates the provider did not issue an access token.
	ErrAuthorizationDenied = errors.New("vk: authorization denied")

	// ErrTransport indicates a network-level failure or a non-success HTTP status.
	ErrTransport = errors.New("vk: transport failure")

	// ErrParse indicates a response body could not be decoded into the expected structure.
	ErrParse = errors.New("vk: unparsable response")

	// ErrAPI indicates the VK API answered with an error object.
	ErrAPI = errors.New("vk: api error")

	// ErrNoUserID indicates no provider user id is available for a profile lookup.
	ErrNoUserID = errors.New("vk: no provider user id")

	// ErrInvalidState indicates a login state value failed verification.
	ErrInvalidState = errors.New("vk: invalid state")
)

// ProviderError is the error object returned by the token endpoint,
// e.g. {"error":"invalid_grant","error_description":"Code is expired."}.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%s: %s", ErrAuthorizationDenied, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", ErrAuthorizationDenied, e.Code, e.Description)
}

// Unwrap allows errors.Is(err, ErrAuthorizationDenied).
func (e *ProviderError) Unwrap() error {
	return ErrAuthorizationDenied
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrTransport, e.StatusCode, e.Body)
}

// Unwrap allows errors.Is(err, ErrTransport).
func (e *StatusError) Unwrap() error {
	return ErrTransport
}

// APIError is the error object returned by VK API methods.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %d: %s", ErrAPI, e.Code, e.Message)
}

// Is reports whether target is ErrAPI or ErrParse. An API error means the
// response lacks the expected fields, so it is a parse failure too.
func (e *APIError) Is(target error) bool {
	return target == ErrAPI || target == ErrParse
}
