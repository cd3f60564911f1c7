package vk

import (
	"context"
	"errors"
	"log/slog"
)

// Attempt is a single login attempt. It keeps the VK user id between
// ExchangeCodeForToken and FetchProfile, which is what host frameworks
// built around the three-call contract expect.
//
// An Attempt is not safe for concurrent use; create one per login callback
// with Client.NewAttempt.
type Attempt struct {
	id     string
	client *Client
	userID int64
	logger *slog.Logger
}

// ID returns the attempt's correlation id.
func (a *Attempt) ID() string {
	return a.id
}

// UserID returns the VK user id recorded by a successful exchange, or zero.
func (a *Attempt) UserID() int64 {
	return a.userID
}

// BuildLoginURL returns the authorization URL for returnURL.
func (a *Attempt) BuildLoginURL(returnURL string) (string, error) {
	return a.client.LoginURL(returnURL)
}

// ExchangeCodeForToken exchanges code for an access token and records the
// VK user id. When VK does not issue a token (error response, empty or
// malformed body) it returns an empty string and a nil error, leaving the
// recorded user id untouched. Transport failures are returned as errors.
func (a *Attempt) ExchangeCodeForToken(ctx context.Context, returnURL, code string) (string, error) {
	token, err := a.client.Exchange(ctx, returnURL, code)
	switch {
	case err == nil:
		a.userID = token.UserID
		return token.AccessToken, nil
	case errors.Is(err, ErrAuthorizationDenied), errors.Is(err, ErrParse):
		a.logger.DebugContext(ctx, "no access token obtained", "error", err)
		return "", nil
	default:
		return "", err
	}
}

// FetchProfile returns the profile of the user recorded by
// ExchangeCodeForToken. Without a recorded user id it returns nil and makes
// no request.
func (a *Attempt) FetchProfile(ctx context.Context, accessToken string) (map[string]string, error) {
	if a.userID == 0 {
		return nil, nil
	}

	profile, err := a.client.Profile(ctx, &Token{AccessToken: accessToken, UserID: a.userID})
	if err != nil {
		return nil, err
	}
	return map[string]string(profile), nil
}
