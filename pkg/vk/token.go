package vk

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

// Token is the result of a successful code exchange.
type Token struct {
	// AccessToken is the VK access token.
	AccessToken string

	// UserID is the VK user id the token was issued for.
	UserID int64

	// Email is the user's email address, present when the "email"
	// permission was granted.
	Email string

	// Expiry is when the access token expires. The zero value means the
	// token does not expire (the "offline" permission).
	Expiry time.Time
}

// Valid returns true if the token carries an access token and is not expired.
func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != "" && !t.Expired()
}

// Expired returns true if the token has expired.
func (t *Token) Expired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry)
}

// OAuth2 converts the token to an *oauth2.Token. The user id and email are
// available through Extra("user_id") and Extra("email").
func (t *Token) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   "Bearer",
		Expiry:      t.Expiry,
	}
	extra := map[string]interface{}{
		"user_id": t.UserID,
	}
	if t.Email != "" {
		extra["email"] = t.Email
	}
	return tok.WithExtra(extra)
}

// TokenFromOAuth2 converts an *oauth2.Token carrying a "user_id" extra
// back to a Token.
func TokenFromOAuth2(tok *oauth2.Token) (*Token, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", ErrParse)
	}

	userID, err := userIDFromExtra(tok.Extra("user_id"))
	if err != nil {
		return nil, err
	}

	email, _ := tok.Extra("email").(string)

	return &Token{
		AccessToken: tok.AccessToken,
		UserID:      userID,
		Email:       email,
		Expiry:      tok.Expiry,
	}, nil
}

// userIDFromExtra normalizes the numeric forms a user id may take after a
// JSON or form round trip.
func userIDFromExtra(v interface{}) (int64, error) {
	switch id := v.(type) {
	case int64:
		return id, nil
	case int:
		return int64(id), nil
	case float64:
		return int64(id), nil
	case json.Number:
		return id.Int64()
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: user_id %q: %v", ErrParse, id, err)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("%w: user_id is missing", ErrParse)
	default:
		return 0, fmt.Errorf("%w: user_id has type %T", ErrParse, v)
	}
}
