package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Profile keys.
const (
	ProfileID       = "id"
	ProfileUsername = "username"
)

// Profile is the user's basic profile data keyed by field name.
type Profile map[string]string

// ID returns the VK user id as a decimal string.
func (p Profile) ID() string { return p[ProfileID] }

// Username returns the user's display name.
func (p Profile) Username() string { return p[ProfileUsername] }

// profileClient looks user profiles up through the users.get API method.
type profileClient struct {
	config     *Config
	httpClient HTTPClient
}

// newProfileClient creates a new profile client.
func newProfileClient(config *Config, httpClient HTTPClient) *profileClient {
	return &profileClient{
		config:     config,
		httpClient: httpClient,
	}
}

// usersGetURL builds the users.get request URL for userID. The access token
// is sent unless PublicProfileLookup is set.
func (p *profileClient) usersGetURL(userID int64, accessToken string) string {
	id := strconv.FormatInt(userID, 10)

	params := url.Values{}
	params.Set("uids", id)
	if !p.config.PublicProfileLookup && accessToken != "" {
		params.Set("user_ids", id)
		params.Set("access_token", accessToken)
		params.Set("v", p.config.APIVersion)
	}

	return methodURL(p.config.Provider, "users.get") + "?" + params.Encode()
}

// fetchProfile fetches the profile for userID. A zero userID fails with
// ErrNoUserID before any request is made.
func (p *profileClient) fetchProfile(ctx context.Context, userID int64, accessToken string) (Profile, error) {
	if userID == 0 {
		return nil, ErrNoUserID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.usersGetURL(userID, accessToken), nil)
	if err != nil {
		return nil, transportError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, statusError(resp.StatusCode, body)
	}

	var payload struct {
		Response []struct {
			ID        int64  `json:"id"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"response"`
		Error *struct {
			Code    int    `json:"error_code"`
			Message string `json:"error_msg"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: users.get response: %v", ErrParse, err)
	}

	if payload.Error != nil {
		return nil, &APIError{Code: payload.Error.Code, Message: payload.Error.Message}
	}
	if len(payload.Response) == 0 {
		return nil, fmt.Errorf("%w: users.get returned no users", ErrParse)
	}

	user := payload.Response[0]
	return Profile{
		ProfileID:       strconv.FormatInt(userID, 10),
		ProfileUsername: user.FirstName + " " + user.LastName,
	}, nil
}
