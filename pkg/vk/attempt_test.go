package vk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
)

func TestAttempt_ExchangeStoresUserID(t *testing.T) {
	vk := newFakeVK(t, `{"access_token":"abc","expires_in":86400,"user_id":42}`, "")
	attempt := newTestClient(t, vk.URL()).NewAttempt()

	token, err := attempt.ExchangeCodeForToken(context.Background(), "https://example.com/cb", "code")
	if err != nil {
		t.Fatalf("ExchangeCodeForToken() failed: %v", err)
	}

	if token != "abc" {
		t.Errorf("Expected token 'abc', got '%s'", token)
	}
	if attempt.UserID() != 42 {
		t.Errorf("Expected user id 42, got %d", attempt.UserID())
	}
}

func TestAttempt_NoTokenResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"provider error", `{"error":"invalid_code"}`},
		{"empty body", ``},
		{"malformed body", `not json`},
		{"missing user id", `{"access_token":"abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vk := newFakeVK(t, tt.body, "")
			attempt := newTestClient(t, vk.URL()).NewAttempt()

			token, err := attempt.ExchangeCodeForToken(context.Background(), "https://example.com/cb", "code")
			if err != nil {
				t.Fatalf("Expected nil error, got %v", err)
			}
			if token != "" {
				t.Errorf("Expected empty token, got '%s'", token)
			}
			if attempt.UserID() != 0 {
				t.Errorf("Expected no user id, got %d", attempt.UserID())
			}
		})
	}
}

func TestAttempt_FailedExchangeKeepsUserID(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Write([]byte(`{"access_token":"abc","user_id":42}`))
	}))
	defer server.Close()

	attempt := newTestClient(t, server.URL).NewAttempt()

	if _, err := attempt.ExchangeCodeForToken(context.Background(), "https://example.com/cb", "code"); err != nil {
		t.Fatalf("ExchangeCodeForToken() failed: %v", err)
	}

	fail.Store(true)
	token, err := attempt.ExchangeCodeForToken(context.Background(), "https://example.com/cb", "code2")
	if err != nil || token != "" {
		t.Fatalf("Expected (\"\", nil), got (%q, %v)", token, err)
	}
	if attempt.UserID() != 42 {
		t.Errorf("Expected user id 42 to be kept, got %d", attempt.UserID())
	}
}

func TestAttempt_TransportErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	attempt := newTestClient(t, server.URL).NewAttempt()

	token, err := attempt.ExchangeCodeForToken(context.Background(), "https://example.com/cb", "code")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Expected ErrTransport, got %v", err)
	}
	if token != "" {
		t.Errorf("Expected empty token, got '%s'", token)
	}
}

func TestAttempt_FetchProfileBeforeExchange(t *testing.T) {
	vk := newFakeVK(t, "", `{"response":[{"first_name":"Anna","last_name":"Ivanova"}]}`)
	attempt := newTestClient(t, vk.URL()).NewAttempt()

	profile, err := attempt.FetchProfile(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if profile != nil {
		t.Errorf("Expected nil profile, got %v", profile)
	}
	if n := vk.usersGetCalls.Load(); n != 0 {
		t.Errorf("Expected no users.get request, got %d", n)
	}
}

func TestAttempt_FullFlow(t *testing.T) {
	vk := newFakeVK(t,
		`{"access_token":"abc","expires_in":86400,"user_id":42}`,
		`{"response":[{"id":42,"first_name":"Anna","last_name":"Ivanova"}]}`,
	)
	attempt := newTestClient(t, vk.URL()).NewAttempt()

	loginURL, err := attempt.BuildLoginURL("https://example.com/cb")
	if err != nil {
		t.Fatalf("BuildLoginURL() failed: %v", err)
	}
	want := vk.URL() + "/authorize?client_id=app1&redirect_uri=https://example.com/cb&scope=&response_type=code"
	if loginURL != want {
		t.Errorf("Expected %s, got %s", want, loginURL)
	}

	token, err := attempt.ExchangeCodeForToken(context.Background(), "https://example.com/cb", "code")
	if err != nil {
		t.Fatalf("ExchangeCodeForToken() failed: %v", err)
	}

	profile, err := attempt.FetchProfile(context.Background(), token)
	if err != nil {
		t.Fatalf("FetchProfile() failed: %v", err)
	}

	wantProfile := map[string]string{"id": "42", "username": "Anna Ivanova"}
	if !reflect.DeepEqual(profile, wantProfile) {
		t.Errorf("Expected %v, got %v", wantProfile, profile)
	}

	if got := vk.lastUsersReq.Load().URL.Query().Get("access_token"); got != "abc" {
		t.Errorf("Expected access_token 'abc' on users.get, got %q", got)
	}
}

func TestAttempt_FetchProfileErrorPropagates(t *testing.T) {
	vk := newFakeVK(t, `{"access_token":"abc","user_id":42}`, `{"response":[]}`)
	attempt := newTestClient(t, vk.URL()).NewAttempt()

	token, err := attempt.ExchangeCodeForToken(context.Background(), "https://example.com/cb", "code")
	if err != nil {
		t.Fatalf("ExchangeCodeForToken() failed: %v", err)
	}

	if _, err := attempt.FetchProfile(context.Background(), token); !errors.Is(err, ErrParse) {
		t.Errorf("Expected ErrParse, got %v", err)
	}
}

func TestAttempt_IDsAreUnique(t *testing.T) {
	client := newTestClient(t, "https://vk.test")

	a, b := client.NewAttempt(), client.NewAttempt()
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("Expected distinct non-empty attempt ids, got %q and %q", a.ID(), b.ID())
	}
}
