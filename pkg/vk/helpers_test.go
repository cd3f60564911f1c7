package vk

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestProvider points every endpoint at a test server.
func newTestProvider(t *testing.T, baseURL string) Provider {
	t.Helper()
	p, err := CustomProvider(ProviderConfig{
		ProviderName:  "vk-test",
		AuthEndpoint:  baseURL + "/authorize",
		TokenEndpoint: baseURL + "/access_token",
		APIEndpoint:   baseURL + "/method/",
	})
	if err != nil {
		t.Fatalf("CustomProvider() failed: %v", err)
	}
	return p
}

// newTestClient creates a client against baseURL with a discarded logger.
func newTestClient(t *testing.T, baseURL string, mutate ...func(*Config)) *Client {
	t.Helper()
	cfg := &Config{
		Provider:     newTestProvider(t, baseURL),
		ClientID:     "app1",
		ClientSecret: "s3cr3t",
		Timeout:      5 * time.Second,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, m := range mutate {
		m(cfg)
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	return client
}

// fakeVK is a stub VK server counting requests per endpoint.
type fakeVK struct {
	server        *httptest.Server
	tokenCalls    atomic.Int32
	usersGetCalls atomic.Int32
	lastTokenReq  atomic.Pointer[http.Request]
	lastUsersReq  atomic.Pointer[http.Request]
}

func newFakeVK(t *testing.T, tokenBody, usersBody string) *fakeVK {
	t.Helper()
	f := &fakeVK{}
	mux := http.NewServeMux()
	mux.HandleFunc("/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		f.lastTokenReq.Store(r)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, tokenBody)
	})
	mux.HandleFunc("/method/users.get", func(w http.ResponseWriter, r *http.Request) {
		f.usersGetCalls.Add(1)
		f.lastUsersReq.Store(r)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, usersBody)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeVK) URL() string { return f.server.URL }
