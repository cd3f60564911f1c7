package vk

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestStateCodec_IssueVerify(t *testing.T) {
	codec, err := NewStateCodec([]byte("key"), time.Minute)
	if err != nil {
		t.Fatalf("NewStateCodec() failed: %v", err)
	}

	state, err := codec.Issue("https://example.com/cb")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if strings.Count(state, ".") != 2 {
		t.Errorf("Expected a compact JWS, got %s", state)
	}

	if err := codec.Verify(state, "https://example.com/cb"); err != nil {
		t.Errorf("Verify() failed: %v", err)
	}
}

func TestStateCodec_UniqueStates(t *testing.T) {
	codec, _ := NewStateCodec([]byte("key"), time.Minute)

	a, _ := codec.Issue("https://example.com/cb")
	b, _ := codec.Issue("https://example.com/cb")
	if a == b {
		t.Error("Expected distinct state values")
	}
}

func TestStateCodec_ReturnURLMismatch(t *testing.T) {
	codec, _ := NewStateCodec([]byte("key"), time.Minute)

	state, err := codec.Issue("https://example.com/cb")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if err := codec.Verify(state, "https://evil.example.com/cb"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
}

func TestStateCodec_Expired(t *testing.T) {
	codec, _ := NewStateCodec([]byte("key"), time.Minute)

	issued := time.Now()
	codec.now = func() time.Time { return issued }
	state, err := codec.Issue("https://example.com/cb")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	codec.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if err := codec.Verify(state, "https://example.com/cb"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
}

func TestStateCodec_Tampered(t *testing.T) {
	codec, _ := NewStateCodec([]byte("key"), time.Minute)

	state, err := codec.Issue("https://example.com/cb")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	sig := strings.LastIndex(state, ".") + 1
	replacement := "A"
	if state[sig] == 'A' {
		replacement = "B"
	}
	tampered := state[:sig] + replacement + state[sig+1:]
	if err := codec.Verify(tampered, "https://example.com/cb"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
}

func TestStateCodec_WrongKey(t *testing.T) {
	issuer, _ := NewStateCodec([]byte("key-a"), time.Minute)
	verifier, _ := NewStateCodec([]byte("key-b"), time.Minute)

	state, err := issuer.Issue("https://example.com/cb")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if err := verifier.Verify(state, "https://example.com/cb"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
}

func TestStateCodec_Invalid(t *testing.T) {
	if _, err := NewStateCodec(nil, time.Minute); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
	}

	codec, _ := NewStateCodec([]byte("key"), 0)
	if codec.ttl != DefaultStateTTL {
		t.Errorf("Expected default ttl, got %v", codec.ttl)
	}

	if _, err := codec.Issue("/relative"); !errors.Is(err, ErrInvalidRedirectURL) {
		t.Errorf("Expected ErrInvalidRedirectURL, got %v", err)
	}

	for _, state := range []string{"", "not-a-jwt"} {
		if err := codec.Verify(state, "https://example.com/cb"); !errors.Is(err, ErrInvalidState) {
			t.Errorf("Expected ErrInvalidState for %q, got %v", state, err)
		}
	}
}

func TestClient_NewStateCodec(t *testing.T) {
	a := newTestClient(t, "https://vk.test")
	b := newTestClient(t, "https://vk.test", func(c *Config) { c.ClientSecret = "other" })

	state, err := a.NewStateCodec().Issue("https://example.com/cb")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	if err := a.NewStateCodec().Verify(state, "https://example.com/cb"); err != nil {
		t.Errorf("Expected state to verify with the same client secret, got %v", err)
	}
	if err := b.NewStateCodec().Verify(state, "https://example.com/cb"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState with another client secret, got %v", err)
	}
}
