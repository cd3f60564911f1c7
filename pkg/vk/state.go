package vk

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultStateTTL is how long an issued login state stays valid.
const DefaultStateTTL = 10 * time.Minute

// StateCodec issues and verifies signed login state values. A state binds
// the return URL of a login attempt and expires after its TTL, so a host
// can reject callbacks it did not start without keeping server-side
// session state.
type StateCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// stateClaims is the JWT payload of a state value.
type stateClaims struct {
	ReturnURL string `json:"ret"`
	jwt.RegisteredClaims
}

// NewStateCodec creates a StateCodec signing with key (HMAC-SHA256).
// A non-positive ttl selects DefaultStateTTL.
func NewStateCodec(key []byte, ttl time.Duration) (*StateCodec, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: state key is required", ErrInvalidConfiguration)
	}
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateCodec{key: append([]byte(nil), key...), ttl: ttl}, nil
}

// deriveStateKey derives a signing key from the client secret so the
// secret itself is never used as an HMAC key for another purpose.
func deriveStateKey(secret string) []byte {
	sum := sha256.Sum256([]byte("vk-login-state\x00" + secret))
	return sum[:]
}

func (s *StateCodec) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Issue returns a new state value for returnURL.
func (s *StateCodec) Issue(returnURL string) (string, error) {
	if err := validateReturnURL(returnURL); err != nil {
		return "", err
	}

	now := s.clock()
	claims := stateClaims{
		ReturnURL: returnURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%w: sign: %v", ErrInvalidState, err)
	}
	return state, nil
}

// Verify checks that state was issued by this codec for returnURL and has
// not expired.
func (s *StateCodec) Verify(state, returnURL string) error {
	if state == "" {
		return fmt.Errorf("%w: state is empty", ErrInvalidState)
	}

	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims,
		func(*jwt.Token) (interface{}, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if claims.ReturnURL != returnURL {
		return fmt.Errorf("%w: return url mismatch", ErrInvalidState)
	}
	return nil
}
