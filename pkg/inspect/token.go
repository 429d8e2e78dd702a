package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the backend's token lifetime when
// ACCESS_TOKEN_EXPIRE_MINUTES is not set.
const DefaultTokenTTL = 30 * time.Minute

var ErrBadToken = errors.New("invalid token")

// TokenTTL parses ACCESS_TOKEN_EXPIRE_MINUTES. An empty value yields the
// default lifetime.
func TokenTTL(raw string) (time.Duration, error) {
	if raw == "" {
		return DefaultTokenTTL, nil
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("not a whole number of minutes: %q", raw)
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", minutes)
	}
	return time.Duration(minutes) * time.Minute, nil
}

// TokenCheck is the outcome of signing and verifying a token with the
// configured secret.
type TokenCheck struct {
	Attempted bool   `json:"attempted"`
	OK        bool   `json:"ok"`
	ID        string `json:"id,omitempty"`
	ExpiresIn string `json:"expires_in,omitempty"`
	Error     string `json:"error,omitempty"`
}

// checkToken signs an HS256 token the way the backend issues access tokens
// and parses it back with the same secret.
func checkToken(secret string, ttl time.Duration, now time.Time) TokenCheck {
	tc := TokenCheck{Attempted: true, ID: uuid.NewString(), ExpiresIn: ttl.String()}

	claims := jwt.RegisteredClaims{
		Subject:   "hmsctl-inspect",
		ID:        tc.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		tc.Error = fmt.Sprintf("failed to sign token: %v", err)
		return tc
	}

	tok, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		tc.Error = fmt.Sprintf("failed to verify token: %v", err)
		return tc
	}

	parsed, ok := tok.Claims.(*jwt.RegisteredClaims)
	if !ok || !tok.Valid || parsed.ID != tc.ID {
		tc.Error = ErrBadToken.Error()
		return tc
	}

	tc.OK = true
	return tc
}
