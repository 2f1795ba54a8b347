package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any credential that fails verification.
// Callers never learn whether the token was malformed, expired or forged.
var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	ID int `json:"id"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens issued by the auth service. It holds
// only the shared signing secret; no store lookup is involved.
type Verifier struct {
	secret []byte
}

// NewVerifier constructs a Verifier for the given HS256 secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks the token signature and expiry and returns the user id
// encoded at issuance.
func (v *Verifier) Verify(token string) (int, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.ID == 0 {
		return 0, ErrInvalidToken
	}
	return c.ID, nil
}

// Sign issues a token for the given user id. The service itself never
// issues tokens; this exists for tooling and tests.
func (v *Verifier) Sign(userID int, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(v.secret)
}
