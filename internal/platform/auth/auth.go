// Package auth verifies the signed bearer credentials that gate both the
// REST surface and the signaling handshake. Tokens are HMAC-signed (HS256)
// against a server-held secret and carry the platform identity
// {userId, role}.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned for any missing, malformed, expired or badly
// signed credential. Callers surface it as an UNAUTHORIZED condition; the
// underlying cause is deliberately not distinguished to the client.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is the verified subject of a credential.
type Identity struct {
	UserID int64
	Role   string
}

// Claims is the JWT claim set minted for qhealth users.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// Verifier validates credentials against the server secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the given HMAC secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks a credential string, raw or "Bearer "-prefixed, and returns
// the identity it carries. Any failure yields ErrUnauthorized.
func (v *Verifier) Verify(credential string) (Identity, error) {
	tokenStr := StripBearer(credential)
	if tokenStr == "" {
		return Identity{}, ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return Identity{}, ErrUnauthorized
	}

	return Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

// Mint signs a credential for the given identity, valid for ttl. Used by
// the token subcommand and by tests.
func (v *Verifier) Mint(userID int64, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Role:   role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// StripBearer removes a case-insensitive "Bearer " prefix, if present, and
// trims surrounding whitespace.
func StripBearer(credential string) string {
	credential = strings.TrimSpace(credential)
	parts := strings.SplitN(credential, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return credential
}
