// Package auth treats identity as an opaque external boundary: a
// TokenVerifier yields a stable userId from a bearer token, nothing else
// about identity is consumed. The default implementation is JWT-based.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrAuthFailed is returned (and surfaces to the client as authFailed) on
// any verification failure.
var ErrAuthFailed = errors.New("auth: authFailed")

// TokenVerifier yields a stable userId from a bearer token.
type TokenVerifier interface {
	Verify(token string) (userId string, err error)
}

// CustomClaims is the JWT claim shape carrying the stable user identifier.
type CustomClaims struct {
	UserID string `json:"userID"`
	jwt.RegisteredClaims
}

// JWTVerifier is the default TokenVerifier, backed by golang-jwt/v5 with
// HS256 signing.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &CustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrAuthFailed
	}
	claims, ok := parsed.Claims.(*CustomClaims)
	if !ok || claims.UserID == "" {
		return "", ErrAuthFailed
	}
	return claims.UserID, nil
}

// IssueToken is a small test/ops helper for minting a signed token.
func IssueToken(secret, userId string, ttl time.Duration) (string, error) {
	claims := &CustomClaims{
		UserID: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
