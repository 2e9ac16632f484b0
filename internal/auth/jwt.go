// Package auth provides JWT credential handling and password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates a token that failed signature or claim validation
var ErrInvalidToken = errors.New("invalid token")

// DefaultTokenValidity is how long issued tokens remain valid
const DefaultTokenValidity = 24 * time.Hour

// Claims carries the identity embedded in a bearer token. Email and
// Roles are included so clients can derive a degraded identity without
// a profile fetch.
type Claims struct {
	jwt.RegisteredClaims
	UserID uint     `json:"userId"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// GenerateToken issues a signed HS256 token for the given identity
func GenerateToken(userID uint, email string, roles []string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		UserID: userID,
		Email:  email,
		Roles:  roles,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates a token string and returns its claims
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
