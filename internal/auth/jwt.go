// Package auth provides HS256 bearer token helpers.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "clipstream"

var (
	ErrNoAuthHeader      = errors.New("missing authorization header")
	ErrMalformedAuth     = errors.New("malformed authorization header")
	ErrInvalidToken      = errors.New("invalid token")
	ErrUnexpectedSubject = errors.New("token subject is not a valid user ID")
)

// MakeToken issues a signed HS256 token for the given user.
func MakeToken(userID uuid.UUID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies a token and returns the user ID it carries.
func ValidateToken(tokenString, secret string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, ErrUnexpectedSubject
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, ErrUnexpectedSubject
	}

	return userID, nil
}

// GetBearerToken extracts the bearer token from the Authorization header.
func GetBearerToken(headers http.Header) (string, error) {
	authz := headers.Get("Authorization")
	if authz == "" {
		return "", ErrNoAuthHeader
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authz, bearerPrefix) {
		return "", ErrMalformedAuth
	}

	token := strings.TrimSpace(strings.TrimPrefix(authz, bearerPrefix))
	if token == "" {
		return "", ErrMalformedAuth
	}

	return token, nil
}
