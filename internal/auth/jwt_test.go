package auth

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMakeAndValidateToken(t *testing.T) {
	userID := uuid.New()
	secret := "test-secret"

	token, err := MakeToken(userID, secret, time.Hour)
	if err != nil {
		t.Fatalf("MakeToken failed: %v", err)
	}

	got, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if got != userID {
		t.Errorf("user ID = %s, expected %s", got, userID)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := MakeToken(uuid.New(), "right-secret", time.Hour)
	if err != nil {
		t.Fatalf("MakeToken failed: %v", err)
	}

	if _, err := ValidateToken(token, "wrong-secret"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := MakeToken(uuid.New(), "secret", -time.Minute)
	if err != nil {
		t.Fatalf("MakeToken failed: %v", err)
	}

	if _, err := ValidateToken(token, "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	if _, err := ValidateToken("not.a.token", "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGetBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		authz     string
		wantToken string
		wantErr   error
	}{
		{"valid bearer", "Bearer abc123", "abc123", nil},
		{"missing header", "", "", ErrNoAuthHeader},
		{"wrong scheme", "Basic abc123", "", ErrMalformedAuth},
		{"empty token", "Bearer ", "", ErrMalformedAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.authz != "" {
				headers.Set("Authorization", tt.authz)
			}

			token, err := GetBearerToken(headers)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, expected %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if token != tt.wantToken {
				t.Errorf("token = %q, expected %q", token, tt.wantToken)
			}
		})
	}
}
