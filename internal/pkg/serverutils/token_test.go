package serverutils

import (
	"testing"
	"time"

	"chatlink-be/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestJWTVerifierRoundtrip(t *testing.T) {
	userID := uuid.New()
	tokenStr := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": userID.String(),
		"email":   "alice@example.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	verifier := NewJWTVerifier("test-secret")
	claims, err := verifier.Verify(tokenStr)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if email, _ := claims.Claims["email"].(string); email != "alice@example.com" {
		t.Fatalf("expected email claim to survive, got %q", email)
	}
}

func TestJWTVerifierRejections(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "not.a.token"},
		{"wrong secret", signToken(t, "other-secret", jwt.MapClaims{"user_id": userID.String()})},
		{"missing user_id", signToken(t, "test-secret", jwt.MapClaims{"sub": "nobody"})},
		{"malformed user_id", signToken(t, "test-secret", jwt.MapClaims{"user_id": "not-a-uuid"})},
		{"expired", signToken(t, "test-secret", jwt.MapClaims{
			"user_id": userID.String(),
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})},
	}

	verifier := NewJWTVerifier("test-secret")
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := verifier.Verify(tc.token)
			if err == nil {
				t.Fatal("expected verification to fail")
			}
			if !apperror.Is(err, apperror.KindUnauthenticated) {
				t.Fatalf("expected UNAUTHENTICATED kind, got %v", err)
			}
		})
	}
}
