package serverutils

import (
	"chatlink-be/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is what the credential collaborator hands back on a valid
// token. Issuance lives in a separate service; this side only verifies.
type TokenClaims struct {
	UserID uuid.UUID
	Claims map[string]interface{}
}

// TokenVerifier abstracts credential verification for both the REST
// middleware and the websocket handshake.
type TokenVerifier interface {
	Verify(tokenStr string) (*TokenClaims, error)
}

// ClaimsObserver is notified of every successfully verified token.
type ClaimsObserver interface {
	Observe(claims *TokenClaims)
}

type jwtVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) TokenVerifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) Verify(tokenStr string) (*TokenClaims, error) {
	if tokenStr == "" {
		return nil, apperror.New(apperror.KindUnauthenticated, "Missing token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperror.New(apperror.KindUnauthenticated, "Unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.Wrap(apperror.KindUnauthenticated, "Invalid token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperror.New(apperror.KindUnauthenticated, "Invalid token claims")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, apperror.New(apperror.KindUnauthenticated, "Token missing user_id")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, apperror.New(apperror.KindUnauthenticated, "Invalid user ID format in token")
	}

	return &TokenClaims{UserID: userID, Claims: claims}, nil
}
