package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs and verifies session tokens bound to a user ID.
// Constructed once at process start from config and passed explicitly.
type TokenIssuer struct {
	auth *jwtauth.JWTAuth
	exp  time.Duration
}

func NewTokenIssuer(key []byte, exp time.Duration) *TokenIssuer {
	return &TokenIssuer{auth: jwtauth.New("HS256", key, nil), exp: exp}
}

// Auth exposes the underlying jwtauth instance for router middleware.
func (t *TokenIssuer) Auth() *jwtauth.JWTAuth { return t.auth }

// Issue returns an opaque signed session token for the given user.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(t.exp).Unix(),
		"iat":     now.Unix(),
	}
	_, tokenString, err := t.auth.Encode(claims)
	return tokenString, err
}

// Verify decodes a session token and returns the user ID it is bound to.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	tok, err := t.auth.Decode(tokenString)
	if err != nil {
		return "", err
	}
	id, ok := tok.Get("user_id")
	if !ok {
		return "", errors.New("user_id claim is missing")
	}
	userID, ok := id.(string)
	if !ok {
		return "", errors.New("user_id claim is not a string")
	}
	return userID, nil
}

// GetUserIDFromClaims extracts the user ID in middleware.
func GetUserIDFromClaims(claims map[string]interface{}) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}
