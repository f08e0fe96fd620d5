// Package auth reads display metadata out of session tokens. It never verifies signatures:
// the analytics backend is the only authority on whether a token is valid.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
)

var parser = jwt.NewParser()

// Inspect returns subject and expiry when token is JWT-shaped. Opaque tokens yield nil.
func Inspect(token string, now time.Time) *models.TokenInfo {
	if token == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}

	info := &models.TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		info.Subject = sub
	} else if identity, ok := claims["identity"].(string); ok {
		// flask-jwt-extended style tokens carry the user in "identity".
		info.Subject = identity
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		at := exp.Time.UTC()
		info.ExpiresAt = &at
		info.Expired = !now.Before(at)
	}
	return info
}
