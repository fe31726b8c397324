package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors the fields the scheduling API puts in its bearer tokens.
// The client never verifies signatures (it holds no secret); it only reads
// expiry and identity hints for local session decisions.
type Claims struct {
	UserID int    `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var now = time.Now

// InspectToken parses a bearer token without verifying its signature. The
// authoritative check is always the server's; this only lets the client
// drop sessions it knows are dead.
func InspectToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// TokenExpired reports whether the token carries an exp claim in the past.
// Tokens that fail to parse count as expired so a garbage token never
// keeps a session alive; tokens without an exp claim are left to the 24h
// inactivity rule.
func TokenExpired(tokenStr string) bool {
	claims, err := InspectToken(tokenStr)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Before(now())
}
