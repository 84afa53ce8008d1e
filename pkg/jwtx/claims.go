// Package jwtx signs and verifies the bearer session tokens issued after a
// completed two-step login. Tokens are Ed25519-signed and verified only by
// this process, so a single in-memory key is sufficient; restarting the
// service invalidates outstanding sessions.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims embedded in a session token. Role and the
// moderator flag are captured at login time; the authorization layer reads
// them from the verified token rather than ambient state.
type SessionClaims struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	Moderator bool   `json:"moderator"`

	jwt.RegisteredClaims
}

var ErrTokenExpired = errors.New("jwtx: token expired")

// NewSessionClaims builds claims for an authenticated account.
func NewSessionClaims(accountID, username, role string, moderator bool, issuer string, ttl time.Duration, now time.Time) SessionClaims {
	return SessionClaims{
		Username:  username,
		Role:      role,
		Moderator: moderator,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}
