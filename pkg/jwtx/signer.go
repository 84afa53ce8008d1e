package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("jwtx: invalid token")

// Keys holds the Ed25519 key pair used for session tokens.
type Keys struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewKeys generates a fresh ephemeral key pair.
func NewKeys() (*Keys, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	return &Keys{priv: priv, pub: pub}, nil
}

// Sign produces a compact EdDSA-signed JWT for the claims.
func (k *Keys) Sign(claims SessionClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(k.priv)
}

// Verify parses and validates a compact token, returning its claims.
// Signature, issuer-agnostic registered claims, and expiry are checked.
func (k *Keys) Verify(raw string) (SessionClaims, error) {
	var claims SessionClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return k.pub, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrTokenExpired
		}
		return SessionClaims{}, ErrInvalidToken
	}
	if !token.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	return claims, nil
}
