package domain

import "time"

// LoginChallenge is the persisted state between the password step and the
// TOTP step of a login. It is single-use: the row is consumed on the second
// step whatever the outcome, so an attempt can never be replayed.
type LoginChallenge struct {
	ID        string // SHA-256 fingerprint of the opaque challenge token
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TOTPEnrollment is returned once at registration so the user can load the
// shared secret into an authenticator app.
type TOTPEnrollment struct {
	Secret     string // base32 encoded
	OTPAuthURL string // otpauth:// URL for QR code generation
	Issuer     string
	Account    string
}
