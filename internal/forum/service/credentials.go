package service

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/shelfside/bookforum/internal/forum/domain"
	"github.com/shelfside/bookforum/pkg/cryptox"
)

const (
	totpPeriod = 30
	// totpSkew tolerates one step of clock drift either side of the
	// presented time.
	totpSkew = 1
)

// CredentialService verifies passwords and TOTP codes. Plaintext never
// reaches the store; TOTP verification is stateless per call.
type CredentialService struct {
	Issuer string // issuer name in otpauth URLs (e.g. "BookForum")
}

// VerifyPassword reports whether plaintext matches the account's stored
// hash. All failure modes collapse to false.
func (s *CredentialService) VerifyPassword(account domain.Account, plaintext string) bool {
	return cryptox.VerifyPassword(plaintext, account.PasswordHash) == nil
}

// EnrollTOTP generates the account's one-time TOTP secret. Called exactly
// once, at registration, before the account row exists; the secret is
// immutable afterwards.
func (s *CredentialService) EnrollTOTP(username string) (domain.TOTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: username,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TOTPEnrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	return domain.TOTPEnrollment{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		Issuer:     s.Issuer,
		Account:    username,
	}, nil
}

// VerifyTOTP checks a 6-digit code against the account's secret at the
// given time, allowing totpSkew steps either side.
func (s *CredentialService) VerifyTOTP(account domain.Account, code string, at time.Time) bool {
	if account.TOTPSecret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, account.TOTPSecret, at, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return ok
}
