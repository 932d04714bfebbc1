package security

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
)

// MFAService provides TOTP two-factor authentication
type MFAService struct {
	logger *zap.Logger
	issuer string
	now    func() time.Time
}

// NewMFAService creates a new MFA service
func NewMFAService(logger *zap.Logger, issuer string) *MFAService {
	return &MFAService{
		logger: logger.Named("mfa"),
		issuer: issuer,
		now:    time.Now,
	}
}

// TOTPSetup represents TOTP setup information
type TOTPSetup struct {
	Secret string
	URL    string
}

// SetupTOTP generates a TOTP secret for an account
func (m *MFAService) SetupTOTP(accountName string) (*TOTPSetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.issuer,
		AccountName: accountName,
		SecretSize:  20,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	return &TOTPSetup{
		Secret: key.Secret(),
		URL:    key.URL(),
	}, nil
}

// Verify checks a 6-digit code against the secret, allowing one period of skew
func (m *MFAService) Verify(secret, code string) bool {
	if secret == "" || code == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, m.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		m.logger.Debug("TOTP validation error", zap.Error(err))
		return false
	}
	return ok
}
