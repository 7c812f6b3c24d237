package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/common"
	"github.com/dmitrijs2005/vaultify/internal/server/models"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// one 30 s step either side
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

func validateOTP(code, secret string, now time.Time) bool {
	if secret == "" || len(code) != int(otp.DigitsSix) {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, now, totpOpts)
	return err == nil && ok
}

// SecondFactorSetup is a new, not yet enabled TOTP secret.
type SecondFactorSetup struct {
	Secret     string
	OTPAuthURL string
}

func (s *UserService) premiumUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Premium {
		return nil, common.ErrPremiumRequired
	}
	return user, nil
}

// SetupSecondFactor generates a TOTP secret and stores it disabled until
// EnableSecondFactor confirms a code.
func (s *UserService) SetupSecondFactor(ctx context.Context, userID string) (*SecondFactorSetup, error) {
	user, err := s.premiumUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFAEnabled {
		return nil, common.ErrSecondFactorAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.otpIssuer,
		AccountName: user.Email,
		SecretSize:  20,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("error generating totp secret: %w", err)
	}

	if err := s.repomanager.Users(s.db).SetSecondFactor(ctx, userID, key.Secret(), false); err != nil {
		return nil, err
	}

	return &SecondFactorSetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

func (s *UserService) EnableSecondFactor(ctx context.Context, userID, code string) error {
	user, err := s.premiumUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.TwoFAEnabled {
		return common.ErrSecondFactorAlreadyEnabled
	}
	if user.TwoFASecret == "" {
		return common.ErrSecondFactorNotInitiated
	}
	if !validateOTP(code, user.TwoFASecret, s.clock.Now()) {
		return common.ErrInvalidOTP
	}

	if err := s.repomanager.Users(s.db).SetSecondFactor(ctx, userID, user.TwoFASecret, true); err != nil {
		return err
	}

	s.logger.Info(ctx, "second factor enabled", "user_id", userID)
	return nil
}

func (s *UserService) SecondFactorStatus(ctx context.Context, userID string) (bool, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.TwoFAEnabled, nil
}

// DisableSecondFactor needs the auth proof again and wipes the secret.
func (s *UserService) DisableSecondFactor(ctx context.Context, userID string, proof []byte) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.TwoFAEnabled {
		return common.ErrSecondFactorNotEnabled
	}
	if !s.checkProof(user, proof) {
		return common.ErrInvalidPassword
	}

	return repo.SetSecondFactor(ctx, userID, "", false)
}
