package services

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/dmitrijs2005/vaultify/internal/client/client"
	"github.com/dmitrijs2005/vaultify/internal/client/models"
	"github.com/dmitrijs2005/vaultify/internal/common"
	"github.com/dmitrijs2005/vaultify/internal/cryptox"
	"github.com/dmitrijs2005/vaultify/internal/logging"
)

// AccountClient is the part of the server API used for account management.
type AccountClient interface {
	Register(ctx context.Context, email, salt string, proof []byte) error
	GetSalt(ctx context.Context, email string) (string, error)
	SetupSecondFactor(ctx context.Context, token string) (*client.SecondFactorSetup, error)
	EnableSecondFactor(ctx context.Context, token, otp string) error
	SecondFactorStatus(ctx context.Context, token string) (bool, error)
	DisableSecondFactor(ctx context.Context, token string, proof []byte) error
	VerifyPremium(ctx context.Context, token, key string) (*client.SessionGrant, error)
	PremiumStatus(ctx context.Context, token string) (bool, error)
	DisablePremium(ctx context.Context, token string, proof []byte) error
}

// AccountService covers registration and the security settings of a
// logged in account.
type AccountService struct {
	client     AccountClient
	iterations int
	logger     logging.Logger
}

func NewAccountService(c AccountClient, iterations int, logger logging.Logger) *AccountService {
	if iterations <= 0 {
		iterations = cryptox.DefaultIterations
	}
	return &AccountService{client: c, iterations: iterations, logger: logger.With("module", "account")}
}

// Register creates an account with a fresh salt. Only the auth proof leaves
// the process.
func (a *AccountService) Register(ctx context.Context, email string, password []byte) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return &models.ValidationError{Problems: []string{"a valid email is required"}}
	}

	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	proof, err := cryptox.DeriveAuthProof(password, salt, a.iterations)
	if err != nil {
		return fmt.Errorf("derive auth proof: %w", err)
	}
	defer common.WipeByteArray(proof)

	if err := a.client.Register(ctx, email, salt, proof); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	a.logger.Info(ctx, "account registered", "email", email)
	return nil
}

// freshProof re-derives the auth proof with the salt currently stored for
// the account.
func (a *AccountService) freshProof(ctx context.Context, email string, password []byte) ([]byte, error) {
	salt, err := a.client.GetSalt(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get salt: %w", err)
	}
	proof, err := cryptox.DeriveAuthProof(password, salt, a.iterations)
	if err != nil {
		return nil, fmt.Errorf("derive auth proof: %w", err)
	}
	return proof, nil
}

func (a *AccountService) SetupSecondFactor(ctx context.Context, s *Session) (*client.SecondFactorSetup, error) {
	return a.client.SetupSecondFactor(ctx, s.Token())
}

func (a *AccountService) EnableSecondFactor(ctx context.Context, s *Session, otp string) error {
	if err := a.client.EnableSecondFactor(ctx, s.Token(), otp); err != nil {
		return err
	}
	a.logger.Info(ctx, "second factor enabled", "email", s.Email)
	return nil
}

func (a *AccountService) SecondFactorStatus(ctx context.Context, s *Session) (bool, error) {
	return a.client.SecondFactorStatus(ctx, s.Token())
}

func (a *AccountService) DisableSecondFactor(ctx context.Context, s *Session, password []byte) error {
	proof, err := a.freshProof(ctx, s.Email, password)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(proof)

	if err := a.client.DisableSecondFactor(ctx, s.Token(), proof); err != nil {
		return err
	}
	a.logger.Info(ctx, "second factor disabled", "email", s.Email)
	return nil
}

// VerifyPremium redeems an upgrade key and switches the session to the
// premium token returned for it.
func (a *AccountService) VerifyPremium(ctx context.Context, s *Session, key string) error {
	grant, err := a.client.VerifyPremium(ctx, s.Token(), key)
	if err != nil {
		return err
	}
	s.Refresh(grant.Token, grant.Premium)
	a.logger.Info(ctx, "premium unlocked", "email", s.Email)
	return nil
}

func (a *AccountService) PremiumStatus(ctx context.Context, s *Session) (bool, error) {
	return a.client.PremiumStatus(ctx, s.Token())
}

func (a *AccountService) DisablePremium(ctx context.Context, s *Session, password []byte) error {
	proof, err := a.freshProof(ctx, s.Email, password)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(proof)

	if err := a.client.DisablePremium(ctx, s.Token(), proof); err != nil {
		return err
	}
	s.Refresh(s.Token(), false)
	a.logger.Info(ctx, "premium disabled", "email", s.Email)
	return nil
}
