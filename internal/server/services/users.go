// Package services holds the server business logic: accounts, second
// factor, premium tier and the stored documents.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/common"
	"github.com/dmitrijs2005/vaultify/internal/dbx"
	"github.com/dmitrijs2005/vaultify/internal/logging"
	"github.com/dmitrijs2005/vaultify/internal/server/auth"
	"github.com/dmitrijs2005/vaultify/internal/server/config"
	"github.com/dmitrijs2005/vaultify/internal/server/models"
	"github.com/dmitrijs2005/vaultify/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vaultify/internal/timex"
	"golang.org/x/crypto/bcrypt"
)

const ticketBytes = 24

// LoginResult is either a session or, for premium accounts with a second
// factor, a ticket to finish the login with.
type LoginResult struct {
	Session *Session
	Ticket  string
}

// Session is a freshly minted access token.
type Session struct {
	Token   string
	Premium bool
}

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	ticketValidityDuration      time.Duration
	otpIssuer                   string
	clock                       timex.Clock
	logger                      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, clock timex.Clock, logger logging.Logger) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		ticketValidityDuration:      cfg.TicketValidityDuration,
		otpIssuer:                   cfg.OTPIssuer,
		clock:                       clock,
		logger:                      logger.With("module", "users"),
	}
}

// Register stores a new account. Only a bcrypt hash of the client's auth
// proof is kept.
func (s *UserService) Register(ctx context.Context, email, salt string, proof []byte) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || salt == "" || len(proof) == 0 {
		return nil, common.ErrorValidation
	}

	hash, err := bcrypt.GenerateFromPassword(proof, bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing proof: %w", err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{Email: email, Salt: salt, AuthHash: hash})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// GetSalt returns the KDF salt stored at registration. Unknown emails yield
// common.ErrorNotFound.
func (s *UserService) GetSalt(ctx context.Context, email string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	return user.Salt, nil
}

func (s *UserService) checkProof(user *models.User, proof []byte) bool {
	return bcrypt.CompareHashAndPassword(user.AuthHash, proof) == nil
}

// Login checks the proof. Accounts that need a second factor get a ticket
// instead of a token; expired tickets are swept on the way.
func (s *UserService) Login(ctx context.Context, email string, proof []byte) (*LoginResult, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.checkProof(user, proof) {
		return nil, common.ErrInvalidCredentials
	}

	if !user.SecondFactorRequired() {
		session, err := s.mint(user, user.Premium)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Session: session}, nil
	}

	ticket, err := common.MakeRandHexString(ticketBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating ticket: %w", err)
	}

	now := s.clock.Now()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tickets(tx)
		if _, err := repo.DeleteExpired(ctx, now); err != nil {
			return err
		}
		return repo.Create(ctx, ticket, user.ID, now.Add(s.ticketValidityDuration))
	})
	if err != nil {
		return nil, fmt.Errorf("error creating ticket: %w", err)
	}

	return &LoginResult{Ticket: ticket}, nil
}

// VerifySecondFactor completes a ticket login. A wrong code leaves the
// ticket in place so the user can retry until it expires.
func (s *UserService) VerifySecondFactor(ctx context.Context, ticket, code string) (*Session, error) {
	tickets := s.repomanager.Tickets(s.db)

	t, err := tickets.Find(ctx, ticket)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrTicketInvalid
		}
		return nil, err
	}

	now := s.clock.Now()
	if t.Expired(now) {
		if err := tickets.Delete(ctx, ticket); err != nil && !errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "failed to drop expired ticket", "error", err)
		}
		return nil, common.ErrTicketInvalid
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, t.UserID)
	if err != nil {
		return nil, err
	}

	if !user.TwoFAEnabled || !validateOTP(code, user.TwoFASecret, now) {
		return nil, common.ErrInvalidOTP
	}

	// A concurrent verification of the same ticket may have won the delete.
	if err := tickets.Delete(ctx, ticket); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrTicketInvalid
		}
		return nil, err
	}

	return s.mint(user, user.Premium)
}

// SweepExpiredTickets drops every ticket past its deadline.
func (s *UserService) SweepExpiredTickets(ctx context.Context) (int64, error) {
	return s.repomanager.Tickets(s.db).DeleteExpired(ctx, s.clock.Now())
}

// VerifyPremium unlocks the premium tier with the key an administrator
// assigned to the account and returns a token carrying the new tier.
func (s *UserService) VerifyPremium(ctx context.Context, userID, key string) (*Session, error) {
	if key == "" {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.PremiumKey == "" || subtle.ConstantTimeCompare([]byte(user.PremiumKey), []byte(key)) != 1 {
		return nil, common.ErrInvalidPremiumKey
	}
	if user.Premium {
		return nil, common.ErrAlreadyPremium
	}

	if err := repo.SetPremium(ctx, userID, true); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "premium enabled", "user_id", userID)
	return s.mint(user, true)
}

func (s *UserService) PremiumStatus(ctx context.Context, userID string) (bool, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Premium, nil
}

func (s *UserService) DisablePremium(ctx context.Context, userID string, proof []byte) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.Premium {
		return common.ErrNotPremium
	}
	if !s.checkProof(user, proof) {
		return common.ErrInvalidPassword
	}

	return repo.SetPremium(ctx, userID, false)
}

func (s *UserService) mint(user *models.User, premium bool) (*Session, error) {
	token, err := auth.GenerateToken(auth.Subject{UserID: user.ID, Email: user.Email, Premium: premium},
		s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}
	return &Session{Token: token, Premium: premium}, nil
}
