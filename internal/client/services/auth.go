package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/client/client"
	"github.com/dmitrijs2005/vaultify/internal/client/custody"
	"github.com/dmitrijs2005/vaultify/internal/common"
	"github.com/dmitrijs2005/vaultify/internal/cryptox"
	"github.com/dmitrijs2005/vaultify/internal/logging"
	"github.com/dmitrijs2005/vaultify/internal/timex"
)

var (
	ErrFlowBusy        = errors.New("another login step is in progress")
	ErrInvalidState    = errors.New("operation not allowed in current login state")
	ErrFlowCancelled   = errors.New("login cancelled")
	ErrTooManyAttempts = fmt.Errorf("%w: too many attempts", client.ErrSecondFactorVerification)
)

const (
	DefaultTicketTTL      = 300 * time.Second
	DefaultMaxOTPAttempts = 5
)

type AuthState int

const (
	StateIdle AuthState = iota
	StateSaltFetched
	StateProofSubmitted
	StateSecondFactorPending
	StateAuthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSaltFetched:
		return "salt_fetched"
	case StateProofSubmitted:
		return "proof_submitted"
	case StateSecondFactorPending:
		return "second_factor_pending"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("AuthState(%d)", int(s))
	}
}

// Backend is the part of the server API the login flow needs.
type Backend interface {
	GetSalt(ctx context.Context, email string) (string, error)
	Login(ctx context.Context, email string, proof []byte) (*client.LoginResult, error)
	VerifySecondFactor(ctx context.Context, ticket, otp string) (*client.SessionGrant, error)
}

type FlowConfig struct {
	Iterations     int
	TicketTTL      time.Duration
	MaxOTPAttempts int
}

func (c FlowConfig) withDefaults() FlowConfig {
	if c.Iterations <= 0 {
		c.Iterations = cryptox.DefaultIterations
	}
	if c.TicketTTL <= 0 {
		c.TicketTTL = DefaultTicketTTL
	}
	if c.MaxOTPAttempts <= 0 {
		c.MaxOTPAttempts = DefaultMaxOTPAttempts
	}
	return c
}

// LoginOutcome is the result of the first login step. Exactly one of
// Session and SecondFactorRequired is set.
type LoginOutcome struct {
	Session              *Session
	SecondFactorRequired bool
}

// AuthFlow drives a login from the master password to a Session, either
// directly or through a ticket and one-time code. While a second factor is
// pending the vault key lives only in the custody slot (or, after a failed
// code, in process memory) and a local deadline cancels the challenge.
//
// Calls do not overlap: a Login or VerifyOTP issued while another one is in
// flight fails with ErrFlowBusy.
type AuthFlow struct {
	backend Backend
	custody *custody.Custody
	clock   timex.Clock
	logger  logging.Logger
	cfg     FlowConfig

	mu         sync.Mutex
	busy       bool
	generation uint64
	// cancelledAt is the generation that Cancel started, so a VerifyOTP
	// overtaken by it can tell a user cancel from an expired ticket.
	cancelledAt uint64
	state       AuthState
	email      string
	ticket     string
	attempts   int
	retained   *cryptox.VaultKey
	deadline   timex.Timer
	session    *Session
}

func NewAuthFlow(backend Backend, c *custody.Custody, clock timex.Clock, logger logging.Logger, cfg FlowConfig) *AuthFlow {
	return &AuthFlow{
		backend: backend,
		custody: c,
		clock:   clock,
		logger:  logger.With("module", "authflow"),
		cfg:     cfg.withDefaults(),
	}
}

func (f *AuthFlow) State() AuthState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Session returns the current session or nil.
func (f *AuthFlow) Session() *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// PendingEmail returns the account awaiting a one-time code.
func (f *AuthFlow) PendingEmail() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateSecondFactorPending {
		return ""
	}
	return f.email
}

// begin marks a call in flight and returns the generation it belongs to.
func (f *AuthFlow) begin() (uint64, error) {
	if f.busy {
		return 0, ErrFlowBusy
	}
	f.busy = true
	return f.generation, nil
}

// advance moves to next unless the flow was cancelled since gen.
func (f *AuthFlow) advance(gen uint64, next AuthState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generation != gen {
		return ErrFlowCancelled
	}
	f.state = next
	return nil
}

// fail ends an in-flight Login, returning to Idle unless a newer
// generation took over.
func (f *AuthFlow) fail(gen uint64, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if f.generation == gen {
		f.resetLocked()
	}
	return err
}

// Login runs the first login step for email. The caller owns password and
// should wipe it afterwards.
func (f *AuthFlow) Login(ctx context.Context, email string, password []byte) (*LoginOutcome, error) {
	f.mu.Lock()
	if f.state == StateAuthenticated {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: already logged in", ErrInvalidState)
	}
	gen, err := f.begin()
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if f.state != StateIdle {
		f.logger.Info(ctx, "abandoning pending login", "state", f.state.String())
		f.resetLocked()
		gen = f.generation
	}
	f.email = email
	f.mu.Unlock()

	salt, err := f.backend.GetSalt(ctx, email)
	if err != nil {
		return nil, f.fail(gen, fmt.Errorf("get salt: %w", err))
	}
	if err := f.advance(gen, StateSaltFetched); err != nil {
		return nil, f.fail(gen, err)
	}

	proof, err := cryptox.DeriveAuthProof(password, salt, f.cfg.Iterations)
	if err != nil {
		return nil, f.fail(gen, fmt.Errorf("derive auth proof: %w", err))
	}
	if err := f.advance(gen, StateProofSubmitted); err != nil {
		common.WipeByteArray(proof)
		return nil, f.fail(gen, err)
	}

	res, err := f.backend.Login(ctx, email, proof)
	common.WipeByteArray(proof)
	if err != nil {
		return nil, f.fail(gen, fmt.Errorf("login: %w", err))
	}

	if !res.SecondFactorRequired {
		return f.completeDirect(ctx, gen, email, password, salt, res)
	}
	return f.enterSecondFactor(ctx, gen, email, password, salt, res.Ticket)
}

func (f *AuthFlow) completeDirect(ctx context.Context, gen uint64, email string, password []byte, salt string, res *client.LoginResult) (*LoginOutcome, error) {
	key, err := cryptox.DeriveVaultKey(password, salt, f.cfg.Iterations, false)
	if err != nil {
		return nil, f.fail(gen, fmt.Errorf("derive vault key: %w", err))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if f.generation != gen {
		key.Destroy()
		return nil, ErrFlowCancelled
	}
	f.session = NewSession(email, res.Token, res.Premium, key)
	f.state = StateAuthenticated
	f.logger.Info(ctx, "logged in", "email", email, "tier", f.session.Tier())
	return &LoginOutcome{Session: f.session}, nil
}

func (f *AuthFlow) enterSecondFactor(ctx context.Context, gen uint64, email string, password []byte, salt, ticket string) (*LoginOutcome, error) {
	key, err := cryptox.DeriveVaultKey(password, salt, f.cfg.Iterations, true)
	if err != nil {
		return nil, f.fail(gen, fmt.Errorf("derive vault key: %w", err))
	}
	err = f.custody.Stash(key)
	key.Destroy()
	if err != nil {
		return nil, f.fail(gen, fmt.Errorf("stash vault key: %w", err))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if f.generation != gen {
		f.custody.Discard()
		return nil, ErrFlowCancelled
	}
	f.state = StateSecondFactorPending
	f.ticket = ticket
	f.attempts = 0
	f.deadline = f.clock.AfterFunc(f.cfg.TicketTTL, func() { f.expire(gen) })
	f.logger.Info(ctx, "second factor required", "email", email, "ttl", f.cfg.TicketTTL.String())
	return &LoginOutcome{SecondFactorRequired: true}, nil
}

func (f *AuthFlow) expire(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generation != gen || f.state != StateSecondFactorPending {
		return
	}
	f.logger.Warn(context.Background(), "second factor challenge expired", "email", f.email)
	f.resetLocked()
}

// VerifyOTP completes a pending second factor challenge. A rejected code
// leaves the challenge pending until MaxOTPAttempts is reached; an expired
// ticket or too many attempts return the flow to Idle.
func (f *AuthFlow) VerifyOTP(ctx context.Context, otp string) (*Session, error) {
	f.mu.Lock()
	if f.state != StateSecondFactorPending {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: no second factor pending", ErrInvalidState)
	}
	gen, err := f.begin()
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	key := f.retained
	f.retained = nil
	ticket, email := f.ticket, f.email
	f.mu.Unlock()

	if key == nil {
		key, err = f.custody.Resume()
		if err != nil {
			return nil, f.fail(gen, fmt.Errorf("resume vault key: %w", err))
		}
	}

	grant, err := f.backend.VerifySecondFactor(ctx, ticket, otp)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false

	if f.generation != gen {
		key.Destroy()
		if f.cancelledAt == gen+1 {
			return nil, ErrFlowCancelled
		}
		return nil, client.ErrTicketExpired
	}

	if err != nil {
		switch {
		case errors.Is(err, client.ErrTicketExpired):
			key.Destroy()
			f.resetLocked()
			return nil, err
		case errors.Is(err, client.ErrSecondFactorVerification):
			f.attempts++
			if f.attempts >= f.cfg.MaxOTPAttempts {
				f.logger.Warn(ctx, "second factor attempts exhausted", "email", email)
				key.Destroy()
				f.resetLocked()
				return nil, ErrTooManyAttempts
			}
		}
		f.retained = key
		return nil, fmt.Errorf("verify second factor: %w", err)
	}

	f.stopDeadlineLocked()
	f.ticket = ""
	f.attempts = 0
	f.session = NewSession(email, grant.Token, grant.Premium, key)
	f.state = StateAuthenticated
	f.logger.Info(ctx, "logged in with second factor", "email", email, "tier", f.session.Tier())
	return f.session, nil
}

// Cancel abandons a login that has not completed yet. It is a no-op once
// authenticated.
func (f *AuthFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateAuthenticated {
		return
	}
	f.resetLocked()
	f.cancelledAt = f.generation
}

// Logout ends the session and returns the flow to Idle.
func (f *AuthFlow) Logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session != nil {
		f.session.End()
		f.session = nil
	}
	f.resetLocked()
}

func (f *AuthFlow) stopDeadlineLocked() {
	if f.deadline != nil {
		f.deadline.Stop()
		f.deadline = nil
	}
}

// resetLocked erases every trace of a pending login and starts a new
// generation so in-flight calls and timers become no-ops.
func (f *AuthFlow) resetLocked() {
	f.generation++
	f.stopDeadlineLocked()
	f.custody.Discard()
	if f.retained != nil {
		f.retained.Destroy()
		f.retained = nil
	}
	f.ticket = ""
	f.attempts = 0
	f.email = ""
	f.state = StateIdle
}
