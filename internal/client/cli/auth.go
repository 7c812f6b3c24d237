package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vaultify/internal/client/client"
	"github.com/dmitrijs2005/vaultify/internal/client/services"
	"github.com/dmitrijs2005/vaultify/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email and a master password (twice) and creates the
// account. Nothing is logged in afterwards.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter master password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Repeat master password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		printlnFn("Passwords do not match")
		return errPasswordMismatch
	}

	if err := a.account.Register(ctx, email, password); err != nil {
		if errors.Is(err, client.ErrAlreadyExists) {
			printlnFn("An account with this email already exists")
			return err
		}
		return a.report(ctx, "registration failed", err)
	}

	printlnFn("Success! You can log in now.")
	return nil
}

var errPasswordMismatch = errors.New("passwords do not match")

// Login authenticates with the master password. When the account asks for a
// second factor the user is prompted for one-time codes until one is
// accepted, the challenge ends, or an empty line cancels it.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("Already logged in, use 'logout' first")
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter master password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	outcome, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return a.loginFailed(ctx, err)
	}

	sess := outcome.Session
	if outcome.SecondFactorRequired {
		sess, err = a.secondFactor(ctx)
		if err != nil {
			return err
		}
	}

	if err := a.startSession(ctx, sess); err != nil {
		a.auth.Logout()
		return a.report(ctx, "cannot open vault", err)
	}

	printlnFn(fmt.Sprintf("Logged in as %s (%s)", sess.Email, sess.Tier()))
	return nil
}

func (a *App) secondFactor(ctx context.Context) (*services.Session, error) {
	printlnFn("This account is protected with two-factor authentication.")
	for {
		otp, err := getSimpleText(a.reader, "Enter the code from your authenticator app (empty line to cancel)", a.out)
		if err != nil {
			a.auth.Cancel()
			return nil, err
		}
		if otp == "" {
			a.auth.Cancel()
			printlnFn("Login cancelled")
			return nil, services.ErrFlowCancelled
		}

		sess, err := a.auth.VerifyOTP(ctx, otp)
		switch {
		case err == nil:
			return sess, nil
		case errors.Is(err, client.ErrTicketExpired), errors.Is(err, services.ErrInvalidState):
			printlnFn("The login request expired, please log in again")
			return nil, err
		case errors.Is(err, services.ErrTooManyAttempts):
			printlnFn("Too many wrong codes, please log in again")
			return nil, err
		case errors.Is(err, client.ErrSecondFactorVerification):
			printlnFn("Invalid code, try again")
		case errors.Is(err, client.ErrUnavailable):
			// The challenge is still pending; the same or a newer code can be retried.
			a.logger.Warn(ctx, "second factor check failed", "error", err)
			printlnFn("Server unavailable, try again or leave empty to cancel")
		default:
			a.auth.Cancel()
			return nil, a.loginFailed(ctx, err)
		}
	}
}

func (a *App) loginFailed(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, client.ErrAccountNotFound), errors.Is(err, client.ErrInvalidCredentials):
		printlnFn("Invalid email or password")
	case errors.Is(err, client.ErrUnavailable):
		printlnFn("Server unavailable, try again later")
	default:
		return a.report(ctx, "login failed", err)
	}
	a.logger.Warn(ctx, "login failed", "error", err)
	return err
}

// Logout saves pending changes, then closes the engines and wipes the key.
func (a *App) Logout(ctx context.Context) error {
	var saveErr error
	for _, kind := range documentKinds {
		if e, ok := a.engine(kind); ok {
			if err := e.Save(ctx); err != nil && saveErr == nil {
				saveErr = err
			}
		}
	}
	a.endSession()

	if saveErr != nil {
		a.logger.Warn(ctx, "final save failed", "error", saveErr)
		printlnFn("Logged out, but the last changes could not be saved")
		return saveErr
	}
	printlnFn("Logged out")
	return nil
}
