package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/vaultify/internal/client/client"
	"github.com/dmitrijs2005/vaultify/internal/client/services"
	"github.com/dmitrijs2005/vaultify/internal/common"
)

func (a *App) session() (*services.Session, error) {
	s := a.auth.Session()
	if s == nil {
		printlnFn("Please log in first")
		return nil, errNoSession
	}
	return s, nil
}

// accountFailed prints a friendly message for the common server refusals.
func (a *App) accountFailed(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, client.ErrForbidden):
		printlnFn("Not allowed: this needs a premium account or a valid password/key")
	case errors.Is(err, client.ErrSecondFactorVerification):
		printlnFn("Invalid code")
	case errors.Is(err, client.ErrSessionExpired):
		a.onSessionExpired()
		a.reapExpired()
	default:
		return a.report(ctx, op+" failed", err)
	}
	return err
}

func (a *App) SetupSecondFactor(ctx context.Context) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	setup, err := a.account.SetupSecondFactor(ctx, s)
	if err != nil {
		return a.accountFailed(ctx, "2fa setup", err)
	}
	printlnFn("Add this account to your authenticator app:")
	printlnFn("  secret: ", setup.Secret)
	printlnFn("  url:    ", setup.OTPAuthURL)
	printlnFn("Then run '2fa-enable' with a code from the app.")
	return nil
}

func (a *App) EnableSecondFactor(ctx context.Context) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	otp, err := getSimpleText(a.reader, "Enter the code from your authenticator app", a.out)
	if err != nil {
		return err
	}
	if err := a.account.EnableSecondFactor(ctx, s, otp); err != nil {
		return a.accountFailed(ctx, "2fa enable", err)
	}
	printlnFn("Two-factor authentication enabled")
	return nil
}

func (a *App) SecondFactorStatus(ctx context.Context) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	enabled, err := a.account.SecondFactorStatus(ctx, s)
	if err != nil {
		return a.accountFailed(ctx, "2fa status", err)
	}
	if enabled {
		printlnFn("Two-factor authentication: enabled")
	} else {
		printlnFn("Two-factor authentication: disabled")
	}
	return nil
}

func (a *App) DisableSecondFactor(ctx context.Context) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	password, err := getPassword("Enter master password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.account.DisableSecondFactor(ctx, s, password); err != nil {
		return a.accountFailed(ctx, "2fa disable", err)
	}
	printlnFn("Two-factor authentication disabled")
	return nil
}

// UpgradePremium redeems a premium key. The session switches to the premium
// token on success.
func (a *App) UpgradePremium(ctx context.Context) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	key, err := getSimpleText(a.reader, "Enter premium key", a.out)
	if err != nil {
		return err
	}
	if err := a.account.VerifyPremium(ctx, s, key); err != nil {
		if errors.Is(err, client.ErrBadRequest) {
			printlnFn("Premium could not be activated:", err)
			return err
		}
		return a.accountFailed(ctx, "premium upgrade", err)
	}
	printlnFn("Premium activated")
	return nil
}

func (a *App) PremiumStatus(ctx context.Context) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	premium, err := a.account.PremiumStatus(ctx, s)
	if err != nil {
		return a.accountFailed(ctx, "premium status", err)
	}
	if premium {
		printlnFn("Account tier: premium")
	} else {
		printlnFn("Account tier: free")
	}
	return nil
}

func (a *App) DisablePremium(ctx context.Context) error {
	s, err := a.session()
	if err != nil {
		return err
	}
	password, err := getPassword("Enter master password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.account.DisablePremium(ctx, s, password); err != nil {
		return a.accountFailed(ctx, "premium disable", err)
	}
	printlnFn("Premium disabled")
	return nil
}
