package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")

	// Second factor.
	ErrTicketInvalid              = errors.New("invalid or expired ticket")
	ErrInvalidOTP                 = errors.New("invalid OTP code")
	ErrSecondFactorNotEnabled     = errors.New("2FA is not enabled")
	ErrSecondFactorAlreadyEnabled = errors.New("2FA is already enabled")
	ErrSecondFactorNotInitiated   = errors.New("2FA setup not initiated")

	// Privilege tier.
	ErrPremiumRequired   = errors.New("premium required")
	ErrAlreadyPremium    = errors.New("user is already premium")
	ErrNotPremium        = errors.New("user is not premium")
	ErrInvalidPremiumKey = errors.New("invalid premium key")
)
