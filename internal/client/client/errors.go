package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable              = errors.New("server unavailable")
	ErrNotFound                 = errors.New("not found")
	ErrAccountNotFound          = errors.New("account not found")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrSecondFactorVerification = errors.New("second factor verification failed")
	ErrTicketExpired            = fmt.Errorf("%w: ticket invalid or expired", ErrSecondFactorVerification)
	ErrSessionExpired           = errors.New("session expired")
	ErrForbidden                = errors.New("forbidden")
	ErrAlreadyExists            = errors.New("already exists")
	ErrBadRequest               = errors.New("request rejected")
)
