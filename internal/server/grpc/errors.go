package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/vaultify/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Clients tell some failures apart by message, so the messages below are
// part of the protocol.
var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrInvalidCredentials, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrorAlreadyExists, codes.AlreadyExists},
	{common.ErrPremiumRequired, codes.PermissionDenied},
	{common.ErrInvalidPassword, codes.PermissionDenied},
	{common.ErrInvalidPremiumKey, codes.PermissionDenied},
	{common.ErrInvalidOTP, codes.InvalidArgument},
	{common.ErrorValidation, codes.InvalidArgument},
	{common.ErrAlreadyPremium, codes.InvalidArgument},
	{common.ErrTicketInvalid, codes.FailedPrecondition},
	{common.ErrSecondFactorNotEnabled, codes.FailedPrecondition},
	{common.ErrSecondFactorAlreadyEnabled, codes.FailedPrecondition},
	{common.ErrSecondFactorNotInitiated, codes.FailedPrecondition},
	{common.ErrNotPremium, codes.FailedPrecondition},
}

func (s *GRPCServer) mapError(ctx context.Context, err error) error {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			msg := e.err.Error()
			if e.err == common.ErrorValidation {
				msg = err.Error()
			}
			return status.Error(e.code, msg)
		}
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, "canceled")
	}
	s.logger.Error(ctx, "internal error", "error", err)
	return status.Error(codes.Internal, "internal error")
}
