package grpc

import (
	"context"
	"encoding/base64"

	"github.com/dmitrijs2005/vaultify/internal/common"
	"github.com/dmitrijs2005/vaultify/internal/wire"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func decodeProof(p string) ([]byte, error) {
	proof, err := base64.StdEncoding.DecodeString(p)
	if err != nil || len(proof) == 0 {
		return nil, status.Error(codes.InvalidArgument, "auth_proof must be non-empty base64")
	}
	return proof, nil
}

func (s *GRPCServer) userID(ctx context.Context) (string, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}
	return claims.UserID, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *wire.PingRequest) (*wire.PingResponse, error) {
	return &wire.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Register(ctx context.Context, req *wire.RegisterRequest) (*wire.RegisterResponse, error) {
	proof, err := decodeProof(req.AuthProof)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Register(ctx, req.Email, req.Salt, proof)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return &wire.RegisterResponse{UserID: user.ID}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *wire.GetSaltRequest) (*wire.GetSaltResponse, error) {
	salt, err := s.users.GetSalt(ctx, req.Email)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &wire.GetSaltResponse{Salt: salt}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *wire.LoginRequest) (*wire.LoginResponse, error) {
	proof, err := decodeProof(req.AuthProof)
	if err != nil {
		return nil, err
	}

	res, err := s.users.Login(ctx, req.Email, proof)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	if res.Ticket != "" {
		return &wire.LoginResponse{TwoFARequired: true, Ticket: res.Ticket}, nil
	}
	return &wire.LoginResponse{Token: res.Session.Token, Premium: res.Session.Premium}, nil
}

func (s *GRPCServer) VerifySecondFactor(ctx context.Context, req *wire.VerifySecondFactorRequest) (*wire.SessionResponse, error) {
	if req.Ticket == "" || req.OTP == "" {
		return nil, status.Error(codes.InvalidArgument, "ticket and otp are required")
	}

	session, err := s.users.VerifySecondFactor(ctx, req.Ticket, req.OTP)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &wire.SessionResponse{Token: session.Token, Premium: session.Premium}, nil
}

func (s *GRPCServer) GetDocument(ctx context.Context, req *wire.GetDocumentRequest) (*wire.GetDocumentResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	blob, err := s.documents.Get(ctx, userID, req.Kind)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &wire.GetDocumentResponse{Document: blob}, nil
}

func (s *GRPCServer) PutDocument(ctx context.Context, req *wire.PutDocumentRequest) (*wire.PutDocumentResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.documents.Put(ctx, userID, req.Kind, req.Document); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &wire.PutDocumentResponse{}, nil
}

func (s *GRPCServer) SetupSecondFactor(ctx context.Context, req *wire.SetupSecondFactorRequest) (*wire.SetupSecondFactorResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	setup, err := s.users.SetupSecondFactor(ctx, userID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &wire.SetupSecondFactorResponse{Secret: setup.Secret, OTPAuthURL: setup.OTPAuthURL}, nil
}

func (s *GRPCServer) EnableSecondFactor(ctx context.Context, req *wire.EnableSecondFactorRequest) (*wire.Empty, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	if req.OTP == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}

	if err := s.users.EnableSecondFactor(ctx, userID, req.OTP); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &wire.Empty{}, nil
}

func (s *GRPCServer) SecondFactorStatus(ctx context.Context, req *wire.SecondFactorStatusRequest) (*wire.SecondFactorStatusResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	enabled, err := s.users.SecondFactorStatus(ctx, userID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &wire.SecondFactorStatusResponse{Enabled: enabled}, nil
}

func (s *GRPCServer) DisableSecondFactor(ctx context.Context, req *wire.DisableSecondFactorRequest) (*wire.Empty, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	proof, err := decodeProof(req.AuthProof)
	if err != nil {
		return nil, err
	}

	if err := s.users.DisableSecondFactor(ctx, userID, proof); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &wire.Empty{}, nil
}

func (s *GRPCServer) VerifyPremium(ctx context.Context, req *wire.VerifyPremiumRequest) (*wire.SessionResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	session, err := s.users.VerifyPremium(ctx, userID, req.Key)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &wire.SessionResponse{Token: session.Token, Premium: session.Premium}, nil
}

func (s *GRPCServer) PremiumStatus(ctx context.Context, req *wire.PremiumStatusRequest) (*wire.PremiumStatusResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	premium, err := s.users.PremiumStatus(ctx, userID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &wire.PremiumStatusResponse{Premium: premium}, nil
}

func (s *GRPCServer) DisablePremium(ctx context.Context, req *wire.DisablePremiumRequest) (*wire.Empty, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	proof, err := decodeProof(req.AuthProof)
	if err != nil {
		return nil, err
	}

	if err := s.users.DisablePremium(ctx, userID, proof); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &wire.Empty{}, nil
}
