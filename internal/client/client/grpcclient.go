package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/client/models"
	"github.com/dmitrijs2005/vaultify/internal/common"
	"github.com/dmitrijs2005/vaultify/internal/wire"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      wire.VaultClient
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

// requestIDInterceptor tags every call with a fresh request id unless the
// caller already set one.
func requestIDInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	md, _ := metadata.FromOutgoingContext(ctx)
	if len(md.Get(common.RequestIDHeaderName)) == 0 {
		ctx = metadata.AppendToOutgoingContext(ctx, common.RequestIDHeaderName, uuid.NewString())
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	if err := c.initGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(requestIDInterceptor),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(wire.CodecName)),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = wire.NewVaultClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &wire.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Register(ctx context.Context, email, salt string, proof []byte) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := &wire.RegisterRequest{Email: email, Salt: salt, AuthProof: base64.StdEncoding.EncodeToString(proof)}
	if _, err := s.client.Register(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) GetSalt(ctx context.Context, email string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetSalt(ctx, &wire.GetSaltRequest{Email: email})
	if err != nil {
		err = s.mapError(err)
		if errors.Is(err, ErrNotFound) {
			return "", ErrAccountNotFound
		}
		return "", err
	}
	return resp.Salt, nil
}

func (s *GRPCClient) Login(ctx context.Context, email string, proof []byte) (*LoginResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := &wire.LoginRequest{Email: email, AuthProof: base64.StdEncoding.EncodeToString(proof)}
	resp, err := s.client.Login(ctx, req)
	if err != nil {
		err = s.mapError(err)
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return &LoginResult{
		Token:                resp.Token,
		Premium:              resp.Premium,
		SecondFactorRequired: resp.TwoFARequired,
		Ticket:               resp.Ticket,
	}, nil
}

func (s *GRPCClient) VerifySecondFactor(ctx context.Context, ticket, otp string) (*SessionGrant, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.VerifySecondFactor(ctx, &wire.VerifySecondFactorRequest{Ticket: ticket, OTP: otp})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &SessionGrant{Token: resp.Token, Premium: resp.Premium}, nil
}

func (s *GRPCClient) FetchDocument(ctx context.Context, token string, kind models.Kind) (*models.Document, error) {
	ctx, cancel := s.withTimeout(withAccessToken(ctx, token))
	defer cancel()

	resp, err := s.client.GetDocument(ctx, &wire.GetDocumentRequest{Kind: string(kind)})
	if err != nil {
		return nil, s.mapError(err)
	}
	return decodeBlob(resp.Document)
}

func (s *GRPCClient) SaveDocument(ctx context.Context, token string, kind models.Kind, doc *models.Document) error {
	blob, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	ctx, cancel := s.withTimeout(withAccessToken(ctx, token))
	defer cancel()

	if _, err := s.client.PutDocument(ctx, &wire.PutDocumentRequest{Kind: string(kind), Document: blob}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) SetupSecondFactor(ctx context.Context, token string) (*SecondFactorSetup, error) {
	ctx, cancel := s.withTimeout(withAccessToken(ctx, token))
	defer cancel()

	resp, err := s.client.SetupSecondFactor(ctx, &wire.SetupSecondFactorRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &SecondFactorSetup{Secret: resp.Secret, OTPAuthURL: resp.OTPAuthURL}, nil
}

func (s *GRPCClient) EnableSecondFactor(ctx context.Context, token, otp string) error {
	ctx, cancel := s.withTimeout(withAccessToken(ctx, token))
	defer cancel()

	if _, err := s.client.EnableSecondFactor(ctx, &wire.EnableSecondFactorRequest{OTP: otp}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) SecondFactorStatus(ctx context.Context, token string) (bool, error) {
	ctx, cancel := s.withTimeout(withAccessToken(ctx, token))
	defer cancel()

	resp, err := s.client.SecondFactorStatus(ctx, &wire.SecondFactorStatusRequest{})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Enabled, nil
}

func (s *GRPCClient) DisableSecondFactor(ctx context.Context, token string, proof []byte) error {
	ctx, cancel := s.withTimeout(withAccessToken(ctx, token))
	defer cancel()

	req := &wire.DisableSecondFactorRequest{AuthProof: base64.StdEncoding.EncodeToString(proof)}
	if _, err := s.client.DisableSecondFactor(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) VerifyPremium(ctx context.Context, token, key string) (*SessionGrant, error) {
	ctx, cancel := s.withTimeout(withAccessToken(ctx, token))
	defer cancel()

	resp, err := s.client.VerifyPremium(ctx, &wire.VerifyPremiumRequest{Key: key})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &SessionGrant{Token: resp.Token, Premium: resp.Premium}, nil
}

func (s *GRPCClient) PremiumStatus(ctx context.Context, token string) (bool, error) {
	ctx, cancel := s.withTimeout(withAccessToken(ctx, token))
	defer cancel()

	resp, err := s.client.PremiumStatus(ctx, &wire.PremiumStatusRequest{})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Premium, nil
}

func (s *GRPCClient) DisablePremium(ctx context.Context, token string, proof []byte) error {
	ctx, cancel := s.withTimeout(withAccessToken(ctx, token))
	defer cancel()

	req := &wire.DisablePremiumRequest{AuthProof: base64.StdEncoding.EncodeToString(proof)}
	if _, err := s.client.DisablePremium(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.NotFound:
		return ErrNotFound
	case codes.Unauthenticated:
		if st.Message() == common.ErrInvalidCredentials.Error() {
			return ErrInvalidCredentials
		}
		return ErrSessionExpired
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		if st.Message() == common.ErrInvalidOTP.Error() {
			return ErrSecondFactorVerification
		}
		return fmt.Errorf("%w: %s", ErrBadRequest, st.Message())
	case codes.FailedPrecondition:
		if st.Message() == common.ErrTicketInvalid.Error() {
			return ErrTicketExpired
		}
		return fmt.Errorf("%w: %s", ErrBadRequest, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
