// Package grpc serves the vault API over gRPC with the JSON codec from the
// wire package.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/vaultify/internal/logging"
	"github.com/dmitrijs2005/vaultify/internal/server/models"
	"github.com/dmitrijs2005/vaultify/internal/server/services"
	"github.com/dmitrijs2005/vaultify/internal/wire"
	"google.golang.org/grpc"
)

type userService interface {
	Register(ctx context.Context, email, salt string, proof []byte) (*models.User, error)
	GetSalt(ctx context.Context, email string) (string, error)
	Login(ctx context.Context, email string, proof []byte) (*services.LoginResult, error)
	VerifySecondFactor(ctx context.Context, ticket, code string) (*services.Session, error)
	SetupSecondFactor(ctx context.Context, userID string) (*services.SecondFactorSetup, error)
	EnableSecondFactor(ctx context.Context, userID, code string) error
	SecondFactorStatus(ctx context.Context, userID string) (bool, error)
	DisableSecondFactor(ctx context.Context, userID string, proof []byte) error
	VerifyPremium(ctx context.Context, userID, key string) (*services.Session, error)
	PremiumStatus(ctx context.Context, userID string) (bool, error)
	DisablePremium(ctx context.Context, userID string, proof []byte) error
}

type documentService interface {
	Get(ctx context.Context, userID, kind string) ([]byte, error)
	Put(ctx context.Context, userID, kind string, blob []byte) error
}

type GRPCServer struct {
	wire.UnimplementedVaultServer
	address   string
	users     userService
	documents documentService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us userService, ds documentService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		documents: ds,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestLogInterceptor, s.accessTokenInterceptor))
	wire.RegisterVaultServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
