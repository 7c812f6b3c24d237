package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/common"
	"github.com/dmitrijs2005/vaultify/internal/logging"
	"github.com/dmitrijs2005/vaultify/internal/server/auth"
	"github.com/dmitrijs2005/vaultify/internal/server/models"
	"github.com/dmitrijs2005/vaultify/internal/server/services"
	"github.com/dmitrijs2005/vaultify/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

const testSecret = "secret"

type fakeUsers struct {
	err error

	gotEmail  string
	gotProof  []byte
	gotUserID string
	gotCode   string
	gotKey    string

	login   *services.LoginResult
	session *services.Session
	enabled bool
	premium bool
}

func (f *fakeUsers) Register(_ context.Context, email, salt string, proof []byte) (*models.User, error) {
	f.gotEmail, f.gotProof = email, proof
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "u1", Email: email, Salt: salt}, nil
}
func (f *fakeUsers) GetSalt(_ context.Context, email string) (string, error) {
	f.gotEmail = email
	return "c2FsdA==", f.err
}
func (f *fakeUsers) Login(_ context.Context, email string, proof []byte) (*services.LoginResult, error) {
	f.gotEmail, f.gotProof = email, proof
	return f.login, f.err
}
func (f *fakeUsers) VerifySecondFactor(_ context.Context, ticket, code string) (*services.Session, error) {
	f.gotCode = ticket + ":" + code
	return f.session, f.err
}
func (f *fakeUsers) SetupSecondFactor(_ context.Context, userID string) (*services.SecondFactorSetup, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &services.SecondFactorSetup{Secret: "JBSWY3DPEHPK3PXP", OTPAuthURL: "otpauth://totp/Vaultify:neo"}, nil
}
func (f *fakeUsers) EnableSecondFactor(_ context.Context, userID, code string) error {
	f.gotUserID, f.gotCode = userID, code
	return f.err
}
func (f *fakeUsers) SecondFactorStatus(_ context.Context, userID string) (bool, error) {
	f.gotUserID = userID
	return f.enabled, f.err
}
func (f *fakeUsers) DisableSecondFactor(_ context.Context, userID string, proof []byte) error {
	f.gotUserID, f.gotProof = userID, proof
	return f.err
}
func (f *fakeUsers) VerifyPremium(_ context.Context, userID, key string) (*services.Session, error) {
	f.gotUserID, f.gotKey = userID, key
	return f.session, f.err
}
func (f *fakeUsers) PremiumStatus(_ context.Context, userID string) (bool, error) {
	f.gotUserID = userID
	return f.premium, f.err
}
func (f *fakeUsers) DisablePremium(_ context.Context, userID string, proof []byte) error {
	f.gotUserID, f.gotProof = userID, proof
	return f.err
}

type fakeDocuments struct {
	blobs map[string][]byte
	err   error
}

func (f *fakeDocuments) Get(_ context.Context, userID, kind string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.blobs[userID+"/"+kind]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (f *fakeDocuments) Put(_ context.Context, userID, kind string, blob []byte) error {
	if f.err != nil {
		return f.err
	}
	f.blobs[userID+"/"+kind] = blob
	return nil
}

type harness struct {
	srv    *GRPCServer
	users  *fakeUsers
	docs   *fakeDocuments
	client wire.VaultClient
}

// startServer serves over an in-memory listener and returns a client bound
// to it.
func startServer(t *testing.T) *harness {
	t.Helper()
	h := &harness{users: &fakeUsers{}, docs: &fakeDocuments{blobs: map[string][]byte{}}}
	h.srv = NewGRPCServer("bufnet", logging.NewDiscardLogger(), h.users, h.docs, testSecret)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	h.client = wire.NewVaultClient(conn)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
	return h
}

func tokenFor(t *testing.T, userID string, premium bool) string {
	t.Helper()
	tok, err := auth.GenerateToken(auth.Subject{UserID: userID, Email: "neo@example.org", Premium: premium}, []byte(testSecret), time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)
}
