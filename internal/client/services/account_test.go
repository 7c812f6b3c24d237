package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/vaultify/internal/client/client"
	"github.com/dmitrijs2005/vaultify/internal/client/models"
	"github.com/dmitrijs2005/vaultify/internal/cryptox"
	"github.com/dmitrijs2005/vaultify/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountClient struct {
	err error

	registerEmail string
	registerSalt  string
	registerProof []byte

	lastToken string
	lastOTP   string
	lastKey   string
	lastProof []byte

	grant *client.SessionGrant
}

func (f *fakeAccountClient) Register(ctx context.Context, email, salt string, proof []byte) error {
	f.registerEmail, f.registerSalt = email, salt
	f.registerProof = append([]byte(nil), proof...)
	return f.err
}

func (f *fakeAccountClient) GetSalt(ctx context.Context, email string) (string, error) {
	return testSalt, nil
}

func (f *fakeAccountClient) SetupSecondFactor(ctx context.Context, token string) (*client.SecondFactorSetup, error) {
	f.lastToken = token
	return &client.SecondFactorSetup{Secret: "S"}, f.err
}

func (f *fakeAccountClient) EnableSecondFactor(ctx context.Context, token, otp string) error {
	f.lastToken, f.lastOTP = token, otp
	return f.err
}

func (f *fakeAccountClient) SecondFactorStatus(ctx context.Context, token string) (bool, error) {
	f.lastToken = token
	return true, f.err
}

func (f *fakeAccountClient) DisableSecondFactor(ctx context.Context, token string, proof []byte) error {
	f.lastToken = token
	f.lastProof = append([]byte(nil), proof...)
	return f.err
}

func (f *fakeAccountClient) VerifyPremium(ctx context.Context, token, key string) (*client.SessionGrant, error) {
	f.lastToken, f.lastKey = token, key
	if f.err != nil {
		return nil, f.err
	}
	return f.grant, nil
}

func (f *fakeAccountClient) PremiumStatus(ctx context.Context, token string) (bool, error) {
	f.lastToken = token
	return false, f.err
}

func (f *fakeAccountClient) DisablePremium(ctx context.Context, token string, proof []byte) error {
	f.lastToken = token
	f.lastProof = append([]byte(nil), proof...)
	return f.err
}

func newAccount(c AccountClient) *AccountService {
	return NewAccountService(c, testIterations, logging.NewDiscardLogger())
}

func TestAccount_Register(t *testing.T) {
	c := &fakeAccountClient{}
	a := newAccount(c)
	pw := []byte("Sunrise!42aB")

	require.NoError(t, a.Register(context.Background(), "user@example.com", pw))
	assert.Equal(t, "user@example.com", c.registerEmail)

	raw, err := cryptox.DecodeSalt(c.registerSalt)
	require.NoError(t, err)
	assert.Len(t, raw, cryptox.SaltLength)

	want, err := cryptox.DeriveAuthProof(pw, c.registerSalt, testIterations)
	require.NoError(t, err)
	assert.Equal(t, want, c.registerProof)
}

func TestAccount_RegisterValidation(t *testing.T) {
	a := newAccount(&fakeAccountClient{})

	err := a.Register(context.Background(), "not-an-email", []byte("pw"))
	require.ErrorIs(t, err, models.ErrValidation)

	err = a.Register(context.Background(), "user@example.com", nil)
	require.ErrorIs(t, err, cryptox.ErrInvalidInput)
}

func TestAccount_RegisterDuplicate(t *testing.T) {
	a := newAccount(&fakeAccountClient{err: client.ErrAlreadyExists})
	err := a.Register(context.Background(), "user@example.com", []byte("pw"))
	require.ErrorIs(t, err, client.ErrAlreadyExists)
}

func TestAccount_SecondFactor(t *testing.T) {
	c := &fakeAccountClient{}
	a := newAccount(c)
	s := NewSession("user@example.com", "T", true, nil)
	ctx := context.Background()

	setup, err := a.SetupSecondFactor(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "S", setup.Secret)
	assert.Equal(t, "T", c.lastToken)

	require.NoError(t, a.EnableSecondFactor(ctx, s, "123456"))
	assert.Equal(t, "123456", c.lastOTP)

	enabled, err := a.SecondFactorStatus(ctx, s)
	require.NoError(t, err)
	assert.True(t, enabled)

	pw := []byte("pw")
	require.NoError(t, a.DisableSecondFactor(ctx, s, pw))
	want, err := cryptox.DeriveAuthProof(pw, testSalt, testIterations)
	require.NoError(t, err)
	assert.Equal(t, want, c.lastProof)
}

func TestAccount_VerifyPremiumRefreshesSession(t *testing.T) {
	c := &fakeAccountClient{grant: &client.SessionGrant{Token: "P", Premium: true}}
	a := newAccount(c)
	s := NewSession("user@example.com", "T", false, nil)

	require.NoError(t, a.VerifyPremium(context.Background(), s, "KEY"))
	assert.Equal(t, "KEY", c.lastKey)
	assert.Equal(t, "P", s.Token())
	assert.Equal(t, TierPremium, s.Tier())
}

func TestAccount_VerifyPremiumRejected(t *testing.T) {
	a := newAccount(&fakeAccountClient{err: client.ErrForbidden})
	s := NewSession("user@example.com", "T", false, nil)

	require.ErrorIs(t, a.VerifyPremium(context.Background(), s, "BAD"), client.ErrForbidden)
	assert.Equal(t, "T", s.Token())
	assert.Equal(t, TierFree, s.Tier())
}

func TestAccount_DisablePremium(t *testing.T) {
	c := &fakeAccountClient{}
	a := newAccount(c)
	s := NewSession("user@example.com", "T", true, nil)

	require.NoError(t, a.DisablePremium(context.Background(), s, []byte("pw")))
	assert.Equal(t, TierFree, s.Tier())
	assert.NotEmpty(t, c.lastProof)
}
