package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/vaultify/internal/client/client"
	"github.com/dmitrijs2005/vaultify/internal/client/models"
	"github.com/dmitrijs2005/vaultify/internal/client/services"
	"github.com/dmitrijs2005/vaultify/internal/logging"
)

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

// stubPasswords makes getPassword return the given answers in order.
func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(string, io.Writer) ([]byte, error) {
		if len(answers) == 0 {
			return []byte{}, nil
		}
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	}
	t.Cleanup(func() { getPassword = orig })
}

type otpResult struct {
	session *services.Session
	err     error
}

type fakeFlow struct {
	loginEmail string
	loginPass  string
	loginOut   *services.LoginOutcome
	loginErr   error

	otps       []string
	otpResults []otpResult

	cancelled bool
	loggedOut bool
	session   *services.Session
}

func (f *fakeFlow) Login(_ context.Context, email string, password []byte) (*services.LoginOutcome, error) {
	f.loginEmail, f.loginPass = email, string(password)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.loginOut.Session != nil {
		f.session = f.loginOut.Session
	}
	return f.loginOut, nil
}

func (f *fakeFlow) VerifyOTP(_ context.Context, otp string) (*services.Session, error) {
	f.otps = append(f.otps, otp)
	r := f.otpResults[0]
	f.otpResults = f.otpResults[1:]
	if r.session != nil {
		f.session = r.session
	}
	return r.session, r.err
}

func (f *fakeFlow) Cancel() { f.cancelled = true }

func (f *fakeFlow) Logout() {
	f.loggedOut = true
	if f.session != nil {
		f.session.End()
	}
	f.session = nil
}

func (f *fakeFlow) Session() *services.Session { return f.session }

type fakeAccount struct {
	calls []string
	err   error

	regEmail, regPass string
	password          string
	otp, key          string
	enabled, premium  bool
	setup             *client.SecondFactorSetup
}

func (f *fakeAccount) Register(_ context.Context, email string, password []byte) error {
	f.calls = append(f.calls, "register")
	f.regEmail, f.regPass = email, string(password)
	return f.err
}
func (f *fakeAccount) SetupSecondFactor(context.Context, *services.Session) (*client.SecondFactorSetup, error) {
	f.calls = append(f.calls, "setup")
	return f.setup, f.err
}
func (f *fakeAccount) EnableSecondFactor(_ context.Context, _ *services.Session, otp string) error {
	f.calls = append(f.calls, "enable")
	f.otp = otp
	return f.err
}
func (f *fakeAccount) SecondFactorStatus(context.Context, *services.Session) (bool, error) {
	f.calls = append(f.calls, "status")
	return f.enabled, f.err
}
func (f *fakeAccount) DisableSecondFactor(_ context.Context, _ *services.Session, password []byte) error {
	f.calls = append(f.calls, "disable")
	f.password = string(password)
	return f.err
}
func (f *fakeAccount) VerifyPremium(_ context.Context, s *services.Session, key string) error {
	f.calls = append(f.calls, "premium")
	f.key = key
	if f.err == nil {
		s.Refresh("premium-token", true)
	}
	return f.err
}
func (f *fakeAccount) PremiumStatus(context.Context, *services.Session) (bool, error) {
	f.calls = append(f.calls, "premium-status")
	return f.premium, f.err
}
func (f *fakeAccount) DisablePremium(_ context.Context, _ *services.Session, password []byte) error {
	f.calls = append(f.calls, "premium-disable")
	f.password = string(password)
	return f.err
}

type fakeEngine struct {
	kind    models.Kind
	items   []models.Item
	loadErr error
	saveErr error
	saves   int
	closed  bool
	nextID  int
}

func (e *fakeEngine) Load(context.Context) error { return e.loadErr }
func (e *fakeEngine) Items() []models.Item {
	out := make([]models.Item, 0, len(e.items))
	for _, it := range e.items {
		out = append(out, it.Clone())
	}
	return out
}
func (e *fakeEngine) Get(id string) (models.Item, bool) {
	for _, it := range e.items {
		if it.ID == id {
			return it.Clone(), true
		}
	}
	return models.Item{}, false
}
func (e *fakeEngine) Add(it models.Item) (models.Item, error) {
	if it.ID == "" {
		e.nextID++
		it.ID = string(e.kind) + "-" + string(rune('0'+e.nextID))
	}
	e.items = append(e.items, it)
	return it, nil
}
func (e *fakeEngine) Update(it models.Item) (models.Item, error) {
	for i := range e.items {
		if e.items[i].ID == it.ID {
			e.items[i] = it
			return it, nil
		}
	}
	return models.Item{}, services.ErrItemNotFound
}
func (e *fakeEngine) Remove(id string) error {
	for i := range e.items {
		if e.items[i].ID == id {
			e.items = append(e.items[:i], e.items[i+1:]...)
			return nil
		}
	}
	return services.ErrItemNotFound
}
func (e *fakeEngine) Save(context.Context) error { e.saves++; return e.saveErr }
func (e *fakeEngine) Close()                     { e.closed = true }

type testApp struct {
	*App
	flow    *fakeFlow
	account *fakeAccount
	engines map[models.Kind]*fakeEngine
	expired func()
}

func newTestApp(t *testing.T, lines ...string) *testApp {
	t.Helper()
	ta := &testApp{
		flow:    &fakeFlow{},
		account: &fakeAccount{},
		engines: map[models.Kind]*fakeEngine{
			models.KindVault: {kind: models.KindVault},
			models.KindCards: {kind: models.KindCards},
		},
	}
	ta.App = &App{
		logger:  logging.NewDiscardLogger(),
		auth:    ta.flow,
		account: ta.account,
		reader:  readerFromLines(lines...),
		out:     io.Discard,
		newEngine: func(kind models.Kind, _ *services.Session, onExpired func()) documentEngine {
			ta.expired = onExpired
			return ta.engines[kind]
		},
	}
	return ta
}

// loggedIn opens a session without going through Login.
func (ta *testApp) loggedIn(t *testing.T) *services.Session {
	t.Helper()
	s := services.NewSession("neo@example.org", "tok", false, nil)
	ta.flow.session = s
	if err := ta.startSession(context.Background(), s); err != nil {
		t.Fatalf("startSession: %v", err)
	}
	return s
}
