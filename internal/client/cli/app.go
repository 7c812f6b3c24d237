package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/client/client"
	"github.com/dmitrijs2005/vaultify/internal/client/config"
	"github.com/dmitrijs2005/vaultify/internal/client/custody"
	"github.com/dmitrijs2005/vaultify/internal/client/models"
	"github.com/dmitrijs2005/vaultify/internal/client/services"
	"github.com/dmitrijs2005/vaultify/internal/logging"
	"github.com/dmitrijs2005/vaultify/internal/timex"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const onlineCheckInterval = 30 * time.Second

type authFlow interface {
	Login(ctx context.Context, email string, password []byte) (*services.LoginOutcome, error)
	VerifyOTP(ctx context.Context, otp string) (*services.Session, error)
	Cancel()
	Logout()
	Session() *services.Session
}

type accountService interface {
	Register(ctx context.Context, email string, password []byte) error
	SetupSecondFactor(ctx context.Context, s *services.Session) (*client.SecondFactorSetup, error)
	EnableSecondFactor(ctx context.Context, s *services.Session, otp string) error
	SecondFactorStatus(ctx context.Context, s *services.Session) (bool, error)
	DisableSecondFactor(ctx context.Context, s *services.Session, password []byte) error
	VerifyPremium(ctx context.Context, s *services.Session, key string) error
	PremiumStatus(ctx context.Context, s *services.Session) (bool, error)
	DisablePremium(ctx context.Context, s *services.Session, password []byte) error
}

type documentEngine interface {
	Load(ctx context.Context) error
	Items() []models.Item
	Get(id string) (models.Item, bool)
	Add(it models.Item) (models.Item, error)
	Update(it models.Item) (models.Item, error)
	Remove(id string) error
	Save(ctx context.Context) error
	Close()
}

// engineFactory builds the sync engine for one document kind of a session.
type engineFactory func(kind models.Kind, s *services.Session, onExpired func()) documentEngine

type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	api       pinger
	auth      authFlow
	account   accountService
	newEngine engineFactory
	reader    *bufio.Reader
	out       io.Writer

	mu      sync.Mutex
	engines map[models.Kind]documentEngine
	Mode    Mode
	expired atomic.Bool
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	var api client.Client
	switch c.Transport {
	case config.TransportHTTP:
		api = client.NewHTTPClient(c.HTTPBaseURL, c.RequestTimeout, logger)
	default:
		g, err := client.NewGRPCClient(c.ServerEndpointAddr, c.RequestTimeout)
		if err != nil {
			return nil, err
		}
		api = g
	}

	clock := timex.RealClock()
	flow := services.NewAuthFlow(api, custody.New(custody.NewMemorySlot(), logger), clock, logger, c.FlowConfig())
	account := services.NewAccountService(api, c.KDFIterations, logger)

	newEngine := func(kind models.Kind, s *services.Session, onExpired func()) documentEngine {
		store := services.NewRemoteStore(api, s)
		return services.NewEngine(kind, store, s.Key, c.Policy(kind), logger, clock,
			services.WithSessionExpiredHandler(onExpired))
	}

	return &App{
		config:    c,
		logger:    logger.With("module", "cli"),
		api:       api,
		auth:      flow,
		account:   account,
		newEngine: newEngine,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

// Run blocks in the REPL until the user exits, then ends the session.
func (a *App) Run(ctx context.Context) {
	defer func() {
		a.endSession()
		_ = a.api.Close()
	}()

	printlnFn("Welcome to Vaultify CLI (type 'help' for commands)")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) getStatus() string {
	a.reapExpired()

	var parts []string
	if sess := a.auth.Session(); sess != nil {
		parts = append(parts, sess.Email, sess.Tier())
	}
	a.mu.Lock()
	if a.Mode != "" {
		parts = append(parts, string(a.Mode))
	}
	a.mu.Unlock()
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *App) isLoggedIn() bool {
	a.reapExpired()
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engines != nil && a.auth.Session() != nil
}

// StartOnlineStatusWatcher pings the backend every interval and flips Mode
// until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.checkOnline(ctx)
	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// startSession opens and loads one engine per document kind.
func (a *App) startSession(ctx context.Context, s *services.Session) error {
	engines := make(map[models.Kind]documentEngine, 2)
	for _, kind := range []models.Kind{models.KindVault, models.KindCards} {
		e := a.newEngine(kind, s, a.onSessionExpired)
		if err := e.Load(ctx); err != nil {
			for _, opened := range engines {
				opened.Close()
			}
			e.Close()
			return fmt.Errorf("load %s: %w", kind, err)
		}
		engines[kind] = e
	}

	a.expired.Store(false)
	a.mu.Lock()
	a.engines = engines
	a.mu.Unlock()
	return nil
}

// onSessionExpired runs on an engine timer goroutine; the teardown itself
// happens on the REPL goroutine in reapExpired.
func (a *App) onSessionExpired() {
	a.expired.Store(true)
}

func (a *App) reapExpired() {
	if !a.expired.CompareAndSwap(true, false) {
		return
	}
	printlnFn("Session expired, please log in again")
	a.endSession()
}

// endSession closes the engines and wipes the session key.
func (a *App) endSession() {
	a.mu.Lock()
	engines := a.engines
	a.engines = nil
	a.mu.Unlock()

	for _, e := range engines {
		e.Close()
	}
	a.auth.Logout()
}

func (a *App) engine(kind models.Kind) (documentEngine, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.engines[kind]
	return e, ok
}

func (a *App) report(ctx context.Context, msg string, err error) error {
	a.logger.Error(ctx, msg, "error", err)
	printlnFn(fmt.Sprintf("Error: %s", err))
	return err
}
