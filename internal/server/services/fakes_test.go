package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/vaultify/internal/common"
	"github.com/dmitrijs2005/vaultify/internal/dbx"
	"github.com/dmitrijs2005/vaultify/internal/logging"
	"github.com/dmitrijs2005/vaultify/internal/server/config"
	"github.com/dmitrijs2005/vaultify/internal/server/models"
	"github.com/dmitrijs2005/vaultify/internal/server/repositories/documents"
	"github.com/dmitrijs2005/vaultify/internal/server/repositories/tickets"
	"github.com/dmitrijs2005/vaultify/internal/server/repositories/users"
	"github.com/dmitrijs2005/vaultify/internal/timex"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type fakeUsers struct {
	byID      map[string]*models.User
	createErr error
	getErr    error
	setErr    error
	created   *models.User
}

func newFakeUsers(us ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]*models.User{}}
	for _, u := range us {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = "u-new"
	f.created = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) SetPremium(_ context.Context, id string, premium bool) error {
	if f.setErr != nil {
		return f.setErr
	}
	u := f.byID[id]
	u.Premium = premium
	if !premium {
		u.PremiumKey = ""
	}
	return nil
}

func (f *fakeUsers) SetSecondFactor(_ context.Context, id string, secret string, enabled bool) error {
	if f.setErr != nil {
		return f.setErr
	}
	u := f.byID[id]
	u.TwoFASecret, u.TwoFAEnabled = secret, enabled
	return nil
}

type fakeTickets struct {
	rows      map[string]*models.LoginTicket
	createErr error
	swept     int
	// consumed simulates another request deleting the ticket between Find and Delete.
	consumed bool
}

func (f *fakeTickets) Create(_ context.Context, ticket string, userID string, expiresAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.rows[ticket] = &models.LoginTicket{Ticket: ticket, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeTickets) Find(_ context.Context, ticket string) (*models.LoginTicket, error) {
	t, ok := f.rows[ticket]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeTickets) Delete(_ context.Context, ticket string) error {
	if f.consumed {
		delete(f.rows, ticket)
	}
	if _, ok := f.rows[ticket]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, ticket)
	return nil
}

func (f *fakeTickets) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.swept++
	var n int64
	for k, t := range f.rows {
		if t.Expired(now) {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct {
	users   *fakeUsers
	tickets *fakeTickets
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Tickets(dbx.DBTX) tickets.Repository          { return m.tickets }
func (m *fakeRepoManager) Documents(dbx.DBTX) documents.Repository      { return nil }

type userFixture struct {
	svc     *UserService
	users   *fakeUsers
	tickets *fakeTickets
	clock   *timex.FakeClock
	mock    sqlmock.Sqlmock
}

func newUserFixture(t *testing.T, us ...*models.User) *userFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	f := &userFixture{
		users:   newFakeUsers(us...),
		tickets: &fakeTickets{rows: map[string]*models.LoginTicket{}},
		clock:   timex.NewFakeClock(testNow),
		mock:    mock,
	}
	cfg := &config.Config{
		SecretKey:                   "test-secret",
		AccessTokenValidityDuration: time.Hour,
		TicketValidityDuration:      300 * time.Second,
		OTPIssuer:                   "Vaultify",
	}
	f.svc = NewUserService(db, &fakeRepoManager{users: f.users, tickets: f.tickets}, cfg, f.clock, logging.NewDiscardLogger())
	return f
}

func hashProof(t *testing.T, proof string) []byte {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(proof), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return h
}
