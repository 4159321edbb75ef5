package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tripnest/tripnest/internal/devapi/domain"
	"github.com/tripnest/tripnest/internal/devapi/service"
	"github.com/tripnest/tripnest/internal/devapi/store/drivers/sqlite"
	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/cryptox"
	"github.com/tripnest/tripnest/pkg/jwtx"
)

const testPassword = "Sunny2026"

// clock is a settable time source shared by the services under test.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// captureMailer records deliveries.
type captureMailer struct {
	mu   sync.Mutex
	sent []service.InvitationMail
}

func (m *captureMailer) SendInvitation(_ context.Context, mail service.InvitationMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
	return nil
}

func (m *captureMailer) last() service.InvitationMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type env struct {
	store   *sqlite.Store
	clock   *clock
	mailer  *captureMailer
	auth    *service.AuthService
	invites *service.InviteService

	admin, agencyAdmin, staff, customer identity.User
}

var passwordHash = sync.OnceValue(func() string {
	h, err := cryptox.HashPassword(testPassword)
	if err != nil {
		panic(err)
	}
	return h
})

func newEnv(t *testing.T) *env {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	km, err := jwtx.NewEphemeralKeyManager("tripnest-test")
	require.NoError(t, err)

	e := &env{
		store:  st,
		clock:  &clock{t: time.Now().UTC().Truncate(time.Millisecond)},
		mailer: &captureMailer{},
	}
	e.auth = &service.AuthService{Store: st, KeyManager: km, Now: e.clock.Now}
	e.invites = &service.InviteService{
		Store:   st,
		Mailer:  e.mailer,
		BaseURL: "http://web.test",
		Now:     e.clock.Now,
	}

	e.admin = e.addUser(t, "usr_admin", "admin@tripnest.test", identity.RolePlatformAdmin, "")
	e.agencyAdmin = e.addUser(t, "usr_ana", "ana@sunny.travel", identity.RoleAgencyAdmin, "agc_sunny")
	e.staff = e.addUser(t, "usr_pat", "pat@tripnest.test", identity.RolePlatformStaff, "")
	e.customer = e.addUser(t, "usr_cara", "cara@example.com", identity.RoleCustomer, "")
	return e
}

func (e *env) addUser(t *testing.T, id, email string, role identity.Role, agency string) identity.User {
	t.Helper()
	u := identity.User{
		ID: id, Name: "User " + id, Email: email, Role: role,
		Status: identity.StatusActive, AgencyID: agency,
		CreatedAt: e.clock.Now(), UpdatedAt: e.clock.Now(),
	}
	require.NoError(t, e.store.Users().CreateUser(context.Background(),
		domain.Account{User: u, PasswordHash: passwordHash()}))
	return u
}
