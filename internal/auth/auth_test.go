package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"herosg/internal/auth/session"
	"herosg/internal/identity"
	"herosg/internal/security/password"
	"herosg/internal/security/token"
)

// ---- in-memory fakes ----

type memAccounts struct {
	byID    map[string]identity.AccountAuth
	lookups int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[string]identity.AccountAuth{}}
}

func (m *memAccounts) add(acct identity.AccountAuth) {
	m.byID[string(acct.Role)+"/"+acct.ID] = acct
}

func (m *memAccounts) CreateAccount(_ context.Context, in identity.CreateAccountInput) (identity.Account, error) {
	acct := identity.Account{
		ID:    "acct-" + in.Email,
		Role:  in.Role,
		Email: identity.NormalizeEmail(in.Email),
	}
	m.add(identity.AccountAuth{Account: acct, PasswordHash: in.PasswordHash})
	return acct, nil
}

func (m *memAccounts) GetAccountByID(_ context.Context, role identity.Role, id string) (identity.Account, error) {
	a, ok := m.byID[string(role)+"/"+id]
	if !ok {
		return identity.Account{}, identity.NotFoundError{Op: "mem.GetAccountByID", Resource: "account"}
	}
	return a.Account, nil
}

func (m *memAccounts) GetAccountAuthByEmail(_ context.Context, role identity.Role, email string) (identity.AccountAuth, error) {
	m.lookups++
	norm := identity.NormalizeEmail(email)
	for _, a := range m.byID {
		if a.Role == role && identity.NormalizeEmail(a.Email) == norm {
			return a, nil
		}
	}
	return identity.AccountAuth{}, identity.NotFoundError{Op: "mem.GetAccountAuthByEmail", Resource: "account"}
}

func (m *memAccounts) MarkVerified(ctx context.Context, role identity.Role, id string) (identity.Account, error) {
	a, ok := m.byID[string(role)+"/"+id]
	if !ok {
		return identity.Account{}, identity.NotFoundError{Op: "mem.MarkVerified", Resource: "account"}
	}
	a.Verified = true
	m.byID[string(role)+"/"+id] = a
	return a.Account, nil
}

func (m *memAccounts) ListAccounts(context.Context, identity.Role, identity.Page) ([]identity.Account, int, error) {
	return nil, 0, nil
}

type memSessions struct {
	byHash map[string]session.Record
	seq    int
}

func newMemSessions() *memSessions {
	return &memSessions{byHash: map[string]session.Record{}}
}

func (m *memSessions) Create(_ context.Context, now time.Time, tokenHash string) (session.Record, error) {
	m.seq++
	rec := session.Record{ID: string(rune('a' + m.seq)), TokenHash: tokenHash, CreatedAt: now}
	m.byHash[tokenHash] = rec
	return rec, nil
}

func (m *memSessions) GetByTokenHash(_ context.Context, tokenHash string) (session.Record, error) {
	rec, ok := m.byHash[tokenHash]
	if !ok {
		return session.Record{}, session.ErrNotFound
	}
	return rec, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	for h, rec := range m.byHash {
		if rec.ID == id {
			delete(m.byHash, h)
		}
	}
	return nil
}

// ---- helpers ----

func newTestAuthenticator(t *testing.T) (*Authenticator, *memAccounts, *memSessions) {
	t.Helper()
	codec, err := token.NewCodec("enc-secret", "sign-secret")
	require.NoError(t, err)

	accounts := newMemAccounts()
	sessions := newMemSessions()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthenticator(log, accounts, sessions, codec), accounts, sessions
}

func seedAccount(t *testing.T, accounts *memAccounts, role identity.Role, email, pw string, verified bool) identity.Account {
	t.Helper()
	hash, err := password.Hash(pw)
	require.NoError(t, err)

	acct := identity.Account{
		ID:       "id-" + email,
		Role:     role,
		Email:    identity.NormalizeEmail(email),
		Verified: verified,
	}
	accounts.add(identity.AccountAuth{Account: acct, PasswordHash: hash})
	return acct
}

var now = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// ---- tests ----

func TestLoginEmptyInputSkipsStore(t *testing.T) {
	a, accounts, sessions := newTestAuthenticator(t)

	for _, tc := range []struct{ email, pw string }{
		{"", "secretpw"},
		{"jane@clinic.sg", ""},
		{"   ", "secretpw"},
	} {
		_, _, err := a.Login(context.Background(), now, identity.RoleUser, tc.email, tc.pw)
		require.ErrorIs(t, err, ErrAuthenticationFailed)
	}
	require.Zero(t, accounts.lookups, "malformed input must not reach the store")
	require.Empty(t, sessions.byHash)
}

func TestLoginUnknownEmail(t *testing.T) {
	a, _, sessions := newTestAuthenticator(t)

	_, _, err := a.Login(context.Background(), now, identity.RoleUser, "nobody@clinic.sg", "secretpw")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
	require.Empty(t, sessions.byHash)
}

func TestLoginWrongPassword(t *testing.T) {
	a, accounts, sessions := newTestAuthenticator(t)
	seedAccount(t, accounts, identity.RoleUser, "jane@clinic.sg", "secretpw", true)

	_, _, err := a.Login(context.Background(), now, identity.RoleUser, "jane@clinic.sg", "wrongpw")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
	require.Empty(t, sessions.byHash, "no session record on failed login")
}

func TestLoginUnverifiedUser(t *testing.T) {
	a, accounts, _ := newTestAuthenticator(t)
	seedAccount(t, accounts, identity.RoleUser, "jane@clinic.sg", "secretpw", false)

	_, _, err := a.Login(context.Background(), now, identity.RoleUser, "jane@clinic.sg", "secretpw")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestLoginUnverifiedPartnerSucceeds(t *testing.T) {
	a, accounts, _ := newTestAuthenticator(t)
	seedAccount(t, accounts, identity.RolePartner, "gp@clinic.sg", "secretpw", false)

	_, raw, err := a.Login(context.Background(), now, identity.RolePartner, "gp@clinic.sg", "secretpw")
	require.NoError(t, err)
	require.NotEmpty(t, raw)
}

func TestLoginIssuesSessionAndResolves(t *testing.T) {
	a, accounts, sessions := newTestAuthenticator(t)
	seeded := seedAccount(t, accounts, identity.RoleUser, "Jane@Clinic.SG", "secretpw", true)

	acct, raw, err := a.Login(context.Background(), now, identity.RoleUser, "jane@clinic.sg", "secretpw")
	require.NoError(t, err)
	require.Equal(t, seeded.ID, acct.ID)
	require.NotEmpty(t, raw)

	require.Len(t, sessions.byHash, 1)
	_, ok := sessions.byHash[session.LookupHashHex(raw)]
	require.True(t, ok, "stored hash must match the issued token")

	resolved, rec, err := a.Resolve(context.Background(), identity.RoleUser, raw)
	require.NoError(t, err)
	require.Equal(t, seeded.ID, resolved.ID)
	require.Equal(t, session.LookupHashHex(raw), rec.TokenHash)
}

func TestResolveRejectsCrossRoleToken(t *testing.T) {
	a, accounts, _ := newTestAuthenticator(t)
	seedAccount(t, accounts, identity.RoleUser, "jane@clinic.sg", "secretpw", true)

	_, raw, err := a.Login(context.Background(), now, identity.RoleUser, "jane@clinic.sg", "secretpw")
	require.NoError(t, err)

	// A well-formed user token presented to partner-scoped resolution.
	_, _, err = a.Resolve(context.Background(), identity.RolePartner, raw)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveAfterLogout(t *testing.T) {
	a, accounts, _ := newTestAuthenticator(t)
	seedAccount(t, accounts, identity.RoleUser, "jane@clinic.sg", "secretpw", true)

	_, raw, err := a.Login(context.Background(), now, identity.RoleUser, "jane@clinic.sg", "secretpw")
	require.NoError(t, err)

	_, rec, err := a.Resolve(context.Background(), identity.RoleUser, raw)
	require.NoError(t, err)

	require.NoError(t, a.Logout(context.Background(), rec))

	_, _, err = a.Resolve(context.Background(), identity.RoleUser, raw)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveMissingToken(t *testing.T) {
	a, _, _ := newTestAuthenticator(t)

	_, _, err := a.Resolve(context.Background(), identity.RoleUser, "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestVerificationTokenIsNotASession(t *testing.T) {
	a, accounts, _ := newTestAuthenticator(t)
	acct := seedAccount(t, accounts, identity.RoleUser, "jane@clinic.sg", "secretpw", false)

	raw, err := a.IssueVerificationToken(acct)
	require.NoError(t, err)

	// Verification tokens never authenticate requests.
	_, _, err = a.Resolve(context.Background(), identity.RoleUser, raw)
	require.ErrorIs(t, err, ErrUnauthenticated)

	verified, err := a.VerifyEmail(context.Background(), raw)
	require.NoError(t, err)
	require.True(t, verified.Verified || verified.ID == acct.ID)

	// Login works once verified.
	_, _, err = a.Login(context.Background(), now, identity.RoleUser, "jane@clinic.sg", "secretpw")
	require.NoError(t, err)
}

func TestVerifyEmailRejectsGarbage(t *testing.T) {
	a, _, _ := newTestAuthenticator(t)
	_, err := a.VerifyEmail(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrUnauthenticated)
}
