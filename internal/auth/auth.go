// Package auth orchestrates credential verification, token issuance and
// token-to-identity resolution for all three account roles.
//
// One Authenticator serves user, partner and admin flows; the role is a
// parameter, not a copy of the code path.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"herosg/internal/auth/session"
	"herosg/internal/identity"
	"herosg/internal/security/password"
	"herosg/internal/security/token"
)

var (
	// ErrAuthenticationFailed is the single outcome for every login failure:
	// malformed input, unknown email, wrong password, unverified user. The
	// caller cannot distinguish which, by design.
	ErrAuthenticationFailed = errors.New("auth: authentication failed")

	// ErrUnauthenticated is the single outcome for every token resolution
	// failure on a protected route.
	ErrUnauthenticated = errors.New("auth: unauthenticated")
)

// Authenticator wires the credential store, token codec and session store
// into the login/resolve/logout pipeline.
type Authenticator struct {
	log      *slog.Logger
	accounts identity.Store
	sessions session.Store
	codec    *token.Codec
}

// NewAuthenticator constructs an Authenticator. The codec carries the two
// process-wide secrets; they are immutable after startup.
func NewAuthenticator(log *slog.Logger, accounts identity.Store, sessions session.Store, codec *token.Codec) *Authenticator {
	if log == nil {
		log = slog.Default()
	}
	return &Authenticator{log: log, accounts: accounts, sessions: sessions, codec: codec}
}

// Login authenticates (email, password) against the role's account
// collection and, on success, issues a session token and records its hash.
//
// Every failure path collapses to ErrAuthenticationFailed; only persistence
// and crypto faults surface as distinct internal errors.
func (a *Authenticator) Login(ctx context.Context, now time.Time, role identity.Role, email, rawPassword string) (identity.Account, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || rawPassword == "" {
		return identity.Account{}, "", ErrAuthenticationFailed
	}

	acct, err := a.accounts.GetAccountAuthByEmail(ctx, role, email)
	if err != nil {
		if identity.IsNotFound(err) {
			return identity.Account{}, "", ErrAuthenticationFailed
		}
		return identity.Account{}, "", err
	}

	if !password.Verify(rawPassword, acct.PasswordHash) {
		return identity.Account{}, "", ErrAuthenticationFailed
	}

	// Users must have confirmed their email; the failure is indistinguishable
	// from bad credentials to prevent account enumeration.
	if role == identity.RoleUser && !acct.Verified {
		return identity.Account{}, "", ErrAuthenticationFailed
	}

	raw, err := a.codec.Encode(token.Payload{
		AccountID: acct.ID,
		Role:      string(role),
		Type:      token.TypeAuthentication,
	})
	if err != nil {
		return identity.Account{}, "", err
	}

	if _, err := a.sessions.Create(ctx, now, session.LookupHashHex(raw)); err != nil {
		return identity.Account{}, "", err
	}

	a.log.Info("auth.login", "role", string(role), "account_id", acct.ID)
	return acct.Account, raw, nil
}

// Resolve maps a raw token from the Auth header to an authenticated account,
// scoped to the expected role. The session record must exist, the envelope
// must verify, the payload role must match, and the account must still exist.
func (a *Authenticator) Resolve(ctx context.Context, role identity.Role, rawToken string) (identity.Account, session.Record, error) {
	rec, err := a.sessions.GetByTokenHash(ctx, session.LookupHashHex(rawToken))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return identity.Account{}, session.Record{}, ErrUnauthenticated
		}
		return identity.Account{}, session.Record{}, err
	}

	p, err := a.codec.Decode(rawToken)
	if err != nil {
		return identity.Account{}, session.Record{}, ErrUnauthenticated
	}
	if p.Type != token.TypeAuthentication || p.Role != string(role) {
		return identity.Account{}, session.Record{}, ErrUnauthenticated
	}

	acct, err := a.accounts.GetAccountByID(ctx, role, p.AccountID)
	if err != nil {
		if identity.IsNotFound(err) {
			return identity.Account{}, session.Record{}, ErrUnauthenticated
		}
		return identity.Account{}, session.Record{}, err
	}

	return acct, rec, nil
}

// Logout deletes the session record backing the presented token. The token
// itself becomes useless immediately: the next lookup by hash misses.
func (a *Authenticator) Logout(ctx context.Context, rec session.Record) error {
	return a.sessions.Delete(ctx, rec.ID)
}

// IssueVerificationToken encodes a one-shot email verification token for an
// account. Verification tokens are not sessions; no record is stored.
func (a *Authenticator) IssueVerificationToken(acct identity.Account) (string, error) {
	return a.codec.Encode(token.Payload{
		AccountID: acct.ID,
		Role:      string(acct.Role),
		Type:      token.TypeVerification,
	})
}

// VerifyEmail decodes a verification token and marks the user verified.
// Any decode failure, wrong token type or missing account yields
// ErrUnauthenticated.
func (a *Authenticator) VerifyEmail(ctx context.Context, rawToken string) (identity.Account, error) {
	p, err := a.codec.Decode(rawToken)
	if err != nil {
		return identity.Account{}, ErrUnauthenticated
	}
	role, ok := identity.ParseRole(p.Role)
	if !ok || p.Type != token.TypeVerification {
		return identity.Account{}, ErrUnauthenticated
	}

	acct, err := a.accounts.MarkVerified(ctx, role, p.AccountID)
	if err != nil {
		if identity.IsNotFound(err) {
			return identity.Account{}, ErrUnauthenticated
		}
		return identity.Account{}, err
	}

	a.log.Info("auth.verify_email", "role", string(role), "account_id", acct.ID)
	return acct, nil
}
