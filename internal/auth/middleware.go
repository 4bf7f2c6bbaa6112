package auth

import (
	"context"
	"errors"
	"net/http"

	"herosg/internal/auth/session"
	"herosg/internal/identity"
)

// HeaderAuth is the custom header carrying the raw session token on both
// requests and login responses.
const HeaderAuth = "Auth"

// Principal is the resolved identity attached to an authenticated request.
type Principal struct {
	Account identity.Account
	Session session.Record
}

type ctxKey struct{}

// WithPrincipal returns a context carrying the resolved principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFrom extracts the principal attached by Require.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// Require returns middleware that admits only requests carrying a valid
// session token minted for the given role. One implementation serves all
// three roles; the role tag is the only variable.
//
// An absent Auth header is treated as an empty token and rejected like any
// other unresolvable one.
func Require(a *Authenticator, role identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(HeaderAuth)

			acct, rec, err := a.Resolve(r.Context(), role, raw)
			if err != nil {
				if !errors.Is(err, ErrUnauthenticated) {
					a.log.Error("auth.resolve.fail", "err", err, "role", string(role))
				}
				writeUnauthenticated(w)
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{Account: acct, Session: rec})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"unauthenticated","message":"valid session token required"}}` + "\n"))
}
