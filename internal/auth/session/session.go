// Package session persists the server-side half of login sessions.
//
// A session record stores only a one-way hash of the raw token, never the
// token itself: a storage leak does not yield usable session secrets. The
// token's own encryption layer is the real secret boundary; the hash here is
// an exact-match index key for lookup and revocation.
package session

import (
	"context"
	"crypto/md5" // #nosec G501 -- lookup key only, not a security boundary; see package doc.
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotFound is returned when no record matches a token hash.
var ErrNotFound = errors.New("session: record not found")

// Record marks a token as currently valid. It has no back-reference to the
// account; identity resolution is always token -> decode -> account lookup.
type Record struct {
	ID        string
	TokenHash string
	CreatedAt time.Time
}

// Store is the session persistence boundary.
//
// Records have no TTL: they live until Delete (logout). Revocation is the
// only expiry mechanism.
type Store interface {
	Create(ctx context.Context, now time.Time, tokenHash string) (Record, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (Record, error)
	Delete(ctx context.Context, id string) error
}

// LookupHashHex computes the deterministic digest under which a raw token is
// indexed. MD5 is deliberate and cryptographically weak; it is used purely
// for O(1) exact-match lookup, never for secrecy.
func LookupHashHex(rawToken string) string {
	sum := md5.Sum([]byte(rawToken)) // #nosec G401
	return hex.EncodeToString(sum[:])
}
