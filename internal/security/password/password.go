// Package password implements credential hashing for herosg accounts.
//
// Hashes are bcrypt strings; the salt is embedded in the encoded hash, so a
// single column stores everything verification needs. The raw password is
// never persisted anywhere.
package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinCost is the minimum bcrypt work factor accepted for new hashes.
const MinCost = 10

// ErrUnhashable is returned when bcrypt cannot process the input
// (e.g. passwords longer than 72 bytes).
var ErrUnhashable = errors.New("password: unhashable input")

// Hash derives a salted bcrypt hash with the default work factor.
func Hash(raw string) (string, error) {
	return HashWithCost(raw, MinCost)
}

// HashWithCost derives a salted bcrypt hash with an explicit work factor.
// Costs below MinCost are raised to MinCost.
func HashWithCost(raw string, cost int) (string, error) {
	if cost < MinCost {
		cost = MinCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", ErrUnhashable
	}
	return string(b), nil
}

// Verify reports whether raw matches the stored bcrypt hash.
//
// A malformed or empty stored hash verifies false, never panics and never
// returns an error: callers treat every mismatch the same way.
func Verify(raw, storedHash string) bool {
	if strings.TrimSpace(storedHash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(raw)) == nil
}
