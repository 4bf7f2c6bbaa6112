package identity

import "strings"

// Role identifies which account collection an identity belongs to.
// It is embedded in session tokens and scopes every account lookup.
type Role string

const (
	RoleUser    Role = "user"
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role tag.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RolePartner, RoleAdmin:
		return true
	}
	return false
}

// ParseRole parses a role tag, e.g. from a decoded token payload.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}
