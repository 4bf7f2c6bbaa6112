package identity

import (
	"context"
	"time"
)

// Account is a herosg security principal of any role.
//
// PasswordHash and the embedded salt never leave this package through any
// public projection; handlers build responses from the exported profile
// fields only.
type Account struct {
	ID    string
	Role  Role
	Email string

	// Verified means "email confirmed" for users and "vetted by an
	// administrator" for partners. Admins are implicitly verified.
	Verified bool

	// User profile.
	FirstName *string
	LastName  *string

	// Partner profile.
	PartnerName *string
	Address     *string

	// Shared optional contact field.
	Phone *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName is the human name recorded as a request's last updater.
func (a Account) DisplayName() string {
	switch a.Role {
	case RoleUser:
		first, last := deref(a.FirstName), deref(a.LastName)
		switch {
		case first != "" && last != "":
			return first + " " + last
		case first != "":
			return first
		case last != "":
			return last
		}
	case RolePartner:
		if name := deref(a.PartnerName); name != "" {
			return name
		}
	}
	return a.Email
}

// AccountAuth couples an account with its credential material for login.
type AccountAuth struct {
	Account
	PasswordHash string
}

// CreateAccountInput describes a registration request. PasswordHash must
// already be derived; stores never see raw passwords.
type CreateAccountInput struct {
	Role         Role
	Email        string
	PasswordHash string

	FirstName   *string
	LastName    *string
	PartnerName *string
	Address     *string
	Phone       *string

	Now time.Time
}

// Page bounds a listing.
type Page struct {
	Offset int
	Limit  int
}

// Store is the account persistence boundary. Every lookup is scoped to a
// role: a user token can never resolve a partner row and vice versa.
type Store interface {
	CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error)
	GetAccountByID(ctx context.Context, role Role, id string) (Account, error)
	GetAccountAuthByEmail(ctx context.Context, role Role, email string) (AccountAuth, error)

	// MarkVerified flips the verified flag (idempotent).
	MarkVerified(ctx context.Context, role Role, id string) (Account, error)

	// ListAccounts returns one page plus the total count for the role.
	ListAccounts(ctx context.Context, role Role, page Page) ([]Account, int, error)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
