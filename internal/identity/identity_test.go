package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "jane@clinic.sg", NormalizeEmail("  Jane@Clinic.SG "))
	require.Equal(t, "", NormalizeEmail("   "))
}

func TestParseRole(t *testing.T) {
	for raw, want := range map[string]Role{
		"user":     RoleUser,
		" Partner": RolePartner,
		"ADMIN":    RoleAdmin,
	} {
		got, ok := ParseRole(raw)
		require.True(t, ok, raw)
		require.Equal(t, want, got)
	}

	for _, raw := range []string{"", "root", "gp"} {
		_, ok := ParseRole(raw)
		require.False(t, ok, raw)
	}
}

func TestDisplayName(t *testing.T) {
	first, last := "Jane", "Tan"
	pname := "Raffles Medical"

	u := Account{Role: RoleUser, Email: "jane@clinic.sg", FirstName: &first, LastName: &last}
	require.Equal(t, "Jane Tan", u.DisplayName())

	p := Account{Role: RolePartner, Email: "gp@clinic.sg", PartnerName: &pname}
	require.Equal(t, "Raffles Medical", p.DisplayName())

	a := Account{Role: RoleAdmin, Email: "ops@clinic.sg"}
	require.Equal(t, "ops@clinic.sg", a.DisplayName())
}

func TestErrorKinds(t *testing.T) {
	conflict := ConflictError{Op: "identity.CreateAccount", Field: "email"}
	require.True(t, IsConflict(conflict))
	require.Contains(t, conflict.Error(), "email")

	notFound := NotFoundError{Op: "identity.GetAccountByID", Resource: "account"}
	require.True(t, IsNotFound(notFound))

	invalid := OpError{Op: "identity.CreateAccount", Kind: ErrInvalidInput, Msg: "email is required"}
	require.True(t, IsInvalidInput(invalid))
	require.False(t, IsConflict(invalid))
}
