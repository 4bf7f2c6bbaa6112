package api

import (
	"regexp"
	"strings"
)

// emailPattern is deliberately loose: one @, no spaces, a dot in the domain.
// The unique index is the real arbiter of account identity.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	passwordMinLen = 7
	passwordMaxLen = 100
)

// validateCredentials checks the shared email/password shape for all three
// registration forms and returns field-level problems.
func validateCredentials(email, password string) map[string]string {
	fields := map[string]string{}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		fields["email"] = "must be a valid email address"
	}
	if n := len(password); n < passwordMinLen || n > passwordMaxLen {
		fields["password"] = "must be between 7 and 100 characters"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// requireFields flags each named field whose value is blank.
func requireFields(pairs map[string]string) map[string]string {
	var fields map[string]string
	for name, value := range pairs {
		if strings.TrimSpace(value) == "" {
			if fields == nil {
				fields = map[string]string{}
			}
			fields[name] = "is required"
		}
	}
	return fields
}

func mergeFields(a, b map[string]string) map[string]string {
	if len(a) == 0 {
		return b
	}
	for k, v := range b {
		a[k] = v
	}
	return a
}
