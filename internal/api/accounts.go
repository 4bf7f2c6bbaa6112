package api

import (
	"errors"
	"net/http"
	"strings"

	"herosg/internal/auth"
	"herosg/internal/identity"
	"herosg/internal/mailer"
	"herosg/internal/security/password"
)

func (h *Handler) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if fields := validateCredentials(req.Email, req.Password); fields != nil {
		writeValidationError(w, fields)
		return
	}

	acct, ok := h.createAccount(w, r, identity.CreateAccountInput{
		Role:      identity.RoleUser,
		Email:     req.Email,
		FirstName: trimPtr(req.FirstName),
		LastName:  trimPtr(req.LastName),
		Phone:     trimPtr(req.Phone),
	}, req.Password)
	if !ok {
		return
	}

	h.sendVerificationEmail(r, acct)
	writeJSON(w, http.StatusCreated, toUserResponse(acct))
}

func (h *Handler) handleRegisterPartner(w http.ResponseWriter, r *http.Request) {
	var req registerPartnerRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	fields := mergeFields(
		validateCredentials(req.Email, req.Password),
		requireFields(map[string]string{
			"partnerName": req.PartnerName,
			"address":     req.Address,
			"phone":       req.Phone,
		}),
	)
	if fields != nil {
		writeValidationError(w, fields)
		return
	}

	acct, ok := h.createAccount(w, r, identity.CreateAccountInput{
		Role:        identity.RolePartner,
		Email:       req.Email,
		PartnerName: trimPtr(&req.PartnerName),
		Address:     trimPtr(&req.Address),
		Phone:       trimPtr(&req.Phone),
	}, req.Password)
	if !ok {
		return
	}

	writeJSON(w, http.StatusCreated, toPartnerResponse(acct))
}

func (h *Handler) handleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req registerAdminRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if fields := validateCredentials(req.Email, req.Password); fields != nil {
		writeValidationError(w, fields)
		return
	}

	acct, ok := h.createAccount(w, r, identity.CreateAccountInput{
		Role:  identity.RoleAdmin,
		Email: req.Email,
	}, req.Password)
	if !ok {
		return
	}

	writeJSON(w, http.StatusCreated, toAdminResponse(acct))
}

// createAccount hashes the raw password and inserts the account, translating
// store failures into HTTP responses. Returns ok=false once a response has
// been written.
func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request, in identity.CreateAccountInput, rawPassword string) (identity.Account, bool) {
	hash, err := password.Hash(rawPassword)
	if err != nil {
		writeValidationError(w, map[string]string{"password": "cannot be hashed"})
		return identity.Account{}, false
	}
	in.PasswordHash = hash
	in.Now = h.now()

	acct, err := h.accounts.CreateAccount(r.Context(), in)
	if err != nil {
		var conflict identity.ConflictError
		switch {
		case errors.As(err, &conflict):
			field := conflict.Field
			if field == "" {
				field = "email"
			}
			writeValidationError(w, map[string]string{field: "already in use"})
		case identity.IsInvalidInput(err):
			writeValidationError(w, map[string]string{"email": "is required"})
		default:
			h.log.Error("api.register.fail", "err", err, "role", string(in.Role))
			writeInternalError(w)
		}
		return identity.Account{}, false
	}
	return acct, true
}

// sendVerificationEmail issues a verification token and mails the link.
// Best-effort: a delivery failure is logged, not surfaced; the account
// exists either way.
func (h *Handler) sendVerificationEmail(r *http.Request, acct identity.Account) {
	raw, err := h.auth.IssueVerificationToken(acct)
	if err != nil {
		h.log.Error("api.verify_email.token.fail", "err", err, "account_id", acct.ID)
		return
	}
	msg := mailer.VerificationMessage(acct.Email, h.verifyBaseURL(r), raw)
	if err := h.mailer.Send(r.Context(), msg); err != nil {
		h.log.Error("api.verify_email.send.fail", "err", err, "account_id", acct.ID)
	}
}

func (h *Handler) verifyBaseURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// handleLogin serves POST /users/login, /partners/login and /admins/login.
// The raw session token travels back in the Auth response header, never in
// the body.
func (h *Handler) handleLogin(role identity.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
			return
		}

		acct, raw, err := h.auth.Login(r.Context(), h.now(), role, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrAuthenticationFailed) {
				writeAuthenticationFailed(w)
				return
			}
			h.log.Error("api.login.fail", "err", err, "role", string(role))
			writeInternalError(w)
			return
		}

		w.Header().Set(auth.HeaderAuth, raw)
		switch role {
		case identity.RolePartner:
			writeJSON(w, http.StatusOK, toPartnerResponse(acct))
		case identity.RoleAdmin:
			writeJSON(w, http.StatusOK, toAdminResponse(acct))
		default:
			writeJSON(w, http.StatusOK, toUserResponse(acct))
		}
	}
}

// handleLogout serves DELETE /{role}/login for whichever role group mounted
// it; the principal already carries the session to revoke.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.auth.Logout(r.Context(), p.Session); err != nil {
		h.log.Error("api.logout.fail", "err", err, "account_id", p.Account.ID)
		writeInternalError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(p.Account))
}

// handleVerifyEmail serves GET /verify?token=... from the emailed link.
func (h *Handler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("token"))
	if raw == "" {
		writeValidationError(w, map[string]string{"token": "is required"})
		return
	}

	acct, err := h.auth.VerifyEmail(r.Context(), raw)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			writeError(w, http.StatusUnauthorized, "invalid_token", "invalid verification token")
			return
		}
		h.log.Error("api.verify_email.fail", "err", err)
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(acct))
}

// handleAdminListAccounts serves GET /admins/users and /admins/partners.
func (h *Handler) handleAdminListAccounts(role identity.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.principal(w, r); !ok {
			return
		}
		page := parsePage(r)

		accts, total, err := h.accounts.ListAccounts(r.Context(), role, page)
		if err != nil {
			h.log.Error("api.admin.list_accounts.fail", "err", err, "role", string(role))
			writeInternalError(w)
			return
		}

		if role == identity.RolePartner {
			writeJSON(w, http.StatusOK, toListResponse(page.Offset, page.Limit, total, accts, toPartnerResponse))
			return
		}
		writeJSON(w, http.StatusOK, toListResponse(page.Offset, page.Limit, total, accts, toUserResponse))
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
