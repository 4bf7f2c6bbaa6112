// Package api exposes the HTTP surface: registration, login, the GP
// directory, and the appointment request workflows for all three roles.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"herosg/internal/auth"
	"herosg/internal/booking"
	"herosg/internal/directory"
	"herosg/internal/identity"
	"herosg/internal/mailer"
)

const defaultMaxBodyBytes = 1 << 20 // 1 MiB

// Handler wires the HTTP endpoints to the domain services.
type Handler struct {
	log      *slog.Logger
	accounts identity.Store
	gps      directory.Store
	requests booking.Store
	auth     *auth.Authenticator

	mailer       mailer.Mailer
	baseURL      string
	maxBodyBytes int64
	now          func() time.Time
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handler)

// WithMailer overrides the default no-op mailer.
func WithMailer(m mailer.Mailer, baseURL string) HandlerOption {
	return func(h *Handler) {
		if m == nil {
			return
		}
		h.mailer = m
		h.baseURL = baseURL
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandler constructs the API handler.
func NewHandler(log *slog.Logger, accounts identity.Store, gps directory.Store, requests booking.Store, a *auth.Authenticator, opts ...HandlerOption) *Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		log:          log,
		accounts:     accounts,
		gps:          gps,
		requests:     requests,
		auth:         a,
		mailer:       mailer.Noop{},
		maxBodyBytes: defaultMaxBodyBytes,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes mounts every endpoint onto the router. Role scoping is a route
// group with the matching Require middleware; handlers inside a group can
// assume a resolved principal.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleRoot)

	r.Get("/gps", h.handleListGPs)
	r.Get("/gps/{id}", h.handleGetGP)

	r.Post("/users", h.handleRegisterUser)
	r.Post("/users/login", h.handleLogin(identity.RoleUser))
	r.Get("/verify", h.handleVerifyEmail)

	r.Post("/partners", h.handleRegisterPartner)
	r.Post("/partners/login", h.handleLogin(identity.RolePartner))

	r.Post("/admins", h.handleRegisterAdmin)
	r.Post("/admins/login", h.handleLogin(identity.RoleAdmin))

	r.Group(func(r chi.Router) {
		r.Use(auth.Require(h.auth, identity.RoleUser))
		r.Get("/users/me", h.handleMe)
		r.Delete("/users/login", h.handleLogout)
		r.Get("/history", h.handleUserHistory)
		r.Post("/requests", h.handleCreateRequest)
		r.Get("/requests/{id}", h.handleGetUserRequest)
		r.Patch("/requests/{id}", h.handlePatchUserRequest)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Require(h.auth, identity.RolePartner))
		r.Delete("/partners/login", h.handleLogout)
		r.Get("/partners/requests", h.handlePartnerRequests)
		r.Get("/partners/requests/{id}", h.handleGetPartnerRequest)
		r.Patch("/partners/requests/{id}", h.handlePatchPartnerRequest)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Require(h.auth, identity.RoleAdmin))
		r.Delete("/admins/login", h.handleLogout)
		r.Get("/admins/requests", h.handleAdminRequests)
		r.Get("/admins/users", h.handleAdminListAccounts(identity.RoleUser))
		r.Get("/admins/partners", h.handleAdminListAccounts(identity.RolePartner))
		r.Post("/admins/gps", h.handleCreateGP)
	})
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"service": "herosg"})
}

// principal returns the identity attached by the Require middleware. A miss
// means a route was mounted outside its group; treat it as a server bug.
func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		h.log.Error("api.principal.missing", "path", r.URL.Path)
		writeInternalError(w)
	}
	return p, ok
}
