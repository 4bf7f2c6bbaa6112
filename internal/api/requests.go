package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"herosg/internal/booking"
	"herosg/internal/identity"
	"herosg/internal/mailer"
)

// ---- user side ----

// handleUserHistory serves GET /history: the caller's own requests.
func (h *Handler) handleUserHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	f, fields := parseRequestFilter(r)
	if fields != nil {
		writeValidationError(w, fields)
		return
	}
	f.UserID = p.Account.ID

	h.writeRequestList(w, r, f)
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req createRequestRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeValidationError(w, map[string]string{"description": "is required"})
		return
	}

	created, err := h.requests.CreateRequest(r.Context(), h.now(), booking.CreateRequestInput{
		UserID:          p.Account.ID,
		PartnerID:       trimPtr(req.PartnerID),
		Description:     strings.TrimSpace(req.Description),
		AppointmentTime: req.AppointmentTime,
	})
	if err != nil {
		h.log.Error("api.requests.create.fail", "err", err, "user_id", p.Account.ID)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestResponse(created))
}

func (h *Handler) handleGetUserRequest(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	h.writeScopedRequest(w, r, p.Account.ID, "")
}

func (h *Handler) handlePatchUserRequest(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req patchRequestRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	u := booking.Update{
		PartnerID:       trimPtr(req.PartnerID),
		Description:     req.Description,
		AppointmentTime: req.AppointmentTime,
		LastUpdater:     booking.UpdaterUser,
	}
	if req.Status != nil {
		status := booking.Status(strings.ToLower(strings.TrimSpace(*req.Status)))
		if !status.Valid() || !booking.UserMaySet(status) {
			writeValidationError(w, map[string]string{"status": "not allowed"})
			return
		}
		u.Status = &status
	}
	if req.GPResponse != nil {
		// The GP response column belongs to the partner side.
		writeValidationError(w, map[string]string{"gpResponse": "not allowed"})
		return
	}

	h.applyRequestPatch(w, r, u, p.Account.ID, "")
}

// ---- partner side ----

// handlePartnerRequests serves GET /partners/requests: requests directed at
// the calling partner.
func (h *Handler) handlePartnerRequests(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	f, fields := parseRequestFilter(r)
	if fields != nil {
		writeValidationError(w, fields)
		return
	}
	f.PartnerID = p.Account.ID

	h.writeRequestList(w, r, f)
}

func (h *Handler) handleGetPartnerRequest(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	h.writeScopedRequest(w, r, "", p.Account.ID)
}

func (h *Handler) handlePatchPartnerRequest(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req patchRequestRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.Description != nil {
		writeValidationError(w, map[string]string{"description": "not allowed"})
		return
	}
	if req.PartnerID != nil {
		writeValidationError(w, map[string]string{"partnerId": "not allowed"})
		return
	}

	u := booking.Update{
		GPResponse:      req.GPResponse,
		AppointmentTime: req.AppointmentTime,
		LastUpdater:     booking.UpdaterPartner,
	}
	if req.Status != nil {
		status := booking.Status(strings.ToLower(strings.TrimSpace(*req.Status)))
		if !status.Valid() || !booking.PartnerMaySet(status) {
			writeValidationError(w, map[string]string{"status": "not allowed"})
			return
		}
		u.Status = &status
	}

	h.applyRequestPatch(w, r, u, "", p.Account.ID)
}

// ---- admin side ----

// handleAdminRequests serves GET /admins/requests: unscoped listing.
func (h *Handler) handleAdminRequests(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}
	f, fields := parseRequestFilter(r)
	if fields != nil {
		writeValidationError(w, fields)
		return
	}
	h.writeRequestList(w, r, f)
}

// ---- shared plumbing ----

func (h *Handler) writeRequestList(w http.ResponseWriter, r *http.Request, f booking.Filter) {
	reqs, total, err := h.requests.ListRequests(r.Context(), f)
	if err != nil {
		h.log.Error("api.requests.list.fail", "err", err)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(f.Offset, f.Limit, total, reqs, toRequestResponse))
}

func (h *Handler) writeScopedRequest(w http.ResponseWriter, r *http.Request, userID, partnerID string) {
	req, err := h.requests.GetRequestByID(r.Context(), chi.URLParam(r, "id"), userID, partnerID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			writeNotFound(w)
			return
		}
		h.log.Error("api.requests.get.fail", "err", err)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, toRequestResponse(req))
}

// applyRequestPatch verifies ownership, applies the patch, and notifies the
// other side.
func (h *Handler) applyRequestPatch(w http.ResponseWriter, r *http.Request, u booking.Update, userID, partnerID string) {
	if u.Empty() {
		writeValidationError(w, map[string]string{"body": "no changes given"})
		return
	}

	id := chi.URLParam(r, "id")

	// Scoped read first so a foreign request reads as missing, not frozen.
	if _, err := h.requests.GetRequestByID(r.Context(), id, userID, partnerID); err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			writeNotFound(w)
			return
		}
		h.log.Error("api.requests.patch.load.fail", "err", err)
		writeInternalError(w)
		return
	}

	updated, err := h.requests.UpdateRequest(r.Context(), h.now(), id, u)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNotFound):
			writeNotFound(w)
		case errors.Is(err, booking.ErrClosed):
			writeValidationError(w, map[string]string{"status": "request no longer open"})
		default:
			h.log.Error("api.requests.patch.fail", "err", err)
			writeInternalError(w)
		}
		return
	}

	h.notifyRequestUpdated(r.Context(), updated)
	writeJSON(w, http.StatusOK, toRequestResponse(updated))
}

// notifyRequestUpdated emails both parties about the change. Best-effort:
// failures are logged and never affect the response.
func (h *Handler) notifyRequestUpdated(ctx context.Context, req booking.Request) {
	in := mailer.RequestUpdateInput{
		RequestID: req.ID,
		Updater:   req.LastUpdater,
		Status:    string(req.Status),
	}

	h.notifyAccount(ctx, identity.RoleUser, req.UserID, in)
	if req.PartnerID != nil {
		h.notifyAccount(ctx, identity.RolePartner, *req.PartnerID, in)
	}
}

func (h *Handler) notifyAccount(ctx context.Context, role identity.Role, id string, in mailer.RequestUpdateInput) {
	acct, err := h.accounts.GetAccountByID(ctx, role, id)
	if err != nil {
		h.log.Error("api.requests.notify.lookup.fail", "err", err, "account_id", id)
		return
	}
	if err := h.mailer.Send(ctx, mailer.RequestUpdateMessage(acct.Email, in)); err != nil {
		h.log.Error("api.requests.notify.send.fail", "err", err, "account_id", id)
	}
}
