package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"herosg/internal/directory"
)

// handleListGPs serves the public clinic directory with optional
// available/q/phone filters.
func (h *Handler) handleListGPs(w http.ResponseWriter, r *http.Request) {
	gps, err := h.gps.ListGPs(r.Context(), parseGPFilter(r))
	if err != nil {
		h.log.Error("api.gps.list.fail", "err", err)
		writeInternalError(w)
		return
	}

	items := make([]gpResponse, 0, len(gps))
	for _, gp := range gps {
		items = append(items, toGPResponse(gp))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleGetGP(w http.ResponseWriter, r *http.Request) {
	gp, err := h.gps.GetGPByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			writeNotFound(w)
			return
		}
		h.log.Error("api.gps.get.fail", "err", err)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, toGPResponse(gp))
}

// handleCreateGP serves POST /admins/gps.
func (h *Handler) handleCreateGP(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(w, r); !ok {
		return
	}

	var req createGPRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	in := directory.CreateGPInput{
		Name:      req.GPName,
		Phone:     req.GPContact,
		Available: true,
		Longitude: req.Longitude,
		Latitude:  req.Latitude,
	}
	if req.Available != nil {
		in.Available = *req.Available
	}
	if field, ok := in.Validate(); !ok {
		writeValidationError(w, map[string]string{field: "is invalid"})
		return
	}

	gp, err := h.gps.CreateGP(r.Context(), h.now(), in)
	if err != nil {
		h.log.Error("api.gps.create.fail", "err", err)
		writeInternalError(w)
		return
	}
	writeJSON(w, http.StatusCreated, toGPResponse(gp))
}
