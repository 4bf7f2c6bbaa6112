package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"herosg/internal/booking"
	"herosg/internal/directory"
	"herosg/internal/identity"
)

// parsePage reads offset/limit query parameters, clamped to the shared
// pagination window. Unparseable values fall back to defaults rather than
// erroring; listings are forgiving by design.
func parsePage(r *http.Request) identity.Page {
	f := booking.Filter{
		Offset: intParam(r, "offset", 0),
		Limit:  intParam(r, "limit", 0),
	}.Normalize()
	return identity.Page{Offset: f.Offset, Limit: f.Limit}
}

// parseRequestFilter reads the listing parameters shared by the request
// endpoints: status, before, after, offset, limit. An unknown status is
// reported as a validation problem; the rest degrade to defaults.
func parseRequestFilter(r *http.Request) (booking.Filter, map[string]string) {
	f := booking.Filter{
		Offset: intParam(r, "offset", 0),
		Limit:  intParam(r, "limit", 0),
	}

	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		status := booking.Status(strings.ToLower(s))
		if !status.Valid() {
			return booking.Filter{}, map[string]string{"status": "unknown status"}
		}
		f.Status = status
	}

	var fields map[string]string
	for name, dst := range map[string]**time.Time{
		"before": &f.Before,
		"after":  &f.After,
	} {
		raw := strings.TrimSpace(r.URL.Query().Get(name))
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			if fields == nil {
				fields = map[string]string{}
			}
			fields[name] = "must be an RFC 3339 timestamp"
			continue
		}
		*dst = &ts
	}
	if fields != nil {
		return booking.Filter{}, fields
	}

	return f.Normalize(), nil
}

// parseGPFilter reads the public directory filters: available, q (name
// substring), phone (substring).
func parseGPFilter(r *http.Request) directory.Filter {
	f := directory.Filter{
		Name:  r.URL.Query().Get("q"),
		Phone: r.URL.Query().Get("phone"),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("available")); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			f.Available = &b
		}
	}
	return f
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
