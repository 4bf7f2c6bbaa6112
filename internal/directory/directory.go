// Package directory holds the public GP clinic listing: the browsable set of
// practices a user can direct an appointment request at.
package directory

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound reports a GP lookup miss.
var ErrNotFound = errors.New("directory: gp not found")

// GP is a listed clinic. Longitude/Latitude are optional; clinics without
// mapped coordinates still appear in listings.
type GP struct {
	ID        string
	Name      string
	Phone     string
	Available bool
	Longitude *float64
	Latitude  *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateGPInput carries the admin-supplied fields for a new listing.
type CreateGPInput struct {
	Name      string
	Phone     string
	Available bool
	Longitude *float64
	Latitude  *float64
}

// Validate checks the required fields and reports the offending field name.
func (in CreateGPInput) Validate() (string, bool) {
	if strings.TrimSpace(in.Name) == "" {
		return "gpName", false
	}
	if strings.TrimSpace(in.Phone) == "" {
		return "gpContact", false
	}
	if (in.Longitude == nil) != (in.Latitude == nil) {
		return "coordinates", false
	}
	return "", true
}

// Filter narrows a listing. Nil/empty fields match everything; Name and
// Phone are case-insensitive substring matches.
type Filter struct {
	Available *bool
	Name      string
	Phone     string
}

// Store is the persistence surface for GP listings.
type Store interface {
	CreateGP(ctx context.Context, now time.Time, in CreateGPInput) (GP, error)
	GetGPByID(ctx context.Context, id string) (GP, error)
	ListGPs(ctx context.Context, f Filter) ([]GP, error)
}
