// Package booking models appointment requests: the shared resource users
// raise and GP partners respond to.
package booking

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports a request lookup miss (including scoped lookups
	// where the row exists but belongs to someone else).
	ErrNotFound = errors.New("booking: request not found")

	// ErrClosed reports an update against a completed/cancelled request.
	ErrClosed = errors.New("booking: request no longer open")
)

// Request is one appointment request. PartnerID is nil until the user picks
// a GP; AppointmentTime is nil until one side proposes a slot.
type Request struct {
	ID              string
	UserID          string
	PartnerID       *string
	Description     string
	GPResponse      *string
	Status          Status
	AppointmentTime *time.Time
	LastUpdater     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateRequestInput carries the user-supplied fields for a new request.
// Status always starts at processing; the caller cannot choose it.
type CreateRequestInput struct {
	UserID          string
	PartnerID       *string
	Description     string
	AppointmentTime *time.Time
}

// Update is a partial patch. Nil fields are left untouched. LastUpdater is
// required and records which side made the change.
type Update struct {
	PartnerID       *string
	Description     *string
	GPResponse      *string
	Status          *Status
	AppointmentTime *time.Time
	LastUpdater     string
}

// Empty reports whether the patch changes nothing.
func (u Update) Empty() bool {
	return u.PartnerID == nil && u.Description == nil && u.GPResponse == nil &&
		u.Status == nil && u.AppointmentTime == nil
}

// Pagination bounds for request listings.
const (
	DefaultLimit = 5
	MaxLimit     = 30
)

// Filter narrows and pages a request listing. Zero-valued fields match
// everything. Before/After bound CreatedAt.
type Filter struct {
	UserID    string
	PartnerID string
	Status    Status
	Before    *time.Time
	After     *time.Time
	Offset    int
	Limit     int
}

// Normalize clamps pagination into the supported window.
func (f Filter) Normalize() Filter {
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

// Store is the persistence surface for requests.
type Store interface {
	CreateRequest(ctx context.Context, now time.Time, in CreateRequestInput) (Request, error)
	// GetRequestByID loads one request. A non-empty userID or partnerID
	// scopes the lookup to that owner; rows outside the scope read as
	// ErrNotFound.
	GetRequestByID(ctx context.Context, id, userID, partnerID string) (Request, error)
	ListRequests(ctx context.Context, f Filter) ([]Request, int, error)
	// UpdateRequest applies a patch to an open request. Closed requests
	// yield ErrClosed; the status-transition policy is the caller's job.
	UpdateRequest(ctx context.Context, now time.Time, id string, u Update) (Request, error)
}
