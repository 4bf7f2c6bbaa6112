package api

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"herosg/internal/auth/session"
	"herosg/internal/booking"
	"herosg/internal/directory"
	"herosg/internal/identity"
	"herosg/internal/mailer"
)

// In-memory stores backing the handler tests. They mirror the Postgres
// stores' contracts (role scoping, conflicts, pagination) without a database.

type fakeAccounts struct {
	mu   sync.Mutex
	seq  int
	rows []identity.AccountAuth
}

func (f *fakeAccounts) CreateAccount(_ context.Context, in identity.CreateAccountInput) (identity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	norm := identity.NormalizeEmail(in.Email)
	for _, row := range f.rows {
		if row.Role == in.Role && identity.NormalizeEmail(row.Email) == norm {
			return identity.Account{}, identity.ConflictError{Op: "fake.CreateAccount", Field: "email"}
		}
	}

	f.seq++
	acct := identity.Account{
		ID:          fmt.Sprintf("acct-%d", f.seq),
		Role:        in.Role,
		Email:       norm,
		Verified:    in.Role == identity.RoleAdmin,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PartnerName: in.PartnerName,
		Address:     in.Address,
		Phone:       in.Phone,
		CreatedAt:   in.Now,
		UpdatedAt:   in.Now,
	}
	f.rows = append(f.rows, identity.AccountAuth{Account: acct, PasswordHash: in.PasswordHash})
	return acct, nil
}

func (f *fakeAccounts) GetAccountByID(_ context.Context, role identity.Role, id string) (identity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Role == role && row.ID == id {
			return row.Account, nil
		}
	}
	return identity.Account{}, identity.NotFoundError{Op: "fake.GetAccountByID", Resource: "account"}
}

func (f *fakeAccounts) GetAccountAuthByEmail(_ context.Context, role identity.Role, email string) (identity.AccountAuth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	norm := identity.NormalizeEmail(email)
	for _, row := range f.rows {
		if row.Role == role && identity.NormalizeEmail(row.Email) == norm {
			return row, nil
		}
	}
	return identity.AccountAuth{}, identity.NotFoundError{Op: "fake.GetAccountAuthByEmail", Resource: "account"}
}

func (f *fakeAccounts) MarkVerified(_ context.Context, role identity.Role, id string) (identity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, row := range f.rows {
		if row.Role == role && row.ID == id {
			f.rows[i].Verified = true
			return f.rows[i].Account, nil
		}
	}
	return identity.Account{}, identity.NotFoundError{Op: "fake.MarkVerified", Resource: "account"}
}

func (f *fakeAccounts) ListAccounts(_ context.Context, role identity.Role, page identity.Page) ([]identity.Account, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []identity.Account
	for _, row := range f.rows {
		if row.Role == role {
			all = append(all, row.Account)
		}
	}
	total := len(all)

	if page.Offset >= total {
		return nil, total, nil
	}
	all = all[page.Offset:]
	if page.Limit > 0 && len(all) > page.Limit {
		all = all[:page.Limit]
	}
	return all, total, nil
}

type fakeGPs struct {
	mu   sync.Mutex
	seq  int
	rows []directory.GP
}

func (f *fakeGPs) CreateGP(_ context.Context, now time.Time, in directory.CreateGPInput) (directory.GP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	gp := directory.GP{
		ID:        fmt.Sprintf("gp-%d", f.seq),
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Available: in.Available,
		Longitude: in.Longitude,
		Latitude:  in.Latitude,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.rows = append(f.rows, gp)
	return gp, nil
}

func (f *fakeGPs) GetGPByID(_ context.Context, id string) (directory.GP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, gp := range f.rows {
		if gp.ID == id {
			return gp, nil
		}
	}
	return directory.GP{}, directory.ErrNotFound
}

func (f *fakeGPs) ListGPs(_ context.Context, filter directory.Filter) ([]directory.GP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []directory.GP
	for _, gp := range f.rows {
		if filter.Available != nil && gp.Available != *filter.Available {
			continue
		}
		if q := strings.ToLower(strings.TrimSpace(filter.Name)); q != "" &&
			!strings.Contains(strings.ToLower(gp.Name), q) {
			continue
		}
		if q := strings.TrimSpace(filter.Phone); q != "" && !strings.Contains(gp.Phone, q) {
			continue
		}
		out = append(out, gp)
	}
	return out, nil
}

type fakeRequests struct {
	mu   sync.Mutex
	seq  int
	rows []booking.Request
}

func (f *fakeRequests) CreateRequest(_ context.Context, now time.Time, in booking.CreateRequestInput) (booking.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	req := booking.Request{
		ID:              fmt.Sprintf("req-%d", f.seq),
		UserID:          in.UserID,
		PartnerID:       in.PartnerID,
		Description:     in.Description,
		Status:          booking.StatusProcessing,
		AppointmentTime: in.AppointmentTime,
		LastUpdater:     booking.UpdaterUser,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.rows = append(f.rows, req)
	return req, nil
}

func (f *fakeRequests) GetRequestByID(_ context.Context, id, userID, partnerID string) (booking.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.rows {
		if req.ID != id {
			continue
		}
		if userID != "" && req.UserID != userID {
			break
		}
		if partnerID != "" && (req.PartnerID == nil || *req.PartnerID != partnerID) {
			break
		}
		return req, nil
	}
	return booking.Request{}, booking.ErrNotFound
}

func (f *fakeRequests) ListRequests(_ context.Context, filter booking.Filter) ([]booking.Request, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	filter = filter.Normalize()

	var all []booking.Request
	for _, req := range f.rows {
		if filter.UserID != "" && req.UserID != filter.UserID {
			continue
		}
		if filter.PartnerID != "" && (req.PartnerID == nil || *req.PartnerID != filter.PartnerID) {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Before != nil && !req.CreatedAt.Before(*filter.Before) {
			continue
		}
		if filter.After != nil && !req.CreatedAt.After(*filter.After) {
			continue
		}
		all = append(all, req)
	}
	total := len(all)

	if filter.Offset >= total {
		return nil, total, nil
	}
	all = all[filter.Offset:]
	if len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

func (f *fakeRequests) UpdateRequest(_ context.Context, now time.Time, id string, u booking.Update) (booking.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, req := range f.rows {
		if req.ID != id {
			continue
		}
		if !req.Status.Open() {
			return booking.Request{}, booking.ErrClosed
		}
		if u.PartnerID != nil {
			req.PartnerID = u.PartnerID
		}
		if u.Description != nil {
			req.Description = *u.Description
		}
		if u.GPResponse != nil {
			req.GPResponse = u.GPResponse
		}
		if u.Status != nil {
			req.Status = *u.Status
		}
		if u.AppointmentTime != nil {
			req.AppointmentTime = u.AppointmentTime
		}
		req.LastUpdater = u.LastUpdater
		req.UpdatedAt = now
		f.rows[i] = req
		return req, nil
	}
	return booking.Request{}, booking.ErrNotFound
}

type fakeSessions struct {
	mu   sync.Mutex
	seq  int
	rows map[string]session.Record
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{rows: map[string]session.Record{}}
}

func (f *fakeSessions) Create(_ context.Context, now time.Time, tokenHash string) (session.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	rec := session.Record{ID: fmt.Sprintf("sess-%d", f.seq), TokenHash: tokenHash, CreatedAt: now}
	f.rows[tokenHash] = rec
	return rec, nil
}

func (f *fakeSessions) GetByTokenHash(_ context.Context, tokenHash string) (session.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.rows[tokenHash]
	if !ok {
		return session.Record{}, session.ErrNotFound
	}
	return rec, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for h, rec := range f.rows {
		if rec.ID == id {
			delete(f.rows, h)
		}
	}
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) messages() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mailer.Message, len(f.sent))
	copy(out, f.sent)
	return out
}
