package booking

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// PostgresStore implements Store over PostgreSQL. The pool is owned by the
// caller and must not be closed here.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed request store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("booking: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const requestColumns = `
	id, user_id, partner_id, description, gp_response, status,
	appointment_time, last_updater, created_at, updated_at`

// CreateRequest inserts a new request in the processing state.
func (s *PostgresStore) CreateRequest(ctx context.Context, now time.Time, in CreateRequestInput) (Request, error) {
	req := Request{
		ID:              ulid.Make().String(),
		UserID:          in.UserID,
		PartnerID:       in.PartnerID,
		Description:     in.Description,
		Status:          StatusProcessing,
		AppointmentTime: in.AppointmentTime,
		LastUpdater:     UpdaterUser,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO requests (
			id, user_id, partner_id, description, gp_response, status,
			appointment_time, last_updater, created_at, updated_at
		) VALUES ($1, $2, $3, $4, NULL, $5, $6, $7, $8, $8)
	`, req.ID, req.UserID, req.PartnerID, req.Description, string(req.Status),
		req.AppointmentTime, req.LastUpdater, now)
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

// GetRequestByID loads one request, optionally scoped to an owning user or
// partner. Rows outside the scope are indistinguishable from missing rows.
func (s *PostgresStore) GetRequestByID(ctx context.Context, id, userID, partnerID string) (Request, error) {
	query := `
		SELECT` + requestColumns + `
		FROM requests
		WHERE id = $1`
	args := []any{id}
	if userID != "" {
		args = append(args, userID)
		query += " AND user_id = $" + strconv.Itoa(len(args))
	}
	if partnerID != "" {
		args = append(args, partnerID)
		query += " AND partner_id = $" + strconv.Itoa(len(args))
	}

	req, err := scanRequest(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

// ListRequests returns one page of matching requests, newest first, plus the
// total match count across all pages.
func (s *PostgresStore) ListRequests(ctx context.Context, f Filter) ([]Request, int, error) {
	f = f.Normalize()
	where, args := buildRequestFilter(f)

	countQuery := "SELECT count(*) FROM requests" + where
	var total int
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT" + requestColumns + "\n\tFROM requests" + where +
		"\n\tORDER BY created_at DESC, id DESC" +
		"\n\tOFFSET $" + strconv.Itoa(len(args)+1) +
		" LIMIT $" + strconv.Itoa(len(args)+2)
	args = append(args, f.Offset, f.Limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reqs []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// buildRequestFilter assembles the WHERE clause shared by the count and page
// queries. Split out so clause assembly is testable without a database.
func buildRequestFilter(f Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(column, op string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, column+" "+op+" $"+strconv.Itoa(len(args)))
	}

	if f.UserID != "" {
		add("user_id", "=", f.UserID)
	}
	if f.PartnerID != "" {
		add("partner_id", "=", f.PartnerID)
	}
	if f.Status != "" {
		add("status", "=", string(f.Status))
	}
	if f.Before != nil {
		add("created_at", "<", *f.Before)
	}
	if f.After != nil {
		add("created_at", ">", *f.After)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "\n\tWHERE " + strings.Join(clauses, " AND "), args
}

// UpdateRequest applies a patch to an open request inside one transaction so
// a concurrent close cannot race the write.
func (s *PostgresStore) UpdateRequest(ctx context.Context, now time.Time, id string, u Update) (Request, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Request{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	req, err := scanRequest(tx.QueryRow(ctx, `
		SELECT`+requestColumns+`
		FROM requests
		WHERE id = $1
		FOR UPDATE
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, err
	}

	if !req.Status.Open() {
		return Request{}, ErrClosed
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

	_, err = tx.Exec(ctx, `
		UPDATE requests
		SET partner_id = $2, description = $3, gp_response = $4, status = $5,
			appointment_time = $6, last_updater = $7, updated_at = $8
		WHERE id = $1
	`, req.ID, req.PartnerID, req.Description, req.GPResponse, string(req.Status),
		req.AppointmentTime, req.LastUpdater, req.UpdatedAt)
	if err != nil {
		return Request{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}
	return req, nil
}

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	err := row.Scan(
		&req.ID, &req.UserID, &req.PartnerID, &req.Description, &req.GPResponse,
		&req.Status, &req.AppointmentTime, &req.LastUpdater,
		&req.CreatedAt, &req.UpdatedAt,
	)
	return req, err
}
