package directory

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

// NewPostgresStore creates a Postgres-backed GP directory store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("directory: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const gpColumns = `
	id, name, phone, available, longitude, latitude, created_at, updated_at`

// CreateGP inserts a new listing.
func (s *PostgresStore) CreateGP(ctx context.Context, now time.Time, in CreateGPInput) (GP, error) {
	gp := GP{
		ID:        ulid.Make().String(),
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Available: in.Available,
		Longitude: in.Longitude,
		Latitude:  in.Latitude,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO gps (id, name, phone, available, longitude, latitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, gp.ID, gp.Name, gp.Phone, gp.Available, gp.Longitude, gp.Latitude, now)
	if err != nil {
		return GP{}, err
	}
	return gp, nil
}

// GetGPByID loads one listing.
func (s *PostgresStore) GetGPByID(ctx context.Context, id string) (GP, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT`+gpColumns+`
		FROM gps
		WHERE id = $1
	`, id)

	gp, err := scanGP(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return GP{}, ErrNotFound
	}
	if err != nil {
		return GP{}, err
	}
	return gp, nil
}

// ListGPs returns all listings matching the filter, name order.
func (s *PostgresStore) ListGPs(ctx context.Context, f Filter) ([]GP, error) {
	query, args := buildListQuery(f)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gps []GP
	for rows.Next() {
		gp, err := scanGP(rows)
		if err != nil {
			return nil, err
		}
		gps = append(gps, gp)
	}
	return gps, rows.Err()
}

// buildListQuery assembles the filtered listing query. Split out so the
// clause assembly is testable without a database.
func buildListQuery(f Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, strings.Replace(clause, "?", placeholder(len(args)), 1))
	}

	if f.Available != nil {
		add("available = ?", *f.Available)
	}
	if q := strings.TrimSpace(f.Name); q != "" {
		add("name ILIKE ?", "%"+escapeLike(q)+"%")
	}
	if q := strings.TrimSpace(f.Phone); q != "" {
		add("phone ILIKE ?", "%"+escapeLike(q)+"%")
	}

	query := "SELECT" + gpColumns + "\n\tFROM gps"
	if len(clauses) > 0 {
		query += "\n\tWHERE " + strings.Join(clauses, " AND ")
	}
	query += "\n\tORDER BY name, id"
	return query, args
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// escapeLike neutralizes LIKE metacharacters so user input only ever matches
// literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func scanGP(row pgx.Row) (GP, error) {
	var gp GP
	err := row.Scan(
		&gp.ID, &gp.Name, &gp.Phone, &gp.Available,
		&gp.Longitude, &gp.Latitude,
		&gp.CreatedAt, &gp.UpdatedAt,
	)
	return gp, err
}
