package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// PostgresStore implements Store over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must not close it.
// Email uniqueness is enforced by the (role, email_norm) unique index, not
// application-level locking: the second concurrent writer of a duplicate
// gets a ConflictError.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed account store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("identity: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const accountColumns = `
	id, role, email, verified,
	first_name, last_name, partner_name, address, phone,
	created_at, updated_at`

// CreateAccount inserts a new account row.
func (s *PostgresStore) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	const op = "identity.CreateAccount"

	if !in.Role.Valid() {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "unknown role"}
	}
	email := NormalizeEmail(in.Email)
	if email == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	if strings.TrimSpace(in.PasswordHash) == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "password hash is required"}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id := ulid.Make().String()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (
			id, role, email, email_norm, password_hash, verified,
			first_name, last_name, partner_name, address, phone,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $12
		)
	`, id, string(in.Role), email, email, in.PasswordHash, in.Role == RoleAdmin,
		in.FirstName, in.LastName, in.PartnerName, in.Address, in.Phone, now)
	if err != nil {
		if field, ok := classifyUniqueViolation(err); ok {
			return Account{}, ConflictError{Op: op, Field: field}
		}
		return Account{}, err
	}

	return s.GetAccountByID(ctx, in.Role, id)
}

// GetAccountByID loads an account by id, scoped to role.
func (s *PostgresStore) GetAccountByID(ctx context.Context, role Role, id string) (Account, error) {
	const op = "identity.GetAccountByID"

	row := s.pool.QueryRow(ctx, `
		SELECT`+accountColumns+`
		FROM accounts
		WHERE id = $1 AND role = $2
	`, id, string(role))

	acct, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}
	if err != nil {
		return Account{}, err
	}
	return acct, nil
}

// GetAccountAuthByEmail loads an account plus credential material by
// normalized email, scoped to role.
func (s *PostgresStore) GetAccountAuthByEmail(ctx context.Context, role Role, email string) (AccountAuth, error) {
	const op = "identity.GetAccountAuthByEmail"

	row := s.pool.QueryRow(ctx, `
		SELECT`+accountColumns+`, password_hash
		FROM accounts
		WHERE email_norm = $1 AND role = $2
	`, NormalizeEmail(email), string(role))

	var (
		acct Account
		hash string
	)
	err := row.Scan(
		&acct.ID, &acct.Role, &acct.Email, &acct.Verified,
		&acct.FirstName, &acct.LastName, &acct.PartnerName, &acct.Address, &acct.Phone,
		&acct.CreatedAt, &acct.UpdatedAt,
		&hash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return AccountAuth{}, NotFoundError{Op: op, Resource: "account"}
	}
	if err != nil {
		return AccountAuth{}, err
	}
	return AccountAuth{Account: acct, PasswordHash: hash}, nil
}

// MarkVerified flips the verified flag and returns the updated account.
func (s *PostgresStore) MarkVerified(ctx context.Context, role Role, id string) (Account, error) {
	const op = "identity.MarkVerified"

	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts
		SET verified = TRUE, updated_at = now()
		WHERE id = $1 AND role = $2
	`, id, string(role))
	if err != nil {
		return Account{}, err
	}
	if tag.RowsAffected() == 0 {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}
	return s.GetAccountByID(ctx, role, id)
}

// ListAccounts returns one page of accounts for a role plus the total count.
func (s *PostgresStore) ListAccounts(ctx context.Context, role Role, page Page) ([]Account, int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+accountColumns+`
		FROM accounts
		WHERE role = $1
		ORDER BY created_at, id
		OFFSET $2 LIMIT $3
	`, string(role), page.Offset, page.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = s.pool.QueryRow(ctx,
		`SELECT count(*) FROM accounts WHERE role = $1`, string(role),
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var acct Account
	err := row.Scan(
		&acct.ID, &acct.Role, &acct.Email, &acct.Verified,
		&acct.FirstName, &acct.LastName, &acct.PartnerName, &acct.Address, &acct.Phone,
		&acct.CreatedAt, &acct.UpdatedAt,
	)
	return acct, err
}

// classifyUniqueViolation maps a Postgres unique-violation error to the
// logical field name behind the violated constraint.
func classifyUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return "", false
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "partner_name"):
		return "partner_name", true
	case strings.Contains(pgErr.ConstraintName, "address"):
		return "address", true
	case strings.Contains(pgErr.ConstraintName, "phone"):
		return "phone", true
	case strings.Contains(pgErr.ConstraintName, "email"):
		return "email", true
	default:
		return "", true
	}
}
