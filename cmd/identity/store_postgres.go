package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL (corbit.users).
// Schema management is external; the store assumes:
//
//	CREATE TABLE corbit.users (
//	    id                 BIGSERIAL PRIMARY KEY,
//	    name               TEXT NOT NULL,
//	    username           TEXT NOT NULL,
//	    email              TEXT NOT NULL DEFAULT '',
//	    phone              TEXT NOT NULL UNIQUE,
//	    password_hash      TEXT NOT NULL,
//	    balance            BIGINT NOT NULL DEFAULT 0,
//	    account_type       TEXT NOT NULL DEFAULT 'basic',
//	    two_factor_enabled BOOLEAN NOT NULL DEFAULT FALSE,
//	    gender             TEXT NOT NULL DEFAULT '',
//	    city               TEXT NOT NULL DEFAULT '',
//	    organization       TEXT NOT NULL DEFAULT '',
//	    created_at         TIMESTAMPTZ NOT NULL
//	)
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed credential store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("identity: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const userColumns = `
	id, name, username, email, phone, password_hash,
	balance, account_type, two_factor_enabled,
	gender, city, organization, created_at
`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &u.PasswordHash,
		&u.Balance, &u.AccountType, &u.TwoFactorEnabled,
		&u.Gender, &u.City, &u.Organization, &u.CreatedAt,
	)
	return u, err
}

func (s *PostgresStore) FindByIdentifier(ctx context.Context, identifier string) (User, error) {
	norm := NormalizeIdentifier(identifier)
	if norm == "" {
		return User{}, OpError{Op: "identity.FindByIdentifier", Kind: ErrInvalidInput}
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM corbit.users
		WHERE lower(username) = $1 OR phone = $2 OR lower(email) = $1
		LIMIT 1
	`, norm, identifier))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, OpError{Op: "identity.FindByIdentifier", Kind: ErrNotFound}
	}
	return u, err
}

func (s *PostgresStore) FindByID(ctx context.Context, id int) (User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM corbit.users
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, OpError{Op: "identity.FindByID", Kind: ErrNotFound}
	}
	return u, err
}

func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) (User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM corbit.users
		WHERE phone = $1
	`, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, OpError{Op: "identity.FindByPhone", Kind: ErrNotFound}
	}
	return u, err
}

func (s *PostgresStore) Create(ctx context.Context, in CreateUserInput) (User, error) {
	if in.Phone == "" || in.PasswordHash == "" {
		return User{}, OpError{Op: "identity.Create", Kind: ErrInvalidInput}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	accountType := in.AccountType
	if accountType == "" {
		accountType = AccountBasic
	}

	u, err := scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO corbit.users (
			name, username, email, phone, password_hash,
			balance, account_type, two_factor_enabled, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+userColumns+`
	`, in.Name, in.Username, in.Email, in.Phone, in.PasswordHash,
		in.Balance, accountType, in.TwoFactorEnabled, now))
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation (phone).
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ConflictError{Op: "identity.Create", Field: "phone"}
		}
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) SetPassword(ctx context.Context, id int, passwordHash string) error {
	if passwordHash == "" {
		return OpError{Op: "identity.SetPassword", Kind: ErrInvalidInput}
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE corbit.users
		SET password_hash = $2
		WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return OpError{Op: "identity.SetPassword", Kind: ErrNotFound}
	}
	return nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id int, in ProfileUpdate) (User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `
		UPDATE corbit.users
		SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			gender = COALESCE($5, gender),
			city = COALESCE($6, city),
			organization = COALESCE($7, organization)
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, in.Name, in.Email, in.Phone, in.Gender, in.City, in.Organization))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, OpError{Op: "identity.UpdateProfile", Kind: ErrNotFound}
	}
	return u, err
}

func (s *PostgresStore) ToggleTwoFactor(ctx context.Context, id int) (User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `
		UPDATE corbit.users
		SET two_factor_enabled = NOT two_factor_enabled
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, OpError{Op: "identity.ToggleTwoFactor", Kind: ErrNotFound}
	}
	return u, err
}

func (s *PostgresStore) AdjustBalance(ctx context.Context, id int, delta int) (int, error) {
	var balance int
	err := s.pool.QueryRow(ctx, `
		UPDATE corbit.users
		SET balance = balance + $2
		WHERE id = $1 AND balance + $2 >= 0
		RETURNING balance
	`, id, delta).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		// The guarded UPDATE matched nothing: either the user is gone or
		// the debit would overdraw.
		if _, ferr := s.FindByID(ctx, id); IsNotFound(ferr) {
			return 0, OpError{Op: "identity.AdjustBalance", Kind: ErrNotFound}
		}
		return 0, OpError{Op: "identity.AdjustBalance", Kind: ErrInsufficientBalance}
	}
	return balance, err
}
