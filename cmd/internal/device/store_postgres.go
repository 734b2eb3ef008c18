package device

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL (corbit.devices).
// Schema management is external; the store assumes:
//
//	CREATE TABLE corbit.devices (
//	    id             BIGSERIAL PRIMARY KEY,
//	    user_id        BIGINT NOT NULL,
//	    device_id      TEXT NOT NULL,
//	    push_token     TEXT NOT NULL,
//	    name           TEXT NOT NULL DEFAULT '',
//	    platform       TEXT NOT NULL,
//	    app_version    TEXT NOT NULL DEFAULT '',
//	    last_active_at TIMESTAMPTZ NOT NULL,
//	    created_at     TIMESTAMPTZ NOT NULL,
//	    UNIQUE (user_id, device_id)
//	)
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed device store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("device: nil pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const deviceColumns = `
	id, user_id, device_id, push_token, name,
	platform, app_version, last_active_at, created_at
`

func scanDevice(row pgx.Row) (Device, error) {
	var d Device
	err := row.Scan(
		&d.ID, &d.UserID, &d.DeviceID, &d.PushToken, &d.Name,
		&d.Platform, &d.AppVersion, &d.LastActiveAt, &d.CreatedAt,
	)
	return d, err
}

func (s *PostgresStore) Upsert(ctx context.Context, in UpsertInput) (Device, error) {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	// ON CONFLICT keeps the original created_at.
	return scanDevice(s.pool.QueryRow(ctx, `
		INSERT INTO corbit.devices (
			user_id, device_id, push_token, name,
			platform, app_version, last_active_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (user_id, device_id) DO UPDATE SET
			push_token = EXCLUDED.push_token,
			name = EXCLUDED.name,
			platform = EXCLUDED.platform,
			app_version = EXCLUDED.app_version,
			last_active_at = EXCLUDED.last_active_at
		RETURNING `+deviceColumns+`
	`, in.UserID, in.DeviceID, in.PushToken, in.Name,
		in.Platform, in.AppVersion, now))
}

func (s *PostgresStore) Get(ctx context.Context, userID int, deviceID string) (Device, error) {
	d, err := scanDevice(s.pool.QueryRow(ctx, `
		SELECT `+deviceColumns+`
		FROM corbit.devices
		WHERE user_id = $1 AND device_id = $2
	`, userID, deviceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Device{}, ErrNotRegistered
	}
	return d, err
}

func (s *PostgresStore) SetPushToken(ctx context.Context, now time.Time, userID int, deviceID, pushToken string) (Device, error) {
	d, err := scanDevice(s.pool.QueryRow(ctx, `
		UPDATE corbit.devices
		SET push_token = $3, last_active_at = $4
		WHERE user_id = $1 AND device_id = $2
		RETURNING `+deviceColumns+`
	`, userID, deviceID, pushToken, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return Device{}, ErrNotRegistered
	}
	return d, err
}

func (s *PostgresStore) Touch(ctx context.Context, now time.Time, userID int, deviceID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE corbit.devices
		SET last_active_at = $3
		WHERE user_id = $1 AND device_id = $2
	`, userID, deviceID, now)
	return err
}

func (s *PostgresStore) Remove(ctx context.Context, userID int, deviceID string) (Device, error) {
	d, err := scanDevice(s.pool.QueryRow(ctx, `
		DELETE FROM corbit.devices
		WHERE user_id = $1 AND device_id = $2
		RETURNING `+deviceColumns+`
	`, userID, deviceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Device{}, ErrNotRegistered
	}
	return d, err
}

func (s *PostgresStore) RemoveAllForUser(ctx context.Context, userID int) ([]Device, error) {
	rows, err := s.pool.Query(ctx, `
		DELETE FROM corbit.devices
		WHERE user_id = $1
		RETURNING `+deviceColumns+`
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDevices(rows)
}

func (s *PostgresStore) ListForUser(ctx context.Context, userID int) ([]Device, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+deviceColumns+`
		FROM corbit.devices
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDevices(rows)
}

func collectDevices(rows pgx.Rows) ([]Device, error) {
	var devs []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devs = append(devs, d)
	}
	return devs, rows.Err()
}
