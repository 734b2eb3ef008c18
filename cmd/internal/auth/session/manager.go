package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"corbit/cmd/internal/metrics"
	"corbit/cmd/security/token"
)

// Manager issues and authenticates bearer-token sessions.
type Manager struct {
	cfg   Config
	store Store
	log   *slog.Logger
}

// NewManager wires a session manager. A nil logger falls back to the
// default logger.
func NewManager(cfg Config, store Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{cfg: cfg, store: store, log: log}
}

// TTL returns the session lifetime for the given remember-me choice.
func (m *Manager) TTL(rememberMe bool) time.Duration {
	if rememberMe {
		return m.cfg.RememberTTL
	}
	return m.cfg.AccessTTL
}

// Issue mints a new session for the user on the given device. The plain
// token is returned once inside Issued and never stored.
func (m *Manager) Issue(ctx context.Context, now time.Time, userID int, deviceID string, rememberMe bool) (Issued, error) {
	plain, err := token.NewBearerToken(m.cfg.TokenBytes)
	if err != nil {
		return Issued{}, err
	}

	sess := Session{
		ID:         ulid.Make().String(),
		TokenHash:  token.HashBearerTokenHex(plain),
		UserID:     userID,
		DeviceID:   deviceID,
		RememberMe: rememberMe,
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.TTL(rememberMe)),
	}
	if err := m.store.Put(ctx, sess); err != nil {
		return Issued{}, err
	}

	metrics.SessionsIssued.Inc()
	m.log.LogAttrs(ctx, slog.LevelInfo, "session.issue",
		slog.String("session_id", sess.ID),
		slog.Int("user_id", userID),
		slog.String("device_id", deviceID),
		slog.Bool("remember_me", rememberMe),
	)

	return Issued{Session: sess, Token: plain}, nil
}

// Authenticate resolves a plain bearer token to its session. An expired
// session is deleted on sight and reported as ErrExpired; unknown tokens
// report ErrNotFound.
func (m *Manager) Authenticate(ctx context.Context, now time.Time, plain string) (Session, error) {
	if plain == "" {
		return Session{}, ErrNotFound
	}

	hash := token.HashBearerTokenHex(plain)
	sess, err := m.store.GetByTokenHash(ctx, hash)
	if err != nil {
		return Session{}, err
	}

	if now.After(sess.ExpiresAt) {
		if err := m.store.Delete(ctx, hash); err != nil {
			return Session{}, err
		}
		m.log.LogAttrs(ctx, slog.LevelInfo, "session.expire",
			slog.String("session_id", sess.ID),
			slog.Int("user_id", sess.UserID),
		)
		return Session{}, ErrExpired
	}

	return sess, nil
}

// Revoke ends the session behind a plain bearer token. Revoking an unknown
// or already expired token is not an error.
func (m *Manager) Revoke(ctx context.Context, plain string) error {
	if plain == "" {
		return nil
	}
	if err := m.store.Delete(ctx, token.HashBearerTokenHex(plain)); err != nil {
		return err
	}
	metrics.SessionsRevoked.WithLabelValues("single").Inc()
	return nil
}

// RevokeByDevice ends every session the user holds on one device.
func (m *Manager) RevokeByDevice(ctx context.Context, userID int, deviceID string) (int, error) {
	removed, err := m.store.DeleteByDevice(ctx, userID, deviceID)
	if err != nil {
		return 0, err
	}
	metrics.SessionsRevoked.WithLabelValues("device").Add(float64(removed))
	m.log.LogAttrs(ctx, slog.LevelInfo, "session.revoke.device",
		slog.Int("user_id", userID),
		slog.String("device_id", deviceID),
		slog.Int("removed", removed),
	)
	return removed, nil
}

// RevokeAllForUser ends every session the user holds, on every device.
func (m *Manager) RevokeAllForUser(ctx context.Context, userID int) (int, error) {
	removed, err := m.store.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	metrics.SessionsRevoked.WithLabelValues("user").Add(float64(removed))
	m.log.LogAttrs(ctx, slog.LevelInfo, "session.revoke.user",
		slog.Int("user_id", userID),
		slog.Int("removed", removed),
	)
	return removed, nil
}

// IsAuthFailure reports whether err is one of the authentication failures a
// handler maps to 401.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrExpired)
}
