package authapi

import (
	"time"

	"corbit/cmd/identity"
	"corbit/cmd/internal/catalog"
)

// userPayload is the client-facing projection of a user. The password hash
// never leaves the server.
type userPayload struct {
	ID               int                  `json:"id"`
	Name             string               `json:"name"`
	Username         string               `json:"username"`
	Email            string               `json:"email"`
	Phone            string               `json:"phone"`
	Balance          int                  `json:"balance"`
	AccountType      identity.AccountType `json:"account_type"`
	TwoFactorEnabled bool                 `json:"two_factor_enabled"`
	Gender           string               `json:"gender,omitempty"`
	City             string               `json:"city,omitempty"`
	Organization     string               `json:"organization,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

func toUserPayload(u identity.User) userPayload {
	return userPayload{
		ID:               u.ID,
		Name:             u.Name,
		Username:         u.Username,
		Email:            u.Email,
		Phone:            u.Phone,
		Balance:          u.Balance,
		AccountType:      u.AccountType,
		TwoFactorEnabled: u.TwoFactorEnabled,
		Gender:           u.Gender,
		City:             u.City,
		Organization:     u.Organization,
		CreatedAt:        u.CreatedAt,
	}
}

// sessionPayload is the full login response body: the token plus the data
// the client needs to render its home screen in one round trip.
type sessionPayload struct {
	Token     string            `json:"token"`
	TokenType string            `json:"token_type"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      userPayload       `json:"user"`
	Senders   []catalog.Sender  `json:"senders"`
	Groups    []catalog.Group   `json:"groups"`
	Packages  []catalog.Package `json:"packages"`
	Stats     catalog.Stats     `json:"stats"`
}

func (h *Handler) sessionPayloadFor(user identity.User, token string, expiresAt time.Time) sessionPayload {
	return sessionPayload{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      toUserPayload(user),
		Senders:   h.catalog.SendersForUser(user.ID),
		Groups:    h.catalog.GroupsForUser(user.ID),
		Packages:  h.catalog.Packages(),
		Stats:     catalog.RandomStats(),
	}
}
