package identity

import (
	"context"
	"time"
)

// AccountType tags a user's pricing tier.
type AccountType string

const (
	AccountBasic   AccountType = "basic"
	AccountPremium AccountType = "premium"
)

// User is Corbit's canonical security principal.
// ID is immutable and unique; ids are allocated sequentially by the store.
type User struct {
	ID       int
	Name     string
	Username string
	Email    string
	Phone    string

	// PasswordHash is an Argon2id PHC string; never expose it through the API.
	PasswordHash string

	Balance          int
	AccountType      AccountType
	TwoFactorEnabled bool

	// Optional profile attributes.
	Gender       string
	City         string
	Organization string

	CreatedAt time.Time
}

// CreateUserInput describes a user creation request.
// Phone must be unique across the store.
type CreateUserInput struct {
	Name         string
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	Now          time.Time

	// Optional overrides for seeded accounts; zero values take defaults
	// (balance 0, basic tier, two-factor off).
	Balance          int
	AccountType      AccountType
	TwoFactorEnabled bool
}

// ProfileUpdate carries in-place profile mutations; nil fields are left untouched.
type ProfileUpdate struct {
	Name         *string
	Email        *string
	Phone        *string
	Gender       *string
	City         *string
	Organization *string
}

// Store is the credential persistence boundary.
type Store interface {
	// FindByIdentifier matches on username, phone, or email.
	FindByIdentifier(ctx context.Context, identifier string) (User, error)

	FindByID(ctx context.Context, id int) (User, error)

	FindByPhone(ctx context.Context, phone string) (User, error)

	// Create allocates the next sequential id. Returns a ConflictError with
	// Field "phone" when the phone number is already registered.
	Create(ctx context.Context, in CreateUserInput) (User, error)

	SetPassword(ctx context.Context, id int, passwordHash string) error

	UpdateProfile(ctx context.Context, id int, in ProfileUpdate) (User, error)

	// ToggleTwoFactor flips the two-factor flag and returns the updated user.
	ToggleTwoFactor(ctx context.Context, id int) (User, error)

	// AdjustBalance atomically adds delta (may be negative) to the user's
	// credit balance. A debit that would leave the balance negative fails
	// with ErrInsufficientBalance and changes nothing. Returns the new
	// balance.
	AdjustBalance(ctx context.Context, id int, delta int) (int, error)
}
