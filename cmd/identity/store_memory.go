package identity

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process user table. It is the reference backend;
// all mutation goes through a single mutex so each operation is atomic with
// respect to concurrent requests.
type MemoryStore struct {
	mu     sync.Mutex
	users  map[int]*User
	nextID int
}

// NewMemoryStore constructs an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[int]*User),
		nextID: 1,
	}
}

func (s *MemoryStore) FindByIdentifier(ctx context.Context, identifier string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	norm := NormalizeIdentifier(identifier)
	if norm == "" {
		return User{}, OpError{Op: "identity.FindByIdentifier", Kind: ErrInvalidInput}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if NormalizeIdentifier(u.Username) == norm || u.Phone == identifier || NormalizeIdentifier(u.Email) == norm {
			return *u, nil
		}
	}
	return User{}, OpError{Op: "identity.FindByIdentifier", Kind: ErrNotFound}
}

func (s *MemoryStore) FindByID(ctx context.Context, id int) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, OpError{Op: "identity.FindByID", Kind: ErrNotFound}
	}
	return *u, nil
}

func (s *MemoryStore) FindByPhone(ctx context.Context, phone string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Phone == phone {
			return *u, nil
		}
	}
	return User{}, OpError{Op: "identity.FindByPhone", Kind: ErrNotFound}
}

func (s *MemoryStore) Create(ctx context.Context, in CreateUserInput) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if in.Phone == "" || in.PasswordHash == "" {
		return User{}, OpError{Op: "identity.Create", Kind: ErrInvalidInput}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Phone == in.Phone {
			return User{}, ConflictError{Op: "identity.Create", Field: "phone"}
		}
	}

	accountType := in.AccountType
	if accountType == "" {
		accountType = AccountBasic
	}

	u := &User{
		ID:               s.nextID,
		Name:             in.Name,
		Username:         in.Username,
		Email:            in.Email,
		Phone:            in.Phone,
		PasswordHash:     in.PasswordHash,
		Balance:          in.Balance,
		AccountType:      accountType,
		TwoFactorEnabled: in.TwoFactorEnabled,
		CreatedAt:        now,
	}
	s.users[u.ID] = u
	s.nextID++

	return *u, nil
}

func (s *MemoryStore) SetPassword(ctx context.Context, id int, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if passwordHash == "" {
		return OpError{Op: "identity.SetPassword", Kind: ErrInvalidInput}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return OpError{Op: "identity.SetPassword", Kind: ErrNotFound}
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, id int, in ProfileUpdate) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, OpError{Op: "identity.UpdateProfile", Kind: ErrNotFound}
	}

	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.Gender != nil {
		u.Gender = *in.Gender
	}
	if in.City != nil {
		u.City = *in.City
	}
	if in.Organization != nil {
		u.Organization = *in.Organization
	}

	return *u, nil
}

func (s *MemoryStore) ToggleTwoFactor(ctx context.Context, id int) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, OpError{Op: "identity.ToggleTwoFactor", Kind: ErrNotFound}
	}
	u.TwoFactorEnabled = !u.TwoFactorEnabled
	return *u, nil
}

func (s *MemoryStore) AdjustBalance(ctx context.Context, id int, delta int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return 0, OpError{Op: "identity.AdjustBalance", Kind: ErrNotFound}
	}
	if u.Balance+delta < 0 {
		return 0, OpError{Op: "identity.AdjustBalance", Kind: ErrInsufficientBalance}
	}
	u.Balance += delta
	return u.Balance, nil
}
