package device

import (
	"context"
	"sort"
	"sync"
	"time"
)

type pairKey struct {
	userID   int
	deviceID string
}

// MemoryStore is the in-process device table. All mutation goes through a
// single mutex so each operation is atomic with respect to concurrent
// requests.
type MemoryStore struct {
	mu      sync.Mutex
	devices map[pairKey]*Device
	nextID  int
}

// NewMemoryStore constructs an empty in-memory device store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		devices: make(map[pairKey]*Device),
		nextID:  1,
	}
}

func (s *MemoryStore) Upsert(ctx context.Context, in UpsertInput) (Device, error) {
	if err := ctx.Err(); err != nil {
		return Device{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{userID: in.UserID, deviceID: in.DeviceID}
	if d, ok := s.devices[key]; ok {
		d.PushToken = in.PushToken
		d.Name = in.Name
		d.Platform = in.Platform
		d.AppVersion = in.AppVersion
		d.LastActiveAt = now
		return *d, nil
	}

	d := &Device{
		ID:           s.nextID,
		UserID:       in.UserID,
		DeviceID:     in.DeviceID,
		PushToken:    in.PushToken,
		Name:         in.Name,
		Platform:     in.Platform,
		AppVersion:   in.AppVersion,
		LastActiveAt: now,
		CreatedAt:    now,
	}
	s.devices[key] = d
	s.nextID++

	return *d, nil
}

func (s *MemoryStore) Get(ctx context.Context, userID int, deviceID string) (Device, error) {
	if err := ctx.Err(); err != nil {
		return Device{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[pairKey{userID: userID, deviceID: deviceID}]
	if !ok {
		return Device{}, ErrNotRegistered
	}
	return *d, nil
}

func (s *MemoryStore) SetPushToken(ctx context.Context, now time.Time, userID int, deviceID, pushToken string) (Device, error) {
	if err := ctx.Err(); err != nil {
		return Device{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[pairKey{userID: userID, deviceID: deviceID}]
	if !ok {
		return Device{}, ErrNotRegistered
	}
	d.PushToken = pushToken
	d.LastActiveAt = now
	return *d, nil
}

func (s *MemoryStore) Touch(ctx context.Context, now time.Time, userID int, deviceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.devices[pairKey{userID: userID, deviceID: deviceID}]; ok {
		d.LastActiveAt = now
	}
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, userID int, deviceID string) (Device, error) {
	if err := ctx.Err(); err != nil {
		return Device{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{userID: userID, deviceID: deviceID}
	d, ok := s.devices[key]
	if !ok {
		return Device{}, ErrNotRegistered
	}
	delete(s.devices, key)
	return *d, nil
}

func (s *MemoryStore) RemoveAllForUser(ctx context.Context, userID int) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []Device
	for key, d := range s.devices {
		if d.UserID == userID {
			removed = append(removed, *d)
			delete(s.devices, key)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].ID < removed[j].ID })
	return removed, nil
}

func (s *MemoryStore) ListForUser(ctx context.Context, userID int) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var devs []Device
	for _, d := range s.devices {
		if d.UserID == userID {
			devs = append(devs, *d)
		}
	}
	sort.Slice(devs, func(i, j int) bool { return devs[i].ID < devs[j].ID })
	return devs, nil
}
