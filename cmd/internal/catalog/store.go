package catalog

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned for a missing group or package.
var ErrNotFound = errors.New("not found")

// operationDateFormat matches the client-facing activity log.
const operationDateFormat = "2006-01-02 15:04"

// MemoryStore is the in-process catalog. All tables share one mutex; the
// data is volatile and reseeded on every start.
type MemoryStore struct {
	mu             sync.Mutex
	senders        []Sender
	groups         []Group
	contacts       []Contact
	packages       []Package
	messages       []Message
	operations     []Operation
	senderRequests []SenderRequest
}

// NewMemoryStore constructs an empty catalog store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SendersForUser returns the user's sender names.
func (s *MemoryStore) SendersForUser(userID int) []Sender {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Sender{}
	for _, sn := range s.senders {
		if sn.UserID == userID {
			out = append(out, sn)
		}
	}
	return out
}

// AddSender appends a sender name in the given status.
func (s *MemoryStore) AddSender(userID int, name, senderType, status string) Sender {
	s.mu.Lock()
	defer s.mu.Unlock()

	sn := Sender{
		ID:     len(s.senders) + 1,
		UserID: userID,
		Name:   name,
		Status: status,
		Type:   senderType,
	}
	s.senders = append(s.senders, sn)
	return sn
}

// AddSenderRequest files a sender-name application; the matching Sender is
// created pending in the same step.
func (s *MemoryStore) AddSenderRequest(userID int, in SenderRequestInput, now time.Time) SenderRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := SenderRequest{
		ID:                 len(s.senderRequests) + 1,
		UserID:             userID,
		SenderRequestInput: in,
		Status:             "pending",
		CreatedAt:          now,
	}
	s.senderRequests = append(s.senderRequests, req)

	s.senders = append(s.senders, Sender{
		ID:     len(s.senders) + 1,
		UserID: userID,
		Name:   in.SenderName,
		Status: "pending",
		Type:   in.SenderType,
	})
	return req
}

// GroupsForUser returns the user's contact groups.
func (s *MemoryStore) GroupsForUser(userID int) []Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Group{}
	for _, g := range s.groups {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out
}

// CreateGroup creates a group and its initial contacts.
func (s *MemoryStore) CreateGroup(userID int, name string, contacts []Contact) Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := Group{
		ID:            len(s.groups) + 1,
		UserID:        userID,
		Name:          name,
		ContactsCount: len(contacts),
	}
	s.groups = append(s.groups, g)

	for _, c := range contacts {
		s.contacts = append(s.contacts, Contact{
			ID:      len(s.contacts) + 1,
			GroupID: g.ID,
			Name:    c.Name,
			Phone:   c.Phone,
		})
	}
	return g
}

// Group returns the user's group by id, or ErrNotFound.
func (s *MemoryStore) Group(userID, groupID int) (Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if g.ID == groupID && g.UserID == userID {
			return g, nil
		}
	}
	return Group{}, ErrNotFound
}

// RenameGroup updates the group's name.
func (s *MemoryStore) RenameGroup(userID, groupID int, name string) (Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.groups {
		if s.groups[i].ID == groupID && s.groups[i].UserID == userID {
			if name != "" {
				s.groups[i].Name = name
			}
			return s.groups[i], nil
		}
	}
	return Group{}, ErrNotFound
}

// DeleteGroup removes the group. Its contacts stay orphaned, matching the
// reference behavior.
func (s *MemoryStore) DeleteGroup(userID, groupID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.groups {
		if s.groups[i].ID == groupID && s.groups[i].UserID == userID {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ContactsForGroup returns the group's contacts.
func (s *MemoryStore) ContactsForGroup(groupID int) []Contact {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Contact{}
	for _, c := range s.contacts {
		if c.GroupID == groupID {
			out = append(out, c)
		}
	}
	return out
}

// Packages returns the purchasable bundles.
func (s *MemoryStore) Packages() []Package {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Package{}, s.packages...)
}

// PackageByID returns one bundle, or ErrNotFound.
func (s *MemoryStore) PackageByID(id int) (Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.packages {
		if p.ID == id {
			return p, nil
		}
	}
	return Package{}, ErrNotFound
}

// SetPackages replaces the bundle list. Used by seeding.
func (s *MemoryStore) SetPackages(pkgs []Package) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.packages = append([]Package{}, pkgs...)
}

// RecordMessages stores one Message per recipient. Delivery is simulated:
// roughly one in ten messages fails.
func (s *MemoryStore) RecordMessages(userID int, sender string, recipients []string, body string, now time.Time) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, 0, len(recipients))
	for _, recipient := range recipients {
		status := "delivered"
		if rand.Float64() < 0.1 {
			status = "failed"
		}
		m := Message{
			ID:          len(s.messages) + 1,
			UserID:      userID,
			Sender:      sender,
			Recipient:   recipient,
			Message:     body,
			Status:      status,
			SentAt:      now,
			DeliveredAt: now,
		}
		s.messages = append(s.messages, m)
		out = append(out, m)
	}
	return out
}

// MessagesForUser returns the user's sent messages matching the filter.
func (s *MemoryStore) MessagesForUser(userID int, f MessageFilter) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Message{}
	for _, m := range s.messages {
		if m.UserID != userID {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if !f.From.IsZero() && m.SentAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && m.SentAt.After(f.To) {
			continue
		}
		if f.Search != "" && !strings.Contains(m.Message, f.Search) && !strings.Contains(m.Recipient, f.Search) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// AddOperation prepends an entry to the user's activity log.
func (s *MemoryStore) AddOperation(userID int, typ, title, description, status string, now time.Time, extra OperationExtra) Operation {
	s.mu.Lock()
	defer s.mu.Unlock()

	op := Operation{
		ID:             len(s.operations) + 1,
		UserID:         userID,
		Type:           typ,
		Title:          title,
		Description:    description,
		Date:           now.Format(operationDateFormat),
		Status:         status,
		MessageContent: extra.MessageContent,
		Recipients:     extra.Recipients,
	}
	s.operations = append([]Operation{op}, s.operations...)
	return op
}

// OperationsForUser returns the user's activity log, newest first.
func (s *MemoryStore) OperationsForUser(userID int) []Operation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Operation{}
	for _, op := range s.operations {
		if op.UserID == userID {
			out = append(out, op)
		}
	}
	return out
}

// RecentOperations returns up to n latest entries for the user.
func (s *MemoryStore) RecentOperations(userID, n int) []Operation {
	ops := s.OperationsForUser(userID)
	if len(ops) > n {
		ops = ops[:n]
	}
	return ops
}

// MessageCountForUser returns how many messages the user has sent.
func (s *MemoryStore) MessageCountForUser(userID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, m := range s.messages {
		if m.UserID == userID {
			count++
		}
	}
	return count
}
