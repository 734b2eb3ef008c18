package catalog

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSeedDemoData(t *testing.T) {
	s := NewMemoryStore()
	SeedDemoData(s)

	if got := len(s.SendersForUser(1)); got != 2 {
		t.Fatalf("admin senders = %d, want 2", got)
	}
	if got := len(s.SendersForUser(2)); got != 1 {
		t.Fatalf("user1 senders = %d, want 1", got)
	}
	if got := len(s.GroupsForUser(1)); got != 3 {
		t.Fatalf("admin groups = %d, want 3", got)
	}
	if got := len(s.Packages()); got != 4 {
		t.Fatalf("packages = %d, want 4", got)
	}

	pkg, err := s.PackageByID(2)
	if err != nil {
		t.Fatalf("PackageByID: %v", err)
	}
	if pkg.Messages != 2000 || pkg.Price != 150 || !pkg.IsPopular {
		t.Fatalf("unexpected package %+v", pkg)
	}
}

func TestGroupLifecycle(t *testing.T) {
	s := NewMemoryStore()

	g := s.CreateGroup(1, "Launch list", []Contact{
		{Name: "A", Phone: "0501111111"},
		{Name: "B", Phone: "0502222222"},
	})
	if g.ContactsCount != 2 {
		t.Fatalf("contacts_count = %d, want 2", g.ContactsCount)
	}

	if got := len(s.ContactsForGroup(g.ID)); got != 2 {
		t.Fatalf("stored contacts = %d, want 2", got)
	}

	renamed, err := s.RenameGroup(1, g.ID, "Beta list")
	if err != nil {
		t.Fatalf("RenameGroup: %v", err)
	}
	if renamed.Name != "Beta list" {
		t.Fatalf("name = %q", renamed.Name)
	}

	// Another user cannot touch the group.
	if _, err := s.RenameGroup(2, g.ID, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
	if err := s.DeleteGroup(2, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}

	if err := s.DeleteGroup(1, g.ID); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if _, err := s.Group(1, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected group gone, got %v", err)
	}
}

func TestMessagesFilter(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.RecordMessages(1, "CORBIT", []string{"0501111111", "0502222222"}, "March offer", base)
	s.RecordMessages(1, "CORBIT", []string{"0503333333"}, "April offer", base.AddDate(0, 1, 0))
	s.RecordMessages(2, "TESTCO", []string{"0509999999"}, "March offer", base)

	all := s.MessagesForUser(1, MessageFilter{})
	if len(all) != 3 {
		t.Fatalf("all = %d, want 3", len(all))
	}

	march := s.MessagesForUser(1, MessageFilter{To: base.AddDate(0, 0, 15)})
	if len(march) != 2 {
		t.Fatalf("march = %d, want 2", len(march))
	}

	bySearch := s.MessagesForUser(1, MessageFilter{Search: "April"})
	if len(bySearch) != 1 || !strings.Contains(bySearch[0].Message, "April") {
		t.Fatalf("search results: %+v", bySearch)
	}

	byRecipient := s.MessagesForUser(1, MessageFilter{Search: "0502222222"})
	if len(byRecipient) != 1 {
		t.Fatalf("recipient search = %d, want 1", len(byRecipient))
	}
}

func TestOperationsNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.AddOperation(1, "group", "Create group", "first", "success", now, OperationExtra{})
	s.AddOperation(1, "sms", "Send messages", "second", "success", now.Add(time.Minute), OperationExtra{})
	s.AddOperation(2, "recharge", "Top up balance", "other user", "success", now, OperationExtra{})

	ops := s.OperationsForUser(1)
	if len(ops) != 2 {
		t.Fatalf("ops = %d, want 2", len(ops))
	}
	if ops[0].Description != "second" || ops[1].Description != "first" {
		t.Fatalf("not newest first: %+v", ops)
	}
	if ops[0].Date != "2026-03-01 12:01" {
		t.Fatalf("date format: %q", ops[0].Date)
	}

	recent := s.RecentOperations(1, 1)
	if len(recent) != 1 || recent[0].Description != "second" {
		t.Fatalf("recent: %+v", recent)
	}
}

func TestAddSenderRequestCreatesPendingSender(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()

	req := s.AddSenderRequest(1, SenderRequestInput{
		SenderName: "NEWCO",
		SenderType: "promotional",
	}, now)
	if req.ID != 1 || req.Status != "pending" {
		t.Fatalf("unexpected request %+v", req)
	}

	senders := s.SendersForUser(1)
	if len(senders) != 1 {
		t.Fatalf("senders = %d, want 1", len(senders))
	}
	if senders[0].Name != "NEWCO" || senders[0].Status != "pending" {
		t.Fatalf("unexpected sender %+v", senders[0])
	}
}

func TestRandomNotification(t *testing.T) {
	now := time.Now().UTC()
	for i := 0; i < 20; i++ {
		n := RandomNotification(now)
		if n.Title == "" || n.Message == "" {
			t.Fatalf("empty notification %+v", n)
		}
		if strings.Contains(n.Message, "{count}") {
			t.Fatalf("placeholder not rendered: %q", n.Message)
		}
		if n.IsRead {
			t.Fatal("notifications start unread")
		}
	}
}
