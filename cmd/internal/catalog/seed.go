package catalog

// SeedDemoData loads the demo catalog: sender names and contact groups for
// the two seeded accounts, plus the package tiers.
func SeedDemoData(s *MemoryStore) {
	s.AddSender(1, "CORBIT", "communication", "approved")
	s.AddSender(1, "MYCOMPANY", "promotional", "pending")
	s.AddSender(2, "TESTCO", "communication", "approved")

	premium := s.CreateGroup(1, "Premium Customers", []Contact{
		{Name: "Khalid Ahmed", Phone: "0501111111"},
		{Name: "Saud Mohammed", Phone: "0502222222"},
		{Name: "Fahad Ali", Phone: "0503333333"},
	})
	staff := s.CreateGroup(1, "Employees", []Contact{
		{Name: "Abdullah Saad", Phone: "0504444444"},
		{Name: "Nasser Khalid", Phone: "0505555555"},
	})
	s.CreateGroup(1, "Suppliers", nil)
	s.CreateGroup(2, "VIP Customers", nil)

	// The demo groups report larger memberships than the sample contacts
	// actually stored.
	s.setGroupCount(premium.ID, 150)
	s.setGroupCount(staff.ID, 45)
	s.setGroupCount(3, 23)
	s.setGroupCount(4, 80)

	s.SetPackages([]Package{
		{ID: 1, Name: "Starter", Messages: 500, Price: 50, IsPopular: false},
		{ID: 2, Name: "Business", Messages: 2000, Price: 150, IsPopular: true},
		{ID: 3, Name: "Enterprise", Messages: 5000, Price: 300, IsPopular: false},
		{ID: 4, Name: "Corporate", Messages: 10000, Price: 500, IsPopular: false},
	})
}

func (s *MemoryStore) setGroupCount(groupID, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.groups {
		if s.groups[i].ID == groupID {
			s.groups[i].ContactsCount = count
			return
		}
	}
}
