package catalog

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// notificationTemplates feed the simulated in-app notification feed.
// "{count}" is replaced with a random message count at render time.
var notificationTemplates = []Notification{
	{Type: "success", Title: "Sent successfully", Message: "{count} messages were sent successfully"},
	{Type: "info", Title: "New update", Message: "The app was updated to the latest version"},
	{Type: "warning", Title: "Balance alert", Message: "Your balance is low, please top up soon"},
	{Type: "success", Title: "Top-up complete", Message: "{count} messages were added to your account"},
	{Type: "info", Title: "New sender name", Message: "Your new sender name was approved"},
	{Type: "error", Title: "Delivery failure", Message: "Some messages failed to send, please retry later"},
}

// RandomNotification renders one notification from the template pool.
func RandomNotification(now time.Time) Notification {
	t := notificationTemplates[rand.IntN(len(notificationTemplates))]
	count := strconv.Itoa(rand.IntN(200) + 10)
	return Notification{
		ID:        now.UnixMilli(),
		Type:      t.Type,
		Title:     t.Title,
		Message:   strings.ReplaceAll(t.Message, "{count}", count),
		CreatedAt: now,
		IsRead:    false,
	}
}

// RandomStats fabricates the delivery summary attached to login payloads.
func RandomStats() Stats {
	return Stats{
		TotalSent:      rand.IntN(5000) + 500,
		TotalDelivered: rand.IntN(4500) + 400,
		TotalFailed:    rand.IntN(100) + 10,
		ThisMonth:      rand.IntN(1000) + 100,
	}
}

// SupportTranscript returns the canned support conversation.
func SupportTranscript() []SupportMessage {
	return []SupportMessage{
		{
			ID:        1,
			Type:      "user",
			Message:   "Hello, how can I top up my balance?",
			CreatedAt: time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:        2,
			Type:      "support",
			Message:   "Welcome! You can top up from the balance section in the app",
			CreatedAt: time.Date(2024, 12, 31, 10, 5, 0, 0, time.UTC),
		},
	}
}
