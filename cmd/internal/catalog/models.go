package catalog

import "time"

// Sender is a registered or requested SMS sender name.
type Sender struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Status string `json:"status"` // "approved" or "pending"
	Type   string `json:"type"`   // "communication" or "promotional"
}

// Group is a named contact list.
type Group struct {
	ID            int    `json:"id"`
	UserID        int    `json:"user_id"`
	Name          string `json:"name"`
	ContactsCount int    `json:"contacts_count"`
}

// Contact belongs to exactly one group.
type Contact struct {
	ID      int    `json:"id"`
	GroupID int    `json:"group_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
}

// Package is a purchasable credit bundle.
type Package struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Messages  int    `json:"messages"`
	Price     int    `json:"price"`
	IsPopular bool   `json:"is_popular"`
}

// Message is one sent SMS.
type Message struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Sender      string    `json:"sender"`
	Recipient   string    `json:"recipient"`
	Message     string    `json:"message"`
	Status      string    `json:"status"` // "delivered" or "failed"
	SentAt      time.Time `json:"sent_at"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// MessageFilter narrows a sent-messages listing. Zero values match all.
type MessageFilter struct {
	Status string
	From   time.Time
	To     time.Time
	Search string
}

// Recipient is the phone-only projection stored in the operation log.
type Recipient struct {
	Phone string `json:"phone"`
}

// Operation is one entry in the user-visible activity log, newest first.
type Operation struct {
	ID          int    `json:"id"`
	UserID      int    `json:"user_id"`
	Type        string `json:"type"` // "sms", "group", "sender", "recharge"
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"` // "2006-01-02 15:04"
	Status      string `json:"status"`

	// Extras carried only by SMS operations.
	MessageContent string      `json:"message_content,omitempty"`
	Recipients     []Recipient `json:"recipients,omitempty"`
}

// OperationExtra carries the optional SMS fields of an Operation.
type OperationExtra struct {
	MessageContent string
	Recipients     []Recipient
}

// SenderRequestInput is a sender-name application.
type SenderRequestInput struct {
	SenderName         string `json:"sender_name"`
	SenderType         string `json:"sender_type"`
	OrganizationType   string `json:"organization_type"`
	CommercialRegister string `json:"commercial_register"`
	OrganizationName   string `json:"organization_name"`
	ManagerName        string `json:"manager_name"`
	IDNumber           string `json:"id_number"`
	Position           string `json:"position"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
}

// SenderRequest is a stored sender-name application, always pending until
// an out-of-band approval flips the matching Sender.
type SenderRequest struct {
	ID     int `json:"id"`
	UserID int `json:"user_id"`
	SenderRequestInput
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is one in-app notification.
type Notification struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"` // "success", "info", "warning", "error"
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}

// SupportMessage is one line of the support chat transcript.
type SupportMessage struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"` // "user" or "support"
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats is the delivery summary attached to login payloads.
type Stats struct {
	TotalSent      int `json:"total_sent"`
	TotalDelivered int `json:"total_delivered"`
	TotalFailed    int `json:"total_failed"`
	ThisMonth      int `json:"this_month"`
}
