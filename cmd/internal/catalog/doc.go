// Package catalog holds the messaging-platform collaborators that surround
// authentication: sender names, contact groups, message packages, sent
// messages, the operation log, notifications, and support chat.
//
// State is volatile by design; delivery, payment, and approval workflows
// are simulated. The package touches the rest of the server only through
// "which user is making this request" and the user's credit balance.
package catalog
