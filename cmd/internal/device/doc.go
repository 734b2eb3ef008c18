// Package device tracks the devices a user is signed in on.
//
// Each entry is keyed by (user id, device id) and carries the push handle
// the client registered plus liveness metadata. Registration is an upsert:
// re-registering the same pair replaces the mutable fields and keeps the
// original creation time. The registry is consulted for push fan-out and
// for device-scoped logout; push handles never leave the package through
// the list view.
package device
