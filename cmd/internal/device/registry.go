package device

import (
	"context"
	"log/slog"
	"time"

	"corbit/cmd/internal/metrics"
)

// Registry is the device-management surface the rest of the server uses.
// It validates input, delegates persistence to a Store, and fans push
// notifications out through a Gateway.
type Registry struct {
	store   Store
	gateway Gateway
	log     *slog.Logger
}

// NewRegistry wires a registry. A nil gateway disables push fan-out; a nil
// logger falls back to the default logger.
func NewRegistry(store Store, gateway Gateway, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{store: store, gateway: gateway, log: log}
}

// Register upserts the caller's device. The push handle, device id, and
// platform are required; re-registering replaces the mutable fields and
// keeps the original registration time.
func (r *Registry) Register(ctx context.Context, in UpsertInput) (Device, error) {
	if in.PushToken == "" || in.DeviceID == "" || in.Platform == "" {
		return Device{}, ErrMissingFields
	}

	dev, err := r.store.Upsert(ctx, in)
	if err != nil {
		return Device{}, err
	}

	metrics.DevicesRegistered.Inc()
	r.log.LogAttrs(ctx, slog.LevelInfo, "device.register",
		slog.Int("user_id", dev.UserID),
		slog.String("device_id", dev.DeviceID),
		slog.String("platform", dev.Platform),
	)
	return dev, nil
}

// UpdatePushToken replaces the push handle of an already registered device.
func (r *Registry) UpdatePushToken(ctx context.Context, now time.Time, userID int, deviceID, pushToken string) (Device, error) {
	if pushToken == "" || deviceID == "" {
		return Device{}, ErrMissingFields
	}
	return r.store.SetPushToken(ctx, now, userID, deviceID, pushToken)
}

// Touch refreshes the device's last-active time. Unknown devices are
// ignored so that authentication never fails on a missing registration.
func (r *Registry) Touch(ctx context.Context, now time.Time, userID int, deviceID string) {
	if deviceID == "" {
		return
	}
	if err := r.store.Touch(ctx, now, userID, deviceID); err != nil {
		r.log.LogAttrs(ctx, slog.LevelWarn, "device.touch.fail",
			slog.Int("user_id", userID),
			slog.String("device_id", deviceID),
			slog.String("error", err.Error()),
		)
	}
}

// Unregister deletes and returns the caller's device entry.
func (r *Registry) Unregister(ctx context.Context, userID int, deviceID string) (Device, error) {
	return r.store.Remove(ctx, userID, deviceID)
}

// RemoveAllForUser deletes every device the user owns and returns them.
func (r *Registry) RemoveAllForUser(ctx context.Context, userID int) ([]Device, error) {
	return r.store.RemoveAllForUser(ctx, userID)
}

// Get returns the entry for (user, device id), or ErrNotRegistered.
func (r *Registry) Get(ctx context.Context, userID int, deviceID string) (Device, error) {
	return r.store.Get(ctx, userID, deviceID)
}

// ListForUser returns the client-facing view of the user's devices, each
// flagged as current when it matches currentDeviceID.
func (r *Registry) ListForUser(ctx context.Context, userID int, currentDeviceID string) ([]View, error) {
	devs, err := r.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(devs))
	for _, d := range devs {
		views = append(views, View{
			ID:         d.ID,
			DeviceID:   d.DeviceID,
			DeviceName: d.Name,
			Platform:   d.Platform,
			AppVersion: d.AppVersion,
			LastActive: d.LastActiveAt,
			IsCurrent:  currentDeviceID != "" && d.DeviceID == currentDeviceID,
		})
	}
	return views, nil
}

// NotifyUser pushes a notification to every device the user owns. Delivery
// is fire-and-forget; failures are logged, not returned.
func (r *Registry) NotifyUser(ctx context.Context, userID int, title, body string) {
	if r.gateway == nil {
		return
	}

	devs, err := r.store.ListForUser(ctx, userID)
	if err != nil {
		r.log.LogAttrs(ctx, slog.LevelWarn, "push.fanout.fail",
			slog.Int("user_id", userID),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, d := range devs {
		if d.PushToken == "" {
			continue
		}
		r.gateway.Send(ctx, d.PushToken, title, body)
		metrics.PushSent.Inc()
	}
}
