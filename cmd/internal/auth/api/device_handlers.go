package authapi

import (
	"errors"
	"net/http"
	"time"

	"corbit/cmd/internal/device"
	"corbit/cmd/internal/web"
)

func (h *Handler) registerDevice(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		FCMToken   string `json:"fcm_token"`
		DeviceID   string `json:"device_id"`
		DeviceName string `json:"device_name"`
		Platform   string `json:"platform"`
		AppVersion string `json:"app_version"`
	}
	if err := web.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		web.Fail(w, http.StatusBadRequest, "Required: fcm_token, device_id, platform", "MISSING_REQUIRED_FIELDS")
		return
	}

	if req.DeviceName == "" {
		req.DeviceName = "Unknown Device"
	}
	if req.AppVersion == "" {
		req.AppVersion = "1.0.0"
	}

	_, err := h.registry.Register(r.Context(), device.UpsertInput{
		UserID:     user.ID,
		DeviceID:   req.DeviceID,
		PushToken:  req.FCMToken,
		Name:       req.DeviceName,
		Platform:   req.Platform,
		AppVersion: req.AppVersion,
		Now:        time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, device.ErrMissingFields) {
			web.Fail(w, http.StatusBadRequest, "Required: fcm_token, device_id, platform", "MISSING_REQUIRED_FIELDS")
			return
		}
		web.Fail(w, http.StatusInternalServerError, "Could not register device", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Device registered successfully",
		"data": map[string]any{
			"device_registered":     true,
			"notifications_enabled": true,
		},
	})
}

func (h *Handler) updatePushToken(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		FCMToken string `json:"fcm_token"`
		DeviceID string `json:"device_id"`
	}
	if err := web.DecodeJSON(w, r, maxBodyBytes, &req); err != nil || req.FCMToken == "" || req.DeviceID == "" {
		web.Fail(w, http.StatusBadRequest, "Required: fcm_token, device_id", "MISSING_REQUIRED_FIELDS")
		return
	}

	_, err := h.registry.UpdatePushToken(r.Context(), time.Now().UTC(), user.ID, req.DeviceID, req.FCMToken)
	if err != nil {
		if errors.Is(err, device.ErrNotRegistered) {
			web.Fail(w, http.StatusNotFound, "Device not registered", "DEVICE_NOT_REGISTERED")
			return
		}
		web.Fail(w, http.StatusInternalServerError, "Could not update token", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Token updated",
	})
}

func (h *Handler) unregisterDevice(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	deviceID := r.Header.Get(headerDeviceID)
	if deviceID == "" {
		web.Fail(w, http.StatusBadRequest, "Device id is required in the X-Device-ID header", "MISSING_DEVICE_ID")
		return
	}

	// Unregistering an unknown device is not an error.
	_, _ = h.registry.Unregister(r.Context(), user.ID, deviceID)

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Device unregistered",
		"data": map[string]any{
			"notifications_disabled": true,
		},
	})
}

func (h *Handler) listDevices(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	views, err := h.registry.ListForUser(r.Context(), user.ID, r.Header.Get(headerDeviceID))
	if err != nil {
		web.Fail(w, http.StatusInternalServerError, "Could not list devices", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data":   map[string]any{"devices": views},
	})
}

// remoteLogout revokes every session the caller holds on the target device
// and drops the device registration. Scoping is owner-only: the path device
// id is always resolved against the caller's own user id.
func (h *Handler) remoteLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	targetDeviceID := r.PathValue("device_id")

	_, _ = h.registry.Unregister(r.Context(), user.ID, targetDeviceID)
	if _, err := h.sessions.RevokeByDevice(r.Context(), user.ID, targetDeviceID); err != nil {
		web.Fail(w, http.StatusInternalServerError, "Could not log out device", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Logged out from device",
	})
}
