package authapi

import (
	"net/http"

	"corbit/cmd/identity"
	"corbit/cmd/internal/web"
)

// requireUser authenticates the request or writes the 401 envelope.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (identity.User, bool) {
	user, _, err := h.authenticate(r)
	if err != nil {
		web.Fail(w, http.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED")
		return identity.User{}, false
	}
	return user, true
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data":   map[string]any{"user": toUserPayload(user)},
	})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Name         string `json:"name"`
		Email        string `json:"email"`
		Phone        string `json:"phone"`
		Gender       string `json:"gender"`
		City         string `json:"city"`
		Organization string `json:"organization"`
	}
	if err := web.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		web.Fail(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	// Empty fields are left untouched.
	update := identity.ProfileUpdate{
		Name:         optional(req.Name),
		Email:        optional(req.Email),
		Phone:        optional(req.Phone),
		Gender:       optional(req.Gender),
		City:         optional(req.City),
		Organization: optional(req.Organization),
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, update)
	if err != nil {
		web.Fail(w, http.StatusInternalServerError, "Could not update profile", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Profile updated successfully",
		"data":    map[string]any{"user": toUserPayload(updated)},
	})
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := web.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		web.Fail(w, http.StatusBadRequest, "Current password is incorrect", "")
		return
	}

	match, err := h.pwd.Verify(user.PasswordHash, req.CurrentPassword)
	if err != nil || !match {
		web.Fail(w, http.StatusBadRequest, "Current password is incorrect", "")
		return
	}

	hash, err := h.pwd.Hash(req.NewPassword)
	if err != nil {
		web.Fail(w, http.StatusBadRequest, "Password does not meet the length requirements", "")
		return
	}
	if err := h.users.SetPassword(r.Context(), user.ID, hash); err != nil {
		web.Fail(w, http.StatusInternalServerError, "Could not change password", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Password changed successfully",
	})
}

func (h *Handler) toggleTwoFactor(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	updated, err := h.users.ToggleTwoFactor(r.Context(), user.ID)
	if err != nil {
		web.Fail(w, http.StatusInternalServerError, "Could not update two-factor setting", "")
		return
	}

	message := "Two-factor authentication disabled"
	if updated.TwoFactorEnabled {
		message = "Two-factor authentication enabled"
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": message,
		"data":    map[string]any{"two_factor_enabled": updated.TwoFactorEnabled},
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
