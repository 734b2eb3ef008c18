package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"corbit/cmd/identity"
	"corbit/cmd/internal/auth/otp"
	"corbit/cmd/internal/catalog"
	"corbit/cmd/internal/metrics"
	"corbit/cmd/internal/web"
	"corbit/cmd/security/password"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
		RememberMe bool   `json:"remember_me"`
		DeviceID   string `json:"device_id"`
	}
	if err := web.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		metrics.Logins.WithLabelValues("invalid_request").Inc()
		web.Fail(w, http.StatusBadRequest, "Please enter your username and password", "MISSING_CREDENTIALS")
		return
	}
	if req.Identifier == "" || req.Password == "" {
		metrics.Logins.WithLabelValues("invalid_request").Inc()
		web.Fail(w, http.StatusBadRequest, "Please enter your username and password", "MISSING_CREDENTIALS")
		return
	}
	if req.DeviceID == "" {
		metrics.Logins.WithLabelValues("invalid_request").Inc()
		web.Fail(w, http.StatusBadRequest, "Device id is required", "MISSING_DEVICE_ID")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	user, err := h.users.FindByIdentifier(ctx, req.Identifier)
	if err == nil {
		var match bool
		match, err = h.pwd.Verify(user.PasswordHash, req.Password)
		if err == nil && !match {
			err = identity.ErrNotFound
		}
	}
	if err != nil {
		metrics.Logins.WithLabelValues("invalid_credentials").Inc()
		h.log.LogAttrs(ctx, slog.LevelInfo, "auth.login.fail",
			slog.String("identifier", req.Identifier),
		)
		web.Fail(w, http.StatusUnauthorized, "Incorrect username or password", "INVALID_CREDENTIALS")
		return
	}

	if user.TwoFactorEnabled {
		_, err := h.otp.Issue(ctx, now, req.Identifier, otp.PurposeLogin, otp.Payload{
			UserID:     user.ID,
			DeviceID:   req.DeviceID,
			RememberMe: req.RememberMe,
		})
		if err != nil {
			web.Fail(w, http.StatusInternalServerError, "Could not send verification code", "")
			return
		}

		metrics.Logins.WithLabelValues("otp_pending").Inc()
		masked := maskPhone(user.Phone)
		web.WriteJSON(w, http.StatusOK, map[string]any{
			"status":       true,
			"requires_otp": true,
			"message":      "Verification code sent to " + masked,
			"data": map[string]any{
				"otp_sent_to":    masked,
				"otp_expires_in": h.otp.TTLSeconds(),
			},
		})
		return
	}

	issued, err := h.sessions.Issue(ctx, now, user.ID, req.DeviceID, req.RememberMe)
	if err != nil {
		web.Fail(w, http.StatusInternalServerError, "Could not create session", "")
		return
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":       true,
		"requires_otp": false,
		"message":      "Logged in successfully",
		"data":         h.sessionPayloadFor(user, issued.Token, issued.Session.ExpiresAt),
	})
}

func (h *Handler) verifyLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		OTP        string `json:"otp"`
		DeviceID   string `json:"device_id"`
		RememberMe *bool  `json:"remember_me"`
	}
	if err := web.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		web.Fail(w, http.StatusBadRequest, "No verification code was requested", "NO_OTP_REQUESTED")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	payload, err := h.otp.Verify(ctx, now, req.Identifier, otp.PurposeLogin, req.OTP)
	if err != nil {
		h.failOTP(w, err, "NO_OTP_REQUESTED", "No verification code was requested")
		return
	}

	user, err := h.users.FindByID(ctx, payload.UserID)
	if err != nil {
		web.Fail(w, http.StatusUnauthorized, "Incorrect username or password", "INVALID_CREDENTIALS")
		return
	}

	// Overrides win over the values captured at login time.
	deviceID := payload.DeviceID
	if req.DeviceID != "" {
		deviceID = req.DeviceID
	}
	rememberMe := payload.RememberMe
	if req.RememberMe != nil {
		rememberMe = *req.RememberMe
	}

	issued, err := h.sessions.Issue(ctx, now, user.ID, deviceID, rememberMe)
	if err != nil {
		web.Fail(w, http.StatusInternalServerError, "Could not create session", "")
		return
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Logged in successfully",
		"data":    h.sessionPayloadFor(user, issued.Token, issued.Session.ExpiresAt),
	})
}

func (h *Handler) resendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if err := web.DecodeJSON(w, r, maxBodyBytes, &req); err != nil || req.Identifier == "" {
		web.Fail(w, http.StatusBadRequest, "No verification code was requested", "")
		return
	}

	if _, err := h.otp.Resend(r.Context(), time.Now().UTC(), req.Identifier); err != nil {
		web.Fail(w, http.StatusBadRequest, "No verification code was requested", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Verification code resent",
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := web.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		web.Fail(w, http.StatusBadRequest, "Please provide all required fields", "")
		return
	}
	if req.Name == "" || req.Phone == "" || req.Password == "" {
		web.Fail(w, http.StatusBadRequest, "Please provide all required fields", "")
		return
	}

	ctx := r.Context()

	if _, err := h.users.FindByPhone(ctx, req.Phone); err == nil {
		web.Fail(w, http.StatusBadRequest, "Phone number already registered", "DUPLICATE_PHONE")
		return
	}

	// The password is hashed before it enters the pending challenge; the
	// plain credential is never stored server-side.
	hash, err := h.pwd.Hash(req.Password)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
			web.Fail(w, http.StatusBadRequest, "Password does not meet the length requirements", "")
			return
		}
		web.Fail(w, http.StatusInternalServerError, "Could not process registration", "")
		return
	}

	_, err = h.otp.Issue(ctx, time.Now().UTC(), req.Phone, otp.PurposeRegister, otp.Payload{
		Name:         req.Name,
		PasswordHash: hash,
	})
	if err != nil {
		web.Fail(w, http.StatusInternalServerError, "Could not send verification code", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Verification code sent",
	})
}

func (h *Handler) verifyRegisterOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := web.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		web.Fail(w, http.StatusBadRequest, "No verification code was requested", "NO_OTP_REQUESTED")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	payload, err := h.otp.Verify(ctx, now, req.Phone, otp.PurposeRegister, req.OTP)
	if err != nil {
		h.failOTP(w, err, "NO_OTP_REQUESTED", "No verification code was requested")
		return
	}

	user, err := h.users.Create(ctx, identity.CreateUserInput{
		Name:         payload.Name,
		Username:     "user_" + strconv.FormatInt(now.UnixMilli(), 10),
		Phone:        req.Phone,
		PasswordHash: payload.PasswordHash,
		Now:          now,
	})
	if err != nil {
		if identity.IsConflict(err) {
			web.Fail(w, http.StatusBadRequest, "Phone number already registered", "DUPLICATE_PHONE")
			return
		}
		web.Fail(w, http.StatusInternalServerError, "Could not create account", "")
		return
	}

	// Auto-login after registration.
	issued, err := h.sessions.Issue(ctx, now, user.ID, "", false)
	if err != nil {
		web.Fail(w, http.StatusInternalServerError, "Could not create session", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Account created successfully",
		"data": map[string]any{
			"token":    issued.Token,
			"user":     toUserPayload(user),
			"senders":  []catalog.Sender{},
			"groups":   []catalog.Group{},
			"packages": h.catalog.Packages(),
			"stats":    catalog.Stats{},
		},
	})
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := web.DecodeJSON(w, r, maxBodyBytes, &req); err != nil || req.Phone == "" {
		web.Fail(w, http.StatusNotFound, "Phone number not registered", "")
		return
	}

	ctx := r.Context()
	user, err := h.users.FindByPhone(ctx, req.Phone)
	if err != nil {
		web.Fail(w, http.StatusNotFound, "Phone number not registered", "")
		return
	}

	_, err = h.otp.Issue(ctx, time.Now().UTC(), req.Phone, otp.PurposeReset, otp.Payload{
		UserID: user.ID,
	})
	if err != nil {
		web.Fail(w, http.StatusInternalServerError, "Could not send verification code", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Verification code sent",
	})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone       string `json:"phone"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if err := web.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		web.Fail(w, http.StatusBadRequest, "No password reset was requested", "")
		return
	}

	ctx := r.Context()
	payload, err := h.otp.Verify(ctx, time.Now().UTC(), req.Phone, otp.PurposeReset, req.OTP)
	if err != nil {
		h.failOTP(w, err, "", "No password reset was requested")
		return
	}

	hash, err := h.pwd.Hash(req.NewPassword)
	if err != nil {
		web.Fail(w, http.StatusBadRequest, "Password does not meet the length requirements", "")
		return
	}
	if err := h.users.SetPassword(ctx, payload.UserID, hash); err != nil {
		web.Fail(w, http.StatusInternalServerError, "Could not change password", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Password changed successfully",
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		web.Fail(w, http.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	sess, err := h.sessions.Authenticate(ctx, now, token)
	if err != nil {
		web.Fail(w, http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN")
		return
	}

	var req struct {
		LogoutAllDevices bool `json:"logout_all_devices"`
	}
	_ = web.DecodeJSON(w, r, maxBodyBytes, &req)

	devicesLoggedOut := 0
	if req.LogoutAllDevices {
		removed, err := h.registry.RemoveAllForUser(ctx, sess.UserID)
		if err == nil {
			devicesLoggedOut = len(removed)
		}
		if _, err := h.sessions.RevokeAllForUser(ctx, sess.UserID); err != nil {
			web.Fail(w, http.StatusInternalServerError, "Could not log out", "")
			return
		}
	} else {
		if deviceID := r.Header.Get(headerDeviceID); deviceID != "" {
			if _, err := h.registry.Unregister(ctx, sess.UserID, deviceID); err == nil {
				devicesLoggedOut = 1
			}
		}
		if err := h.sessions.Revoke(ctx, token); err != nil {
			web.Fail(w, http.StatusInternalServerError, "Could not log out", "")
			return
		}
	}

	message := "Logged out successfully"
	if req.LogoutAllDevices {
		message = "Logged out from all devices"
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": message,
		"data": map[string]any{
			"devices_logged_out": devicesLoggedOut,
		},
	})
}

// failOTP maps challenge-verification failures onto the client error codes.
func (h *Handler) failOTP(w http.ResponseWriter, err error, noChallengeCode, noChallengeMsg string) {
	switch {
	case errors.Is(err, otp.ErrExpired):
		web.Fail(w, http.StatusBadRequest, "Verification code expired", "OTP_EXPIRED")
	case errors.Is(err, otp.ErrInvalidCode):
		web.Fail(w, http.StatusBadRequest, "Invalid verification code", "INVALID_OTP")
	default:
		web.Fail(w, http.StatusBadRequest, noChallengeMsg, noChallengeCode)
	}
}
