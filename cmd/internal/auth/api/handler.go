package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"corbit/cmd/identity"
	"corbit/cmd/internal/auth/otp"
	"corbit/cmd/internal/auth/session"
	"corbit/cmd/internal/catalog"
	"corbit/cmd/internal/device"
	"corbit/cmd/security/password"
)

const (
	headerDeviceID = "X-Device-ID"
	maxBodyBytes   = 1 << 20
)

// Handler wires the auth, user, and device endpoints to the stores that
// back them.
type Handler struct {
	log      *slog.Logger
	users    identity.Store
	sessions *session.Manager
	otp      *otp.Engine
	registry *device.Registry
	catalog  *catalog.MemoryStore
	pwd      password.Config
}

// NewHandler constructs the session facade handler.
func NewHandler(
	log *slog.Logger,
	users identity.Store,
	sessions *session.Manager,
	otpEngine *otp.Engine,
	registry *device.Registry,
	cat *catalog.MemoryStore,
	pwd password.Config,
) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:      log,
		users:    users,
		sessions: sessions,
		otp:      otpEngine,
		registry: registry,
		catalog:  cat,
		pwd:      pwd,
	}
}

// Register mounts the auth, user, and device routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/auth/login", h.login)
	mux.HandleFunc("POST /api/v1/auth/verify-login-otp", h.verifyLoginOTP)
	mux.HandleFunc("POST /api/v1/auth/resend-otp", h.resendOTP)
	mux.HandleFunc("POST /api/v1/auth/register", h.register)
	mux.HandleFunc("POST /api/v1/auth/verify-register-otp", h.verifyRegisterOTP)
	mux.HandleFunc("POST /api/v1/auth/forgot-password", h.forgotPassword)
	mux.HandleFunc("POST /api/v1/auth/reset-password", h.resetPassword)
	mux.HandleFunc("POST /api/v1/auth/logout", h.logout)

	mux.HandleFunc("GET /api/v1/user/profile", h.getProfile)
	mux.HandleFunc("PUT /api/v1/user/profile", h.updateProfile)
	mux.HandleFunc("POST /api/v1/user/change-password", h.changePassword)
	mux.HandleFunc("POST /api/v1/user/2fa/toggle", h.toggleTwoFactor)

	mux.HandleFunc("POST /api/v1/devices/register", h.registerDevice)
	mux.HandleFunc("PUT /api/v1/devices/update-fcm", h.updatePushToken)
	mux.HandleFunc("DELETE /api/v1/devices/unregister", h.unregisterDevice)
	mux.HandleFunc("GET /api/v1/devices", h.listDevices)
	mux.HandleFunc("DELETE /api/v1/devices/{device_id}/logout", h.remoteLogout)
}

// UserFromRequest resolves the caller behind a request's bearer token and,
// as a side effect, touches the device named by the X-Device-ID header.
// It satisfies catalog.Authenticator.
func (h *Handler) UserFromRequest(r *http.Request) (identity.User, error) {
	user, _, err := h.authenticate(r)
	return user, err
}

// authenticate resolves the request's session and owning user.
func (h *Handler) authenticate(r *http.Request) (identity.User, session.Session, error) {
	token := bearerToken(r)
	if token == "" {
		return identity.User{}, session.Session{}, session.ErrNotFound
	}

	now := time.Now().UTC()
	sess, err := h.sessions.Authenticate(r.Context(), now, token)
	if err != nil {
		return identity.User{}, session.Session{}, err
	}

	user, err := h.users.FindByID(r.Context(), sess.UserID)
	if err != nil {
		// Session outlived its user; treat as unauthenticated.
		if errors.Is(err, identity.ErrNotFound) {
			return identity.User{}, session.Session{}, session.ErrNotFound
		}
		return identity.User{}, session.Session{}, err
	}

	if deviceID := r.Header.Get(headerDeviceID); deviceID != "" {
		h.registry.Touch(r.Context(), now, user.ID, deviceID)
	}
	return user, sess, nil
}
