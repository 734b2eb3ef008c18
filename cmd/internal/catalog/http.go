package catalog

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"corbit/cmd/identity"
	"corbit/cmd/internal/device"
	"corbit/cmd/internal/web"
)

// Authenticator resolves the user behind a request's bearer token.
// Implemented by the auth handler; declared here to keep the dependency
// pointing from catalog to auth wiring, not the other way.
type Authenticator interface {
	UserFromRequest(r *http.Request) (identity.User, error)
}

// Handler serves the catalog endpoints under /api/v1.
type Handler struct {
	store    *MemoryStore
	users    identity.Store
	registry *device.Registry
	auth     Authenticator
	log      *slog.Logger
}

// NewHandler wires the catalog handler.
func NewHandler(store *MemoryStore, users identity.Store, registry *device.Registry, auth Authenticator, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: store, users: users, registry: registry, auth: auth, log: log}
}

// Register mounts every catalog route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/dashboard/stats", h.dashboardStats)
	mux.HandleFunc("GET /api/v1/notifications", h.notifications)
	mux.HandleFunc("POST /api/v1/notifications/send-push", h.sendPush)

	mux.HandleFunc("POST /api/v1/sms/send", h.sendSMS)
	mux.HandleFunc("GET /api/v1/messages/sent", h.sentMessages)

	mux.HandleFunc("GET /api/v1/groups", h.listGroups)
	mux.HandleFunc("POST /api/v1/groups", h.createGroup)
	mux.HandleFunc("PUT /api/v1/groups/{id}", h.renameGroup)
	mux.HandleFunc("DELETE /api/v1/groups/{id}", h.deleteGroup)
	mux.HandleFunc("GET /api/v1/groups/{id}/contacts", h.groupContacts)

	mux.HandleFunc("GET /api/v1/senders", h.listSenders)
	mux.HandleFunc("POST /api/v1/senders/request", h.requestSender)

	mux.HandleFunc("GET /api/v1/balance", h.balance)
	mux.HandleFunc("GET /api/v1/packages", h.listPackages)
	mux.HandleFunc("POST /api/v1/packages/purchase", h.purchasePackage)

	mux.HandleFunc("GET /api/v1/operations", h.operations)

	mux.HandleFunc("POST /api/v1/support/send", h.supportSend)
	mux.HandleFunc("GET /api/v1/support/messages", h.supportMessages)

	mux.HandleFunc("POST /api/v1/webhooks/message-status", h.webhookMessageStatus)
	mux.HandleFunc("POST /api/v1/webhooks/balance-update", h.webhookBalanceUpdate)
}

// requireUser authenticates the request or writes the 401 envelope.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (identity.User, bool) {
	user, err := h.auth.UserFromRequest(r)
	if err != nil {
		web.Fail(w, http.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED")
		return identity.User{}, false
	}
	return user, true
}

func (h *Handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data": map[string]any{
			"sent_messages":     h.store.MessageCountForUser(user.ID),
			"groups_count":      len(h.store.GroupsForUser(user.ID)),
			"balance":           user.Balance,
			"recent_activities": h.store.RecentOperations(user.ID, 5),
		},
	})
}

func (h *Handler) notifications(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data": map[string]any{
			"notification": RandomNotification(time.Now().UTC()),
		},
	})
}

func (h *Handler) sendPush(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int    `json:"user_id"`
		Title  string `json:"title"`
		Body   string `json:"body"`
	}
	if err := web.DecodeJSON(w, r, 1<<20, &req); err != nil {
		web.Fail(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	views, err := h.registry.ListForUser(r.Context(), req.UserID, "")
	if err != nil || len(views) == 0 {
		web.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  true,
			"message": "No registered devices for user",
			"data":    map[string]any{"sent_count": 0},
		})
		return
	}

	h.registry.NotifyUser(r.Context(), req.UserID, req.Title, req.Body)

	targets := make([]map[string]string, 0, len(views))
	for _, v := range views {
		targets = append(targets, map[string]string{
			"device_name": v.DeviceName,
			"platform":    v.Platform,
		})
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Notification sent to " + strconv.Itoa(len(views)) + " devices",
		"data": map[string]any{
			"sent_count": len(views),
			"devices":    targets,
		},
	})
}

func (h *Handler) sendSMS(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Sender     string          `json:"sender"`
		Recipients recipientsField `json:"recipients"`
		Message    string          `json:"message"`
	}
	if err := web.DecodeJSON(w, r, 1<<20, &req); err != nil {
		web.Fail(w, http.StatusBadRequest, "Please provide all required fields", "")
		return
	}
	if req.Sender == "" || len(req.Recipients) == 0 || req.Message == "" {
		web.Fail(w, http.StatusBadRequest, "Please provide all required fields", "")
		return
	}

	cost := len(req.Recipients)
	if user.Balance < cost {
		web.Fail(w, http.StatusBadRequest, "Insufficient balance", "")
		return
	}

	remaining, err := h.users.AdjustBalance(r.Context(), user.ID, -cost)
	if err != nil {
		web.Fail(w, http.StatusBadRequest, "Insufficient balance", "")
		return
	}

	now := time.Now().UTC()
	h.store.RecordMessages(user.ID, req.Sender, req.Recipients, req.Message, now)

	recipients := make([]Recipient, 0, cost)
	for _, p := range req.Recipients {
		recipients = append(recipients, Recipient{Phone: p})
	}
	h.store.AddOperation(user.ID, "sms", "Send messages",
		strconv.Itoa(cost)+" messages sent", "success", now, OperationExtra{
			MessageContent: req.Message,
			Recipients:     recipients,
		})

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": strconv.Itoa(cost) + " messages sent successfully",
		"data": map[string]any{
			"sent_count":        cost,
			"remaining_balance": remaining,
		},
	})
}

func (h *Handler) sentMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	f := MessageFilter{
		Status: q.Get("status"),
		Search: q.Get("search"),
	}
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.From = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			f.To = t
		}
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data":   map[string]any{"messages": h.store.MessagesForUser(user.ID, f)},
	})
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data":   map[string]any{"groups": h.store.GroupsForUser(user.ID)},
	})
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Name     string    `json:"name"`
		Contacts []Contact `json:"contacts"`
	}
	if err := web.DecodeJSON(w, r, 1<<20, &req); err != nil || req.Name == "" {
		web.Fail(w, http.StatusBadRequest, "Please provide a group name", "")
		return
	}

	g := h.store.CreateGroup(user.ID, req.Name, req.Contacts)
	h.store.AddOperation(user.ID, "group", "Create group",
		"Group \""+req.Name+"\" created", "success", time.Now().UTC(), OperationExtra{})

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Group created successfully",
		"data":    map[string]any{"group": g},
	})
}

func (h *Handler) renameGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		web.Fail(w, http.StatusNotFound, "Group not found", "")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := web.DecodeJSON(w, r, 1<<20, &req); err != nil {
		web.Fail(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	g, err := h.store.RenameGroup(user.ID, id, req.Name)
	if err != nil {
		web.Fail(w, http.StatusNotFound, "Group not found", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Group updated successfully",
		"data":    map[string]any{"group": g},
	})
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		web.Fail(w, http.StatusNotFound, "Group not found", "")
		return
	}
	if err := h.store.DeleteGroup(user.ID, id); err != nil {
		web.Fail(w, http.StatusNotFound, "Group not found", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Group deleted successfully",
	})
}

func (h *Handler) groupContacts(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		web.Fail(w, http.StatusNotFound, "Group not found", "")
		return
	}
	if _, err := h.store.Group(user.ID, id); err != nil {
		web.Fail(w, http.StatusNotFound, "Group not found", "")
		return
	}

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data":   map[string]any{"contacts": h.store.ContactsForGroup(id)},
	})
}

func (h *Handler) listSenders(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data":   map[string]any{"senders": h.store.SendersForUser(user.ID)},
	})
}

func (h *Handler) requestSender(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	in, err := decodeSenderRequest(w, r)
	if err != nil || in.SenderName == "" || in.SenderType == "" {
		web.Fail(w, http.StatusBadRequest, "Please provide all required fields", "")
		return
	}

	req := h.store.AddSenderRequest(user.ID, in, time.Now().UTC())
	h.store.AddOperation(user.ID, "sender", "Request sender name",
		"Sender name \""+in.SenderName+"\" requested", "success", time.Now().UTC(), OperationExtra{})

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Request submitted successfully",
		"data": map[string]any{
			"request_id":  req.ID,
			"payment_url": "https://payment-gateway.example.com/pay/" + strconv.Itoa(req.ID),
		},
	})
}

// recipientsField accepts either a JSON array of phone numbers or a single
// phone number as a bare string.
type recipientsField []string

func (f *recipientsField) UnmarshalJSON(b []byte) error {
	var many []string
	if err := json.Unmarshal(b, &many); err == nil {
		*f = many
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*f = recipientsField{one}
	return nil
}

// decodeSenderRequest accepts either JSON or the multipart form the mobile
// client uses for attaching registration documents. Uploaded files are
// accepted and discarded.
func decodeSenderRequest(w http.ResponseWriter, r *http.Request) (SenderRequestInput, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return SenderRequestInput{}, err
		}
		return SenderRequestInput{
			SenderName:         r.FormValue("sender_name"),
			SenderType:         r.FormValue("sender_type"),
			OrganizationType:   r.FormValue("organization_type"),
			CommercialRegister: r.FormValue("commercial_register"),
			OrganizationName:   r.FormValue("organization_name"),
			ManagerName:        r.FormValue("manager_name"),
			IDNumber:           r.FormValue("id_number"),
			Position:           r.FormValue("position"),
			Phone:              r.FormValue("phone"),
			Email:              r.FormValue("email"),
		}, nil
	}

	var in SenderRequestInput
	err := web.DecodeJSON(w, r, 1<<20, &in)
	return in, err
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data": map[string]any{
			"balance":                  user.Balance,
			"subscription_expiry_date": "2025-12-31",
		},
	})
}

func (h *Handler) listPackages(w http.ResponseWriter, r *http.Request) {
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data":   map[string]any{"packages": h.store.Packages()},
	})
}

func (h *Handler) purchasePackage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		PackageID int `json:"package_id"`
	}
	if err := web.DecodeJSON(w, r, 1<<20, &req); err != nil {
		web.Fail(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	pkg, err := h.store.PackageByID(req.PackageID)
	if err != nil {
		web.Fail(w, http.StatusNotFound, "Package not found", "")
		return
	}

	// Credit is granted immediately; real payment settles out of band.
	newBalance, err := h.users.AdjustBalance(r.Context(), user.ID, pkg.Messages)
	if err != nil {
		web.Fail(w, http.StatusNotFound, "Package not found", "")
		return
	}

	h.store.AddOperation(user.ID, "recharge", "Top up balance",
		strconv.Itoa(pkg.Messages)+" messages added", "success", time.Now().UTC(), OperationExtra{})
	h.registry.NotifyUser(r.Context(), user.ID, "Top-up complete",
		strconv.Itoa(pkg.Messages)+" messages were added to your account")

	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Package purchased successfully",
		"data": map[string]any{
			"new_balance": newBalance,
			"payment_url": "https://payment-gateway.example.com/pay/pkg_" + strconv.Itoa(req.PackageID),
		},
	})
}

func (h *Handler) operations(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data":   map[string]any{"operations": h.store.OperationsForUser(user.ID)},
	})
}

func (h *Handler) supportSend(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	_ = web.DecodeJSON(w, r, 1<<20, &req)

	now := time.Now().UTC()
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Message sent",
		"data": map[string]any{
			"message_id": now.UnixMilli(),
			"sent_at":    now,
		},
	})
}

func (h *Handler) supportMessages(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status": true,
		"data":   map[string]any{"messages": SupportTranscript()},
	})
}

func (h *Handler) webhookMessageStatus(w http.ResponseWriter, r *http.Request) {
	h.ackWebhook(w, r, "webhook.message_status")
}

func (h *Handler) webhookBalanceUpdate(w http.ResponseWriter, r *http.Request) {
	h.ackWebhook(w, r, "webhook.balance_update")
}

// ackWebhook logs the provider callback and acknowledges it; processing is
// out of scope for the simulation.
func (h *Handler) ackWebhook(w http.ResponseWriter, r *http.Request, event string) {
	var payload map[string]any
	_ = web.DecodeJSON(w, r, 1<<20, &payload)

	h.log.LogAttrs(r.Context(), slog.LevelInfo, event,
		slog.Any("payload", payload),
	)
	web.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   true,
		"received": true,
	})
}
