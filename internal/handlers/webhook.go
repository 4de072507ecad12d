package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/microblog/internal/clerk"
	"github.com/example/microblog/internal/platform/api"
	"github.com/example/microblog/internal/publisher"
	"github.com/example/microblog/internal/store"
)

const maxWebhookBodyBytes = 65536

// WebhookHandler reconciles local users with identity-provider lifecycle
// events delivered as signed webhooks.
type WebhookHandler struct {
	secret string
	log    *zap.Logger
	users  store.UserStore
	pub    *publisher.Publisher
}

func NewWebhookHandler(secret string, log *zap.Logger, users store.UserStore, pub *publisher.Publisher) *WebhookHandler {
	return &WebhookHandler{
		secret: secret,
		log:    log,
		users:  users,
		pub:    pub,
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		api.BadRequest(w, "READ_ERROR", "cannot read body", "", nil)
		return
	}

	// Signature is always verified — CLERK_WEBHOOK_SECRET is required at startup.
	if err := clerk.Verify(body, r.Header, h.secret); err != nil {
		h.log.Warn("webhook signature verification failed", zap.Error(err))
		api.BadRequest(w, "INVALID_SIGNATURE", "webhook signature verification failed", "", nil)
		return
	}

	var event clerk.Event
	if err := json.Unmarshal(body, &event); err != nil {
		api.BadRequest(w, "INVALID_JSON", "cannot parse event", "", nil)
		return
	}

	switch event.Type {
	case clerk.EventUserCreated:
		h.handleUserCreated(w, r, event)
	case clerk.EventUserDeleted:
		h.handleUserDeleted(w, r, event)
	default:
		// Unrecognised event types are acknowledged for forward compatibility.
		h.log.Debug("ignored event type", zap.String("type", event.Type))
		api.WriteJSON(w, http.StatusOK, struct{}{})
	}
}

func (h *WebhookHandler) handleUserCreated(w http.ResponseWriter, r *http.Request, event clerk.Event) {
	var data clerk.UserData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		api.BadRequest(w, "INVALID_JSON", "cannot parse user data", "", nil)
		return
	}
	if data.ID == "" {
		api.BadRequest(w, "MISSING_USER_ID", "user id is required", "", nil)
		return
	}

	// A created user without a resolvable primary email is malformed, not retried.
	email, ok := data.PrimaryEmail()
	if !ok {
		h.log.Warn("user.created without resolvable primary email", zap.String("user_id", data.ID))
		api.BadRequest(w, "MISSING_PRIMARY_EMAIL", "primary email address not found", "", nil)
		return
	}

	// The provider formats display names as "first last"; the separator is
	// kept even when one part is empty.
	name := data.FirstName + " " + data.LastName

	_, err := h.users.Create(r.Context(), store.User{
		ID:              data.ID,
		Email:           email,
		Name:            &name,
		Username:        data.Username,
		ProfileImageURL: data.ProfileImageURL,
	})
	if errors.Is(err, store.ErrDuplicate) {
		h.log.Warn("user already exists", zap.String("user_id", data.ID))
		api.Conflict(w, "DUPLICATE_USER", "user already exists", "", nil)
		return
	}
	if err != nil {
		h.log.Error("create user failed", zap.Error(err), zap.String("user_id", data.ID))
		api.Internal(w, "")
		return
	}

	h.log.Info("user created", zap.String("user_id", data.ID))
	h.publish(r, publisher.SubjectUserCreated, publisher.FeedEvent{Type: clerk.EventUserCreated, UserID: data.ID})
	api.WriteJSON(w, http.StatusOK, struct{}{})
}

func (h *WebhookHandler) handleUserDeleted(w http.ResponseWriter, r *http.Request, event clerk.Event) {
	var data clerk.DeletedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		api.BadRequest(w, "INVALID_JSON", "cannot parse deletion data", "", nil)
		return
	}

	// Deleting a user that never synced is fine; the provider may retry.
	n, err := h.users.DeleteByID(r.Context(), data.ID)
	if err != nil {
		h.log.Error("delete user failed", zap.Error(err), zap.String("user_id", data.ID))
		api.Internal(w, "")
		return
	}

	h.log.Info("user deleted", zap.String("user_id", data.ID), zap.Int64("rows", n))
	h.publish(r, publisher.SubjectUserDeleted, publisher.FeedEvent{Type: clerk.EventUserDeleted, UserID: data.ID})
	api.WriteJSON(w, http.StatusOK, struct{}{})
}

// publish is best-effort: invalidation events never fail a webhook delivery.
func (h *WebhookHandler) publish(r *http.Request, subject string, evt publisher.FeedEvent) {
	if h.pub == nil {
		return
	}
	if err := h.pub.Publish(r.Context(), subject, evt); err != nil {
		h.log.Warn("feed event publish failed", zap.Error(err), zap.String("subject", subject))
	}
}
