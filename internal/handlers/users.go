package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/microblog/internal/platform/api"
	"github.com/example/microblog/internal/store"
)

// authorView is the public projection of a user. Email and display name
// never leave the service through read endpoints.
type authorView struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
}

func newAuthorView(u store.User) (authorView, error) {
	if u.Username == nil || *u.Username == "" {
		return authorView{}, errNoUsername
	}
	av := authorView{ID: u.ID, Username: *u.Username}
	if u.ProfileImageURL != nil {
		av.ProfileImageURL = *u.ProfileImageURL
	}
	return av, nil
}

// GetUserByUsername handles GET /v1/users/by-username/{username} — the
// profile slug lookup.
func GetUserByUsername(users store.UserStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(chi.URLParam(r, "username"))
		if username == "" {
			api.BadRequest(w, "MISSING_USERNAME", "username is required", "", nil)
			return
		}

		u, err := users.GetByUsername(r.Context(), username)
		if errors.Is(err, store.ErrNotFound) {
			api.NotFound(w, "NOT_FOUND", "user not found", "")
			return
		}
		if err != nil {
			log.Error("get user by username failed", zap.Error(err))
			api.Internal(w, "")
			return
		}

		av, err := newAuthorView(u)
		if err != nil {
			log.Error("user has no username", zap.String("user_id", u.ID))
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, av)
	}
}
