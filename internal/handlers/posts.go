package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/microblog/internal/auth"
	"github.com/example/microblog/internal/platform/api"
	"github.com/example/microblog/internal/publisher"
	"github.com/example/microblog/internal/ratelimit"
	"github.com/example/microblog/internal/store"
)

// maxContentLen is the post length cap in characters.
const maxContentLen = 280

type createPostRequest struct {
	Content string `json:"content"`
}

// feedItem is a post joined with the public view of its author.
type feedItem struct {
	Post   store.Post `json:"post"`
	Author authorView `json:"author"`
}

// errNoUsername marks a synced user record missing the handle needed for any
// user-facing listing. Authors are expected to have one by convention, so
// this is an invariant violation rather than a not-found.
var errNoUsername = errors.New("user has no username")

// ListPosts handles GET /v1/posts — the global feed, newest first.
func ListPosts(posts store.PostStore, users store.UserStore, limit int, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := posts.List(r.Context(), limit)
		if err != nil {
			log.Error("list posts failed", zap.Error(err))
			api.Internal(w, "")
			return
		}

		ids := make([]string, 0, len(all))
		seen := make(map[string]struct{}, len(all))
		for _, p := range all {
			if _, ok := seen[p.AuthorID]; !ok {
				seen[p.AuthorID] = struct{}{}
				ids = append(ids, p.AuthorID)
			}
		}

		authors, err := users.GetByIDs(r.Context(), ids)
		if err != nil {
			log.Error("resolve authors failed", zap.Error(err))
			api.Internal(w, "")
			return
		}

		items := make([]feedItem, 0, len(all))
		for _, p := range all {
			u, ok := authors[p.AuthorID]
			if !ok {
				log.Error("post author missing", zap.String("post_id", p.ID), zap.String("author_id", p.AuthorID))
				api.Internal(w, "")
				return
			}
			av, err := newAuthorView(u)
			if err != nil {
				log.Error("post author has no username", zap.String("author_id", p.AuthorID))
				api.Internal(w, "")
				return
			}
			items = append(items, feedItem{Post: p, Author: av})
		}
		api.WriteJSON(w, http.StatusOK, items)
	}
}

// GetPost handles GET /v1/posts/{post_id}.
func GetPost(posts store.PostStore, users store.UserStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID := strings.TrimSpace(chi.URLParam(r, "post_id"))
		if postID == "" {
			api.BadRequest(w, "MISSING_ID", "post_id is required", "", nil)
			return
		}

		p, err := posts.GetByID(r.Context(), postID)
		if errors.Is(err, store.ErrNotFound) {
			api.NotFound(w, "NOT_FOUND", "post not found", "")
			return
		}
		if err != nil {
			log.Error("get post failed", zap.Error(err))
			api.Internal(w, "")
			return
		}

		u, err := users.GetByID(r.Context(), p.AuthorID)
		if errors.Is(err, store.ErrNotFound) {
			api.NotFound(w, "NOT_FOUND", "post not found", "")
			return
		}
		if err != nil {
			log.Error("resolve author failed", zap.Error(err))
			api.Internal(w, "")
			return
		}

		av, err := newAuthorView(u)
		if err != nil {
			log.Error("post author has no username", zap.String("author_id", p.AuthorID))
			api.Internal(w, "")
			return
		}
		api.WriteJSON(w, http.StatusOK, feedItem{Post: p, Author: av})
	}
}

// ListPostsByAuthor handles GET /v1/users/{user_id}/posts.
func ListPostsByAuthor(posts store.PostStore, users store.UserStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(chi.URLParam(r, "user_id"))
		if userID == "" {
			api.BadRequest(w, "MISSING_ID", "user_id is required", "", nil)
			return
		}

		u, err := users.GetByID(r.Context(), userID)
		if errors.Is(err, store.ErrNotFound) {
			api.NotFound(w, "NOT_FOUND", "user not found", "")
			return
		}
		if err != nil {
			log.Error("get user failed", zap.Error(err))
			api.Internal(w, "")
			return
		}

		av, err := newAuthorView(u)
		if err != nil {
			log.Error("author has no username", zap.String("author_id", userID))
			api.Internal(w, "")
			return
		}

		authored, err := posts.ListByAuthor(r.Context(), userID)
		if err != nil {
			log.Error("list posts by author failed", zap.Error(err))
			api.Internal(w, "")
			return
		}

		// An author with no posts is an empty feed, not an error.
		items := make([]feedItem, 0, len(authored))
		for _, p := range authored {
			items = append(items, feedItem{Post: p, Author: av})
		}
		api.WriteJSON(w, http.StatusOK, items)
	}
}

// CreatePost handles POST /v1/posts.
func CreatePost(posts store.PostStore, limiter ratelimit.Limiter, pub *publisher.Publisher, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := auth.CallerIDFromContext(r.Context())
		if !ok || callerID == "" {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", "")
			return
		}

		var req createPostRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", "", nil)
			return
		}

		n := utf8.RuneCountInString(req.Content)
		if n < 1 || n > maxContentLen {
			api.Unprocessable(w, "VALIDATION", "content must be between 1 and 280 characters", "",
				map[string]any{"field": "content"})
			return
		}

		allowed, err := limiter.Allow(r.Context(), callerID)
		if err != nil {
			log.Error("rate limit check failed", zap.Error(err))
			api.Internal(w, "")
			return
		}
		if !allowed {
			api.RateLimited(w, "RATE_LIMITED", "too many posts, slow down", "", nil)
			return
		}

		created, err := posts.Create(r.Context(), callerID, req.Content)
		if err != nil {
			log.Error("create post failed", zap.Error(err))
			api.Internal(w, "")
			return
		}

		// Invalidation signal is best-effort; the post is already durable.
		if pub != nil {
			if err := pub.Publish(r.Context(), publisher.SubjectPostCreated, publisher.FeedEvent{
				Type:     "post.created",
				PostID:   created.ID,
				AuthorID: created.AuthorID,
			}); err != nil {
				log.Warn("feed event publish failed", zap.Error(err))
			}
		}

		api.WriteJSON(w, http.StatusCreated, created)
	}
}
