// Package store persists users and posts.
package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors translated by handlers into API failures.
var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// User mirrors an identity-provider account. ID is the provider's external id,
// never locally generated.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            *string   `json:"name,omitempty"`
	Username        *string   `json:"username,omitempty"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Post is a single micro-post. Immutable after creation.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStore defines the contract for user persistence.
type UserStore interface {
	// Create inserts a user; ErrDuplicate when the id or email is taken.
	Create(ctx context.Context, u User) (User, error)
	// DeleteByID removes all rows for the external id. Zero rows is not an error.
	DeleteByID(ctx context.Context, id string) (int64, error)
	GetByID(ctx context.Context, id string) (User, error)
	// GetByIDs batch-resolves authors; missing ids are simply absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
}

// PostStore defines the contract for post persistence.
type PostStore interface {
	Create(ctx context.Context, authorID, content string) (Post, error)
	// List returns the newest posts first, capped at limit.
	List(ctx context.Context, limit int) ([]Post, error)
	// ListByAuthor returns the author's posts, newest first. Empty is fine.
	ListByAuthor(ctx context.Context, authorID string) ([]Post, error)
	GetByID(ctx context.Context, id string) (Post, error)
}
