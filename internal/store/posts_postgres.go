package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgInvalidTextRepresentation = "22P02"

// isInvalidUUID reports whether Postgres rejected the value as a uuid
// literal. Post ids arrive as arbitrary URL segments; an id that cannot
// be a uuid matches no post, so it maps to ErrNotFound rather than an
// internal error.
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}

// PostgresPostStore persists posts in Postgres.
type PostgresPostStore struct {
	pool *pgxpool.Pool
}

// NewPostgresPostStore creates a store backed by Postgres.
func NewPostgresPostStore(pool *pgxpool.Pool) *PostgresPostStore {
	return &PostgresPostStore{pool: pool}
}

func (s *PostgresPostStore) Create(ctx context.Context, authorID, content string) (Post, error) {
	const q = `INSERT INTO posts (author_id, content)
	           VALUES ($1, $2)
	           RETURNING id, author_id, content, created_at`
	row := s.pool.QueryRow(ctx, q, authorID, content)
	var out Post
	err := row.Scan(&out.ID, &out.AuthorID, &out.Content, &out.CreatedAt)
	return out, err
}

func (s *PostgresPostStore) List(ctx context.Context, limit int) ([]Post, error) {
	const q = `SELECT id, author_id, content, created_at
	           FROM posts
	           ORDER BY created_at DESC, id DESC
	           LIMIT $1`
	return s.scanPosts(ctx, q, limit)
}

func (s *PostgresPostStore) ListByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	const q = `SELECT id, author_id, content, created_at
	           FROM posts
	           WHERE author_id = $1
	           ORDER BY created_at DESC, id DESC`
	return s.scanPosts(ctx, q, authorID)
}

func (s *PostgresPostStore) GetByID(ctx context.Context, id string) (Post, error) {
	const q = `SELECT id, author_id, content, created_at
	           FROM posts WHERE id = $1`
	var p Post
	err := s.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

func (s *PostgresPostStore) scanPosts(ctx context.Context, q string, args ...any) ([]Post, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
