package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// PostgresUserStore persists users in Postgres.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

// NewPostgresUserStore creates a store backed by Postgres.
func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

func (s *PostgresUserStore) Create(ctx context.Context, u User) (User, error) {
	const q = `INSERT INTO users (id, email, name, username, profile_image_url)
	           VALUES ($1, $2, $3, $4, $5)
	           RETURNING id, email, name, username, profile_image_url, created_at`
	row := s.pool.QueryRow(ctx, q, u.ID, u.Email, u.Name, u.Username, u.ProfileImageURL)
	var out User
	err := row.Scan(&out.ID, &out.Email, &out.Name, &out.Username, &out.ProfileImageURL, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return User{}, ErrDuplicate
		}
		return User{}, err
	}
	return out, nil
}

func (s *PostgresUserStore) DeleteByID(ctx context.Context, id string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (User, error) {
	const q = `SELECT id, email, name, username, profile_image_url, created_at
	           FROM users WHERE id = $1`
	return s.scanOne(ctx, q, id)
}

func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (User, error) {
	const q = `SELECT id, email, name, username, profile_image_url, created_at
	           FROM users WHERE username = $1`
	return s.scanOne(ctx, q, username)
}

func (s *PostgresUserStore) GetByIDs(ctx context.Context, ids []string) (map[string]User, error) {
	out := make(map[string]User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	const q = `SELECT id, email, name, username, profile_image_url, created_at
	           FROM users WHERE id = ANY($1)`
	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Username, &u.ProfileImageURL, &u.CreatedAt); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (s *PostgresUserStore) scanOne(ctx context.Context, q string, arg any) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, q, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.Username, &u.ProfileImageURL, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
