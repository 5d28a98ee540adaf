package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velikanov/storefront/internal/domain/user"
)

const (
	getUserByIDSQL = `SELECT id, name, email, COALESCE(role, ''), COALESCE(access_token, ''), created_at
		FROM users WHERE id = $1`

	findUserByTokenSQL = `SELECT id, name, email, COALESCE(role, ''), COALESCE(access_token, ''), created_at
		FROM users WHERE access_token = $1`

	createUserSQL = `INSERT INTO users (name, email, role, access_token)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID returns a single user by its identifier.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.queryOne(ctx, getUserByIDSQL, id)
}

// FindByAccessToken returns the user owning the given access token.
func (r *UserRepository) FindByAccessToken(ctx context.Context, token string) (*user.User, error) {
	return r.queryOne(ctx, findUserByTokenSQL, token)
}

// Create persists a new user account.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.pool.QueryRow(ctx, createUserSQL, u.Name, u.Email, u.Role, u.AccessToken).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating user %q: %w", u.Email, err)
	}
	return nil
}

func (r *UserRepository) queryOne(ctx context.Context, sql string, arg any) (*user.User, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.AccessToken, &u.CreatedAt)
	return u, err
}
