package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("user not found")

// User represents a registered customer account. Orders are always owned
// by a user.
type User struct {
	ID          int64
	Name        string
	Email       string
	Role        string
	AccessToken string
	CreatedAt   time.Time
}

// Repository defines lookup operations for user accounts.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	FindByAccessToken(ctx context.Context, token string) (*User, error)
}
