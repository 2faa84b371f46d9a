// Package users stores accounts.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
)

// Repository persists accounts. Lookups return common.ErrorNotFound when
// nothing matches; Create returns common.ErrorAlreadyExists when the username
// or e-mail is taken (case-insensitively).
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByLogin matches either the username or the e-mail address.
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	// List returns all accounts, newest first.
	List(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role, at time.Time) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string, at time.Time) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	// Stats counts accounts by role; Recent counts those created at or after since.
	Stats(ctx context.Context, since time.Time) (*models.UserStats, error)
}
