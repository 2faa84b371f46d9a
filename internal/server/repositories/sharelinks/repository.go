// Package sharelinks stores share links and their access log.
package sharelinks

import (
	"context"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
)

// Repository persists share links. Owner-scoped operations report
// common.ErrorNotFound both for a missing link and for a link owned by
// someone else.
type Repository interface {
	// Create returns common.ErrorAlreadyExists on a token collision.
	Create(ctx context.Context, link *models.ShareLink) error
	// ListByOwner returns the owner's links, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.ShareLink, error)
	GetByToken(ctx context.Context, token string) (*models.ShareLink, error)
	// Consume checks the link at entry.AccessedAt and, when it is consumable,
	// increments the use counter and appends entry to the access log as one
	// atomic step. A failing check leaves the record untouched and returns
	// the reason from models.ShareLink.CheckConsumable.
	Consume(ctx context.Context, token string, entry models.AccessLogEntry) (*models.ShareLink, error)
	// Toggle flips isActive and returns the updated link.
	Toggle(ctx context.Context, ownerID, id string, at time.Time) (*models.ShareLink, error)
	Delete(ctx context.Context, ownerID, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
	// AccessLog returns the log entries oldest first.
	AccessLog(ctx context.Context, ownerID, id string) ([]models.AccessLogEntry, error)
}
