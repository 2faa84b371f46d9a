// Package repomanager owns the storage handle and vends the repositories
// built on it. The handle is opened once at startup, injected into the
// services and closed on shutdown.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/sharelinks"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	ShareLinks() sharelinks.Repository
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
	RunMigrations(ctx context.Context) error
	Close() error
}
