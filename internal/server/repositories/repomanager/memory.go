package repomanager

import (
	"context"

	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/sharelinks"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager backs development runs and tests. Data is lost
// on Close.
type InMemoryRepositoryManager struct {
	users      *users.MemoryRepository
	shareLinks *sharelinks.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:      users.NewMemoryRepository(),
		shareLinks: sharelinks.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) ShareLinks() sharelinks.Repository {
	return m.shareLinks
}

func (m *InMemoryRepositoryManager) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
