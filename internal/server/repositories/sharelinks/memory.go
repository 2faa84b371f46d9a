package sharelinks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
)

type memoryRecord struct {
	link models.ShareLink
	log  []models.AccessLogEntry
}

// MemoryRepository keeps links in process memory. A single mutex serialises
// writers, which makes Consume atomic per record.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*memoryRecord
	byToken map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*memoryRecord),
		byToken: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, link *models.ShareLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byToken[link.Token]; ok {
		return fmt.Errorf("%w: token", common.ErrorAlreadyExists)
	}
	if _, ok := r.byID[link.ID]; ok {
		return fmt.Errorf("%w: id", common.ErrorAlreadyExists)
	}

	r.byID[link.ID] = &memoryRecord{link: copyLink(link)}
	r.byToken[link.Token] = link.ID
	return nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.ShareLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.ShareLink{}
	for _, rec := range r.byID {
		if rec.link.OwnerID == ownerID {
			l := copyLink(&rec.link)
			result = append(result, &l)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	l := copyLink(&r.byID[id].link)
	return &l, nil
}

func (r *MemoryRepository) Consume(ctx context.Context, token string, entry models.AccessLogEntry) (*models.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	rec := r.byID[id]

	if err := rec.link.CheckConsumable(entry.AccessedAt); err != nil {
		return nil, err
	}

	rec.link.UsedCount++
	rec.log = append(rec.log, entry)

	l := copyLink(&rec.link)
	return &l, nil
}

func (r *MemoryRepository) Toggle(ctx context.Context, ownerID, id string, at time.Time) (*models.ShareLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.owned(ownerID, id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	rec.link.IsActive = !rec.link.IsActive
	rec.link.UpdatedAt = at

	l := copyLink(&rec.link)
	return &l, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.owned(ownerID, id)
	if !ok {
		return common.ErrorNotFound
	}
	delete(r.byToken, rec.link.Token)
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rec := range r.byID {
		if rec.link.OwnerID == ownerID {
			delete(r.byToken, rec.link.Token)
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *MemoryRepository) AccessLog(ctx context.Context, ownerID, id string) ([]models.AccessLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.owned(ownerID, id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return append([]models.AccessLogEntry{}, rec.log...), nil
}

func (r *MemoryRepository) owned(ownerID, id string) (*memoryRecord, bool) {
	rec, ok := r.byID[id]
	if !ok || rec.link.OwnerID != ownerID {
		return nil, false
	}
	return rec, true
}

func copyLink(l *models.ShareLink) models.ShareLink {
	c := *l
	if l.MaxUses != nil {
		v := *l.MaxUses
		c.MaxUses = &v
	}
	c.CreatedBy = nil
	return c
}
