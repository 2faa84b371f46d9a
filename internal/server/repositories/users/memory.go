package users

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
)

// MemoryRepository keeps accounts in process memory. Values are copied on the
// way in and out so callers never share state with the store.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]models.User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Username, user.Username) {
			return fmt.Errorf("%w: username", common.ErrorAlreadyExists)
		}
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("%w: email", common.ErrorAlreadyExists)
		}
	}
	if _, ok := r.byID[user.ID]; ok {
		return fmt.Errorf("%w: id", common.ErrorAlreadyExists)
	}

	r.byID[user.ID] = *user
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.User, 0, len(r.byID))
	for _, u := range r.byID {
		u := u
		result = append(result, &u)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) UpdateRole(ctx context.Context, id string, role models.Role, at time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.Role = role
	u.UpdatedAt = at
	r.byID[id] = u
	return &u, nil
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, id string, passwordHash string, at time.Time) error {
	return r.update(id, func(u *models.User) {
		u.PasswordHash = passwordHash
		u.UpdatedAt = at
	})
}

func (r *MemoryRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.update(id, func(u *models.User) {
		u.LastLogin = &at
	})
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) Stats(ctx context.Context, since time.Time) (*models.UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := &models.UserStats{TotalUsers: len(r.byID)}
	for _, u := range r.byID {
		switch u.Role {
		case models.RoleAdmin:
			s.AdminUsers++
		case models.RoleUser:
			s.RegularUsers++
		}
		if !u.CreatedAt.Before(since) {
			s.RecentUsers++
		}
	}
	return s, nil
}

func (r *MemoryRepository) update(id string, fn func(u *models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(&u)
	r.byID[id] = u
	return nil
}
