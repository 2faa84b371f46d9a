package models

import (
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
)

// ShareLink is a capability URL record. CreatedBy is filled by lookups that
// resolve the owner and is nil otherwise.
type ShareLink struct {
	ID          string    `json:"id"`
	Token       string    `json:"token"`
	OwnerID     string    `json:"-"`
	CreatedBy   *UserRef  `json:"createdBy,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ExpiresAt   time.Time `json:"expiresAt"`
	MaxUses     *int      `json:"maxUses"`
	UsedCount   int       `json:"usedCount"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CheckConsumable returns nil when the link may be accessed at now, or the
// first failing reason in the order inactive, expired, max uses reached.
// A link is still valid at the exact expiry instant, except one whose
// expiry is not after its creation: that link is never valid.
func (l *ShareLink) CheckConsumable(now time.Time) error {
	switch {
	case !l.IsActive:
		return common.ErrLinkInactive
	case now.After(l.ExpiresAt), !l.ExpiresAt.After(l.CreatedAt):
		return common.ErrLinkExpired
	case l.MaxUses != nil && l.UsedCount >= *l.MaxUses:
		return common.ErrLinkMaxUses
	}
	return nil
}

// View returns the redacted public representation served by access.
func (l *ShareLink) View() *ShareLinkView {
	return &ShareLinkView{
		Title:       l.Title,
		Description: l.Description,
		CreatedBy:   l.CreatedBy,
		CreatedAt:   l.CreatedAt,
		ExpiresAt:   l.ExpiresAt,
		UsedCount:   l.UsedCount,
		MaxUses:     l.MaxUses,
	}
}

// ShareLinkView is what anonymous visitors see; it carries neither the token
// nor the access log.
type ShareLinkView struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedBy   *UserRef  `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	UsedCount   int       `json:"usedCount"`
	MaxUses     *int      `json:"maxUses"`
}

// AccessLogEntry records one successful access.
type AccessLogEntry struct {
	IP         string    `json:"ip"`
	UserAgent  string    `json:"userAgent"`
	AccessedAt time.Time `json:"accessedAt"`
}
