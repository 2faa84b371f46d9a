package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/linkkeeper/internal/validatex"
	"github.com/google/uuid"
)

const (
	defaultExpiryHours = 24

	shareTokenBytes  = 16
	tokenInsertTries = 3
)

type CreateShareLinkInput struct {
	Title       string `validate:"required,max=200"`
	Description string
	// ExpiryHours nil means 24; zero creates a link that is never usable.
	ExpiryHours *int `validate:"omitempty,min=0"`
	// MaxUses nil means unlimited.
	MaxUses *int `validate:"omitempty,min=1"`
}

// CreatedShareLink pairs a new link with its public URL.
type CreatedShareLink struct {
	ShareLink *models.ShareLink
	URL       string
}

// ShareLinkService manages share links and serves anonymous access to them.
type ShareLinkService struct {
	repomanager repomanager.RepositoryManager
	frontendURL string
	newToken    func() (string, error)
	options
}

func NewShareLinkService(m repomanager.RepositoryManager, frontendURL string, opts ...Option) *ShareLinkService {
	return &ShareLinkService{
		repomanager: m,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		newToken:    func() (string, error) { return common.MakeRandURLToken(shareTokenBytes) },
		options:     buildOptions(opts),
	}
}

// URL returns the frontend address that resolves token.
func (s *ShareLinkService) URL(token string) string {
	return s.frontendURL + "/share/" + token
}

func (s *ShareLinkService) Create(ctx context.Context, ownerID string, in CreateShareLinkInput) (*CreatedShareLink, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validatex.Struct(in); err != nil {
		return nil, err
	}
	title := in.Title

	hours := defaultExpiryHours
	if in.ExpiryHours != nil {
		hours = *in.ExpiryHours
	}

	var maxUses *int
	if in.MaxUses != nil {
		v := *in.MaxUses
		maxUses = &v
	}

	owner, err := s.owner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// storage keeps microseconds
	now := s.now().UTC().Truncate(time.Microsecond)
	link := &models.ShareLink{
		ID:          uuid.NewString(),
		OwnerID:     owner.ID,
		Title:       title,
		Description: in.Description,
		ExpiresAt:   now.Add(time.Duration(hours) * time.Hour),
		MaxUses:     maxUses,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 1; ; attempt++ {
		link.Token, err = s.newToken()
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}

		err = s.repomanager.ShareLinks().Create(ctx, link)
		if err == nil {
			break
		}
		if !errors.Is(err, common.ErrorAlreadyExists) || attempt == tokenInsertTries {
			return nil, fmt.Errorf("create share link: %w", err)
		}
		s.logger.Warn(ctx, "share token collision, retrying", "attempt", attempt)
	}

	link.CreatedBy = owner.Ref()

	s.logger.Info(ctx, "share link created", "link_id", link.ID, "owner_id", owner.ID)

	return &CreatedShareLink{ShareLink: link, URL: s.URL(link.Token)}, nil
}

// ListOwned returns the caller's links, newest first.
func (s *ShareLinkService) ListOwned(ctx context.Context, ownerID string) ([]*models.ShareLink, error) {
	owner, err := s.owner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	links, err := s.repomanager.ShareLinks().ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	ref := owner.Ref()
	for _, l := range links {
		l.CreatedBy = ref
	}
	return links, nil
}

// Access consumes one use of the link identified by token and returns its
// public view. Failures leave the link untouched.
func (s *ShareLinkService) Access(ctx context.Context, token, ip, userAgent string) (*models.ShareLinkView, error) {
	if token == "" {
		return nil, common.ErrorNotFound
	}

	links := s.repomanager.ShareLinks()

	// Owner lookup precedes Consume: nothing is spent when it fails.
	found, err := links.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	var createdBy *models.UserRef
	owner, err := s.repomanager.Users().GetByID(ctx, found.OwnerID)
	switch {
	case err == nil:
		createdBy = owner.Ref()
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("get link owner: %w", err)
	}

	link, err := links.Consume(ctx, token, models.AccessLogEntry{
		IP:         ip,
		UserAgent:  userAgent,
		AccessedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	link.CreatedBy = createdBy

	return link.View(), nil
}

// Toggle flips the active flag of one of the caller's links.
func (s *ShareLinkService) Toggle(ctx context.Context, ownerID, linkID string) (*models.ShareLink, error) {
	if err := checkID(linkID); err != nil {
		return nil, err
	}
	owner, err := s.owner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	link, err := s.repomanager.ShareLinks().Toggle(ctx, owner.ID, linkID, s.now())
	if err != nil {
		return nil, err
	}
	link.CreatedBy = owner.Ref()
	return link, nil
}

func (s *ShareLinkService) Delete(ctx context.Context, ownerID, linkID string) error {
	if err := checkID(linkID); err != nil {
		return err
	}
	return s.repomanager.ShareLinks().Delete(ctx, ownerID, linkID)
}

// AccessLog returns the recorded accesses of one of the caller's links.
func (s *ShareLinkService) AccessLog(ctx context.Context, ownerID, linkID string) ([]models.AccessLogEntry, error) {
	if err := checkID(linkID); err != nil {
		return nil, err
	}
	return s.repomanager.ShareLinks().AccessLog(ctx, ownerID, linkID)
}

// owner resolves the authenticated caller. A token outliving its account is
// treated as unauthenticated.
func (s *ShareLinkService) owner(ctx context.Context, ownerID string) (*models.User, error) {
	u, err := s.repomanager.Users().GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}
	return u, nil
}
