package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/cryptox"
	"github.com/dmitrijs2005/linkkeeper/internal/server/auth"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/linkkeeper/internal/validatex"
	"github.com/google/uuid"
)

const (
	passwordRule = "required,min=6"

	// recentUsersWindow bounds the "recent" bucket of Stats.
	recentUsersWindow = 7 * 24 * time.Hour
)

// dummyPassword is hashed once and verified against for unknown logins.
const dummyPassword = "linkkeeper-no-such-user"

type RegisterInput struct {
	Username string `validate:"required,min=3,max=30,username"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type LoginInput struct {
	Login    string
	Password string
	IP       string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User   models.PublicUser
	Tokens *auth.TokenPair
}

// RefreshResult carries a new access token.
type RefreshResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

// UserService handles registration, login, token refresh and account
// administration.
type UserService struct {
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenManager
	hasher      *cryptox.Hasher
	verify      func(password, encoded string) (bool, error)
	dummyHash   func() (string, error)
	options
}

func NewUserService(m repomanager.RepositoryManager, tokens *auth.TokenManager, hasher *cryptox.Hasher, opts ...Option) *UserService {
	return &UserService{
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		verify:      hasher.Verify,
		dummyHash: sync.OnceValues(func() (string, error) {
			return hasher.Hash(dummyPassword)
		}),
		options: buildOptions(opts),
	}
}

// Register creates an account with role user and signs it in.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validateCredentials(username, email, in.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repomanager.Users().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.tokens.IssueTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)

	return &AuthResult{User: user.Public(), Tokens: tokens}, nil
}

// Login accepts either a username or an e-mail address.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" {
		return nil, common.NewValidationError("login and password are required")
	}

	// Attempts are counted before the password check; a failed one keeps
	// its slot.
	keys := throttleKeys(login, in.IP)
	if err := s.throttle.Acquire(ctx, keys...); err != nil {
		if errors.Is(err, common.ErrRateLimited) {
			return nil, err
		}
		s.logger.Warn(ctx, "login throttle unavailable", "error", err)
	}

	user, err := s.repomanager.Users().GetByLogin(ctx, login)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Unknown logins still pay for one verification.
	encoded := ""
	if user != nil {
		encoded = user.PasswordHash
	} else if encoded, err = s.dummyHash(); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	ok, err := s.verify(in.Password, encoded)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok || user == nil {
		return nil, common.ErrorUnauthorized
	}

	if err := s.throttle.Reset(ctx, keys[0]); err != nil {
		s.logger.Warn(ctx, "login throttle unavailable", "error", err)
	}
	if err := s.throttle.Release(ctx, keys[1:]...); err != nil {
		s.logger.Warn(ctx, "login throttle unavailable", "error", err)
	}

	now := s.now()
	if err := s.repomanager.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now

	tokens, err := s.tokens.IssueTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	return &AuthResult{User: user.Public(), Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a new access token carrying the
// account's current role. The refresh token itself is not rotated.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, common.ErrInvalidToken
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	token, exp, err := s.tokens.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &RefreshResult{AccessToken: token, ExpiresAt: exp}, nil
}

func (s *UserService) Me(ctx context.Context, userID string) (*models.PublicUser, error) {
	return s.GetUser(ctx, userID)
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*models.PublicUser, error) {
	if err := checkID(userID); err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := user.Public()
	return &p, nil
}

// ListUsers returns every account, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	list, err := s.repomanager.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]models.PublicUser, 0, len(list))
	for _, u := range list {
		result = append(result, u.Public())
	}
	return result, nil
}

// UpdateRole changes another account's role. Admins cannot change their own.
func (s *UserService) UpdateRole(ctx context.Context, actorID, userID, role string) (*models.PublicUser, error) {
	r, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}
	if err := checkID(userID); err != nil {
		return nil, err
	}
	if actorID == userID {
		return nil, common.NewValidationError("you cannot change your own role")
	}

	user, err := s.repomanager.Users().UpdateRole(ctx, userID, r, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user role changed", "user_id", userID, "role", r, "by", actorID)

	p := user.Public()
	return &p, nil
}

// DeleteUser removes an account together with its share links.
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if err := checkID(userID); err != nil {
		return err
	}
	if actorID == userID {
		return common.NewValidationError("you cannot delete your own account")
	}

	if _, err := s.repomanager.Users().GetByID(ctx, userID); err != nil {
		return err
	}
	if err := s.repomanager.ShareLinks().DeleteByOwner(ctx, userID); err != nil {
		return fmt.Errorf("delete share links: %w", err)
	}
	if err := s.repomanager.Users().Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info(ctx, "user deleted", "user_id", userID, "by", actorID)
	return nil
}

// Stats summarises accounts by role and counts those created in the last week.
func (s *UserService) Stats(ctx context.Context) (*models.UserStats, error) {
	return s.repomanager.Users().Stats(ctx, s.now().Add(-recentUsersWindow))
}

// EnsureAdmin creates the named admin account, or resets the password and
// promotes it when the username already exists. It reports whether a new
// account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (*models.PublicUser, bool, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validatex.Var("password", password, passwordRule); err != nil {
		return nil, false, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	users := s.repomanager.Users()
	now := s.now()

	existing, err := users.GetByLogin(ctx, username)
	switch {
	case err == nil:
		if err := users.UpdatePassword(ctx, existing.ID, hash, now); err != nil {
			return nil, false, err
		}
		updated, err := users.UpdateRole(ctx, existing.ID, models.RoleAdmin, now)
		if err != nil {
			return nil, false, err
		}
		p := updated.Public()
		return &p, false, nil

	case !errors.Is(err, common.ErrorNotFound):
		return nil, false, fmt.Errorf("get user: %w", err)
	}

	if err := validateCredentials(username, email, password); err != nil {
		return nil, false, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}

	p := user.Public()
	return &p, true, nil
}

func validateCredentials(username, email, password string) error {
	return validatex.Struct(RegisterInput{Username: username, Email: email, Password: password})
}

func throttleKeys(login, ip string) []string {
	keys := []string{"login:" + strings.ToLower(login)}
	if ip != "" {
		keys = append(keys, "ip:"+ip)
	}
	return keys
}
