// Package auth issues and verifies the stateless session tokens.
//
// Access and refresh tokens are HS256 JWTs signed with two distinct secrets,
// so a token of one kind never verifies as the other. Nothing is stored
// server-side; a token stays valid until it expires.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are carried by access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string      `json:"userId"`
	Role   models.Role `json:"role"`
}

// RefreshClaims are carried by refresh tokens. They hold no role; refresh
// reads the current one from storage.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// TokenPair is returned on register and login.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// AccessIdentity is the verified content of an access token.
type AccessIdentity struct {
	UserID   string
	Role     models.Role
	IssuedAt time.Time
}

type Option func(*TokenManager)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) { m.now = now }
}

type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenManager(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration, opts ...Option) (*TokenManager, error) {
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		return nil, errors.New("token secrets must not be empty")
	}
	if string(accessSecret) == string(refreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	m := &TokenManager{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// RefreshTTL is used for the refresh cookie lifetime.
func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// IssueTokenPair signs a fresh access and refresh token for the account.
func (m *TokenManager) IssueTokenPair(userID string, role models.Role) (*TokenPair, error) {
	access, accessExp, err := m.IssueAccessToken(userID, role)
	if err != nil {
		return nil, err
	}

	now := m.now()
	refreshExp := now.Add(m.refreshTTL)
	refresh, err := sign(RefreshClaims{
		RegisteredClaims: registered(userID, now, refreshExp),
		UserID:           userID,
	}, m.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueAccessToken signs a single access token.
func (m *TokenManager) IssueAccessToken(userID string, role models.Role) (string, time.Time, error) {
	if userID == "" || !role.IsValid() {
		return "", time.Time{}, common.ErrInvalidToken
	}

	now := m.now()
	exp := now.Add(m.accessTTL)
	token, err := sign(Claims{
		RegisteredClaims: registered(userID, now, exp),
		UserID:           userID,
		Role:             role,
	}, m.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// VerifyAccessToken returns common.ErrTokenExpired for an otherwise valid
// token past its expiry and common.ErrInvalidToken for everything else.
// Unlike share links, a token is already expired at the exp instant itself.
func (m *TokenManager) VerifyAccessToken(tokenString string) (*AccessIdentity, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims, m.accessSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" || !claims.Role.IsValid() {
		return nil, common.ErrInvalidToken
	}

	id := &AccessIdentity{UserID: claims.UserID, Role: claims.Role}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	return id, nil
}

// VerifyRefreshToken returns the account id carried by a refresh token.
func (m *TokenManager) VerifyRefreshToken(tokenString string) (string, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenString, claims, m.refreshSecret); err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", common.ErrInvalidToken
	}
	return claims.UserID, nil
}

func (m *TokenManager) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return common.ErrInvalidToken
	}
	if !token.Valid {
		return common.ErrInvalidToken
	}
	return nil
}

func registered(subject string, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}

func sign(claims jwt.Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
