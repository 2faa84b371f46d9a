package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/cryptox"
	"github.com/dmitrijs2005/linkkeeper/internal/server/auth"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/repomanager"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	users  *UserService
	links  *ShareLinkService
	repos  *repomanager.InMemoryRepositoryManager
	tokens *auth.TokenManager
	clock  *testClock
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	clock := &testClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	tokens, err := auth.NewTokenManager([]byte("access"), []byte("refresh"), 15*time.Minute, 7*24*time.Hour, auth.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	hasher := cryptox.NewHasher(cryptox.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})
	repos := repomanager.NewInMemoryRepositoryManager()

	opts = append([]Option{WithClock(clock.Now)}, opts...)

	return &testEnv{
		users:  NewUserService(repos, tokens, hasher, opts...),
		links:  NewShareLinkService(repos, "http://localhost:5173/", opts...),
		repos:  repos,
		tokens: tokens,
		clock:  clock,
	}
}

func (e *testEnv) register(t *testing.T, username string) *AuthResult {
	t.Helper()
	res, err := e.users.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password-" + username,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	return res
}

func (e *testEnv) admin(t *testing.T) string {
	t.Helper()
	u, _, err := e.users.EnsureAdmin(context.Background(), "root", "root@example.com", "rootpass")
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	return u.ID
}

type fakeThrottle struct {
	mu       sync.Mutex
	blocked  bool
	acquired map[string]int
	released map[string]int
	resets   []string
}

func (f *fakeThrottle) Acquire(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.blocked {
		return common.ErrRateLimited
	}
	if f.acquired == nil {
		f.acquired = map[string]int{}
	}
	for _, k := range keys {
		f.acquired[k]++
	}
	return nil
}

func (f *fakeThrottle) Release(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released == nil {
		f.released = map[string]int{}
	}
	for _, k := range keys {
		f.released[k]++
	}
	return nil
}

func (f *fakeThrottle) Reset(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, keys...)
	return nil
}
