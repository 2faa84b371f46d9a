// Package services contains server-side business logic: account management
// and sessions in UserService, share links in ShareLinkService. Both depend
// only on the repository manager they are constructed with.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/logging"
	"github.com/google/uuid"
)

// LoginThrottle limits login attempts. Keys identify the login name and the
// client address.
type LoginThrottle interface {
	// Acquire counts an attempt before credentials are checked and returns
	// common.ErrRateLimited when any key is over budget.
	Acquire(ctx context.Context, keys ...string) error
	// Release gives back the attempt of a successful login.
	Release(ctx context.Context, keys ...string) error
	Reset(ctx context.Context, keys ...string) error
}

type nopThrottle struct{}

func (nopThrottle) Acquire(context.Context, ...string) error { return nil }
func (nopThrottle) Release(context.Context, ...string) error { return nil }
func (nopThrottle) Reset(context.Context, ...string) error   { return nil }

// Option configures either service.
type Option func(*options)

type options struct {
	now      func() time.Time
	logger   logging.Logger
	throttle LoginThrottle
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLoginThrottle is only used by UserService.
func WithLoginThrottle(t LoginThrottle) Option {
	return func(o *options) { o.throttle = t }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, logger: logging.Nop(), throttle: nopThrottle{}}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// checkID masks malformed identifiers as missing records.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return nil
}
