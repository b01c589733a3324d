// Package lockout throttles brute-force login attempts per account.
package lockout

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/atcops/opstrack/internal/apiserver/database"
	"github.com/atcops/opstrack/internal/common/config"
	"github.com/atcops/opstrack/internal/common/errorx"
)

// Store is the slice of the storage contract the guard needs
type Store interface {
	IncrementFailedLogins(ctx context.Context, id uint) (int, error)
	LockUser(ctx context.Context, id uint, until time.Time) error
	ResetUserLock(ctx context.Context, id uint) error
}

// Guard enforces the failed-login lockout policy. A configurable number of
// consecutive failures locks the account for a fixed window; any successful
// login inside an unlocked window resets the counter.
type Guard struct {
	store       Store
	logger      *zap.Logger
	maxAttempts int
	duration    time.Duration
	now         func() time.Time
}

// NewGuard creates a guard from the lockout configuration
func NewGuard(store Store, logger *zap.Logger, cfg config.LockoutConfig) *Guard {
	return &Guard{
		store:       store,
		logger:      logger.Named("lockout"),
		maxAttempts: cfg.MaxAttempts,
		duration:    cfg.Duration,
		now:         time.Now,
	}
}

// NewGuardAt creates a guard with an injected clock
func NewGuardAt(store Store, logger *zap.Logger, cfg config.LockoutConfig, now func() time.Time) *Guard {
	g := NewGuard(store, logger, cfg)
	g.now = now
	return g
}

// Check rejects the login attempt while the account is locked. An expired
// lock is cleared here so the attempt that follows starts from a clean
// counter.
func (g *Guard) Check(ctx context.Context, user *database.User) error {
	if user.LockedUntil == nil {
		return nil
	}
	if g.now().Before(*user.LockedUntil) {
		remaining := int(math.Ceil(user.LockedUntil.Sub(g.now()).Minutes()))
		if remaining < 1 {
			remaining = 1
		}
		g.logger.Warn("rejected login on locked account",
			zap.String("username", user.Username),
			zap.Int("remaining_minutes", remaining))
		return errorx.ErrAccountLocked.
			WithMessage("account locked, try again in %d minute(s)", remaining).
			WithDetail("locked", true).
			WithDetail("remaining_minutes", remaining)
	}
	if err := g.store.ResetUserLock(ctx, user.ID); err != nil {
		return err
	}
	user.LockedUntil = nil
	user.FailedLoginAttempts = 0
	return nil
}

// RecordFailure counts one failed credential check and locks the account
// once the threshold is reached. Returns the lockout error when this failure
// triggered the lock.
func (g *Guard) RecordFailure(ctx context.Context, user *database.User) error {
	attempts, err := g.store.IncrementFailedLogins(ctx, user.ID)
	if err != nil {
		return err
	}
	user.FailedLoginAttempts = attempts
	if attempts < g.maxAttempts {
		return nil
	}

	until := g.now().Add(g.duration)
	if err := g.store.LockUser(ctx, user.ID, until); err != nil {
		return err
	}
	user.LockedUntil = &until
	g.logger.Warn("account locked after repeated failures",
		zap.String("username", user.Username),
		zap.Int("attempts", attempts),
		zap.Time("until", until))
	minutes := int(math.Ceil(g.duration.Minutes()))
	return errorx.ErrAccountLocked.
		WithMessage("account locked, try again in %d minute(s)", minutes).
		WithDetail("locked", true).
		WithDetail("remaining_minutes", minutes)
}

// RecordSuccess clears the failure counter after a successful login
func (g *Guard) RecordSuccess(ctx context.Context, user *database.User) error {
	if user.FailedLoginAttempts == 0 && user.LockedUntil == nil {
		return nil
	}
	if err := g.store.ResetUserLock(ctx, user.ID); err != nil {
		return err
	}
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	return nil
}
