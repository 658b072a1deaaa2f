package service

import (
	"context"
	"strings"
	"time"

	"budget_tracker/internal/cache"
	"budget_tracker/internal/domain"

	"github.com/redis/go-redis/v9"
)

// LoginGuard limits failed login attempts per email
type LoginGuard struct {
	rdb         *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewLoginGuard allows maxAttempts failures per window
func NewLoginGuard(rdb *redis.Client, maxAttempts int64, window time.Duration) *LoginGuard {
	return &LoginGuard{rdb: rdb, maxAttempts: maxAttempts, window: window}
}

// key normalizes email the same way Authenticate looks it up
func (g *LoginGuard) key(email string) string {
	return "login:failures:" + strings.TrimSpace(email)
}

// Allow fails with ErrTooManyAttempts once the email has used up its attempts
func (g *LoginGuard) Allow(ctx context.Context, email string) error {
	n, err := cache.Count(ctx, g.rdb, g.key(email))
	if err != nil {
		return err
	}
	if n >= g.maxAttempts {
		return domain.ErrTooManyAttempts
	}
	return nil
}

// Fail records a failed attempt
func (g *LoginGuard) Fail(ctx context.Context, email string) error {
	_, err := cache.Increment(ctx, g.rdb, g.key(email), g.window)
	return err
}

// Reset clears the failures after a successful login
func (g *LoginGuard) Reset(ctx context.Context, email string) error {
	return cache.Delete(ctx, g.rdb, g.key(email))
}
