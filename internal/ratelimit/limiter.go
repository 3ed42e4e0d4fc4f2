// Package ratelimit keeps fixed-window attempt counters in Redis for failed
// logins and password-reset requests.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRateLimited      = errors.New("rate limited")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

type Config struct {
	MaxLoginAttempts      int
	LoginCooldown         time.Duration
	MaxResetRequests      int
	ResetRequestCooldown  time.Duration
	EnableIPLoginThrottle bool
}

type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

func New(client redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{redis: client, config: cfg}
}

// CheckLogin returns ErrRateLimited once the email (or IP) has used up its
// failed-login budget for the current window.
func (l *Limiter) CheckLogin(ctx context.Context, email, ip string) error {
	if err := l.checkCounter(ctx, loginEmailKey(email), l.config.MaxLoginAttempts); err != nil {
		return err
	}
	if l.config.EnableIPLoginThrottle && ip != "" {
		return l.checkCounter(ctx, loginIPKey(ip), l.config.MaxLoginAttempts)
	}
	return nil
}

// RecordLoginFailure counts one failed attempt.
func (l *Limiter) RecordLoginFailure(ctx context.Context, email, ip string) error {
	if _, err := l.incrementWithTTL(ctx, loginEmailKey(email), l.config.LoginCooldown); err != nil {
		return err
	}
	if l.config.EnableIPLoginThrottle && ip != "" {
		if _, err := l.incrementWithTTL(ctx, loginIPKey(ip), l.config.LoginCooldown); err != nil {
			return err
		}
	}
	return nil
}

// ResetLogin clears the email counter after a successful login. The IP
// counter is left to expire so one good account cannot unlock an IP.
func (l *Limiter) ResetLogin(ctx context.Context, email string) error {
	if err := l.redis.Del(ctx, loginEmailKey(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// AllowResetRequest counts a reset request for email and reports whether it
// is within budget.
func (l *Limiter) AllowResetRequest(ctx context.Context, email string) error {
	count, err := l.incrementWithTTL(ctx, resetKey(email), l.config.ResetRequestCooldown)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxResetRequests) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string, maxAttempts int) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(maxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	// Fixed window: the TTL is set by the first hit only.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}

func loginEmailKey(email string) string { return "auth:login:email:" + normalize(email) }
func loginIPKey(ip string) string       { return "auth:login:ip:" + ip }
func resetKey(email string) string      { return "auth:reset:email:" + normalize(email) }

func normalize(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
