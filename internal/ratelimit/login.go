package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/tripline/tripline/internal/config"
	"go.uber.org/zap"
)

// LoginLimiter throttles login attempts per email and source address so
// credential stuffing cannot hammer the password verifier.
type LoginLimiter struct {
	log     *zap.Logger
	bucket  *TokenBucket
	rate    float64
	burst   int
	enabled bool
}

func NewLoginLimiter(cfg config.Config, log *zap.Logger) *LoginLimiter {
	limiter := &LoginLimiter{
		log:     log.Named("ratelimit.login"),
		rate:    cfg.RateLimit.LoginRate,
		burst:   cfg.RateLimit.LoginBurst,
		enabled: cfg.RateLimit.Enabled,
	}
	if !cfg.RateLimit.Enabled {
		return limiter
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})
	limiter.bucket = NewTokenBucket(client)
	return limiter
}

// Allow reports whether a login attempt may proceed. Redis failures fail
// open so an outage never locks everyone out.
func (l *LoginLimiter) Allow(ctx context.Context, email, remoteAddr string) (bool, time.Duration) {
	if l == nil || !l.enabled || l.bucket == nil {
		return true, 0
	}

	key := fmt.Sprintf("ratelimit:login:%s:%s", strings.ToLower(strings.TrimSpace(email)), remoteAddr)
	res, err := l.bucket.Allow(ctx, key, l.rate, l.burst)
	if err != nil {
		l.log.Warn("login rate limit check failed", zap.Error(err))
		return true, 0
	}
	return res.Allowed, res.RetryAfter
}
