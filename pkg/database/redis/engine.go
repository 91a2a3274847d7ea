package redis

import (
	"context"
	"fmt"
	"time"

	redisV9 "github.com/redis/go-redis/v9"

	"github.com/huynhanx03/go-blockingqueue/pkg/settings"
	"github.com/huynhanx03/go-blockingqueue/pkg/utils"
)

const (
	defaultPoolSize        = 10
	defaultMinIdleConns    = 5
	defaultPoolTimeout     = 5
	defaultDialTimeout     = 5
	defaultReadTimeout     = 3
	defaultWriteTimeout    = 3
	defaultMaxRetries      = 3
	defaultMinRetryBackoff = 300 // millis
	defaultMaxRetryBackoff = 500 // millis

	pingTimeout = 5 * time.Second
)

// Engine wraps a go-redis client built from settings.Redis.
type Engine struct {
	client *redisV9.Client
	config *settings.Redis
}

// connect initializes the Redis client
func (e *Engine) connect() error {
	e.setDefaultConfig()

	e.client = redisV9.NewClient(&redisV9.Options{
		Addr:            e.addr(),
		Password:        e.config.Password,
		DB:              e.config.Database,
		PoolSize:        e.config.PoolSize,
		MinIdleConns:    e.config.MinIdleConns,
		MaxRetries:      e.config.MaxRetries,
		DialTimeout:     utils.ToDuration(e.config.DialTimeout),
		ReadTimeout:     utils.ToDuration(e.config.ReadTimeout),
		WriteTimeout:    utils.ToDuration(e.config.WriteTimeout),
		PoolTimeout:     utils.ToDuration(e.config.PoolTimeout),
		MinRetryBackoff: utils.ToDurationMs(e.config.MinRetryBackoff),
		MaxRetryBackoff: utils.ToDurationMs(e.config.MaxRetryBackoff),
	})

	// Ping test
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := e.client.Ping(ctx).Err(); err != nil {
		e.client.Close()
		return fmt.Errorf("%w: %v", ErrPingFailed, err)
	}

	return nil
}

func (e *Engine) addr() string {
	if e.config.Port > 0 {
		return fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	}
	return e.config.Host
}

// setDefaultConfig sets default values for Redis configuration
func (e *Engine) setDefaultConfig() {
	if e.config.PoolSize == 0 {
		e.config.PoolSize = defaultPoolSize
	}
	if e.config.MinIdleConns == 0 {
		e.config.MinIdleConns = defaultMinIdleConns
	}
	if e.config.PoolTimeout == 0 {
		e.config.PoolTimeout = defaultPoolTimeout
	}
	if e.config.DialTimeout == 0 {
		e.config.DialTimeout = defaultDialTimeout
	}
	if e.config.ReadTimeout == 0 {
		e.config.ReadTimeout = defaultReadTimeout
	}
	if e.config.WriteTimeout == 0 {
		e.config.WriteTimeout = defaultWriteTimeout
	}
	if e.config.MaxRetries == 0 {
		e.config.MaxRetries = defaultMaxRetries
	}
	if e.config.MinRetryBackoff == 0 {
		e.config.MinRetryBackoff = defaultMinRetryBackoff
	}
	if e.config.MaxRetryBackoff == 0 {
		e.config.MaxRetryBackoff = defaultMaxRetryBackoff
	}
}

// Close closes the Redis client
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Client returns the underlying redis client (Escape hatch)
func (e *Engine) Client() *redisV9.Client {
	return e.client
}
