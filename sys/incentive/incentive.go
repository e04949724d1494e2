// Package incentive implements the performance-incentive engines of the
// marketplace: agility scoring, streak bonuses, punishments, rankings and
// achievements. The engines are stateless over the shared store; every
// compound mutation runs inside a single transaction.
package incentive

import (
	"context"
	"errors"
	"log"
	"time"

	"cleanscore-api/res/cache"
	"cleanscore-api/res/notification"
	"cleanscore-api/res/payout"
	"cleanscore-api/res/store"
)

type Config struct {
	Logger   *log.Logger
	Store    store.Store
	Cache    cache.Cache
	Notifier notification.NotificationService
	Payouts  payout.Gateway
}

// atomicallyWithRetry runs fn in a transaction and retries once when the
// unit of work lost an optimistic version check on the cleaner row.
func (c *Config) atomicallyWithRetry(ctx context.Context, fn func(store.Store) error) error {
	err := c.Store.Atomically(ctx, fn)
	if errors.Is(err, store.ErrVersionConflict) {
		err = c.Store.Atomically(ctx, fn)
	}
	return err
}

// notify delivers a notification outside the transactional section.
// Failures are logged and swallowed: they never fail the triggering
// business operation.
func (c *Config) notify(ctx context.Context, actorID, title, message string, typ notification.NotificationType) {
	if c.Notifier == nil {
		return
	}
	if err := c.Notifier.Notify(ctx, actorID, title, message, typ); err != nil {
		c.Logger.Printf("Notification delivery failed (%s to %s): %s", typ, actorID, err)
	}
}

func (c *Config) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if c.Cache == nil {
		return false
	}
	return c.Cache.GetJSON(ctx, key, dest) == nil
}

func (c *Config) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.Cache == nil {
		return
	}
	if err := c.Cache.SetJSON(ctx, key, value, ttl); err != nil {
		c.Logger.Printf("Cache write failed for %s: %s", key, err)
	}
}

func (c *Config) cacheInvalidate(ctx context.Context, patterns ...string) {
	if c.Cache == nil {
		return
	}
	for _, pattern := range patterns {
		if err := c.Cache.DeletePattern(ctx, pattern); err != nil {
			c.Logger.Printf("Cache invalidation failed for %s: %s", pattern, err)
		}
	}
}
