package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"family-tracker/backend/internal/devicehealth/domain"
)

// CachedStore fronts a CooldownStore with Redis keys that expire when the cooldown ends.
// Redis failures fall back to the underlying store.
type CachedStore struct {
	client redis.Cmdable
	next   CooldownStore
	window time.Duration
	now    func() time.Time
}

// NewCachedStore returns a CachedStore with keys living for window after each notification.
func NewCachedStore(client redis.Cmdable, next CooldownStore, window time.Duration) *CachedStore {
	return &CachedStore{client: client, next: next, window: window, now: time.Now}
}

func cooldownKey(userID string, kind domain.Kind) string {
	return fmt.Sprintf("devicehealth:cooldown:%s:%s", userID, kind)
}

// Recent reports a cached cooldown without touching the store. A cache miss consults the store and,
// when it finds a notification, caches it for the rest of its window.
func (s *CachedStore) Recent(ctx context.Context, userID string, kind domain.Kind, since time.Time) (*domain.Notification, error) {
	key := cooldownKey(userID, kind)
	count, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		log.Printf("devicehealth: cooldown cache check %s: %v", key, err)
	} else if count > 0 {
		return &domain.Notification{UserID: userID, Kind: kind}, nil
	}

	n, err := s.next.Recent(ctx, userID, kind, since)
	if err != nil || n == nil {
		return n, err
	}
	if ttl := n.SentAt.Add(s.window).Sub(s.now()); ttl > 0 {
		if err := s.client.Set(ctx, key, n.SentAt.UTC().Format(time.RFC3339), ttl).Err(); err != nil {
			log.Printf("devicehealth: cooldown cache fill %s: %v", key, err)
		}
	}
	return n, nil
}

// Record persists to the store first; the cache key is written only after the store accepted it.
func (s *CachedStore) Record(ctx context.Context, n *domain.Notification) error {
	if err := s.next.Record(ctx, n); err != nil {
		return err
	}
	key := cooldownKey(n.UserID, n.Kind)
	if err := s.client.Set(ctx, key, n.SentAt.UTC().Format(time.RFC3339), s.window).Err(); err != nil {
		log.Printf("devicehealth: cooldown cache set %s: %v", key, err)
	}
	return nil
}
