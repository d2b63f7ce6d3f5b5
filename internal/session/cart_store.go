package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CartStore keeps anonymous visitors' carts in redis as an ordered list of
// product IDs keyed by the guest session token. The cart lives exactly as
// long as the session: the TTL is refreshed on every write and the list is
// simply gone once it expires.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartStore creates a redis-backed anonymous cart store
func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("guest_cart:%s", sessionID)
}

// List returns the product IDs in the cart, in insertion order. Entries that
// are not valid UUIDs are skipped.
func (s *CartStore) List(ctx context.Context, sessionID string) ([]uuid.UUID, error) {
	values, err := s.client.LRange(ctx, cartKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session cart: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// Add appends a product ID to the cart. Returns false without modifying the
// cart when the product is already present.
func (s *CartStore) Add(ctx context.Context, sessionID string, productID uuid.UUID) (bool, error) {
	key := cartKey(sessionID)

	// A session cart has a single writer, so a read-then-append check is
	// enough to keep the list duplicate-free.
	existing, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read session cart: %w", err)
	}
	for _, v := range existing {
		if v == productID.String() {
			return false, nil
		}
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, productID.String())
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to add to session cart: %w", err)
	}

	return true, nil
}

// Remove deletes a product ID from the cart. Removing an absent ID is a
// no-op.
func (s *CartStore) Remove(ctx context.Context, sessionID string, productID uuid.UUID) error {
	if err := s.client.LRem(ctx, cartKey(sessionID), 0, productID.String()).Err(); err != nil {
		return fmt.Errorf("failed to remove from session cart: %w", err)
	}
	return nil
}

// Clear resets the cart to empty
func (s *CartStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session cart: %w", err)
	}
	return nil
}

// Count returns the number of items in the cart
func (s *CartStore) Count(ctx context.Context, sessionID string) (int, error) {
	n, err := s.client.LLen(ctx, cartKey(sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count session cart: %w", err)
	}
	return int(n), nil
}
