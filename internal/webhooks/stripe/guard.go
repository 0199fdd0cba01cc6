package stripe

import (
	"context"
	"fmt"
	"time"

	"github.com/mambaservices/storefront-backend/pkg/redis"
)

const (
	guardScope = "stripe"
	guardTTL   = 24 * time.Hour
)

// Guard deduplicates webhook events on the processor's event id. The mark is
// written before processing; callers must Delete it when processing fails so
// the processor's retry is not swallowed.
type Guard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewGuard(store redis.IdempotencyStore) (*Guard, error) {
	if store == nil {
		return nil, fmt.Errorf("idempotency store is required")
	}
	return &Guard{store: store, ttl: guardTTL}, nil
}

// CheckAndMark records the event id and reports whether this delivery is the
// first one. A false return means the event was already handled.
func (g *Guard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	return g.store.SetNX(ctx, g.store.IdempotencyKey(guardScope, eventID), "1", g.ttl)
}

// Delete removes the mark so a later redelivery is processed again.
func (g *Guard) Delete(ctx context.Context, eventID string) error {
	return g.store.Del(ctx, g.store.IdempotencyKey(guardScope, eventID))
}
