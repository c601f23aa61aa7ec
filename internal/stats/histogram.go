package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

func histogramKey(placeID string) string {
	return "rating-histogram:" + placeID
}

// HistogramUpdater maintains the per-place star-count hash that place pages
// aggregate from. The hash is derived data; it can be rebuilt from review
// rows at any time.
type HistogramUpdater struct {
	rdb *redis.Client
}

func NewHistogramUpdater(rdb *redis.Client) *HistogramUpdater {
	return &HistogramUpdater{rdb: rdb}
}

// Update moves one vote between rating buckets. A nil oldRating means a fresh
// review, a nil newRating a deletion. Both adjustments land atomically.
func (h *HistogramUpdater) Update(ctx context.Context, placeID string, oldRating, newRating *int) error {
	key := histogramKey(placeID)
	pipe := h.rdb.TxPipeline()
	if oldRating != nil {
		pipe.HIncrBy(ctx, key, strconv.Itoa(*oldRating), -1)
	}
	if newRating != nil {
		pipe.HIncrBy(ctx, key, strconv.Itoa(*newRating), 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update rating histogram for place %s: %w", placeID, err)
	}
	return nil
}
