package stats

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func preferencePattern(userID string) string {
	return "user-preferences:" + userID + "*"
}

// PreferenceRefresher drops a user's cached recommendation data after their
// reviews change, so the next recommendation read recomputes from the
// authoritative rows instead of serving scores based on stale preferences.
type PreferenceRefresher struct {
	rdb *redis.Client
}

func NewPreferenceRefresher(rdb *redis.Client) *PreferenceRefresher {
	return &PreferenceRefresher{rdb: rdb}
}

func (p *PreferenceRefresher) Refresh(ctx context.Context, userID string) error {
	keys, err := p.rdb.Keys(ctx, preferencePattern(userID)).Result()
	if err != nil {
		return fmt.Errorf("scan preference cache for user %s: %w", userID, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := p.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("drop preference cache for user %s: %w", userID, err)
	}
	return nil
}
