package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type recordingLogger struct {
	infos  []string
	errors []string
}

func (l *recordingLogger) Infof(format string, args ...interface{})  { l.infos = append(l.infos, format) }
func (l *recordingLogger) Errorf(format string, args ...interface{}) { l.errors = append(l.errors, format) }

// A client pointed at a closed port makes every operation fail, which is
// exactly the condition the cache must absorb.
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
		MaxRetries:   -1,
		PoolTimeout:  100 * time.Millisecond,
		ReadTimeout:  100 * time.Millisecond,
		WriteTimeout: 100 * time.Millisecond,
	})
}

func TestReviewCacheFailOpen(t *testing.T) {
	log := &recordingLogger{}
	c := NewReviewCache(unreachableClient(), log)
	ctx := context.Background()

	t.Run("get treats failure as miss", func(t *testing.T) {
		var dest map[string]string
		if c.Get(ctx, "url:/reviews/hotel-1", &dest) {
			t.Fatal("expected miss against unreachable cache")
		}
		if len(log.errors) == 0 {
			t.Fatal("expected the failure to be logged")
		}
	})

	t.Run("set swallows failure", func(t *testing.T) {
		c.Set(ctx, "url:/reviews/hotel-1", map[string]string{"k": "v"}, time.Hour)
	})

	t.Run("invalidate swallows failure", func(t *testing.T) {
		c.InvalidatePlace(ctx, "hotel-1")
	})
}
