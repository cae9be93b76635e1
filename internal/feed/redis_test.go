package feed

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/capture"
)

// newOfflineRedis returns a feed whose client points at a closed port.
func newOfflineRedis(t *testing.T) *Redis {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	t.Cleanup(func() { rdb.Close() })
	return NewRedis(rdb, slog.New(slog.DiscardHandler))
}

func TestRedisPublishNeverBlocks(t *testing.T) {
	r := newOfflineRedis(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range cap(r.queue) + 100 {
			r.Publish("m1", capture.Event{Round: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked on a full queue")
	}
	if len(r.queue) != cap(r.queue) {
		t.Errorf("queued = %d, want %d", len(r.queue), cap(r.queue))
	}
}

func TestRedisRunStopsWithContext(t *testing.T) {
	r := newOfflineRedis(t)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()

	r.Publish("m1", capture.Event{Description: "lost"})
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("run = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
}

func TestRedisCheckFailsOffline(t *testing.T) {
	r := newOfflineRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := r.Check(ctx); err == nil {
		t.Error("expected check to fail without a server")
	}
}
