package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/capture"
)

// ChannelPrefix prefixes the redis channel of every match.
const ChannelPrefix = "capture:match:"

// Redis republishes match events on redis channels so spectators outside
// this process can follow matches. Publish only enqueues; Run performs the
// network writes.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
	queue  chan Message
}

func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	return &Redis{
		client: client,
		logger: logger,
		queue:  make(chan Message, 1024),
	}
}

// Open connects to the redis server at rawURL and verifies it responds.
func Open(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

func (r *Redis) Publish(matchID string, ev capture.Event) {
	select {
	case r.queue <- NewMessage(matchID, ev):
	default:
		r.logger.Warn("redis feed queue full, dropping event", "match_id", matchID)
	}
}

// Run drains the queue until ctx is done.
func (r *Redis) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-r.queue:
			if err := r.client.Publish(ctx, ChannelPrefix+msg.MatchID, msg.Encode()).Err(); err != nil {
				r.logger.Error("publishing match event", "match_id", msg.MatchID, "error", err)
			}
		}
	}
}

// Check pings redis for health reporting.
func (r *Redis) Check(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
