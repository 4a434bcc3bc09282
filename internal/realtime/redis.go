package realtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "notifications:"

// NewRedis creates a new Redis client
func NewRedis(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func Channel(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

// RedisPusher publishes notification payloads so every instance can deliver
// them to its own websocket clients.
type RedisPusher struct {
	RDB *redis.Client
}

func NewRedisPusher(rdb *redis.Client) *RedisPusher {
	return &RedisPusher{RDB: rdb}
}

func (p *RedisPusher) Push(ctx context.Context, userID uuid.UUID, payload []byte) error {
	if err := p.RDB.Publish(ctx, Channel(userID), payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", Channel(userID), err)
	}
	return nil
}

// Bridge forwards published notifications to the local hub until ctx is done.
func Bridge(ctx context.Context, rdb *redis.Client, hub *Hub, log *zap.Logger) {
	sub := rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			userID, err := uuid.Parse(strings.TrimPrefix(msg.Channel, channelPrefix))
			if err != nil {
				log.Warn("ignoring push on malformed channel", zap.String("channel", msg.Channel))
				continue
			}
			hub.SendToUser(userID, []byte(msg.Payload))
		}
	}
}
