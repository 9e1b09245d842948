package presence

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lecturecast/signaling/config"
)

const memberTTL = 24 * time.Hour

// Mirror reflects room membership into Redis so operators can inspect live
// rooms. It is best-effort: the in-memory store stays authoritative and
// failures are logged, never surfaced.
type Mirror struct {
	client *redis.Client
	ctx    context.Context
}

// Connect opens the mirror and verifies the connection.
func Connect(cfg config.RedisConfig) (*Mirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Mirror{client: client, ctx: ctx}, nil
}

// Close closes the Redis connection.
func (m *Mirror) Close() error {
	return m.client.Close()
}

// MemberJoined records memberID in the room's member set. The set expires
// on its own, since rooms have no idle teardown.
func (m *Mirror) MemberJoined(roomID, memberID string) {
	key := "room:" + roomID + ":members"
	if err := m.client.SAdd(m.ctx, key, memberID).Err(); err != nil {
		log.Printf("Failed to mirror member %s in room %s: %v", memberID, roomID, err)
		return
	}
	m.client.Expire(m.ctx, key, memberTTL)
}

// RoomClosed drops the room's member set.
func (m *Mirror) RoomClosed(roomID string) {
	if err := m.client.Del(m.ctx, "room:"+roomID+":members").Err(); err != nil {
		log.Printf("Failed to clear members for room %s: %v", roomID, err)
	}
}
