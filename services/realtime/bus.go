package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Emitter publishes realtime events addressed to a single user. Delivery
// is best-effort; the socket gateway subscribed on the other side decides
// what to do with them.
type Emitter interface {
	Emit(ctx context.Context, userID, event string, payload any) error
}

// Bus is the Redis pub/sub implementation of Emitter. Each user has their
// own channel, mirroring per-user rooms on the socket side.
type Bus struct {
	client *redis.Client
}

func NewBus(client *redis.Client) *Bus {
	return &Bus{client: client}
}

func channelFor(userID string) string {
	return "realtime:user:" + userID
}

type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

func (b *Bus) Emit(ctx context.Context, userID, event string, payload any) error {
	msg, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal realtime event %s: %w", event, err)
	}
	if err := b.client.Publish(ctx, channelFor(userID), msg).Err(); err != nil {
		zap.L().Warn("realtime publish failed",
			zap.String("event", event),
			zap.String("user", userID),
			zap.Error(err))
		return fmt.Errorf("failed to publish realtime event %s: %w", event, err)
	}
	return nil
}
