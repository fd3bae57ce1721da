package relay

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisGroup fans broadcasts out through a Redis Pub/Sub channel so every
// server process delivers them to its own members. Membership stays local.
type RedisGroup struct {
	*LocalGroup
	client  *redis.Client
	channel string
}

// NewRedisGroup creates a group publishing on "relay:<name>".
func NewRedisGroup(name string, client *redis.Client, logger *logrus.Logger) *RedisGroup {
	return &RedisGroup{
		LocalGroup: NewLocalGroup(name, logger),
		client:     client,
		channel:    "relay:" + name,
	}
}

// Broadcast publishes data. Local members receive it through Run.
func (g *RedisGroup) Broadcast(ctx context.Context, data []byte) error {
	if err := g.client.Publish(ctx, g.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", g.channel, err)
	}
	return nil
}

// Run subscribes to the group channel and delivers each message to local
// members until ctx is cancelled. ready, if non-nil, is closed once the
// subscription is confirmed.
func (g *RedisGroup) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := g.client.Subscribe(ctx, g.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", g.channel, err)
	}
	if ready != nil {
		close(ready)
	}

	g.logger.WithField("channel", g.channel).Info("Relay subscribed to Redis channel")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			g.deliver([]byte(msg.Payload))
		}
	}
}
