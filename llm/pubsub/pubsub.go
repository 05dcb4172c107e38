// Package pubsub implements the pub/sub transport contract LLMStreamPublish
// publishes chunks through: one JSON-encoded message per chunk, delivered to
// a channel named stream:{session_id}, in generation order (spec.md §4.D
// step 2, §5 "per session, pub/sub chunks appear in generation order").
// Grounded on features/stream/pulse/clients/pulse's client.go layering
// (Options{Redis: *redis.Client}, a narrow Client interface, context-scoped
// Close), simplified from Pulse's consumer-group streams to go-redis/v9's
// plain PUBLISH/SUBSCRIBE primitives, which are the natural fit for a
// single-writer, multi-ephemeral-reader fan-out like this one.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/trussdev/agentcore/agentcoreerr"
)

// Channel renders the channel name a session's chunks are published to.
func Channel(sessionID string) string {
	return fmt.Sprintf("stream:%s", sessionID)
}

// Publisher publishes one value at a time to a named channel. LLMStreamPublish
// calls Close at the end of every invocation on the single Publisher its
// Activities was built with, so one Publisher is shared by all invocations;
// a RedisPublisher built with New leaves the caller's client open in Close.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
	Close() error
}

// RedisPublisher publishes JSON-encoded payloads via a Redis PUBLISH per
// message.
type RedisPublisher struct {
	client *redis.Client
	// ownsClient is true when Close should close the underlying
	// *redis.Client (NewFromURL), false when the caller supplied an
	// already-owned client (New) and retains ownership.
	ownsClient bool
}

// New wraps an existing *redis.Client. Close is then a no-op for the
// connection itself (the caller owns client's lifecycle); use NewFromURL
// when this package should own the connection.
func New(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// NewFromURL opens a new Redis connection from a redis:// URL. The returned
// Publisher owns the connection and closes it in Close.
func NewFromURL(url string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, agentcoreerr.Wrap(agentcoreerr.KindInvalidInput, err, "parse redis url")
	}
	return &RedisPublisher{client: redis.NewClient(opts), ownsClient: true}, nil
}

// Publish JSON-encodes payload and PUBLISHes it to channel.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return agentcoreerr.Wrap(agentcoreerr.KindInvalidInput, err, "marshal chunk")
	}
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		return agentcoreerr.Wrap(agentcoreerr.KindProviderError, err, "publish to %s", channel)
	}
	return nil
}

// Close closes the underlying connection when this Publisher owns it.
func (p *RedisPublisher) Close() error {
	if !p.ownsClient {
		return nil
	}
	return p.client.Close()
}
