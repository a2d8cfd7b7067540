// Package notify holds the transient notification feed: short-lived,
// human-readable messages produced by mutations ("presence marked",
// "visitor enrolled") that the UI shows as toasts. Messages expire;
// nothing here is domain state.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is one transient notification.
type Message struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Feed is the abstraction over different backends.
type Feed interface {
	Publish(ctx context.Context, text string) error
	// Drain returns pending non-expired messages, newest first, and
	// removes them from the feed.
	Drain(ctx context.Context) ([]Message, error)
}

// InMemory is a bounded in-process feed for dev/testing.
type InMemory struct {
	ch  chan Message
	ttl time.Duration
}

// NewInMemory creates a bounded in-memory feed. Messages older than
// ttl are dropped on drain; when full, the oldest message is evicted.
func NewInMemory(size int, ttl time.Duration) *InMemory {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &InMemory{ch: make(chan Message, size), ttl: ttl}
}

// Publish enqueues a message, evicting the oldest when full.
func (f *InMemory) Publish(ctx context.Context, text string) error {
	msg := Message{Text: text, At: time.Now().UTC()}
	for {
		select {
		case f.ch <- msg:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			select {
			case <-f.ch:
			default:
			}
		}
	}
}

// Drain empties the feed, discarding expired messages.
func (f *InMemory) Drain(ctx context.Context) ([]Message, error) {
	cutoff := time.Now().Add(-f.ttl)
	var out []Message
	for {
		select {
		case msg := <-f.ch:
			if msg.At.Before(cutoff) {
				continue
			}
			out = append([]Message{msg}, out...)
		default:
			return out, nil
		}
	}
}

// RedisFeed keeps the feed in a Redis list with a TTL on the key, so
// an idle feed disappears on its own.
type RedisFeed struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisFeed builds a feed using LPUSH/LRANGE semantics.
func NewRedisFeed(client *redis.Client, key string, ttl time.Duration) *RedisFeed {
	if key == "" {
		key = "classtrack:notifications"
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisFeed{client: client, key: key, ttl: ttl}
}

// Publish pushes a message and refreshes the key TTL.
func (f *RedisFeed) Publish(ctx context.Context, text string) error {
	raw, err := json.Marshal(Message{Text: text, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	pipe := f.client.TxPipeline()
	pipe.LPush(ctx, f.key, raw)
	pipe.Expire(ctx, f.key, f.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Drain reads and deletes all pending messages.
func (f *RedisFeed) Drain(ctx context.Context) ([]Message, error) {
	pipe := f.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, f.key, 0, -1)
	pipe.Del(ctx, f.key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}
	cutoff := time.Now().Add(-f.ttl)
	var out []Message
	for _, raw := range rangeCmd.Val() {
		var msg Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			continue
		}
		if msg.At.Before(cutoff) {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}
