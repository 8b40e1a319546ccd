package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher appends domain events to Redis streams. Publishing is
// fire-and-forget for the callers: services log a failed publish and carry
// on, because the row write it follows has already committed.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish wraps the typed payload in an Event envelope, stamps it, and
// appends it to the stream.
func (p *Publisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	envelope := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"event": raw},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", stream, err)
	}
	return nil
}
