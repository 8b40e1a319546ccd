package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultBatchSize     = 10
	defaultBlockDuration = 5 * time.Second
)

// Handler processes one decoded event. A non-nil return leaves the message
// un-acked, so the consumer group redelivers it.
type Handler func(ctx context.Context, event Event) error

// Subscriber consumes a stream through a consumer group and dispatches each
// decoded event to its Handler. Delivery is at-least-once; handlers carry
// their own idempotency.
type Subscriber struct {
	client        *redis.Client
	group         string
	consumer      string
	stream        string
	handler       Handler
	batchSize     int64
	blockDuration time.Duration
}

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
}

func NewSubscriber(client *redis.Client, config SubscriberConfig) *Subscriber {
	if config.BatchSize == 0 {
		config.BatchSize = defaultBatchSize
	}
	if config.BlockDuration == 0 {
		config.BlockDuration = defaultBlockDuration
	}

	return &Subscriber{
		client:        client,
		group:         config.Group,
		consumer:      config.Consumer,
		stream:        config.Stream,
		handler:       config.Handler,
		batchSize:     config.BatchSize,
		blockDuration: config.BlockDuration,
	}
}

// Start creates the consumer group if needed and consumes until the context
// is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !isBusyGroup(err) {
		return fmt.Errorf("failed to create consumer group %s: %w", s.group, err)
	}

	log.Printf("Subscriber started: stream=%s, group=%s, consumer=%s", s.stream, s.group, s.consumer)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Subscriber stopping: %s", s.stream)
			return ctx.Err()
		default:
			if err := s.consumeBatch(ctx); err != nil {
				log.Printf("Error reading from %s: %v", s.stream, err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (s *Subscriber) consumeBatch(ctx context.Context) error {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := s.dispatch(ctx, message); err != nil {
				// No ack: the group redelivers the message.
				log.Printf("Failed to process message %s: %v", message.ID, err)
				continue
			}
			if err := s.client.XAck(ctx, s.stream, s.group, message.ID).Err(); err != nil {
				log.Printf("Failed to ack message %s: %v", message.ID, err)
			}
		}
	}
	return nil
}

func (s *Subscriber) dispatch(ctx context.Context, message redis.XMessage) error {
	raw, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("message %s carries no event field", message.ID)
	}

	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return s.handler(ctx, event)
}

// isBusyGroup matches the server reply for a consumer group that already
// exists, which XGROUP CREATE reports as an error.
func isBusyGroup(err error) bool {
	var redisErr redis.Error
	return errors.As(err, &redisErr) && strings.HasPrefix(redisErr.Error(), "BUSYGROUP")
}
