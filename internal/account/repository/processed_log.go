package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const processedKeyPrefix = "transactions:processed:"

// ProcessedLog records which transaction events have already been applied to
// a balance, so redelivered stream messages are skipped.
type ProcessedLog struct {
	client *redis.Client
}

func NewProcessedLog(client *redis.Client) *ProcessedLog {
	return &ProcessedLog{client: client}
}

// IsProcessed reports whether the transaction has already been applied to a
// balance. On a Redis failure the event is treated as new; a double-applied
// balance is preferred over a silently dropped one.
func (p *ProcessedLog) IsProcessed(ctx context.Context, transactionID int64) bool {
	val, err := p.client.Exists(ctx, processedKey(transactionID)).Result()
	if err != nil {
		log.Printf("ProcessedLog: read error for transaction %d: %v", transactionID, err)
		return false
	}
	return val > 0
}

// MarkProcessed records the transaction id once its balance delta has been
// applied. Called only after the balance write succeeds, so a failure before
// that point leaves the event unmarked and a redelivery re-applies it. The
// key expires after 72 hours, long enough to cover any realistic redelivery
// window from a consumer group.
func (p *ProcessedLog) MarkProcessed(ctx context.Context, transactionID int64) error {
	return p.client.Set(ctx, processedKey(transactionID), "1", 72*time.Hour).Err()
}

func processedKey(transactionID int64) string {
	return fmt.Sprintf("%s%d", processedKeyPrefix, transactionID)
}
