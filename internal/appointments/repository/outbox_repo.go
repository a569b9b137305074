package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/telecare-health/telecare-backend/internal/appointments/domain"
)

const outboxKey = "appt:outbox" // Pending remote creates, oldest at the tail

// OutboxEntry is a remote create that failed and awaits retry. The
// idempotency key is fixed at enqueue time so retries never double-book.
type OutboxEntry struct {
	IdempotencyKey string                   `json:"idempotency_key"`
	SubjectToken   string                   `json:"subject_token"`
	Record         domain.AppointmentRecord `json:"record"`
	Attempts       int                      `json:"attempts"`
	EnqueuedAt     time.Time                `json:"enqueued_at"`
}

// OutboxRepository queues failed remote creates in a Redis list.
type OutboxRepository struct {
	client *redis.Client
}

func NewOutboxRepository(client *redis.Client) *OutboxRepository {
	return &OutboxRepository{client: client}
}

// Enqueue pushes an entry to the head of the queue.
func (r *OutboxRepository) Enqueue(ctx context.Context, entry OutboxEntry) error {
	if entry.EnqueuedAt.IsZero() {
		entry.EnqueuedAt = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox entry: %w", err)
	}

	if err := r.client.LPush(ctx, outboxKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue outbox entry: %w", err)
	}

	return nil
}

// Dequeue pops the oldest entry. Returns (nil, nil) on an empty queue.
func (r *OutboxRepository) Dequeue(ctx context.Context) (*OutboxEntry, error) {
	data, err := r.client.RPop(ctx, outboxKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue outbox entry: %w", err)
	}

	var entry OutboxEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outbox entry: %w", err)
	}

	return &entry, nil
}

// Depth returns the number of queued entries.
func (r *OutboxRepository) Depth(ctx context.Context) (int64, error) {
	n, err := r.client.LLen(ctx, outboxKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read outbox depth: %w", err)
	}
	return n, nil
}
