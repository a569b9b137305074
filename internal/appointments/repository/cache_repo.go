package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/telecare-health/telecare-backend/internal/appointments/domain"
)

const (
	listKeyPrefix = "appt:list:"        // Single slot per subject: appt:list:{subject_id}
	listTTL       = 30 * 24 * time.Hour // TTL for the local list slot (30 days)
)

// CacheRepository holds the device-scoped appointment list in Redis. Each
// subject has a single named slot that is overwritten wholesale on every
// write; the slot is a copy, never the authoritative record.
type CacheRepository struct {
	client *redis.Client
}

func NewCacheRepository(client *redis.Client) *CacheRepository {
	return &CacheRepository{client: client}
}

// Load returns the slot's list and whether the slot exists at all. An
// absent slot is not an error; it signals the first-use fallback.
func (r *CacheRepository) Load(ctx context.Context, subjectID string) ([]domain.AppointmentRecord, bool, error) {
	data, err := r.client.Get(ctx, r.listKey(subjectID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load appointment list: %w", err)
	}

	var records []domain.AppointmentRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal appointment list: %w", err)
	}

	return records, true, nil
}

// Store overwrites the subject's slot with the given ordered list.
func (r *CacheRepository) Store(ctx context.Context, subjectID string, records []domain.AppointmentRecord) error {
	if records == nil {
		records = []domain.AppointmentRecord{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal appointment list: %w", err)
	}

	if err := r.client.Set(ctx, r.listKey(subjectID), data, listTTL).Err(); err != nil {
		return fmt.Errorf("failed to store appointment list: %w", err)
	}

	return nil
}

// Drop removes the subject's slot entirely. The next List becomes a
// first-use remote fetch again.
func (r *CacheRepository) Drop(ctx context.Context, subjectID string) error {
	if err := r.client.Del(ctx, r.listKey(subjectID)).Err(); err != nil {
		return fmt.Errorf("failed to drop appointment list: %w", err)
	}
	return nil
}

func (r *CacheRepository) listKey(subjectID string) string {
	return listKeyPrefix + subjectID
}
