package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/telecare-health/telecare-backend/internal/appointments/domain"
	"github.com/telecare-health/telecare-backend/internal/appointments/repository"
)

// LocalStore is the single-slot local list behind the cache.
type LocalStore interface {
	Load(ctx context.Context, subjectID string) (records []domain.AppointmentRecord, exists bool, err error)
	Store(ctx context.Context, subjectID string, records []domain.AppointmentRecord) error
	Drop(ctx context.Context, subjectID string) error
}

// Outbox queues failed remote creates for a later drain.
type Outbox interface {
	Enqueue(ctx context.Context, entry repository.OutboxEntry) error
}

// WriteResult reports a completed write. Warning carries a remote-side
// failure that did not block the local commit; callers surface it out of
// band (a response field, a log line), never as the call's failure.
type WriteResult struct {
	Record   domain.AppointmentRecord
	RemoteID string
	Warning  error
}

// ListResult reports a read. Warning is set when a first-use remote
// fetch failed and the slot could not be seeded.
type ListResult struct {
	Records []domain.AppointmentRecord
	Warning error
}

// SyncCache makes a just-created appointment visible to readers before,
// or even in lieu of, remote confirmation. Writes go remote-first but
// commit locally regardless of the remote outcome; reads prefer the
// local slot and only fall back to the remote store on first use. The
// divergence this allows between local and remote truth is a documented
// property, not an oversight.
type SyncCache struct {
	remote RemoteStore
	local  LocalStore
	outbox Outbox
}

func NewSyncCache(remote RemoteStore, local LocalStore, outbox Outbox) *SyncCache {
	return &SyncCache{
		remote: remote,
		local:  local,
		outbox: outbox,
	}
}

// Write books an appointment. In order: local validation (a malformed
// record aborts everything), a best-effort remote create, then the
// unconditional local prepend. The remote call is always attempted
// before the local commit, but the commit only waits for its
// completion, never its success.
func (s *SyncCache) Write(ctx context.Context, token string, rec domain.AppointmentRecord) (*WriteResult, error) {
	logger := NewLogger(ctx)

	if rec.PatientID == "" || rec.DoctorID == "" {
		return nil, fmt.Errorf("%w: patientId and doctorId are required", domain.ErrValidationFailed)
	}
	if rec.Type != "" && !domain.ValidType(rec.Type) {
		return nil, fmt.Errorf("%w: unknown appointment type %q", domain.ErrValidationFailed, rec.Type)
	}

	if rec.ID == "" {
		rec.ID = "local-" + uuid.New().String()
	}
	if rec.Status == "" {
		rec.Status = domain.StatusConfirmed
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	result := &WriteResult{Record: rec}
	idempotencyKey := uuid.New().String()

	remoteID, err := s.remote.Create(ctx, token, rec, idempotencyKey)
	switch {
	case err == nil:
		result.RemoteID = remoteID
	case errors.Is(err, domain.ErrValidationFailed):
		// The record is malformed; committing it locally would only
		// cache garbage.
		return nil, err
	default:
		logger.LogWarnf("appointment_write", "remote create failed, committing locally anyway: %v", err)
		result.Warning = err
		s.enqueueRetry(ctx, token, rec, idempotencyKey)
	}

	if err := s.prepend(ctx, rec.PatientID, rec); err != nil {
		return nil, err
	}

	return result, nil
}

// List returns the subject's ordered appointment list. Once a local slot
// exists it is authoritative for reads until explicitly invalidated;
// only a subject with no slot at all triggers a remote fetch.
func (s *SyncCache) List(ctx context.Context, token, role, subjectID string) (*ListResult, error) {
	records, exists, err := s.local.Load(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if exists {
		recordCacheHit()
		return &ListResult{Records: records}, nil
	}
	recordCacheMiss()

	remote, err := s.remote.ListForSubject(ctx, token, role, subjectID, domain.ListFilter{})
	if err != nil {
		// First use with the remote store down: the reader gets an
		// empty list and the slot stays unseeded so a later read can
		// retry the fetch.
		NewLogger(ctx).LogWarnf("appointment_list", "first-use remote fetch failed: %v", err)
		return &ListResult{Records: []domain.AppointmentRecord{}, Warning: err}, nil
	}

	if remote == nil {
		remote = []domain.AppointmentRecord{}
	}
	if err := s.local.Store(ctx, subjectID, remote); err != nil {
		return nil, err
	}

	return &ListResult{Records: remote}, nil
}

// UpdateStatus transitions a record's status remotely and mirrors the
// change into the local slot when the record is cached there. As with
// Write, a remote failure does not block the local transition.
func (s *SyncCache) UpdateStatus(ctx context.Context, token, subjectID, recordID, status string) (*WriteResult, error) {
	records, exists, err := s.local.Load(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	var target *domain.AppointmentRecord
	if exists {
		for i := range records {
			if records[i].ID == recordID {
				target = &records[i]
				break
			}
		}
	}
	if target == nil {
		return nil, domain.ErrRecordNotFound
	}
	if !domain.CanTransition(target.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatus, target.Status, status)
	}

	result := &WriteResult{}
	if err := s.remote.UpdateStatus(ctx, token, recordID, status); err != nil {
		NewLogger(ctx).LogWarnf("appointment_status", "remote status update failed, committing locally anyway: %v", err)
		result.Warning = err
	}

	target.Status = status
	if err := s.local.Store(ctx, subjectID, records); err != nil {
		return nil, err
	}

	result.Record = *target
	return result, nil
}

// Invalidate drops the subject's local slot. There is no background
// reconciliation; this is the only way a populated slot is refreshed.
func (s *SyncCache) Invalidate(ctx context.Context, subjectID string) error {
	return s.local.Drop(ctx, subjectID)
}

// prepend writes rec at the head of the subject's slot, creating the
// slot when none exists. Most-recently-written first.
func (s *SyncCache) prepend(ctx context.Context, subjectID string, rec domain.AppointmentRecord) error {
	records, _, err := s.local.Load(ctx, subjectID)
	if err != nil {
		return err
	}

	updated := make([]domain.AppointmentRecord, 0, len(records)+1)
	updated = append(updated, rec)
	updated = append(updated, records...)

	return s.local.Store(ctx, subjectID, updated)
}

func (s *SyncCache) enqueueRetry(ctx context.Context, token string, rec domain.AppointmentRecord, idempotencyKey string) {
	if s.outbox == nil {
		return
	}
	entry := repository.OutboxEntry{
		IdempotencyKey: idempotencyKey,
		SubjectToken:   token,
		Record:         rec,
		Attempts:       0,
		EnqueuedAt:     time.Now().UTC(),
	}
	if err := s.outbox.Enqueue(ctx, entry); err != nil {
		NewLogger(ctx).LogError("outbox_enqueue", err)
		return
	}
	recordOutboxEnqueued()
}
