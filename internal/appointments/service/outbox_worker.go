package service

import (
	"context"
	"errors"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/telecare-health/telecare-backend/internal/appointments/domain"
	"github.com/telecare-health/telecare-backend/internal/appointments/repository"
)

const maxDrainAttempts = 5

// OutboxQueue is the drainable side of the outbox.
type OutboxQueue interface {
	Enqueue(ctx context.Context, entry repository.OutboxEntry) error
	Dequeue(ctx context.Context) (*repository.OutboxEntry, error)
	Depth(ctx context.Context) (int64, error)
}

// OutboxWorker periodically replays failed remote creates. Each retry
// reuses the entry's idempotency key so the remote store never
// double-books an appointment. The worker repairs the remote side only;
// it never touches the local slots.
type OutboxWorker struct {
	remote RemoteStore
	queue  OutboxQueue
	cron   *cron.Cron
}

func NewOutboxWorker(remote RemoteStore, queue OutboxQueue) *OutboxWorker {
	return &OutboxWorker{
		remote: remote,
		queue:  queue,
	}
}

// Start schedules the drain every 30 seconds.
func (w *OutboxWorker) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("*/30 * * * * *", func() {
		if err := w.Drain(context.Background()); err != nil {
			log.Printf("Outbox drain failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("Failed to create outbox cron job: %v", err)
		return
	}

	log.Println("Outbox drain scheduler started (every 30s)")
	c.Start()
	w.cron = c
}

// Stop halts the schedule; a running drain finishes first.
func (w *OutboxWorker) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

// Drain retries every currently-queued entry once. Entries that fail
// again are requeued until they exhaust maxDrainAttempts. Entries the
// remote rejects as invalid are dropped outright since replaying them
// can never succeed.
func (w *OutboxWorker) Drain(ctx context.Context) error {
	depth, err := w.queue.Depth(ctx)
	if err != nil {
		return err
	}

	for i := int64(0); i < depth; i++ {
		entry, err := w.queue.Dequeue(ctx)
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}

		_, err = w.remote.Create(ctx, entry.SubjectToken, entry.Record, entry.IdempotencyKey)
		if err == nil {
			recordOutboxDrained()
			log.Printf("[info] operation=outbox_drain record=%s idempotency_key=%s replayed", entry.Record.ID, entry.IdempotencyKey)
			continue
		}

		if errors.Is(err, domain.ErrValidationFailed) {
			log.Printf("[error] operation=outbox_drain record=%s rejected by validation, dropping: %v", entry.Record.ID, err)
			continue
		}

		entry.Attempts++
		if entry.Attempts >= maxDrainAttempts {
			log.Printf("[error] operation=outbox_drain record=%s dropped after %d attempts: %v", entry.Record.ID, entry.Attempts, err)
			continue
		}
		if err := w.queue.Enqueue(ctx, *entry); err != nil {
			return err
		}
	}

	return nil
}
