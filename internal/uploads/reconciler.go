package uploads

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/mannals/takkatuli-backend/internal/auth"
	"github.com/mannals/takkatuli-backend/internal/models"
)

// Batch of queued deletions handled per drain run.
const drainBatchSize = 50

// OutboxStore is the persistence side of the file-deletion queue.
type OutboxStore interface {
	PendingFileDeletions(ctx context.Context, limit int) ([]models.FileDeletion, error)
	ResolveFileDeletion(ctx context.Context, id uuid.UUID) error
	RecordFileDeletionFailure(ctx context.Context, id uuid.UUID, cause string) error
}

// Reconciler drains queued file deletions against the upload service on a
// cron schedule. Local row deletion commits first; this keeps the remote
// store consistent afterwards, retrying failures on later runs.
type Reconciler struct {
	store    OutboxStore
	remover  FileRemover
	secret   string
	schedule string
	cron     *cron.Cron
}

func NewReconciler(store OutboxStore, remover FileRemover, jwtSecret string, schedule string) *Reconciler {
	return &Reconciler{
		store:    store,
		remover:  remover,
		secret:   jwtSecret,
		schedule: schedule,
	}
}

// Start schedules the drain job.
func (r *Reconciler) Start() error {
	slog.Info("starting file deletion reconciler", "schedule", r.schedule)
	r.cron = cron.New()
	_, err := r.cron.AddFunc(r.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := r.Drain(ctx); err != nil {
			slog.Error("file deletion drain failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the schedule. Safe to call when never started.
func (r *Reconciler) Stop() {
	if r.cron != nil {
		r.cron.Stop()
		slog.Info("file deletion reconciler stopped")
	}
}

// Drain processes one batch of queued deletions. Per-file failures are
// recorded on their rows and do not abort the batch; only queue reads and
// token minting fail the run as a whole.
func (r *Reconciler) Drain(ctx context.Context) error {
	pending, err := r.store.PendingFileDeletions(ctx, drainBatchSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	token, err := auth.GenerateServiceToken(r.secret)
	if err != nil {
		return err
	}

	for _, entry := range pending {
		if err := r.remover.DeleteFile(ctx, entry.Filename, token); err != nil {
			slog.Warn("remote file delete failed",
				"filename", entry.Filename, "attempts", entry.Attempts+1, "error", err)
			if recErr := r.store.RecordFileDeletionFailure(ctx, entry.ID, err.Error()); recErr != nil {
				return recErr
			}
			continue
		}
		if err := r.store.ResolveFileDeletion(ctx, entry.ID); err != nil {
			return err
		}
		slog.Info("remote file deleted", "filename", entry.Filename)
	}
	return nil
}
