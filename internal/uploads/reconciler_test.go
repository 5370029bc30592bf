package uploads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mannals/takkatuli-backend/internal/models"
)

type fakeOutbox struct {
	pending  []models.FileDeletion
	resolved []uuid.UUID
	failures map[uuid.UUID]string
}

func newFakeOutbox(filenames ...string) *fakeOutbox {
	f := &fakeOutbox{failures: map[uuid.UUID]string{}}
	for _, name := range filenames {
		f.pending = append(f.pending, models.FileDeletion{
			ID:         uuid.New(),
			Filename:   name,
			EnqueuedAt: time.Now(),
		})
	}
	return f
}

func (f *fakeOutbox) PendingFileDeletions(ctx context.Context, limit int) ([]models.FileDeletion, error) {
	if limit < len(f.pending) {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutbox) ResolveFileDeletion(ctx context.Context, id uuid.UUID) error {
	f.resolved = append(f.resolved, id)
	return nil
}

func (f *fakeOutbox) RecordFileDeletionFailure(ctx context.Context, id uuid.UUID, cause string) error {
	f.failures[id] = cause
	return nil
}

type fakeRemover struct {
	deleted []string
	tokens  []string
	failOn  map[string]error
}

func (f *fakeRemover) DeleteFile(ctx context.Context, filename string, token string) error {
	if err, ok := f.failOn[filename]; ok {
		return err
	}
	f.deleted = append(f.deleted, filename)
	f.tokens = append(f.tokens, token)
	return nil
}

func TestDrainResolvesDeletedFiles(t *testing.T) {
	outbox := newFakeOutbox("a.jpg", "b.png")
	remover := &fakeRemover{}
	r := NewReconciler(outbox, remover, "test-secret", "@every 1m")

	err := r.Drain(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.jpg", "b.png"}, remover.deleted)
	assert.Len(t, outbox.resolved, 2)
	assert.Empty(t, outbox.failures)
	for _, token := range remover.tokens {
		assert.NotEmpty(t, token)
	}
}

func TestDrainRecordsFailuresAndContinues(t *testing.T) {
	outbox := newFakeOutbox("a.jpg", "b.png", "c.gif")
	remover := &fakeRemover{
		failOn: map[string]error{"b.png": errors.New("upload service unreachable")},
	}
	r := NewReconciler(outbox, remover, "test-secret", "@every 1m")

	err := r.Drain(context.Background())
	require.NoError(t, err)

	// The failed entry stays queued; the ones around it still resolve.
	assert.Equal(t, []string{"a.jpg", "c.gif"}, remover.deleted)
	assert.Len(t, outbox.resolved, 2)
	require.Len(t, outbox.failures, 1)
	assert.Equal(t, "upload service unreachable", outbox.failures[outbox.pending[1].ID])
}

func TestDrainEmptyQueueIsNoop(t *testing.T) {
	outbox := newFakeOutbox()
	remover := &fakeRemover{}
	r := NewReconciler(outbox, remover, "test-secret", "@every 1m")

	require.NoError(t, r.Drain(context.Background()))
	assert.Empty(t, remover.deleted)
}
