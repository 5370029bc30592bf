package models

import (
	"time"

	"github.com/google/uuid"
)

// FileDeletion is one queued remote file removal. Rows are written inside the
// same transaction as the local deletes that orphan the file, and drained
// asynchronously against the upload service.
type FileDeletion struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Filename   string    `json:"filename" db:"filename"`
	EnqueuedAt time.Time `json:"enqueued_at" db:"enqueued_at"`
	Attempts   int       `json:"attempts" db:"attempts"`
	LastError  *string   `json:"last_error,omitempty" db:"last_error"`
}
