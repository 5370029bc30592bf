// internal/database/deletion.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mannals/takkatuli-backend/internal/models"
	"github.com/mannals/takkatuli-backend/internal/utils"
)

// DeleteUser removes a user and everything that references them in one
// transaction: votes they cast, votes on their posts and on replies to those
// posts, the replies, the posts, the profile picture, and finally the user
// row. The commit only happens if the user-row delete hits exactly one row.
//
// Files referenced by any deleted row, including other users' replies swept
// up in the cascade, are enqueued for remote deletion inside the same
// transaction; the reconciler removes them from the upload service after the
// local commit.
func (p *PostgresDB) DeleteUser(ctx context.Context, userID int64) (err error) {
	start := time.Now()
	p.metrics.IncrementRequests()
	defer func() {
		p.metrics.AddOperationLatency("delete_user", time.Since(start))
		if err != nil {
			p.metrics.IncrementErrors()
		}
	}()

	tx, err := p.DB.BeginTxx(ctx, nil)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to begin user deletion transaction", err)
	}
	defer tx.Rollback() // Rollback is ignored if tx is committed.

	// Queue every file referenced by a row this transaction is about to
	// delete: the user's own posts and replies, plus other users' replies to
	// the user's posts.
	filenames := []string{}
	err = tx.SelectContext(ctx, &filenames,
		`SELECT filename FROM posts WHERE user_id = $1 AND filename IS NOT NULL`, userID)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to enumerate user files", err)
	}
	replyFiles := []string{}
	err = tx.SelectContext(ctx, &replyFiles, `
		SELECT filename FROM posts
		WHERE reply_to IN (SELECT post_id FROM posts WHERE user_id = $1)
		AND user_id <> $1 AND filename IS NOT NULL`, userID)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to enumerate reply files", err)
	}
	filenames = append(filenames, replyFiles...)
	var pictureFile string
	err = tx.GetContext(ctx, &pictureFile,
		`SELECT filename FROM profile_pictures WHERE user_id = $1`, userID)
	if err == nil {
		filenames = append(filenames, pictureFile)
	} else if err != sql.ErrNoRows {
		return utils.NewAppError(utils.ErrDatabase, "failed to query profile picture file", err)
	}
	for _, name := range filenames {
		if err := p.enqueueFileDeletion(ctx, tx, name); err != nil {
			return err
		}
	}

	// Dependency order: votes first, then replies, then the posts themselves.
	steps := []struct {
		desc  string
		query string
	}{
		{"votes cast by user",
			`DELETE FROM post_votes WHERE user_id = $1`},
		{"votes on user's posts and their replies",
			`DELETE FROM post_votes WHERE post_id IN (
				SELECT post_id FROM posts WHERE user_id = $1
				UNION
				SELECT post_id FROM posts WHERE reply_to IN (SELECT post_id FROM posts WHERE user_id = $1)
			)`},
		{"replies to user's posts",
			`DELETE FROM posts WHERE reply_to IN (SELECT post_id FROM posts WHERE user_id = $1)`},
		{"user's posts",
			`DELETE FROM posts WHERE user_id = $1`},
		{"user's profile picture",
			`DELETE FROM profile_pictures WHERE user_id = $1`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, userID); err != nil {
			return utils.NewAppError(utils.ErrDatabase, "failed to delete "+step.desc, err)
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete user row", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to get rows affected for user delete", err)
	}
	if rowsAffected != 1 {
		return utils.NewNotFoundError("user")
	}

	if err := tx.Commit(); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to commit user deletion", err)
	}

	log.Printf("deleted user %d with %d files queued for remote removal", userID, len(filenames))
	return nil
}

// DeletePost removes a post, its replies and all votes on any of them in one
// transaction. Admins act as the post's owner so the ownership predicate on
// the final delete still matches; for everyone else a zero-row delete after
// the post was seen to exist means an ownership mismatch.
//
// The post's file and any reply files are queued for remote deletion inside
// the transaction; nothing talks to the upload service before the local
// commit.
func (p *PostgresDB) DeletePost(ctx context.Context, postID int64, caller models.Identity) (err error) {
	start := time.Now()
	p.metrics.IncrementRequests()
	defer func() {
		p.metrics.AddOperationLatency("delete_post", time.Since(start))
		if err != nil {
			p.metrics.IncrementErrors()
		}
	}()

	// Existence check happens before any transaction is opened.
	post, err := p.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}

	ownerID := caller.UserID
	if caller.IsAdmin() {
		ownerID = post.UserID
	}

	tx, err := p.DB.BeginTxx(ctx, nil)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to begin post deletion transaction", err)
	}
	defer tx.Rollback() // Rollback is ignored if tx is committed.

	// The enriched read expanded the filename to a public URL; strip the base
	// back off to get the name the upload service knows.
	if post.Filename != nil {
		if err := p.enqueueFileDeletion(ctx, tx, p.paths.StripBase(*post.Filename)); err != nil {
			return err
		}
	}
	replyFiles := []string{}
	err = tx.SelectContext(ctx, &replyFiles,
		`SELECT filename FROM posts WHERE reply_to = $1 AND filename IS NOT NULL`, postID)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to enumerate reply files", err)
	}
	for _, name := range replyFiles {
		if err := p.enqueueFileDeletion(ctx, tx, name); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM post_votes WHERE post_id = $1`, postID); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete votes on post", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM post_votes WHERE post_id IN (SELECT post_id FROM posts WHERE reply_to = $1)`,
		postID); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete votes on replies", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM posts WHERE reply_to = $1`, postID); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete replies", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM posts WHERE post_id = $1 AND user_id = $2`, postID, ownerID)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete post row", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		// The post exists (checked above), so the predicate failed on
		// ownership.
		return utils.NewForbiddenError(
			fmt.Sprintf("post %d is not owned by user %d", postID, caller.UserID))
	}

	if err := tx.Commit(); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to commit post deletion", err)
	}

	log.Printf("deleted post %d (by user %d)", postID, caller.UserID)
	return nil
}

// --- File deletion outbox ---

func (p *PostgresDB) enqueueFileDeletion(ctx context.Context, tx *sqlx.Tx, filename string) error {
	if filename == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO file_deletions (id, filename) VALUES ($1, $2)`,
		uuid.New(), filename)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to enqueue file deletion", err)
	}
	return nil
}

// PendingFileDeletions fetches up to limit queued deletions, oldest first.
func (p *PostgresDB) PendingFileDeletions(ctx context.Context, limit int) ([]models.FileDeletion, error) {
	pending := []models.FileDeletion{}
	err := p.DB.SelectContext(ctx, &pending, `
		SELECT id, filename, enqueued_at, attempts, last_error
		FROM file_deletions
		ORDER BY enqueued_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query pending file deletions", err)
	}
	return pending, nil
}

// ResolveFileDeletion removes a queue entry whose remote delete succeeded.
func (p *PostgresDB) ResolveFileDeletion(ctx context.Context, id uuid.UUID) error {
	_, err := p.DB.ExecContext(ctx, `DELETE FROM file_deletions WHERE id = $1`, id)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to resolve file deletion", err)
	}
	return nil
}

// RecordFileDeletionFailure bumps the attempt counter so the entry is retried
// on a later run.
func (p *PostgresDB) RecordFileDeletionFailure(ctx context.Context, id uuid.UUID, cause string) error {
	_, err := p.DB.ExecContext(ctx,
		`UPDATE file_deletions SET attempts = attempts + 1, last_error = $1 WHERE id = $2`,
		cause, id)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to record file deletion failure", err)
	}
	return nil
}
