// internal/database/vote_repository.go
package database

import (
	"context"
	"database/sql"
	"log"

	"github.com/lib/pq"

	"github.com/mannals/takkatuli-backend/internal/models"
	"github.com/mannals/takkatuli-backend/internal/utils"
)

const voteColumns = `vote_id, post_id, user_id, approve, created_at`

// ToggleVote runs the per-(user, post) vote state machine: no vote inserts,
// the same direction twice removes, the opposite direction flips the row in
// place with its vote_id retained. The whole transition happens inside one
// transaction with the existing row locked, so concurrent toggles serialize
// on the database row, not on anything in-process.
//
// The returned vote is nil when the transition landed on the no-vote state.
func (p *PostgresDB) ToggleVote(ctx context.Context, userID, postID int64, approve bool) (*models.PostVote, error) {
	tx, err := p.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to begin vote transaction", err)
	}
	defer tx.Rollback() // Rollback is ignored if tx is committed.

	var existing models.PostVote
	var prev *models.PostVote
	err = tx.GetContext(ctx, &existing,
		`SELECT `+voteColumns+` FROM post_votes WHERE post_id = $1 AND user_id = $2 FOR UPDATE`,
		postID, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to check existing vote", err)
	}
	if err == nil {
		prev = &existing
	}

	next, op := models.Transition(models.StateOf(prev), approve)

	var result *models.PostVote
	switch op {
	case models.VoteInsert:
		var inserted models.PostVote
		err = tx.GetContext(ctx, &inserted, `
			INSERT INTO post_votes (post_id, user_id, approve)
			VALUES ($1, $2, $3)
			RETURNING `+voteColumns,
			postID, userID, approve)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
				// Lost a race with a concurrent first vote for the same pair.
				return nil, utils.NewAppError(utils.ErrDuplicate, "vote already exists for this post", err)
			}
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to insert vote", err)
		}
		result = &inserted

	case models.VoteUpdate:
		var updated models.PostVote
		err = tx.GetContext(ctx, &updated, `
			UPDATE post_votes SET approve = $1 WHERE vote_id = $2
			RETURNING `+voteColumns,
			approve, prev.ID)
		if err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to update vote", err)
		}
		result = &updated

	case models.VoteDelete:
		_, err = tx.ExecContext(ctx, `DELETE FROM post_votes WHERE vote_id = $1`, prev.ID)
		if err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to delete vote", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to commit vote transaction", err)
	}

	log.Printf("vote on post %d by user %d: %s", postID, userID, next)
	return result, nil
}

// RemoveVote forces the (user, post) pair to the no-vote state. Removing a
// vote that does not exist is not an error.
func (p *PostgresDB) RemoveVote(ctx context.Context, userID, postID int64) error {
	_, err := p.DB.ExecContext(ctx,
		`DELETE FROM post_votes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to remove vote", err)
	}
	return nil
}

// VotesForUser fetches every vote a user has cast. Empty slice when none.
func (p *PostgresDB) VotesForUser(ctx context.Context, userID int64) ([]models.PostVote, error) {
	votes := []models.PostVote{}
	err := p.DB.SelectContext(ctx, &votes,
		`SELECT `+voteColumns+` FROM post_votes WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query user votes", err)
	}
	return votes, nil
}

// VoteOnPost fetches the caller's current vote on a post. Nil means no vote;
// that is a state, not an error.
func (p *PostgresDB) VoteOnPost(ctx context.Context, userID, postID int64) (*models.PostVote, error) {
	var vote models.PostVote
	err := p.DB.GetContext(ctx, &vote,
		`SELECT `+voteColumns+` FROM post_votes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query vote on post", err)
	}
	return &vote, nil
}

// VotesForPost partitions a post's votes into like and dislike lists. Both
// lists are non-nil even when empty.
func (p *PostgresDB) VotesForPost(ctx context.Context, postID int64) (*models.Votes, error) {
	votes := &models.Votes{
		Likes:    []models.PostVote{},
		Dislikes: []models.PostVote{},
	}

	err := p.DB.SelectContext(ctx, &votes.Likes,
		`SELECT `+voteColumns+` FROM post_votes WHERE post_id = $1 AND approve = TRUE`, postID)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query likes", err)
	}

	err = p.DB.SelectContext(ctx, &votes.Dislikes,
		`SELECT `+voteColumns+` FROM post_votes WHERE post_id = $1 AND approve = FALSE`, postID)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query dislikes", err)
	}

	if votes.Likes == nil {
		votes.Likes = []models.PostVote{}
	}
	if votes.Dislikes == nil {
		votes.Dislikes = []models.PostVote{}
	}
	return votes, nil
}
