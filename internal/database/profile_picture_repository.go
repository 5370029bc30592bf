// internal/database/profile_picture_repository.go
package database

import (
	"context"
	"database/sql"

	"github.com/mannals/takkatuli-backend/internal/models"
	"github.com/mannals/takkatuli-backend/internal/utils"
)

const pictureColumns = `picture_id, user_id, filename, filesize, media_type, created_at`

// GetProfilePicture fetches a user's profile picture with the bare stored
// filename. Nil when the user has none; that is a valid state.
func (p *PostgresDB) GetProfilePicture(ctx context.Context, userID int64) (*models.ProfilePicture, error) {
	var pic models.ProfilePicture
	err := p.DB.GetContext(ctx, &pic,
		`SELECT `+pictureColumns+` FROM profile_pictures WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query profile picture", err)
	}
	return &pic, nil
}

// GetProfilePictureWithURL fetches a user's profile picture with the filename
// expanded to its public URL and the thumbnail reference derived.
func (p *PostgresDB) GetProfilePictureWithURL(ctx context.Context, userID int64) (*models.ProfilePicture, error) {
	pic, err := p.GetProfilePicture(ctx, userID)
	if err != nil || pic == nil {
		return pic, err
	}
	pic.Thumbnail = p.paths.ThumbnailURL(pic.Filename)
	pic.Filename = p.paths.PublicURL(pic.Filename)
	return pic, nil
}

// SetProfilePicture stores a user's profile picture, replacing any existing
// one in place. A replaced picture's old file is queued for remote deletion
// in the same transaction, so the upload service does not accumulate
// orphans.
func (p *PostgresDB) SetProfilePicture(ctx context.Context, fileData models.PictureInfo, userID int64) (*models.ProfilePicture, error) {
	tx, err := p.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to begin profile picture transaction", err)
	}
	defer tx.Rollback() // Rollback is ignored if tx is committed.

	var oldFilename string
	err = tx.GetContext(ctx, &oldFilename,
		`SELECT filename FROM profile_pictures WHERE user_id = $1 FOR UPDATE`, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to check existing profile picture", err)
	}

	if err == sql.ErrNoRows {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO profile_pictures (user_id, filename, filesize, media_type)
			VALUES ($1, $2, $3, $4)`,
			userID, fileData.Filename, fileData.Filesize, fileData.MediaType)
		if err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to insert profile picture", err)
		}
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE profile_pictures SET filename = $1, filesize = $2, media_type = $3
			WHERE user_id = $4`,
			fileData.Filename, fileData.Filesize, fileData.MediaType, userID)
		if err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to update profile picture", err)
		}
		if oldFilename != fileData.Filename {
			if err := p.enqueueFileDeletion(ctx, tx, oldFilename); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to commit profile picture transaction", err)
	}

	return p.GetProfilePictureWithURL(ctx, userID)
}
