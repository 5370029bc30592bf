// internal/database/post_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mannals/takkatuli-backend/internal/models"
	"github.com/mannals/takkatuli-backend/internal/utils"
)

const postColumns = `post_id, user_id, subcategory_id, filename, filesize, media_type, reply_to, title, text_content, created_at, edited_at`

// decorateFile expands a stored filename into its public URL and derives the
// thumbnail reference. No-op for posts without a file.
func (p *PostgresDB) decorateFile(post *models.Post) {
	if post.Filename == nil {
		return
	}
	thumb := p.paths.ThumbnailURL(*post.Filename)
	public := p.paths.PublicURL(*post.Filename)
	post.Filename = &public
	post.Thumbnail = &thumb
}

// ListAllPosts fetches every post, original and reply alike.
func (p *PostgresDB) ListAllPosts(ctx context.Context) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, post_id DESC`
	posts := []models.Post{}
	err := p.DB.SelectContext(ctx, &posts, query)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query all posts", err)
	}
	for i := range posts {
		p.decorateFile(&posts[i])
	}
	return posts, nil
}

// ListOriginalPosts fetches every post that is not a reply.
func (p *PostgresDB) ListOriginalPosts(ctx context.Context) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE reply_to IS NULL ORDER BY created_at DESC, post_id DESC`
	posts := []models.Post{}
	err := p.DB.SelectContext(ctx, &posts, query)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query original posts", err)
	}
	for i := range posts {
		p.decorateFile(&posts[i])
	}
	return posts, nil
}

// GetPostByID fetches a post enriched with its subcategory title, owner
// username, optional profile picture and full vote lists. A missing owner or
// subcategory behind an existing post means the store lost referential
// integrity; that surfaces as an error instead of a partial result.
func (p *PostgresDB) GetPostByID(ctx context.Context, postID int64) (*models.PostWithDetails, error) {
	var post models.Post
	query := `SELECT ` + postColumns + ` FROM posts WHERE post_id = $1`
	err := p.DB.GetContext(ctx, &post, query, postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewNotFoundError("post")
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query post by id", err)
	}
	return p.enrichPost(ctx, post)
}

// enrichPost assembles the detail projection around an already-fetched row.
func (p *PostgresDB) enrichPost(ctx context.Context, post models.Post) (*models.PostWithDetails, error) {
	var username string
	err := p.DB.GetContext(ctx, &username, `SELECT username FROM users WHERE user_id = $1`, post.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrNotFound,
				fmt.Sprintf("owner %d of post %d not found", post.UserID, post.ID), err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query post owner", err)
	}

	var subcatTitle string
	err = p.DB.GetContext(ctx, &subcatTitle,
		`SELECT title FROM subcategories WHERE subcategory_id = $1`, post.SubcategoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewAppError(utils.ErrNotFound,
				fmt.Sprintf("subcategory %d of post %d not found", post.SubcategoryID, post.ID), err)
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query post subcategory", err)
	}

	// Profile picture is optional; absence is a valid state, not an error.
	var picture *models.PictureInfo
	var pic models.ProfilePicture
	err = p.DB.GetContext(ctx, &pic,
		`SELECT picture_id, user_id, filename, filesize, media_type, created_at FROM profile_pictures WHERE user_id = $1`,
		post.UserID)
	if err != nil && err != sql.ErrNoRows {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query owner profile picture", err)
	}
	if err == nil {
		picture = &models.PictureInfo{
			Filename:  p.paths.PublicURL(pic.Filename),
			Filesize:  pic.Filesize,
			MediaType: pic.MediaType,
		}
	}

	votes, err := p.VotesForPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	p.decorateFile(&post)

	return &models.PostWithDetails{
		Post:            post,
		Username:        username,
		SubcategoryName: subcatTitle,
		ProfilePicture:  picture,
		Votes:           *votes,
	}, nil
}

// ListReplies fetches every reply to an original post, oldest first, each
// enriched like GetPostByID. An unknown original and an original with no
// replies both come back as an empty slice; callers that care must check the
// original's existence first.
func (p *PostgresDB) ListReplies(ctx context.Context, originalID int64) ([]models.PostWithDetails, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE reply_to = $1 ORDER BY created_at ASC, post_id ASC`
	rows := []models.Post{}
	err := p.DB.SelectContext(ctx, &rows, query, originalID)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query replies", err)
	}

	replies := make([]models.PostWithDetails, 0, len(rows))
	for _, row := range rows {
		enriched, err := p.enrichPost(ctx, row)
		if err != nil {
			return nil, err
		}
		replies = append(replies, *enriched)
	}
	return replies, nil
}

// CreatePost inserts an original post and re-reads the fresh row to pick up
// the generated id and timestamp.
func (p *PostgresDB) CreatePost(ctx context.Context, fields models.NewPost, ownerID int64) (*models.Post, error) {
	query := `
		INSERT INTO posts (user_id, subcategory_id, filename, filesize, media_type, title, text_content)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING post_id
	`
	var postID int64
	err := p.DB.QueryRowxContext(ctx, query,
		ownerID,
		fields.SubcategoryID,
		fields.Filename,
		fields.Filesize,
		fields.MediaType,
		fields.Title,
		fields.TextContent,
	).Scan(&postID)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to insert post", err)
	}

	return p.readBackPost(ctx, postID)
}

// CreateReply inserts a reply. The target must be an original post; the
// hierarchy is exactly two levels deep and a reply pointing at another reply
// is rejected up front rather than left to corrupt previews later.
func (p *PostgresDB) CreateReply(ctx context.Context, fields models.NewReply, ownerID int64) (*models.Post, error) {
	var targetReplyTo *int64
	err := p.DB.GetContext(ctx, &targetReplyTo,
		`SELECT reply_to FROM posts WHERE post_id = $1`, fields.ReplyTo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewNotFoundError("original post")
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query reply target", err)
	}
	if targetReplyTo != nil {
		return nil, utils.NewAppError(utils.ErrInvalidInput,
			fmt.Sprintf("post %d is itself a reply and cannot be replied to", fields.ReplyTo), nil)
	}

	query := `
		INSERT INTO posts (user_id, subcategory_id, text_content, reply_to)
		VALUES ($1, $2, $3, $4)
		RETURNING post_id
	`
	var postID int64
	err = p.DB.QueryRowxContext(ctx, query,
		ownerID,
		fields.SubcategoryID,
		fields.TextContent,
		fields.ReplyTo,
	).Scan(&postID)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to insert reply", err)
	}

	return p.readBackPost(ctx, postID)
}

func (p *PostgresDB) readBackPost(ctx context.Context, postID int64) (*models.Post, error) {
	var post models.Post
	err := p.DB.GetContext(ctx, &post,
		`SELECT `+postColumns+` FROM posts WHERE post_id = $1`, postID)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to read back inserted post", err)
	}
	p.decorateFile(&post)
	return &post, nil
}

// UpdatePost applies a partial edit to a post the caller owns. Existence and
// ownership are checked separately so the two failure modes stay
// distinguishable, and the UPDATE itself still filters on both post_id and
// user_id.
func (p *PostgresDB) UpdatePost(ctx context.Context, edit models.PostEdit, ownerID int64, postID int64) (*models.Post, error) {
	if edit.Empty() {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "no fields to update", nil)
	}

	var currentOwner int64
	err := p.DB.GetContext(ctx, &currentOwner,
		`SELECT user_id FROM posts WHERE post_id = $1`, postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewNotFoundError("post")
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query post for update", err)
	}
	if currentOwner != ownerID {
		return nil, utils.NewForbiddenError(fmt.Sprintf("post %d is not owned by user %d", postID, ownerID))
	}

	setClauses := []string{}
	args := []interface{}{}
	addSet := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if edit.Title != nil {
		addSet("title", *edit.Title)
	}
	if edit.TextContent != nil {
		addSet("text_content", *edit.TextContent)
	}
	if edit.Filename != nil {
		addSet("filename", *edit.Filename)
	}
	if edit.Filesize != nil {
		addSet("filesize", *edit.Filesize)
	}
	if edit.MediaType != nil {
		addSet("media_type", *edit.MediaType)
	}
	addSet("edited_at", time.Now())

	args = append(args, postID, ownerID)
	query := fmt.Sprintf("UPDATE posts SET %s WHERE post_id = $%d AND user_id = $%d",
		strings.Join(setClauses, ", "), len(args)-1, len(args))

	result, err := p.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to update post", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		// Row vanished between the ownership check and the update.
		log.Printf("post %d disappeared during update", postID)
		return nil, utils.NewNotFoundError("post")
	}

	return p.readBackPost(ctx, postID)
}
