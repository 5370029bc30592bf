// internal/database/activity.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mannals/takkatuli-backend/internal/models"
	"github.com/mannals/takkatuli-backend/internal/utils"
)

// NewestPostInSubcategory fetches the most recent post, original or reply, in
// a subcategory. Exact created_at ties break on the higher post_id so the
// result is deterministic. Nil when the subcategory has no posts.
func (p *PostgresDB) NewestPostInSubcategory(ctx context.Context, subcatID int64) (*models.Post, error) {
	var post models.Post
	err := p.DB.GetContext(ctx, &post,
		`SELECT `+postColumns+` FROM posts WHERE subcategory_id = $1 ORDER BY created_at DESC, post_id DESC LIMIT 1`,
		subcatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query newest post in subcategory", err)
	}
	return &post, nil
}

// LatestActivityPreview summarizes the newest activity in a subcategory. When
// the newest row is a reply, the preview carries the reply's author and
// timestamp but points at the original post it targets; the hierarchy being
// two levels deep, reply_to resolves to the original directly. Nil when the
// subcategory has no posts at all.
func (p *PostgresDB) LatestActivityPreview(ctx context.Context, subcatID int64) (*models.ActivityPreview, error) {
	newest, err := p.NewestPostInSubcategory(ctx, subcatID)
	if err != nil {
		return nil, err
	}
	if newest == nil {
		return nil, nil
	}

	username, err := p.usernameOf(ctx, newest.UserID)
	if err != nil {
		return nil, err
	}

	original := models.PostRef{PostID: newest.ID}
	if newest.Title != nil {
		original.Title = *newest.Title
	}

	if newest.IsReply() {
		err = p.DB.GetContext(ctx, &original,
			`SELECT post_id, COALESCE(title, '') AS title FROM posts WHERE post_id = $1`, *newest.ReplyTo)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, utils.NewAppError(utils.ErrNotFound,
					fmt.Sprintf("original post %d of reply %d not found", *newest.ReplyTo, newest.ID), err)
			}
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to query reply target", err)
		}
	}

	return &models.ActivityPreview{
		Username:  username,
		CreatedAt: newest.CreatedAt,
		Original:  original,
	}, nil
}

// SubcategoryListing builds the thread overview of a subcategory: every
// original post, newest first, with its reply count and a latest-reply stamp.
// The stamp picks the reply with the lowest created_at; upstream behavior is
// preserved pending product confirmation. Posts without replies fall back to
// their own owner and timestamp with a zero count.
func (p *PostgresDB) SubcategoryListing(ctx context.Context, subcatID int64) (_ []models.PostPreview, err error) {
	start := time.Now()
	p.metrics.IncrementRequests()
	defer func() {
		p.metrics.AddOperationLatency("subcategory_listing", time.Since(start))
		if err != nil {
			p.metrics.IncrementErrors()
		}
	}()

	type listedPost struct {
		PostID    int64     `db:"post_id"`
		CreatedAt time.Time `db:"created_at"`
		UserID    int64     `db:"user_id"`
		Title     string    `db:"title"`
	}
	originals := []listedPost{}
	err = p.DB.SelectContext(ctx, &originals, `
		SELECT post_id, created_at, user_id, COALESCE(title, '') AS title
		FROM posts
		WHERE subcategory_id = $1 AND reply_to IS NULL
		ORDER BY created_at DESC, post_id DESC`,
		subcatID)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query subcategory posts", err)
	}

	previews := make([]models.PostPreview, 0, len(originals))
	for _, row := range originals {
		owner, err := p.usernameOf(ctx, row.UserID)
		if err != nil {
			return nil, err
		}

		preview := models.PostPreview{
			PostID:    row.PostID,
			Title:     row.Title,
			CreatedAt: row.CreatedAt,
			Username:  owner,
		}

		type replyStamp struct {
			CreatedAt time.Time `db:"created_at"`
			UserID    int64     `db:"user_id"`
		}
		var first replyStamp
		err = p.DB.GetContext(ctx, &first, `
			SELECT created_at, user_id FROM posts
			WHERE reply_to = $1
			ORDER BY created_at, post_id LIMIT 1`,
			row.PostID)
		switch {
		case err == sql.ErrNoRows:
			preview.Latest = models.ReplyStamp{Username: owner, CreatedAt: row.CreatedAt}
			preview.RepliesCount = 0
		case err != nil:
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to query latest reply", err)
		default:
			replier, err := p.usernameOf(ctx, first.UserID)
			if err != nil {
				return nil, err
			}
			var count int64
			err = p.DB.GetContext(ctx, &count,
				`SELECT COUNT(*) FROM posts WHERE reply_to = $1`, row.PostID)
			if err != nil {
				return nil, utils.NewAppError(utils.ErrDatabase, "failed to count replies", err)
			}
			preview.Latest = models.ReplyStamp{Username: replier, CreatedAt: first.CreatedAt}
			preview.RepliesCount = count
		}

		previews = append(previews, preview)
	}
	return previews, nil
}

// CategoryTree assembles every category with its subcategories, each carrying
// its latest-activity preview. Subcategories without posts stay in the tree
// with a nil preview.
func (p *PostgresDB) CategoryTree(ctx context.Context) (_ []models.CategoryWithSubcategories, err error) {
	start := time.Now()
	p.metrics.IncrementRequests()
	defer func() {
		p.metrics.AddOperationLatency("category_tree", time.Since(start))
		if err != nil {
			p.metrics.IncrementErrors()
		}
	}()

	categories, err := p.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	tree := make([]models.CategoryWithSubcategories, 0, len(categories))
	for _, cat := range categories {
		subcats, err := p.ListSubcategoriesByCategory(ctx, cat.ID)
		if err != nil {
			return nil, err
		}

		withLatest := make([]models.SubcategoryWithLatest, 0, len(subcats))
		for _, subcat := range subcats {
			latest, err := p.LatestActivityPreview(ctx, subcat.ID)
			if err != nil {
				return nil, err
			}
			withLatest = append(withLatest, models.SubcategoryWithLatest{
				Subcategory: subcat,
				Latest:      latest,
			})
		}

		tree = append(tree, models.CategoryWithSubcategories{
			Category:      cat,
			Subcategories: withLatest,
		})
	}
	return tree, nil
}

// usernameOf resolves a user id that referential integrity guarantees to
// exist; a miss is store corruption and propagates as an error.
func (p *PostgresDB) usernameOf(ctx context.Context, userID int64) (string, error) {
	var username string
	err := p.DB.GetContext(ctx, &username, `SELECT username FROM users WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", utils.NewAppError(utils.ErrNotFound,
				fmt.Sprintf("user %d referenced but not found", userID), err)
		}
		return "", utils.NewAppError(utils.ErrDatabase, "failed to query username", err)
	}
	return username, nil
}
