// internal/database/category_repository.go
package database

import (
	"context"
	"database/sql"

	"github.com/mannals/takkatuli-backend/internal/models"
	"github.com/mannals/takkatuli-backend/internal/utils"
)

const categoryColumns = `category_id, title, created_at`
const subcategoryColumns = `subcategory_id, category_id, title, description, created_at`

// ListCategories fetches all categories. Empty slice when none.
func (p *PostgresDB) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := p.DB.SelectContext(ctx, &categories,
		`SELECT `+categoryColumns+` FROM categories ORDER BY category_id`)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query categories", err)
	}
	return categories, nil
}

// CreateCategory inserts a category and re-reads the fresh row.
func (p *PostgresDB) CreateCategory(ctx context.Context, title string) (*models.Category, error) {
	var id int64
	err := p.DB.QueryRowxContext(ctx,
		`INSERT INTO categories (title) VALUES ($1) RETURNING category_id`, title).Scan(&id)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to insert category", err)
	}

	var cat models.Category
	err = p.DB.GetContext(ctx, &cat,
		`SELECT `+categoryColumns+` FROM categories WHERE category_id = $1`, id)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to read back inserted category", err)
	}
	return &cat, nil
}

// GetSubcategoryByID fetches a single subcategory.
func (p *PostgresDB) GetSubcategoryByID(ctx context.Context, subcatID int64) (*models.Subcategory, error) {
	var subcat models.Subcategory
	err := p.DB.GetContext(ctx, &subcat,
		`SELECT `+subcategoryColumns+` FROM subcategories WHERE subcategory_id = $1`, subcatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewNotFoundError("subcategory")
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query subcategory by id", err)
	}
	return &subcat, nil
}

// ListSubcategoriesByCategory fetches all subcategories under a category.
func (p *PostgresDB) ListSubcategoriesByCategory(ctx context.Context, categoryID int64) ([]models.Subcategory, error) {
	subcats := []models.Subcategory{}
	err := p.DB.SelectContext(ctx, &subcats,
		`SELECT `+subcategoryColumns+` FROM subcategories WHERE category_id = $1 ORDER BY subcategory_id`,
		categoryID)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query subcategories", err)
	}
	return subcats, nil
}

// CreateSubcategory inserts a subcategory under a category and re-reads the
// fresh row.
func (p *PostgresDB) CreateSubcategory(ctx context.Context, categoryID int64, title, description string) (*models.Subcategory, error) {
	var id int64
	err := p.DB.QueryRowxContext(ctx, `
		INSERT INTO subcategories (category_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING subcategory_id`,
		categoryID, title, description).Scan(&id)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to insert subcategory", err)
	}

	var subcat models.Subcategory
	err = p.DB.GetContext(ctx, &subcat,
		`SELECT `+subcategoryColumns+` FROM subcategories WHERE subcategory_id = $1`, id)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to read back inserted subcategory", err)
	}
	return &subcat, nil
}

// CategoryOfPost resolves the category a post lives under.
func (p *PostgresDB) CategoryOfPost(ctx context.Context, postID int64) (*models.Category, error) {
	var cat models.Category
	err := p.DB.GetContext(ctx, &cat, `
		SELECT `+categoryColumns+` FROM categories WHERE category_id = (
			SELECT category_id FROM subcategories WHERE subcategory_id = (
				SELECT subcategory_id FROM posts WHERE post_id = $1
			)
		)`, postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewNotFoundError("category of post")
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query category of post", err)
	}
	return &cat, nil
}

// SubcategoryOfPost resolves the subcategory a post lives under.
func (p *PostgresDB) SubcategoryOfPost(ctx context.Context, postID int64) (*models.Subcategory, error) {
	var subcat models.Subcategory
	err := p.DB.GetContext(ctx, &subcat, `
		SELECT `+subcategoryColumns+` FROM subcategories WHERE subcategory_id = (
			SELECT subcategory_id FROM posts WHERE post_id = $1
		)`, postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.NewNotFoundError("subcategory of post")
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query subcategory of post", err)
	}
	return &subcat, nil
}

// NewestOriginalPostInSubcategory fetches the most recent non-reply post in a
// subcategory. Nil when it has no original posts.
func (p *PostgresDB) NewestOriginalPostInSubcategory(ctx context.Context, subcatID int64) (*models.Post, error) {
	var post models.Post
	err := p.DB.GetContext(ctx, &post, `
		SELECT `+postColumns+` FROM posts
		WHERE subcategory_id = $1 AND reply_to IS NULL
		ORDER BY created_at DESC, post_id DESC LIMIT 1`,
		subcatID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query newest original post", err)
	}
	return &post, nil
}
