package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mannals/takkatuli-backend/internal/models"
	"github.com/mannals/takkatuli-backend/internal/utils"
)

func TestCreateAndListCategories(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	cat, err := db.CreateCategory(ctx, "General")
	require.NoError(t, err)
	assert.Equal(t, "General", cat.Title)

	_, err = db.CreateCategory(ctx, "Off-topic")
	require.NoError(t, err)

	categories, err := db.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestSubcategoryLookups(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	catID, subcatID := createTestForum(t, db, "General", "Introductions")

	subcat, err := db.GetSubcategoryByID(ctx, subcatID)
	require.NoError(t, err)
	assert.Equal(t, "Introductions", subcat.Title)
	assert.Equal(t, catID, subcat.CategoryID)

	_, err = db.GetSubcategoryByID(ctx, 99999)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))

	subcats, err := db.ListSubcategoriesByCategory(ctx, catID)
	require.NoError(t, err)
	require.Len(t, subcats, 1)
	assert.Equal(t, subcatID, subcats[0].ID)
}

func TestCategoryAndSubcategoryOfPost(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", models.LevelUser)
	catID, subcatID := createTestForum(t, db, "General", "Introductions")
	postID := insertPostAt(t, db, alice, subcatID, strPtr("Hello"), nil, nil, time.Now())

	cat, err := db.CategoryOfPost(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, catID, cat.ID)

	subcat, err := db.SubcategoryOfPost(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, subcatID, subcat.ID)

	_, err = db.CategoryOfPost(ctx, 99999)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestNewestOriginalPostInSubcategoryIgnoresReplies(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", models.LevelUser)
	_, subcatID := createTestForum(t, db, "General", "Introductions")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	originalID := insertPostAt(t, db, alice, subcatID, strPtr("Hello"), nil, nil, base)
	insertPostAt(t, db, alice, subcatID, nil, int64Ptr(originalID), nil, base.Add(time.Hour))

	newest, err := db.NewestOriginalPostInSubcategory(ctx, subcatID)
	require.NoError(t, err)
	require.NotNil(t, newest)
	assert.Equal(t, originalID, newest.ID)
}
