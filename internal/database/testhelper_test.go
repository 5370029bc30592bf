package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mannals/takkatuli-backend/internal/models"
	"github.com/mannals/takkatuli-backend/internal/utils"
)

// testBaseURL is the public prefix used for file references in tests.
const testBaseURL = "http://localhost:8081/uploads/"

// setupTestDB connects to the database named by TEST_DATABASE_URL and
// recreates the schema from scratch. Tests are skipped when the variable is
// unset so the suite stays runnable without a local Postgres.
func setupTestDB(t *testing.T) *PostgresDB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database integration test")
	}

	db, err := NewPostgresDB(dsn, testBaseURL, utils.NewMetricsCollector())
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	ctx := context.Background()
	_, err = db.DB.ExecContext(ctx, `
		DROP TABLE IF EXISTS file_deletions CASCADE;
		DROP TABLE IF EXISTS post_votes CASCADE;
		DROP TABLE IF EXISTS profile_pictures CASCADE;
		DROP TABLE IF EXISTS posts CASCADE;
		DROP TABLE IF EXISTS subcategories CASCADE;
		DROP TABLE IF EXISTS categories CASCADE;
		DROP TABLE IF EXISTS users CASCADE;
	`)
	if err != nil {
		t.Fatalf("failed to clean test database: %v", err)
	}
	if err := db.InitializeTables(ctx); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close(context.Background())
	})
	return db
}

func createTestUser(t *testing.T, db *PostgresDB, username string, level models.UserLevel) int64 {
	t.Helper()
	var id int64
	err := db.DB.QueryRowx(
		`INSERT INTO users (username, user_level) VALUES ($1, $2) RETURNING user_id`,
		username, level).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test user %s: %v", username, err)
	}
	return id
}

func createTestForum(t *testing.T, db *PostgresDB, category, subcategory string) (int64, int64) {
	t.Helper()
	ctx := context.Background()
	cat, err := db.CreateCategory(ctx, category)
	if err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	subcat, err := db.CreateSubcategory(ctx, cat.ID, subcategory, "test subcategory")
	if err != nil {
		t.Fatalf("failed to create test subcategory: %v", err)
	}
	return cat.ID, subcat.ID
}

// insertPostAt writes a post row with an explicit timestamp so ordering
// assertions are deterministic. A nil title plus non-nil replyTo makes a
// reply.
func insertPostAt(t *testing.T, db *PostgresDB, userID, subcatID int64, title *string, replyTo *int64, filename *string, createdAt time.Time) int64 {
	t.Helper()
	var id int64
	err := db.DB.QueryRowx(`
		INSERT INTO posts (user_id, subcategory_id, title, reply_to, filename, text_content, created_at)
		VALUES ($1, $2, $3, $4, $5, 'test content', $6)
		RETURNING post_id`,
		userID, subcatID, title, replyTo, filename, createdAt).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert test post: %v", err)
	}
	return id
}

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

func countRows(t *testing.T, db *PostgresDB, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.DB.Get(&n, query, args...); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}
