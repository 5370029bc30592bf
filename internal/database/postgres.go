// internal/database/postgres.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/mannals/takkatuli-backend/internal/uploads"
	"github.com/mannals/takkatuli-backend/internal/utils"
)

// PostgresDB represents a PostgreSQL database connection. The pool handle is
// injected into every repository method through the receiver; nothing in this
// package holds package-level state.
type PostgresDB struct {
	DB      *sqlx.DB
	paths   uploads.Paths
	metrics *utils.MetricsCollector
}

// NewPostgresDB creates a new PostgreSQL database connection.
// publicBaseURL is the prefix under which stored files are served; read paths
// expand stored filenames with it.
func NewPostgresDB(connectionString string, publicBaseURL string, metrics *utils.MetricsCollector) (*PostgresDB, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL!")

	return &PostgresDB{
		DB:      db,
		paths:   uploads.NewPaths(publicBaseURL),
		metrics: metrics,
	}, nil
}

// Close closes the database connection
func (p *PostgresDB) Close(ctx context.Context) error {
	log.Println("Closing PostgreSQL connection...")
	return p.DB.Close()
}

// InitializeTables creates all necessary tables if they don't exist
func (p *PostgresDB) InitializeTables(ctx context.Context) error {
	// Users table: mirror of the auth-service entity, referenced by id
	_, err := p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			user_id BIGSERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			user_level VARCHAR(10) NOT NULL DEFAULT 'User',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %v", err)
	}

	// Categories table
	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS categories (
			category_id BIGSERIAL PRIMARY KEY,
			title VARCHAR(100) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create categories table: %v", err)
	}

	// Subcategories table
	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS subcategories (
			subcategory_id BIGSERIAL PRIMARY KEY,
			category_id BIGINT NOT NULL REFERENCES categories(category_id),
			title VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create subcategories table: %v", err)
	}

	// Posts table. reply_to is null for original posts; replies carry no title.
	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS posts (
			post_id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(user_id),
			subcategory_id BIGINT NOT NULL REFERENCES subcategories(subcategory_id),
			filename VARCHAR(255),
			filesize BIGINT,
			media_type VARCHAR(100),
			reply_to BIGINT REFERENCES posts(post_id),
			title VARCHAR(300),
			text_content TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			edited_at TIMESTAMP WITH TIME ZONE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create posts table: %v", err)
	}

	// Post votes table: one row per (post, user) pair
	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS post_votes (
			vote_id BIGSERIAL PRIMARY KEY,
			post_id BIGINT NOT NULL REFERENCES posts(post_id),
			user_id BIGINT NOT NULL REFERENCES users(user_id),
			approve BOOLEAN NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE(post_id, user_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create post_votes table: %v", err)
	}

	// Profile pictures table: at most one per user
	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS profile_pictures (
			picture_id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL UNIQUE REFERENCES users(user_id),
			filename VARCHAR(255) NOT NULL,
			filesize BIGINT NOT NULL,
			media_type VARCHAR(100) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create profile_pictures table: %v", err)
	}

	// File deletions outbox: rows written in the same transaction as the
	// local deletes, drained against the upload service afterwards
	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS file_deletions (
			id UUID PRIMARY KEY,
			filename VARCHAR(255) NOT NULL,
			enqueued_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create file_deletions table: %v", err)
	}

	return nil
}
