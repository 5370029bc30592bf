package models

import (
	"time"
)

// User mirrors the identity entity owned by the auth service. The content
// core only reads username/level by id and removes the row on user deletion.
type User struct {
	ID        int64     `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	Level     UserLevel `json:"user_level" db:"user_level"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Category struct {
	ID        int64     `json:"category_id" db:"category_id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Subcategory struct {
	ID          int64     `json:"subcategory_id" db:"subcategory_id"`
	CategoryID  int64     `json:"category_id" db:"category_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ProfilePicture is the single stored avatar per user. Filename is persisted
// bare; read paths expand it to a public URL.
type ProfilePicture struct {
	ID        int64     `json:"picture_id" db:"picture_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Filename  string    `json:"filename" db:"filename"`
	Filesize  int64     `json:"filesize" db:"filesize"`
	MediaType string    `json:"media_type" db:"media_type"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PictureInfo is the slice of a profile picture embedded into enriched post
// reads.
type PictureInfo struct {
	Filename  string `json:"filename"`
	Filesize  int64  `json:"filesize"`
	MediaType string `json:"media_type"`
}
