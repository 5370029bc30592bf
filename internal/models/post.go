package models

import (
	"time"
)

// Post is a row in the two-level content hierarchy. A nil ReplyTo marks an
// original post (which carries a title); a non-nil ReplyTo marks a reply to an
// original post (no title). Replies never target other replies; CreateReply
// rejects such targets.
type Post struct {
	ID            int64      `json:"post_id" db:"post_id"`
	UserID        int64      `json:"user_id" db:"user_id"`
	SubcategoryID int64      `json:"subcategory_id" db:"subcategory_id"`
	Filename      *string    `json:"filename,omitempty" db:"filename"`
	Filesize      *int64     `json:"filesize,omitempty" db:"filesize"`
	MediaType     *string    `json:"media_type,omitempty" db:"media_type"`
	ReplyTo       *int64     `json:"reply_to,omitempty" db:"reply_to"`
	Title         *string    `json:"title,omitempty" db:"title"`
	TextContent   string     `json:"text_content" db:"text_content"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	EditedAt      *time.Time `json:"edited_at,omitempty" db:"edited_at"`

	// Thumbnail is derived at read time from Filename, never persisted.
	Thumbnail *string `json:"thumbnail,omitempty"`
}

// IsReply reports whether the post targets an original post.
func (p *Post) IsReply() bool {
	return p.ReplyTo != nil
}

// PostWithDetails is a post enriched with owner, subcategory and engagement
// data for single-post and reply reads.
type PostWithDetails struct {
	Post
	Username        string       `json:"username"`
	SubcategoryName string       `json:"subcategory_name"`
	ProfilePicture  *PictureInfo `json:"profile_picture,omitempty"`
	Votes           Votes        `json:"votes"`
}

// NewPost carries the fields for creating an original post. File fields are
// optional and set together or not at all.
type NewPost struct {
	SubcategoryID int64   `json:"subcategory_id"`
	Title         string  `json:"title"`
	TextContent   string  `json:"text_content"`
	Filename      *string `json:"filename,omitempty"`
	Filesize      *int64  `json:"filesize,omitempty"`
	MediaType     *string `json:"media_type,omitempty"`
}

// NewReply carries the fields for creating a reply. No title.
type NewReply struct {
	SubcategoryID int64  `json:"subcategory_id"`
	ReplyTo       int64  `json:"reply_to"`
	TextContent   string `json:"text_content"`
}

// PostEdit is a partial update; nil fields are left untouched.
type PostEdit struct {
	Title       *string `json:"title,omitempty"`
	TextContent *string `json:"text_content,omitempty"`
	Filename    *string `json:"filename,omitempty"`
	Filesize    *int64  `json:"filesize,omitempty"`
	MediaType   *string `json:"media_type,omitempty"`
}

// Empty reports whether the edit would change nothing.
func (e PostEdit) Empty() bool {
	return e.Title == nil && e.TextContent == nil && e.Filename == nil &&
		e.Filesize == nil && e.MediaType == nil
}
