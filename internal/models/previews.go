package models

import (
	"time"
)

// PostRef identifies an original post in a preview. Scanned directly from
// post_id/title columns, so the db tags must stay.
type PostRef struct {
	PostID int64  `json:"post_id" db:"post_id"`
	Title  string `json:"title" db:"title"`
}

// ActivityPreview summarizes the most recent post or reply in a subcategory.
// When the newest row is a reply, Username and CreatedAt describe the reply
// while Original points at the post it targets.
type ActivityPreview struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	Original  PostRef   `json:"original"`
}

// ReplyStamp is the owner/timestamp pair shown as the "latest" entry of a
// thread preview.
type ReplyStamp struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// PostPreview is one row of a subcategory listing: an original post with its
// reply count and latest-reply stamp.
type PostPreview struct {
	PostID       int64      `json:"post_id"`
	Title        string     `json:"title"`
	CreatedAt    time.Time  `json:"created_at"`
	Username     string     `json:"username"`
	Latest       ReplyStamp `json:"latest"`
	RepliesCount int64      `json:"replies_count"`
}

// SubcategoryWithLatest is a subcategory plus its activity preview. Latest is
// nil when the subcategory holds no posts; the subcategory itself is never
// dropped from listings for being empty.
type SubcategoryWithLatest struct {
	Subcategory
	Latest *ActivityPreview `json:"latest"`
}

// CategoryWithSubcategories is one node of the category tree.
type CategoryWithSubcategories struct {
	Category
	Subcategories []SubcategoryWithLatest `json:"subcategories"`
}
