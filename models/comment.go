package models

import "time"

// MaxCommentsPerAuthor caps how many comments a non-admin may leave on one post.
const MaxCommentsPerAuthor = 3

// Comment represents a reader comment attached to a post
type Comment struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PostID        uint      `json:"post_id" gorm:"not null;index:idx_comment_post_id"`
	AuthorEmail   string    `json:"author_email" gorm:"type:text"`
	AuthorName    string    `json:"author_name" gorm:"type:text"`
	AuthorPicture string    `json:"author_picture" gorm:"type:text"`
	Content       string    `json:"content" gorm:"type:text;not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null"`
}
