package models

import (
	"time"
)

// HomeSlug identifies the permanent home page post.
const HomeSlug = "home"

// RandomSlug is taken by the random post redirect under /posts.
const RandomSlug = "random"

// IsReservedSlug reports whether slug can never be given to a new post.
func IsReservedSlug(slug string) bool {
	return slug == HomeSlug || slug == RandomSlug
}

// Post represents a blog post. ContentHTML always holds sanitizer output.
type Post struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Slug        string     `json:"slug" gorm:"type:text;not null;uniqueIndex"`
	Title       string     `json:"title" gorm:"type:text;not null"`
	ContentMD   string     `json:"content_md" gorm:"column:content_md;type:text;not null"`
	ContentHTML string     `json:"content_html" gorm:"column:content_html;type:text;not null"`
	CoverImage  *string    `json:"cover_image" gorm:"type:text"`
	Published   Visibility `json:"published" gorm:"type:integer;not null;default:0;index"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null"`
	Comments    []Comment  `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

// IsHome reports whether p is the reserved home page.
func (p *Post) IsHome() bool {
	return p.Slug == HomeSlug
}

// PostSummary is the list projection of a post; content columns are omitted.
type PostSummary struct {
	ID         uint       `json:"id"`
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	CoverImage *string    `json:"cover_image"`
	Published  Visibility `json:"published"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
