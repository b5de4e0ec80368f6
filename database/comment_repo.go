package database

import (
	"context"
	"errors"
	"strings"

	"github.com/rpupo63/personal-blog-backend/models"
	"gorm.io/gorm"
)

type CommentRepo struct {
	executor
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{executor{db}}
}

// FindByPost returns the comments on a post, oldest first
func (r *CommentRepo) FindByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// FindByID returns a comment by its ID, or nil if there is none
func (r *CommentRepo) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// CountByAuthor counts the comments email has left on a post, ignoring case.
func (r *CommentRepo) CountByAuthor(ctx context.Context, postID uint, email string) (int64, error) {
	var count int64
	_, err := r.FetchOne(ctx, &count,
		"SELECT COUNT(*) FROM comments WHERE post_id = ? AND LOWER(author_email) = ?",
		postID, strings.ToLower(strings.TrimSpace(email)))
	return count, err
}

func (r *CommentRepo) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// Add inserts a new comment into the database
func (r *CommentRepo) Add(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Create(comment).Error)
}

// Delete removes a comment from the database by id
func (r *CommentRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}
