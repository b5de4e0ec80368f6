package database

import (
	"context"
	"errors"

	"github.com/rpupo63/personal-blog-backend/models"
	"gorm.io/gorm"
)

const summaryColumns = "id, slug, title, cover_image, published, created_at, updated_at"

type PostRepo struct {
	executor
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{executor{db}}
}

// FindListed returns the list projection of every post except home, newest
// first. Unless includeHidden is set only public posts are returned.
func (r *PostRepo) FindListed(ctx context.Context, includeHidden bool) ([]models.PostSummary, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(summaryColumns).
		Where("slug <> ?", models.HomeSlug)
	if !includeHidden {
		q = q.Where("published = ?", models.Public)
	}

	summaries := []models.PostSummary{}
	err := q.Order("created_at DESC, id DESC").Scan(&summaries).Error
	return summaries, err
}

// FindSitemapEntries returns the public posts a crawler may index.
func (r *PostRepo) FindSitemapEntries(ctx context.Context) ([]models.PostSummary, error) {
	summaries := []models.PostSummary{}
	err := r.FetchAll(ctx, &summaries,
		"SELECT "+summaryColumns+" FROM posts WHERE published = ? AND slug <> ? ORDER BY updated_at DESC",
		models.Public, models.HomeSlug)
	return summaries, err
}

// FindBySlug returns the post with slug, or nil if there is none
func (r *PostRepo) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Add inserts a new post into the database
func (r *PostRepo) Add(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Create(post).Error)
}

// Update writes every column of an existing post
func (r *PostRepo) Update(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Save(post).Error)
}

// Delete removes a post and, through the cascade, its comments. It reports
// whether a row was removed.
func (r *PostRepo) Delete(ctx context.Context, id uint) (bool, error) {
	res, err := r.Execute(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected > 0, nil
}

// RandomPublicSlug picks a public post other than home at random.
func (r *PostRepo) RandomPublicSlug(ctx context.Context) (string, bool, error) {
	return r.publicSlug(ctx, "RANDOM()")
}

// LatestPublicSlug returns the most recently created public post other than home.
func (r *PostRepo) LatestPublicSlug(ctx context.Context) (string, bool, error) {
	return r.publicSlug(ctx, "created_at DESC, id DESC")
}

func (r *PostRepo) publicSlug(ctx context.Context, order string) (string, bool, error) {
	var slug string
	found, err := r.FetchOne(ctx, &slug,
		"SELECT slug FROM posts WHERE published = ? AND slug <> ? ORDER BY "+order+" LIMIT 1",
		models.Public, models.HomeSlug)
	if err != nil || !found {
		return "", false, err
	}
	return slug, true, nil
}
