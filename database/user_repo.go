package database

import (
	"context"
	"errors"

	"github.com/rpupo63/personal-blog-backend/models"
	"gorm.io/gorm"
)

type UserRepo struct {
	executor
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{executor{db}}
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

// Add inserts a new user into the database
func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// FindByUsername returns the user with username, or nil if there is none
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
