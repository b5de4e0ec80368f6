package database

import (
	"context"
	"fmt"

	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Default credentials for the seeded admin row.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
)

type Database struct {
	executor
	postRepo    *PostRepo
	commentRepo *CommentRepo
	userRepo    *UserRepo
	schema      *singleflight.Group
}

// Seed describes the rows InitializeSchema creates on an empty store.
type Seed struct {
	AdminUsername string
	AdminPassword string
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		executor:    executor{db},
		postRepo:    NewPostRepo(db),
		commentRepo: NewCommentRepo(db),
		userRepo:    NewUserRepo(db),
		schema:      &singleflight.Group{},
	}
}

func (d Database) PostRepo() *PostRepo {
	return d.postRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

// InitializeSchema creates the tables if they are missing and seeds the admin
// user and the home post. Calls that overlap share one run; later calls only
// repeat the existence checks.
func (d Database) InitializeSchema(ctx context.Context, seed Seed) error {
	_, err, _ := d.schema.Do("schema", func() (interface{}, error) {
		return nil, d.initializeSchema(ctx, seed)
	})
	return err
}

func (d Database) initializeSchema(ctx context.Context, seed Seed) error {
	if err := d.db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	if err := d.seedAdmin(ctx, seed); err != nil {
		return err
	}
	return d.seedHome(ctx)
}

func (d Database) seedAdmin(ctx context.Context, seed Seed) error {
	username := seed.AdminUsername
	if username == "" {
		username = DefaultAdminUsername
	}

	existing, err := d.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("look up admin user: %w", err)
	}
	if existing != nil {
		return nil
	}

	count, err := d.userRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		log.Warn().Str("username", username).Int64("users", count).Msg("Admin user not found, users already seeded")
		return nil
	}

	password := seed.AdminPassword
	if password == "" {
		password = DefaultAdminPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	err = d.userRepo.Add(ctx, &models.User{Username: username, PasswordHash: string(hash)})
	if errs.IsUniqueViolation(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	log.Info().Str("username", username).Msg("Seeded admin user")
	return nil
}

func (d Database) seedHome(ctx context.Context) error {
	var id uint
	found, err := d.FetchOne(ctx, &id, "SELECT id FROM posts WHERE slug = ? LIMIT 1", models.HomeSlug)
	if err != nil {
		return fmt.Errorf("look up home post: %w", err)
	}
	if found {
		return nil
	}

	err = d.postRepo.Add(ctx, &models.Post{
		Slug:      models.HomeSlug,
		Title:     "Home",
		Published: models.Public,
	})
	if errs.IsUniqueViolation(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed home post: %w", err)
	}
	log.Info().Msg("Seeded home post")
	return nil
}
