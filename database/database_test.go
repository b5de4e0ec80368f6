package database

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rpupo63/personal-blog-backend/errs"
	"github.com/rpupo63/personal-blog-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T, seed Seed) Database {
	t.Helper()

	gdb, err := Open(Options{
		SQLitePath: ":memory:",
		Config:     &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gdb.DB()
		sqlDB.Close()
	})

	db := New(gdb)
	require.NoError(t, db.InitializeSchema(context.Background(), seed))
	return db
}

func setupMockDB(t *testing.T) (Database, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return New(gdb), mock
}

func addPost(t *testing.T, db Database, slug string, v models.Visibility) *models.Post {
	t.Helper()
	post := &models.Post{Slug: slug, Title: slug, ContentMD: "body", ContentHTML: "<p>body</p>", Published: v}
	require.NoError(t, db.PostRepo().Add(context.Background(), post))
	return post
}

func TestInitializeSchemaIsIdempotent(t *testing.T) {
	db := newTestDB(t, Seed{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, db.InitializeSchema(ctx, Seed{}))
		}()
	}
	wg.Wait()
	require.NoError(t, db.InitializeSchema(ctx, Seed{}))

	users, err := db.UserRepo().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)

	var homes int64
	found, err := db.FetchOne(ctx, &homes, "SELECT COUNT(*) FROM posts WHERE slug = ?", models.HomeSlug)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(1), homes)

	home, err := db.PostRepo().FindBySlug(ctx, models.HomeSlug)
	require.NoError(t, err)
	require.NotNil(t, home)
	assert.Equal(t, "Home", home.Title)
	assert.Equal(t, models.Public, home.Published)
}

func TestInitializeSchemaSeedsAdmin(t *testing.T) {
	db := newTestDB(t, Seed{AdminUsername: "owner", AdminPassword: "s3cret"})

	user, err := db.UserRepo().FindByUsername(context.Background(), "owner")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))

	missing, err := db.UserRepo().FindByUsername(context.Background(), "admin")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSeedAdminSkipsPopulatedUsers(t *testing.T) {
	db := newTestDB(t, Seed{AdminUsername: "owner", AdminPassword: "s3cret"})
	ctx := context.Background()

	require.NoError(t, db.seedAdmin(ctx, Seed{AdminUsername: "owner", AdminPassword: "changed"}))
	owner, err := db.UserRepo().FindByUsername(ctx, "owner")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte("s3cret")))

	require.NoError(t, db.seedAdmin(ctx, Seed{AdminUsername: "renamed"}))
	renamed, err := db.UserRepo().FindByUsername(ctx, "renamed")
	require.NoError(t, err)
	assert.Nil(t, renamed)

	users, err := db.UserRepo().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)
}

func TestPostRepoFindListed(t *testing.T) {
	db := newTestDB(t, Seed{})
	ctx := context.Background()

	addPost(t, db, "private-post", models.Private)
	addPost(t, db, "public-post", models.Public)
	addPost(t, db, "unlisted-post", models.Unlisted)

	public, err := db.PostRepo().FindListed(ctx, false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "public-post", public[0].Slug)

	all, err := db.PostRepo().FindListed(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "unlisted-post", all[0].Slug)
	for _, s := range all {
		assert.NotEqual(t, models.HomeSlug, s.Slug)
	}

	entries, err := db.PostRepo().FindSitemapEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "public-post", entries[0].Slug)
	assert.False(t, entries[0].UpdatedAt.IsZero())

	var everything int64
	_, err = db.FetchOne(ctx, &everything, "SELECT COUNT(*) FROM posts")
	require.NoError(t, err)
	assert.Equal(t, int64(4), everything)
}

func TestPostRepoUniqueSlug(t *testing.T) {
	db := newTestDB(t, Seed{})

	err := db.PostRepo().Add(context.Background(), &models.Post{Slug: models.HomeSlug, Title: "again"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUniqueConstraintViolation))
}

func TestPostRepoUpdate(t *testing.T) {
	db := newTestDB(t, Seed{})
	ctx := context.Background()

	post := addPost(t, db, "draft", models.Private)
	post.Title = "Renamed"
	post.Published = models.Unlisted
	require.NoError(t, db.PostRepo().Update(ctx, post))

	got, err := db.PostRepo().FindBySlug(ctx, "draft")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, models.Unlisted, got.Published)

	addPost(t, db, "taken", models.Public)
	got.Slug = "taken"
	assert.True(t, errs.IsUniqueViolation(db.PostRepo().Update(ctx, got)))
}

func TestPostRepoDeleteCascades(t *testing.T) {
	db := newTestDB(t, Seed{})
	ctx := context.Background()

	post := addPost(t, db, "doomed", models.Public)
	require.NoError(t, db.CommentRepo().Add(ctx, &models.Comment{PostID: post.ID, AuthorEmail: "a@example.com", Content: "hi"}))

	removed, err := db.PostRepo().Delete(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	count, err := db.CommentRepo().CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	removed, err = db.PostRepo().Delete(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	gone, err := db.PostRepo().FindBySlug(ctx, "doomed")
	assert.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCommentRepo(t *testing.T) {
	db := newTestDB(t, Seed{})
	ctx := context.Background()
	post := addPost(t, db, "talk", models.Public)
	repo := db.CommentRepo()

	for _, email := range []string{"Reader@Example.com", "reader@example.com", "other@example.com"} {
		require.NoError(t, repo.Add(ctx, &models.Comment{PostID: post.ID, AuthorEmail: email, Content: "c"}))
	}

	count, err := repo.CountByAuthor(ctx, post.ID, "READER@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	comments, err := repo.FindByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Less(t, comments[0].ID, comments[1].ID)
	assert.Less(t, comments[1].ID, comments[2].ID)

	require.NoError(t, repo.Delete(ctx, comments[0].ID))
	missing, err := repo.FindByID(ctx, comments[0].ID)
	assert.NoError(t, err)
	assert.Nil(t, missing)

	found, err := repo.FindByID(ctx, comments[1].ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, post.ID, found.PostID)
}

func TestCommentRequiresExistingPost(t *testing.T) {
	db := newTestDB(t, Seed{})

	err := db.CommentRepo().Add(context.Background(), &models.Comment{PostID: 9999, Content: "orphan"})
	assert.Error(t, err)
}

func TestPublicSlugs(t *testing.T) {
	db := newTestDB(t, Seed{})
	ctx := context.Background()

	_, found, err := db.PostRepo().RandomPublicSlug(ctx)
	require.NoError(t, err)
	assert.False(t, found, "home never counts")

	addPost(t, db, "hidden", models.Private)
	addPost(t, db, "first", models.Public)
	addPost(t, db, "second", models.Public)

	slug, found, err := db.PostRepo().RandomPublicSlug(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Contains(t, []string{"first", "second"}, slug)

	slug, found, err = db.PostRepo().LatestPublicSlug(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second", slug)
}

func TestExecuteReportsInsertID(t *testing.T) {
	db := newTestDB(t, Seed{})

	res, err := db.Execute(context.Background(),
		"INSERT INTO posts (slug, title, content_md, content_html, published, created_at, updated_at) VALUES (?, ?, '', '', 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)",
		"raw", "Raw")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.Positive(t, res.LastInsertID)

	var slug string
	found, err := db.FetchOne(context.Background(), &slug, "SELECT slug FROM posts WHERE id = ?", res.LastInsertID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "raw", slug)

	var slugs []string
	require.NoError(t, db.FetchAll(context.Background(), &slugs, "SELECT slug FROM posts ORDER BY id"))
	assert.Equal(t, []string{models.HomeSlug, "raw"}, slugs)
}

func TestExecuteOnPostgres(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM posts WHERE id = $1")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := db.Execute(context.Background(), "DELETE FROM posts WHERE id = ?", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.Zero(t, res.LastInsertID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteTranslatesUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (username, password_hash) VALUES ($1, $2)`)).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_username"`))

	_, err := db.Execute(context.Background(), "INSERT INTO users (username, password_hash) VALUES (?, ?)", "admin", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUniqueConstraintViolation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchOneError(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT slug FROM posts")).
		WillReturnError(errors.New("connection reset"))

	var slug string
	found, err := db.FetchOne(context.Background(), &slug, "SELECT slug FROM posts")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestOpenRejectsUnknownDialect(t *testing.T) {
	_, err := Open(Options{Type: "oracle"})
	assert.Error(t, err)

	_, err = Open(Options{Type: "postgres"})
	assert.Error(t, err)
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "data/blog.db?_foreign_keys=on", withForeignKeys("data/blog.db"))
	assert.Equal(t, "file:x.db?cache=shared&_foreign_keys=on", withForeignKeys("file:x.db?cache=shared"))
	assert.Equal(t, "x.db?_fk=1", withForeignKeys("x.db?_fk=1"))
}

func TestColumnReport(t *testing.T) {
	db := newTestDB(t, Seed{})
	ctx := context.Background()

	report, err := db.ColumnReport(ctx)
	require.NoError(t, err)
	assert.Empty(t, report)

	_, err = db.Execute(ctx, "ALTER TABLE posts ADD COLUMN legacy_views INTEGER")
	require.NoError(t, err)

	report, err = db.ColumnReport(ctx)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "posts", report[0].Table)
	assert.Equal(t, []string{"legacy_views"}, report[0].Columns)
}
