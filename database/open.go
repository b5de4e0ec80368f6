package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"

	DefaultSQLitePath = "data/blog.db"
)

// Options selects and configures the backing store.
type Options struct {
	Type       string // sqlite or postgres
	SQLitePath string
	URL        string // postgres DSN
	Config     *gorm.Config
}

// Open connects to the store named by opts.Type.
func Open(opts Options) (*gorm.DB, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = &gorm.Config{}
	}
	cfg.TranslateError = true

	switch strings.ToLower(opts.Type) {
	case "", DialectSQLite:
		return openSQLite(opts.SQLitePath, cfg)
	case DialectPostgres, "postgresql":
		if opts.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE=%s", DialectPostgres)
		}
		db, err := gorm.Open(postgres.New(postgres.Config{
			DSN:                  opts.URL,
			PreferSimpleProtocol: true,
		}), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", opts.Type)
	}
}

func openSQLite(path string, cfg *gorm.Config) (*gorm.DB, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(withForeignKeys(path)), cfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// one writer; also keeps an in-memory database alive across calls
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}
