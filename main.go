package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/personal-blog-backend/api"
	"github.com/rpupo63/personal-blog-backend/auth"
	"github.com/rpupo63/personal-blog-backend/config"
	"github.com/rpupo63/personal-blog-backend/database"
	"github.com/rpupo63/personal-blog-backend/storage"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	setupLogging(c)
	log.Info().Msg("Initializing app...")

	dbType := config.GetString(c, "DB_TYPE", database.DialectSQLite)
	db, err := database.Open(database.Options{
		Type:       dbType,
		SQLitePath: config.GetString(c, "SQLITE_PATH", database.DefaultSQLitePath),
		URL:        config.GetString(c, "DATABASE_URL", ""),
		Config: &gorm.Config{
			PrepareStmt: false,
			Logger: logger.New(gormWriter{}, logger.Config{
				SlowThreshold:             10 * time.Second,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			}),
		},
	})
	if err != nil {
		log.Fatal().Err(err).Str("dbType", dbType).Msg("Error connecting to database")
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		log.Fatal().Err(err).Msg("Error testing database connection")
	}

	settings := config.Load(c)
	currentDB := database.New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = currentDB.InitializeSchema(ctx, database.Seed{
		AdminUsername: settings.AdminUsername,
		AdminPassword: settings.AdminPassword,
	})
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing schema")
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		reportColumns(currentDB)
		return
	}

	opts, err := serverOptions(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("Error configuring server")
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB, c, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// serverOptions builds the collaborators that talk to the outside world.
func serverOptions(settings config.App) ([]api.Option, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var opts []api.Option

	verifier, err := auth.NewGoogleVerifier(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("google verifier: %w", err)
	}
	opts = append(opts, api.WithGoogleVerifier(verifier))

	switch strings.ToLower(settings.UploadBackend) {
	case "", "local":
		log.Info().Str("dir", settings.UploadDir).Msg("Storing uploads on local disk")
	case "s3":
		store, err := storage.NewS3Store(ctx, settings.S3Bucket, settings.S3PublicURL)
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		log.Info().Str("bucket", settings.S3Bucket).Msg("Storing uploads in S3")
		opts = append(opts, api.WithImageStore(store))
	default:
		return nil, fmt.Errorf("unsupported UPLOAD_BACKEND %q", settings.UploadBackend)
	}

	return opts, nil
}

// reportColumns logs every database column the models do not map.
func reportColumns(db database.Database) {
	report, err := db.ColumnReport(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Error generating column report")
	}
	if len(report) == 0 {
		log.Info().Msg("All columns are accounted for in the models")
		return
	}
	for _, m := range report {
		log.Warn().Str("table", m.Table).Strs("columns", m.Columns).Msg("Columns not accounted for in model")
	}
}

func setupLogging(c map[string]string) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if config.GetString(c, "LOG_FORMAT", "console") != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
}

// gormWriter routes gorm's logger through zerolog.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	log.Warn().Str("handlerName", "gorm").Msgf(format, args...)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
