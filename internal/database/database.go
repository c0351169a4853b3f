package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/curiohub/curiohub/internal/logger"
	"github.com/curiohub/curiohub/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

const sqlitePrefix = "sqlite:"

// Initialize opens the database named by dsn and stores it in DB.
// A dsn of the form "sqlite:<path>" opens a local SQLite file, which is
// handy for development; anything else is handed to the Postgres driver.
func Initialize(dsn string, verbose bool) error {
	var (
		db  *gorm.DB
		err error
	)
	if path, ok := strings.CutPrefix(dsn, sqlitePrefix); ok {
		db, err = OpenSQLite(path)
	} else {
		db, err = OpenPostgres(dsn, verbose)
	}
	if err != nil {
		return err
	}

	DB = db
	logger.Log.Info("Database connected")
	return nil
}

func gormConfig(level gormlogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// Unique violations surface as gorm.ErrDuplicatedKey on every driver.
		TranslateError: true,
	}
}

// OpenPostgres connects to Postgres and configures the pool.
func OpenPostgres(dsn string, verbose bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if verbose {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(level))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// OpenSQLite opens a SQLite database with foreign keys enforced. Tests pass
// ":memory:"; the pool is pinned to one connection so every query sees the
// same in-memory database.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(gormlogger.Silent))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema and seeds the default tags.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	if err := SeedTags(db); err != nil {
		return err
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

// createIndexes adds the composite indexes the feed queries lean on.
func createIndexes(db *gorm.DB) error {
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_submissions_status_upvotes ON submissions (status, upvotes DESC)",
		"CREATE INDEX IF NOT EXISTS idx_submissions_status_created ON submissions (status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_submissions_user_created ON submissions (user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_bookmarks_user_created ON bookmarks (user_id, created_at DESC)",
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			logger.Log.Warn("Index creation failed", zap.String("statement", stmt), zap.Error(err))
			return err
		}
	}
	return nil
}

// SeedTags inserts the default tags, leaving existing slugs untouched.
func SeedTags(db *gorm.DB) error {
	tags := make([]models.Tag, len(models.DefaultTags))
	copy(tags, models.DefaultTags)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&tags).Error
	if err != nil {
		return fmt.Errorf("failed to seed tags: %w", err)
	}
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
