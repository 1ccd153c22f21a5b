package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"chatterdash/config"
	"chatterdash/internal/models"
)

const (
	mentionCacheKey = "mention_cache"
	userConfigKey   = "user_config"
)

// blob is one durable key-value entry. The mention cache and the user
// config are stored as two independent serialized blobs, mirroring the
// browser localStorage layout this store replaces.
type blob struct {
	Key       string         `gorm:"primaryKey"`
	Payload   datatypes.JSON `gorm:"type:json"`
	UpdatedAt time.Time
}

func (blob) TableName() string {
	return "blobs"
}

// Store is the durable cache store backing the sync engine. All methods
// are safe for concurrent use; gorm serializes access to the underlying
// connection.
type Store struct {
	db *gorm.DB
}

// NewStore opens the cache store described by the database configuration
func NewStore(cfg config.DatabaseConfig) (*Store, error) {
	var db *gorm.DB
	var err error

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	switch cfg.Type {
	case "sqlite", "":
		path := cfg.SQLitePath
		if path == "" {
			path = "./chatterdash.db"
		}
		db, err = gorm.Open(sqlite.Open(path), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}
		log.Printf("Connected to SQLite: %s", path)

	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)

		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		log.Printf("Connected to PostgreSQL: %s@%s:%d/%s", cfg.User, cfg.Host, cfg.Port, cfg.Name)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	if err := db.AutoMigrate(&blob{}); err != nil {
		return nil, fmt.Errorf("auto migration failed: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) loadBlob(key string, out interface{}) (bool, error) {
	var b blob
	err := s.db.First(&b, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load blob %q: %w", key, err)
	}

	if err := json.Unmarshal(b.Payload, out); err != nil {
		// Malformed blobs self-heal: reset to empty state rather than
		// wedging the dashboard on every load.
		log.Printf("Corrupt blob %q, resetting: %v", key, err)
		if delErr := s.db.Delete(&blob{}, "key = ?", key).Error; delErr != nil {
			log.Printf("Failed to delete corrupt blob %q: %v", key, delErr)
		}
		return false, nil
	}

	return true, nil
}

func (s *Store) saveBlob(key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal blob %q: %w", key, err)
	}

	b := blob{Key: key, Payload: datatypes.JSON(payload)}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&b).Error; err != nil {
		return fmt.Errorf("failed to save blob %q: %w", key, err)
	}

	return nil
}

// LoadCache returns the persisted mention cache. A missing or malformed
// blob yields an empty cache, never an error. Records persisted before
// the hidden flag existed come back with Hidden false.
func (s *Store) LoadCache() []models.MentionRecord {
	var cache []models.MentionRecord
	found, err := s.loadBlob(mentionCacheKey, &cache)
	if err != nil {
		log.Printf("Failed to load mention cache: %v", err)
		return nil
	}
	if !found {
		return nil
	}
	return cache
}

// SaveCache persists the mention cache
func (s *Store) SaveCache(cache []models.MentionRecord) error {
	if cache == nil {
		cache = []models.MentionRecord{}
	}
	return s.saveBlob(mentionCacheKey, cache)
}

// ClearCache drops the persisted mention cache. Used when the identity
// changes and the old feed becomes unrelated history.
func (s *Store) ClearCache() error {
	if err := s.db.Delete(&blob{}, "key = ?", mentionCacheKey).Error; err != nil {
		return fmt.Errorf("failed to clear mention cache: %w", err)
	}
	return nil
}

// LoadUserConfig returns the persisted user preferences and whether a
// saved copy existed.
func (s *Store) LoadUserConfig() (models.UserConfig, bool) {
	cfg := models.DefaultUserConfig()
	found, err := s.loadBlob(userConfigKey, &cfg)
	if err != nil {
		log.Printf("Failed to load user config: %v", err)
		return models.DefaultUserConfig(), false
	}
	if !found {
		return models.DefaultUserConfig(), false
	}
	cfg.Normalize()
	return cfg, true
}

// SaveUserConfig persists the user preferences
func (s *Store) SaveUserConfig(cfg models.UserConfig) error {
	return s.saveBlob(userConfigKey, cfg)
}
