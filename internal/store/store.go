package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ldapgate/ldapgate/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

func New(ctx context.Context, driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Normalizes driver-specific duplicate key errors into
		// gorm.ErrDuplicatedKey so conflict detection works on both
		// sqlite and postgres.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// The init context bounds migration only. Binding it to the
	// session would fail every later query once the caller cancels it.
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Identity{},
		&models.AuditLog{},
	); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Health verifies the underlying database connection is usable
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Identity operations

// GetIdentityByUsername returns the identity for a login name, or
// ErrRecordNotFound if the user has never logged in successfully.
func (s *Store) GetIdentityByUsername(username string) (*models.Identity, error) {
	var identity models.Identity
	if err := s.db.Where("username = ?", username).First(&identity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &identity, nil
}

// GetIdentityByStableID returns the identity carrying the given stable ID.
func (s *Store) GetIdentityByStableID(stableID string) (*models.Identity, error) {
	var identity models.Identity
	if err := s.db.Where("stable_id = ?", stableID).First(&identity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &identity, nil
}

// CreateIdentity inserts a new identity with a freshly generated stable
// ID. A collision on username, email or stable ID is surfaced as
// ErrIdentityConflict; there is no silent overwrite. Under a race
// between two first-time logins for the same username exactly one
// insert wins and the loser observes the conflict.
func (s *Store) CreateIdentity(username, email, displayName string) (*models.Identity, error) {
	identity := models.Identity{
		StableID:    uuid.New().String(),
		Username:    username,
		Email:       email,
		DisplayName: displayName,
	}

	if err := s.db.Create(&identity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrIdentityConflict
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	return &identity, nil
}

// CountIdentities returns the total number of stored identities.
func (s *Store) CountIdentities() (int64, error) {
	var count int64
	if err := s.db.Model(&models.Identity{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Audit log operations

// CreateAuditLogBatch inserts multiple audit log entries in one statement
func (s *Store) CreateAuditLogBatch(logs []*models.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	return s.db.Create(logs).Error
}

// DeleteAuditLogsBefore removes audit entries older than the cutoff and
// returns the number of rows deleted.
func (s *Store) DeleteAuditLogsBefore(cutoff time.Time) (int64, error) {
	result := s.db.Where("event_time < ?", cutoff).Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}

// ListAuditLogs returns the most recent audit entries up to limit.
func (s *Store) ListAuditLogs(limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []models.AuditLog
	if err := s.db.Order("event_time DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
