package models

import (
	"time"
)

// Identity is the durable local record for a directory user. It is
// created exactly once, on the user's first successful directory
// authentication, and never mutated afterwards.
type Identity struct {
	// StableID is generated locally at creation time and embedded in
	// issued tokens. Downstream systems key on it instead of the
	// directory name, so directory renames never invalidate them.
	StableID string `gorm:"primaryKey"`

	Username    string `gorm:"uniqueIndex;not null"` // Stable external login name
	Email       string `gorm:"uniqueIndex;not null"` // Sourced from the directory on creation
	DisplayName string `gorm:"not null"`             // Sourced from the directory on creation

	CreatedAt time.Time
	UpdatedAt time.Time
}
