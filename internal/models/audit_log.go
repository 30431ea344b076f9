package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of audit event
type EventType string

const (
	// Authentication events
	EventAuthenticationSuccess EventType = "AUTHENTICATION_SUCCESS"
	EventAuthenticationFailure EventType = "AUTHENTICATION_FAILURE"
	EventDirectoryUnavailable  EventType = "DIRECTORY_UNAVAILABLE"

	// Identity events
	EventIdentityCreated  EventType = "IDENTITY_CREATED"
	EventIdentityConflict EventType = "IDENTITY_CONFLICT"

	// Token events
	EventTokenIssued EventType = "TOKEN_ISSUED"
)

// EventSeverity represents the severity level of an audit event
type EventSeverity string

const (
	SeverityInfo    EventSeverity = "INFO"
	SeverityWarning EventSeverity = "WARNING"
	SeverityError   EventSeverity = "ERROR"
)

// AuditDetails stores additional event-specific information as JSON
type AuditDetails map[string]any

// Value implements the driver.Valuer interface for database storage
func (a AuditDetails) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil //nolint:nilnil // nil driver.Value represents SQL NULL, which is valid here
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface for database retrieval
func (a *AuditDetails) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("unsupported type for AuditDetails: %T", value)
	}
}

// AuditLog records a security-relevant event. Entries are append-only.
type AuditLog struct {
	ID        string        `gorm:"primaryKey"`
	EventType EventType     `gorm:"index;not null"`
	EventTime time.Time     `gorm:"index;not null"`
	Severity  EventSeverity `gorm:"not null"`

	Username string `gorm:"index"` // Login name the event concerns, if any
	ActorIP  string

	Success      bool
	ErrorMessage string
	Details      AuditDetails `gorm:"type:text"`

	CreatedAt time.Time
}
