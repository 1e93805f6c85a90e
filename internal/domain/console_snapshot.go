package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConsoleSnapshot is the local copy of a console's encoded session, reloaded when
// the process restarts. The session server stays the record of truth.
type ConsoleSnapshot struct {
	ConsoleID     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"console_id"`
	SessionKey    string         `gorm:"column:session_key;index" json:"-"`
	SchemaVersion int            `gorm:"column:schema_version;not null" json:"schema_version"`
	Data          datatypes.JSON `gorm:"column:data" json:"data,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;index" json:"updated_at"`
}

func (ConsoleSnapshot) TableName() string { return "console_snapshot" }
