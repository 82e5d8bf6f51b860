package models

import (
	"time"

	"github.com/google/uuid"
)

// InboxProcessed marks a message as applied by a named consumer. The
// composite primary key makes the second insert for the same message fail
// with a unique violation, which is how redeliveries are detected.
type InboxProcessed struct {
	Consumer    string    `gorm:"type:varchar(64);primaryKey" json:"consumer"`
	MessageID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"message_id"`
	ProcessedAt time.Time `gorm:"autoCreateTime" json:"processed_at"`
}

func (InboxProcessed) TableName() string { return "inbox_processed" }
