package models

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is a pending event written in the same transaction as the state
// change it announces. ID equals the envelope's messageId. A NULL
// published_at marks the row as pending; locked_at and locked_by carry the
// publisher's claim lease.
type OutboxEvent struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AggregateType string     `gorm:"type:varchar(32);not null" json:"aggregate_type"`
	AggregateID   string     `gorm:"type:varchar(64);not null" json:"aggregate_id"`
	EventType     string     `gorm:"type:varchar(64);not null" json:"event_type"`
	Payload       []byte     `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	PublishedAt   *time.Time `gorm:"index" json:"published_at,omitempty"`
	LockedAt      *time.Time `json:"locked_at,omitempty"`
	LockedBy      *string    `gorm:"type:varchar(64)" json:"locked_by,omitempty"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }
