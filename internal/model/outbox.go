package model

import "time"

const (
	OutboxPending    = "pending"
	OutboxProcessing = "processing"
	OutboxDone       = "done"
)

// Outbox 事件外发盒：与业务变更同事务写入，由 relay 投递到 Kafka
type Outbox struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)"`
	AggregateID string     `gorm:"type:varchar(36);index:idx_outbox_aggregate"`
	EventType   string     `gorm:"type:varchar(64);not null"`
	Payload     string     `gorm:"type:text"`
	CreatedAt   time.Time  `gorm:"index"`
	Status      string     `gorm:"type:varchar(16);index"` // pending, processing, done
	ClaimedAt   *time.Time
	ProcessedAt *time.Time
	Attempts    int
}

func (Outbox) TableName() string { return "outbox" }
