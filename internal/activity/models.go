package activity

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one dashboard feed item. Append-only; the feed is never
// edited, only truncated by retention.
type Notification struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Type        string    `json:"type" gorm:"size:64;not null;index"`
	Description string    `json:"description" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// LogEntry records who did what to what. Actor is a free-form identifier so
// system actions ("system:commit-failed") log the same way users do.
type LogEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Actor     string    `json:"actor" gorm:"size:255;not null"`
	Action    string    `json:"action" gorm:"size:64;not null;index"`
	Subject   string    `json:"subject" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (Notification) TableName() string {
	return "admin_notifications"
}

func (LogEntry) TableName() string {
	return "admin_logs"
}

// FeedQuery pages through either feed, newest first.
type FeedQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}
