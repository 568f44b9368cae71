package entities

import "time"

type AuditEventType string

const (
	AuditEventInsert AuditEventType = "insert"
	AuditEventUpdate AuditEventType = "update"
	AuditEventDelete AuditEventType = "delete"
	AuditEventAuth   AuditEventType = "auth"
	AuditEventSystem AuditEventType = "system"
)

// AuditEventTypes lists the types in the order the audit page filters them.
var AuditEventTypes = []AuditEventType{
	AuditEventInsert,
	AuditEventUpdate,
	AuditEventDelete,
	AuditEventAuth,
	AuditEventSystem,
}

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent records one write to the bookstore or one login attempt.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Actor       string         `gorm:"index;size:64" json:"actor"`
	EventType   AuditEventType `gorm:"index;size:20" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"` // e.g. "book_insert", "login"
	Table       string         `gorm:"column:table_name;size:50" json:"table,omitempty"`
	RecordID    string         `gorm:"size:64" json:"record_id,omitempty"`
	Description string         `gorm:"size:500" json:"description"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON of submitted values
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent   string         `gorm:"size:500" json:"user_agent,omitempty"`
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
