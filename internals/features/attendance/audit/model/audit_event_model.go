package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditEventModel is one structured audit row per attendance write, success
// or failure.
type AuditEventModel struct {
	AuditEventID          uuid.UUID      `gorm:"type:uuid;primaryKey;column:attendance_audit_events_id" json:"attendance_audit_events_id"`
	AuditEventPrincipalID *uuid.UUID     `gorm:"type:uuid;column:attendance_audit_events_principal_id" json:"attendance_audit_events_principal_id,omitempty"`
	AuditEventAction      string         `gorm:"not null;column:attendance_audit_events_action" json:"attendance_audit_events_action"`
	AuditEventTarget      string         `gorm:"not null;column:attendance_audit_events_target" json:"attendance_audit_events_target"`
	AuditEventOutcome     string         `gorm:"not null;column:attendance_audit_events_outcome" json:"attendance_audit_events_outcome"`
	AuditEventDetail      datatypes.JSON `gorm:"column:attendance_audit_events_detail" json:"attendance_audit_events_detail,omitempty"`
	AuditEventCreatedAt   time.Time      `gorm:"column:attendance_audit_events_created_at;autoCreateTime;index:idx_attendance_audit_events_created" json:"attendance_audit_events_created_at"`
}

func (AuditEventModel) TableName() string { return "attendance_audit_events" }

func (m *AuditEventModel) BeforeCreate(tx *gorm.DB) error {
	if m.AuditEventID == uuid.Nil {
		m.AuditEventID = uuid.New()
	}
	return nil
}
