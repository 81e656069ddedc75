package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/helpers/dbtime"
)

type AttendanceSessionModel struct {
	AttendanceSessionID uuid.UUID `gorm:"type:uuid;primaryKey;column:attendance_sessions_id" json:"attendance_sessions_id"`

	AttendanceSessionClassID   uuid.UUID  `gorm:"type:uuid;not null;column:attendance_sessions_class_id;uniqueIndex:uq_attendance_sessions_class_date_time;index:idx_attendance_sessions_class" json:"attendance_sessions_class_id"`
	AttendanceSessionTeacherID *uuid.UUID `gorm:"type:uuid;column:attendance_sessions_teacher_id" json:"attendance_sessions_teacher_id,omitempty"`

	AttendanceSessionDate time.Time  `gorm:"type:date;not null;column:attendance_sessions_date;uniqueIndex:uq_attendance_sessions_class_date_time" json:"attendance_sessions_date"`
	AttendanceSessionTime dbtime.Tod `gorm:"type:time;not null;column:attendance_sessions_time;uniqueIndex:uq_attendance_sessions_class_date_time" json:"attendance_sessions_time"`

	AttendanceSessionType   string `gorm:"not null;default:regular;column:attendance_sessions_type" json:"attendance_sessions_type"`
	AttendanceSessionStatus string `gorm:"not null;default:open;column:attendance_sessions_status" json:"attendance_sessions_status"`

	AttendanceSessionExpiresAt *time.Time `gorm:"column:attendance_sessions_expires_at" json:"attendance_sessions_expires_at,omitempty"`
	AttendanceSessionCreatedAt time.Time  `gorm:"column:attendance_sessions_created_at;autoCreateTime" json:"attendance_sessions_created_at"`
	AttendanceSessionUpdatedAt *time.Time `gorm:"column:attendance_sessions_updated_at;autoUpdateTime" json:"attendance_sessions_updated_at,omitempty"`
}

func (AttendanceSessionModel) TableName() string { return "attendance_sessions" }

func (m *AttendanceSessionModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceSessionID == uuid.Nil {
		m.AttendanceSessionID = uuid.New()
	}
	return nil
}
