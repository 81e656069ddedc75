package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceRecordModel struct {
	AttendanceRecordID uuid.UUID `gorm:"type:uuid;primaryKey;column:attendance_records_id" json:"attendance_records_id"`

	AttendanceRecordSessionID uuid.UUID `gorm:"type:uuid;not null;column:attendance_records_session_id;uniqueIndex:uq_attendance_records_session_student;index:idx_attendance_records_session" json:"attendance_records_session_id"`
	AttendanceRecordStudentID uuid.UUID `gorm:"type:uuid;not null;column:attendance_records_student_id;uniqueIndex:uq_attendance_records_session_student" json:"attendance_records_student_id"`

	AttendanceRecordStatus      string     `gorm:"not null;column:attendance_records_status" json:"attendance_records_status"`
	AttendanceRecordArrivalTime *time.Time `gorm:"column:attendance_records_arrival_time" json:"attendance_records_arrival_time,omitempty"`
	AttendanceRecordMarkedBy    uuid.UUID  `gorm:"type:uuid;not null;column:attendance_records_marked_by" json:"attendance_records_marked_by"`
	AttendanceRecordNotes       *string    `gorm:"column:attendance_records_notes" json:"attendance_records_notes,omitempty"`

	AttendanceRecordCreatedAt time.Time `gorm:"column:attendance_records_created_at;autoCreateTime" json:"attendance_records_created_at"`
	AttendanceRecordUpdatedAt time.Time `gorm:"column:attendance_records_updated_at;autoUpdateTime" json:"attendance_records_updated_at"`
}

func (AttendanceRecordModel) TableName() string { return "attendance_records" }

func (m *AttendanceRecordModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceRecordID == uuid.Nil {
		m.AttendanceRecordID = uuid.New()
	}
	return nil
}
