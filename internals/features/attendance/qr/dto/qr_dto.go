package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/* ===================== REQUESTS ===================== */

type IssueTokenRequest struct {
	ClassID     uuid.UUID `json:"class_id" validate:"required"`
	Date        string    `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string    `json:"time" validate:"required"`
	LifetimeMin int       `json:"lifetime_min" validate:"required,min=1"`
}

type RedeemTokenRequest struct {
	TokenID uuid.UUID `json:"token_id" validate:"required"`
	// StudentID may be omitted by students (defaults to the caller); teachers
	// self-scanning must name the student.
	StudentID  *uuid.UUID     `json:"student_id,omitempty"`
	DeviceInfo datatypes.JSON `json:"device_info,omitempty"` // stored verbatim
}

/* ===================== RESPONSES ===================== */

type IssueTokenResponse struct {
	TokenID     uuid.UUID `json:"token_id"`
	Payload     string    `json:"payload"`
	ExpiresAt   time.Time `json:"expires_at"`
	LifetimeMin int       `json:"lifetime_min"`
	Clamped     bool      `json:"clamped,omitempty"` // true when lifetime was out of range
}

type RedeemTokenResponse struct {
	RecordID  uuid.UUID `json:"record_id"`
	SessionID uuid.UUID `json:"session_id"`
	Status    string    `json:"status"`
	// AlreadyMarked distinguishes the idempotent re-scan from the first scan.
	AlreadyMarked bool `json:"already_marked"`
}

type InspectTokenResponse struct {
	TokenID          uuid.UUID  `json:"token_id"`
	ClassID          uuid.UUID  `json:"class_id"`
	IssuerID         uuid.UUID  `json:"issuer_id"`
	PlannedDate      string     `json:"planned_date"`
	PlannedTime      string     `json:"planned_time"`
	IsActive         bool       `json:"is_active"`
	ExpiresAt        time.Time  `json:"expires_at"`
	TimeRemainingMS  int64      `json:"time_remaining"` // milliseconds, floored at 0
	SessionID        *uuid.UUID `json:"session_id,omitempty"`
	EnrollmentSize   int64      `json:"enrollment_size"`
	MarkedAttendance int64      `json:"marked_attendance"`
	Present          int64      `json:"present"`
	Absent           int64      `json:"absent"`
	Late             int64      `json:"late"`
	Excused          int64      `json:"excused"`
	Percentage       float64    `json:"attendance_percentage"`
}
