package dto

import (
	"time"

	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/records/model"
)

/* ===================== REQUESTS ===================== */

type MarkEntry struct {
	StudentID   uuid.UUID  `json:"student_id" validate:"required"`
	Status      string     `json:"status" validate:"required,oneof=present absent late excused"`
	ArrivalTime *time.Time `json:"arrival_time,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

type MarkBulkRequest struct {
	SessionID uuid.UUID   `json:"session_id" validate:"required"`
	Entries   []MarkEntry `json:"entries" validate:"required,min=1,dive"`
}

type UpdateRecordRequest struct {
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=present absent late excused"`
	ArrivalTime *time.Time `json:"arrival_time,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

/* ===================== RESPONSES ===================== */

type RecordResponse struct {
	RecordID    uuid.UUID  `json:"record_id"`
	SessionID   uuid.UUID  `json:"session_id"`
	StudentID   uuid.UUID  `json:"student_id"`
	Status      string     `json:"status"`
	ArrivalTime *time.Time `json:"arrival_time,omitempty"`
	MarkedBy    uuid.UUID  `json:"marked_by"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func FromRecordModel(m model.AttendanceRecordModel) RecordResponse {
	return RecordResponse{
		RecordID:    m.AttendanceRecordID,
		SessionID:   m.AttendanceRecordSessionID,
		StudentID:   m.AttendanceRecordStudentID,
		Status:      m.AttendanceRecordStatus,
		ArrivalTime: m.AttendanceRecordArrivalTime,
		MarkedBy:    m.AttendanceRecordMarkedBy,
		Notes:       m.AttendanceRecordNotes,
		CreatedAt:   m.AttendanceRecordCreatedAt,
		UpdatedAt:   m.AttendanceRecordUpdatedAt,
	}
}

func FromRecordModels(ms []model.AttendanceRecordModel) []RecordResponse {
	out := make([]RecordResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromRecordModel(m))
	}
	return out
}

type MarkBulkResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Total     int       `json:"total"`
}
