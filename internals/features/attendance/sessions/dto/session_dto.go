package dto

import (
	"time"

	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/sessions/model"
)

/* ===================== REQUESTS ===================== */

type CreateSessionRequest struct {
	ClassID uuid.UUID `json:"class_id" validate:"required"`
	Date    string    `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string    `json:"time" validate:"required"`
	Type    string    `json:"type" validate:"omitempty,oneof=regular qr_scan"`
}

type ListSessionsQuery struct {
	Start string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `query:"end" validate:"omitempty,datetime=2006-01-02"`
}

/* ===================== RESPONSES ===================== */

type SessionResponse struct {
	SessionID uuid.UUID  `json:"session_id"`
	ClassID   uuid.UUID  `json:"class_id"`
	TeacherID *uuid.UUID `json:"teacher_id,omitempty"`
	Date      string     `json:"date"`
	Time      string     `json:"time"`
	Type      string     `json:"type"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func FromSessionModel(m model.AttendanceSessionModel) SessionResponse {
	return SessionResponse{
		SessionID: m.AttendanceSessionID,
		ClassID:   m.AttendanceSessionClassID,
		TeacherID: m.AttendanceSessionTeacherID,
		Date:      m.AttendanceSessionDate.Format("2006-01-02"),
		Time:      m.AttendanceSessionTime.Format("15:04:05"),
		Type:      m.AttendanceSessionType,
		Status:    m.AttendanceSessionStatus,
		ExpiresAt: m.AttendanceSessionExpiresAt,
		CreatedAt: m.AttendanceSessionCreatedAt,
	}
}

func FromSessionModels(ms []model.AttendanceSessionModel) []SessionResponse {
	out := make([]SessionResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromSessionModel(m))
	}
	return out
}
