package dto

import (
	"time"

	"github.com/google/uuid"
)

/* ===================== STUDENT ===================== */

type AttendanceSummary struct {
	TotalDays  int64   `json:"total_days"`
	Present    int64   `json:"present"`
	Absent     int64   `json:"absent"`
	Late       int64   `json:"late"`
	Excused    int64   `json:"excused"`
	Percentage float64 `json:"percentage"`
}

// StudentMonthResponse: calendar has one cell per day of the month; a cell is
// null (no session-record that day) or the best status of the day.
type StudentMonthResponse struct {
	StudentID uuid.UUID            `json:"student_id"`
	Year      int                  `json:"year"`
	Month     int                  `json:"month"`
	Records   []StudentHistoryItem `json:"records"`
	Summary   AttendanceSummary    `json:"summary"`
	Calendar  []*string            `json:"calendar"`
}

type StudentHistoryItem struct {
	RecordID    uuid.UUID  `json:"record_id"`
	SessionID   uuid.UUID  `json:"session_id"`
	ClassID     uuid.UUID  `json:"class_id"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	SessionType string     `json:"session_type"`
	Status      string     `json:"status"`
	ArrivalTime *time.Time `json:"arrival_time,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

/* ===================== CLASS ===================== */

type ClassSummaryRow struct {
	StudentID   uuid.UUID  `json:"student_id"`
	StudentName string     `json:"student_name"`
	Status      *string    `json:"status"` // null when no record for the day
	RecordID    *uuid.UUID `json:"record_id,omitempty"`
}

type ClassSummaryResponse struct {
	ClassID  uuid.UUID         `json:"class_id"`
	Date     string            `json:"date"`
	Sessions int64             `json:"sessions"`
	Students []ClassSummaryRow `json:"students"`
}

type ClassAnalyticsResponse struct {
	ClassID    uuid.UUID `json:"class_id"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
	Present    int64     `json:"present"`
	Absent     int64     `json:"absent"`
	Late       int64     `json:"late"`
	Excused    int64     `json:"excused"`
	Total      int64     `json:"total"`
	Percentage float64   `json:"percentage"`
}

/* ===================== SCHOOL ===================== */

type SchoolOverviewRow struct {
	ClassID    uuid.UUID `json:"class_id"`
	ClassName  string    `json:"class_name"`
	Sessions   int64     `json:"sessions"`
	Present    int64     `json:"present"`
	Absent     int64     `json:"absent"`
	Late       int64     `json:"late"`
	Excused    int64     `json:"excused"`
	Percentage float64   `json:"percentage"`
}

type SchoolOverviewResponse struct {
	SchoolID uuid.UUID           `json:"school_id"`
	Date     string              `json:"date"`
	Classes  []SchoolOverviewRow `json:"classes"`
}

type SchoolAnalyticsRow struct {
	Date       string  `json:"date"`
	Present    int64   `json:"present"`
	Absent     int64   `json:"absent"`
	Late       int64   `json:"late"`
	Excused    int64   `json:"excused"`
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
}

type SchoolAnalyticsResponse struct {
	SchoolID uuid.UUID            `json:"school_id"`
	Start    string               `json:"start"`
	End      string               `json:"end"`
	Days     []SchoolAnalyticsRow `json:"days"`
}
