package dto

import (
	"time"

	"github.com/google/uuid"
)

// Risk classes and class-level trends are closed sets.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"

	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// RiskInsight is a derived, cached artifact; it is never persisted for
// correctness.
type RiskInsight struct {
	StudentID   uuid.UUID `json:"student_id"`
	HorizonDays int       `json:"horizon_days"`
	Score       float64   `json:"score"` // ∈ [0,1]
	Class       string    `json:"class"` // low | medium | high
	GeneratedAt time.Time `json:"generated_at"`
	// Fallback marks the deterministic neutral response emitted when the
	// prediction service is unreachable.
	Fallback bool `json:"fallback,omitempty"`
}

type ClassInsight struct {
	ClassID         uuid.UUID   `json:"class_id"`
	Trend           string      `json:"trend"` // improving | stable | declining
	AtRiskStudents  []uuid.UUID `json:"at_risk_students"`
	Recommendations []string    `json:"recommendations"`
	GeneratedAt     time.Time   `json:"generated_at"`
	Fallback        bool        `json:"fallback,omitempty"`
}

type AnalyzeClassRequest struct {
	ClassID uuid.UUID `json:"class_id" validate:"required"`
}
