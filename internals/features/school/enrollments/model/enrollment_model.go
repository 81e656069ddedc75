package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentModel is the sole authority for which students appear in a
// session of a class.
type EnrollmentModel struct {
	EnrollmentClassID   uuid.UUID `gorm:"type:uuid;primaryKey;column:enrollments_class_id" json:"enrollments_class_id"`
	EnrollmentStudentID uuid.UUID `gorm:"type:uuid;primaryKey;column:enrollments_student_id" json:"enrollments_student_id"`
	EnrollmentIsActive  bool      `gorm:"not null;default:true;column:enrollments_is_active" json:"enrollments_is_active"`
	EnrollmentSince     time.Time `gorm:"type:date;column:enrollments_since" json:"enrollments_since"`
}

func (EnrollmentModel) TableName() string { return "enrollments" }
