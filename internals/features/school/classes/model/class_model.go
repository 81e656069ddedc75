package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClassModel struct {
	ClassID        uuid.UUID  `gorm:"type:uuid;primaryKey;column:classes_id" json:"classes_id"`
	ClassSchoolID  uuid.UUID  `gorm:"type:uuid;not null;column:classes_school_id;index:idx_classes_school" json:"classes_school_id"`
	ClassTeacherID *uuid.UUID `gorm:"type:uuid;column:classes_teacher_id" json:"classes_teacher_id,omitempty"` // 0..1 teacher per class
	ClassName      string     `gorm:"not null;column:classes_name" json:"classes_name"`
	ClassGrade     *string    `gorm:"column:classes_grade" json:"classes_grade,omitempty"`
	ClassYear      *int       `gorm:"column:classes_year" json:"classes_year,omitempty"`
	ClassIsActive  bool       `gorm:"not null;default:true;column:classes_is_active" json:"classes_is_active"`
	ClassCreatedAt time.Time  `gorm:"column:classes_created_at;autoCreateTime" json:"classes_created_at"`
}

func (ClassModel) TableName() string { return "classes" }

func (m *ClassModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassID == uuid.Nil {
		m.ClassID = uuid.New()
	}
	return nil
}
