package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SchoolModel struct {
	SchoolID        uuid.UUID `gorm:"type:uuid;primaryKey;column:schools_id" json:"schools_id"`
	SchoolTenantID  uuid.UUID `gorm:"type:uuid;not null;column:schools_tenant_id" json:"schools_tenant_id"` // never changes after create
	SchoolName      string    `gorm:"not null;column:schools_name" json:"schools_name"`
	SchoolIsActive  bool      `gorm:"not null;default:true;column:schools_is_active" json:"schools_is_active"`
	SchoolCreatedAt time.Time `gorm:"column:schools_created_at;autoCreateTime" json:"schools_created_at"`
}

func (SchoolModel) TableName() string { return "schools" }

func (m *SchoolModel) BeforeCreate(tx *gorm.DB) error {
	if m.SchoolID == uuid.Nil {
		m.SchoolID = uuid.New()
	}
	return nil
}
