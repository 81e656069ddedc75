package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantModel struct {
	TenantID        uuid.UUID `gorm:"type:uuid;primaryKey;column:tenants_id" json:"tenants_id"`
	TenantName      string    `gorm:"not null;column:tenants_name" json:"tenants_name"`
	TenantTimezone  string    `gorm:"not null;default:UTC;column:tenants_timezone" json:"tenants_timezone"` // IANA id
	TenantIsActive  bool      `gorm:"not null;default:true;column:tenants_is_active" json:"tenants_is_active"`
	TenantCreatedAt time.Time `gorm:"column:tenants_created_at;autoCreateTime" json:"tenants_created_at"`
}

func (TenantModel) TableName() string { return "tenants" }

func (m *TenantModel) BeforeCreate(tx *gorm.DB) error {
	if m.TenantID == uuid.Nil {
		m.TenantID = uuid.New()
	}
	return nil
}
