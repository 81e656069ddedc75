package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserModel struct {
	UserID        uuid.UUID  `gorm:"type:uuid;primaryKey;column:users_id" json:"users_id"`
	UserTenantID  *uuid.UUID `gorm:"type:uuid;column:users_tenant_id;index:idx_users_tenant_role" json:"users_tenant_id,omitempty"` // NULL only for superadmin
	UserName      string     `gorm:"not null;column:users_name" json:"users_name"`
	UserEmail     string     `gorm:"not null;uniqueIndex;column:users_email" json:"users_email"`
	UserPassword  string     `gorm:"not null;column:users_password" json:"-"`
	UserRole      string     `gorm:"not null;column:users_role;index:idx_users_tenant_role" json:"users_role"`
	UserIsActive  bool       `gorm:"not null;default:true;column:users_is_active" json:"users_is_active"`
	UserCreatedAt time.Time  `gorm:"column:users_created_at;autoCreateTime" json:"users_created_at"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) BeforeCreate(tx *gorm.DB) error {
	if m.UserID == uuid.Nil {
		m.UserID = uuid.New()
	}
	return nil
}
