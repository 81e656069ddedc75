package model

import (
	"github.com/google/uuid"
)

// ParentLinkModel is the sole authority for which students a parent may read.
type ParentLinkModel struct {
	ParentLinkParentID  uuid.UUID `gorm:"type:uuid;primaryKey;column:parent_links_parent_id" json:"parent_links_parent_id"`
	ParentLinkStudentID uuid.UUID `gorm:"type:uuid;primaryKey;column:parent_links_student_id" json:"parent_links_student_id"`
	ParentLinkIsPrimary bool      `gorm:"not null;default:false;column:parent_links_is_primary" json:"parent_links_is_primary"`
}

func (ParentLinkModel) TableName() string { return "parent_links" }
