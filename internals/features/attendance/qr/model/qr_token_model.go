package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sekolahku_backend/internals/helpers/dbtime"
)

type QRTokenModel struct {
	QRTokenID uuid.UUID `gorm:"type:uuid;primaryKey;column:qr_tokens_id" json:"qr_tokens_id"`

	QRTokenClassID   uuid.UUID `gorm:"type:uuid;not null;column:qr_tokens_class_id;index:idx_qr_tokens_class_date" json:"qr_tokens_class_id"`
	QRTokenTeacherID uuid.UUID `gorm:"type:uuid;not null;column:qr_tokens_teacher_id" json:"qr_tokens_teacher_id"`

	QRTokenPlannedDate time.Time  `gorm:"type:date;not null;column:qr_tokens_planned_date;index:idx_qr_tokens_class_date" json:"qr_tokens_planned_date"`
	QRTokenPlannedTime dbtime.Tod `gorm:"type:time;not null;column:qr_tokens_planned_time" json:"qr_tokens_planned_time"`

	// Opaque capability string, >= 128 bits of entropy. Never derived from ids.
	QRTokenPayload string `gorm:"not null;uniqueIndex;column:qr_tokens_payload" json:"qr_tokens_payload"`

	QRTokenIssuedAt  time.Time `gorm:"not null;column:qr_tokens_issued_at" json:"qr_tokens_issued_at"`
	QRTokenExpiresAt time.Time `gorm:"not null;column:qr_tokens_expires_at" json:"qr_tokens_expires_at"`
	QRTokenIsActive  bool      `gorm:"not null;default:true;column:qr_tokens_is_active" json:"qr_tokens_is_active"`
}

func (QRTokenModel) TableName() string { return "qr_tokens" }

func (m *QRTokenModel) BeforeCreate(tx *gorm.DB) error {
	if m.QRTokenID == uuid.Nil {
		m.QRTokenID = uuid.New()
	}
	return nil
}

// QRCodeScanModel is the append-only audit of scan attempts. DeviceInfo is
// stored verbatim and never interpreted.
type QRCodeScanModel struct {
	QRCodeScanID         uuid.UUID      `gorm:"type:uuid;primaryKey;column:qr_code_scans_id" json:"qr_code_scans_id"`
	QRCodeScanTokenID    uuid.UUID      `gorm:"type:uuid;not null;column:qr_code_scans_token_id" json:"qr_code_scans_token_id"`
	QRCodeScanStudentID  *uuid.UUID     `gorm:"type:uuid;column:qr_code_scans_student_id" json:"qr_code_scans_student_id,omitempty"`
	QRCodeScanOutcome    string         `gorm:"not null;column:qr_code_scans_outcome" json:"qr_code_scans_outcome"`
	QRCodeScanDeviceInfo datatypes.JSON `gorm:"column:qr_code_scans_device_info" json:"qr_code_scans_device_info,omitempty"`
	QRCodeScanScannedAt  time.Time      `gorm:"column:qr_code_scans_scanned_at;autoCreateTime" json:"qr_code_scans_scanned_at"`
}

func (QRCodeScanModel) TableName() string { return "qr_code_scans" }

func (m *QRCodeScanModel) BeforeCreate(tx *gorm.DB) error {
	if m.QRCodeScanID == uuid.Nil {
		m.QRCodeScanID = uuid.New()
	}
	return nil
}
