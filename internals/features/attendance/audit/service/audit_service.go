// file: internals/features/attendance/audit/service/audit_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sekolahku_backend/internals/features/attendance/audit/model"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuditService appends one structured event per attendance write. Audit must
// never fail the write it describes, so errors are logged and swallowed.
type AuditService struct {
	DB *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db}
}

// Log writes an audit event outside the caller's transaction: a rolled-back
// write still leaves its failure event behind.
func (s *AuditService) Log(ctx context.Context, principalID *uuid.UUID, action, target, outcome string, detail map[string]any) {
	var payload datatypes.JSON
	if len(detail) > 0 {
		if b, err := json.Marshal(detail); err == nil {
			payload = datatypes.JSON(b)
		}
	}
	ev := &model.AuditEventModel{
		AuditEventPrincipalID: principalID,
		AuditEventAction:      action,
		AuditEventTarget:      target,
		AuditEventOutcome:     outcome,
		AuditEventDetail:      payload,
	}
	if err := s.DB.WithContext(ctx).Create(ev).Error; err != nil {
		log.Printf("[AUDIT][ERROR] %s %s: %v", action, target, err)
	}
}
