// file: internals/features/attendance/records/service/record_service.go
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/constants"
	auditService "sekolahku_backend/internals/features/attendance/audit/service"
	"sekolahku_backend/internals/features/attendance/records/dto"
	"sekolahku_backend/internals/features/attendance/records/model"
	helper "sekolahku_backend/internals/helpers"
	"sekolahku_backend/internals/helpers/dbtime"
)

// RecordService owns AttendanceRecord writes. Uniqueness on
// (session, student) is a database invariant; a single insert→update retry
// converts concurrent first-marks into last-writer-wins updates.
type RecordService struct {
	DB    *gorm.DB
	Clock dbtime.Clock
	Audit *auditService.AuditService
}

func NewRecordService(db *gorm.DB, clock dbtime.Clock, audit *auditService.AuditService) *RecordService {
	return &RecordService{DB: db, Clock: clock, Audit: audit}
}

type sessionHead struct {
	ClassID uuid.UUID `gorm:"column:attendance_sessions_class_id"`
	Status  string    `gorm:"column:attendance_sessions_status"`
}

func (s *RecordService) sessionHead(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (sessionHead, error) {
	var row sessionHead
	err := db.WithContext(ctx).Table("attendance_sessions").
		Select("attendance_sessions_class_id, attendance_sessions_status").
		Where("attendance_sessions_id = ?", sessionID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return row, helper.NewApiError(helper.CodeNotFound, "session not found")
	}
	return row, err
}

/* ===================== MARK (bulk, atomic) ===================== */

// MarkBulk upserts every entry in one transaction. Any invalid entry
// (unknown status or unenrolled student) aborts the whole call; offending
// student ids are reported, never the submitted values.
func (s *RecordService) MarkBulk(ctx context.Context, markedBy uuid.UUID, req dto.MarkBulkRequest) (*dto.MarkBulkResponse, error) {
	resp := &dto.MarkBulkResponse{SessionID: req.SessionID}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		head, err := s.sessionHead(ctx, tx, req.SessionID)
		if err != nil {
			return err
		}
		if head.Status == constants.SessionStatusClosed {
			return helper.NewApiError(helper.CodeConflict, "session is closed")
		}

		// validate the whole batch before touching any row
		var badStatus []uuid.UUID
		for _, e := range req.Entries {
			if !constants.IsValidStatus(e.Status) {
				badStatus = append(badStatus, e.StudentID)
			}
		}
		if len(badStatus) > 0 {
			return helper.NewApiErrorWithDetail(helper.CodeInvalidInput,
				"invalid attendance status", map[string]any{"offending": badStatus})
		}

		unenrolled, err := s.unenrolledOf(ctx, tx, head.ClassID, req.Entries)
		if err != nil {
			return err
		}
		if len(unenrolled) > 0 {
			return helper.NewApiErrorWithDetail(helper.CodeInvalidInput,
				"students not enrolled in class", map[string]any{"offending": unenrolled})
		}

		for _, e := range req.Entries {
			created, _, err := s.upsertTx(ctx, tx, req.SessionID, e, markedBy)
			if err != nil {
				return err
			}
			if created {
				resp.Created++
			} else {
				resp.Updated++
			}
		}
		resp.Total = len(req.Entries)
		return nil
	})

	outcome := auditService.OutcomeSuccess
	if err != nil {
		outcome = auditService.OutcomeFailure
	}
	s.Audit.Log(ctx, &markedBy, "attendance.mark_bulk", req.SessionID.String(), outcome,
		map[string]any{"entries": len(req.Entries)})

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// MarkManual is single-entry bulk addressed at one student.
func (s *RecordService) MarkManual(ctx context.Context, markedBy uuid.UUID, sessionID uuid.UUID, entry dto.MarkEntry) (*model.AttendanceRecordModel, error) {
	var out *model.AttendanceRecordModel

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		head, err := s.sessionHead(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if head.Status == constants.SessionStatusClosed {
			return helper.NewApiError(helper.CodeConflict, "session is closed")
		}
		if !constants.IsValidStatus(entry.Status) {
			return helper.NewApiErrorWithDetail(helper.CodeInvalidInput,
				"invalid attendance status", map[string]any{"offending": []uuid.UUID{entry.StudentID}})
		}
		unenrolled, err := s.unenrolledOf(ctx, tx, head.ClassID, []dto.MarkEntry{entry})
		if err != nil {
			return err
		}
		if len(unenrolled) > 0 {
			return helper.NewApiErrorWithDetail(helper.CodeInvalidInput,
				"students not enrolled in class", map[string]any{"offending": unenrolled})
		}

		_, rec, err := s.upsertTx(ctx, tx, sessionID, entry, markedBy)
		out = rec
		return err
	})

	outcome := auditService.OutcomeSuccess
	if err != nil {
		outcome = auditService.OutcomeFailure
	}
	s.Audit.Log(ctx, &markedBy, "attendance.mark_manual", sessionID.String(), outcome,
		map[string]any{"student_id": entry.StudentID.String()})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkWithinTx is the QR redeem entry point: same upsert, caller's
// transaction, session already validated by the QR service.
func (s *RecordService) MarkWithinTx(ctx context.Context, tx *gorm.DB, markedBy uuid.UUID, sessionID uuid.UUID, entry dto.MarkEntry) (*model.AttendanceRecordModel, error) {
	_, rec, err := s.upsertTx(ctx, tx, sessionID, entry, markedBy)
	return rec, err
}

// upsertTx inserts a record and, on the unique (session, student) violation,
// retries exactly once as an update. created_at is preserved on update.
func (s *RecordService) upsertTx(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, e dto.MarkEntry, markedBy uuid.UUID) (created bool, rec *model.AttendanceRecordModel, err error) {
	now := s.Clock.Now()
	m := &model.AttendanceRecordModel{
		AttendanceRecordSessionID:   sessionID,
		AttendanceRecordStudentID:   e.StudentID,
		AttendanceRecordStatus:      e.Status,
		AttendanceRecordArrivalTime: e.ArrivalTime,
		AttendanceRecordMarkedBy:    markedBy,
		AttendanceRecordNotes:       e.Notes,
		AttendanceRecordCreatedAt:   now,
		AttendanceRecordUpdatedAt:   now,
	}
	insertErr := tx.WithContext(ctx).Create(m).Error
	if insertErr == nil {
		return true, m, nil
	}
	if !helper.IsUniqueViolation(insertErr) {
		return false, nil, insertErr
	}

	// insert → update: overwrite status/arrival/notes, bump updated_at
	updates := map[string]any{
		"attendance_records_status":       e.Status,
		"attendance_records_arrival_time": e.ArrivalTime,
		"attendance_records_notes":        e.Notes,
		"attendance_records_marked_by":    markedBy,
		"attendance_records_updated_at":   now,
	}
	res := tx.WithContext(ctx).Model(&model.AttendanceRecordModel{}).
		Where("attendance_records_session_id = ? AND attendance_records_student_id = ?",
			sessionID, e.StudentID).
		Updates(updates)
	if res.Error != nil {
		return false, nil, res.Error
	}

	var existing model.AttendanceRecordModel
	if err := tx.WithContext(ctx).
		Where("attendance_records_session_id = ? AND attendance_records_student_id = ?",
			sessionID, e.StudentID).
		Take(&existing).Error; err != nil {
		return false, nil, err
	}
	return false, &existing, nil
}

// unenrolledOf returns the entry student ids with no active enrollment in
// classID, in input order.
func (s *RecordService) unenrolledOf(ctx context.Context, tx *gorm.DB, classID uuid.UUID, entries []dto.MarkEntry) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.StudentID)
	}

	var enrolled []uuid.UUID
	if err := tx.WithContext(ctx).Table("enrollments").
		Where("enrollments_class_id = ? AND enrollments_is_active = ? AND enrollments_student_id IN ?",
			classID, true, ids).
		Pluck("enrollments_student_id", &enrolled).Error; err != nil {
		return nil, err
	}

	ok := make(map[uuid.UUID]struct{}, len(enrolled))
	for _, id := range enrolled {
		ok[id] = struct{}{}
	}
	var missing []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, found := ok[id]; !found {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

/* ===================== UPDATE / READS ===================== */

// UpdateRecord patches one record by primary key. Closed sessions only
// accept amendments from admin-scoped principals (allowClosed).
func (s *RecordService) UpdateRecord(ctx context.Context, principalID uuid.UUID, recordID uuid.UUID, patch dto.UpdateRecordRequest, allowClosed bool) (*model.AttendanceRecordModel, error) {
	var out *model.AttendanceRecordModel

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.AttendanceRecordModel
		if err := tx.WithContext(ctx).
			Where("attendance_records_id = ?", recordID).
			Take(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.NewApiError(helper.CodeNotFound, "record not found")
			}
			return err
		}

		head, err := s.sessionHead(ctx, tx, m.AttendanceRecordSessionID)
		if err != nil {
			return err
		}
		if head.Status == constants.SessionStatusClosed && !allowClosed {
			return helper.NewApiError(helper.CodeConflict, "session is closed")
		}

		updates := map[string]any{
			"attendance_records_marked_by":  principalID,
			"attendance_records_updated_at": s.Clock.Now(),
		}
		if patch.Status != nil {
			if !constants.IsValidStatus(*patch.Status) {
				return helper.NewApiErrorWithDetail(helper.CodeInvalidInput,
					"invalid attendance status", map[string]any{"fields": []string{"status"}})
			}
			updates["attendance_records_status"] = *patch.Status
		}
		if patch.ArrivalTime != nil {
			updates["attendance_records_arrival_time"] = *patch.ArrivalTime
		}
		if patch.Notes != nil {
			updates["attendance_records_notes"] = *patch.Notes
		}

		if err := tx.WithContext(ctx).Model(&model.AttendanceRecordModel{}).
			Where("attendance_records_id = ?", recordID).
			Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.WithContext(ctx).
			Where("attendance_records_id = ?", recordID).
			Take(&m).Error; err != nil {
			return err
		}
		out = &m
		return nil
	})

	outcome := auditService.OutcomeSuccess
	if err != nil {
		outcome = auditService.OutcomeFailure
	}
	s.Audit.Log(ctx, &principalID, "attendance.update_record", recordID.String(), outcome, nil)

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RecordService) GetRecord(ctx context.Context, recordID uuid.UUID) (*model.AttendanceRecordModel, error) {
	var m model.AttendanceRecordModel
	if err := s.DB.WithContext(ctx).
		Where("attendance_records_id = ?", recordID).
		Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NewApiError(helper.CodeNotFound, "record not found")
		}
		return nil, err
	}
	return &m, nil
}

func (s *RecordService) ListRecordsForSession(ctx context.Context, sessionID uuid.UUID) ([]model.AttendanceRecordModel, error) {
	var out []model.AttendanceRecordModel
	err := s.DB.WithContext(ctx).
		Where("attendance_records_session_id = ?", sessionID).
		Order("attendance_records_created_at ASC").
		Find(&out).Error
	return out, err
}

// SessionClassID resolves the owning class, used by controllers for gating.
func (s *RecordService) SessionClassID(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	head, err := s.sessionHead(ctx, s.DB, sessionID)
	if err != nil {
		return uuid.Nil, err
	}
	return head.ClassID, nil
}
