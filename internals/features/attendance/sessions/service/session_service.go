// file: internals/features/attendance/sessions/service/session_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/constants"
	"sekolahku_backend/internals/features/attendance/sessions/model"
	helper "sekolahku_backend/internals/helpers"
	"sekolahku_backend/internals/helpers/dbtime"
)

// SessionService owns the AttendanceSession lifecycle. Sessions are unique on
// (class, date, time) and move open → closed, terminal.
type SessionService struct {
	DB    *gorm.DB
	Clock dbtime.Clock
}

func NewSessionService(db *gorm.DB, clock dbtime.Clock) *SessionService {
	return &SessionService{DB: db, Clock: clock}
}

type CreateSessionInput struct {
	ClassID   uuid.UUID
	TeacherID *uuid.UUID
	Date      time.Time
	Time      dbtime.Tod
	Type      string
	// CallerRole decides the backdating rule: teachers may only create
	// sessions for today or later (tenant-local); admin+ may backdate.
	CallerRole string
	TenantLoc  *time.Location
}

func (s *SessionService) CreateSession(ctx context.Context, in CreateSessionInput) (*model.AttendanceSessionModel, error) {
	if in.Type == "" {
		in.Type = constants.SessionTypeRegular
	}
	if in.Type != constants.SessionTypeRegular && in.Type != constants.SessionTypeQRScan {
		return nil, helper.NewApiError(helper.CodeInvalidInput, "unknown session type")
	}

	if in.CallerRole == constants.RoleTeacher {
		loc := in.TenantLoc
		if loc == nil {
			loc = time.UTC
		}
		if !dbtime.SameOrFutureDate(in.Date, s.Clock.Now(), loc) {
			return nil, helper.NewApiError(helper.CodeInvalidInput, "teachers cannot create sessions in the past")
		}
	}

	m := &model.AttendanceSessionModel{
		AttendanceSessionClassID:   in.ClassID,
		AttendanceSessionTeacherID: in.TeacherID,
		AttendanceSessionDate:      in.Date,
		AttendanceSessionTime:      in.Time,
		AttendanceSessionType:      in.Type,
		AttendanceSessionStatus:    constants.SessionStatusOpen,
	}
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, helper.NewApiError(helper.CodeConflict,
				"a session already exists for this (class, date, time)")
		}
		return nil, err
	}
	return m, nil
}

// EnsureSession is the idempotent alternative: returns the existing session
// on conflict. The insert-then-select order collapses the first-scanner race
// (two concurrent EnsureSession calls) into a single row via the unique index.
func (s *SessionService) EnsureSession(ctx context.Context, db *gorm.DB, in CreateSessionInput) (*model.AttendanceSessionModel, error) {
	if db == nil {
		db = s.DB
	}
	if in.Type == "" {
		in.Type = constants.SessionTypeRegular
	}

	m := &model.AttendanceSessionModel{
		AttendanceSessionClassID:   in.ClassID,
		AttendanceSessionTeacherID: in.TeacherID,
		AttendanceSessionDate:      in.Date,
		AttendanceSessionTime:      in.Time,
		AttendanceSessionType:      in.Type,
		AttendanceSessionStatus:    constants.SessionStatusOpen,
	}
	err := db.WithContext(ctx).Create(m).Error
	if err == nil {
		return m, nil
	}
	if !helper.IsUniqueViolation(err) {
		return nil, err
	}

	var existing model.AttendanceSessionModel
	if err := db.WithContext(ctx).
		Where("attendance_sessions_class_id = ? AND attendance_sessions_date = ? AND attendance_sessions_time = ?",
			in.ClassID, in.Date, in.Time).
		Take(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (s *SessionService) GetSession(ctx context.Context, sessionID uuid.UUID) (*model.AttendanceSessionModel, error) {
	var m model.AttendanceSessionModel
	if err := s.DB.WithContext(ctx).
		Where("attendance_sessions_id = ?", sessionID).
		Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NewApiError(helper.CodeNotFound, "session not found")
		}
		return nil, err
	}
	return &m, nil
}

// ListSessionsForClass returns sessions inside the inclusive [start, end]
// window, newest first with session id as the final tie-break.
func (s *SessionService) ListSessionsForClass(ctx context.Context, classID uuid.UUID, start, end *time.Time, paging helper.Paging) ([]model.AttendanceSessionModel, int64, error) {
	q := func() *gorm.DB {
		db := s.DB.WithContext(ctx).Model(&model.AttendanceSessionModel{}).
			Where("attendance_sessions_class_id = ?", classID)
		if start != nil {
			db = db.Where("attendance_sessions_date >= ?", *start)
		}
		if end != nil {
			db = db.Where("attendance_sessions_date <= ?", *end)
		}
		return db
	}

	var total int64
	if err := q().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []model.AttendanceSessionModel
	err := q().
		Order("attendance_sessions_date DESC").
		Order("attendance_sessions_time DESC").
		Order("attendance_sessions_id DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&out).Error
	return out, total, err
}

// CloseSession transitions open → closed. Closing an already-closed session
// is a CONFLICT with a stable message; there is no reopen.
func (s *SessionService) CloseSession(ctx context.Context, sessionID uuid.UUID) (*model.AttendanceSessionModel, error) {
	m, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if m.AttendanceSessionStatus == constants.SessionStatusClosed {
		return nil, helper.NewApiError(helper.CodeConflict, "session is already closed")
	}

	res := s.DB.WithContext(ctx).Model(&model.AttendanceSessionModel{}).
		Where("attendance_sessions_id = ? AND attendance_sessions_status = ?",
			sessionID, constants.SessionStatusOpen).
		Update("attendance_sessions_status", constants.SessionStatusClosed)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// lost the race against another closer
		return nil, helper.NewApiError(helper.CodeConflict, "session is already closed")
	}

	m.AttendanceSessionStatus = constants.SessionStatusClosed
	return m, nil
}

// IsClosed is a cheap status check used by the record store before writes.
func (s *SessionService) IsClosed(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (bool, error) {
	if db == nil {
		db = s.DB
	}
	var row struct {
		Status string `gorm:"column:attendance_sessions_status"`
	}
	err := db.WithContext(ctx).Table("attendance_sessions").
		Select("attendance_sessions_status").
		Where("attendance_sessions_id = ?", sessionID).
		Take(&row).Error
	if err != nil {
		return false, err
	}
	return row.Status == constants.SessionStatusClosed, nil
}
