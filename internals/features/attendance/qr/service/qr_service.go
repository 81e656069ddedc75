// file: internals/features/attendance/qr/service/qr_service.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sekolahku_backend/internals/configs"
	"sekolahku_backend/internals/constants"
	auditService "sekolahku_backend/internals/features/attendance/audit/service"
	"sekolahku_backend/internals/features/attendance/qr/dto"
	"sekolahku_backend/internals/features/attendance/qr/model"
	recordDto "sekolahku_backend/internals/features/attendance/records/dto"
	recordModel "sekolahku_backend/internals/features/attendance/records/model"
	recordService "sekolahku_backend/internals/features/attendance/records/service"
	sessionService "sekolahku_backend/internals/features/attendance/sessions/service"
	helper "sekolahku_backend/internals/helpers"
	"sekolahku_backend/internals/helpers/dbtime"
)

// QRService mints and redeems short-lived attendance capabilities. A token
// never transitions back to active; redemption is idempotent per student.
type QRService struct {
	DB       *gorm.DB
	Clock    dbtime.Clock
	Cfg      configs.AttendanceConfig
	Sessions *sessionService.SessionService
	Records  *recordService.RecordService
	Audit    *auditService.AuditService
}

func NewQRService(db *gorm.DB, clock dbtime.Clock, cfg configs.AttendanceConfig,
	sessions *sessionService.SessionService, records *recordService.RecordService,
	audit *auditService.AuditService) *QRService {
	return &QRService{DB: db, Clock: clock, Cfg: cfg, Sessions: sessions, Records: records, Audit: audit}
}

/* ===================== ISSUE ===================== */

// newPayload returns an opaque capability string with 192 bits of entropy.
func newPayload() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *QRService) IssueToken(ctx context.Context, issuer uuid.UUID, req dto.IssueTokenRequest) (*dto.IssueTokenResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, helper.NewApiErrorWithDetail(helper.CodeInvalidInput,
			"invalid date", map[string]any{"fields": []string{"date"}})
	}
	tod, err := dbtime.Parse(req.Time)
	if err != nil {
		return nil, helper.NewApiErrorWithDetail(helper.CodeInvalidInput,
			"invalid time", map[string]any{"fields": []string{"time"}})
	}

	// clamp lifetime into the configured window and report it
	lifetime := time.Duration(req.LifetimeMin) * time.Minute
	clamped := false
	if lifetime < s.Cfg.TokenLifetimeMin {
		lifetime = s.Cfg.TokenLifetimeMin
		clamped = true
	}
	if lifetime > s.Cfg.TokenLifetimeMax {
		lifetime = s.Cfg.TokenLifetimeMax
		clamped = true
	}

	now := s.Clock.Now()

	payload, err := newPayload()
	if err != nil {
		return nil, err
	}

	m := &model.QRTokenModel{
		QRTokenClassID:     req.ClassID,
		QRTokenTeacherID:   issuer,
		QRTokenPlannedDate: date,
		QRTokenPlannedTime: tod,
		QRTokenPayload:     payload,
		QRTokenIssuedAt:    now,
		QRTokenExpiresAt:   now.Add(lifetime),
		QRTokenIsActive:    true,
	}

	// count + insert must be one transaction: the class-row lock serializes
	// concurrent issuers so the cap cannot be overshot
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("UPDATE classes SET classes_id = classes_id WHERE classes_id = ?",
			req.ClassID).Error; err != nil {
			return err
		}

		// at most N live tokens per (class, date)
		var active int64
		if err := tx.Model(&model.QRTokenModel{}).
			Where("qr_tokens_class_id = ? AND qr_tokens_planned_date = ? AND qr_tokens_is_active = ? AND qr_tokens_expires_at > ?",
				req.ClassID, date, true, now).
			Count(&active).Error; err != nil {
			return err
		}
		if int(active) >= s.Cfg.MaxActiveTokensPerDay {
			return helper.NewApiError(helper.CodeConflict,
				"active token limit reached for this class and date")
		}

		return tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Log(ctx, &issuer, "attendance.qr_issue", m.QRTokenID.String(),
		auditService.OutcomeSuccess, map[string]any{"class_id": req.ClassID.String()})

	return &dto.IssueTokenResponse{
		TokenID:     m.QRTokenID,
		Payload:     payload,
		ExpiresAt:   m.QRTokenExpiresAt,
		LifetimeMin: int(lifetime / time.Minute),
		Clamped:     clamped,
	}, nil
}

/* ===================== REDEEM ===================== */

func (s *QRService) loadToken(ctx context.Context, tokenID uuid.UUID) (*model.QRTokenModel, error) {
	var tok model.QRTokenModel
	if err := s.DB.WithContext(ctx).
		Where("qr_tokens_id = ?", tokenID).
		Take(&tok).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NewApiError(helper.CodeNotFound, "token not found")
		}
		return nil, err
	}
	return &tok, nil
}

// RedeemToken validates the token, ensures the backing session and writes a
// single 'present' record. A repeated scan by the same student returns the
// existing record (AlreadyMarked), not an error. principalID is the caller
// and becomes marked_by; studentID is the student being marked.
func (s *QRService) RedeemToken(ctx context.Context, principalID, studentID uuid.UUID, req dto.RedeemTokenRequest) (*dto.RedeemTokenResponse, error) {
	tok, err := s.loadToken(ctx, req.TokenID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	outcome := "redeemed"
	defer func() {
		s.logScan(ctx, tok.QRTokenID, &studentID, outcome, req.DeviceInfo)
	}()

	// consumable while active ∧ now < expires_at; now == expires_at rejects
	if !tok.QRTokenIsActive || !now.Before(tok.QRTokenExpiresAt) {
		outcome = "expired"
		return nil, helper.NewApiError(helper.CodeExpired, "token is expired or revoked")
	}

	// enrollment must be active at redeem time
	var enrolled int64
	if err := s.DB.WithContext(ctx).Table("enrollments").
		Where("enrollments_class_id = ? AND enrollments_student_id = ? AND enrollments_is_active = ?",
			tok.QRTokenClassID, studentID, true).
		Count(&enrolled).Error; err != nil {
		return nil, err
	}
	if enrolled == 0 {
		outcome = "not_enrolled"
		return nil, helper.NewApiErrorWithDetail(helper.CodeNotEnrolled,
			"student is not enrolled in this class",
			map[string]any{"student_id": studentID.String()})
	}

	var resp *dto.RedeemTokenResponse
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sess, err := s.Sessions.EnsureSession(ctx, tx, sessionService.CreateSessionInput{
			ClassID:   tok.QRTokenClassID,
			TeacherID: &tok.QRTokenTeacherID,
			Date:      tok.QRTokenPlannedDate,
			Time:      tok.QRTokenPlannedTime,
			Type:      constants.SessionTypeQRScan,
		})
		if err != nil {
			return err
		}
		if sess.AttendanceSessionStatus == constants.SessionStatusClosed {
			return helper.NewApiError(helper.CodeConflict, "session is closed")
		}

		// repeated scans are a no-op returning the existing record
		var existing recordModel.AttendanceRecordModel
		err = tx.WithContext(ctx).
			Where("attendance_records_session_id = ? AND attendance_records_student_id = ?",
				sess.AttendanceSessionID, studentID).
			Take(&existing).Error
		if err == nil {
			resp = &dto.RedeemTokenResponse{
				RecordID:      existing.AttendanceRecordID,
				SessionID:     sess.AttendanceSessionID,
				Status:        existing.AttendanceRecordStatus,
				AlreadyMarked: true,
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		note := "qr"
		rec, err := s.Records.MarkWithinTx(ctx, tx, principalID, sess.AttendanceSessionID, recordDto.MarkEntry{
			StudentID:   studentID,
			Status:      constants.StatusPresent,
			ArrivalTime: &now,
			Notes:       &note,
		})
		if err != nil {
			return err
		}
		resp = &dto.RedeemTokenResponse{
			RecordID:  rec.AttendanceRecordID,
			SessionID: sess.AttendanceSessionID,
			Status:    rec.AttendanceRecordStatus,
		}
		return nil
	})
	if err != nil {
		outcome = "failed"
		return nil, err
	}
	if resp.AlreadyMarked {
		outcome = "already_marked"
	}
	return resp, nil
}

func (s *QRService) logScan(ctx context.Context, tokenID uuid.UUID, studentID *uuid.UUID, outcome string, device datatypes.JSON) {
	scan := &model.QRCodeScanModel{
		QRCodeScanTokenID:    tokenID,
		QRCodeScanStudentID:  studentID,
		QRCodeScanOutcome:    outcome,
		QRCodeScanDeviceInfo: device,
	}
	// best effort: a failed audit insert never fails the scan
	_ = s.DB.WithContext(ctx).Create(scan).Error
}

/* ===================== INSPECT / REVOKE ===================== */

func (s *QRService) InspectToken(ctx context.Context, tokenID uuid.UUID) (*dto.InspectTokenResponse, error) {
	tok, err := s.loadToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	remaining := tok.QRTokenExpiresAt.Sub(now).Milliseconds()
	if remaining < 0 {
		remaining = 0
	}

	out := &dto.InspectTokenResponse{
		TokenID:         tok.QRTokenID,
		ClassID:         tok.QRTokenClassID,
		IssuerID:        tok.QRTokenTeacherID,
		PlannedDate:     tok.QRTokenPlannedDate.Format("2006-01-02"),
		PlannedTime:     tok.QRTokenPlannedTime.Format("15:04:05"),
		IsActive:        tok.QRTokenIsActive && now.Before(tok.QRTokenExpiresAt),
		ExpiresAt:       tok.QRTokenExpiresAt,
		TimeRemainingMS: remaining,
	}

	if err := s.DB.WithContext(ctx).Table("enrollments").
		Where("enrollments_class_id = ? AND enrollments_is_active = ?", tok.QRTokenClassID, true).
		Count(&out.EnrollmentSize).Error; err != nil {
		return nil, err
	}

	// counts of the backing session, if one exists already
	var sessID uuid.UUID
	err = s.DB.WithContext(ctx).Table("attendance_sessions").
		Select("attendance_sessions_id").
		Where("attendance_sessions_class_id = ? AND attendance_sessions_date = ? AND attendance_sessions_time = ?",
			tok.QRTokenClassID, tok.QRTokenPlannedDate, tok.QRTokenPlannedTime).
		Take(&sessID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	out.SessionID = &sessID

	type countRow struct {
		Status string `gorm:"column:attendance_records_status"`
		N      int64  `gorm:"column:n"`
	}
	var rows []countRow
	if err := s.DB.WithContext(ctx).Table("attendance_records").
		Select("attendance_records_status, COUNT(*) AS n").
		Where("attendance_records_session_id = ?", sessID).
		Group("attendance_records_status").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out.MarkedAttendance += r.N
		switch r.Status {
		case constants.StatusPresent:
			out.Present = r.N
		case constants.StatusAbsent:
			out.Absent = r.N
		case constants.StatusLate:
			out.Late = r.N
		case constants.StatusExcused:
			out.Excused = r.N
		}
	}
	out.Percentage = helper.Percentage(out.Present, out.EnrollmentSize)
	return out, nil
}

// RevokeToken flips the token inactive. Already-created records are untouched.
func (s *QRService) RevokeToken(ctx context.Context, principalID uuid.UUID, tokenID uuid.UUID) error {
	tok, err := s.loadToken(ctx, tokenID)
	if err != nil {
		return err
	}
	if !tok.QRTokenIsActive {
		return helper.NewApiError(helper.CodeConflict, "token is already inactive")
	}
	err = s.DB.WithContext(ctx).Model(&model.QRTokenModel{}).
		Where("qr_tokens_id = ?", tokenID).
		Update("qr_tokens_is_active", false).Error
	if err != nil {
		return err
	}
	s.Audit.Log(ctx, &principalID, "attendance.qr_revoke", tokenID.String(),
		auditService.OutcomeSuccess, nil)
	return nil
}

// TokenClassID exposes the owning class for gating at the controller.
func (s *QRService) TokenClassID(ctx context.Context, tokenID uuid.UUID) (uuid.UUID, error) {
	tok, err := s.loadToken(ctx, tokenID)
	if err != nil {
		return uuid.Nil, err
	}
	return tok.QRTokenClassID, nil
}

// SessionClassID resolves a session's owning class for gating at the controller.
func (s *QRService) SessionClassID(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	sess, err := s.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return uuid.Nil, err
	}
	return sess.AttendanceSessionClassID, nil
}

// InspectSessionToken reports on the newest token minted for the session's
// (class, date, time) slot, together with the live attendance summary.
func (s *QRService) InspectSessionToken(ctx context.Context, sessionID uuid.UUID) (*dto.InspectTokenResponse, error) {
	sess, err := s.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var tok model.QRTokenModel
	err = s.DB.WithContext(ctx).
		Where("qr_tokens_class_id = ? AND qr_tokens_planned_date = ? AND qr_tokens_planned_time = ?",
			sess.AttendanceSessionClassID, sess.AttendanceSessionDate, sess.AttendanceSessionTime).
		Order("qr_tokens_issued_at DESC").
		First(&tok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewApiError(helper.CodeNotFound, "no token issued for this session")
	}
	if err != nil {
		return nil, err
	}
	return s.InspectToken(ctx, tok.QRTokenID)
}
