package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sekolahku_backend/internals/constants"
	auditModel "sekolahku_backend/internals/features/attendance/audit/model"
	auditService "sekolahku_backend/internals/features/attendance/audit/service"
	"sekolahku_backend/internals/features/attendance/records/dto"
	"sekolahku_backend/internals/features/attendance/records/model"
	sessionModel "sekolahku_backend/internals/features/attendance/sessions/model"
	enrollmentModel "sekolahku_backend/internals/features/school/enrollments/model"
	helper "sekolahku_backend/internals/helpers"
	"sekolahku_backend/internals/helpers/dbtime"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&sessionModel.AttendanceSessionModel{},
		&model.AttendanceRecordModel{},
		&enrollmentModel.EnrollmentModel{},
		&auditModel.AuditEventModel{},
	))
	return db
}

func apiCode(t *testing.T, err error) string {
	t.Helper()
	var ae *helper.ApiError
	require.ErrorAs(t, err, &ae)
	return ae.Code
}

type fixture struct {
	svc       *RecordService
	clock     *dbtime.FixedClock
	classID   uuid.UUID
	sessionID uuid.UUID
	teacherID uuid.UUID
	students  []uuid.UUID
}

func newFixture(t *testing.T, db *gorm.DB, enrolled int) *fixture {
	t.Helper()
	clock := &dbtime.FixedClock{T: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
	f := &fixture{
		svc:       NewRecordService(db, *clock, auditService.NewAuditService(db)),
		clock:     clock,
		classID:   uuid.New(),
		teacherID: uuid.New(),
	}

	sess := &sessionModel.AttendanceSessionModel{
		AttendanceSessionClassID: f.classID,
		AttendanceSessionDate:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		AttendanceSessionTime:    dbtime.From(clock.T),
		AttendanceSessionType:    constants.SessionTypeRegular,
		AttendanceSessionStatus:  constants.SessionStatusOpen,
	}
	require.NoError(t, db.Create(sess).Error)
	f.sessionID = sess.AttendanceSessionID

	for i := 0; i < enrolled; i++ {
		id := uuid.New()
		f.students = append(f.students, id)
		require.NoError(t, db.Create(&enrollmentModel.EnrollmentModel{
			EnrollmentClassID:   f.classID,
			EnrollmentStudentID: id,
			EnrollmentIsActive:  true,
			EnrollmentSince:     clock.T,
		}).Error)
	}
	return f
}

func (f *fixture) closeSession(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Model(&sessionModel.AttendanceSessionModel{}).
		Where("attendance_sessions_id = ?", f.sessionID).
		Update("attendance_sessions_status", constants.SessionStatusClosed).Error)
}

func TestMarkBulkCreatesAndCounts(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, 3)

	req := dto.MarkBulkRequest{SessionID: f.sessionID}
	for _, st := range f.students {
		req.Entries = append(req.Entries, dto.MarkEntry{StudentID: st, Status: constants.StatusPresent})
	}

	resp, err := f.svc.MarkBulk(context.Background(), f.teacherID, req)
	require.NoError(t, err)
	require.Equal(t, 3, resp.Created)
	require.Equal(t, 0, resp.Updated)
	require.Equal(t, 3, resp.Total)

	// an audit row was written
	var audits int64
	require.NoError(t, db.Table("attendance_audit_events").Count(&audits).Error)
	require.EqualValues(t, 1, audits)
}

func TestMarkBulkAbortsOnUnenrolledStudent(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, 2)
	outsider := uuid.New()

	resp, err := f.svc.MarkBulk(context.Background(), f.teacherID, dto.MarkBulkRequest{
		SessionID: f.sessionID,
		Entries: []dto.MarkEntry{
			{StudentID: f.students[0], Status: constants.StatusPresent},
			{StudentID: outsider, Status: constants.StatusPresent},
		},
	})
	require.Nil(t, resp)
	require.Equal(t, helper.CodeInvalidInput, apiCode(t, err))

	var ae *helper.ApiError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, map[string]any{"offending": []uuid.UUID{outsider}}, ae.Detail)

	// atomic: the valid entry was rolled back too
	var n int64
	require.NoError(t, db.Model(&model.AttendanceRecordModel{}).Count(&n).Error)
	require.EqualValues(t, 0, n)
}

func TestMarkBulkRejectsInvalidStatus(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, 1)

	_, err := f.svc.MarkBulk(context.Background(), f.teacherID, dto.MarkBulkRequest{
		SessionID: f.sessionID,
		Entries:   []dto.MarkEntry{{StudentID: f.students[0], Status: "vacationing"}},
	})
	require.Equal(t, helper.CodeInvalidInput, apiCode(t, err))
}

func TestMarkBulkConflictOnClosedSession(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, 1)
	f.closeSession(t, db)

	_, err := f.svc.MarkBulk(context.Background(), f.teacherID, dto.MarkBulkRequest{
		SessionID: f.sessionID,
		Entries:   []dto.MarkEntry{{StudentID: f.students[0], Status: constants.StatusPresent}},
	})
	require.Equal(t, helper.CodeConflict, apiCode(t, err))
}

func TestRemarkIsLastWriterWins(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, 1)
	student := f.students[0]

	first, err := f.svc.MarkManual(context.Background(), f.teacherID, f.sessionID,
		dto.MarkEntry{StudentID: student, Status: constants.StatusAbsent})
	require.NoError(t, err)

	f.clock.T = f.clock.T.Add(10 * time.Minute)
	f.svc.Clock = *f.clock
	otherMarker := uuid.New()

	second, err := f.svc.MarkManual(context.Background(), otherMarker, f.sessionID,
		dto.MarkEntry{StudentID: student, Status: constants.StatusLate})
	require.NoError(t, err)

	require.Equal(t, first.AttendanceRecordID, second.AttendanceRecordID)
	require.Equal(t, constants.StatusLate, second.AttendanceRecordStatus)
	require.Equal(t, otherMarker, second.AttendanceRecordMarkedBy)
	// created_at survives the overwrite, updated_at moves
	require.Equal(t, first.AttendanceRecordCreatedAt.UTC(), second.AttendanceRecordCreatedAt.UTC())
	require.True(t, second.AttendanceRecordUpdatedAt.After(first.AttendanceRecordUpdatedAt))

	var n int64
	require.NoError(t, db.Model(&model.AttendanceRecordModel{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestUpdateRecordPatchAndClosedGuard(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, 1)
	student := f.students[0]

	rec, err := f.svc.MarkManual(context.Background(), f.teacherID, f.sessionID,
		dto.MarkEntry{StudentID: student, Status: constants.StatusPresent})
	require.NoError(t, err)

	f.closeSession(t, db)

	late := constants.StatusLate
	_, err = f.svc.UpdateRecord(context.Background(), f.teacherID, rec.AttendanceRecordID,
		dto.UpdateRecordRequest{Status: &late}, false)
	require.Equal(t, helper.CodeConflict, apiCode(t, err))

	adminID := uuid.New()
	updated, err := f.svc.UpdateRecord(context.Background(), adminID, rec.AttendanceRecordID,
		dto.UpdateRecordRequest{Status: &late}, true)
	require.NoError(t, err)
	require.Equal(t, constants.StatusLate, updated.AttendanceRecordStatus)
	require.Equal(t, adminID, updated.AttendanceRecordMarkedBy)
}

func TestUpdateRecordNotFound(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, 0)

	st := constants.StatusPresent
	_, err := f.svc.UpdateRecord(context.Background(), f.teacherID, uuid.New(),
		dto.UpdateRecordRequest{Status: &st}, true)
	require.Equal(t, helper.CodeNotFound, apiCode(t, err))
}

func TestListRecordsForSessionOrder(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db, 2)

	for _, st := range f.students {
		_, err := f.svc.MarkManual(context.Background(), f.teacherID, f.sessionID,
			dto.MarkEntry{StudentID: st, Status: constants.StatusPresent})
		require.NoError(t, err)
		f.clock.T = f.clock.T.Add(time.Minute)
		f.svc.Clock = *f.clock
	}

	list, err := f.svc.ListRecordsForSession(context.Background(), f.sessionID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, f.students[0], list[0].AttendanceRecordStudentID)
	require.Equal(t, f.students[1], list[1].AttendanceRecordStudentID)
}
