package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sekolahku_backend/internals/configs"
	"sekolahku_backend/internals/constants"
	auditModel "sekolahku_backend/internals/features/attendance/audit/model"
	auditService "sekolahku_backend/internals/features/attendance/audit/service"
	"sekolahku_backend/internals/features/attendance/gate"
	recordDto "sekolahku_backend/internals/features/attendance/records/dto"
	recordModel "sekolahku_backend/internals/features/attendance/records/model"
	recordService "sekolahku_backend/internals/features/attendance/records/service"
	"sekolahku_backend/internals/features/attendance/sessions/model"
	"sekolahku_backend/internals/features/attendance/sessions/service"
	classModel "sekolahku_backend/internals/features/school/classes/model"
	enrollmentModel "sekolahku_backend/internals/features/school/enrollments/model"
	schoolModel "sekolahku_backend/internals/features/school/schools/model"
	userModel "sekolahku_backend/internals/features/users/user/model"
	helper "sekolahku_backend/internals/helpers"
	"sekolahku_backend/internals/helpers/dbtime"
	authmw "sekolahku_backend/internals/middlewares/auth"
)

type ctrlFixture struct {
	app       *fiber.App
	db        *gorm.DB
	tenantID  uuid.UUID
	teacherID uuid.UUID
	studentA  uuid.UUID
	studentB  uuid.UUID
	parentID  uuid.UUID
	sessionID uuid.UUID
}

func newCtrlFixture(t *testing.T) *ctrlFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&schoolModel.SchoolModel{},
		&classModel.ClassModel{},
		&enrollmentModel.EnrollmentModel{},
		&userModel.ParentLinkModel{},
		&model.AttendanceSessionModel{},
		&recordModel.AttendanceRecordModel{},
		&auditModel.AuditEventModel{},
	))

	clock := dbtime.FixedClock{T: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	audits := auditService.NewAuditService(db)
	sessions := service.NewSessionService(db, clock)
	records := recordService.NewRecordService(db, clock, audits)
	gateSvc := gate.NewService(db, configs.AttendanceConfig{}, clock)
	ctrl := NewSessionController(sessions, records, gateSvc)

	f := &ctrlFixture{
		db:        db,
		tenantID:  uuid.New(),
		teacherID: uuid.New(),
		studentA:  uuid.New(),
		studentB:  uuid.New(),
		parentID:  uuid.New(),
	}

	schoolID := uuid.New()
	classID := uuid.New()
	require.NoError(t, db.Create(&schoolModel.SchoolModel{
		SchoolID:       schoolID,
		SchoolTenantID: f.tenantID,
		SchoolName:     "Test School",
		SchoolIsActive: true,
	}).Error)
	tid := f.teacherID
	require.NoError(t, db.Create(&classModel.ClassModel{
		ClassID:        classID,
		ClassSchoolID:  schoolID,
		ClassTeacherID: &tid,
		ClassName:      "7B",
		ClassIsActive:  true,
	}).Error)
	for _, studentID := range []uuid.UUID{f.studentA, f.studentB} {
		require.NoError(t, db.Create(&enrollmentModel.EnrollmentModel{
			EnrollmentClassID:   classID,
			EnrollmentStudentID: studentID,
			EnrollmentIsActive:  true,
			EnrollmentSince:     clock.T,
		}).Error)
	}
	require.NoError(t, db.Create(&userModel.ParentLinkModel{
		ParentLinkParentID:  f.parentID,
		ParentLinkStudentID: f.studentA,
		ParentLinkIsPrimary: true,
	}).Error)

	tod, err := dbtime.Parse("08:00")
	require.NoError(t, err)
	sess, err := sessions.CreateSession(context.Background(), service.CreateSessionInput{
		ClassID:    classID,
		TeacherID:  &tid,
		Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Time:       tod,
		CallerRole: constants.RoleAdmin,
	})
	require.NoError(t, err)
	f.sessionID = sess.AttendanceSessionID

	_, err = records.MarkManual(context.Background(), f.teacherID, f.sessionID,
		recordDto.MarkEntry{StudentID: f.studentA, Status: constants.StatusPresent})
	require.NoError(t, err)
	_, err = records.MarkManual(context.Background(), f.teacherID, f.sessionID,
		recordDto.MarkEntry{StudentID: f.studentB, Status: constants.StatusAbsent})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(authmw.LocUserID, c.Get("X-Test-User"))
		c.Locals(authmw.LocRole, c.Get("X-Test-Role"))
		if tenant := c.Get("X-Test-Tenant"); tenant != "" {
			c.Locals(authmw.LocTenantID, tenant)
		}
		return c.Next()
	})
	app.Get("/attendance/sessions/:id", ctrl.GetSession)
	f.app = app
	return f
}

func (f *ctrlFixture) getAs(t *testing.T, userID uuid.UUID, role, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	req.Header.Set("X-Test-User", userID.String())
	req.Header.Set("X-Test-Role", role)
	if role != constants.RoleSuperadmin {
		req.Header.Set("X-Test-Tenant", f.tenantID.String())
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

type envelope struct {
	Success bool             `json:"success"`
	Error   *helper.ApiError `json:"error"`
	Data    struct {
		Records []recordDto.RecordResponse `json:"records"`
	} `json:"data"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestGetSessionExistenceIsOpaque(t *testing.T) {
	f := newCtrlFixture(t)

	// foreign teacher in the same tenant gets the same answer for a session
	// that exists and one that never did
	foreignTeacher := uuid.New()

	resp := f.getAs(t, foreignTeacher, constants.RoleTeacher, "/attendance/sessions/"+f.sessionID.String())
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, helper.CodePermissionDenied, decodeEnvelope(t, resp).Error.Code)

	resp = f.getAs(t, foreignTeacher, constants.RoleTeacher, "/attendance/sessions/"+uuid.NewString())
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, helper.CodePermissionDenied, decodeEnvelope(t, resp).Error.Code)

	// only superadmin is told a session is missing
	resp = f.getAs(t, uuid.New(), constants.RoleSuperadmin, "/attendance/sessions/"+uuid.NewString())
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, helper.CodeNotFound, decodeEnvelope(t, resp).Error.Code)
}

func TestGetSessionRecordsNarrowedByRole(t *testing.T) {
	f := newCtrlFixture(t)
	path := "/attendance/sessions/" + f.sessionID.String()

	t.Run("teacher sees every record", func(t *testing.T) {
		resp := f.getAs(t, f.teacherID, constants.RoleTeacher, path)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.Len(t, decodeEnvelope(t, resp).Data.Records, 2)
	})

	t.Run("student sees only their own record", func(t *testing.T) {
		resp := f.getAs(t, f.studentA, constants.RoleStudent, path)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		records := decodeEnvelope(t, resp).Data.Records
		require.Len(t, records, 1)
		require.Equal(t, f.studentA, records[0].StudentID)
	})

	t.Run("parent sees only linked students", func(t *testing.T) {
		resp := f.getAs(t, f.parentID, constants.RoleParent, path)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		records := decodeEnvelope(t, resp).Data.Records
		require.Len(t, records, 1)
		require.Equal(t, f.studentA, records[0].StudentID)
	})
}
