package gate

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sekolahku_backend/internals/configs"
	"sekolahku_backend/internals/constants"
	classModel "sekolahku_backend/internals/features/school/classes/model"
	enrollmentModel "sekolahku_backend/internals/features/school/enrollments/model"
	schoolModel "sekolahku_backend/internals/features/school/schools/model"
	userModel "sekolahku_backend/internals/features/users/user/model"
	helper "sekolahku_backend/internals/helpers"
	"sekolahku_backend/internals/helpers/dbtime"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&schoolModel.SchoolModel{},
		&classModel.ClassModel{},
		&enrollmentModel.EnrollmentModel{},
		&userModel.UserModel{},
		&userModel.ParentLinkModel{},
	))
	return db
}

func newCtx(t *testing.T) *fiber.Ctx {
	t.Helper()
	app := fiber.New()
	c := app.AcquireCtx(&fasthttp.RequestCtx{})
	t.Cleanup(func() { app.ReleaseCtx(c) })
	return c
}

type gateFixture struct {
	db        *gorm.DB
	svc       *Service
	tenantID  uuid.UUID
	schoolID  uuid.UUID
	classID   uuid.UUID
	teacherID uuid.UUID
	studentID uuid.UUID
	parentID  uuid.UUID
}

func newGateFixture(t *testing.T, cfg configs.AttendanceConfig) *gateFixture {
	t.Helper()
	db := newTestDB(t)
	clock := dbtime.FixedClock{T: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)} // Tuesday
	f := &gateFixture{
		db:        db,
		svc:       NewService(db, cfg, clock),
		tenantID:  uuid.New(),
		schoolID:  uuid.New(),
		classID:   uuid.New(),
		teacherID: uuid.New(),
		studentID: uuid.New(),
		parentID:  uuid.New(),
	}

	require.NoError(t, db.Create(&schoolModel.SchoolModel{
		SchoolID:       f.schoolID,
		SchoolTenantID: f.tenantID,
		SchoolName:     "Test School",
		SchoolIsActive: true,
	}).Error)
	tid := f.teacherID
	require.NoError(t, db.Create(&classModel.ClassModel{
		ClassID:        f.classID,
		ClassSchoolID:  f.schoolID,
		ClassTeacherID: &tid,
		ClassName:      "5A",
		ClassIsActive:  true,
	}).Error)
	tenantID := f.tenantID
	require.NoError(t, db.Create(&userModel.UserModel{
		UserID:       f.studentID,
		UserTenantID: &tenantID,
		UserName:     "Student",
		UserEmail:    "student@test",
		UserPassword: "x",
		UserRole:     constants.RoleStudent,
		UserIsActive: true,
	}).Error)
	require.NoError(t, db.Create(&enrollmentModel.EnrollmentModel{
		EnrollmentClassID:   f.classID,
		EnrollmentStudentID: f.studentID,
		EnrollmentIsActive:  true,
		EnrollmentSince:     time.Now(),
	}).Error)
	require.NoError(t, db.Create(&userModel.ParentLinkModel{
		ParentLinkParentID:  f.parentID,
		ParentLinkStudentID: f.studentID,
		ParentLinkIsPrimary: true,
	}).Error)
	return f
}

func (f *gateFixture) principal(role string) Principal {
	tid := f.tenantID
	p := Principal{UserID: uuid.New(), Role: role, TenantID: &tid}
	switch role {
	case constants.RoleSuperadmin:
		p.TenantID = nil
	case constants.RoleTeacher:
		p.UserID = f.teacherID
	case constants.RoleStudent:
		p.UserID = f.studentID
	case constants.RoleParent:
		p.UserID = f.parentID
	}
	return p
}

func requireDenied(t *testing.T, err error) {
	t.Helper()
	var ae *helper.ApiError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, helper.CodePermissionDenied, ae.Code)
}

func TestAuthorizeClassOpScopes(t *testing.T) {
	f := newGateFixture(t, configs.AttendanceConfig{})
	c := newCtx(t)

	t.Run("teacher on own class", func(t *testing.T) {
		require.NoError(t, f.svc.AuthorizeClassOp(c, f.principal(constants.RoleTeacher), OpCreateSession, f.classID))
	})

	t.Run("foreign teacher denied", func(t *testing.T) {
		p := Principal{UserID: uuid.New(), Role: constants.RoleTeacher, TenantID: &f.tenantID}
		requireDenied(t, f.svc.AuthorizeClassOp(c, p, OpCreateSession, f.classID))
	})

	t.Run("admin same tenant", func(t *testing.T) {
		require.NoError(t, f.svc.AuthorizeClassOp(c, f.principal(constants.RoleAdmin), OpCreateSession, f.classID))
	})

	t.Run("admin foreign tenant denied", func(t *testing.T) {
		other := uuid.New()
		p := Principal{UserID: uuid.New(), Role: constants.RoleAdmin, TenantID: &other}
		requireDenied(t, f.svc.AuthorizeClassOp(c, p, OpCreateSession, f.classID))
	})

	t.Run("student reads enrolled class", func(t *testing.T) {
		require.NoError(t, f.svc.AuthorizeClassOp(c, f.principal(constants.RoleStudent), OpReadClass, f.classID))
	})

	t.Run("student cannot mark", func(t *testing.T) {
		requireDenied(t, f.svc.AuthorizeClassOp(c, f.principal(constants.RoleStudent), OpMarkRecord, f.classID))
	})

	t.Run("parent reads class through linked student", func(t *testing.T) {
		require.NoError(t, f.svc.AuthorizeClassOp(c, f.principal(constants.RoleParent), OpReadClass, f.classID))
	})
}

func TestMissingResourceLeaksOnlyToSuperadmin(t *testing.T) {
	f := newGateFixture(t, configs.AttendanceConfig{})
	c := newCtx(t)
	ghost := uuid.New()

	// superadmin is told the class does not exist
	err := f.svc.AuthorizeClassOp(c, f.principal(constants.RoleSuperadmin), OpReadClass, ghost)
	var ae *helper.ApiError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, helper.CodeNotFound, ae.Code)

	// everyone else gets the opaque denial
	requireDenied(t, f.svc.AuthorizeClassOp(c, f.principal(constants.RoleAdmin), OpReadClass, ghost))
	requireDenied(t, f.svc.AuthorizeClassOp(c, f.principal(constants.RoleTeacher), OpReadClass, ghost))
}

func TestAuthorizeStudentReadScopes(t *testing.T) {
	f := newGateFixture(t, configs.AttendanceConfig{})
	c := newCtx(t)

	require.NoError(t, f.svc.AuthorizeStudentRead(c, f.principal(constants.RoleTeacher), f.studentID))
	require.NoError(t, f.svc.AuthorizeStudentRead(c, f.principal(constants.RoleParent), f.studentID))
	require.NoError(t, f.svc.AuthorizeStudentRead(c, f.principal(constants.RoleStudent), f.studentID))
	require.NoError(t, f.svc.AuthorizeStudentRead(c, f.principal(constants.RoleAdmin), f.studentID))

	t.Run("student cannot read a peer", func(t *testing.T) {
		peer := uuid.New()
		requireDenied(t, f.svc.AuthorizeStudentRead(c, f.principal(constants.RoleStudent), peer))
	})

	t.Run("parent cannot read an unlinked student", func(t *testing.T) {
		tenantID := f.tenantID
		stranger := uuid.New()
		require.NoError(t, f.db.Create(&userModel.UserModel{
			UserID:       stranger,
			UserTenantID: &tenantID,
			UserName:     "Stranger",
			UserEmail:    "stranger@test",
			UserPassword: "x",
			UserRole:     constants.RoleStudent,
			UserIsActive: true,
		}).Error)
		requireDenied(t, f.svc.AuthorizeStudentRead(c, f.principal(constants.RoleParent), stranger))
	})
}

func TestAuthorizeSchoolRead(t *testing.T) {
	f := newGateFixture(t, configs.AttendanceConfig{})
	c := newCtx(t)

	require.NoError(t, f.svc.AuthorizeSchoolRead(c, f.principal(constants.RoleAdmin), f.schoolID))
	require.NoError(t, f.svc.AuthorizeSchoolRead(c, f.principal(constants.RoleSuperadmin), f.schoolID))
	requireDenied(t, f.svc.AuthorizeSchoolRead(c, f.principal(constants.RoleTeacher), f.schoolID))
	requireDenied(t, f.svc.AuthorizeSchoolRead(c, f.principal(constants.RoleParent), f.schoolID))
}

func TestAuthorizeRedeem(t *testing.T) {
	f := newGateFixture(t, configs.AttendanceConfig{})
	c := newCtx(t)

	t.Run("student for themselves", func(t *testing.T) {
		require.NoError(t, f.svc.AuthorizeRedeem(c, f.principal(constants.RoleStudent), f.classID, f.studentID))
	})
	t.Run("student for someone else denied", func(t *testing.T) {
		requireDenied(t, f.svc.AuthorizeRedeem(c, f.principal(constants.RoleStudent), f.classID, uuid.New()))
	})
	t.Run("teacher self-scan for own class", func(t *testing.T) {
		require.NoError(t, f.svc.AuthorizeRedeem(c, f.principal(constants.RoleTeacher), f.classID, f.studentID))
	})
	t.Run("admin never redeems", func(t *testing.T) {
		requireDenied(t, f.svc.AuthorizeRedeem(c, f.principal(constants.RoleAdmin), f.classID, f.studentID))
	})
}

func TestAdminEnvelopeSourceAllowlist(t *testing.T) {
	_, allowed, err := net.ParseCIDR("10.0.0.0/8")
	require.NoError(t, err)

	f := newGateFixture(t, configs.AttendanceConfig{
		AdminAllowedSources: []*net.IPNet{allowed},
	})
	c := newCtx(t)

	// fasthttp test ctx reports 0.0.0.0, outside the allow-list
	err = f.svc.AuthorizeClassOp(c, f.principal(constants.RoleAdmin), OpCreateSession, f.classID)
	var ae *helper.ApiError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, helper.CodePermissionDenied, ae.Code)
	require.Equal(t, fiber.Map{"reason": "SOURCE_NOT_ALLOWED"}, ae.Detail)

	// the envelope only binds admin-scoped roles
	require.NoError(t, f.svc.AuthorizeClassOp(c, f.principal(constants.RoleTeacher), OpCreateSession, f.classID))
	require.NoError(t, f.svc.AuthorizeClassOp(c, f.principal(constants.RoleSuperadmin), OpCreateSession, f.classID))
}

func TestAdminEnvelopeBusinessHours(t *testing.T) {
	f := newGateFixture(t, configs.AttendanceConfig{
		BusinessHours: configs.BusinessHours{
			Enabled:   true,
			Days:      []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
			StartHour: 7,
			EndHour:   17,
		},
	})
	c := newCtx(t)

	// fixture clock is Tuesday 09:00 UTC, inside the window
	require.NoError(t, f.svc.AuthorizeClassOp(c, f.principal(constants.RoleAdmin), OpCreateSession, f.classID))

	// move outside the window
	f.svc.Clock = dbtime.FixedClock{T: time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)}
	err := f.svc.AuthorizeClassOp(c, f.principal(constants.RoleAdmin), OpCreateSession, f.classID)
	var ae *helper.ApiError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, fiber.Map{"reason": "OUTSIDE_BUSINESS_HOURS"}, ae.Detail)

	// weekend is always outside
	f.svc.Clock = dbtime.FixedClock{T: time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)} // Sunday
	err = f.svc.AuthorizeClassOp(c, f.principal(constants.RoleAdmin), OpCreateSession, f.classID)
	require.ErrorAs(t, err, &ae)
	require.Equal(t, fiber.Map{"reason": "OUTSIDE_BUSINESS_HOURS"}, ae.Detail)
}

func TestOpaqueHidesLookupMisses(t *testing.T) {
	f := newGateFixture(t, configs.AttendanceConfig{})
	miss := helper.NewApiError(helper.CodeNotFound, "session not found")

	// a pre-authorization lookup miss is indistinguishable from a denial
	requireDenied(t, Opaque(f.principal(constants.RoleTeacher), miss))
	requireDenied(t, Opaque(f.principal(constants.RoleAdmin), miss))
	requireDenied(t, Opaque(f.principal(constants.RoleStudent), gorm.ErrRecordNotFound))

	// superadmin keeps the honest answer
	err := Opaque(f.principal(constants.RoleSuperadmin), miss)
	var ae *helper.ApiError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, helper.CodeNotFound, ae.Code)

	// everything else passes through untouched
	boom := fmt.Errorf("boom")
	require.Equal(t, boom, Opaque(f.principal(constants.RoleTeacher), boom))
	require.NoError(t, Opaque(f.principal(constants.RoleTeacher), nil))
}

func TestVisibleStudentFilterNarrowsClassReads(t *testing.T) {
	f := newGateFixture(t, configs.AttendanceConfig{})
	c := newCtx(t)
	classmate := uuid.New()

	t.Run("student sees only themselves", func(t *testing.T) {
		keep, err := f.svc.VisibleStudentFilter(c, f.principal(constants.RoleStudent))
		require.NoError(t, err)
		require.True(t, keep(f.studentID))
		require.False(t, keep(classmate))
	})

	t.Run("parent sees only linked students", func(t *testing.T) {
		keep, err := f.svc.VisibleStudentFilter(c, f.principal(constants.RoleParent))
		require.NoError(t, err)
		require.True(t, keep(f.studentID))
		require.False(t, keep(classmate))
	})

	t.Run("staff see the whole class", func(t *testing.T) {
		for _, role := range []string{constants.RoleTeacher, constants.RoleAdmin, constants.RoleSuperadmin} {
			keep, err := f.svc.VisibleStudentFilter(c, f.principal(role))
			require.NoError(t, err)
			require.True(t, keep(f.studentID))
			require.True(t, keep(classmate))
		}
	})
}
