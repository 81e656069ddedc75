// file: internals/features/attendance/gate/service.go
package gate

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/configs"
	helper "sekolahku_backend/internals/helpers"
	"sekolahku_backend/internals/helpers/dbtime"
)

// Service resolves scopes against the directory tables. It owns no policy of
// its own: the matrix lives in PolicyFor, this only proves scopes.
type Service struct {
	DB    *gorm.DB
	Cfg   configs.AttendanceConfig
	Clock dbtime.Clock
}

func NewService(db *gorm.DB, cfg configs.AttendanceConfig, clock dbtime.Clock) *Service {
	return &Service{DB: db, Cfg: cfg, Clock: clock}
}

// classScope is what a class resolves to for authorization purposes.
type classScope struct {
	TenantID  uuid.UUID
	SchoolID  uuid.UUID
	TeacherID *uuid.UUID
}

func (s *Service) resolveClass(ctx context.Context, classID uuid.UUID) (classScope, error) {
	var row struct {
		TenantID  uuid.UUID  `gorm:"column:schools_tenant_id"`
		SchoolID  uuid.UUID  `gorm:"column:classes_school_id"`
		TeacherID *uuid.UUID `gorm:"column:classes_teacher_id"`
	}
	err := s.DB.WithContext(ctx).Table("classes").
		Select("schools_tenant_id, classes_school_id, classes_teacher_id").
		Joins("JOIN schools ON schools_id = classes_school_id").
		Where("classes_id = ? AND classes_is_active = ?", classID, true).
		Take(&row).Error
	if err != nil {
		return classScope{}, err
	}
	return classScope{TenantID: row.TenantID, SchoolID: row.SchoolID, TeacherID: row.TeacherID}, nil
}

// deniedOrNotFound hides resource existence from everyone except superadmin.
func deniedOrNotFound(p Principal, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if p.IsSuperadmin() {
			return helper.NewApiError(helper.CodeNotFound, "resource not found")
		}
		return helper.ErrPermissionDenied()
	}
	return err
}

// Opaque applies the same existence collapse to lookups a controller must run
// before it can name the scope to authorize (record → session → class). A
// NOT_FOUND from such a lookup turns into the uniform denial for everyone but
// superadmin; every other error passes through untouched.
func Opaque(p Principal, err error) error {
	if err == nil || p.IsSuperadmin() {
		return err
	}
	var ae *helper.ApiError
	if errors.As(err, &ae) && ae.Code == helper.CodeNotFound {
		return helper.ErrPermissionDenied()
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.ErrPermissionDenied()
	}
	return err
}

/* ===================== CLASS-SCOPED OPERATIONS ===================== */

// AuthorizeClassOp gates every operation addressed at a class (session
// create/close, marks, QR issue, class reads, class analytics).
func (s *Service) AuthorizeClassOp(c *fiber.Ctx, p Principal, op Operation, classID uuid.UUID) error {
	if err := s.adminEnvelope(c, p); err != nil {
		return err
	}

	switch PolicyFor(p.Role, op) {
	case ScopeAny:
		if _, err := s.resolveClass(c.UserContext(), classID); err != nil {
			return deniedOrNotFound(p, err)
		}
		return nil

	case ScopeTenant:
		cs, err := s.resolveClass(c.UserContext(), classID)
		if err != nil {
			return deniedOrNotFound(p, err)
		}
		if !p.SameTenant(cs.TenantID) {
			return helper.ErrPermissionDenied()
		}
		return nil

	case ScopeOwnClasses:
		cs, err := s.resolveClass(c.UserContext(), classID)
		if err != nil {
			return deniedOrNotFound(p, err)
		}
		if cs.TeacherID == nil || *cs.TeacherID != p.UserID {
			return helper.ErrPermissionDenied()
		}
		return nil

	case ScopeLinkedStudents:
		// parent may read a class only through a linked, enrolled student
		ok, err := s.parentHasStudentInClass(c.UserContext(), p.UserID, classID)
		if err != nil {
			return deniedOrNotFound(p, err)
		}
		if !ok {
			return helper.ErrPermissionDenied()
		}
		return nil

	case ScopeSelf:
		// student may read a class only when actively enrolled
		ok, err := s.studentEnrolled(c.UserContext(), classID, p.UserID)
		if err != nil {
			return deniedOrNotFound(p, err)
		}
		if !ok {
			return helper.ErrPermissionDenied()
		}
		return nil
	}
	return helper.ErrPermissionDenied()
}

/* ===================== STUDENT-SCOPED READS ===================== */

// AuthorizeStudentRead gates student history / month / prediction reads.
func (s *Service) AuthorizeStudentRead(c *fiber.Ctx, p Principal, studentID uuid.UUID) error {
	if err := s.adminEnvelope(c, p); err != nil {
		return err
	}

	switch PolicyFor(p.Role, OpReadStudent) {
	case ScopeAny:
		if err := s.studentExists(c.UserContext(), studentID); err != nil {
			return deniedOrNotFound(p, err)
		}
		return nil

	case ScopeTenant:
		tenantID, err := s.studentTenant(c.UserContext(), studentID)
		if err != nil {
			return deniedOrNotFound(p, err)
		}
		if !p.SameTenant(tenantID) {
			return helper.ErrPermissionDenied()
		}
		return nil

	case ScopeOwnClasses:
		ok, err := s.teacherHasStudent(c.UserContext(), p.UserID, studentID)
		if err != nil {
			return deniedOrNotFound(p, err)
		}
		if !ok {
			return helper.ErrPermissionDenied()
		}
		return nil

	case ScopeLinkedStudents:
		ok, err := s.parentLinked(c.UserContext(), p.UserID, studentID)
		if err != nil {
			return deniedOrNotFound(p, err)
		}
		if !ok {
			return helper.ErrPermissionDenied()
		}
		return nil

	case ScopeSelf:
		if p.UserID != studentID {
			return helper.ErrPermissionDenied()
		}
		return nil
	}
	return helper.ErrPermissionDenied()
}

/* ===================== SCHOOL-SCOPED READS ===================== */

// AuthorizeSchoolRead gates school overview/analytics: admin and above only.
func (s *Service) AuthorizeSchoolRead(c *fiber.Ctx, p Principal, schoolID uuid.UUID) error {
	if err := s.adminEnvelope(c, p); err != nil {
		return err
	}

	switch PolicyFor(p.Role, OpReadSchool) {
	case ScopeAny:
		var n int64
		if err := s.DB.WithContext(c.UserContext()).Table("schools").
			Where("schools_id = ?", schoolID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return helper.NewApiError(helper.CodeNotFound, "resource not found")
		}
		return nil

	case ScopeTenant:
		var row struct {
			TenantID uuid.UUID `gorm:"column:schools_tenant_id"`
		}
		err := s.DB.WithContext(c.UserContext()).Table("schools").
			Select("schools_tenant_id").
			Where("schools_id = ?", schoolID).
			Take(&row).Error
		if err != nil {
			return deniedOrNotFound(p, err)
		}
		if !p.SameTenant(row.TenantID) {
			return helper.ErrPermissionDenied()
		}
		return nil
	}
	return helper.ErrPermissionDenied()
}

/* ===================== QR REDEEM ===================== */

// AuthorizeRedeem gates token redemption: a student may only redeem for
// themselves; a teacher may self-scan for their own class. Admin roles are
// deliberately outside this path.
func (s *Service) AuthorizeRedeem(c *fiber.Ctx, p Principal, classID, studentID uuid.UUID) error {
	switch PolicyFor(p.Role, OpRedeemToken) {
	case ScopeSelf:
		if p.UserID != studentID {
			return helper.ErrPermissionDenied()
		}
		return nil
	case ScopeOwnClasses:
		cs, err := s.resolveClass(c.UserContext(), classID)
		if err != nil {
			return deniedOrNotFound(p, err)
		}
		if cs.TeacherID == nil || *cs.TeacherID != p.UserID {
			return helper.ErrPermissionDenied()
		}
		return nil
	}
	return helper.ErrPermissionDenied()
}

/* ===================== PAYLOAD NARROWING ===================== */

// VisibleStudentFilter narrows a class-read payload to the students the
// principal may actually see: a student sees only their own rows, a parent
// only rows of linked students. Staff scopes see the whole class.
func (s *Service) VisibleStudentFilter(c *fiber.Ctx, p Principal) (func(uuid.UUID) bool, error) {
	switch PolicyFor(p.Role, OpReadClass) {
	case ScopeSelf:
		return func(id uuid.UUID) bool { return id == p.UserID }, nil
	case ScopeLinkedStudents:
		var ids []uuid.UUID
		err := s.DB.WithContext(c.UserContext()).Table("parent_links").
			Where("parent_links_parent_id = ?", p.UserID).
			Pluck("parent_links_student_id", &ids).Error
		if err != nil {
			return nil, err
		}
		linked := make(map[uuid.UUID]struct{}, len(ids))
		for _, id := range ids {
			linked[id] = struct{}{}
		}
		return func(id uuid.UUID) bool { _, ok := linked[id]; return ok }, nil
	}
	return func(uuid.UUID) bool { return true }, nil
}

/* ===================== ADMIN ENVELOPE ===================== */

// adminEnvelope enforces source-network admissibility and the business-hours
// window for admin-scoped principals. Both fail as PERMISSION_DENIED with a
// distinct detail code, nothing else leaks.
func (s *Service) adminEnvelope(c *fiber.Ctx, p Principal) error {
	if !p.IsAdminScoped() {
		return nil
	}
	if !s.Cfg.SourceAllowed(c.IP()) {
		return helper.NewApiErrorWithDetail(
			helper.CodePermissionDenied, "permission denied",
			fiber.Map{"reason": "SOURCE_NOT_ALLOWED"},
		)
	}
	loc := dbtime.GetTenantLocation(c)
	if !s.Cfg.BusinessHours.Allows(s.Clock.Now().In(loc)) {
		return helper.NewApiErrorWithDetail(
			helper.CodePermissionDenied, "permission denied",
			fiber.Map{"reason": "OUTSIDE_BUSINESS_HOURS"},
		)
	}
	return nil
}

/* ===================== SCOPE LOOKUPS ===================== */

func (s *Service) studentExists(ctx context.Context, studentID uuid.UUID) error {
	var row struct {
		ID uuid.UUID `gorm:"column:users_id"`
	}
	return s.DB.WithContext(ctx).Table("users").
		Select("users_id").
		Where("users_id = ? AND users_role = ? AND users_is_active = ?", studentID, "student", true).
		Take(&row).Error
}

func (s *Service) studentTenant(ctx context.Context, studentID uuid.UUID) (uuid.UUID, error) {
	var row struct {
		TenantID *uuid.UUID `gorm:"column:users_tenant_id"`
	}
	err := s.DB.WithContext(ctx).Table("users").
		Select("users_tenant_id").
		Where("users_id = ? AND users_role = ? AND users_is_active = ?", studentID, "student", true).
		Take(&row).Error
	if err != nil {
		return uuid.Nil, err
	}
	if row.TenantID == nil {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return *row.TenantID, nil
}

func (s *Service) studentEnrolled(ctx context.Context, classID, studentID uuid.UUID) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Table("enrollments").
		Where("enrollments_class_id = ? AND enrollments_student_id = ? AND enrollments_is_active = ?",
			classID, studentID, true).
		Count(&n).Error
	return n > 0, err
}

func (s *Service) parentLinked(ctx context.Context, parentID, studentID uuid.UUID) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Table("parent_links").
		Where("parent_links_parent_id = ? AND parent_links_student_id = ?", parentID, studentID).
		Count(&n).Error
	return n > 0, err
}

func (s *Service) parentHasStudentInClass(ctx context.Context, parentID, classID uuid.UUID) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Table("parent_links").
		Joins("JOIN enrollments ON enrollments_student_id = parent_links_student_id").
		Where("parent_links_parent_id = ? AND enrollments_class_id = ? AND enrollments_is_active = ?",
			parentID, classID, true).
		Count(&n).Error
	return n > 0, err
}

func (s *Service) teacherHasStudent(ctx context.Context, teacherID, studentID uuid.UUID) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Table("enrollments").
		Joins("JOIN classes ON classes_id = enrollments_class_id").
		Where("classes_teacher_id = ? AND enrollments_student_id = ? AND enrollments_is_active = ?",
			teacherID, studentID, true).
		Count(&n).Error
	return n > 0, err
}
