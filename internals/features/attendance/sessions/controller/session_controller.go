// file: internals/features/attendance/sessions/controller/session_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sekolahku_backend/internals/constants"
	"sekolahku_backend/internals/features/attendance/gate"
	recordDto "sekolahku_backend/internals/features/attendance/records/dto"
	recordService "sekolahku_backend/internals/features/attendance/records/service"
	"sekolahku_backend/internals/features/attendance/sessions/dto"
	"sekolahku_backend/internals/features/attendance/sessions/service"
	helper "sekolahku_backend/internals/helpers"
	"sekolahku_backend/internals/helpers/dbtime"
)

type SessionController struct {
	Sessions *service.SessionService
	Records  *recordService.RecordService
	Gate     *gate.Service
	Validate *validator.Validate
}

func NewSessionController(sessions *service.SessionService, records *recordService.RecordService, g *gate.Service) *SessionController {
	return &SessionController{
		Sessions: sessions,
		Records:  records,
		Gate:     g,
		Validate: validator.New(),
	}
}

/* ===================== CREATE ===================== */
// POST /attendance/sessions
func (ctrl *SessionController) CreateSession(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid payload", nil)
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonFromError(c, err)
	}

	if err := ctrl.Gate.AuthorizeClassOp(c, p, gate.OpCreateSession, req.ClassID); err != nil {
		return helper.JsonFromError(c, err)
	}

	date, err := helper.ParseDate(req.Date)
	if err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid date", fiber.Map{"fields": []string{"date"}})
	}
	tod, err := dbtime.Parse(req.Time)
	if err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid time", fiber.Map{"fields": []string{"time"}})
	}

	var teacherID *uuid.UUID
	if p.Role == constants.RoleTeacher {
		id := p.UserID
		teacherID = &id
	}

	m, err := ctrl.Sessions.CreateSession(c.UserContext(), service.CreateSessionInput{
		ClassID:    req.ClassID,
		TeacherID:  teacherID,
		Date:       date,
		Time:       tod,
		Type:       req.Type,
		CallerRole: p.Role,
		TenantLoc:  dbtime.GetTenantLocation(c),
	})
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "session created", fiber.Map{
		"session_id": m.AttendanceSessionID,
		"session":    dto.FromSessionModel(*m),
	})
}

/* ===================== DETAIL (session + records) ===================== */
// GET /attendance/sessions/:id
func (ctrl *SessionController) GetSession(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid session id", nil)
	}

	m, err := ctrl.Sessions.GetSession(c.UserContext(), sessionID)
	if err != nil {
		// the gate has not run yet, so a miss must not reveal existence
		return helper.JsonFromError(c, gate.Opaque(p, err))
	}
	if err := ctrl.Gate.AuthorizeClassOp(c, p, gate.OpReadClass, m.AttendanceSessionClassID); err != nil {
		return helper.JsonFromError(c, err)
	}

	records, err := ctrl.Records.ListRecordsForSession(c.UserContext(), sessionID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	visible, err := ctrl.Gate.VisibleStudentFilter(c, p)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	kept := records[:0:0]
	for _, r := range records {
		if visible(r.AttendanceRecordStudentID) {
			kept = append(kept, r)
		}
	}
	return helper.JsonOK(c, "", fiber.Map{
		"session": dto.FromSessionModel(*m),
		"records": recordDto.FromRecordModels(kept),
	})
}

/* ===================== LIST PER CLASS ===================== */
// GET /attendance/sessions/class/:id?start&end
func (ctrl *SessionController) ListSessionsForClass(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	classID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid class id", nil)
	}
	if err := ctrl.Gate.AuthorizeClassOp(c, p, gate.OpReadClass, classID); err != nil {
		return helper.JsonFromError(c, err)
	}

	now := ctrl.Sessions.Clock.Now().In(dbtime.GetTenantLocation(c))
	start, end, err := helper.ParseWindow(c.Query("start"), c.Query("end"), now, 30)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	paging := helper.ResolvePaging(c, 20, 100)
	list, total, err := ctrl.Sessions.ListSessionsForClass(c.UserContext(), classID, &start, &end, paging)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "", dto.FromSessionModels(list),
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

/* ===================== CLOSE ===================== */
// POST /attendance/sessions/:id/close
func (ctrl *SessionController) CloseSession(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid session id", nil)
	}

	m, err := ctrl.Sessions.GetSession(c.UserContext(), sessionID)
	if err != nil {
		return helper.JsonFromError(c, gate.Opaque(p, err))
	}
	if err := ctrl.Gate.AuthorizeClassOp(c, p, gate.OpCreateSession, m.AttendanceSessionClassID); err != nil {
		return helper.JsonFromError(c, err)
	}

	closed, err := ctrl.Sessions.CloseSession(c.UserContext(), sessionID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "session closed", dto.FromSessionModel(*closed))
}
