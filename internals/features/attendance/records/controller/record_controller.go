// file: internals/features/attendance/records/controller/record_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/gate"
	"sekolahku_backend/internals/features/attendance/records/dto"
	"sekolahku_backend/internals/features/attendance/records/service"
	helper "sekolahku_backend/internals/helpers"
)

type RecordController struct {
	Records  *service.RecordService
	Gate     *gate.Service
	Validate *validator.Validate
}

func NewRecordController(records *service.RecordService, g *gate.Service) *RecordController {
	return &RecordController{
		Records:  records,
		Gate:     g,
		Validate: validator.New(),
	}
}

/* ===================== MARK (bulk) ===================== */
// POST /attendance/mark
func (ctrl *RecordController) MarkBulk(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var req dto.MarkBulkRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid payload", nil)
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonFromError(c, err)
	}

	classID, err := ctrl.Records.SessionClassID(c.UserContext(), req.SessionID)
	if err != nil {
		// pre-gate lookup, a miss must not reveal existence
		return helper.JsonFromError(c, gate.Opaque(p, err))
	}
	if err := ctrl.Gate.AuthorizeClassOp(c, p, gate.OpMarkRecord, classID); err != nil {
		return helper.JsonFromError(c, err)
	}

	resp, err := ctrl.Records.MarkBulk(c.UserContext(), p.UserID, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "attendance marked", resp)
}

/* ===================== MARK (single) ===================== */
// POST /attendance/records/session/:id
func (ctrl *RecordController) MarkManual(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid session id", nil)
	}

	var entry dto.MarkEntry
	if err := c.BodyParser(&entry); err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid payload", nil)
	}
	if err := ctrl.Validate.Struct(entry); err != nil {
		return helper.JsonFromError(c, err)
	}

	classID, err := ctrl.Records.SessionClassID(c.UserContext(), sessionID)
	if err != nil {
		return helper.JsonFromError(c, gate.Opaque(p, err))
	}
	if err := ctrl.Gate.AuthorizeClassOp(c, p, gate.OpMarkRecord, classID); err != nil {
		return helper.JsonFromError(c, err)
	}

	rec, err := ctrl.Records.MarkManual(c.UserContext(), p.UserID, sessionID, entry)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "attendance marked", dto.FromRecordModel(*rec))
}

/* ===================== UPDATE ===================== */
// PUT /attendance/records/:id
func (ctrl *RecordController) UpdateRecord(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid record id", nil)
	}

	var patch dto.UpdateRecordRequest
	if err := c.BodyParser(&patch); err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid payload", nil)
	}
	if err := ctrl.Validate.Struct(patch); err != nil {
		return helper.JsonFromError(c, err)
	}

	existing, err := ctrl.Records.GetRecord(c.UserContext(), recordID)
	if err != nil {
		return helper.JsonFromError(c, gate.Opaque(p, err))
	}
	classID, err := ctrl.Records.SessionClassID(c.UserContext(), existing.AttendanceRecordSessionID)
	if err != nil {
		return helper.JsonFromError(c, gate.Opaque(p, err))
	}
	if err := ctrl.Gate.AuthorizeClassOp(c, p, gate.OpMarkRecord, classID); err != nil {
		return helper.JsonFromError(c, err)
	}

	// admin+ may amend records of an already closed session
	allowClosed := p.IsSuperadmin() || p.IsAdminScoped()
	rec, err := ctrl.Records.UpdateRecord(c.UserContext(), p.UserID, recordID, patch, allowClosed)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "record updated", dto.FromRecordModel(*rec))
}

/* ===================== LIST ===================== */
// GET /attendance/records/session/:id
func (ctrl *RecordController) ListRecordsForSession(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid session id", nil)
	}

	classID, err := ctrl.Records.SessionClassID(c.UserContext(), sessionID)
	if err != nil {
		return helper.JsonFromError(c, gate.Opaque(p, err))
	}
	if err := ctrl.Gate.AuthorizeClassOp(c, p, gate.OpReadClass, classID); err != nil {
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
	return helper.JsonOK(c, "", dto.FromRecordModels(kept))
}
