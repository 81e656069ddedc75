// file: internals/features/attendance/qr/controller/qr_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/gate"
	"sekolahku_backend/internals/features/attendance/qr/dto"
	"sekolahku_backend/internals/features/attendance/qr/service"
	helper "sekolahku_backend/internals/helpers"
)

type QRController struct {
	QR       *service.QRService
	Gate     *gate.Service
	Validate *validator.Validate
}

func NewQRController(qr *service.QRService, g *gate.Service) *QRController {
	return &QRController{
		QR:       qr,
		Gate:     g,
		Validate: validator.New(),
	}
}

/* ===================== GENERATE ===================== */
// POST /attendance/qr/generate
func (ctrl *QRController) GenerateToken(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var req dto.IssueTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid payload", nil)
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonFromError(c, err)
	}

	if err := ctrl.Gate.AuthorizeClassOp(c, p, gate.OpIssueToken, req.ClassID); err != nil {
		return helper.JsonFromError(c, err)
	}

	resp, err := ctrl.QR.IssueToken(c.UserContext(), p.UserID, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "token issued", resp)
}

/* ===================== SCAN ===================== */
// POST /attendance/qr/scan
func (ctrl *QRController) ScanToken(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var req dto.RedeemTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid payload", nil)
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonFromError(c, err)
	}

	// a student scans for themselves; a teacher self-scan names the student
	studentID := p.UserID
	if req.StudentID != nil {
		studentID = *req.StudentID
	}

	classID, err := ctrl.QR.TokenClassID(c.UserContext(), req.TokenID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctrl.Gate.AuthorizeRedeem(c, p, classID, studentID); err != nil {
		return helper.JsonFromError(c, err)
	}

	resp, err := ctrl.QR.RedeemToken(c.UserContext(), p.UserID, studentID, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "token redeemed", resp)
}

/* ===================== STATUS ===================== */
// GET /attendance/qr/session/:id/status
func (ctrl *QRController) SessionTokenStatus(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid session id", nil)
	}

	classID, err := ctrl.QR.SessionClassID(c.UserContext(), sessionID)
	if err != nil {
		// pre-gate lookup, a miss must not reveal existence
		return helper.JsonFromError(c, gate.Opaque(p, err))
	}
	if err := ctrl.Gate.AuthorizeClassOp(c, p, gate.OpIssueToken, classID); err != nil {
		return helper.JsonFromError(c, err)
	}

	resp, err := ctrl.QR.InspectSessionToken(c.UserContext(), sessionID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", resp)
}

/* ===================== REVOKE ===================== */
// POST /attendance/qr/:id/revoke
func (ctrl *QRController) RevokeToken(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	tokenID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid token id", nil)
	}

	classID, err := ctrl.QR.TokenClassID(c.UserContext(), tokenID)
	if err != nil {
		return helper.JsonFromError(c, gate.Opaque(p, err))
	}
	if err := ctrl.Gate.AuthorizeClassOp(c, p, gate.OpIssueToken, classID); err != nil {
		return helper.JsonFromError(c, err)
	}

	if err := ctrl.QR.RevokeToken(c.UserContext(), p.UserID, tokenID); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "token revoked", fiber.Map{"token_id": tokenID})
}
