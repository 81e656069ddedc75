// file: internals/features/attendance/smart/controller/smart_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/gate"
	"sekolahku_backend/internals/features/attendance/smart/dto"
	"sekolahku_backend/internals/features/attendance/smart/service"
	helper "sekolahku_backend/internals/helpers"
)

type SmartController struct {
	Predictor service.PredictionPort
	Gate      *gate.Service
	Validate  *validator.Validate
}

func NewSmartController(predictor service.PredictionPort, g *gate.Service) *SmartController {
	return &SmartController{
		Predictor: predictor,
		Gate:      g,
		Validate:  validator.New(),
	}
}

/* ===================== STUDENT RISK ===================== */
// GET /attendance/smart/predictions/:id?horizon=14
func (ctrl *SmartController) StudentRisk(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid student id", nil)
	}
	if err := ctrl.Gate.AuthorizeStudentRead(c, p, studentID); err != nil {
		return helper.JsonFromError(c, err)
	}

	horizon := c.QueryInt("horizon", 14)
	if horizon < 1 || horizon > 90 {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid horizon", fiber.Map{"fields": []string{"horizon"}})
	}

	insight := ctrl.Predictor.Predict(c.UserContext(), studentID, horizon)
	return helper.JsonOK(c, "", insight)
}

/* ===================== CLASS ANALYSIS ===================== */
// POST /attendance/smart/analyze
func (ctrl *SmartController) AnalyzeClass(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var req dto.AnalyzeClassRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid payload", nil)
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := ctrl.Gate.AuthorizeClassOp(c, p, gate.OpPredict, req.ClassID); err != nil {
		return helper.JsonFromError(c, err)
	}

	insight := ctrl.Predictor.AnalyzeClass(c.UserContext(), req.ClassID)
	return helper.JsonOK(c, "", insight)
}
