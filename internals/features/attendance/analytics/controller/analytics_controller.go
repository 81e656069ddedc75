// file: internals/features/attendance/analytics/controller/analytics_controller.go
package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/analytics/service"
	"sekolahku_backend/internals/features/attendance/gate"
	helper "sekolahku_backend/internals/helpers"
	"sekolahku_backend/internals/helpers/dbtime"
)

type AnalyticsController struct {
	Aggregator *service.AggregatorService
	Gate       *gate.Service
	Clock      dbtime.Clock
}

func NewAnalyticsController(agg *service.AggregatorService, g *gate.Service, clock dbtime.Clock) *AnalyticsController {
	return &AnalyticsController{Aggregator: agg, Gate: g, Clock: clock}
}

/* ===================== STUDENT MONTH ===================== */
// GET /attendance/student/:id/month?year=2026&month=8
func (ctrl *AnalyticsController) StudentMonth(c *fiber.Ctx) error {
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

	now := ctrl.Clock.Now()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))

	resp, err := ctrl.Aggregator.StudentMonth(c.UserContext(), studentID, year, month)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", resp)
}

/* ===================== STUDENT HISTORY ===================== */
// GET /attendance/student/:id/history?start&end
func (ctrl *AnalyticsController) StudentHistory(c *fiber.Ctx) error {
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

	now := ctrl.Clock.Now().In(dbtime.GetTenantLocation(c))
	start, end, err := helper.ParseWindow(c.Query("start"), c.Query("end"), now, 30)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	paging := helper.ResolvePaging(c, 20, 100)
	items, total, err := ctrl.Aggregator.StudentHistory(c.UserContext(), studentID, start, end, paging)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "", items,
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

/* ===================== CLASS SUMMARY / ANALYTICS ===================== */
// GET /attendance/class/:id/summary?date=2026-08-28
func (ctrl *AnalyticsController) ClassSummary(c *fiber.Ctx) error {
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

	date := ctrl.today(c)
	if q := c.Query("date"); q != "" {
		d, err := helper.ParseDate(q)
		if err != nil {
			return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid date", fiber.Map{"fields": []string{"date"}})
		}
		date = d
	}

	resp, err := ctrl.Aggregator.ClassSummary(c.UserContext(), classID, date)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	// students and parents only see their own / linked rows
	visible, err := ctrl.Gate.VisibleStudentFilter(c, p)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	kept := resp.Students[:0:0]
	for _, row := range resp.Students {
		if visible(row.StudentID) {
			kept = append(kept, row)
		}
	}
	resp.Students = kept
	return helper.JsonOK(c, "", resp)
}

// GET /attendance/class/:id/analytics?start&end
func (ctrl *AnalyticsController) ClassAnalytics(c *fiber.Ctx) error {
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

	now := ctrl.Clock.Now().In(dbtime.GetTenantLocation(c))
	start, end, err := helper.ParseWindow(c.Query("start"), c.Query("end"), now, 30)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	resp, err := ctrl.Aggregator.ClassAnalytics(c.UserContext(), classID, start, end)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", resp)
}

/* ===================== SCHOOL OVERVIEW / ANALYTICS ===================== */
// GET /attendance/school/:id/overview?date=2026-08-28
func (ctrl *AnalyticsController) SchoolOverview(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	schoolID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid school id", nil)
	}
	if err := ctrl.Gate.AuthorizeSchoolRead(c, p, schoolID); err != nil {
		return helper.JsonFromError(c, err)
	}

	date := ctrl.today(c)
	if q := c.Query("date"); q != "" {
		d, err := helper.ParseDate(q)
		if err != nil {
			return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid date", fiber.Map{"fields": []string{"date"}})
		}
		date = d
	}

	resp, err := ctrl.Aggregator.SchoolOverview(c.UserContext(), schoolID, date)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", resp)
}

// GET /attendance/school/:id/analytics?start&end
func (ctrl *AnalyticsController) SchoolAnalytics(c *fiber.Ctx) error {
	p, err := gate.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	schoolID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonErrorCode(c, helper.CodeInvalidInput, "invalid school id", nil)
	}
	if err := ctrl.Gate.AuthorizeSchoolRead(c, p, schoolID); err != nil {
		return helper.JsonFromError(c, err)
	}

	now := ctrl.Clock.Now().In(dbtime.GetTenantLocation(c))
	start, end, err := helper.ParseWindow(c.Query("start"), c.Query("end"), now, 30)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	resp, err := ctrl.Aggregator.SchoolAnalytics(c.UserContext(), schoolID, start, end)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "", resp)
}

// today is the current calendar day in the tenant's timezone, carried as the
// UTC-midnight value the date columns store.
func (ctrl *AnalyticsController) today(c *fiber.Ctx) time.Time {
	now := ctrl.Clock.Now().In(dbtime.GetTenantLocation(c))
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
