// file: internals/features/attendance/route/attendance_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sekolahku_backend/internals/configs"
	analyticsController "sekolahku_backend/internals/features/attendance/analytics/controller"
	analyticsService "sekolahku_backend/internals/features/attendance/analytics/service"
	auditService "sekolahku_backend/internals/features/attendance/audit/service"
	"sekolahku_backend/internals/features/attendance/gate"
	qrController "sekolahku_backend/internals/features/attendance/qr/controller"
	qrService "sekolahku_backend/internals/features/attendance/qr/service"
	recordController "sekolahku_backend/internals/features/attendance/records/controller"
	recordService "sekolahku_backend/internals/features/attendance/records/service"
	sessionController "sekolahku_backend/internals/features/attendance/sessions/controller"
	sessionService "sekolahku_backend/internals/features/attendance/sessions/service"
	smartController "sekolahku_backend/internals/features/attendance/smart/controller"
	smartService "sekolahku_backend/internals/features/attendance/smart/service"
	"sekolahku_backend/internals/helpers/dbtime"
	"sekolahku_backend/internals/middlewares"
)

// AttendanceRoutes wires the whole attendance surface under /attendance.
// Everything here sits behind the JWT middleware of the caller's group.
func AttendanceRoutes(api fiber.Router, db *gorm.DB, cfg configs.AttendanceConfig) {
	clock := dbtime.RealClock()

	audits := auditService.NewAuditService(db)
	gateSvc := gate.NewService(db, cfg, clock)
	sessions := sessionService.NewSessionService(db, clock)
	records := recordService.NewRecordService(db, clock, audits)
	qr := qrService.NewQRService(db, clock, cfg, sessions, records, audits)
	aggregator := analyticsService.NewAggregatorService(db)
	predictor := smartService.NewHTTPPredictionClient(cfg, clock)

	sessionCtrl := sessionController.NewSessionController(sessions, records, gateSvc)
	recordCtrl := recordController.NewRecordController(records, gateSvc)
	qrCtrl := qrController.NewQRController(qr, gateSvc)
	analyticsCtrl := analyticsController.NewAnalyticsController(aggregator, gateSvc, clock)
	smartCtrl := smartController.NewSmartController(predictor, gateSvc)

	attendance := api.Group("/attendance")

	/* ===================== SESSIONS ===================== */
	attendance.Post("/sessions", sessionCtrl.CreateSession)
	attendance.Get("/sessions/class/:id", sessionCtrl.ListSessionsForClass)
	attendance.Get("/sessions/:id", sessionCtrl.GetSession)
	attendance.Post("/sessions/:id/close", sessionCtrl.CloseSession)

	/* ===================== MARKS & RECORDS ===================== */
	attendance.Post("/mark", recordCtrl.MarkBulk)
	attendance.Post("/records/session/:id", recordCtrl.MarkManual)
	attendance.Get("/records/session/:id", recordCtrl.ListRecordsForSession)
	attendance.Put("/records/:id", recordCtrl.UpdateRecord)

	/* ===================== STUDENT / CLASS / SCHOOL READS ===================== */
	attendance.Get("/student/:id/history", analyticsCtrl.StudentHistory)
	attendance.Get("/student/:id/month", analyticsCtrl.StudentMonth)
	attendance.Get("/class/:id/summary", analyticsCtrl.ClassSummary)
	attendance.Get("/class/:id/analytics", analyticsCtrl.ClassAnalytics)
	attendance.Get("/school/:id/overview", analyticsCtrl.SchoolOverview)
	attendance.Get("/school/:id/analytics", analyticsCtrl.SchoolAnalytics)

	/* ===================== QR ===================== */
	attendance.Post("/qr/generate", qrCtrl.GenerateToken)
	attendance.Post("/qr/scan", middlewares.ScanRateLimiter(), qrCtrl.ScanToken)
	attendance.Get("/qr/session/:id/status", qrCtrl.SessionTokenStatus)
	attendance.Post("/qr/:id/revoke", qrCtrl.RevokeToken)

	/* ===================== SMART ===================== */
	attendance.Get("/smart/predictions/:id", smartCtrl.StudentRisk)
	attendance.Post("/smart/analyze", smartCtrl.AnalyzeClass)
}
