// file: internals/route/index.go
package route

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sekolahku_backend/internals/configs"
	"sekolahku_backend/internals/middlewares/auth"
	routeDetails "sekolahku_backend/internals/route/details"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg configs.AttendanceConfig) {
	// ===================== HEALTH =====================
	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"message": "database unreachable",
			})
		}
		return c.JSON(fiber.Map{"success": true, "message": "ok"})
	})

	// ===================== PRIVATE (JWT) =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api", auth.AuthMiddleware(db))

	log.Println("[INFO] Mounting Attendance routes...")
	routeDetails.AttendanceRoutes(private, db, cfg)
}
