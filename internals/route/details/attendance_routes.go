package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sekolahku_backend/internals/configs"
	attendanceRoute "sekolahku_backend/internals/features/attendance/route"
)

func AttendanceRoutes(api fiber.Router, db *gorm.DB, cfg configs.AttendanceConfig) {
	attendanceRoute.AttendanceRoutes(api, db, cfg)
}
