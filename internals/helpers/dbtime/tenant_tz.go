// file: internals/helpers/dbtime/tenant_tz.go
package dbtime

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the auth middleware.
const (
	LocTenantTimezone = "tenant_timezone" // string, e.g. "Asia/Jakarta"
	LocTenantLoc      = "tenant_loc"      // *time.Location
)

// GetTenantLocation resolves the tenant's *time.Location:
// 1) c.Locals("tenant_loc") if the middleware already cached it
// 2) c.Locals("tenant_timezone") string → LoadLocation
// 3) fallback UTC
func GetTenantLocation(c *fiber.Ctx) *time.Location {
	if c == nil {
		return time.UTC
	}

	if v := c.Locals(LocTenantLoc); v != nil {
		if loc, ok := v.(*time.Location); ok && loc != nil {
			return loc
		}
	}

	if v := c.Locals(LocTenantTimezone); v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			if loc, err := time.LoadLocation(strings.TrimSpace(s)); err == nil {
				c.Locals(LocTenantLoc, loc) // cache for the next call
				return loc
			}
		}
	}

	return time.UTC
}

// LoadLocationOrUTC is the non-fiber variant used by services.
func LoadLocationOrUTC(name string) *time.Location {
	if strings.TrimSpace(name) == "" {
		return time.UTC
	}
	if loc, err := time.LoadLocation(strings.TrimSpace(name)); err == nil {
		return loc
	}
	return time.UTC
}
