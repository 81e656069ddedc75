// file: internals/features/attendance/gate/principal.go
package gate

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sekolahku_backend/internals/constants"
	helper "sekolahku_backend/internals/helpers"
	authmw "sekolahku_backend/internals/middlewares/auth"
)

// Principal is the authenticated caller of an operation. TenantID is nil only
// for superadmin.
type Principal struct {
	UserID   uuid.UUID
	Role     string
	TenantID *uuid.UUID
}

func (p Principal) IsSuperadmin() bool { return p.Role == constants.RoleSuperadmin }

func (p Principal) IsAdminScoped() bool {
	return p.Role == constants.RoleAdmin || p.Role == constants.RoleAdministrator
}

func (p Principal) SameTenant(tenantID uuid.UUID) bool {
	return p.TenantID != nil && *p.TenantID == tenantID
}

// FromFiber rebuilds the principal from the Locals the auth middleware set.
func FromFiber(c *fiber.Ctx) (Principal, error) {
	var p Principal

	rawID, _ := c.Locals(authmw.LocUserID).(string)
	userID, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return p, helper.ErrPermissionDenied()
	}
	p.UserID = userID

	role, _ := c.Locals(authmw.LocRole).(string)
	role = strings.TrimSpace(role)
	if !constants.RoleIn(role, constants.AllRoles) {
		return p, helper.ErrPermissionDenied()
	}
	p.Role = role

	if rawTenant, ok := c.Locals(authmw.LocTenantID).(string); ok && strings.TrimSpace(rawTenant) != "" {
		tid, err := uuid.Parse(strings.TrimSpace(rawTenant))
		if err != nil {
			return p, helper.ErrPermissionDenied()
		}
		p.TenantID = &tid
	}

	// every role except superadmin must carry a tenant
	if p.Role != constants.RoleSuperadmin && p.TenantID == nil {
		return p, helper.ErrPermissionDenied()
	}
	return p, nil
}
