package constants

// Role names carried inside the JWT "role" claim.
const (
	RoleSuperadmin    = "superadmin"
	RoleAdmin         = "admin"
	RoleAdministrator = "administrator"
	RoleTeacher       = "teacher"
	RoleParent        = "parent"
	RoleStudent       = "student"
)

// ==========================
// Grouped role slices
// ==========================
var (
	AllRoles = []string{
		RoleSuperadmin,
		RoleAdmin,
		RoleAdministrator,
		RoleTeacher,
		RoleParent,
		RoleStudent,
	}

	// AdminAndAbove: tenant-wide read/write (school overview, analytics).
	AdminAndAbove = []string{
		RoleSuperadmin,
		RoleAdmin,
		RoleAdministrator,
	}

	// TeacherAndAbove: session/record writes, QR issuing.
	TeacherAndAbove = []string{
		RoleSuperadmin,
		RoleAdmin,
		RoleAdministrator,
		RoleTeacher,
	}

	// ReaderRoles: everyone may read something, scope is checked per resource.
	ReaderRoles = AllRoles
)

func RoleIn(role string, group []string) bool {
	for _, r := range group {
		if r == role {
			return true
		}
	}
	return false
}

// AttendanceStatuses is the closed set accepted for a record.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

var AttendanceStatuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// StatusRank orders statuses for "best of the day" tie-breaks:
// present < late < excused < absent (lower is better).
func StatusRank(status string) int {
	switch status {
	case StatusPresent:
		return 0
	case StatusLate:
		return 1
	case StatusExcused:
		return 2
	case StatusAbsent:
		return 3
	default:
		return 4
	}
}

func IsValidStatus(status string) bool {
	return StatusRank(status) < 4
}

// Session types & states.
const (
	SessionTypeRegular = "regular"
	SessionTypeQRScan  = "qr_scan"

	SessionStatusOpen   = "open"
	SessionStatusClosed = "closed"
)
