// file: internals/features/attendance/gate/policy.go
//
// The single place attendance policy lives. Every route goes through one of
// the Authorize* entry points; nothing else in the codebase checks roles.
package gate

import (
	"sekolahku_backend/internals/constants"
)

// Operation enumerates everything the attendance surface can do.
type Operation int

const (
	OpCreateSession Operation = iota
	OpMarkRecord
	OpReadClass
	OpReadStudent
	OpReadSchool
	OpIssueToken
	OpRedeemToken
	OpPredict
)

// ScopeKind is the answer of the pure policy matrix: what scope the role must
// prove before the operation is allowed.
type ScopeKind int

const (
	ScopeDenied ScopeKind = iota
	ScopeAny              // superadmin
	ScopeTenant           // resource tenant must equal principal tenant
	ScopeOwnClasses       // principal must be the class's teacher
	ScopeLinkedStudents   // parent: only students linked via parent_links
	ScopeSelf             // student: only their own data
)

// PolicyFor is the role-scope matrix as one pure function. Anything not
// listed is denied.
func PolicyFor(role string, op Operation) ScopeKind {
	switch role {
	case constants.RoleSuperadmin:
		if op == OpRedeemToken {
			return ScopeDenied
		}
		return ScopeAny

	case constants.RoleAdmin, constants.RoleAdministrator:
		if op == OpRedeemToken {
			return ScopeDenied
		}
		return ScopeTenant

	case constants.RoleTeacher:
		switch op {
		case OpCreateSession, OpMarkRecord, OpIssueToken, OpPredict:
			return ScopeOwnClasses
		case OpReadClass, OpReadStudent:
			return ScopeOwnClasses
		case OpRedeemToken:
			// teacher self-scan for their own class
			return ScopeOwnClasses
		default:
			return ScopeDenied
		}

	case constants.RoleParent:
		switch op {
		case OpReadClass, OpReadStudent:
			return ScopeLinkedStudents
		default:
			return ScopeDenied
		}

	case constants.RoleStudent:
		switch op {
		case OpReadClass, OpReadStudent, OpRedeemToken:
			return ScopeSelf
		default:
			return ScopeDenied
		}
	}
	return ScopeDenied
}
