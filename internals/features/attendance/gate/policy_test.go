package gate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sekolahku_backend/internals/constants"
)

func TestPolicyMatrix(t *testing.T) {
	cases := []struct {
		name string
		role string
		op   Operation
		want ScopeKind
	}{
		{"superadmin any write", constants.RoleSuperadmin, OpCreateSession, ScopeAny},
		{"superadmin any read", constants.RoleSuperadmin, OpReadSchool, ScopeAny},
		{"superadmin cannot redeem", constants.RoleSuperadmin, OpRedeemToken, ScopeDenied},

		{"admin tenant scoped", constants.RoleAdmin, OpCreateSession, ScopeTenant},
		{"administrator tenant scoped", constants.RoleAdministrator, OpReadSchool, ScopeTenant},
		{"admin cannot redeem", constants.RoleAdmin, OpRedeemToken, ScopeDenied},

		{"teacher own classes write", constants.RoleTeacher, OpCreateSession, ScopeOwnClasses},
		{"teacher own classes mark", constants.RoleTeacher, OpMarkRecord, ScopeOwnClasses},
		{"teacher issues tokens", constants.RoleTeacher, OpIssueToken, ScopeOwnClasses},
		{"teacher self-scan", constants.RoleTeacher, OpRedeemToken, ScopeOwnClasses},
		{"teacher no school reads", constants.RoleTeacher, OpReadSchool, ScopeDenied},

		{"parent reads linked students", constants.RoleParent, OpReadStudent, ScopeLinkedStudents},
		{"parent reads class via link", constants.RoleParent, OpReadClass, ScopeLinkedStudents},
		{"parent cannot mark", constants.RoleParent, OpMarkRecord, ScopeDenied},
		{"parent cannot redeem", constants.RoleParent, OpRedeemToken, ScopeDenied},

		{"student reads self", constants.RoleStudent, OpReadStudent, ScopeSelf},
		{"student redeems self", constants.RoleStudent, OpRedeemToken, ScopeSelf},
		{"student cannot issue", constants.RoleStudent, OpIssueToken, ScopeDenied},
		{"student cannot mark", constants.RoleStudent, OpMarkRecord, ScopeDenied},

		{"unknown role denied", "janitor", OpReadClass, ScopeDenied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, PolicyFor(tc.role, tc.op))
		})
	}
}
