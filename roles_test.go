package auth_test

import (
	"testing"

	auth "github.com/in6bv/go-auth"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoleName(t *testing.T) {
	assert.Equal(t, "ADMIN", auth.NormalizeRoleName("  admin "))
	assert.Equal(t, "USER", auth.NormalizeRoleName("User"))
	assert.Equal(t, "", auth.NormalizeRoleName("   "))
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		input string
		role  auth.RoleName
		ok    bool
	}{
		{"admin", auth.RoleAdmin, true},
		{" ADMIN ", auth.RoleAdmin, true},
		{"user", auth.RoleUser, true},
		{"SUPERUSER", "SUPERUSER", false},
		{"", "", false},
		{"  ", "", false},
	}

	for _, tc := range cases {
		role, ok := auth.ParseRole(tc.input)
		assert.Equal(t, tc.role, role, tc.input)
		assert.Equal(t, tc.ok, ok, tc.input)
	}
}

func TestAllRoles(t *testing.T) {
	assert.Equal(t, []auth.RoleName{auth.RoleAdmin, auth.RoleUser}, auth.AllRoles())
	for _, role := range auth.AllRoles() {
		assert.True(t, auth.IsAllowedRole(role))
	}
}
