package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{"ADMIN", RoleAdmin, true},
		{"manager", RoleManager, true},
		{" Authenticated ", RoleAuthenticated, true},
		{"", "", false},
		{"SUPERUSER", "", false},
		{"ANONYMOUS", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRole(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleOrDefault_FallsBackToAuthenticated(t *testing.T) {
	assert.Equal(t, RoleAuthenticated, RoleOrDefault("OWNER"))
	assert.Equal(t, RoleAuthenticated, RoleOrDefault(""))
	assert.Equal(t, RoleManager, RoleOrDefault("MANAGER"))
}

func TestRoleSet_Allows(t *testing.T) {
	assert.True(t, StaffRoles.Allows(RoleAdmin))
	assert.True(t, StaffRoles.Allows(RoleManager))
	assert.False(t, StaffRoles.Allows(RoleAuthenticated))

	assert.True(t, AdminOnly.Allows(RoleAdmin))
	assert.False(t, AdminOnly.Allows(RoleManager))

	assert.False(t, RoleSet{}.Allows(RoleAdmin))
	assert.False(t, StaffRoles.Allows(Role("")))
}

func TestUser_State(t *testing.T) {
	assert.Equal(t, StatePendingVerification, (&User{}).State())
	assert.Equal(t, StateVerified, (&User{EmailVerified: true}).State())
	assert.Equal(t, StateLocked, (&User{EmailVerified: true, IsLocked: true}).State())
	assert.Equal(t, StateLocked, (&User{IsLocked: true}).State())
}

func TestUser_Returning(t *testing.T) {
	now := time.Now()
	assert.False(t, (&User{CreatedAt: now, UpdatedAt: now}).Returning())
	assert.True(t, (&User{CreatedAt: now, UpdatedAt: now.Add(time.Second)}).Returning())
}
