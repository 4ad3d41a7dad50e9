package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "clubgate/pkg/domain-errors"
)

func TestParseRole(t *testing.T) {
	t.Run("accepts recognized roles", func(t *testing.T) {
		for _, want := range Roles() {
			got, err := ParseRole(want.String())
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := ParseRole("superuser")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects empty role", func(t *testing.T) {
		_, err := ParseRole("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestRolePrivileges(t *testing.T) {
	t.Run("only admin approves", func(t *testing.T) {
		assert.True(t, RoleAdmin.CanApprove())
		assert.False(t, RoleCreator.CanApprove())
		assert.False(t, RoleUser.CanApprove())
	})

	t.Run("admin and creator manage members", func(t *testing.T) {
		assert.True(t, RoleAdmin.CanManageMembers())
		assert.True(t, RoleCreator.CanManageMembers())
		assert.False(t, RoleUser.CanManageMembers())
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var r Role
		assert.False(t, r.IsValid())
		assert.False(t, r.CanApprove())
		assert.False(t, r.CanManageMembers())
	})
}
