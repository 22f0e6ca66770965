package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasAnyRight(t *testing.T) {
	t.Parallel()

	require.True(t, HasAnyRight(RoleUser, RightGetAllProducts))
	require.True(t, HasAnyRight(RoleUser, RightGetProduct))
	require.False(t, HasAnyRight(RoleUser, RightCreateProduct))
	require.False(t, HasAnyRight(RoleUser, RightUpdateProduct, RightDeleteProduct))

	require.True(t, HasAnyRight(RoleAdmin, RightCreateProduct))
	require.True(t, HasAnyRight(RoleAdmin, RightDeleteProduct))

	// One match out of many is enough.
	require.True(t, HasAnyRight(RoleUser, RightCreateProduct, RightGetProduct))

	// Unknown roles hold nothing.
	require.False(t, HasAnyRight("superuser", RightGetProduct))

	// No requirement means the gate is open.
	require.True(t, HasAnyRight(RoleUser))
}

func TestRightsForRoleReturnsCopy(t *testing.T) {
	t.Parallel()

	rights := RightsForRole(RoleUser)
	require.NotEmpty(t, rights)

	rights[0] = "tampered"
	require.NotContains(t, RightsForRole(RoleUser), "tampered")
}

func TestIsValidRole(t *testing.T) {
	t.Parallel()

	require.True(t, IsValidRole(RoleUser))
	require.True(t, IsValidRole(RoleAdmin))
	require.False(t, IsValidRole(""))
	require.False(t, IsValidRole("editor"))
}
