package socket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role         string
		manageSlides bool
		editElements bool
		changeRoles  bool
	}{
		{RoleCreator, true, true, true},
		{RoleEditor, false, true, false},
		{RoleViewer, false, false, false},
		{"", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.manageSlides, canManageSlides(tt.role))
			assert.Equal(t, tt.editElements, canEditElements(tt.role))
			assert.Equal(t, tt.changeRoles, canChangeRoles(tt.role))
		})
	}
}

func TestAssignableRole(t *testing.T) {
	assert.True(t, assignableRole(RoleEditor))
	assert.True(t, assignableRole(RoleViewer))
	assert.False(t, assignableRole(RoleCreator))
	assert.False(t, assignableRole("owner"))
}
