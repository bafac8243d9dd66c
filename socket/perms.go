package socket

// Role checks for the operations the hub gates. Hierarchy is
// creator > editor > viewer; lock/unlock and cursor movement are open
// to any member and have no check here.

func canManageSlides(role string) bool {
	return role == RoleCreator
}

func canEditElements(role string) bool {
	return role == RoleCreator || role == RoleEditor
}

func canChangeRoles(role string) bool {
	return role == RoleCreator
}

// assignableRole reports whether a role may be handed out via
// SET_ROLE. Creator is never assignable; it exists only through the
// first-member-joins heuristic.
func assignableRole(role string) bool {
	return role == RoleEditor || role == RoleViewer
}
