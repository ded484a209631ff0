// File: /models/role.go
package models

import (
	"fmt"
	"strings"
)

// Role is a group membership. Roles are totally ordered: a higher role
// satisfies every check that a lower one does.
type Role int

const (
	RoleParticipant Role = iota + 1
	RoleOrganizer
	RoleAdmin
)

// RolesByPriority lists roles from highest to lowest, the order used for
// dashboard routing.
var RolesByPriority = []Role{RoleAdmin, RoleOrganizer, RoleParticipant}

var roleNames = map[Role]string{
	RoleParticipant: "Participant",
	RoleOrganizer:   "Organizer",
	RoleAdmin:       "Admin",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// Satisfies reports whether r meets a requirement of at least required.
func (r Role) Satisfies(required Role) bool {
	return r.Valid() && r >= required
}

// ParseRole matches a group name case-insensitively.
func ParseRole(name string) (Role, error) {
	for role, roleName := range roleNames {
		if strings.EqualFold(strings.TrimSpace(name), roleName) {
			return role, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", name)
}
