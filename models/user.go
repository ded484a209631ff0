// File: /models/user.go
package models

import (
	"time"
)

type User struct {
	ID          string    `json:"id" gorm:"primaryKey;size:191"`
	Username    string    `json:"username" gorm:"uniqueIndex;not null;size:150"`
	Email       string    `json:"email" gorm:"not null;size:255;index"`
	Password    string    `json:"-" gorm:"not null;size:255"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:false"`
	IsSuperuser bool      `json:"is_superuser" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Groups  []Group  `json:"groups" gorm:"many2many:user_groups"`
	Profile *Profile `json:"profile,omitempty" gorm:"foreignKey:UserID"`
}

// Group is the persisted form of a Role. Names are unique.
type Group struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null;size:80"`
}

// Roles returns the recognised roles of the loaded groups; unknown group
// names are ignored.
func (u *User) Roles() []Role {
	roles := make([]Role, 0, len(u.Groups))
	for _, g := range u.Groups {
		if role, err := ParseRole(g.Name); err == nil {
			roles = append(roles, role)
		}
	}
	return roles
}

// HighestRole returns the highest role held, or false when the user has none.
func (u *User) HighestRole() (Role, bool) {
	var highest Role
	for _, role := range u.Roles() {
		if role > highest {
			highest = role
		}
	}
	return highest, highest.Valid()
}

// HasRole applies the role hierarchy with the superuser override.
func (u *User) HasRole(required Role) bool {
	if u.IsSuperuser {
		return true
	}
	highest, ok := u.HighestRole()
	return ok && highest.Satisfies(required)
}
