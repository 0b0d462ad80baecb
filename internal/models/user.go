package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role is the closed set of roles known to the platform. Authorization
// decisions switch on this type rather than comparing raw strings.
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleProfessor        Role = "professor"
	RoleAssociateTeacher Role = "associate_teacher"
	RoleStudent          Role = "student"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfessor, RoleAssociateTeacher, RoleStudent:
		return true
	}
	return false
}

// IsTeacher reports whether the role may create assessments and grade work.
func (r Role) IsTeacher() bool {
	return r == RoleProfessor || r == RoleAssociateTeacher
}

// User is the single account aggregate. Role-specific attributes live in the
// Profile payload instead of per-role tables, so "does this user have exactly
// one role" is answered by a single column.
type User struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	Name         string            `gorm:"size:255;not null" json:"name"`
	Email        string            `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string            `gorm:"size:255;not null" json:"-"`
	Role         Role              `gorm:"size:32;not null" json:"role"`
	Profile      datatypes.JSONMap `gorm:"type:json" json:"profile"`
	IsActive     bool              `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
