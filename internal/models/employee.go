package models

import (
	"time"
)

// Role represents an employee's access level
type Role string

const (
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleCashier
}

// HomePath is the front-end landing page for the role
func (r Role) HomePath() string {
	if r == RoleManager {
		return "/manager"
	}
	return "/cashier"
}

// Employee represents a staff account
type Employee struct {
	ID           uint      `gorm:"primary_key" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"not null;unique_index" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null" json:"role"`
	Active       bool      `gorm:"not null" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
