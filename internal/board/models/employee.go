// Package models defines the core domain models of the staff board:
// employees, roles, zones and the persisted board snapshot.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the employee category that governs zone eligibility.
type Role string

const (
	RoleManager      Role = "manager"
	RoleReceptionist Role = "receptionist"
	RoleTechnician   Role = "technician"
	RoleSecurity     Role = "security"
	RoleCleaner      Role = "cleaner"
	RoleDeveloper    Role = "developer"
	RoleDesigner     Role = "designer"
)

// AllRoles returns every known role.
func AllRoles() []Role {
	return []Role{RoleManager, RoleReceptionist, RoleTechnician, RoleSecurity, RoleCleaner, RoleDeveloper, RoleDesigner}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range AllRoles() {
		if r == known {
			return true
		}
	}
	return false
}

// Employee defines the domain model for a registered employee.
type Employee struct {
	// ID is generated at creation and never changes.
	ID uuid.UUID `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
	// Role drives which zones the employee may occupy.
	Role Role `json:"role"`
	// Email is the contact address.
	Email string `json:"email"`
	// Phone is optional and defaults to "".
	Phone string `json:"phone"`
	// Photo is a picture reference; a role placeholder when none was given.
	Photo string `json:"photo"`
	// Experiences is the ordered work history.
	Experiences []WorkExperience `json:"experiences"`
	// CurrentZone is nil while the employee sits in the unassigned pool.
	CurrentZone *ZoneID `json:"current_zone"`
	// CreatedAt records when the employee was registered.
	CreatedAt time.Time `json:"created_at"`
}

// Assigned reports whether the employee currently occupies a zone.
func (e *Employee) Assigned() bool {
	return e.CurrentZone != nil
}

// WorkExperience is one entry of an employee's work history.
// Start and End are month precision.
type WorkExperience struct {
	Description string     `json:"description" validate:"required"`
	Start       time.Time  `json:"start"`
	End         *time.Time `json:"end,omitempty"`
	Ongoing     bool       `json:"ongoing"`
}

// NewEmployee carries the operator input for registering an employee.
type NewEmployee struct {
	Name        string           `json:"name" validate:"required,max=100"`
	Role        Role             `json:"role" validate:"required,role"`
	Email       string           `json:"email" validate:"required,email"`
	Phone       string           `json:"phone" validate:"omitempty,phone"`
	Photo       string           `json:"photo" validate:"omitempty,url"`
	Experiences []WorkExperience `json:"experiences" validate:"dive"`
}
