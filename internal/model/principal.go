package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleManager    UserRole = "MANAGER"
	UserRoleStaff      UserRole = "STAFF"
	UserRoleTechnician UserRole = "TECHNICIAN"
)

type Principal struct {
	UserID     uuid.UUID
	CompanyID  uuid.UUID
	Role       UserRole
	EmployeeID *uuid.UUID
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) IsManager() bool {
	return p.Role == UserRoleManager
}

func (p Principal) IsTechnician() bool {
	return p.Role == UserRoleTechnician
}

// CanReviewEstimates reports whether the principal may approve, reject or send back estimates.
func (p Principal) CanReviewEstimates() bool {
	return p.IsAdmin() || p.IsManager()
}
