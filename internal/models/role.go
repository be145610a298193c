package models

import "time"

// Built-in role names created by the seed command.
const (
	RoleAdmin   = "Admin"
	RoleStudent = "Student"
	RoleCompany = "Company"
)

// Role bundles a set of permissions. Permissions is populated by the repository.
type Role struct {
	ID          string       `db:"id" json:"id"`
	Name        string       `db:"name" json:"name"`
	Permissions []Permission `db:"-" json:"permissions"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// HasPermission reports whether the role holds an active permission with the given code.
func (r *Role) HasPermission(code string) bool {
	if r == nil {
		return false
	}
	for _, p := range r.Permissions {
		if p.Code == code && p.Active {
			return true
		}
	}
	return false
}
