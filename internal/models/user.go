package models

import "time"

// User is an authentication identity. Every user holds exactly one role.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	RoleID       string     `db:"role_id" json:"role_id"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	IsStaff      bool       `db:"is_staff" json:"is_staff"`
	IsSuperuser  bool       `db:"is_superuser" json:"is_superuser"`
	Status       bool       `db:"status" json:"status"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	Role *Role `db:"-" json:"role,omitempty"`
}

// HasPermission delegates to the loaded role.
func (u *User) HasPermission(code string) bool {
	if u == nil {
		return false
	}
	return u.Role.HasPermission(code)
}

// CreateUserParams carries the inputs of the user factory.
type CreateUserParams struct {
	Email       string
	Password    string
	RoleID      string
	IsActive    bool
	IsStaff     bool
	IsSuperuser bool
	Status      bool
}
