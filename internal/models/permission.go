package models

import "time"

// Permission codes checked by the access gateway.
const (
	PermApproveCompany     = "approve_company"
	PermViewAllInternships = "view_all_internships"
	PermCreateEvaluation   = "create_evaluation"
	PermApproveEvaluation  = "approve_evaluation"
)

// Permission is a named capability flag that can be switched off without touching the roles holding it.
type Permission struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	Active      bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
