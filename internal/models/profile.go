package models

import "time"

// StudentProfile extends a user acting as a student.
type StudentProfile struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	Department    string    `db:"department" json:"department"`
	Faculty       string    `db:"faculty" json:"faculty"`
	Phone         string    `db:"phone" json:"phone"`
	Address       string    `db:"address" json:"address"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (s *StudentProfile) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// CompanyProfile extends a user acting as a company.
type CompanyProfile struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"user_id"`
	Name          string     `db:"name" json:"name"`
	Address       string     `db:"address" json:"address"`
	Phone         string     `db:"phone" json:"phone"`
	ContactPerson string     `db:"contact_person" json:"contact_person"`
	Website       *string    `db:"website" json:"website,omitempty"`
	TaxNumber     string     `db:"tax_number" json:"tax_number"`
	IsApproved    bool       `db:"is_approved" json:"is_approved"`
	ApprovedAt    *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
