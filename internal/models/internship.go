package models

import "time"

// InternshipStatus enumerates the stored internship states. No transitions are enforced.
type InternshipStatus string

const (
	InternshipPending           InternshipStatus = "pending"
	InternshipApprovedByCompany InternshipStatus = "approved_by_company"
	InternshipApprovedByAdmin   InternshipStatus = "approved_by_admin"
	InternshipRejected          InternshipStatus = "rejected"
	InternshipCompleted         InternshipStatus = "completed"
)

// Internship links a student user to a company user.
type Internship struct {
	ID          string           `db:"id" json:"id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	CompanyID   string           `db:"company_id" json:"company_id"`
	Topic       string           `db:"topic" json:"topic"`
	Description *string          `db:"description" json:"description,omitempty"`
	StartDate   time.Time        `db:"start_date" json:"start_date"`
	EndDate     time.Time        `db:"end_date" json:"end_date"`
	Status      InternshipStatus `db:"status" json:"status"`
	WorkingDays int              `db:"working_days" json:"working_days"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// IsParticipant reports whether userID is the internship's student or company.
func (i *Internship) IsParticipant(userID string) bool {
	return i != nil && userID != "" && (i.StudentID == userID || i.CompanyID == userID)
}

// DiaryStatus enumerates diary entry states.
type DiaryStatus string

const (
	DiaryDraft     DiaryStatus = "draft"
	DiarySubmitted DiaryStatus = "submitted"
)

// DiaryEntry is one day of the student's internship log. Day numbers may repeat.
type DiaryEntry struct {
	ID           string      `db:"id" json:"id"`
	InternshipID string      `db:"internship_id" json:"internship_id"`
	DayNumber    int         `db:"day_number" json:"day_number"`
	Content      string      `db:"content" json:"content"`
	Date         time.Time   `db:"date" json:"date"`
	Status       DiaryStatus `db:"status" json:"status"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}
