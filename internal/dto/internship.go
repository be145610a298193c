package dto

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// CreateInternshipRequest is the payload of createInternship.
type CreateInternshipRequest struct {
	CompanyID   string  `json:"companyId" validate:"required"`
	Topic       string  `json:"topic" validate:"required,max=200"`
	Description *string `json:"description"`
	StartDate   string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string  `json:"endDate" validate:"required,datetime=2006-01-02"`
}

// CreateDiaryRequest is the payload of createInternshipDiary.
type CreateDiaryRequest struct {
	InternshipID string `json:"internshipId" validate:"required"`
	DayNumber    int    `json:"dayNumber" validate:"min=1"`
	Content      string `json:"content" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
}

// InternshipRef addresses child collections of one internship.
type InternshipRef struct {
	InternshipID string `json:"internshipId" validate:"required"`
}

// ExportDiaryRequest is the payload of exportInternshipDiary.
type ExportDiaryRequest struct {
	InternshipID string `json:"internshipId" validate:"required"`
	Format       string `json:"format" validate:"omitempty,oneof=csv pdf"`
}
