package dto

// UpdateStudentProfileRequest overwrites names and, when non-empty, phone and address.
type UpdateStudentProfileRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Address   string `json:"address"`
}

// ApproveCompanyRequest identifies the company profile to approve.
type ApproveCompanyRequest struct {
	CompanyID string `json:"companyId" validate:"required"`
}

// ApproveCompanyResult mirrors the mutation payload.
type ApproveCompanyResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
