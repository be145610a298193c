package dto

// EvaluationScores holds the six sub-scores, each within 1..10.
type EvaluationScores struct {
	Attendance          int `json:"attendance" validate:"min=1,max=10"`
	Performance         int `json:"performance" validate:"min=1,max=10"`
	Adaptation          int `json:"adaptation" validate:"min=1,max=10"`
	TechnicalSkills     int `json:"technicalSkills" validate:"min=1,max=10"`
	CommunicationSkills int `json:"communicationSkills" validate:"min=1,max=10"`
	Teamwork            int `json:"teamwork" validate:"min=1,max=10"`
}

// CreateEvaluationRequest is the payload of createEvaluation.
type CreateEvaluationRequest struct {
	InternshipID string  `json:"internshipId" validate:"required"`
	Comment      *string `json:"comment"`
	EvaluationScores
}

// UpdateEvaluationRequest is the payload of updateEvaluation.
type UpdateEvaluationRequest struct {
	EvaluationID string  `json:"evaluationId" validate:"required"`
	Comment      *string `json:"comment"`
	EvaluationScores
}

// EvaluationRef addresses a single evaluation.
type EvaluationRef struct {
	EvaluationID string `json:"evaluationId" validate:"required"`
}
