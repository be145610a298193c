package models

import (
	"math"
	"time"
)

// EvaluationCriteria is the number of sub-scores averaged into AverageRating.
const EvaluationCriteria = 6

// Evaluation scores a student's internship. AverageRating is derived and recomputed on every save.
type Evaluation struct {
	ID                  string    `db:"id" json:"id"`
	InternshipID        string    `db:"internship_id" json:"internship_id"`
	Attendance          int       `db:"attendance" json:"attendance"`
	Performance         int       `db:"performance" json:"performance"`
	Adaptation          int       `db:"adaptation" json:"adaptation"`
	TechnicalSkills     int       `db:"technical_skills" json:"technical_skills"`
	CommunicationSkills int       `db:"communication_skills" json:"communication_skills"`
	Teamwork            int       `db:"teamwork" json:"teamwork"`
	Comment             *string   `db:"comment" json:"comment,omitempty"`
	AverageRating       float64   `db:"average_rating" json:"average_rating"`
	IsApproved          bool      `db:"is_approved" json:"is_approved"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// ComputeAverage sets AverageRating to the mean of the six sub-scores rounded to two decimals.
func (e *Evaluation) ComputeAverage() float64 {
	sum := e.Attendance + e.Performance + e.Adaptation + e.TechnicalSkills + e.CommunicationSkills + e.Teamwork
	e.AverageRating = math.Round(float64(sum)/EvaluationCriteria*100) / 100
	return e.AverageRating
}
