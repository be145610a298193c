package models

import "time"

// Domain event types published to the event stream.
const (
	EventInternshipCreated  = "internship.created"
	EventDiaryCreated       = "internship.diary_created"
	EventEvaluationSaved    = "internship.evaluation_saved"
	EventEvaluationApproved = "internship.evaluation_approved"
	EventCompanyApproved    = "company.approved"
)

// DomainEvent is the envelope written to Kafka. Key orders events of one aggregate.
type DomainEvent struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	ActorID    string      `json:"actor_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}
