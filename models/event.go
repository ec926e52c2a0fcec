package models

import "time"

// Event types published on the job event channel.
const (
	EventJobCreated         = "job.created"
	EventJobDeleted         = "job.deleted"
	EventApplicationCreated = "application.submitted"
	EventApplicationStatus  = "application.status_changed"
)

type Event struct {
	Type        string    `json:"type"`
	JobID       string    `json:"jobId"`
	JobTitle    string    `json:"jobTitle,omitempty"`
	ActorID     string    `json:"actorId"`
	RecipientID string    `json:"recipientId,omitempty"`
	Status      string    `json:"status,omitempty"`
	At          time.Time `json:"at"`
}
