package events

import (
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTaskReceived   EventType = "task_received"
	EventTaskClassified EventType = "task_classified"
	EventTaskAssigned   EventType = "task_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TaskID    string      `json:"task_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TaskReceivedPayload payload. Keywords and urgency cues come from the
// feature extractor run at ingestion.
type TaskReceivedPayload struct {
	Title       string   `json:"title"`
	TextLength  int      `json:"text_length"`
	Keywords    []string `json:"keywords,omitempty"`
	UrgencyCues int      `json:"urgency_cues,omitempty"`
}

// TaskClassifiedPayload payload.
type TaskClassifiedPayload struct {
	Category   domain.Category               `json:"category"`
	Priority   domain.Priority               `json:"priority"`
	Confidence float64                       `json:"confidence"`
	Strategy   domain.ClassificationStrategy `json:"strategy"`
}

// TaskAssignedPayload payload.
type TaskAssignedPayload struct {
	TeamID     string                    `json:"team_id"`
	Category   domain.Category           `json:"category"`
	Confidence float64                   `json:"confidence"`
	Strategy   domain.AssignmentStrategy `json:"strategy"`
}
