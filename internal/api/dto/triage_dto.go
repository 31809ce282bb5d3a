package dto

import (
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// ClassifyRequest payload.
type ClassifyRequest struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	Strategy string `json:"strategy"`
}

// ClassificationResponse reports one classification decision.
type ClassificationResponse struct {
	Category       domain.Category               `json:"category"`
	Priority       domain.Priority               `json:"priority"`
	Confidence     float64                       `json:"confidence"`
	Strategy       domain.ClassificationStrategy `json:"strategy"`
	Reasoning      string                        `json:"reasoning"`
	CategoryScores map[domain.Category]float64   `json:"category_scores"`
	PriorityScores map[domain.Priority]float64   `json:"priority_scores"`
}

// TriageRequest payload for full intake.
type TriageRequest struct {
	Title                  string `json:"title"`
	Description            string `json:"description"`
	ClassificationStrategy string `json:"classification_strategy"`
	AssignmentStrategy     string `json:"assignment_strategy"`
}

// AssignRequest payload for assigning an existing task.
type AssignRequest struct {
	Strategy string `json:"strategy"`
}

// AlternativeResponse is one ranked runner-up team.
type AlternativeResponse struct {
	TeamID    string  `json:"team_id"`
	TeamName  string  `json:"team_name"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// AssignmentResponse reports one assignment decision.
type AssignmentResponse struct {
	TeamID            string                    `json:"team_id"`
	Confidence        float64                   `json:"confidence"`
	Strategy          domain.AssignmentStrategy `json:"strategy"`
	Reasoning         string                    `json:"reasoning"`
	TeamScores        map[string]float64        `json:"team_scores"`
	FactorsConsidered []string                  `json:"factors_considered"`
	Alternatives      []AlternativeResponse     `json:"alternatives"`
}

// TaskResponse describes a persisted task.
type TaskResponse struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       domain.Category `json:"category,omitempty"`
	Priority       domain.Priority `json:"priority,omitempty"`
	AssignedTeamID *string         `json:"assigned_team_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TriageResponse bundles the intake outcome.
type TriageResponse struct {
	Task           TaskResponse            `json:"task"`
	Classification *ClassificationResponse `json:"classification,omitempty"`
	Assignment     *AssignmentResponse     `json:"assignment,omitempty"`
}

// TaskDecisionsResponse is the stored decision history for a task.
type TaskDecisionsResponse struct {
	Classifications []ClassificationResponse `json:"classifications"`
	Assignments     []AssignmentResponse     `json:"assignments"`
}
