package dto

import (
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
)

// TeamRequest payload for create/update.
type TeamRequest struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	Skills         []string `json:"skills"`
	Capacity       int      `json:"capacity"`
	PriorityWeight float64  `json:"priority_weight"`
	IsActive       *bool    `json:"is_active"`
}

// TeamResponse describes a team.
type TeamResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Category       domain.Category `json:"category"`
	Description    string          `json:"description"`
	Skills         []string        `json:"skills"`
	Capacity       int             `json:"capacity"`
	CurrentLoad    int             `json:"current_load"`
	Availability   int             `json:"availability"`
	PriorityWeight float64         `json:"priority_weight"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
