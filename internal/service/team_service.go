package service

import (
	"context"
	"strings"

	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/repository"
	apperrors "github.com/spec-kit/triage-service/pkg/util/errorutil"
)

// TeamService manages the assignment roster.
type TeamService struct {
	teams repository.TeamRepository
}

// NewTeamService constructs the service.
func NewTeamService(teams repository.TeamRepository) *TeamService {
	return &TeamService{teams: teams}
}

// TeamInput describes team create/update payloads.
type TeamInput struct {
	Name           string
	Category       string
	Description    string
	Skills         []string
	Capacity       int
	PriorityWeight float64
	IsActive       *bool
}

// TeamWorkload summarizes one team's load for reporting.
type TeamWorkload struct {
	TeamID         string          `json:"team_id"`
	Name           string          `json:"name"`
	Category       domain.Category `json:"category"`
	Capacity       int             `json:"capacity"`
	CurrentLoad    int             `json:"current_load"`
	Availability   int             `json:"availability"`
	UtilizationPct float64         `json:"utilization_pct"`
}

// CreateTeam validates and stores a team.
func (s *TeamService) CreateTeam(ctx context.Context, input TeamInput) (*domain.Team, error) {
	team, err := teamFromInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// UpdateTeam validates and updates a team.
func (s *TeamService) UpdateTeam(ctx context.Context, id string, input TeamInput) (*domain.Team, error) {
	existing, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := teamFromInput(input)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CurrentLoad = existing.CurrentLoad
	updated.CreatedAt = existing.CreatedAt
	if input.IsActive == nil {
		updated.IsActive = existing.IsActive
	}

	if err := s.teams.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// GetTeam fetches a team by id.
func (s *TeamService) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	return s.teams.GetByID(ctx, id)
}

// ListTeams returns all teams.
func (s *TeamService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	return s.teams.List(ctx)
}

// ReleaseTask frees one unit of load, for task completion callbacks.
func (s *TeamService) ReleaseTask(ctx context.Context, teamID string) error {
	return s.teams.DecrementLoad(ctx, teamID)
}

// Workloads reports per-team utilization.
func (s *TeamService) Workloads(ctx context.Context) ([]TeamWorkload, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, err
	}

	workloads := make([]TeamWorkload, 0, len(teams))
	for _, team := range teams {
		w := TeamWorkload{
			TeamID:       team.ID,
			Name:         team.Name,
			Category:     team.Category,
			Capacity:     team.Capacity,
			CurrentLoad:  team.CurrentLoad,
			Availability: team.Availability(),
		}
		if team.Capacity > 0 {
			w.UtilizationPct = float64(team.CurrentLoad) / float64(team.Capacity) * 100
		}
		workloads = append(workloads, w)
	}
	return workloads, nil
}

func teamFromInput(input TeamInput) (*domain.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("team name is required", nil)
	}
	category, ok := domain.ParseCategory(input.Category)
	if !ok {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	if input.Capacity <= 0 {
		return nil, apperrors.NewValidationError("capacity must be positive", map[string]any{"capacity": input.Capacity})
	}
	if input.PriorityWeight < 0 {
		return nil, apperrors.NewValidationError("priority weight cannot be negative", map[string]any{"priority_weight": input.PriorityWeight})
	}

	weight := input.PriorityWeight
	if weight == 0 {
		weight = 1.0
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	skills := make([]string, 0, len(input.Skills))
	for _, skill := range input.Skills {
		skill = strings.TrimSpace(skill)
		if skill != "" {
			skills = append(skills, skill)
		}
	}

	return &domain.Team{
		Name:           name,
		Category:       category,
		Description:    strings.TrimSpace(input.Description),
		Skills:         skills,
		Capacity:       input.Capacity,
		PriorityWeight: weight,
		IsActive:       isActive,
	}, nil
}
