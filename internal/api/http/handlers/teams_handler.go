package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/dto"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/service"
	apperrors "github.com/spec-kit/triage-service/pkg/util/errorutil"
)

// TeamsHandler manages roster endpoints.
type TeamsHandler struct {
	service *service.TeamService
}

// NewTeamsHandler constructs handler.
func NewTeamsHandler(teamService *service.TeamService) *TeamsHandler {
	return &TeamsHandler{service: teamService}
}

// CreateTeam POST /v1/teams.
func (h *TeamsHandler) CreateTeam(c *fiber.Ctx) error {
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	team, err := h.service.CreateTeam(c.UserContext(), teamInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": teamResponse(team)})
}

// UpdateTeam PUT /v1/teams/:id.
func (h *TeamsHandler) UpdateTeam(c *fiber.Ctx) error {
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	team, err := h.service.UpdateTeam(c.UserContext(), c.Params("id"), teamInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

// GetTeam GET /v1/teams/:id.
func (h *TeamsHandler) GetTeam(c *fiber.Ctx) error {
	team, err := h.service.GetTeam(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

// ListTeams GET /v1/teams.
func (h *TeamsHandler) ListTeams(c *fiber.Ctx) error {
	teams, err := h.service.ListTeams(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, teamResponse(&teams[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ReleaseTask POST /v1/teams/:id/release.
func (h *TeamsHandler) ReleaseTask(c *fiber.Ctx) error {
	if err := h.service.ReleaseTask(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Workloads GET /v1/teams/workloads.
func (h *TeamsHandler) Workloads(c *fiber.Ctx) error {
	workloads, err := h.service.Workloads(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workloads})
}

func teamInput(req dto.TeamRequest) service.TeamInput {
	return service.TeamInput{
		Name:           req.Name,
		Category:       req.Category,
		Description:    req.Description,
		Skills:         req.Skills,
		Capacity:       req.Capacity,
		PriorityWeight: req.PriorityWeight,
		IsActive:       req.IsActive,
	}
}

func teamResponse(team *domain.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:             team.ID,
		Name:           team.Name,
		Category:       team.Category,
		Description:    team.Description,
		Skills:         team.Skills,
		Capacity:       team.Capacity,
		CurrentLoad:    team.CurrentLoad,
		Availability:   team.Availability(),
		PriorityWeight: team.PriorityWeight,
		IsActive:       team.IsActive,
		CreatedAt:      team.CreatedAt,
		UpdatedAt:      team.UpdatedAt,
	}
}
