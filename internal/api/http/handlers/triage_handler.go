package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/dto"
	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/service"
	apperrors "github.com/spec-kit/triage-service/pkg/util/errorutil"
)

// TriageHandler exposes classification and assignment endpoints.
type TriageHandler struct {
	service *service.TriageService
}

// NewTriageHandler constructs handler.
func NewTriageHandler(triageService *service.TriageService) *TriageHandler {
	return &TriageHandler{service: triageService}
}

// Classify POST /v1/classify.
func (h *TriageHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperrors.NewValidationError("text required", nil)
	}

	result, err := h.service.ClassifyText(c.UserContext(), service.ClassifyInput{
		Title:    req.Title,
		Text:     req.Text,
		Strategy: req.Strategy,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": classificationResponse(result)})
}

// Triage POST /v1/tasks.
func (h *TriageHandler) Triage(c *fiber.Ctx) error {
	var req dto.TriageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Description) == "" {
		return apperrors.NewValidationError("description required", nil)
	}

	outcome, err := h.service.TriageTask(c.UserContext(), service.TriageInput{
		Title:                  req.Title,
		Description:            req.Description,
		ClassificationStrategy: req.ClassificationStrategy,
		AssignmentStrategy:     req.AssignmentStrategy,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": triageResponse(outcome)})
}

// Assign POST /v1/tasks/:id/assignments.
func (h *TriageHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	outcome, err := h.service.AssignTask(c.UserContext(), c.Params("id"), req.Strategy)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": triageResponse(outcome)})
}

// GetTask GET /v1/tasks/:id.
func (h *TriageHandler) GetTask(c *fiber.Ctx) error {
	task, err := h.service.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}

// ListTasks GET /v1/tasks.
func (h *TriageHandler) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.service.ListTasks(c.UserContext(), parseTaskQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Decisions GET /v1/tasks/:id/decisions.
func (h *TriageHandler) Decisions(c *fiber.Ctx) error {
	classifications, assignments, err := h.service.TaskDecisions(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	response := dto.TaskDecisionsResponse{
		Classifications: make([]dto.ClassificationResponse, 0, len(classifications)),
		Assignments:     make([]dto.AssignmentResponse, 0, len(assignments)),
	}
	for i := range classifications {
		response.Classifications = append(response.Classifications, classificationResponse(&classifications[i]))
	}
	for i := range assignments {
		response.Assignments = append(response.Assignments, assignmentResponse(&assignments[i]))
	}
	return c.JSON(fiber.Map{"data": response})
}

func parseTaskQuery(c *fiber.Ctx) repository.TaskFilter {
	filter := repository.TaskFilter{}
	if category, ok := domain.ParseCategory(c.Query("category")); ok {
		filter.Category = &category
	}
	if priority, ok := domain.ParsePriority(c.Query("priority")); ok {
		filter.Priority = &priority
	}
	if teamID := c.Query("team_id"); teamID != "" {
		filter.AssignedTeamID = &teamID
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filter.Offset = offset
	}
	return filter
}

func classificationResponse(result *domain.ClassificationResult) dto.ClassificationResponse {
	return dto.ClassificationResponse{
		Category:       result.Category,
		Priority:       result.Priority,
		Confidence:     result.Confidence,
		Strategy:       result.Strategy,
		Reasoning:      result.Reasoning,
		CategoryScores: result.CategoryScores,
		PriorityScores: result.PriorityScores,
	}
}

func assignmentResponse(result *domain.AssignmentResult) dto.AssignmentResponse {
	alternatives := make([]dto.AlternativeResponse, 0, len(result.Alternatives))
	for _, alt := range result.Alternatives {
		alternatives = append(alternatives, dto.AlternativeResponse{
			TeamID:    alt.TeamID,
			TeamName:  alt.TeamName,
			Score:     alt.Score,
			Reasoning: alt.Reasoning,
		})
	}
	return dto.AssignmentResponse{
		TeamID:            result.AssignedTeamID,
		Confidence:        result.Confidence,
		Strategy:          result.Strategy,
		Reasoning:         result.Reasoning,
		TeamScores:        result.TeamScores,
		FactorsConsidered: result.FactorsConsidered,
		Alternatives:      alternatives,
	}
}

func taskResponse(task *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Category:       task.Category,
		Priority:       task.Priority,
		AssignedTeamID: task.AssignedTeamID,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

func triageResponse(outcome *service.TriageOutcome) dto.TriageResponse {
	response := dto.TriageResponse{Task: taskResponse(outcome.Task)}
	if outcome.Classification != nil {
		classification := classificationResponse(outcome.Classification)
		response.Classification = &classification
	}
	if outcome.Assignment != nil {
		assignment := assignmentResponse(outcome.Assignment)
		response.Assignment = &assignment
	}
	return response
}
