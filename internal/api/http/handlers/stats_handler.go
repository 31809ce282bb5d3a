package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/engine"
	"github.com/spec-kit/triage-service/internal/observability"
)

// StatsHandler exposes decision accuracy and metrics snapshots.
type StatsHandler struct {
	tracker *engine.AccuracyTracker
	metrics *observability.Metrics
}

// NewStatsHandler constructs handler.
func NewStatsHandler(tracker *engine.AccuracyTracker, metrics *observability.Metrics) *StatsHandler {
	return &StatsHandler{tracker: tracker, metrics: metrics}
}

// ClassificationStats GET /v1/stats/classifications.
func (h *StatsHandler) ClassificationStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.tracker.ClassificationStats()})
}

// AssignmentStats GET /v1/stats/assignments.
func (h *StatsHandler) AssignmentStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.tracker.AssignmentStats()})
}

// Metrics GET /v1/stats/metrics.
func (h *StatsHandler) Metrics(c *fiber.Ctx) error {
	requests, errs, classifications, assignments := h.metrics.Snapshot()
	return c.JSON(fiber.Map{"data": fiber.Map{
		"requests":        requests,
		"errors":          errs,
		"classifications": classifications,
		"assignments":     assignments,
	}})
}
