package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/engine"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/observability"
)

// StatsWorker consumes decision events and maintains the accuracy tracker
// and metrics counters off the request path.
type StatsWorker struct {
	dispatcher events.Dispatcher
	tracker    *engine.AccuracyTracker
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewStatsWorker constructs the worker.
func NewStatsWorker(dispatcher events.Dispatcher, tracker *engine.AccuracyTracker, metrics *observability.Metrics, logger *zap.Logger) *StatsWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsWorker{dispatcher: dispatcher, tracker: tracker, metrics: metrics, logger: logger}
}

// Register subscribes the worker to decision events.
func (w *StatsWorker) Register() {
	if w.dispatcher == nil {
		return
	}
	w.dispatcher.Subscribe(events.EventTaskClassified, w.onTaskClassified)
	w.dispatcher.Subscribe(events.EventTaskAssigned, w.onTaskAssigned)
}

func (w *StatsWorker) onTaskClassified(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TaskClassifiedPayload)
	if !ok {
		w.logger.Warn("unexpected payload for task_classified event", zap.String("event_id", event.ID))
		return nil
	}

	if w.tracker != nil {
		w.tracker.RecordClassification(&domain.ClassificationResult{
			Category:   payload.Category,
			Priority:   payload.Priority,
			Confidence: payload.Confidence,
			Strategy:   payload.Strategy,
		})
	}
	w.metrics.RecordClassification(string(payload.Strategy))
	return nil
}

func (w *StatsWorker) onTaskAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TaskAssignedPayload)
	if !ok {
		w.logger.Warn("unexpected payload for task_assigned event", zap.String("event_id", event.ID))
		return nil
	}

	if w.tracker != nil {
		w.tracker.RecordAssignment(payload.Strategy, payload.Category, payload.Confidence, true)
	}
	w.metrics.RecordAssignment(string(payload.Strategy))
	return nil
}
