package worker

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/engine"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/observability"
)

func newStatsFixture() (events.Dispatcher, *engine.AccuracyTracker, *observability.Metrics) {
	dispatcher := events.NewInMemoryDispatcher()
	tracker := engine.NewAccuracyTracker()
	metrics := observability.NewMetrics()
	NewStatsWorker(dispatcher, tracker, metrics, nil).Register()
	return dispatcher, tracker, metrics
}

func publish(t *testing.T, dispatcher events.Dispatcher, eventType events.EventType, payload interface{}) {
	t.Helper()
	err := dispatcher.Publish(context.Background(), events.Event{
		ID:        "evt-1",
		Type:      eventType,
		TaskID:    "task-1",
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestStatsWorkerRecordsClassifiedEvents(t *testing.T) {
	dispatcher, tracker, metrics := newStatsFixture()

	publish(t, dispatcher, events.EventTaskClassified, events.TaskClassifiedPayload{
		Category:   domain.CategoryIT,
		Priority:   domain.PriorityCritical,
		Confidence: 0.92,
		Strategy:   domain.StrategyHybrid,
	})
	publish(t, dispatcher, events.EventTaskClassified, events.TaskClassifiedPayload{
		Category:   domain.CategoryHR,
		Priority:   domain.PriorityLow,
		Confidence: 0.4,
		Strategy:   domain.StrategyRuleBased,
	})

	stats := tracker.ClassificationStats()
	if stats.TotalClassifications != 2 {
		t.Fatalf("total classifications = %d, want 2", stats.TotalClassifications)
	}

	_, _, classifications, _ := metrics.Snapshot()
	if classifications[string(domain.StrategyHybrid)] != 1 {
		t.Fatalf("hybrid count = %d, want 1", classifications[string(domain.StrategyHybrid)])
	}
	if classifications[string(domain.StrategyRuleBased)] != 1 {
		t.Fatalf("rule_based count = %d, want 1", classifications[string(domain.StrategyRuleBased)])
	}
}

func TestStatsWorkerRecordsAssignedEvents(t *testing.T) {
	dispatcher, tracker, metrics := newStatsFixture()

	publish(t, dispatcher, events.EventTaskAssigned, events.TaskAssignedPayload{
		TeamID:     "team-1",
		Category:   domain.CategoryIT,
		Confidence: 0.9,
		Strategy:   domain.AssignWorkloadBased,
	})

	stats := tracker.AssignmentStats()
	if stats.TotalAssignments != 1 {
		t.Fatalf("total assignments = %d, want 1", stats.TotalAssignments)
	}
	if stats.SuccessfulAssignments != 1 {
		t.Fatalf("successful assignments = %d, want 1", stats.SuccessfulAssignments)
	}

	_, _, _, assignments := metrics.Snapshot()
	if assignments[string(domain.AssignWorkloadBased)] != 1 {
		t.Fatalf("workload count = %d, want 1", assignments[string(domain.AssignWorkloadBased)])
	}
}

func TestStatsWorkerIgnoresMalformedPayloads(t *testing.T) {
	dispatcher, tracker, metrics := newStatsFixture()

	publish(t, dispatcher, events.EventTaskClassified, "not a payload")
	publish(t, dispatcher, events.EventTaskAssigned, 42)

	if stats := tracker.ClassificationStats(); stats.TotalClassifications != 0 {
		t.Fatalf("total classifications = %d, want 0", stats.TotalClassifications)
	}
	if stats := tracker.AssignmentStats(); stats.TotalAssignments != 0 {
		t.Fatalf("total assignments = %d, want 0", stats.TotalAssignments)
	}
	_, _, classifications, assignments := metrics.Snapshot()
	if len(classifications) != 0 || len(assignments) != 0 {
		t.Fatalf("metrics recorded for malformed payloads: %v %v", classifications, assignments)
	}
}
