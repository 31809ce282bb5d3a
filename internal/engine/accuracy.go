package engine

import (
	"sync"

	"github.com/spec-kit/triage-service/internal/domain"
)

// CounterStats is a total/correct pair with its derived ratio.
type CounterStats struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// ClassificationStats is a point-in-time snapshot of classification
// counters.
type ClassificationStats struct {
	TotalClassifications   int                     `json:"total_classifications"`
	CorrectClassifications int                     `json:"correct_classifications"`
	OverallAccuracy        float64                 `json:"overall_accuracy"`
	ByStrategy             map[string]CounterStats `json:"accuracy_by_strategy"`
	ByCategory             map[string]CounterStats `json:"accuracy_by_category"`
	ByPriority             map[string]CounterStats `json:"accuracy_by_priority"`
}

// AssignmentStats is a point-in-time snapshot of assignment counters.
type AssignmentStats struct {
	TotalAssignments      int                     `json:"total_assignments"`
	SuccessfulAssignments int                     `json:"successful_assignments"`
	FailedAssignments     int                     `json:"failed_assignments"`
	SuccessRate           float64                 `json:"success_rate"`
	AverageConfidence     float64                 `json:"average_confidence"`
	ByStrategy            map[string]CounterStats `json:"assignments_by_strategy"`
	ByCategory            map[string]CounterStats `json:"assignments_by_category"`
}

// AccuracyTracker keeps running outcome counters for offline evaluation.
// It is the engine's only shared mutable state; all access goes through
// the mutex. Decisions never read it.
type AccuracyTracker struct {
	mu sync.Mutex

	clsTotal      int
	clsCorrect    int
	clsByStrategy map[string]*CounterStats
	clsByCategory map[string]*CounterStats
	clsByPriority map[string]*CounterStats

	asgTotal      int
	asgSuccessful int
	asgFailed     int
	confidenceSum float64
	asgByStrategy map[string]*CounterStats
	asgByCategory map[string]*CounterStats
}

// NewAccuracyTracker creates an empty tracker.
func NewAccuracyTracker() *AccuracyTracker {
	return &AccuracyTracker{
		clsByStrategy: make(map[string]*CounterStats),
		clsByCategory: make(map[string]*CounterStats),
		clsByPriority: make(map[string]*CounterStats),
		asgByStrategy: make(map[string]*CounterStats),
		asgByCategory: make(map[string]*CounterStats),
	}
}

// RecordClassification counts one classification outcome by strategy.
func (t *AccuracyTracker) RecordClassification(result *domain.ClassificationResult) {
	if result == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.clsTotal++
	counter(t.clsByStrategy, string(result.Strategy)).Total++
}

// ValidateClassification scores a result against known-correct labels and
// reports whether both axes matched.
func (t *AccuracyTracker) ValidateClassification(result *domain.ClassificationResult, expectedCategory domain.Category, expectedPriority domain.Priority) bool {
	if result == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	correct := result.Category == expectedCategory && result.Priority == expectedPriority
	if correct {
		t.clsCorrect++
		counter(t.clsByStrategy, string(result.Strategy)).Correct++
	}

	cat := counter(t.clsByCategory, string(expectedCategory))
	cat.Total++
	if result.Category == expectedCategory {
		cat.Correct++
	}

	pri := counter(t.clsByPriority, string(expectedPriority))
	pri.Total++
	if result.Priority == expectedPriority {
		pri.Correct++
	}

	return correct
}

// RecordAssignment counts one assignment outcome.
func (t *AccuracyTracker) RecordAssignment(strategy domain.AssignmentStrategy, category domain.Category, confidence float64, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.asgTotal++
	s := counter(t.asgByStrategy, string(strategy))
	s.Total++
	c := counter(t.asgByCategory, string(category))
	c.Total++

	if success {
		t.asgSuccessful++
		t.confidenceSum += confidence
		s.Correct++
		c.Correct++
	} else {
		t.asgFailed++
	}
}

// ClassificationStats returns a consistent snapshot.
func (t *AccuracyTracker) ClassificationStats() ClassificationStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := ClassificationStats{
		TotalClassifications:   t.clsTotal,
		CorrectClassifications: t.clsCorrect,
		ByStrategy:             snapshot(t.clsByStrategy),
		ByCategory:             snapshot(t.clsByCategory),
		ByPriority:             snapshot(t.clsByPriority),
	}
	if t.clsTotal > 0 {
		stats.OverallAccuracy = float64(t.clsCorrect) / float64(t.clsTotal)
	}
	return stats
}

// AssignmentStats returns a consistent snapshot.
func (t *AccuracyTracker) AssignmentStats() AssignmentStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := AssignmentStats{
		TotalAssignments:      t.asgTotal,
		SuccessfulAssignments: t.asgSuccessful,
		FailedAssignments:     t.asgFailed,
		ByStrategy:            snapshot(t.asgByStrategy),
		ByCategory:            snapshot(t.asgByCategory),
	}
	if t.asgTotal > 0 {
		stats.SuccessRate = float64(t.asgSuccessful) / float64(t.asgTotal)
	}
	if t.asgSuccessful > 0 {
		stats.AverageConfidence = t.confidenceSum / float64(t.asgSuccessful)
	}
	return stats
}

func counter(m map[string]*CounterStats, key string) *CounterStats {
	if c, ok := m[key]; ok {
		return c
	}
	c := &CounterStats{}
	m[key] = c
	return c
}

func snapshot(m map[string]*CounterStats) map[string]CounterStats {
	out := make(map[string]CounterStats, len(m))
	for key, c := range m {
		copied := *c
		if copied.Total > 0 {
			copied.Accuracy = float64(copied.Correct) / float64(copied.Total)
		}
		out[key] = copied
	}
	return out
}
