package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/spec-kit/triage-service/internal/domain"
)

func TestAssignHybridConsensusBoostsConfidence(t *testing.T) {
	engine := newAssignmentEngine()
	// Alpha dominates on skills, capacity, and priority weight, so all three
	// voting strategies agree on it.
	teams := []domain.Team{
		{ID: "alpha", Name: "Alpha", Category: domain.CategoryIT,
			Skills: []string{"network"}, Capacity: 10, CurrentLoad: 2, PriorityWeight: 2.0, IsActive: true},
		{ID: "beta", Name: "Beta", Category: domain.CategoryIT,
			Skills: []string{"payroll"}, Capacity: 10, CurrentLoad: 9, PriorityWeight: 0.8, IsActive: true},
	}
	task := itTask(domain.PriorityCritical, "Network outage", "the core network switch is down")

	result, err := engine.Assign(task, teams, domain.AssignHybrid)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.AssignedTeamID != "alpha" {
		t.Fatalf("expected consensus on alpha, got %s", result.AssignedTeamID)
	}
	if result.Strategy != domain.AssignHybrid {
		t.Fatalf("unexpected strategy %s", result.Strategy)
	}

	// Unanimity earns the 1.2x boost over the mean strategy confidence.
	total := 0.0
	for _, strategy := range []domain.AssignmentStrategy{
		domain.AssignSkillBased, domain.AssignWorkloadBased, domain.AssignPriorityBased,
	} {
		single, err := engine.Assign(task, teams, strategy)
		if err != nil {
			t.Fatalf("assign %s: %v", strategy, err)
		}
		if single.AssignedTeamID != "alpha" {
			t.Fatalf("fixture broken, %s picked %s", strategy, single.AssignedTeamID)
		}
		total += single.Confidence
	}
	want := clamp01(total / 3 * 1.2)
	if math.Abs(result.Confidence-want) > 1e-9 {
		t.Fatalf("expected boosted confidence %v, got %v", want, result.Confidence)
	}
	if result.Confidence < total/3 {
		t.Fatal("consensus must not lower confidence below the mean")
	}
}

func TestAssignHybridSplitVote(t *testing.T) {
	engine := newAssignmentEngine()
	// Skillful is the only skill match but is nearly full; Fresh has all the
	// spare capacity and the higher priority weight. The strategies split.
	teams := []domain.Team{
		{ID: "skillful", Name: "Skillful", Category: domain.CategoryIT,
			Skills: []string{"database"}, Capacity: 10, CurrentLoad: 9, PriorityWeight: 0.5, IsActive: true},
		{ID: "fresh", Name: "Fresh", Category: domain.CategoryIT,
			Skills: []string{"javascript"}, Capacity: 10, CurrentLoad: 0, PriorityWeight: 2.0, IsActive: true},
	}
	task := itTask(domain.PriorityCritical, "Database outage", "the database is down")

	skill, err := engine.Assign(task, teams, domain.AssignSkillBased)
	if err != nil {
		t.Fatalf("assign skill: %v", err)
	}
	if skill.AssignedTeamID != "skillful" {
		t.Fatalf("fixture broken, skill picked %s", skill.AssignedTeamID)
	}
	workload, err := engine.Assign(task, teams, domain.AssignWorkloadBased)
	if err != nil {
		t.Fatalf("assign workload: %v", err)
	}
	if workload.AssignedTeamID != "fresh" {
		t.Fatalf("fixture broken, workload picked %s", workload.AssignedTeamID)
	}
	priority, err := engine.Assign(task, teams, domain.AssignPriorityBased)
	if err != nil {
		t.Fatalf("assign priority: %v", err)
	}
	if priority.AssignedTeamID != "fresh" {
		t.Fatalf("fixture broken, priority picked %s", priority.AssignedTeamID)
	}

	result, err := engine.Assign(task, teams, domain.AssignHybrid)
	if err != nil {
		t.Fatalf("assign hybrid: %v", err)
	}

	skillfulScore := 0.4 * skill.Confidence
	freshScore := 0.3*workload.Confidence + 0.3*priority.Confidence
	if freshScore > skillfulScore {
		if result.AssignedTeamID != "fresh" {
			t.Fatalf("expected fresh to win the vote, got %s", result.AssignedTeamID)
		}
	} else {
		if result.AssignedTeamID != "skillful" {
			t.Fatalf("expected skillful to win the vote, got %s", result.AssignedTeamID)
		}
	}

	// No unanimity, no boost.
	mean := (skill.Confidence + workload.Confidence + priority.Confidence) / 3
	if math.Abs(result.Confidence-clamp01(mean)) > 1e-9 {
		t.Fatalf("expected unboosted mean confidence %v, got %v", mean, result.Confidence)
	}

	if math.Abs(result.TeamScores["Skillful"]-skillfulScore) > 1e-9 {
		t.Fatalf("expected weighted vote %v for Skillful, got %v", skillfulScore, result.TeamScores["Skillful"])
	}
	if math.Abs(result.TeamScores["Fresh"]-freshScore) > 1e-9 {
		t.Fatalf("expected weighted vote %v for Fresh, got %v", freshScore, result.TeamScores["Fresh"])
	}
}

func TestAssignHybridFailsWhenAllStrategiesFail(t *testing.T) {
	engine := newAssignmentEngine()
	teams := []domain.Team{
		{ID: "off", Name: "Off", Category: domain.CategoryIT, Capacity: 10, CurrentLoad: 0, IsActive: false},
	}

	_, err := engine.Assign(itTask(domain.PriorityHigh, "Task", "work"), teams, domain.AssignHybrid)
	var asgErr *AssignmentError
	if !errors.As(err, &asgErr) {
		t.Fatalf("expected AssignmentError, got %v", err)
	}
	if asgErr.Strategy != string(domain.AssignHybrid) {
		t.Fatalf("error should name the hybrid stage, got %q", asgErr.Strategy)
	}
}

func TestAssignHybridReportsVotingStrategies(t *testing.T) {
	engine := newAssignmentEngine()
	teams := []domain.Team{
		{ID: "alpha", Name: "Alpha", Category: domain.CategoryIT,
			Skills: []string{"network"}, Capacity: 10, CurrentLoad: 2, PriorityWeight: 2.0, IsActive: true},
	}

	result, err := engine.Assign(itTask(domain.PriorityHigh, "Network issue", "network down"), teams, domain.AssignHybrid)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(result.Alternatives) != 1 {
		t.Fatalf("expected a single voted candidate, got %d", len(result.Alternatives))
	}
	found := false
	for _, factor := range result.FactorsConsidered {
		if factor == "multi_strategy_consensus" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected multi_strategy_consensus factor, got %v", result.FactorsConsidered)
	}
}
