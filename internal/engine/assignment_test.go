package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/spec-kit/triage-service/internal/domain"
)

func newAssignmentEngine() *AssignmentEngine {
	return NewAssignmentEngine(DefaultAssignmentConfig(), DefaultKeywords(), nil)
}

func itTask(priority domain.Priority, title, description string) domain.Task {
	return domain.Task{
		ID:          "task-1",
		Title:       title,
		Description: description,
		Category:    domain.CategoryIT,
		Priority:    priority,
	}
}

func TestAssignWorkloadPrefersSpareCapacity(t *testing.T) {
	engine := newAssignmentEngine()
	teams := []domain.Team{
		{ID: "team-a", Name: "Infra A", Category: domain.CategoryIT, Capacity: 10, CurrentLoad: 8, PriorityWeight: 1.0, IsActive: true},
		{ID: "team-b", Name: "Infra B", Category: domain.CategoryIT, Capacity: 10, CurrentLoad: 2, PriorityWeight: 1.0, IsActive: true},
	}

	result, err := engine.Assign(itTask(domain.PriorityHigh, "Outage", "database latency spike"), teams, domain.AssignWorkloadBased)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.AssignedTeamID != "team-b" {
		t.Fatalf("expected the less loaded team, got %s", result.AssignedTeamID)
	}
	if result.Confidence != 0.9 {
		t.Fatalf("expected fixed workload confidence 0.9, got %v", result.Confidence)
	}
	if result.TeamScores["Infra B"] <= result.TeamScores["Infra A"] {
		t.Fatalf("expected Infra B to outscore Infra A: %v", result.TeamScores)
	}
	if result.Strategy != domain.AssignWorkloadBased {
		t.Fatalf("unexpected strategy %s", result.Strategy)
	}
}

func TestAssignSkillBasedMatchesTaskText(t *testing.T) {
	engine := newAssignmentEngine()
	teams := []domain.Team{
		{ID: "team-db", Name: "Data Platform", Category: domain.CategoryIT,
			Skills: []string{"database", "sql"}, Capacity: 10, CurrentLoad: 5, PriorityWeight: 1.0, IsActive: true},
		{ID: "team-fe", Name: "Frontend", Category: domain.CategoryIT,
			Skills: []string{"javascript", "css"}, Capacity: 10, CurrentLoad: 5, PriorityWeight: 1.0, IsActive: true},
	}

	result, err := engine.Assign(itTask(domain.PriorityHigh, "Database corruption", "the database index is corrupt"), teams, domain.AssignSkillBased)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.AssignedTeamID != "team-db" {
		t.Fatalf("expected the skill-matched team, got %s", result.AssignedTeamID)
	}
	if result.Confidence <= 0 || result.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", result.Confidence)
	}
	if result.TeamScores["Data Platform"] <= result.TeamScores["Frontend"] {
		t.Fatalf("expected skill match to dominate: %v", result.TeamScores)
	}
}

func TestAssignSkillBasedSkipsInactiveAndFullTeams(t *testing.T) {
	engine := newAssignmentEngine()
	teams := []domain.Team{
		{ID: "team-off", Name: "Disbanded", Category: domain.CategoryIT,
			Skills: []string{"database"}, Capacity: 10, CurrentLoad: 0, PriorityWeight: 2.0, IsActive: false},
		{ID: "team-full", Name: "Saturated", Category: domain.CategoryIT,
			Skills: []string{"database"}, Capacity: 5, CurrentLoad: 5, PriorityWeight: 2.0, IsActive: true},
		{ID: "team-free", Name: "On call", Category: domain.CategoryIT,
			Skills: []string{"database"}, Capacity: 5, CurrentLoad: 1, PriorityWeight: 1.0, IsActive: true},
	}

	result, err := engine.Assign(itTask(domain.PriorityMedium, "Query tuning", "database slow"), teams, domain.AssignSkillBased)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.AssignedTeamID != "team-free" {
		t.Fatalf("expected the only eligible team, got %s", result.AssignedTeamID)
	}
	if result.TeamScores["Disbanded"] != 0 || result.TeamScores["Saturated"] != 0 {
		t.Fatalf("ineligible teams must score zero: %v", result.TeamScores)
	}
}

func TestAssignSkillBasedFailsWhenNoTeamEligible(t *testing.T) {
	engine := newAssignmentEngine()
	teams := []domain.Team{
		{ID: "team-off", Name: "Disbanded", Category: domain.CategoryIT,
			Skills: []string{"database"}, Capacity: 10, CurrentLoad: 0, IsActive: false},
	}

	_, err := engine.Assign(itTask(domain.PriorityMedium, "Query tuning", "database slow"), teams, domain.AssignSkillBased)
	var asgErr *AssignmentError
	if !errors.As(err, &asgErr) {
		t.Fatalf("expected AssignmentError, got %v", err)
	}
	if asgErr.Strategy != string(domain.AssignSkillBased) {
		t.Fatalf("error should name the failing strategy, got %q", asgErr.Strategy)
	}
}

func TestAssignRoundRobinBreaksTiesInRosterOrder(t *testing.T) {
	engine := newAssignmentEngine()
	teams := []domain.Team{
		{ID: "team-1", Name: "First", Category: domain.CategoryIT, Capacity: 10, CurrentLoad: 3, IsActive: true},
		{ID: "team-2", Name: "Second", Category: domain.CategoryIT, Capacity: 10, CurrentLoad: 3, IsActive: true},
		{ID: "team-3", Name: "Third", Category: domain.CategoryIT, Capacity: 10, CurrentLoad: 7, IsActive: true},
	}

	result, err := engine.Assign(itTask(domain.PriorityMedium, "Rotation", "routine task"), teams, domain.AssignRoundRobin)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.AssignedTeamID != "team-1" {
		t.Fatalf("ties must resolve to roster order, got %s", result.AssignedTeamID)
	}
	if result.Confidence != 0.8 {
		t.Fatalf("expected fixed round-robin confidence 0.8, got %v", result.Confidence)
	}
	if math.Abs(result.TeamScores["First"]-0.25) > 1e-9 {
		t.Fatalf("expected score 1/(load+1)=0.25, got %v", result.TeamScores["First"])
	}
	if math.Abs(result.TeamScores["Third"]-0.125) > 1e-9 {
		t.Fatalf("expected score 0.125, got %v", result.TeamScores["Third"])
	}
}

func TestAssignPriorityBasedRoutesCriticalToHeavyweightTeam(t *testing.T) {
	engine := newAssignmentEngine()
	teams := []domain.Team{
		{ID: "team-light", Name: "Triage", Category: domain.CategoryIT, Capacity: 10, CurrentLoad: 1, PriorityWeight: 0.5, IsActive: true},
		{ID: "team-heavy", Name: "Escalations", Category: domain.CategoryIT, Capacity: 10, CurrentLoad: 6, PriorityWeight: 2.0, IsActive: true},
	}

	result, err := engine.Assign(itTask(domain.PriorityCritical, "Sev1", "production incident"), teams, domain.AssignPriorityBased)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.AssignedTeamID != "team-heavy" {
		t.Fatalf("expected the heavyweight team for a critical task, got %s", result.AssignedTeamID)
	}
	if result.Confidence != 0.85 {
		t.Fatalf("expected fixed priority confidence 0.85, got %v", result.Confidence)
	}

	// priority_weight * urgency * 0.7 + availability * 0.3
	wantHeavy := 2.0*3.0*0.7 + 0.4*0.3
	if math.Abs(result.TeamScores["Escalations"]-wantHeavy) > 1e-9 {
		t.Fatalf("expected score %v, got %v", wantHeavy, result.TeamScores["Escalations"])
	}
}

func TestAssignUnparseablePriorityDefaultsToMedium(t *testing.T) {
	engine := newAssignmentEngine()
	teams := []domain.Team{
		{ID: "team-a", Name: "Only", Category: domain.CategoryIT, Capacity: 10, CurrentLoad: 2, PriorityWeight: 1.0, IsActive: true},
	}

	odd, err := engine.Assign(itTask(domain.Priority("P0"), "Task", "work"), teams, domain.AssignPriorityBased)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	medium, err := engine.Assign(itTask(domain.PriorityMedium, "Task", "work"), teams, domain.AssignPriorityBased)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if odd.TeamScores["Only"] != medium.TeamScores["Only"] {
		t.Fatalf("unparseable priority must score like Medium: %v vs %v",
			odd.TeamScores["Only"], medium.TeamScores["Only"])
	}
}

func TestAssignValidatesInput(t *testing.T) {
	engine := newAssignmentEngine()
	teams := []domain.Team{
		{ID: "team-a", Name: "Only", Category: domain.CategoryIT, Capacity: 10, IsActive: true},
	}

	var asgErr *AssignmentError

	_, err := engine.Assign(domain.Task{Title: "no category"}, teams, domain.AssignWorkloadBased)
	if !errors.As(err, &asgErr) {
		t.Fatalf("expected AssignmentError for missing category, got %v", err)
	}

	_, err = engine.Assign(itTask(domain.PriorityHigh, "Task", "work"), nil, domain.AssignWorkloadBased)
	if !errors.As(err, &asgErr) {
		t.Fatalf("expected AssignmentError for empty roster, got %v", err)
	}

	_, err = engine.Assign(itTask(domain.PriorityHigh, "Task", "work"), teams, domain.AssignmentStrategy("coin_flip"))
	if !errors.As(err, &asgErr) {
		t.Fatalf("expected AssignmentError for unknown strategy, got %v", err)
	}
	if asgErr.Strategy != "coin_flip" {
		t.Fatalf("error should carry the failing strategy, got %q", asgErr.Strategy)
	}
}

func TestAssignAlternativesRankedAndCapped(t *testing.T) {
	engine := newAssignmentEngine()
	teams := []domain.Team{
		{ID: "t1", Name: "One", Category: domain.CategoryIT, Capacity: 10, CurrentLoad: 9, PriorityWeight: 1.0, IsActive: true},
		{ID: "t2", Name: "Two", Category: domain.CategoryIT, Capacity: 10, CurrentLoad: 6, PriorityWeight: 1.0, IsActive: true},
		{ID: "t3", Name: "Three", Category: domain.CategoryIT, Capacity: 10, CurrentLoad: 3, PriorityWeight: 1.0, IsActive: true},
		{ID: "t4", Name: "Four", Category: domain.CategoryIT, Capacity: 10, CurrentLoad: 0, PriorityWeight: 1.0, IsActive: true},
	}

	result, err := engine.Assign(itTask(domain.PriorityLow, "Cleanup", "housekeeping"), teams, domain.AssignWorkloadBased)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(result.Alternatives) != 3 {
		t.Fatalf("expected alternatives capped at 3, got %d", len(result.Alternatives))
	}
	for i := 1; i < len(result.Alternatives); i++ {
		if result.Alternatives[i].Score > result.Alternatives[i-1].Score {
			t.Fatalf("alternatives not sorted descending: %+v", result.Alternatives)
		}
	}
	if result.Alternatives[0].TeamID != "t4" {
		t.Fatalf("expected the winner to rank first, got %s", result.Alternatives[0].TeamID)
	}
}

func TestAssignedTeamAlwaysFromRoster(t *testing.T) {
	engine := newAssignmentEngine()
	teams := []domain.Team{
		{ID: "t1", Name: "One", Category: domain.CategoryIT, Skills: []string{"network"}, Capacity: 5, CurrentLoad: 1, PriorityWeight: 1.2, IsActive: true},
		{ID: "t2", Name: "Two", Category: domain.CategoryIT, Skills: []string{"database"}, Capacity: 5, CurrentLoad: 4, PriorityWeight: 0.9, IsActive: true},
	}
	roster := map[string]bool{"t1": true, "t2": true}

	strategies := []domain.AssignmentStrategy{
		domain.AssignSkillBased, domain.AssignWorkloadBased,
		domain.AssignRoundRobin, domain.AssignPriorityBased, domain.AssignHybrid,
	}
	for _, strategy := range strategies {
		result, err := engine.Assign(itTask(domain.PriorityHigh, "Network issue", "the network link to the database host flaps"), teams, strategy)
		if err != nil {
			t.Fatalf("assign %s: %v", strategy, err)
		}
		if !roster[result.AssignedTeamID] {
			t.Fatalf("%s assigned outside the roster: %s", strategy, result.AssignedTeamID)
		}
		if result.Confidence < 0 || result.Confidence > 1 {
			t.Fatalf("%s confidence out of range: %v", strategy, result.Confidence)
		}
		if len(result.FactorsConsidered) == 0 {
			t.Fatalf("%s reported no factors", strategy)
		}
	}
}
