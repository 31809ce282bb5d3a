package domain

import "strings"

// AssignmentStrategy enumerates assignment decision algorithms.
type AssignmentStrategy string

const (
	AssignSkillBased    AssignmentStrategy = "skill_based"
	AssignWorkloadBased AssignmentStrategy = "workload_based"
	AssignRoundRobin    AssignmentStrategy = "round_robin"
	AssignPriorityBased AssignmentStrategy = "priority_based"
	AssignHybrid        AssignmentStrategy = "hybrid"
)

// ParseAssignmentStrategy resolves a strategy name.
func ParseAssignmentStrategy(s string) (AssignmentStrategy, bool) {
	switch AssignmentStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case AssignSkillBased:
		return AssignSkillBased, true
	case AssignWorkloadBased:
		return AssignWorkloadBased, true
	case AssignRoundRobin:
		return AssignRoundRobin, true
	case AssignPriorityBased:
		return AssignPriorityBased, true
	case AssignHybrid:
		return AssignHybrid, true
	}
	return "", false
}

// AlternativeAssignment is a ranked runner-up for auditability.
type AlternativeAssignment struct {
	TeamID    string
	TeamName  string
	Score     float64
	Reasoning string
}

// AssignmentResult is the outcome of one assignment call. A successful
// result always carries an assigned team id; AssignedUserID is reserved
// for user-level routing and stays nil.
type AssignmentResult struct {
	AssignedTeamID    string
	AssignedUserID    *string
	Confidence        float64
	Strategy          AssignmentStrategy
	Reasoning         string
	TeamScores        map[string]float64
	FactorsConsidered []string
	Alternatives      []AlternativeAssignment
}
