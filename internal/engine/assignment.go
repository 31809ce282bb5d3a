package engine

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
)

// AssignmentConfig carries the strategy scoring constants. The fixed
// per-strategy confidences and factor weights are empirically chosen and
// preserved as-is.
type AssignmentConfig struct {
	SkillMatchWeight        float64
	SkillAvailabilityWeight float64
	SkillPriorityWeight     float64

	WorkloadAvailabilityWeight float64
	WorkloadPriorityWeight     float64
	WorkloadEfficiencyWeight   float64

	PriorityScoreWeight        float64
	PriorityAvailabilityWeight float64

	WorkloadConfidence   float64
	RoundRobinConfidence float64
	PriorityConfidence   float64

	// TaskPriorityWeights map task priority to its urgency multiplier.
	TaskPriorityWeights map[domain.Priority]float64

	// VoteWeights are the per-strategy base weights for hybrid voting.
	VoteWeights map[domain.AssignmentStrategy]float64
	// DefaultVoteWeight applies to strategies absent from VoteWeights.
	DefaultVoteWeight float64
	// ConsensusBoost rewards unanimous strategy agreement.
	ConsensusBoost float64

	MaxAlternatives int
}

// DefaultAssignmentConfig returns the production constants.
func DefaultAssignmentConfig() AssignmentConfig {
	return AssignmentConfig{
		SkillMatchWeight:        0.6,
		SkillAvailabilityWeight: 0.3,
		SkillPriorityWeight:     0.1,

		WorkloadAvailabilityWeight: 0.5,
		WorkloadPriorityWeight:     0.3,
		WorkloadEfficiencyWeight:   0.2,

		PriorityScoreWeight:        0.7,
		PriorityAvailabilityWeight: 0.3,

		WorkloadConfidence:   0.9,
		RoundRobinConfidence: 0.8,
		PriorityConfidence:   0.85,

		TaskPriorityWeights: map[domain.Priority]float64{
			domain.PriorityCritical: 3.0,
			domain.PriorityHigh:     2.0,
			domain.PriorityMedium:   1.0,
			domain.PriorityLow:      0.5,
		},

		VoteWeights: map[domain.AssignmentStrategy]float64{
			domain.AssignSkillBased:    0.4,
			domain.AssignWorkloadBased: 0.3,
			domain.AssignPriorityBased: 0.3,
		},
		DefaultVoteWeight: 0.2,
		ConsensusBoost:    1.2,

		MaxAlternatives: 3,
	}
}

// AssignmentEngine scores a team roster against a classified task. Pure and
// synchronous: it never mutates teams and never touches I/O.
type AssignmentEngine struct {
	cfg      AssignmentConfig
	keywords Keywords
	logger   *zap.Logger
}

// NewAssignmentEngine constructs the engine with injected skill dictionaries.
func NewAssignmentEngine(cfg AssignmentConfig, kw Keywords, logger *zap.Logger) *AssignmentEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentEngine{cfg: cfg, keywords: kw, logger: logger}
}

// Assign runs the named strategy over the roster. The task must carry a
// category; the roster is read-only input supplied by the caller.
func (e *AssignmentEngine) Assign(task domain.Task, teams []domain.Team, strategy domain.AssignmentStrategy) (*domain.AssignmentResult, error) {
	if task.Category == "" {
		return nil, &AssignmentError{Message: "task category is required for assignment"}
	}
	if len(teams) == 0 {
		return nil, &AssignmentError{
			Message: fmt.Sprintf("no teams supplied for category %s", task.Category),
		}
	}

	switch strategy {
	case domain.AssignSkillBased:
		return e.assignSkillBased(task, teams)
	case domain.AssignWorkloadBased:
		return e.assignWorkloadBased(task, teams)
	case domain.AssignRoundRobin:
		return e.assignRoundRobin(task, teams)
	case domain.AssignPriorityBased:
		return e.assignPriorityBased(task, teams)
	case domain.AssignHybrid:
		return e.assignHybrid(task, teams)
	default:
		return nil, &AssignmentError{
			Strategy: string(strategy),
			Message:  "unknown assignment strategy",
		}
	}
}

// assignSkillBased matches team skills against the task text.
func (e *AssignmentEngine) assignSkillBased(task domain.Task, teams []domain.Team) (*domain.AssignmentResult, error) {
	text := strings.ToLower(task.Title + " " + task.Description)
	relevantSkills := e.keywords.CategorySkills[task.Category]

	var best *domain.Team
	bestScore := 0.0
	teamScores := make(map[string]float64, len(teams))
	var alternatives []domain.AlternativeAssignment

	for i := range teams {
		team := &teams[i]
		if !team.IsActive || team.Availability() <= 0 {
			teamScores[team.Name] = 0
			continue
		}

		skillScore := 0.0
		for _, skill := range team.Skills {
			if strings.Contains(text, strings.ToLower(skill)) {
				skillScore += 2.0
			}
		}
		for _, skill := range relevantSkills {
			lowered := strings.ToLower(skill)
			if strings.Contains(text, lowered) && teamHasSkill(team, lowered) {
				skillScore += 1.5
			}
		}
		if len(team.Skills) > 0 {
			skillScore /= float64(len(team.Skills))
		}

		availabilityRatio := availabilityRatio(team)
		total := skillScore*e.cfg.SkillMatchWeight +
			availabilityRatio*e.cfg.SkillAvailabilityWeight +
			team.PriorityWeight*e.cfg.SkillPriorityWeight
		teamScores[team.Name] = total

		alternatives = append(alternatives, domain.AlternativeAssignment{
			TeamID:    team.ID,
			TeamName:  team.Name,
			Score:     total,
			Reasoning: fmt.Sprintf("Skill match: %.2f, Availability: %.2f", skillScore, availabilityRatio),
		})

		if total > bestScore {
			bestScore = total
			best = team
		}
	}

	if best == nil {
		return nil, &AssignmentError{
			Strategy: string(domain.AssignSkillBased),
			Message:  "no team scored above zero for skill-based assignment",
		}
	}

	return &domain.AssignmentResult{
		AssignedTeamID: best.ID,
		Confidence:     clamp01(bestScore),
		Strategy:       domain.AssignSkillBased,
		Reasoning:      fmt.Sprintf("Assigned to %s based on skill matching (score: %.2f)", best.Name, bestScore),
		TeamScores:     teamScores,
		FactorsConsidered: []string{
			"skill_matching", "team_availability", "priority_weight",
		},
		Alternatives: e.rankAlternatives(alternatives),
	}, nil
}

// assignWorkloadBased balances by spare capacity, weighted by task urgency.
func (e *AssignmentEngine) assignWorkloadBased(task domain.Task, teams []domain.Team) (*domain.AssignmentResult, error) {
	priorityWeight := e.taskPriorityWeight(task.Priority)

	available := availableTeams(teams)
	if len(available) == 0 {
		return nil, &AssignmentError{
			Strategy: string(domain.AssignWorkloadBased),
			Message:  "no active team with availability for workload-based assignment",
		}
	}

	var best *domain.Team
	bestScore := 0.0
	teamScores := make(map[string]float64, len(available))
	var alternatives []domain.AlternativeAssignment

	for i := range available {
		team := &available[i]
		availRatio := availabilityRatio(team)
		loadRatio := loadRatio(team)

		total := availRatio*e.cfg.WorkloadAvailabilityWeight +
			team.PriorityWeight*priorityWeight*e.cfg.WorkloadPriorityWeight +
			(1-loadRatio)*e.cfg.WorkloadEfficiencyWeight
		teamScores[team.Name] = total

		alternatives = append(alternatives, domain.AlternativeAssignment{
			TeamID:    team.ID,
			TeamName:  team.Name,
			Score:     total,
			Reasoning: fmt.Sprintf("Availability: %.2f, Load: %.2f", availRatio, loadRatio),
		})

		if total > bestScore {
			bestScore = total
			best = team
		}
	}

	if best == nil {
		return nil, &AssignmentError{
			Strategy: string(domain.AssignWorkloadBased),
			Message:  "no team scored above zero for workload-based assignment",
		}
	}

	return &domain.AssignmentResult{
		AssignedTeamID: best.ID,
		Confidence:     e.cfg.WorkloadConfidence,
		Strategy:       domain.AssignWorkloadBased,
		Reasoning:      fmt.Sprintf("Assigned to %s for optimal workload distribution", best.Name),
		TeamScores:     teamScores,
		FactorsConsidered: []string{
			"workload_balance", "team_capacity", "task_priority", "team_efficiency",
		},
		Alternatives: e.rankAlternatives(alternatives),
	}, nil
}

// assignRoundRobin picks the available team with the lowest current load;
// the first team in roster order wins ties.
func (e *AssignmentEngine) assignRoundRobin(task domain.Task, teams []domain.Team) (*domain.AssignmentResult, error) {
	available := availableTeams(teams)
	if len(available) == 0 {
		return nil, &AssignmentError{
			Strategy: string(domain.AssignRoundRobin),
			Message:  "no active team with availability for round-robin assignment",
		}
	}

	selected := &available[0]
	for i := range available[1:] {
		team := &available[i+1]
		if team.CurrentLoad < selected.CurrentLoad {
			selected = team
		}
	}

	teamScores := make(map[string]float64, len(available))
	for _, team := range available {
		teamScores[team.Name] = 1.0 / float64(team.CurrentLoad+1)
	}

	byLoad := make([]domain.Team, len(available))
	copy(byLoad, available)
	sort.SliceStable(byLoad, func(i, j int) bool {
		return byLoad[i].CurrentLoad < byLoad[j].CurrentLoad
	})

	var alternatives []domain.AlternativeAssignment
	for _, team := range byLoad {
		if len(alternatives) == e.cfg.MaxAlternatives {
			break
		}
		alternatives = append(alternatives, domain.AlternativeAssignment{
			TeamID:    team.ID,
			TeamName:  team.Name,
			Score:     teamScores[team.Name],
			Reasoning: fmt.Sprintf("Current load: %d", team.CurrentLoad),
		})
	}

	return &domain.AssignmentResult{
		AssignedTeamID: selected.ID,
		Confidence:     e.cfg.RoundRobinConfidence,
		Strategy:       domain.AssignRoundRobin,
		Reasoning:      fmt.Sprintf("Assigned to %s using round-robin (lowest load: %d)", selected.Name, selected.CurrentLoad),
		TeamScores:     teamScores,
		FactorsConsidered: []string{
			"current_workload", "team_availability",
		},
		Alternatives: alternatives,
	}, nil
}

// assignPriorityBased routes urgent tasks toward high-priority-weight teams.
func (e *AssignmentEngine) assignPriorityBased(task domain.Task, teams []domain.Team) (*domain.AssignmentResult, error) {
	multiplier := e.taskPriorityWeight(task.Priority)

	available := availableTeams(teams)
	if len(available) == 0 {
		return nil, &AssignmentError{
			Strategy: string(domain.AssignPriorityBased),
			Message:  "no active team with availability for priority-based assignment",
		}
	}

	var best *domain.Team
	bestScore := 0.0
	teamScores := make(map[string]float64, len(available))
	var alternatives []domain.AlternativeAssignment

	for i := range available {
		team := &available[i]
		total := team.PriorityWeight*multiplier*e.cfg.PriorityScoreWeight +
			availabilityRatio(team)*e.cfg.PriorityAvailabilityWeight
		teamScores[team.Name] = total

		alternatives = append(alternatives, domain.AlternativeAssignment{
			TeamID:    team.ID,
			TeamName:  team.Name,
			Score:     total,
			Reasoning: fmt.Sprintf("Priority weight: %g, Task priority: %s", team.PriorityWeight, normalizedPriority(task.Priority)),
		})

		if total > bestScore {
			bestScore = total
			best = team
		}
	}

	if best == nil {
		return nil, &AssignmentError{
			Strategy: string(domain.AssignPriorityBased),
			Message:  "no team scored above zero for priority-based assignment",
		}
	}

	return &domain.AssignmentResult{
		AssignedTeamID: best.ID,
		Confidence:     e.cfg.PriorityConfidence,
		Strategy:       domain.AssignPriorityBased,
		Reasoning:      fmt.Sprintf("Assigned to %s based on priority matching for %s task", best.Name, normalizedPriority(task.Priority)),
		TeamScores:     teamScores,
		FactorsConsidered: []string{
			"task_priority", "team_priority_weight", "availability",
		},
		Alternatives: e.rankAlternatives(alternatives),
	}, nil
}

// taskPriorityWeight normalizes the task priority and maps it to its
// urgency multiplier; unparseable values default to Medium.
func (e *AssignmentEngine) taskPriorityWeight(priority domain.Priority) float64 {
	return e.cfg.TaskPriorityWeights[normalizedPriority(priority)]
}

func normalizedPriority(priority domain.Priority) domain.Priority {
	if parsed, ok := domain.ParsePriority(string(priority)); ok {
		return parsed
	}
	return domain.PriorityMedium
}

// rankAlternatives sorts descending by score (stable, so roster order
// breaks ties) and truncates to the configured maximum.
func (e *AssignmentEngine) rankAlternatives(alternatives []domain.AlternativeAssignment) []domain.AlternativeAssignment {
	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].Score > alternatives[j].Score
	})
	if len(alternatives) > e.cfg.MaxAlternatives {
		alternatives = alternatives[:e.cfg.MaxAlternatives]
	}
	return alternatives
}

func availableTeams(teams []domain.Team) []domain.Team {
	var available []domain.Team
	for _, team := range teams {
		if team.IsActive && team.Availability() > 0 {
			available = append(available, team)
		}
	}
	return available
}

func availabilityRatio(team *domain.Team) float64 {
	if team.Capacity <= 0 {
		return 0
	}
	return float64(team.Availability()) / float64(team.Capacity)
}

func loadRatio(team *domain.Team) float64 {
	if team.Capacity <= 0 {
		return 1.0
	}
	return float64(team.CurrentLoad) / float64(team.Capacity)
}

func teamHasSkill(team *domain.Team, lowered string) bool {
	for _, skill := range team.Skills {
		if strings.ToLower(skill) == lowered {
			return true
		}
	}
	return false
}
