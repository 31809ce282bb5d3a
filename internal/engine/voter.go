package engine

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
)

// teamVote accumulates weighted support for one candidate team.
type teamVote struct {
	teamID     string
	teamName   string
	score      float64
	strategies []string
}

// assignHybrid runs skill-based, workload-based, and priority-based and
// performs weighted voting across their picks. Round-robin stays out of the
// vote; it exists only as a standalone fallback strategy.
func (e *AssignmentEngine) assignHybrid(task domain.Task, teams []domain.Team) (*domain.AssignmentResult, error) {
	strategies := []domain.AssignmentStrategy{
		domain.AssignSkillBased,
		domain.AssignWorkloadBased,
		domain.AssignPriorityBased,
	}

	type strategyResult struct {
		strategy domain.AssignmentStrategy
		result   *domain.AssignmentResult
	}
	var results []strategyResult
	for _, strategy := range strategies {
		result, err := e.Assign(task, teams, strategy)
		if err != nil {
			e.logger.Warn("strategy failed in hybrid assignment",
				zap.String("strategy", string(strategy)), zap.Error(err))
			continue
		}
		results = append(results, strategyResult{strategy: strategy, result: result})
	}

	if len(results) == 0 {
		return nil, &AssignmentError{
			Strategy: string(domain.AssignHybrid),
			Message:  "all strategies failed in hybrid assignment",
		}
	}

	namesByID := make(map[string]string, len(teams))
	for _, team := range teams {
		namesByID[team.ID] = team.Name
	}

	// Votes keyed in first-encountered order keep the winner deterministic.
	var votes []*teamVote
	votesByTeam := make(map[string]*teamVote)
	totalConfidence := 0.0
	for _, sr := range results {
		base, ok := e.cfg.VoteWeights[sr.strategy]
		if !ok {
			base = e.cfg.DefaultVoteWeight
		}
		weight := base * sr.result.Confidence
		totalConfidence += sr.result.Confidence

		vote, ok := votesByTeam[sr.result.AssignedTeamID]
		if !ok {
			vote = &teamVote{
				teamID:   sr.result.AssignedTeamID,
				teamName: namesByID[sr.result.AssignedTeamID],
			}
			votesByTeam[sr.result.AssignedTeamID] = vote
			votes = append(votes, vote)
		}
		vote.score += weight
		vote.strategies = append(vote.strategies, string(sr.strategy))
	}

	winner := votes[0]
	for _, vote := range votes[1:] {
		if vote.score > winner.score {
			winner = vote
		}
	}

	confidence := totalConfidence / float64(len(results))
	if len(votes) == 1 {
		// Every surviving strategy chose the same team.
		confidence = clamp01(confidence * e.cfg.ConsensusBoost)
	}

	teamScores := make(map[string]float64, len(votes))
	for _, vote := range votes {
		teamScores[vote.teamName] = vote.score
	}

	ranked := make([]*teamVote, len(votes))
	copy(ranked, votes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	var alternatives []domain.AlternativeAssignment
	for _, vote := range ranked {
		if len(alternatives) == e.cfg.MaxAlternatives {
			break
		}
		alternatives = append(alternatives, domain.AlternativeAssignment{
			TeamID:    vote.teamID,
			TeamName:  vote.teamName,
			Score:     vote.score,
			Reasoning: fmt.Sprintf("Voted by: %s", strings.Join(vote.strategies, ", ")),
		})
	}

	return &domain.AssignmentResult{
		AssignedTeamID: winner.teamID,
		Confidence:     clamp01(confidence),
		Strategy:       domain.AssignHybrid,
		Reasoning: fmt.Sprintf("Hybrid assignment to %s (strategies: %s)",
			winner.teamName, strings.Join(winner.strategies, ", ")),
		TeamScores: teamScores,
		FactorsConsidered: []string{
			"skill_matching", "workload_balance", "priority_alignment", "multi_strategy_consensus",
		},
		Alternatives: alternatives,
	}, nil
}
