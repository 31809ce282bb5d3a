package domain

import "strings"

// ClassificationStrategy enumerates classification decision algorithms.
type ClassificationStrategy string

const (
	StrategyRuleBased ClassificationStrategy = "rule_based"
	StrategyLLMBased  ClassificationStrategy = "llm_based"
	StrategyHybrid    ClassificationStrategy = "hybrid"
	StrategyEnsemble  ClassificationStrategy = "ensemble"
)

// ParseClassificationStrategy resolves a strategy name.
func ParseClassificationStrategy(s string) (ClassificationStrategy, bool) {
	switch ClassificationStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyRuleBased:
		return StrategyRuleBased, true
	case StrategyLLMBased:
		return StrategyLLMBased, true
	case StrategyHybrid:
		return StrategyHybrid, true
	case StrategyEnsemble:
		return StrategyEnsemble, true
	}
	return "", false
}

// ClassificationResult is the immutable outcome of one classification call.
type ClassificationResult struct {
	Category       Category
	Priority       Priority
	Confidence     float64
	Strategy       ClassificationStrategy
	Reasoning      string
	CategoryScores map[Category]float64
	PriorityScores map[Priority]float64
}
