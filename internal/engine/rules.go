package engine

import (
	"fmt"
	"strings"

	"github.com/spec-kit/triage-service/internal/domain"
)

// RuleClassifierConfig carries the tunable scoring constants. The defaults
// are empirically chosen and intentionally preserved; changing them changes
// classification behavior.
type RuleClassifierConfig struct {
	// MultiWordWeight scales each word of a multi-word pattern.
	MultiWordWeight float64
	// TitleCategoryBoost doubles category patterns that also occur in the title.
	TitleCategoryBoost float64
	// TitlePriorityBoost boosts priority patterns that also occur in the title.
	TitlePriorityBoost float64
	// PriorityTierWeights are the per-tier base weights.
	PriorityTierWeights map[domain.Priority]float64
	// PriorityMatchRatioFactor shrinks the match-ratio boost on the priority axis.
	PriorityMatchRatioFactor float64
	// MarginThreshold gates the per-axis confidence boost.
	MarginThreshold float64
	// MarginBoost is applied to an axis with a clear winner.
	MarginBoost float64
	// ConfidenceFloor and CategoryFloor trigger the coarse keyword fallback.
	ConfidenceFloor float64
	CategoryFloor   float64
	// FallbackConfidence is reported by the coarse fallback.
	FallbackConfidence float64
}

// DefaultRuleClassifierConfig returns the production constants.
func DefaultRuleClassifierConfig() RuleClassifierConfig {
	return RuleClassifierConfig{
		MultiWordWeight:    1.5,
		TitleCategoryBoost: 2.0,
		TitlePriorityBoost: 1.5,
		PriorityTierWeights: map[domain.Priority]float64{
			domain.PriorityCritical: 3.0,
			domain.PriorityHigh:     2.0,
			domain.PriorityMedium:   1.0,
			domain.PriorityLow:      0.5,
		},
		PriorityMatchRatioFactor: 0.5,
		MarginThreshold:          0.2,
		MarginBoost:              1.2,
		ConfidenceFloor:          0.05,
		CategoryFloor:            0.01,
		FallbackConfidence:       0.4,
	}
}

// RuleClassifier scores category and priority from weighted keyword
// dictionaries. Deterministic: identical input yields an identical result.
type RuleClassifier struct {
	cfg      RuleClassifierConfig
	keywords Keywords
}

// NewRuleClassifier constructs the classifier with injected dictionaries.
func NewRuleClassifier(cfg RuleClassifierConfig, kw Keywords) *RuleClassifier {
	return &RuleClassifier{cfg: cfg, keywords: kw}
}

// Classify scores the text and returns a rule_based result. Only empty or
// whitespace text fails; low-confidence inputs fall back to coarse defaults.
func (c *RuleClassifier) Classify(text, title string) (*domain.ClassificationResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ClassificationError{
			Strategy: string(domain.StrategyRuleBased),
			Message:  "empty text provided for classification",
		}
	}

	// Title appears twice so its tokens dominate ties against body text.
	fullText := strings.ToLower(title + " " + title + " " + text)
	loweredTitle := strings.ToLower(title)

	categoryScores := c.scoreCategories(fullText, loweredTitle)
	priorityScores := c.scorePriorities(fullText, loweredTitle)

	bestCategory, categoryMargin := argmaxCategory(categoryScores)
	bestPriority, priorityMargin := argmaxPriority(priorityScores)

	categoryConfidence := categoryScores[bestCategory]
	priorityConfidence := priorityScores[bestPriority]
	if categoryMargin > c.cfg.MarginThreshold {
		categoryConfidence *= c.cfg.MarginBoost
	}
	if priorityMargin > c.cfg.MarginThreshold {
		priorityConfidence *= c.cfg.MarginBoost
	}

	overall := (categoryConfidence + priorityConfidence) / 2

	if overall < c.cfg.ConfidenceFloor || categoryScores[bestCategory] < c.cfg.CategoryFloor {
		category, priority := c.fallback(fullText)
		return &domain.ClassificationResult{
			Category:       category,
			Priority:       priority,
			Confidence:     c.cfg.FallbackConfidence,
			Strategy:       domain.StrategyRuleBased,
			Reasoning:      "Default classification with fallback patterns",
			CategoryScores: categoryScores,
			PriorityScores: priorityScores,
		}, nil
	}

	return &domain.ClassificationResult{
		Category:   bestCategory,
		Priority:   bestPriority,
		Confidence: clamp01(overall),
		Strategy:   domain.StrategyRuleBased,
		Reasoning: fmt.Sprintf(
			"Rule-based classification with %.2f category confidence and %.2f priority confidence",
			categoryConfidence, priorityConfidence),
		CategoryScores: categoryScores,
		PriorityScores: priorityScores,
	}, nil
}

func (c *RuleClassifier) scoreCategories(fullText, loweredTitle string) map[domain.Category]float64 {
	scores := make(map[domain.Category]float64, 3)
	for _, category := range domain.Categories() {
		patterns := c.keywords.CategoryPatterns[category]
		if len(patterns) == 0 {
			scores[category] = 0
			continue
		}
		var score float64
		matches := 0
		for _, pattern := range patterns {
			lowered := strings.ToLower(pattern)
			count := strings.Count(fullText, lowered)
			if count == 0 {
				continue
			}
			weight := 1.0
			if words := len(strings.Fields(lowered)); words > 1 {
				weight = float64(words) * c.cfg.MultiWordWeight
			}
			if strings.Contains(loweredTitle, lowered) {
				weight *= c.cfg.TitleCategoryBoost
			}
			score += float64(count) * weight
			matches++
		}
		matchRatio := float64(matches) / float64(len(patterns))
		scores[category] = clamp01(score / float64(len(patterns)) * (1 + matchRatio))
	}
	return scores
}

func (c *RuleClassifier) scorePriorities(fullText, loweredTitle string) map[domain.Priority]float64 {
	scores := make(map[domain.Priority]float64, 4)
	for _, priority := range domain.Priorities() {
		patterns := c.keywords.PriorityPatterns[priority]
		if len(patterns) == 0 {
			scores[priority] = 0
			continue
		}
		base := c.cfg.PriorityTierWeights[priority]
		if base == 0 {
			base = 1.0
		}
		var score float64
		matches := 0
		for _, pattern := range patterns {
			lowered := strings.ToLower(pattern)
			count := strings.Count(fullText, lowered)
			if count == 0 {
				continue
			}
			weight := base
			if strings.Contains(loweredTitle, lowered) {
				weight *= c.cfg.TitlePriorityBoost
			}
			score += float64(count) * weight
			matches++
		}
		matchRatio := float64(matches) / float64(len(patterns))
		scores[priority] = clamp01(score / float64(len(patterns)) * (1 + matchRatio*c.cfg.PriorityMatchRatioFactor))
	}
	return scores
}

// fallback applies the coarse keyword defaults for low-confidence inputs.
func (c *RuleClassifier) fallback(fullText string) (domain.Category, domain.Priority) {
	category := domain.CategoryOperations
	if containsAny(fullText, c.keywords.FallbackIT) {
		category = domain.CategoryIT
	} else if containsAny(fullText, c.keywords.FallbackHR) {
		category = domain.CategoryHR
	}

	priority := domain.PriorityMedium
	if containsAny(fullText, c.keywords.FallbackHigh) {
		priority = domain.PriorityHigh
	} else if containsAny(fullText, c.keywords.FallbackLow) {
		priority = domain.PriorityLow
	}

	return category, priority
}

// argmaxCategory picks the winner in canonical enum order (first wins on
// ties) and reports the margin over the runner-up.
func argmaxCategory(scores map[domain.Category]float64) (domain.Category, float64) {
	ordered := domain.Categories()
	best := ordered[0]
	for _, cat := range ordered[1:] {
		if scores[cat] > scores[best] {
			best = cat
		}
	}
	second := 0.0
	for _, cat := range ordered {
		if cat != best && scores[cat] > second {
			second = scores[cat]
		}
	}
	return best, scores[best] - second
}

func argmaxPriority(scores map[domain.Priority]float64) (domain.Priority, float64) {
	ordered := domain.Priorities()
	best := ordered[0]
	for _, pri := range ordered[1:] {
		if scores[pri] > scores[best] {
			best = pri
		}
	}
	second := 0.0
	for _, pri := range ordered {
		if pri != best && scores[pri] > second {
			second = scores[pri]
		}
	}
	return best, scores[best] - second
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
