package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
)

// ExternalResult is what the learned classifier collaborator returns.
// Score maps are optional; the engine fills absent members with zero.
type ExternalResult struct {
	Category       domain.Category
	Priority       domain.Priority
	Confidence     float64
	Reasoning      string
	CategoryScores map[domain.Category]float64
	PriorityScores map[domain.Priority]float64
}

// ExternalClassifier is the opaque LLM-backed classifier boundary. Timeouts
// and retries live behind this interface, never inside the engine.
type ExternalClassifier interface {
	Classify(ctx context.Context, text, title string) (*ExternalResult, error)
}

// HybridConfig carries the combination constants for the hybrid and
// ensemble strategies.
type HybridConfig struct {
	LLMWeight      float64
	RuleWeight     float64
	AgreementBonus float64
	// DisagreementDiscount scales the external confidence when the two
	// classifiers disagree.
	DisagreementDiscount float64
}

// DefaultHybridConfig returns the production combination constants.
func DefaultHybridConfig() HybridConfig {
	return HybridConfig{
		LLMWeight:            0.7,
		RuleWeight:           0.3,
		AgreementBonus:       0.2,
		DisagreementDiscount: 0.8,
	}
}

// ClassificationEngine dispatches classification calls across strategies.
// Stateless per call; safe for concurrent use.
type ClassificationEngine struct {
	cfg      HybridConfig
	rules    *RuleClassifier
	external ExternalClassifier
	logger   *zap.Logger
}

// NewClassificationEngine wires the rule classifier and the optional
// external collaborator. A nil external classifier limits the engine to the
// rule-based and ensemble(rule-only) paths.
func NewClassificationEngine(cfg HybridConfig, rules *RuleClassifier, external ExternalClassifier, logger *zap.Logger) *ClassificationEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassificationEngine{cfg: cfg, rules: rules, external: external, logger: logger}
}

// Classify runs the named strategy over the text. Empty text and unknown
// strategy names surface as ClassificationError.
func (e *ClassificationEngine) Classify(ctx context.Context, text, title string, strategy domain.ClassificationStrategy) (*domain.ClassificationResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ClassificationError{Message: "empty text provided for classification"}
	}

	switch strategy {
	case domain.StrategyRuleBased:
		return e.rules.Classify(text, title)
	case domain.StrategyLLMBased:
		return e.classifyLLM(ctx, text, title)
	case domain.StrategyHybrid:
		return e.classifyHybrid(ctx, text, title)
	case domain.StrategyEnsemble:
		return e.classifyEnsemble(ctx, text, title)
	default:
		return nil, &ClassificationError{
			Strategy: string(strategy),
			Message:  "unknown classification strategy",
		}
	}
}

// classifyLLM calls the external collaborator and normalizes its answer
// into the closed enumerations.
func (e *ClassificationEngine) classifyLLM(ctx context.Context, text, title string) (*domain.ClassificationResult, error) {
	if e.external == nil {
		return nil, &ClassificationError{
			Strategy: string(domain.StrategyLLMBased),
			Message:  "external classifier not configured",
		}
	}

	ext, err := e.external.Classify(ctx, text, title)
	if err != nil {
		return nil, &ClassificationError{
			Strategy: string(domain.StrategyLLMBased),
			Message:  "external classifier call failed",
			Err:      err,
		}
	}
	if _, ok := domain.ParseCategory(string(ext.Category)); !ok {
		return nil, &ClassificationError{
			Strategy: string(domain.StrategyLLMBased),
			Message:  fmt.Sprintf("external classifier returned unknown category %q", ext.Category),
		}
	}
	if _, ok := domain.ParsePriority(string(ext.Priority)); !ok {
		return nil, &ClassificationError{
			Strategy: string(domain.StrategyLLMBased),
			Message:  fmt.Sprintf("external classifier returned unknown priority %q", ext.Priority),
		}
	}

	reasoning := ext.Reasoning
	if reasoning == "" {
		reasoning = "LLM-based classification"
	}

	return &domain.ClassificationResult{
		Category:       ext.Category,
		Priority:       ext.Priority,
		Confidence:     clamp01(ext.Confidence),
		Strategy:       domain.StrategyLLMBased,
		Reasoning:      reasoning,
		CategoryScores: completeCategoryScores(ext.CategoryScores),
		PriorityScores: completePriorityScores(ext.PriorityScores),
	}, nil
}

// classifyHybrid prefers the external classifier and combines it with the
// rule-based result. An external failure degrades to the rule-based result,
// which keeps its rule_based strategy label.
func (e *ClassificationEngine) classifyHybrid(ctx context.Context, text, title string) (*domain.ClassificationResult, error) {
	llmResult, err := e.classifyLLM(ctx, text, title)
	if err != nil {
		e.logger.Warn("external classification failed, falling back to rule-based", zap.Error(err))
		return e.rules.Classify(text, title)
	}

	ruleResult, err := e.rules.Classify(text, title)
	if err != nil {
		return nil, err
	}

	if llmResult.Category == ruleResult.Category && llmResult.Priority == ruleResult.Priority {
		confidence := clamp01(llmResult.Confidence*e.cfg.LLMWeight +
			ruleResult.Confidence*e.cfg.RuleWeight +
			e.cfg.AgreementBonus)
		return &domain.ClassificationResult{
			Category:       llmResult.Category,
			Priority:       llmResult.Priority,
			Confidence:     confidence,
			Strategy:       domain.StrategyHybrid,
			Reasoning:      "Hybrid classification with agreement between external and rule-based classifiers",
			CategoryScores: llmResult.CategoryScores,
			PriorityScores: llmResult.PriorityScores,
		}, nil
	}

	return &domain.ClassificationResult{
		Category:       llmResult.Category,
		Priority:       llmResult.Priority,
		Confidence:     clamp01(llmResult.Confidence * e.cfg.DisagreementDiscount),
		Strategy:       domain.StrategyHybrid,
		Reasoning:      "Hybrid classification with external preference due to disagreement",
		CategoryScores: llmResult.CategoryScores,
		PriorityScores: llmResult.PriorityScores,
	}, nil
}

// classifyEnsemble runs every runnable strategy and performs
// confidence-weighted voting per axis.
func (e *ClassificationEngine) classifyEnsemble(ctx context.Context, text, title string) (*domain.ClassificationResult, error) {
	var results []*domain.ClassificationResult

	if llmResult, err := e.classifyLLM(ctx, text, title); err != nil {
		e.logger.Warn("llm_based strategy failed in ensemble", zap.Error(err))
	} else {
		results = append(results, llmResult)
	}

	if ruleResult, err := e.rules.Classify(text, title); err != nil {
		e.logger.Warn("rule_based strategy failed in ensemble", zap.Error(err))
	} else {
		results = append(results, ruleResult)
	}

	if len(results) == 0 {
		return nil, &ClassificationError{
			Strategy: string(domain.StrategyEnsemble),
			Message:  "all ensemble strategies failed",
		}
	}

	categoryVotes := make(map[domain.Category]float64, 3)
	priorityVotes := make(map[domain.Priority]float64, 4)
	total := 0.0
	for _, result := range results {
		categoryVotes[result.Category] += result.Confidence
		priorityVotes[result.Priority] += result.Confidence
		total += result.Confidence
	}

	bestCategory, _ := argmaxCategory(categoryVotes)
	bestPriority, _ := argmaxPriority(priorityVotes)

	return &domain.ClassificationResult{
		Category:       bestCategory,
		Priority:       bestPriority,
		Confidence:     clamp01(total / float64(len(results))),
		Strategy:       domain.StrategyEnsemble,
		Reasoning:      fmt.Sprintf("Ensemble classification from %d strategies", len(results)),
		CategoryScores: completeCategoryScores(categoryVotes),
		PriorityScores: completePriorityScores(priorityVotes),
	}, nil
}

func completeCategoryScores(scores map[domain.Category]float64) map[domain.Category]float64 {
	out := make(map[domain.Category]float64, 3)
	for _, cat := range domain.Categories() {
		out[cat] = clamp01(scores[cat])
	}
	return out
}

func completePriorityScores(scores map[domain.Priority]float64) map[domain.Priority]float64 {
	out := make(map[domain.Priority]float64, 4)
	for _, pri := range domain.Priorities() {
		out[pri] = clamp01(scores[pri])
	}
	return out
}
