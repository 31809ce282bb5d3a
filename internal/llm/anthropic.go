package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/engine"
)

const defaultModel = "claude-sonnet-4-5-20250929"
const defaultTimeout = 30 * time.Second
const maxResponseTokens = 1024

const systemPrompt = `You classify workplace task descriptions.
Choose exactly one category from: IT, HR, Operations.
Choose exactly one priority from: Critical, High, Medium, Low.
Set confidence between 0 and 1 and give a one-sentence reasoning.

Respond with JSON only (no markdown):
{"category": "IT", "priority": "High", "confidence": 0.91, "reasoning": "..."}`

// Config carries the Anthropic connection settings.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// AnthropicClassifier implements engine.ExternalClassifier against the
// Anthropic Messages API.
type AnthropicClassifier struct {
	client  anthropic.Client
	model   anthropic.Model
	timeout time.Duration
	logger  *zap.Logger
}

// NewAnthropicClassifier builds the classifier. Model and timeout fall back
// to package defaults when unset.
func NewAnthropicClassifier(cfg Config, logger *zap.Logger) *AnthropicClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &AnthropicClassifier{
		client:  anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:   anthropic.Model(model),
		timeout: timeout,
		logger:  logger,
	}
}

// Classify sends the task text to the model and parses its JSON verdict.
func (c *AnthropicClassifier) Classify(ctx context.Context, text, title string) (*engine.ExternalResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	userPrompt := buildUserPrompt(text, title)

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxResponseTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		c.logger.Warn("anthropic call failed", zap.Error(err))
		return nil, fmt.Errorf("anthropic api: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			c.logger.Debug("anthropic response",
				zap.Int("size", len(block.Text)),
				zap.Int64("tokens_in", message.Usage.InputTokens),
				zap.Int64("tokens_out", message.Usage.OutputTokens))
			return parseClassification(block.Text)
		}
	}
	return nil, fmt.Errorf("no text content in anthropic response")
}

func buildUserPrompt(text, title string) string {
	var b strings.Builder
	b.WriteString("Classify this task:\n\n")
	if strings.TrimSpace(title) != "" {
		fmt.Fprintf(&b, "Title: %s\n", strings.TrimSpace(title))
	}
	fmt.Fprintf(&b, "Description: %s\n", strings.TrimSpace(text))
	return b.String()
}

type classifiedVerdict struct {
	Category   string  `json:"category"`
	Priority   string  `json:"priority"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// parseClassification strips markdown fences the model sometimes emits and
// decodes the JSON verdict.
func parseClassification(responseText string) (*engine.ExternalResult, error) {
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var verdict classifiedVerdict
	if err := json.Unmarshal([]byte(responseText), &verdict); err != nil {
		return nil, fmt.Errorf("parsing classification response: %w (response: %s)", err, responseText)
	}

	category, ok := domain.ParseCategory(verdict.Category)
	if !ok {
		return nil, fmt.Errorf("unknown category %q in classification response", verdict.Category)
	}
	priority, ok := domain.ParsePriority(verdict.Priority)
	if !ok {
		return nil, fmt.Errorf("unknown priority %q in classification response", verdict.Priority)
	}

	return &engine.ExternalResult{
		Category:   category,
		Priority:   priority,
		Confidence: verdict.Confidence,
		Reasoning:  strings.TrimSpace(verdict.Reasoning),
		CategoryScores: map[domain.Category]float64{
			category: verdict.Confidence,
		},
		PriorityScores: map[domain.Priority]float64{
			priority: verdict.Confidence,
		},
	}, nil
}
