package engine

import (
	"regexp"
	"strings"

	"github.com/spec-kit/triage-service/internal/domain"
)

// UrgencySignals counts surface-level urgency cues in the raw text.
type UrgencySignals struct {
	ExclamationMarks int
	CapsWords        int
	UrgentPhrases    int
	TimeConstraints  []string
}

// FeatureBag aggregates the signals extracted from one text. Created fresh
// per call; carries no identity.
type FeatureBag struct {
	TextLength         int
	WordCount          int
	Keywords           []string
	CategoryIndicators map[domain.Category]float64
	PriorityIndicators map[domain.Priority]float64
	Urgency            UrgencySignals
	Dates              []string
	Entities           map[string][]string
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	specialRe    = regexp.MustCompile(`[^\w\s.,!?-]`)
	capsWordRe   = regexp.MustCompile(`\b[A-Z]{2,}\b`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
		regexp.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`),
		regexp.MustCompile(`\b(?:today|tomorrow|yesterday)\b`),
		regexp.MustCompile(`\b(?:next|last)\s+(?:week|month|year)\b`),
		regexp.MustCompile(`\b(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	}

	timeConstraintPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bby\s+\w+\b`),
		regexp.MustCompile(`\bwithin\s+\d+\s+\w+\b`),
		regexp.MustCompile(`\bbefore\s+\w+\b`),
		regexp.MustCompile(`\bdeadline\b`),
		regexp.MustCompile(`\bdue\s+\w+\b`),
	}

	entityPatterns = map[string]*regexp.Regexp{
		"EMAIL": regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.-]+\b`),
		"URL":   regexp.MustCompile(`\bhttps?://\S+\b`),
		"IP":    regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`),
		"MONEY": regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d+)?`),
	}
)

// FeatureExtractor turns raw text into a FeatureBag. Deterministic and
// side-effect free; indicator scans use exact word matches.
type FeatureExtractor struct {
	keywords  Keywords
	stopWords map[string]struct{}

	categoryWordRes map[domain.Category][]*regexp.Regexp
	priorityWordRes map[domain.Priority][]*regexp.Regexp
}

// NewFeatureExtractor compiles the dictionary word-boundary matchers once.
func NewFeatureExtractor(kw Keywords) *FeatureExtractor {
	stop := make(map[string]struct{}, len(kw.StopWords))
	for _, w := range kw.StopWords {
		stop[w] = struct{}{}
	}

	catRes := make(map[domain.Category][]*regexp.Regexp, len(kw.CategoryPatterns))
	for cat, patterns := range kw.CategoryPatterns {
		catRes[cat] = compileWordMatchers(patterns)
	}
	priRes := make(map[domain.Priority][]*regexp.Regexp, len(kw.PriorityPatterns))
	for pri, patterns := range kw.PriorityPatterns {
		priRes[pri] = compileWordMatchers(patterns)
	}

	return &FeatureExtractor{
		keywords:        kw,
		stopWords:       stop,
		categoryWordRes: catRes,
		priorityWordRes: priRes,
	}
}

func compileWordMatchers(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(strings.ToLower(p))+`\b`))
	}
	return res
}

// Extract builds the feature bag for the given text. Absent matches yield
// zero scores, never an error.
func (e *FeatureExtractor) Extract(text string) FeatureBag {
	cleaned := cleanText(text)

	bag := FeatureBag{
		TextLength:         len(text),
		WordCount:          len(strings.Fields(text)),
		Keywords:           e.extractKeywords(cleaned),
		CategoryIndicators: make(map[domain.Category]float64, 3),
		PriorityIndicators: make(map[domain.Priority]float64, 4),
		Urgency:            e.extractUrgency(text, cleaned),
		Dates:              extractDates(text),
		Entities:           extractEntities(text),
	}

	for _, cat := range domain.Categories() {
		bag.CategoryIndicators[cat] = indicatorScore(e.categoryWordRes[cat], cleaned)
	}
	for _, pri := range domain.Priorities() {
		bag.PriorityIndicators[pri] = indicatorScore(e.priorityWordRes[pri], cleaned)
	}

	return bag
}

// cleanText lowercases, collapses whitespace, and strips special characters
// while keeping basic punctuation.
func cleanText(text string) string {
	text = strings.ToLower(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = specialRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func (e *FeatureExtractor) extractKeywords(cleaned string) []string {
	if cleaned == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := e.stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	return keywords
}

func indicatorScore(matchers []*regexp.Regexp, cleaned string) float64 {
	if len(matchers) == 0 {
		return 0
	}
	total := 0
	for _, re := range matchers {
		total += len(re.FindAllStringIndex(cleaned, -1))
	}
	return float64(total) / float64(len(matchers))
}

func (e *FeatureExtractor) extractUrgency(raw, cleaned string) UrgencySignals {
	signals := UrgencySignals{
		ExclamationMarks: strings.Count(raw, "!"),
		CapsWords:        len(capsWordRe.FindAllString(raw, -1)),
	}
	for _, phrase := range e.keywords.UrgentPhrases {
		if strings.Contains(cleaned, phrase) {
			signals.UrgentPhrases++
		}
	}
	for _, re := range timeConstraintPatterns {
		signals.TimeConstraints = append(signals.TimeConstraints, re.FindAllString(cleaned, -1)...)
	}
	return signals
}

func extractDates(text string) []string {
	lowered := strings.ToLower(text)
	var dates []string
	for _, re := range datePatterns {
		dates = append(dates, re.FindAllString(lowered, -1)...)
	}
	return dates
}

func extractEntities(text string) map[string][]string {
	entities := make(map[string][]string)
	for _, label := range []string{"EMAIL", "IP", "MONEY", "URL"} {
		if found := entityPatterns[label].FindAllString(text, -1); len(found) > 0 {
			entities[label] = found
		}
	}
	return entities
}
