package engine

import "github.com/spec-kit/triage-service/internal/domain"

// Keywords bundles the curated dictionaries that drive feature extraction,
// rule-based scoring, and skill matching. Injected at construction so tests
// and deployments can swap dictionaries without touching the algorithms.
type Keywords struct {
	CategoryPatterns map[domain.Category][]string
	PriorityPatterns map[domain.Priority][]string

	// Coarse fallback lists, consulted only below the confidence floor.
	FallbackIT   []string
	FallbackHR   []string
	FallbackHigh []string
	FallbackLow  []string

	// Per-category skills relevant for skill-based assignment.
	CategorySkills map[domain.Category][]string

	StopWords     []string
	UrgentPhrases []string
}

// DefaultKeywords returns the production dictionaries.
func DefaultKeywords() Keywords {
	return Keywords{
		CategoryPatterns: map[domain.Category][]string{
			domain.CategoryIT: {
				"server", "network", "database", "application", "software", "hardware",
				"bug", "error", "crash", "performance", "security", "backup", "deploy",
				"infrastructure", "system", "code", "api", "website", "email", "vpn",
				"firewall", "patch", "update", "install", "configure", "troubleshoot",
				"programming", "development", "technical", "IT", "technology",
				"outage", "down", "connection", "access", "login", "password", "data",
				"file", "folder", "disk", "memory", "cpu", "bandwidth", "internet",
				"web", "browser", "mobile", "app", "platform", "cloud", "azure", "aws",
				"linux", "windows", "mac", "unix", "sql", "query", "table", "index",
				"script", "automation", "monitoring", "alert", "log", "debug", "fix",
			},
			domain.CategoryHR: {
				"employee", "staff", "hire", "recruit", "interview", "onboard", "training",
				"payroll", "benefits", "leave", "vacation", "sick", "performance review",
				"promotion", "termination", "resignation", "policy", "compliance",
				"harassment", "diversity", "compensation", "salary", "bonus", "HR",
				"human resources", "personnel", "workforce", "talent",
				"candidate", "applicant", "job", "position", "role", "team member",
				"manager", "supervisor", "department", "office", "workplace", "safety",
				"incident", "injury", "health", "insurance", "retirement", "401k",
				"pto", "time off", "holiday", "overtime", "schedule", "shift", "work",
				"employment", "contract", "agreement", "evaluation", "feedback",
			},
			domain.CategoryOperations: {
				"process", "workflow", "procedure", "project", "task", "deadline",
				"meeting", "schedule", "planning", "budget", "cost", "vendor",
				"contract", "procurement", "quality", "audit", "compliance",
				"reporting", "analytics", "metrics", "kpi", "improvement",
				"operations", "business", "management", "coordination",
				"supplier", "delivery", "shipment", "inventory", "stock", "warehouse",
				"production", "manufacturing", "supply chain", "logistics", "customer",
				"client", "service", "support", "sales", "marketing", "finance",
				"accounting", "invoice", "payment", "revenue", "profit", "loss",
				"strategy", "goal", "objective", "milestone", "timeline", "resource",
			},
		},
		PriorityPatterns: map[domain.Priority][]string{
			domain.PriorityCritical: {
				"critical", "urgent", "emergency", "asap", "immediately", "crisis",
				"outage", "down", "broken", "failed", "security breach", "data loss",
				"major", "severe", "blocking", "showstopper", "production", "live",
				"business disruption", "revenue loss", "cannot access", "not working",
				"completely", "totally", "all users", "entire system", "halt",
			},
			domain.PriorityHigh: {
				"high", "important", "priority", "soon", "quickly", "fast", "escalate",
				"deadline", "time sensitive", "urgent", "needs attention", "significant",
				"affecting", "impact", "multiple users", "team", "department",
				"expires", "renewal", "contract", "client", "customer", "asap",
			},
			domain.PriorityMedium: {
				"medium", "normal", "standard", "regular", "moderate", "routine",
				"scheduled", "planned", "next week", "end of week", "monthly",
				"quarterly", "review", "update", "improve", "optimize", "analyze",
			},
			domain.PriorityLow: {
				"low", "minor", "when possible", "eventually", "nice to have",
				"enhancement", "future", "optional", "convenience", "time permits",
				"no deadline", "no rush", "background", "documentation", "cleanup",
				"when convenient", "convenient",
			},
		},
		FallbackIT:   []string{"server", "system", "application", "software", "network"},
		FallbackHR:   []string{"employee", "staff", "hire", "payroll", "training"},
		FallbackHigh: []string{"urgent", "critical", "emergency", "asap", "immediately"},
		FallbackLow:  []string{"low", "minor", "when possible", "eventually", "when convenient", "convenient"},
		CategorySkills: map[domain.Category][]string{
			domain.CategoryIT: {
				"programming", "database", "network", "security", "infrastructure",
				"cloud", "devops", "system administration", "troubleshooting",
				"software development", "api", "web development", "mobile",
			},
			domain.CategoryHR: {
				"recruitment", "onboarding", "payroll", "benefits", "training",
				"performance management", "employee relations", "compliance",
				"policy development", "talent acquisition", "compensation",
			},
			domain.CategoryOperations: {
				"project management", "process improvement", "quality assurance",
				"vendor management", "budget planning", "analytics", "reporting",
				"business analysis", "coordination", "logistics", "procurement",
			},
		},
		StopWords: []string{
			"the", "a", "an", "and", "or", "but", "in", "on", "at", "to",
			"for", "of", "with", "by",
		},
		UrgentPhrases: []string{
			"asap", "urgent", "emergency", "critical", "immediately",
			"right away", "as soon as possible", "time sensitive",
		},
	}
}
