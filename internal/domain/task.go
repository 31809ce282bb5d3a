package domain

import (
	"strings"
	"time"
)

// Category enumerates the business domains a task can belong to.
type Category string

const (
	CategoryIT         Category = "IT"
	CategoryHR         Category = "HR"
	CategoryOperations Category = "Operations"
)

// Categories returns every member of the closed category enumeration.
func Categories() []Category {
	return []Category{CategoryIT, CategoryHR, CategoryOperations}
}

// ParseCategory resolves a string to a Category, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "it":
		return CategoryIT, true
	case "hr":
		return CategoryHR, true
	case "operations":
		return CategoryOperations, true
	}
	return "", false
}

// Priority enumerates urgency tiers, ordered Critical > High > Medium > Low.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// Priorities returns every member of the closed priority enumeration.
func Priorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// ParsePriority resolves a string to a Priority, case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return PriorityCritical, true
	case "high":
		return PriorityHigh, true
	case "medium":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	}
	return "", false
}

// Rank returns the severity order of the priority; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task is the work item flowing through classification and assignment.
type Task struct {
	ID             string
	Title          string
	Description    string
	Category       Category
	Priority       Priority
	AssignedTeamID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
