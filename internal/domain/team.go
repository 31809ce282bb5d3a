package domain

import "time"

// Team is a candidate assignment target for one category.
type Team struct {
	ID             string
	Name           string
	Category       Category
	Description    string
	Skills         []string
	Capacity       int
	CurrentLoad    int
	PriorityWeight float64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Availability reports spare assignment headroom; never negative.
func (t Team) Availability() int {
	if t.CurrentLoad >= t.Capacity {
		return 0
	}
	return t.Capacity - t.CurrentLoad
}
