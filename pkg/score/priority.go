package score

import (
	"fmt"
	"strings"
)

// Priority is the triage label derived from a total score.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"

	CriticalThreshold = 39
	HighThreshold     = 32
	MediumThreshold   = 24
)

// PriorityFor buckets total using a descending cascade, the first threshold
// reached wins.
func PriorityFor(total float64) Priority {
	switch {
	case total >= CriticalThreshold:
		return PriorityCritical
	case total >= HighThreshold:
		return PriorityHigh
	case total >= MediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// AllPriorities returns all priorities, highest first.
func AllPriorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func (p Priority) String() string {
	return string(p)
}

// Rank returns a sort key (lower = more urgent).
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// ParsePriority parses s case-insensitively.
func ParsePriority(s string) (Priority, error) {
	for _, p := range AllPriorities() {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority: %q", s)
}
