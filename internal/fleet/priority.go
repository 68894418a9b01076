package fleet

import (
	"fmt"
	"strings"
)

// Priority is a delivery urgency tier.
type Priority string

// Priority tiers.
const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Weight is the sort weight of the tier. Unknown tiers weigh as normal.
func (p Priority) Weight() int {
	switch p {
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 1
	}
}

// priorityNames maps accepted inputs (English and Portuguese) to tiers.
var priorityNames = map[string]Priority{
	"low":     PriorityLow,
	"baixa":   PriorityLow,
	"baixo":   PriorityLow,
	"normal":  PriorityNormal,
	"medium":  PriorityMedium,
	"media":   PriorityMedium,
	"média":   PriorityMedium,
	"medio":   PriorityMedium,
	"médio":   PriorityMedium,
	"high":    PriorityHigh,
	"alta":    PriorityHigh,
	"alto":    PriorityHigh,
	"urgent":  PriorityHigh,
	"urgente": PriorityHigh,
}

// ParsePriority normalizes s case-insensitively. Empty input is normal.
func ParsePriority(s string) (Priority, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return PriorityNormal, nil
	}
	if p, ok := priorityNames[key]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, s)
}
