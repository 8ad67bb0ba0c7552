package model

import (
	"strconv"
	"strings"
)

// TaskType is one of the three importable Habitica task types
type TaskType string

const (
	TypeHabit TaskType = "habit"
	TypeDaily TaskType = "daily"
	TypeTodo  TaskType = "todo"
)

// Priority values accepted by the Habitica API, mapped to difficulty labels
const (
	PriorityTrivial = 0.1
	PriorityEasy    = 1
	PriorityMedium  = 1.5
	PriorityHard    = 2
)

// TaskRecord is the normalized representation of one importable task.
// Built once by a file parser and immutable afterwards.
type TaskRecord struct {
	Type     TaskType
	Name     string
	Notes    string
	Priority float64
}

// ParseType normalizes a task type string. Accepts singular and plural
// forms case-insensitively ("Habit", "dailys", "TODOS").
func ParseType(s string) (TaskType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "habit", "habits":
		return TypeHabit, true
	case "daily", "dailys", "dailies":
		return TypeDaily, true
	case "todo", "todos":
		return TypeTodo, true
	}
	return "", false
}

// ParsePriority maps an input priority to one of the fixed Habitica
// values. Anything missing or unrecognized falls back to Easy.
func ParsePriority(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return PriorityEasy
	}
	switch v {
	case PriorityTrivial, PriorityEasy, PriorityMedium, PriorityHard:
		return v
	}
	return PriorityEasy
}

// PriorityLabel returns the Habitica difficulty name for a priority value
func PriorityLabel(p float64) string {
	switch p {
	case PriorityTrivial:
		return "Trivial"
	case PriorityMedium:
		return "Medium"
	case PriorityHard:
		return "Hard"
	default:
		return "Easy"
	}
}

// NormalizeName produces the identity form used for duplicate matching:
// whitespace-trimmed and case-folded.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
