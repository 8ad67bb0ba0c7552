package parse

import (
	"regexp"
	"strings"

	"habitui/internal/model"
)

// Unchecked checklist items only; completed items stay out of the import
var checklistItem = regexp.MustCompile(`(?m)^\s*[-*]\s*\[\s*\]\s*(.+)$`)

// Markdown extracts unchecked checklist entries ("- [ ] text") as todo
// records with default priority.
func Markdown(data []byte) ([]model.TaskRecord, error) {
	matches := checklistItem.FindAllStringSubmatch(string(data), -1)
	records := make([]model.TaskRecord, 0, len(matches))
	for _, match := range matches {
		records = append(records, model.TaskRecord{
			Type:     model.TypeTodo,
			Name:     strings.TrimSpace(match[1]),
			Priority: model.PriorityEasy,
		})
	}
	return records, nil
}
