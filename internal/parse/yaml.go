package parse

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"habitui/internal/model"
)

type yamlEntry struct {
	Name  string `yaml:"name"`
	Text  string `yaml:"text"`
	Type  string `yaml:"type"`
	Notes string `yaml:"notes"`
	// Accepts both bare numbers (1.5) and quoted strings ("1.5")
	Priority any `yaml:"priority"`
}

// YAML parses a task file containing a list of entries with name (or
// text), type, notes and priority keys.
func YAML(data []byte) ([]model.TaskRecord, error) {
	var entries []yamlEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	records := make([]model.TaskRecord, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name
		if name == "" {
			name = entry.Text
		}
		taskType, ok := model.ParseType(entry.Type)
		if !ok {
			taskType = model.TypeTodo
		}
		records = append(records, model.TaskRecord{
			Type:     taskType,
			Name:     strings.TrimSpace(name),
			Notes:    strings.TrimSpace(entry.Notes),
			Priority: model.ParsePriority(priorityString(entry.Priority)),
		})
	}
	return records, nil
}

func priorityString(v any) string {
	switch p := v.(type) {
	case string:
		return p
	case int:
		return fmt.Sprintf("%d", p)
	case float64:
		return fmt.Sprintf("%g", p)
	}
	return ""
}
