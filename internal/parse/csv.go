package parse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"habitui/internal/model"
)

// CSV parses a task file with header row "Type,Task Name,Notes,Priority".
// Headers are matched case-insensitively; "text" and "name" are accepted
// as aliases for the name column. A row whose type cannot be parsed
// defaults to todo.
func CSV(data []byte) ([]model.TaskRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, header := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(header))] = i
	}
	nameCol, ok := columnIndex(cols, "task name", "name", "text")
	if !ok {
		return nil, fmt.Errorf("csv header is missing a task name column")
	}
	typeCol, _ := columnIndex(cols, "type")
	notesCol, _ := columnIndex(cols, "notes")
	priorityCol, _ := columnIndex(cols, "priority")

	records := make([]model.TaskRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		taskType, ok := model.ParseType(field(row, typeCol))
		if !ok {
			taskType = model.TypeTodo
		}
		records = append(records, model.TaskRecord{
			Type:     taskType,
			Name:     strings.TrimSpace(field(row, nameCol)),
			Notes:    strings.TrimSpace(field(row, notesCol)),
			Priority: model.ParsePriority(field(row, priorityCol)),
		})
	}
	return records, nil
}

func columnIndex(cols map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := cols[name]; ok {
			return i, true
		}
	}
	return -1, false
}

func field(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
