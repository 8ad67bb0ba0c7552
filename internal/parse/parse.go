// Package parse turns local task files into normalized task records.
// One parser per format, selected by file extension.
package parse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"habitui/internal/model"
)

// File reads path and parses it according to its extension
func File(path string) ([]model.TaskRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV(data)
	case ".yaml", ".yml":
		return YAML(data)
	case ".md", ".markdown":
		return Markdown(data)
	}
	return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
}
