package importer

import (
	"strings"

	"habitui/internal/model"
)

// Action is what the pipeline will do with one record
type Action int

const (
	ActionCreate Action = iota
	ActionSkipDuplicate
	ActionInvalid
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionSkipDuplicate:
		return "skip-duplicate"
	case ActionInvalid:
		return "invalid"
	}
	return "unknown"
}

// Decision pairs a record with its reconciliation outcome. TaskID is
// the matched remote id for duplicates.
type Decision struct {
	Record model.TaskRecord
	Action Action
	TaskID string
}

// Reconcile classifies each record against the remote index: invalid
// when the trimmed name is empty, a duplicate when (type, name) already
// exists remotely, a create otherwise. Pure; output preserves input
// order and length so row outcomes stay traceable to source lines.
func Reconcile(records []model.TaskRecord, index Index) []Decision {
	decisions := make([]Decision, len(records))
	for i, record := range records {
		decisions[i] = Decision{Record: record}
		if strings.TrimSpace(record.Name) == "" {
			decisions[i].Action = ActionInvalid
			continue
		}
		if id, ok := index.Lookup(record.Type, record.Name); ok {
			decisions[i].Action = ActionSkipDuplicate
			decisions[i].TaskID = id
			continue
		}
		decisions[i].Action = ActionCreate
	}
	return decisions
}
