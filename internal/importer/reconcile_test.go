package importer

import (
	"testing"

	"habitui/internal/model"
)

func TestReconcilePreservesLengthAndOrder(t *testing.T) {
	index := Index{}
	records := []model.TaskRecord{
		{Type: model.TypeHabit, Name: "a"},
		{Type: model.TypeDaily, Name: "b"},
		{Type: model.TypeTodo, Name: "c"},
	}

	decisions := Reconcile(records, index)
	if len(decisions) != len(records) {
		t.Fatalf("got %d decisions for %d records", len(decisions), len(records))
	}
	for i, d := range decisions {
		if d.Record != records[i] {
			t.Errorf("decision %d is for %+v, want %+v", i, d.Record, records[i])
		}
	}
}

func TestReconcileEmptyNameIsInvalid(t *testing.T) {
	// Even a record whose (type, name) would match the index
	index := Index{
		{Type: model.TypeTodo, Name: ""}: "t0",
	}
	records := []model.TaskRecord{
		{Type: model.TypeTodo, Name: ""},
		{Type: model.TypeTodo, Name: "   "},
	}
	for i, d := range Reconcile(records, index) {
		if d.Action != ActionInvalid {
			t.Errorf("record %d: action = %v, want invalid", i, d.Action)
		}
	}
}

func TestReconcileMatchesCaseInsensitiveTrimmed(t *testing.T) {
	index := Index{
		{Type: model.TypeTodo, Name: "buy milk"}: "remote-1",
	}
	decisions := Reconcile([]model.TaskRecord{
		{Type: model.TypeTodo, Name: "  Buy Milk  "},
	}, index)

	if decisions[0].Action != ActionSkipDuplicate {
		t.Fatalf("action = %v, want skip-duplicate", decisions[0].Action)
	}
	if decisions[0].TaskID != "remote-1" {
		t.Errorf("task id = %q, want remote-1", decisions[0].TaskID)
	}
}

func TestReconcileSameNameDifferentTypeIsCreate(t *testing.T) {
	// Identity is (type, name): a habit does not collide with a todo
	// of the same name.
	index := Index{
		{Type: model.TypeTodo, Name: "buy milk"}: "remote-1",
	}
	decisions := Reconcile([]model.TaskRecord{
		{Type: model.TypeHabit, Name: "Buy Milk"},
	}, index)

	if decisions[0].Action != ActionCreate {
		t.Fatalf("action = %v, want create", decisions[0].Action)
	}
}
