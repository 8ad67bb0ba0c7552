package importer

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"habitui/internal/habitica"
	"habitui/internal/model"
	"habitui/internal/parse"
)

func newTestRunner(api API) *Runner {
	r := NewRunner(api, testPolicy())
	r.submitter.sleep = (&sleepRecorder{}).sleep
	return r
}

func TestRunBuildsIndexAndSkipsDuplicates(t *testing.T) {
	api := &scriptedAPI{tasks: []habitica.Task{
		{ID: "r1", Text: "Drink Water", Type: "habit"},
		{ID: "r2", Text: "gold", Type: "reward"}, // non-importable types never collide
	}}
	report, err := newTestRunner(api).Run(context.Background(), []model.TaskRecord{
		{Type: model.TypeHabit, Name: "drink water", Priority: 1},
		{Type: model.TypeTodo, Name: "gold", Priority: 1},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Skipped != 1 || report.Created != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.Rows[0].Outcome != OutcomeSkipped || report.Rows[0].TaskID != "r1" {
		t.Errorf("row 0 = %+v", report.Rows[0])
	}
}

func TestRunPartialFailureDoesNotAbortBatch(t *testing.T) {
	api := &scriptedAPI{createErrs: []error{nil, badRequest(), nil}}
	records := []model.TaskRecord{
		{Type: model.TypeTodo, Name: "one", Priority: 1},
		{Type: model.TypeTodo, Name: "two", Priority: 1},
		{Type: model.TypeTodo, Name: "three", Priority: 1},
	}

	report, err := newTestRunner(api).Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Created != 2 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.Rows[0].Outcome != OutcomeCreated {
		t.Errorf("row 0 = %+v", report.Rows[0])
	}
	var rejected *RejectedError
	if report.Rows[1].Outcome != OutcomeFailed || !errors.As(report.Rows[1].Err, &rejected) {
		t.Errorf("row 1 = %+v", report.Rows[1])
	}
	// record 3 is still attempted after record 2 failed
	if report.Rows[2].Outcome != OutcomeCreated {
		t.Errorf("row 2 = %+v", report.Rows[2])
	}
	if report.Ok() {
		t.Error("report with failures must not be Ok")
	}
}

func TestRunInvalidRecordsAreCountedNotSubmitted(t *testing.T) {
	api := &scriptedAPI{}
	report, err := newTestRunner(api).Run(context.Background(), []model.TaskRecord{
		{Type: model.TypeTodo, Name: "   ", Priority: 1},
		{Type: model.TypeTodo, Name: "real", Priority: 1},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Invalid != 1 || report.Created != 1 {
		t.Fatalf("report = %+v", report)
	}
	if len(api.created) != 1 {
		t.Errorf("invalid record must not reach the submitter, created %d", len(api.created))
	}
}

func TestRunAuthErrorAbortsUpFront(t *testing.T) {
	api := &scriptedAPI{listErrs: []error{&habitica.APIError{Status: http.StatusUnauthorized}}}
	_, err := newTestRunner(api).Run(context.Background(), []model.TaskRecord{
		{Type: model.TypeTodo, Name: "never sent", Priority: 1},
	})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
	if len(api.created) != 0 {
		t.Error("nothing may be submitted after an auth failure")
	}
}

func TestRunIndexListingRetriedLikeWrites(t *testing.T) {
	api := &scriptedAPI{listErrs: []error{rateLimit(0), serverError()}}
	report, err := newTestRunner(api).Run(context.Background(), []model.TaskRecord{
		{Type: model.TypeTodo, Name: "x", Priority: 1},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("report = %+v", report)
	}
}

func TestRunInterruptedMarksInFlightAndRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &scriptedAPI{createErrs: []error{nil, rateLimit(0)}}
	r := NewRunner(api, testPolicy())
	r.submitter.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	report, err := r.Run(ctx, []model.TaskRecord{
		{Type: model.TypeTodo, Name: "first", Priority: 1},
		{Type: model.TypeTodo, Name: "second", Priority: 1},
		{Type: model.TypeTodo, Name: "third", Priority: 1},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Created != 1 || report.Interrupted != 2 {
		t.Fatalf("report = %+v", report)
	}
	if report.Rows[1].Outcome != OutcomeInterrupted {
		t.Errorf("in-flight row = %+v", report.Rows[1])
	}
	if report.Rows[2].Outcome != OutcomeInterrupted {
		t.Errorf("unattempted row = %+v", report.Rows[2])
	}
}

func TestRunCSVEndToEnd(t *testing.T) {
	records, err := parse.CSV([]byte("Type,Task Name,Notes,Priority\n" +
		"Habit,Drink Water,Health: 8 glasses,1.5\n" +
		"Daily,Check Email,Work,1\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	api := &scriptedAPI{} // empty remote index
	report, err := newTestRunner(api).Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Created != 2 || report.Skipped != 0 || report.Invalid != 0 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if !report.Ok() {
		t.Error("expected clean report")
	}
	if len(api.created) != 2 {
		t.Fatalf("created %d remote tasks, want 2", len(api.created))
	}
	if api.created[0].Text != "Drink Water" || api.created[0].Type != "habit" || api.created[0].Priority != 1.5 {
		t.Errorf("first create payload = %+v", api.created[0])
	}
	if api.created[1].Text != "Check Email" || api.created[1].Type != "daily" {
		t.Errorf("second create payload = %+v", api.created[1])
	}
}
