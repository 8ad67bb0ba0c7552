package importer

import (
	"context"
	"errors"

	"habitui/internal/model"
)

// Outcome is the final disposition of one imported record
type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeFailed      Outcome = "failed"
	OutcomeInterrupted Outcome = "interrupted"
)

// RowResult is the per-record outcome, in input order, so failures are
// traceable back to source rows.
type RowResult struct {
	Record  model.TaskRecord
	Outcome Outcome
	TaskID  string
	Err     error
}

// Report tallies one orchestration pass
type Report struct {
	Created     int
	Skipped     int
	Invalid     int
	Failed      int
	Interrupted int
	Rows        []RowResult
}

// Ok reports whether every record landed cleanly
func (r Report) Ok() bool {
	return r.Failed == 0 && r.Interrupted == 0
}

func (r *Report) record(row RowResult) {
	r.Rows = append(r.Rows, row)
	switch row.Outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeInvalid:
		r.Invalid++
	case OutcomeFailed:
		r.Failed++
	case OutcomeInterrupted:
		r.Interrupted++
	}
}

// Runner drives the import pipeline: build the remote index, reconcile,
// submit creates one at a time, fold every per-record failure into the
// report.
type Runner struct {
	api       API
	policy    BackoffPolicy
	submitter *Submitter
}

// NewRunner creates a Runner submitting through api
func NewRunner(api API, policy BackoffPolicy) *Runner {
	return &Runner{
		api:       api,
		policy:    policy,
		submitter: NewSubmitter(api, policy),
	}
}

// Run imports records and returns the complete report. The only errors
// that escape are an up-front AuthError and an index listing that could
// not be completed: both happen before any submission, so no work is
// lost. Everything after that point lands in the report, even when
// every submission failed.
func (r *Runner) Run(ctx context.Context, records []model.TaskRecord) (Report, error) {
	index, err := BuildIndex(ctx, r.api, r.policy, r.submitter.sleep)
	if err != nil {
		return Report{}, err
	}

	var report Report
	interrupted := false
	for _, decision := range Reconcile(records, index) {
		switch decision.Action {
		case ActionInvalid:
			report.record(RowResult{Record: decision.Record, Outcome: OutcomeInvalid})
		case ActionSkipDuplicate:
			report.record(RowResult{
				Record:  decision.Record,
				Outcome: OutcomeSkipped,
				TaskID:  decision.TaskID,
			})
		case ActionCreate:
			if interrupted || ctx.Err() != nil {
				report.record(RowResult{
					Record:  decision.Record,
					Outcome: OutcomeInterrupted,
					Err:     ErrInterrupted,
				})
				continue
			}
			taskID, submitErr := r.submitter.Submit(ctx, decision.Record)
			switch {
			case submitErr == nil:
				report.record(RowResult{
					Record:  decision.Record,
					Outcome: OutcomeCreated,
					TaskID:  taskID,
				})
			case errors.Is(submitErr, ErrInterrupted):
				// Shutdown mid-backoff: the in-flight record is
				// reported, not silently dropped, and nothing
				// further is attempted.
				interrupted = true
				report.record(RowResult{
					Record:  decision.Record,
					Outcome: OutcomeInterrupted,
					Err:     submitErr,
				})
			default:
				report.record(RowResult{
					Record:  decision.Record,
					Outcome: OutcomeFailed,
					Err:     submitErr,
				})
			}
		}
	}
	return report, nil
}
