package importer

import (
	"context"

	"habitui/internal/habitica"
	"habitui/internal/model"
)

// Submitter owns all outbound write calls to the remote service and
// the retry state for each. Submissions are strictly sequential.
type Submitter struct {
	api    API
	policy BackoffPolicy
	sleep  SleepFunc
}

// NewSubmitter creates a Submitter using the given backoff policy
func NewSubmitter(api API, policy BackoffPolicy) *Submitter {
	return &Submitter{api: api, policy: policy, sleep: waitForRetry}
}

// Submit issues one create-task call, retrying rate limits and
// transient faults per the policy. Returns the remote task id on
// success. Terminal failures come back as *AuthError, *RejectedError,
// ErrRateLimitExhausted, ErrInterrupted, or the underlying transient
// error once its budget runs out.
func (s *Submitter) Submit(ctx context.Context, record model.TaskRecord) (string, error) {
	var created habitica.Task
	err := Retry(ctx, s.policy, s.sleep, func() error {
		var callErr error
		created, callErr = s.api.CreateTask(ctx, habitica.TaskCreate{
			Text:     record.Name,
			Type:     string(record.Type),
			Notes:    record.Notes,
			Priority: record.Priority,
		})
		return callErr
	})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}
