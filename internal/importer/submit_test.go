package importer

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"habitui/internal/habitica"
	"habitui/internal/model"
)

// scriptedAPI returns one queued result per CreateTask call
type scriptedAPI struct {
	tasks      []habitica.Task
	listErrs   []error
	createErrs []error
	created    []habitica.TaskCreate
	nextID     int
}

func (a *scriptedAPI) UserTasks(ctx context.Context, taskType string) ([]habitica.Task, error) {
	if len(a.listErrs) > 0 {
		err := a.listErrs[0]
		a.listErrs = a.listErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return a.tasks, nil
}

func (a *scriptedAPI) CreateTask(ctx context.Context, create habitica.TaskCreate) (habitica.Task, error) {
	var err error
	if len(a.createErrs) > 0 {
		err = a.createErrs[0]
		a.createErrs = a.createErrs[1:]
	}
	if err != nil {
		return habitica.Task{}, err
	}
	a.created = append(a.created, create)
	a.nextID++
	return habitica.Task{ID: taskID(a.nextID), Text: create.Text, Type: create.Type}, nil
}

func taskID(n int) string {
	return string(rune('a'+n-1)) + "-id"
}

func rateLimit(retryAfter time.Duration) error {
	return &habitica.APIError{Status: http.StatusTooManyRequests, RetryAfter: retryAfter}
}

func serverError() error {
	return &habitica.APIError{Status: http.StatusInternalServerError}
}

func badRequest() error {
	return &habitica.APIError{Status: http.StatusBadRequest, Message: "task validation failed"}
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func testPolicy() BackoffPolicy {
	return BackoffPolicy{
		BaseDelay:           time.Second,
		MaxDelay:            8 * time.Second,
		MaxRateLimitRetries: 4,
		MaxTransientRetries: 2,
	}
}

func testRecord() model.TaskRecord {
	return model.TaskRecord{Type: model.TypeTodo, Name: "buy milk", Priority: 1}
}

func TestSubmitRetriesRateLimitsUntilSuccess(t *testing.T) {
	api := &scriptedAPI{createErrs: []error{rateLimit(0), rateLimit(0), rateLimit(0), nil}}
	recorder := &sleepRecorder{}
	s := NewSubmitter(api, testPolicy())
	s.sleep = recorder.sleep

	id, err := s.Submit(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id == "" {
		t.Fatal("expected a remote task id")
	}
	if len(api.created) != 1 {
		t.Fatalf("expected exactly one successful create, got %d", len(api.created))
	}
	if len(recorder.delays) != 3 {
		t.Fatalf("expected 3 backoff waits, got %d", len(recorder.delays))
	}
	for i := 1; i < len(recorder.delays); i++ {
		if recorder.delays[i] < recorder.delays[i-1] {
			t.Errorf("waits must be non-decreasing: %v", recorder.delays)
		}
	}
	for _, d := range recorder.delays {
		if d > testPolicy().MaxDelay {
			t.Errorf("wait %v exceeds max delay %v", d, testPolicy().MaxDelay)
		}
	}
}

func TestSubmitRateLimitExhausted(t *testing.T) {
	policy := testPolicy()
	var errs []error
	for i := 0; i <= policy.MaxRateLimitRetries+1; i++ {
		errs = append(errs, rateLimit(0))
	}
	api := &scriptedAPI{createErrs: errs}
	recorder := &sleepRecorder{}
	s := NewSubmitter(api, policy)
	s.sleep = recorder.sleep

	_, err := s.Submit(context.Background(), testRecord())
	if !errors.Is(err, ErrRateLimitExhausted) {
		t.Fatalf("expected ErrRateLimitExhausted, got %v", err)
	}
	// budget retries, then stop: initial attempt + MaxRateLimitRetries
	if len(recorder.delays) != policy.MaxRateLimitRetries {
		t.Errorf("expected %d waits, got %d", policy.MaxRateLimitRetries, len(recorder.delays))
	}
}

func TestSubmitHonorsRetryAfter(t *testing.T) {
	api := &scriptedAPI{createErrs: []error{rateLimit(5 * time.Second), nil}}
	recorder := &sleepRecorder{}
	s := NewSubmitter(api, testPolicy())
	s.sleep = recorder.sleep

	if _, err := s.Submit(context.Background(), testRecord()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(recorder.delays) != 1 || recorder.delays[0] != 5*time.Second {
		t.Errorf("expected Retry-After to win over computed delay, got %v", recorder.delays)
	}
}

func TestSubmitRetryAfterCappedAtMaxDelay(t *testing.T) {
	api := &scriptedAPI{createErrs: []error{rateLimit(10 * time.Minute), nil}}
	recorder := &sleepRecorder{}
	s := NewSubmitter(api, testPolicy())
	s.sleep = recorder.sleep

	if _, err := s.Submit(context.Background(), testRecord()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(recorder.delays) != 1 || recorder.delays[0] != testPolicy().MaxDelay {
		t.Errorf("expected delay capped at %v, got %v", testPolicy().MaxDelay, recorder.delays)
	}
}

func TestSubmitTransientBudgetSmallerThanRateLimitBudget(t *testing.T) {
	policy := testPolicy()
	var errs []error
	for i := 0; i <= policy.MaxTransientRetries+1; i++ {
		errs = append(errs, serverError())
	}
	api := &scriptedAPI{createErrs: errs}
	recorder := &sleepRecorder{}
	s := NewSubmitter(api, policy)
	s.sleep = recorder.sleep

	_, err := s.Submit(context.Background(), testRecord())
	var apiErr *habitica.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected surfaced transient error, got %v", err)
	}
	if len(recorder.delays) != policy.MaxTransientRetries {
		t.Errorf("expected %d waits, got %d", policy.MaxTransientRetries, len(recorder.delays))
	}
}

func TestSubmitTransientThenSuccess(t *testing.T) {
	api := &scriptedAPI{createErrs: []error{serverError(), errors.New("connection reset"), nil}}
	s := NewSubmitter(api, testPolicy())
	s.sleep = (&sleepRecorder{}).sleep

	if _, err := s.Submit(context.Background(), testRecord()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestSubmitRejectedNotRetried(t *testing.T) {
	api := &scriptedAPI{createErrs: []error{badRequest(), nil}}
	recorder := &sleepRecorder{}
	s := NewSubmitter(api, testPolicy())
	s.sleep = recorder.sleep

	_, err := s.Submit(context.Background(), testRecord())
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected *RejectedError, got %v", err)
	}
	if len(recorder.delays) != 0 {
		t.Errorf("rejected calls must not be retried, slept %v", recorder.delays)
	}
	if len(api.created) != 0 {
		t.Errorf("rejected calls must not be reissued, created %d", len(api.created))
	}
}

func TestSubmitAuthError(t *testing.T) {
	api := &scriptedAPI{createErrs: []error{&habitica.APIError{Status: http.StatusUnauthorized}}}
	s := NewSubmitter(api, testPolicy())
	s.sleep = (&sleepRecorder{}).sleep

	_, err := s.Submit(context.Background(), testRecord())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
}

func TestSubmitInterruptedMidBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &scriptedAPI{createErrs: []error{rateLimit(0), nil}}
	s := NewSubmitter(api, testPolicy())
	s.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := s.Submit(ctx, testRecord())
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
}
