package importer

import (
	"context"

	"habitui/internal/habitica"
	"habitui/internal/model"
)

// API is the remote surface the import pipeline needs. *habitica.Client
// satisfies it; tests substitute fakes.
type API interface {
	UserTasks(ctx context.Context, taskType string) ([]habitica.Task, error)
	CreateTask(ctx context.Context, create habitica.TaskCreate) (habitica.Task, error)
}

// IndexKey identifies a remote task for duplicate matching. Name holds
// the normalized form.
type IndexKey struct {
	Type model.TaskType
	Name string
}

// Index is a snapshot of the remote task set, keyed by (type, name).
// It is built once per run and goes stale as soon as another client
// mutates remote state; that is an accepted limitation.
type Index map[IndexKey]string

// Lookup returns the remote task id matching (taskType, name), if any
func (idx Index) Lookup(taskType model.TaskType, name string) (string, bool) {
	id, ok := idx[IndexKey{Type: taskType, Name: model.NormalizeName(name)}]
	return id, ok
}

// BuildIndex lists all remote tasks and builds the identity mapping.
// The listing call goes through the same backoff policy as writes;
// rejected credentials come back as *AuthError.
func BuildIndex(ctx context.Context, api API, policy BackoffPolicy, sleep SleepFunc) (Index, error) {
	var tasks []habitica.Task
	err := Retry(ctx, policy, sleep, func() error {
		var listErr error
		tasks, listErr = api.UserTasks(ctx, "")
		return listErr
	})
	if err != nil {
		return nil, err
	}

	idx := make(Index, len(tasks))
	for _, task := range tasks {
		taskType, ok := model.ParseType(task.Type)
		if !ok {
			// Rewards and anything else outside the importable
			// types never collide with imports.
			continue
		}
		idx[IndexKey{Type: taskType, Name: model.NormalizeName(task.Text)}] = task.ID
	}
	return idx, nil
}
