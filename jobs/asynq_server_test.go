package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

func TestClientEnqueuesHarvestReminder(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	client := NewClientWith(enqueuer)

	require.NoError(t, client.EnqueueHarvestReminder(context.Background(), "u1", "c1"))
	require.Len(t, enqueuer.tasks, 1)
	assert.Equal(t, TaskHarvestReminder, enqueuer.tasks[0].Type())

	var payload HarvestReminderPayload
	require.NoError(t, json.Unmarshal(enqueuer.tasks[0].Payload(), &payload))
	assert.Equal(t, HarvestReminderPayload{OwnerID: "u1", CropID: "c1"}, payload)
}

func TestClientIgnoresDuplicateReminder(t *testing.T) {
	client := NewClientWith(&fakeEnqueuer{err: asynq.ErrDuplicateTask})
	assert.NoError(t, client.EnqueueHarvestReminder(context.Background(), "u1", "c1"))
}

func TestClientPropagatesEnqueueFailure(t *testing.T) {
	client := NewClientWith(&fakeEnqueuer{err: errors.New("redis down")})
	assert.Error(t, client.EnqueueHarvestReminder(context.Background(), "u1", "c1"))
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

func serveHealth(inspector QueueInspector) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(inspector, nil).MountRoutes)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	return rr
}

func TestJobsHealthReportsQueue(t *testing.T) {
	rr := serveHealth(fakeInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 4, Active: 1}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":{"queue":"default","pending":4,"active":1,"retry":0}}`, rr.Body.String())
}

func TestJobsHealthUnavailable(t *testing.T) {
	rr := serveHealth(fakeInspector{err: errors.New("redis down")})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestJobsHealthWithoutInspector(t *testing.T) {
	rr := serveHealth(nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"queue":"default"`)
}

func TestTaskErrorLoggerRecordsTaskType(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	taskErrorLogger(logger).HandleError(context.Background(), asynq.NewTask(TaskHarvestReminder, nil), errors.New("push gateway down"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "task failed", entry["msg"])
	assert.Equal(t, TaskHarvestReminder, entry["task"])
	assert.Equal(t, "push gateway down", entry["error"])
}

func TestSlogAdapterJoinsArgs(t *testing.T) {
	var buf bytes.Buffer
	adapter := slogAdapter{logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	adapter.Warn("queue ", "default", " paused")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "queue default paused", entry["msg"])
}
