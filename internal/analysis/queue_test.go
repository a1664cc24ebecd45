package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "id", Queue: QueueName}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

func TestNewAlbumTask(t *testing.T) {
	task, err := NewAlbumTask(42)
	require.NoError(t, err)
	assert.Equal(t, TypeAnalyzeAlbum, task.Type())

	var p albumPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, uint(42), p.AlbumID)
	assert.Equal(t, "analyze-album:42", taskID(42))
}

func TestQueueDispatcher(t *testing.T) {
	fake := &fakeEnqueuer{}
	d := &QueueDispatcher{client: fake}

	require.NoError(t, d.Dispatch(context.Background(), 3))
	require.Len(t, fake.tasks, 1)

	fake.err = asynq.ErrTaskIDConflict
	assert.NoError(t, d.Dispatch(context.Background(), 3), "duplicate is still accepted")

	fake.err = errors.New("redis down")
	assert.Error(t, d.Dispatch(context.Background(), 3))
}

func TestHandleAlbumTask(t *testing.T) {
	var got uint
	h := HandleAlbumTask(runnerFunc(func(_ context.Context, id uint) (Summary, error) {
		got = id
		return Summary{}, nil
	}))

	task, err := NewAlbumTask(9)
	require.NoError(t, err)
	require.NoError(t, h(context.Background(), task))
	assert.Equal(t, uint(9), got)

	bad := asynq.NewTask(TypeAnalyzeAlbum, []byte("{"))
	err = h(context.Background(), bad)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	inFlight := HandleAlbumTask(runnerFunc(func(context.Context, uint) (Summary, error) {
		return Summary{}, ErrAlbumInFlight
	}))
	assert.NoError(t, inFlight(context.Background(), task))
}

func TestHandleAlbumTask_FailedRunCompletes(t *testing.T) {
	task, err := NewAlbumTask(5)
	require.NoError(t, err)

	failing := HandleAlbumTask(runnerFunc(func(context.Context, uint) (Summary, error) {
		return Summary{AlbumID: 5}, errors.New("database is locked")
	}))
	assert.NoError(t, failing(context.Background(), task), "failed runs must not be archived under the album task id")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	interrupted := HandleAlbumTask(runnerFunc(func(ctx context.Context, _ uint) (Summary, error) {
		return Summary{AlbumID: 5}, ctx.Err()
	}))
	assert.NoError(t, interrupted(ctx, task))
}
