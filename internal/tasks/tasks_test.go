package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enqueued struct {
	task *asynq.Task
	opts []asynq.Option
}

type fakeEnqueuer struct {
	calls []enqueued
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.calls = append(f.calls, enqueued{task: task, opts: opts})
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "x"}, nil
}

func optionValue(opts []asynq.Option, typ asynq.OptionType) (any, bool) {
	for _, opt := range opts {
		if opt.Type() == typ {
			return opt.Value(), true
		}
	}
	return nil, false
}

func TestTaskConstructors(t *testing.T) {
	task, err := NewPageRecompileTask(3, "cid")
	require.NoError(t, err)
	assert.Equal(t, TypePageRecompile, task.Type())
	assert.JSONEq(t, `{"page_id":3,"correlation_id":"cid"}`, string(task.Payload()))

	task, err = NewThemePartRecompileTask(4, "cid")
	require.NoError(t, err)
	assert.Equal(t, TypeThemePartRecompile, task.Type())
	assert.JSONEq(t, `{"theme_part_id":4,"correlation_id":"cid"}`, string(task.Payload()))

	task, err = NewThemePublishTask(5, "cid")
	require.NoError(t, err)
	assert.Equal(t, TypeThemePublish, task.Type())
	assert.JSONEq(t, `{"theme_id":5,"correlation_id":"cid"}`, string(task.Payload()))

	tenant := uint(9)
	task, err = NewThemeSyncTask(ThemeSyncPayload{Slug: "base", TenantID: &tenant, Activate: true})
	require.NoError(t, err)
	assert.Equal(t, TypeThemeSync, task.Type())
	assert.JSONEq(t, `{"slug":"base","tenant_id":9,"activate":true,"correlation_id":""}`, string(task.Payload()))
}

func TestDispatcher_RecompileDeduplicates(t *testing.T) {
	fake := &fakeEnqueuer{}
	d := NewDispatcher(fake)

	require.NoError(t, d.RecompilePages(context.Background(), []uint{1, 2}, ""))
	require.Len(t, fake.calls, 2)

	id, ok := optionValue(fake.calls[0].opts, asynq.TaskIDOpt)
	require.True(t, ok)
	assert.Equal(t, "page:recompile:1", id)

	var payload PageRecompilePayload
	require.NoError(t, json.Unmarshal(fake.calls[1].task.Payload(), &payload))
	assert.Equal(t, uint(2), payload.PageID)
	assert.NotEmpty(t, payload.CorrelationID)
}

func TestDispatcher_ConflictIsNotAnError(t *testing.T) {
	fake := &fakeEnqueuer{err: asynq.ErrTaskIDConflict}
	d := NewDispatcher(fake)

	assert.NoError(t, d.RecompileThemePart(context.Background(), 7, "cid"))
}

func TestDispatcher_PublishIsNeverDeduplicated(t *testing.T) {
	fake := &fakeEnqueuer{}
	d := NewDispatcher(fake)

	require.NoError(t, d.PublishTheme(context.Background(), 1, "cid"))
	_, ok := optionValue(fake.calls[0].opts, asynq.TaskIDOpt)
	assert.False(t, ok)

	var payload ThemePublishPayload
	require.NoError(t, json.Unmarshal(fake.calls[0].task.Payload(), &payload))
	assert.Equal(t, "cid", payload.CorrelationID)
}

func TestDispatcher_PropagatesEnqueueErrors(t *testing.T) {
	fake := &fakeEnqueuer{err: errors.New("redis down")}
	d := NewDispatcher(fake)

	err := d.SyncTheme(context.Background(), ThemeSyncPayload{Slug: "base"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}
