package service

import (
	"encoding/json"
	"errors"
	"testing"

	"articlegen/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRegistry_SingleRunInFlight(t *testing.T) {
	r := NewRunRegistry(0)

	first, err := r.Start("Robotics")
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusRunning, first.Status)
	assert.NotEmpty(t, first.ID)

	_, err = r.Start("Biotech")
	assert.ErrorIs(t, err, entity.ErrRunInFlight)

	active, ok := r.Active()
	assert.True(t, ok)
	assert.Equal(t, first.ID, active)

	r.Complete(first.ID, &entity.Article{Topic: "Robotics", Body: "body"})

	second, err := r.Start("Biotech")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRunRegistry_EventsAndOutcome(t *testing.T) {
	r := NewRunRegistry(0)
	run, err := r.Start("Robotics")
	require.NoError(t, err)

	r.AppendEvent(run.ID, entity.ProgressEvent{Kind: entity.ProgressTaskStarted})
	r.AppendEvent(run.ID, entity.ProgressEvent{Kind: entity.ProgressTaskFailed, Message: "boom"})
	r.Fail(run.ID, errors.New("task 1 (research) failed: boom"))

	r.AppendEvent(run.ID, entity.ProgressEvent{Kind: entity.ProgressTaskStarted})
	r.Complete(run.ID, &entity.Article{})

	got, err := r.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RunStatusFailed, got.Status)
	assert.Equal(t, "task 1 (research) failed: boom", got.Error)
	assert.Nil(t, got.Article)
	assert.Len(t, got.Events, 2)
	require.NotNil(t, got.FinishedAt)
	assert.False(t, got.FinishedAt.IsZero())

	_, ok := r.Active()
	assert.False(t, ok)
}

func TestRunRegistry_GetReturnsCopy(t *testing.T) {
	r := NewRunRegistry(0)
	run, err := r.Start("Robotics")
	require.NoError(t, err)

	got, err := r.Get(run.ID)
	require.NoError(t, err)
	got.Events = append(got.Events, entity.ProgressEvent{Kind: entity.ProgressTaskStarted})
	got.Status = entity.RunStatusFailed

	again, err := r.Get(run.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Events)
	assert.Equal(t, entity.RunStatusRunning, again.Status)
}

func TestRunRegistry_NotFoundAndEviction(t *testing.T) {
	r := NewRunRegistry(2)

	_, err := r.Get("missing")
	assert.ErrorIs(t, err, entity.ErrRunNotFound)

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := r.Start("topic")
		require.NoError(t, err)
		ids = append(ids, run.ID)
		r.Complete(run.ID, &entity.Article{})
	}

	_, err = r.Get(ids[0])
	assert.ErrorIs(t, err, entity.ErrRunNotFound)
	_, err = r.Get(ids[2])
	assert.NoError(t, err)
}

func TestRunRegistry_FinishedAtOmittedWhileRunning(t *testing.T) {
	r := NewRunRegistry(0)
	run, err := r.Start("Robotics")
	require.NoError(t, err)

	data, err := json.Marshal(run)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "finishedAt")

	r.Complete(run.ID, &entity.Article{Topic: "Robotics"})
	done, err := r.Get(run.ID)
	require.NoError(t, err)

	data, err = json.Marshal(done)
	require.NoError(t, err)
	assert.Contains(t, string(data), "finishedAt")
}
