package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/userdetails/pkg/errors"
)

func TestAfterRuns(t *testing.T) {
	var ran atomic.Bool
	task := After(context.Background(), 10*time.Millisecond, func(context.Context) {
		ran.Store(true)
	})
	assert.Equal(t, Pending, task.State())

	require.NoError(t, task.Wait(context.Background()))
	assert.True(t, ran.Load())
	assert.Equal(t, Completed, task.State())
	assert.False(t, task.Cancel())
}

func TestCancelBeforeDeadline(t *testing.T) {
	var ran atomic.Bool
	task := After(context.Background(), time.Hour, func(context.Context) {
		ran.Store(true)
	})

	assert.True(t, task.Cancel())
	assert.False(t, task.Cancel())

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not finish after cancel")
	}
	assert.False(t, ran.Load())
	assert.Equal(t, Canceled, task.State())
	assert.True(t, errors.IsCanceled(task.Err()))
}

func TestParentContextCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	task := After(ctx, time.Hour, func(context.Context) {
		ran.Store(true)
	})
	cancel()

	<-task.Done()
	assert.False(t, ran.Load())
	assert.Equal(t, Canceled, task.State())
	assert.ErrorIs(t, task.Err(), errors.ErrCanceled)
	assert.ErrorIs(t, task.Err(), context.Canceled)
}

func TestDeadline(t *testing.T) {
	before := time.Now()
	task := After(context.Background(), time.Minute, func(context.Context) {})
	defer task.Cancel()
	assert.WithinDuration(t, before.Add(time.Minute), task.Deadline(), time.Second)
}

func TestWaitContext(t *testing.T) {
	task := After(context.Background(), time.Hour, func(context.Context) {})
	defer task.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, task.Wait(ctx), context.DeadlineExceeded)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "canceled", Canceled.String())
	assert.Equal(t, "State(9)", State(9).String())
}
