package bot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/maintain/internal/bot/tasks"
	"github.com/edgard/maintain/internal/config"
	"github.com/edgard/maintain/internal/logger"
)

func TestSchedulerRunNow(t *testing.T) {
	var calls atomic.Int32
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"ok":   func(context.Context) error { calls.Add(1); return nil },
		"fail": func(context.Context) error { return errors.New("boom") },
	}
	s, err := NewScheduler(logger.Discard(), &config.SchedulerConfig{}, taskMap)
	require.NoError(t, err)

	assert.Equal(t, []string{"fail", "ok"}, s.TaskNames())
	require.NoError(t, s.RunNow(context.Background(), "ok"))
	assert.Equal(t, int32(1), calls.Load())
	assert.EqualError(t, s.RunNow(context.Background(), "fail"), "boom")
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestSchedulerStartStop(t *testing.T) {
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"enabled":    {Enabled: true, Schedule: "0 0 3 * * *"},
		"disabled":   {Enabled: false, Schedule: "0 0 3 * * *"},
		"unknown":    {Enabled: true, Schedule: "0 0 3 * * *"},
		"bad_cron":   {Enabled: true, Schedule: "not a cron"},
		"empty_cron": {Enabled: true},
	}}
	noop := func(context.Context) error { return nil }
	s, err := NewScheduler(logger.Discard(), cfg, map[string]tasks.ScheduledTaskFunc{
		"enabled": noop, "disabled": noop, "bad_cron": noop, "empty_cron": noop,
	})
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.Error(t, s.Start(), "second start is rejected")
	assert.Len(t, s.scheduler.Jobs(), 1)
	require.NoError(t, s.Stop())
	assert.NoError(t, s.Stop(), "stopping a stopped scheduler is a no-op")
}

type fakeAPI struct {
	started chan struct{}
	err     error
}

func (f *fakeAPI) Run(ctx context.Context) error {
	close(f.started)
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return nil
}

func TestBotRun(t *testing.T) {
	t.Run("nothing configured", func(t *testing.T) {
		assert.Error(t, NewBot(logger.Discard(), nil, nil, nil).Run(context.Background()))
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		s, err := NewScheduler(logger.Discard(), &config.SchedulerConfig{}, nil)
		require.NoError(t, err)
		api := &fakeAPI{started: make(chan struct{})}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- NewBot(logger.Discard(), nil, s, api).Run(ctx) }()

		<-api.started
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("orchestrator did not stop")
		}
	})

	t.Run("component failure", func(t *testing.T) {
		api := &fakeAPI{started: make(chan struct{}), err: errors.New("port in use")}
		err := NewBot(logger.Discard(), nil, nil, api).Run(context.Background())
		assert.ErrorContains(t, err, "port in use")
	})
}
