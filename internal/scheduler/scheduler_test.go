package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fiscalrisk/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32
	calls    atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("transient")
	}
	return ctx.Err()
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "0 0 * * * *"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@hourly"}))

	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@hourly"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "c", schedule: "not a cron"}), "bad expression")

	assert.Equal(t, []string{"a", "b"}, s.JobNames())

	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.JobNames())
}

func TestScheduler_RunNowRetries(t *testing.T) {
	tests := []struct {
		name         string
		failures     int32
		wantSuccess  bool
		wantAttempts int
	}{
		{"first try", 0, true, 1},
		{"recovers after retry", 2, true, 3},
		{"gives up", 10, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(logger.Nop(), WithRetries(2, time.Millisecond))
			job := &countingJob{name: "job", schedule: "@daily", failures: tt.failures}
			require.NoError(t, s.AddJob(job))

			result, err := s.RunNow("job")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, result.Success)
			assert.Equal(t, tt.wantAttempts, result.Attempts)
			if !tt.wantSuccess {
				assert.Equal(t, "transient", result.Error)
			}

			stats := s.Stats()["job"]
			assert.Equal(t, 1, stats.TotalRuns)
			require.NotNil(t, stats.LastRun)
		})
	}

	_, err := New(logger.Nop()).RunNow("missing")
	assert.Error(t, err)
}

func TestScheduler_StopCancelsRetries(t *testing.T) {
	s := New(logger.Nop(), WithRetries(5, time.Hour))
	job := &countingJob{name: "job", schedule: "@daily", failures: 100}
	require.NoError(t, s.AddJob(job))

	s.Start()
	go func() {
		time.Sleep(20 * time.Millisecond)
		s.Stop()
	}()

	done := make(chan JobResult, 1)
	go func() {
		r, _ := s.RunNow("job")
		done <- r
	}()

	select {
	case r := <-done:
		assert.False(t, r.Success)
	case <-time.After(5 * time.Second):
		t.Fatal("retry wait was not interrupted by Stop")
	}
}

func TestJobHistory(t *testing.T) {
	var h JobHistory
	assert.Zero(t, h.SuccessRate())
	assert.Empty(t, h.Latest(5))

	for i := 0; i < maxHistory+20; i++ {
		h.AddResult(JobResult{Success: i%4 != 0})
	}
	assert.Len(t, h.Results, maxHistory)
	assert.InDelta(t, 0.75, h.SuccessRate(), 1e-12)
	assert.Len(t, h.Latest(3), 3)
}
