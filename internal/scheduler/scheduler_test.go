package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alpha-engine/backend/pkg/logger"
)

type testJob struct {
	name     string
	schedule string
	failures int32 // fail this many runs first
	runs     atomic.Int32
}

func (j *testJob) Name() string {
	return j.name
}

func (j *testJob) Schedule() string {
	return j.schedule
}

func (j *testJob) Run(ctx context.Context) error {
	n := j.runs.Add(1)
	if n <= j.failures {
		return errors.New("upstream unavailable")
	}
	return nil
}

func newTestScheduler(opts ...Option) *Scheduler {
	opts = append([]Option{WithRetry(2, time.Millisecond)}, opts...)
	return New(logger.NewNop(), opts...)
}

func TestScheduler_AddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&testJob{name: "news_scrape", schedule: "0 */5 * * * *"}))
	require.NoError(t, s.AddJob(&testJob{name: "news_cleanup", schedule: "@daily"}))

	err := s.AddJob(&testJob{name: "news_scrape", schedule: "0 */5 * * * *"})
	assert.ErrorContains(t, err, "already exists")

	err = s.AddJob(&testJob{name: "bad", schedule: "every now and then"})
	assert.ErrorContains(t, err, "failed to schedule")

	assert.Equal(t, []string{"news_cleanup", "news_scrape"}, s.GetAllJobs())
}

func TestScheduler_RunNowRetries(t *testing.T) {
	s := newTestScheduler()
	job := &testJob{name: "watchlist_scan", schedule: "@hourly", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "watchlist_scan")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), job.runs.Load())
}

func TestScheduler_RunNowFails(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&testJob{name: "news_scrape", schedule: "@hourly", failures: 10}))

	result, err := s.RunNow(context.Background(), "news_scrape")
	assert.ErrorContains(t, err, "upstream unavailable")
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestScheduler_CanceledRunStopsRetrying(t *testing.T) {
	s := New(logger.NewNop(), WithRetry(5, time.Hour))
	job := &testJob{name: "news_scrape", schedule: "@hourly", failures: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.RunNow(ctx, "news_scrape")
	assert.Error(t, err)
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestScheduler_StatsAndRemove(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&testJob{name: "news_cleanup", schedule: "0 0 4 * * *", failures: 3}))
	s.Start()
	defer s.Stop()

	_, _ = s.RunNow(context.Background(), "news_cleanup") // fails 3 times
	_, _ = s.RunNow(context.Background(), "news_cleanup")

	stats := s.GetJobStats()["news_cleanup"]
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailureCount)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-9)
	assert.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)
	assert.NotNil(t, stats.NextRun)

	require.NoError(t, s.RemoveJob("news_cleanup"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("news_cleanup"))

	history, err := s.GetJobHistory("news_cleanup")
	require.NoError(t, err)
	assert.Len(t, history.Results, 2)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Zero(t, h.SuccessRate())
	assert.Empty(t, h.Latest(5))

	for i := 0; i < historyLimit+10; i++ {
		h.Add(JobResult{JobName: "x", Success: i%2 == 0, Attempts: i})
	}

	assert.Len(t, h.Results, historyLimit)
	assert.Equal(t, 10, h.Results[0].Attempts)
	assert.Len(t, h.Failed(), historyLimit/2)
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)

	latest := h.Latest(2)
	require.Len(t, latest, 2)
	assert.Equal(t, historyLimit+9, latest[1].Attempts)
}

// blockingJob holds each run open until release is closed
type blockingJob struct {
	started chan struct{}
	release chan struct{}
	runs    atomic.Int32
}

func (j *blockingJob) Name() string     { return "watchlist_scan" }
func (j *blockingJob) Schedule() string { return "@hourly" }

func (j *blockingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	j.started <- struct{}{}
	<-j.release
	return nil
}

func TestScheduler_RunNowSkipsWhileRunning(t *testing.T) {
	s := newTestScheduler()
	job := &blockingJob{started: make(chan struct{}, 4), release: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background(), "watchlist_scan")
		done <- err
	}()
	<-job.started

	// a manual run and a cron tick both see the run in flight
	_, err := s.RunNow(context.Background(), "watchlist_scan")
	assert.ErrorIs(t, err, ErrJobRunning)
	s.scheduledRun(job)
	assert.Equal(t, int32(1), job.runs.Load())

	close(job.release)
	require.NoError(t, <-done)

	// the guard is released afterwards
	result, err := s.RunNow(context.Background(), "watchlist_scan")
	require.NoError(t, err)
	assert.True(t, result.Success)
	<-job.started
	assert.Equal(t, int32(2), job.runs.Load())

	history, err := s.GetJobHistory("watchlist_scan")
	require.NoError(t, err)
	assert.Len(t, history.Results, 2)
}

func TestScheduler_ScheduledRunBlocksRunNow(t *testing.T) {
	s := newTestScheduler()
	job := &blockingJob{started: make(chan struct{}, 4), release: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	done := make(chan struct{})
	go func() {
		s.scheduledRun(job)
		close(done)
	}()
	<-job.started

	_, err := s.RunNow(context.Background(), "watchlist_scan")
	assert.ErrorIs(t, err, ErrJobRunning)

	close(job.release)
	<-done
	history, err := s.GetJobHistory("watchlist_scan")
	require.NoError(t, err)
	assert.Len(t, history.Results, 1)
}

func TestScheduler_RunNowFailureIsTyped(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&testJob{name: "news_scrape", schedule: "@hourly", failures: 10}))

	_, err := s.RunNow(context.Background(), "news_scrape")
	assert.ErrorIs(t, err, ErrJobFailed)

	_, err = s.RunNow(context.Background(), "missing")
	assert.NotErrorIs(t, err, ErrJobFailed)
}

func TestScheduler_GetJobHistoryReturnsCopy(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&testJob{name: "news_cleanup", schedule: "@daily"}))
	_, err := s.RunNow(context.Background(), "news_cleanup")
	require.NoError(t, err)

	history, err := s.GetJobHistory("news_cleanup")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	history.Results[0].Success = false
	history.Add(JobResult{JobName: "news_cleanup"})

	again, err := s.GetJobHistory("news_cleanup")
	require.NoError(t, err)
	require.Len(t, again.Results, 1)
	assert.True(t, again.Results[0].Success)
}
