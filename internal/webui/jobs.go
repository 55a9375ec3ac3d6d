// Package webui serves the interactive dashboard: a form to request a
// report, async job tracking, a WebSocket progress stream fed by
// pipeline lifecycle events, and report download.
package webui

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dealbrief/dealbrief/internal/agent"
	"github.com/dealbrief/dealbrief/internal/hooks"
	"github.com/dealbrief/dealbrief/internal/logging"
	"github.com/dealbrief/dealbrief/internal/report"
)

// JobStatus is the lifecycle state of a report job.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ReportRunner runs one report request to completion.
type ReportRunner interface {
	Run(ctx context.Context, req agent.Request) (*report.Report, error)
}

// PipelineFactory builds a report runner wired to the given hook
// manager, so each job gets its own event stream.
type PipelineFactory func(hm *hooks.Manager) ReportRunner

// Job tracks one async report request.
type Job struct {
	ID           string
	CustomerName string
	Purpose      string
	Status       JobStatus
	Error        string
	CreatedAt    time.Time

	report *report.Report

	mu         sync.Mutex
	events     []hooks.Payload
	subs       map[chan hooks.Payload]struct{}
	done       bool
	finishedAt time.Time
}

// finishedBefore reports whether the job reached a terminal state
// before cutoff.
func (j *Job) finishedBefore(cutoff time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.done && j.finishedAt.Before(cutoff)
}

// Report returns the finished report, or nil while the job is running
// or after a failure.
func (j *Job) Report() *report.Report {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.report
}

// JobView is the wire representation of a job's current state.
type JobView struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customerName"`
	Purpose      string    `json:"purpose,omitempty"`
	Status       JobStatus `json:"status"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	HasReport    bool      `json:"hasReport"`
}

// View returns a consistent snapshot of the job state.
func (j *Job) View() JobView {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobView{
		ID:           j.ID,
		CustomerName: j.CustomerName,
		Purpose:      j.Purpose,
		Status:       j.Status,
		Error:        j.Error,
		CreatedAt:    j.CreatedAt,
		HasReport:    j.report != nil,
	}
}

// record appends an event and fans it out to live subscribers. Slow
// subscribers are skipped rather than blocking the pipeline.
func (j *Job) record(p hooks.Payload) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, p)
	for ch := range j.subs {
		select {
		case ch <- p:
		default:
		}
	}
}

// Subscribe returns a replay of all events so far plus a channel for
// live events. The channel is closed when the job reaches a terminal
// state. Callers must call the returned cancel function.
func (j *Job) Subscribe() ([]hooks.Payload, <-chan hooks.Payload, func()) {
	j.mu.Lock()
	defer j.mu.Unlock()

	replay := make([]hooks.Payload, len(j.events))
	copy(replay, j.events)

	ch := make(chan hooks.Payload, 32)
	if j.done {
		close(ch)
		return replay, ch, func() {}
	}

	j.subs[ch] = struct{}{}
	cancel := func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		if _, ok := j.subs[ch]; ok {
			delete(j.subs, ch)
			close(ch)
		}
	}
	return replay, ch, cancel
}

// finish marks the job terminal and closes all subscriber channels.
func (j *Job) finish(status JobStatus, rep *report.Report, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.report = rep
	if err != nil {
		j.Error = err.Error()
	}
	j.done = true
	j.finishedAt = time.Now()
	for ch := range j.subs {
		delete(j.subs, ch)
		close(ch)
	}
}

// jobRetention is how long finished jobs stay queryable before they
// are pruned from the manager.
const jobRetention = time.Hour

// JobManager starts report jobs and tracks them by ID. Finished jobs
// are kept for jobRetention so clients can still fetch status and
// reports, then pruned when new jobs start.
type JobManager struct {
	factory   PipelineFactory
	timeout   time.Duration
	retention time.Duration
	log       *logging.Logger

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobManager creates a manager. timeout bounds each job's pipeline
// run end to end.
func NewJobManager(factory PipelineFactory, timeout time.Duration, log *logging.Logger) *JobManager {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &JobManager{
		factory:   factory,
		timeout:   timeout,
		retention: jobRetention,
		log:       log.Sub("jobs"),
		jobs:      make(map[string]*Job),
	}
}

// prune drops finished jobs older than the retention window. Running
// jobs are never dropped.
func (m *JobManager) prune() {
	cutoff := time.Now().Add(-m.retention)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, job := range m.jobs {
		if job.finishedBefore(cutoff) {
			delete(m.jobs, id)
		}
	}
}

// Start launches a report job and returns it immediately.
func (m *JobManager) Start(customerName, purpose string) *Job {
	m.prune()

	job := &Job{
		ID:           uuid.New().String(),
		CustomerName: customerName,
		Purpose:      purpose,
		Status:       JobRunning,
		CreatedAt:    time.Now(),
		subs:         make(map[chan hooks.Payload]struct{}),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	hm := hooks.NewManager(m.log)
	hm.OnAll("job-stream", func(ctx context.Context, p hooks.Payload) error {
		job.record(p)
		return nil
	})
	runner := m.factory(hm)

	m.log.Info().
		Str("job", job.ID).
		Str("customer", customerName).
		Msg("report job started")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		rep, err := runner.Run(ctx, agent.Request{CustomerName: customerName, Purpose: purpose})
		if err != nil {
			m.log.Error().Err(err).Str("job", job.ID).Msg("report job failed")
			job.finish(JobFailed, nil, err)
			return
		}
		job.finish(JobCompleted, rep, nil)
	}()

	return job
}

// Get returns a job by ID.
func (m *JobManager) Get(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	return j, ok
}
