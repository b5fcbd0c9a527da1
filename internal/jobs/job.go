// Package jobs runs compiled render pipelines through the media engine and
// turns successful runs into artifacts.
package jobs

import (
	"errors"
	"fmt"
	"time"
)

type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

var ErrInvalidTransition = errors.New("invalid job state transition")

// Job tracks one render. It is owned by the goroutine running it; its ID is
// the pipeline's output id.
type Job struct {
	id         string
	state      State
	reason     string
	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time
}

// Snapshot is an immutable view of a Job.
type Snapshot struct {
	ID         string    `json:"id"`
	State      State     `json:"state"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

func NewJob(id string) *Job {
	return &Job{id: id, state: StatePending, createdAt: time.Now()}
}

func (j *Job) ID() string   { return j.id }
func (j *Job) State() State { return j.state }

func (j *Job) Start() error {
	if err := j.transition(StatePending, StateRunning); err != nil {
		return err
	}
	j.startedAt = time.Now()
	return nil
}

func (j *Job) Succeed() error {
	if err := j.transition(StateRunning, StateSucceeded); err != nil {
		return err
	}
	j.finishedAt = time.Now()
	return nil
}

// Fail records reason exactly as given.
func (j *Job) Fail(reason string) error {
	if err := j.transition(StateRunning, StateFailed); err != nil {
		return err
	}
	j.reason = reason
	j.finishedAt = time.Now()
	return nil
}

func (j *Job) transition(from, to State) error {
	if j.state != from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.state, to)
	}
	j.state = to
	return nil
}

func (j *Job) Snapshot() Snapshot {
	return Snapshot{
		ID:         j.id,
		State:      j.state,
		Reason:     j.reason,
		CreatedAt:  j.createdAt,
		StartedAt:  j.startedAt,
		FinishedAt: j.finishedAt,
	}
}

// Duration is the running time of a finished job, or zero.
func (s Snapshot) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// ExecutionError is returned for a job that reached StateFailed. Its message
// is the job's failure reason, verbatim.
type ExecutionError struct {
	Job Snapshot
	Err error
}

func (e *ExecutionError) Error() string {
	return e.Job.Reason
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
