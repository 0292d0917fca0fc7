// Package sched talks to the PBS command line tools.
package sched

import (
	"context"
	"fmt"
	"strings"

	"github.com/quatton/jobsched/pkg/job"
)

// Scheduler submits jobs and reports their status.
type Scheduler interface {
	// Submit queues the job and returns the scheduler's job id.
	Submit(ctx context.Context, js *job.JobSubmit) (string, error)
	// Stat returns the job's status, or nil when the scheduler does not
	// know the id.
	Stat(ctx context.Context, id string) (*job.JobStat, error)
}

// Result is what a finished command produced.
type Result struct {
	Code   int
	Stdout []byte
	Stderr []byte
}

// Executor runs an external command to completion.
type Executor interface {
	Exec(ctx context.Context, name string, args ...string) (*Result, error)
}

// CommandError is returned when a scheduler command fails to run, exits
// non-zero or times out.
type CommandError struct {
	Command string
	Code    int
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	switch {
	case msg != "":
		return msg
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	default:
		return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// MalformedOutput is returned when qstat output is not the expected JSON
// envelope.
type MalformedOutput struct {
	Reason string
	Output string
	Err    error
}

func (e *MalformedOutput) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed qstat output: %s: %v", e.Reason, e.Err)
	}
	return "malformed qstat output: " + e.Reason
}

func (e *MalformedOutput) Unwrap() error {
	return e.Err
}
