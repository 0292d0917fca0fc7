// Package job holds the PBS job records: the submission a client sends, the
// status qstat reports, and the translation of both to and from the
// scheduler's native attributes.
package job

import (
	"encoding/json"
	"strings"
	"time"
)

// JobResources is a set of requested or used compute resources.
type JobResources struct {
	NodeCount *int    `json:"node_count,omitempty" doc:"Number of nodes (nodect)"`
	Mem       *string `json:"mem,omitempty" doc:"Memory, e.g. 10gb"`
	CPU       *int    `json:"cpu,omitempty" doc:"Number of CPUs (ncpus)"`
	GPU       *int    `json:"gpu,omitempty" doc:"Number of GPUs (ngpus)"`
	Select    *string `json:"select,omitempty" doc:"Raw node selection spec"`
	Place     *string `json:"place,omitempty" doc:"Placement policy"`
	Walltime  *string `json:"walltime,omitempty" doc:"Walltime as HH:MM:SS"`
}

// JobPaths controls where the job's streams go.
type JobPaths struct {
	Stdout   *string `json:"stdout,omitempty" doc:"Output path (Output_Path)"`
	Stderr   *string `json:"stderr,omitempty" doc:"Error path (Error_Path)"`
	JoinMode *string `json:"join_mode,omitempty" doc:"Join mode: oe, eo or n"`
	Shell    *string `json:"shell,omitempty" doc:"Shell path (Shell_Path_List)"`
}

// JobFlags are tri-state switches; nil means "do not specify".
type JobFlags struct {
	Interactive *bool `json:"interactive,omitempty"`
	Rerunable   *bool `json:"rerunable,omitempty"`
	CopyEnv     *bool `json:"copy_env,omitempty"`
	ForwardX11  *bool `json:"forward_X11,omitempty"`
	Hold        *bool `json:"hold,omitempty"`
	Array       *bool `json:"array,omitempty"`
}

// JobNotification selects who gets mail and on which events.
type JobNotification struct {
	To         []string `json:"to,omitempty" doc:"Mail recipients (Mail_Users)"`
	OnStarted  *bool    `json:"on_started,omitempty"`
	OnFinished *bool    `json:"on_finished,omitempty"`
	OnAborted  *bool    `json:"on_aborted,omitempty"`
}

// Events composes the Mail_Points code in b, e, a order.
func (n *JobNotification) Events() string {
	if n == nil {
		return ""
	}
	var ev []byte
	if isTrue(n.OnStarted) {
		ev = append(ev, 'b')
	}
	if isTrue(n.OnFinished) {
		ev = append(ev, 'e')
	}
	if isTrue(n.OnAborted) {
		ev = append(ev, 'a')
	}
	return string(ev)
}

// SetEvents decomposes a Mail_Points code into all three flags, each set
// explicitly. Unknown characters (like "n") are ignored.
func (n *JobNotification) SetEvents(code string) {
	started := strings.ContainsRune(code, 'b')
	finished := strings.ContainsRune(code, 'e')
	aborted := strings.ContainsRune(code, 'a')
	n.OnStarted, n.OnFinished, n.OnAborted = &started, &finished, &aborted
}

// JobAttrs are the optional attributes shared by submissions and status
// records.
type JobAttrs struct {
	Priority   *int              `json:"priority,omitempty" doc:"Priority, -1024 to 1023"`
	Account    *string           `json:"account,omitempty" doc:"Account name"`
	Project    *string           `json:"project,omitempty"`
	Paths      *JobPaths         `json:"paths,omitempty"`
	Flags      *JobFlags         `json:"flags,omitempty"`
	Notify     *JobNotification  `json:"notify_on,omitempty"`
	ArrayRange *string           `json:"array_range,omitempty" doc:"Array indices, e.g. 1-10"`
	Env        map[string]string `json:"env,omitempty" doc:"Environment (Variable_List)"`
}

// JobExtra is JobAttrs plus any attribute the model does not know about.
// Extras are rendered as -W key=value pairs.
type JobExtra struct {
	JobAttrs
	Extras map[string]string `json:"-"`
}

// MarshalJSON writes the extras next to the named attributes so a marshalled
// submission parses back to the same value.
func (e JobExtra) MarshalJSON() ([]byte, error) {
	named, err := json.Marshal(e.JobAttrs)
	if err != nil {
		return nil, err
	}
	if len(e.Extras) == 0 {
		return named, nil
	}
	out := make(map[string]any, len(e.Extras))
	for k, v := range e.Extras {
		out[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(named, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

// Job carries the fields every job record has.
type Job struct {
	Name       *string `json:"name,omitempty" doc:"Job name (Job_Name)"`
	Queue      *string `json:"queue,omitempty" doc:"Destination queue"`
	SubmitArgs *string `json:"submit_args,omitempty" doc:"Command and arguments to run"`
}

// JobSubmit is a validated job submission. It is not modified after
// ParseSubmit returns it.
type JobSubmit struct {
	Job
	Resources *JobResources `json:"resources,omitempty"`
	Extra     *JobExtra     `json:"extra,omitempty"`
}

// JobResourceUsage pairs requested and used resources.
type JobResourceUsage struct {
	Request *JobResources `json:"request,omitempty" doc:"Resource_List"`
	Used    *JobResources `json:"used,omitempty" doc:"resources_used"`
}

// JobTimeline holds the scheduler timestamps of a job.
type JobTimeline struct {
	CreatedAt *time.Time `json:"created_at,omitempty" doc:"ctime"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" doc:"mtime"`
	QueuedAt  *time.Time `json:"queued_at,omitempty" doc:"qtime"`
	ReadyAt   *time.Time `json:"ready_at,omitempty" doc:"etime"`
}

// JobStat is the status of a job as reported by qstat. Extra holds every
// attribute that is not mapped onto a named field, keyed by its PBS name.
type JobStat struct {
	Job
	JobAttrs
	JobID     string            `json:"job_id" doc:"Scheduler job identifier"`
	Owner     *string           `json:"owner,omitempty" doc:"Job_Owner"`
	Status    *JobStatus        `json:"status,omitempty" enum:"B,E,F,H,M,Q,R,T,W,S" doc:"job_state code"`
	Server    *string           `json:"server,omitempty"`
	Resources *JobResourceUsage `json:"resources,omitempty"`
	Comment   *string           `json:"comment,omitempty"`
	Timeline  *JobTimeline      `json:"timeline,omitempty"`
	HoldType  *string           `json:"hold_type,omitempty" doc:"Hold_Types"`
	Extra     map[string]any    `json:"extra" doc:"Unmapped PBS attributes"`
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
