package job

import (
	"fmt"
	"strings"
)

// JobStatus is the one-letter job_state code reported by qstat.
type JobStatus string

const (
	StatusArrayJob JobStatus = "B"
	StatusExit     JobStatus = "E"
	StatusFinish   JobStatus = "F"
	StatusHold     JobStatus = "H"
	StatusMoved    JobStatus = "M"
	StatusQueue    JobStatus = "Q"
	StatusRunning  JobStatus = "R"
	StatusTransfer JobStatus = "T"
	StatusWait     JobStatus = "W"
	StatusSuspend  JobStatus = "S"
)

var statusNames = map[JobStatus]string{
	StatusArrayJob: "ARRAY_JOB",
	StatusExit:     "EXIT",
	StatusFinish:   "FINISH",
	StatusHold:     "HOLD",
	StatusMoved:    "MOVED",
	StatusQueue:    "QUEUE",
	StatusRunning:  "RUNNING",
	StatusTransfer: "TRANSFER",
	StatusWait:     "WAIT",
	StatusSuspend:  "SUSPEND",
}

// String returns the status name, e.g. RUNNING.
func (s JobStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return string(s)
}

// Valid reports whether s is a known status code.
func (s JobStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// ParseJobStatus accepts a one-letter code ("R") or a name ("RUNNING").
func ParseJobStatus(v string) (JobStatus, error) {
	v = strings.TrimSpace(v)
	if s := JobStatus(strings.ToUpper(v)); s.Valid() {
		return s, nil
	}
	for code, name := range statusNames {
		if strings.EqualFold(name, v) {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown job status %q", v)
}
