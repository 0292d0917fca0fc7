package sched

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/quatton/jobsched/pkg/job"
)

// qstat exits with this code when the job id is unknown.
const exitUnknownJob = 153

// PBS is a Scheduler backed by the qsub and qstat binaries found under
// ExecPath/bin.
type PBS struct {
	ExecPath string
	// Server, when set, is appended to job ids without a server part.
	Server string

	exec   Executor
	logger *slog.Logger
}

func NewPBS(execPath, server string, exec Executor, logger *slog.Logger) *PBS {
	if logger == nil {
		logger = slog.Default()
	}
	return &PBS{
		ExecPath: execPath,
		Server:   server,
		exec:     exec,
		logger:   logger,
	}
}

func (p *PBS) bin(name string) string {
	return filepath.Join(p.ExecPath, "bin", name)
}

// Submit runs qsub and returns its trimmed output as the job id.
func (p *PBS) Submit(ctx context.Context, js *job.JobSubmit) (string, error) {
	qsub := p.bin("qsub")
	argv, err := js.Argv()
	if err != nil {
		return "", err
	}
	res, err := p.exec.Exec(ctx, qsub, argv...)
	if err != nil {
		return "", err
	}
	if res.Code != 0 {
		return "", &CommandError{Command: qsub, Code: res.Code, Stderr: string(res.Stderr)}
	}

	id := strings.TrimSpace(string(res.Stdout))
	if id == "" {
		return "", &MalformedOutput{Reason: "qsub printed no job id"}
	}
	p.logger.Info("job submitted", "job_id", id)
	return id, nil
}

// Stat runs qstat for one job, finished jobs included. It returns nil, nil
// when qstat does not know the id.
func (p *PBS) Stat(ctx context.Context, id string) (*job.JobStat, error) {
	qstat := p.bin("qstat")
	res, err := p.exec.Exec(ctx, qstat, "-x", "-f", "-F", "json", p.qualify(id))
	if err != nil {
		return nil, err
	}

	if unknownJob(res) {
		p.logger.Debug("job not found", "job_id", id)
		return nil, nil
	}
	if res.Code != 0 {
		return nil, &CommandError{Command: qstat, Code: res.Code, Stderr: string(res.Stderr)}
	}

	jobID, bag, err := parseEnvelope(res.Stdout)
	if err != nil {
		return nil, err
	}
	if bag == nil {
		return nil, nil
	}

	st, err := job.ParseStat(bag)
	if err != nil {
		return nil, &MalformedOutput{Reason: fmt.Sprintf("job %s", jobID), Err: err}
	}
	st.JobID = jobID
	return st, nil
}

func (p *PBS) qualify(id string) string {
	if p.Server == "" || strings.Contains(id, "@") {
		return id
	}
	return id + "@" + p.Server
}

func unknownJob(res *Result) bool {
	if res.Code == exitUnknownJob {
		return true
	}
	if bytes.Contains(res.Stderr, []byte("Unknown Job Id")) {
		return true
	}
	return res.Code == 0 && len(bytes.TrimSpace(res.Stdout)) == 0
}

// parseEnvelope extracts the single job of a `qstat -F json` document. An
// empty Jobs object yields a nil bag.
func parseEnvelope(out []byte) (string, map[string]any, error) {
	doc, err := job.DecodeJSON(bytes.NewReader(out))
	if err != nil {
		return "", nil, &MalformedOutput{Reason: err.Error(), Output: string(out)}
	}

	raw, ok := doc["Jobs"]
	if !ok {
		return "", nil, &MalformedOutput{Reason: `missing "Jobs"`, Output: string(out)}
	}
	jobs, ok := raw.(map[string]any)
	if !ok {
		return "", nil, &MalformedOutput{Reason: `"Jobs" is not an object`, Output: string(out)}
	}

	switch len(jobs) {
	case 0:
		return "", nil, nil
	case 1:
	default:
		return "", nil, &MalformedOutput{Reason: fmt.Sprintf("expected one job, got %d", len(jobs)), Output: string(out)}
	}

	for id, v := range jobs {
		bag, ok := v.(map[string]any)
		if !ok {
			return "", nil, &MalformedOutput{Reason: fmt.Sprintf("job %s is not an object", id), Output: string(out)}
		}
		return id, bag, nil
	}
	return "", nil, nil
}
