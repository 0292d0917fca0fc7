package sched

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/quatton/jobsched/pkg/job"
	"k8s.io/utils/ptr"
)

type call struct {
	name string
	args []string
}

// fakeExecutor records calls and replays a canned result.
type fakeExecutor struct {
	calls  []call
	result *Result
	err    error
}

func (f *fakeExecutor) Exec(ctx context.Context, name string, args ...string) (*Result, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.result, f.err
}

const statOutput = `{
	"timestamp": 1675421000,
	"pbs_version": "2022.1.1",
	"pbs_server": "pbs01",
	"Jobs": {
		"7.pbs01": {
			"Job_Name": "STDIN",
			"job_state": "Q",
			"queue": "workq",
			"ctime": "Fri Feb  3 10:41:52 2023",
			"Resource_List": {"ncpus": 2, "mem": "1gb"},
			"Submit_Host": "nn01.cluster"
		}
	}
}`

func TestPBS_Submit(t *testing.T) {
	fake := &fakeExecutor{result: &Result{Stdout: []byte("100.pbs00\n")}}
	pbs := NewPBS("/opt/pbs", "", fake, nil)

	js := &job.JobSubmit{
		Job:       job.Job{Name: ptr.To("STDIN"), SubmitArgs: ptr.To("-- /bin/sleep 10")},
		Resources: &job.JobResources{CPU: ptr.To(1)},
	}
	id, err := pbs.Submit(context.Background(), js)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if id != "100.pbs00" {
		t.Errorf("Expected job id 100.pbs00, got %q", id)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("Expected one exec, got %d", len(fake.calls))
	}
	got := fake.calls[0]
	if got.name != "/opt/pbs/bin/qsub" {
		t.Errorf("Expected /opt/pbs/bin/qsub, got %s", got.name)
	}
	want := []string{"-N", "STDIN", "-l", "ncpus=1", "--", "/bin/sleep", "10"}
	if !reflect.DeepEqual(got.args, want) {
		t.Errorf("Expected args %v, got %v", want, got.args)
	}
}

func TestPBS_SubmitRejectsUnbalancedQuotes(t *testing.T) {
	fake := &fakeExecutor{result: &Result{Stdout: []byte("100.pbs00\n")}}
	pbs := NewPBS("/opt/pbs", "", fake, nil)

	_, err := pbs.Submit(context.Background(), &job.JobSubmit{Job: job.Job{SubmitArgs: ptr.To(`echo "hi`)}})
	var ve *job.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Expected *job.ValidationError, got %v", err)
	}
	if len(fake.calls) != 0 {
		t.Errorf("Expected qsub not to run, got %d calls", len(fake.calls))
	}
}

func TestPBS_SubmitFailure(t *testing.T) {
	fake := &fakeExecutor{result: &Result{Code: 2, Stderr: []byte("qsub: Unknown queue\n")}}
	pbs := NewPBS("/opt/pbs", "", fake, nil)

	_, err := pbs.Submit(context.Background(), &job.JobSubmit{Job: job.Job{SubmitArgs: ptr.To("true")}})
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Expected *CommandError, got %v", err)
	}
	if cmdErr.Code != 2 {
		t.Errorf("Expected code 2, got %d", cmdErr.Code)
	}
	if cmdErr.Error() != "qsub: Unknown queue" {
		t.Errorf("Expected stderr as message, got %q", cmdErr.Error())
	}
}

func TestPBS_Stat(t *testing.T) {
	fake := &fakeExecutor{result: &Result{Stdout: []byte(statOutput)}}
	pbs := NewPBS("/opt/pbs", "pbs01", fake, nil)

	st, err := pbs.Stat(context.Background(), "7")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if st == nil {
		t.Fatal("Expected a job")
	}

	wantArgs := []string{"-x", "-f", "-F", "json", "7@pbs01"}
	if !reflect.DeepEqual(fake.calls[0].args, wantArgs) {
		t.Errorf("Expected args %v, got %v", wantArgs, fake.calls[0].args)
	}
	if fake.calls[0].name != "/opt/pbs/bin/qstat" {
		t.Errorf("Expected /opt/pbs/bin/qstat, got %s", fake.calls[0].name)
	}

	if st.JobID != "7.pbs01" {
		t.Errorf("Expected job id from the envelope key, got %q", st.JobID)
	}
	if st.Status == nil || *st.Status != job.StatusQueue {
		t.Errorf("Expected status Q, got %v", st.Status)
	}
	if st.Resources == nil || st.Resources.Request == nil || *st.Resources.Request.CPU != 2 {
		t.Errorf("Expected 2 requested cpus, got %+v", st.Resources)
	}
	if st.Extra["Submit_Host"] != "nn01.cluster" {
		t.Errorf("Expected Submit_Host in extra, got %v", st.Extra)
	}
}

func TestPBS_StatNotFound(t *testing.T) {
	cases := map[string]*Result{
		"unknown job id": {Code: 35, Stderr: []byte("qstat: Unknown Job Id 9.pbs01\n")},
		"exit 153":       {Code: 153},
		"empty output":   {Stdout: []byte("  \n")},
		"empty jobs":     {Stdout: []byte(`{"Jobs": {}}`)},
	}
	for name, res := range cases {
		t.Run(name, func(t *testing.T) {
			pbs := NewPBS("/opt/pbs", "", &fakeExecutor{result: res}, nil)
			st, err := pbs.Stat(context.Background(), "9")
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if st != nil {
				t.Errorf("Expected nil job, got %+v", st)
			}
		})
	}
}

func TestPBS_StatErrors(t *testing.T) {
	t.Run("command error", func(t *testing.T) {
		fake := &fakeExecutor{result: &Result{Code: 1, Stderr: []byte("qstat: cannot connect to server")}}
		_, err := NewPBS("/opt/pbs", "", fake, nil).Stat(context.Background(), "1")
		var cmdErr *CommandError
		if !errors.As(err, &cmdErr) {
			t.Fatalf("Expected *CommandError, got %v", err)
		}
	})

	malformed := map[string]string{
		"not json":     "qstat: something",
		"no jobs key":  `{"timestamp": 1}`,
		"jobs array":   `{"Jobs": []}`,
		"two jobs":     `{"Jobs": {"1.a": {}, "2.a": {}}}`,
		"bad record":   `{"Jobs": {"1.a": "x"}}`,
		"bad time":     `{"Jobs": {"1.a": {"ctime": "yesterday"}}}`,
		"unknown code": `{"Jobs": {"1.a": {"job_state": "Z"}}}`,
	}
	for name, out := range malformed {
		t.Run(name, func(t *testing.T) {
			fake := &fakeExecutor{result: &Result{Stdout: []byte(out)}}
			_, err := NewPBS("/opt/pbs", "", fake, nil).Stat(context.Background(), "1")
			var mo *MalformedOutput
			if !errors.As(err, &mo) {
				t.Fatalf("Expected *MalformedOutput, got %v", err)
			}
		})
	}
}

func TestPBS_ExecError(t *testing.T) {
	boom := &CommandError{Command: "qstat", Code: -1, Err: context.DeadlineExceeded}
	_, err := NewPBS("/opt/pbs", "", &fakeExecutor{err: boom}, nil).Stat(context.Background(), "1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected the executor error to pass through, got %v", err)
	}
}

func TestCommandExecutor_Result(t *testing.T) {
	e := NewCommandExecutor()
	res, err := e.Exec(context.Background(), "sh", "-c", "echo out; echo err >&2; exit 3")
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if res.Code != 3 {
		t.Errorf("Expected exit code 3, got %d", res.Code)
	}
	if string(res.Stdout) != "out\n" || string(res.Stderr) != "err\n" {
		t.Errorf("Unexpected output %q / %q", res.Stdout, res.Stderr)
	}
}

func TestCommandExecutor_Timeout(t *testing.T) {
	e := NewCommandExecutor(WithTimeout(100 * time.Millisecond))

	start := time.Now()
	_, err := e.Exec(context.Background(), "sleep", "5")
	if time.Since(start) > 3*time.Second {
		t.Error("Command was not killed at the deadline")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Expected *CommandError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
}

func TestCommandExecutor_MissingBinary(t *testing.T) {
	_, err := NewCommandExecutor().Exec(context.Background(), filepath.Join(t.TempDir(), "qsub"))
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Expected *CommandError, got %v", err)
	}
}

// TestPBS_Installation runs the adapter against shell scripts standing in
// for a PBS installation.
func TestPBS_Installation(t *testing.T) {
	root := t.TempDir()
	bin := filepath.Join(root, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	scripts := map[string]string{
		"qsub":  "#!/bin/sh\necho \"$@\" > \"$(dirname \"$0\")/qsub.args\"\necho 42.pbs01\n",
		"qstat": "#!/bin/sh\necho 'qstat: Unknown Job Id' >&2\nexit 153\n",
	}
	for name, body := range scripts {
		if err := os.WriteFile(filepath.Join(bin, name), []byte(body), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	pbs := NewPBS(root, "", NewCommandExecutor(WithTimeout(5*time.Second)), nil)
	js := &job.JobSubmit{Job: job.Job{Queue: ptr.To("workq"), SubmitArgs: ptr.To("hostname")}}

	id, err := pbs.Submit(context.Background(), js)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if id != "42.pbs01" {
		t.Errorf("Expected 42.pbs01, got %q", id)
	}
	args, _ := os.ReadFile(filepath.Join(bin, "qsub.args"))
	if strings.TrimSpace(string(args)) != "-q workq -- hostname" {
		t.Errorf("Unexpected qsub args %q", args)
	}

	st, err := pbs.Stat(context.Background(), "43.pbs01")
	if err != nil || st != nil {
		t.Errorf("Expected not found, got %v, %v", st, err)
	}
}
