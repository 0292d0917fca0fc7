package job

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// Arg is one qsub option. Value is only meaningful when HasValue is set.
type Arg struct {
	Flag     string
	Value    string
	HasValue bool

	// items holds the entries of a list value, joined by bare commas in argv.
	items []string
}

func (a Arg) String() string {
	if !a.HasValue {
		return a.Flag
	}
	return a.Flag + " " + a.Value
}

func flag(f string) Arg { return Arg{Flag: f} }

func opt(f, v string) Arg { return Arg{Flag: f, Value: v, HasValue: true} }

func list(f string, items []string) Arg {
	return Arg{Flag: f, Value: strings.Join(items, ", "), HasValue: true, items: items}
}

// Args renders the submission as qsub options. The group order is fixed:
// flags, name and queue, resources, paths, mail, scalars, environment,
// extras and finally the command after "--".
func (s *JobSubmit) Args() []Arg {
	var out []Arg
	e := s.Extra

	if e != nil && e.Flags != nil {
		f := e.Flags
		if isTrue(f.Interactive) {
			out = append(out, flag("-I"))
		}
		if f.Rerunable != nil {
			out = append(out, opt("-r", yesNo(*f.Rerunable)))
		}
		if isTrue(f.CopyEnv) {
			out = append(out, flag("-V"))
		}
		if isTrue(f.ForwardX11) {
			out = append(out, flag("-X"))
		}
		if isTrue(f.Hold) {
			out = append(out, flag("-h"))
		}
	}

	if s.Name != nil {
		out = append(out, opt("-N", *s.Name))
	}
	if s.Queue != nil {
		out = append(out, opt("-q", *s.Queue))
	}

	if r := s.Resources; r != nil {
		out = appendInt(out, "-l", "nodect", r.NodeCount)
		out = appendInt(out, "-l", "ncpus", r.CPU)
		out = appendInt(out, "-l", "ngpus", r.GPU)
		out = appendStr(out, "-l", "mem", r.Mem)
		out = appendStr(out, "-l", "select", r.Select)
		out = appendStr(out, "-l", "place", r.Place)
		out = appendStr(out, "-l", "walltime", r.Walltime)
	}

	if e != nil && e.Paths != nil {
		p := e.Paths
		if p.Stdout != nil {
			out = append(out, opt("-o", *p.Stdout))
		}
		if p.Stderr != nil {
			out = append(out, opt("-e", *p.Stderr))
		}
		if p.Shell != nil {
			out = append(out, opt("-S", *p.Shell))
		}
		switch {
		case p.JoinMode != nil:
			out = append(out, opt("-j", *p.JoinMode))
		case p.Stderr == nil:
			out = append(out, opt("-j", "oe"))
		}
	}

	if e != nil && e.Notify != nil {
		if len(e.Notify.To) > 0 {
			out = append(out, list("-M", e.Notify.To))
		}
		if ev := e.Notify.Events(); ev != "" {
			out = append(out, opt("-m", ev))
		}
	}

	if e != nil {
		if e.Priority != nil {
			out = append(out, opt("-p", strconv.Itoa(*e.Priority)))
		}
		if e.Account != nil {
			out = append(out, opt("-A", *e.Account))
		}
		if e.Project != nil {
			out = append(out, opt("-P", *e.Project))
		}
		if e.ArrayRange != nil {
			out = append(out, opt("-J", *e.ArrayRange))
		}
		if len(e.Env) > 0 {
			out = append(out, list("-v", pairs(e.Env)))
		}
		if len(e.Extras) > 0 {
			out = append(out, list("-W", pairs(e.Extras)))
		}
	}

	if cmd := s.command(); cmd != "" {
		out = append(out, opt("--", cmd))
	}
	return out
}

// CommandLine joins Args into the qsub argument string.
func (s *JobSubmit) CommandLine() string {
	args := s.Args()
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}

// Argv returns the argument vector for exec. List values stay single
// elements with their entries joined by bare commas as qsub expects. The
// command after "--" is split into shell words, so quoted arguments stay
// whole; unbalanced quotes are a *ValidationError.
func (s *JobSubmit) Argv() ([]string, error) {
	var argv []string
	for _, a := range s.Args() {
		argv = append(argv, a.Flag)
		switch {
		case !a.HasValue:
		case a.Flag == "--":
			words, err := commandWords(a.Value)
			if err != nil {
				return nil, err
			}
			argv = append(argv, words...)
		case a.items != nil:
			argv = append(argv, strings.Join(a.items, ","))
		default:
			argv = append(argv, a.Value)
		}
	}
	return argv, nil
}

func commandWords(cmd string) ([]string, error) {
	words, err := shlex.Split(cmd)
	if err != nil {
		err = fmt.Errorf("submit_args is not a valid command line: %w", err)
		return nil, &ValidationError{Problems: []string{err.Error()}, errs: []error{err}}
	}
	return words, nil
}

// command is submit_args without its leading "--" marker.
func (s *JobSubmit) command() string {
	if s.SubmitArgs == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(*s.SubmitArgs), "- \t"))
}

func appendInt(out []Arg, f, key string, v *int) []Arg {
	if v == nil {
		return out
	}
	return append(out, opt(f, fmt.Sprintf("%s=%d", key, *v)))
}

func appendStr(out []Arg, f, key string, v *string) []Arg {
	if v == nil {
		return out
	}
	return append(out, opt(f, key+"="+*v))
}

func pairs(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, k+"="+m[k])
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}
