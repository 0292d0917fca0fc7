package job

import (
	"maps"
	"slices"
	"strings"

	"github.com/c2h5oh/datasize"
)

const (
	MinPriority = -1024
	MaxPriority = 1023
)

var joinModes = map[string]bool{"oe": true, "eo": true, "n": true}

// Validate checks the semantic constraints qsub would otherwise reject late.
// All problems are reported together.
func (s *JobSubmit) Validate() error {
	var p problems

	if s.SubmitArgs == nil || strings.TrimSpace(*s.SubmitArgs) == "" {
		if !s.interactive() {
			p.addf("submit_args is required for a batch job")
		}
	}
	if _, err := commandWords(s.command()); err != nil {
		p.add(err)
	}

	if r := s.Resources; r != nil {
		counts := []struct {
			name string
			n    *int
		}{{"node_count", r.NodeCount}, {"cpu", r.CPU}, {"gpu", r.GPU}}
		for _, c := range counts {
			if c.n != nil && *c.n < 0 {
				p.addf("resources.%s must not be negative, got %d", c.name, *c.n)
			}
		}
		if r.Mem != nil {
			if _, err := datasize.ParseString(*r.Mem); err != nil {
				p.addf("resources.mem %q is not a memory size", *r.Mem)
			}
		}
	}

	if e := s.Extra; e != nil {
		if e.Priority != nil && (*e.Priority < MinPriority || *e.Priority > MaxPriority) {
			p.addf("extra.priority must be between %d and %d, got %d", MinPriority, MaxPriority, *e.Priority)
		}
		if e.Paths != nil && e.Paths.JoinMode != nil && !joinModes[*e.Paths.JoinMode] {
			p.addf("extra.paths.join_mode must be one of oe, eo, n, got %q", *e.Paths.JoinMode)
		}
		for _, k := range slices.Sorted(maps.Keys(e.Env)) {
			if k == "" || strings.ContainsAny(k, "=, ") {
				p.addf("extra.env has an invalid variable name %q", k)
			}
		}
	}

	return p.err()
}

func (s *JobSubmit) interactive() bool {
	return s.Extra != nil && s.Extra.Flags != nil && isTrue(s.Extra.Flags.Interactive)
}
