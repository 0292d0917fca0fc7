package job

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ValidationError lists every problem found in a job record.
type ValidationError struct {
	Problems []string
	errs     []error
}

func (e *ValidationError) Error() string {
	return "invalid job: " + strings.Join(e.Problems, "; ")
}

// Unwrap exposes the underlying errors, e.g. *InvalidTimestamp.
func (e *ValidationError) Unwrap() []error {
	return e.errs
}

// InvalidTimestamp is returned when a scheduler date does not match the
// ctime layout.
type InvalidTimestamp struct {
	Value string
	Err   error
}

func (e *InvalidTimestamp) Error() string {
	return fmt.Sprintf("invalid timestamp %q", e.Value)
}

func (e *InvalidTimestamp) Unwrap() error {
	return e.Err
}

// problems accumulates validation failures.
type problems struct {
	merr *multierror.Error
}

func (p *problems) addf(format string, args ...any) {
	p.merr = multierror.Append(p.merr, fmt.Errorf(format, args...))
}

func (p *problems) add(errs ...error) {
	for _, err := range errs {
		p.merr = multierror.Append(p.merr, splitErrors(err)...)
	}
}

// err returns nil when nothing was recorded.
func (p *problems) err() error {
	if p.merr == nil || len(p.merr.Errors) == 0 {
		return nil
	}
	v := &ValidationError{errs: p.merr.Errors}
	for _, e := range p.merr.Errors {
		v.Problems = append(v.Problems, e.Error())
	}
	return v
}

// splitErrors unpacks joined errors so each problem is reported separately.
func splitErrors(err error) []error {
	if err == nil {
		return nil
	}
	if ve, ok := err.(*ValidationError); ok {
		return ve.errs
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, splitErrors(e)...)
		}
		return out
	}
	return []error{err}
}
