package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/quatton/jobsched/pkg/attrs"
)

// TimeLayout is the layout qstat uses for ctime, mtime, qtime and etime,
// e.g. "Fri Feb  3 10:41:52 2023".
const TimeLayout = time.ANSIC

// DecodeJSON reads a JSON object into an attribute bag. Numbers are kept as
// json.Number so integer fields are coerced exactly.
func DecodeJSON(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var bag map[string]any
	if err := dec.Decode(&bag); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Problems: []string{"request body is empty"}, errs: []error{err}}
		}
		return nil, &ValidationError{Problems: []string{"request body must be a JSON object: " + err.Error()}, errs: []error{err}}
	}
	if bag == nil {
		return nil, &ValidationError{Problems: []string{"request body must be a JSON object"}}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ValidationError{Problems: []string{"request body has data after the JSON object"}}
	}
	return bag, nil
}

// ParseSubmit builds a JobSubmit from a request bag. Fields may be given by
// JSON name or by PBS alias. Keys inside "extra" that are not attributes of
// the model become -W extras; unknown keys elsewhere are ignored.
func ParseSubmit(bag map[string]any) (*JobSubmit, error) {
	canon, leftovers := attrs.Canonical(SubmitSchema, bag)

	var js JobSubmit
	if err := decodeInto(canon, &js); err != nil {
		return nil, err
	}

	if left, ok := leftovers["extra"].(map[string]any); ok {
		extras := make(map[string]string)
		for k, v := range left {
			if _, known := extraSchema.Lookup(k); known {
				continue
			}
			extras[k] = stringify(v)
		}
		if len(extras) > 0 {
			if js.Extra == nil {
				js.Extra = &JobExtra{}
			}
			js.Extra.Extras = extras
		}
	}

	if err := js.Validate(); err != nil {
		return nil, err
	}
	return &js, nil
}

// ParseStat builds a JobStat from one job record of qstat's JSON output.
func ParseStat(bag map[string]any) (*JobStat, error) {
	nested := attrs.Unflatten(StatSchema, bag)
	extras := attrs.CollectExtras(StatSchema, attrs.DeepCopy(bag))

	canon, _ := attrs.Canonical(StatSchema, nested)
	canon["extra"] = extras

	var st JobStat
	if err := decodeInto(canon, &st); err != nil {
		return nil, err
	}
	if st.Extra == nil {
		st.Extra = map[string]any{}
	}
	return &st, nil
}

func decodeInto(canon map[string]any, out any) error {
	var stamps []error
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			timestampHook(&stamps),
			statusHook,
			numberBoolHook,
			notificationHook,
		),
	})
	if err != nil {
		return fmt.Errorf("building decoder: %w", err)
	}
	if err := dec.Decode(canon); err != nil {
		var p problems
		p.add(stamps...)
		for _, e := range splitErrors(err) {
			if !mentionsTimestamp(e, stamps) {
				p.add(e)
			}
		}
		return p.err()
	}
	return nil
}

// mentionsTimestamp reports whether e is the decoder's report of a
// timestamp failure already recorded by the hook.
func mentionsTimestamp(e error, stamps []error) bool {
	var ts *InvalidTimestamp
	if errors.As(e, &ts) {
		return true
	}
	for _, s := range stamps {
		if strings.Contains(e.Error(), s.Error()) {
			return true
		}
	}
	return false
}

var (
	timeType   = reflect.TypeOf(time.Time{})
	statusType = reflect.TypeOf(JobStatus(""))
	notifyType = reflect.TypeOf(JobNotification{})
)

// timestampHook parses qstat dates. Failures are also recorded in stamps so
// the resulting ValidationError unwraps to *InvalidTimestamp.
func timestampHook(stamps *[]error) mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if to != timeType || from.Kind() != reflect.String {
			return data, nil
		}
		s := strings.TrimSpace(reflect.ValueOf(data).String())
		t, err := time.Parse(TimeLayout, s)
		if err != nil {
			ts := &InvalidTimestamp{Value: s, Err: err}
			*stamps = append(*stamps, ts)
			return nil, ts
		}
		return t, nil
	}
}

func statusHook(from, to reflect.Type, data any) (any, error) {
	if to != statusType || from.Kind() != reflect.String {
		return data, nil
	}
	return ParseJobStatus(reflect.ValueOf(data).String())
}

// numberBoolHook reads numeric flags such as forward_x11_port (a port
// number when X11 forwarding is on) as true when non-zero.
func numberBoolHook(from, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok || to.Kind() != reflect.Bool {
		return data, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("expected a boolean, got %q", n)
	}
	return f != 0, nil
}

// notificationHook splits recipient strings and turns the event code into
// the three on_* flags. The code itself is dropped.
func notificationHook(from, to reflect.Type, data any) (any, error) {
	if to != notifyType {
		return data, nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}

	if s, ok := out["to"].(string); ok {
		out["to"] = splitRecipients(s)
	}

	if ev, ok := out["events"]; ok {
		delete(out, "events")
		code, isString := ev.(string)
		if ev != nil && !isString {
			return nil, fmt.Errorf("events must be a string of b, e and a, got %T", ev)
		}
		if ev != nil {
			var n JobNotification
			n.SetEvents(code)
			out["on_started"] = *n.OnStarted
			out["on_finished"] = *n.OnFinished
			out["on_aborted"] = *n.OnAborted
		}
	}
	return out, nil
}

func splitRecipients(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// stringify renders an extra attribute value for the -W list.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
