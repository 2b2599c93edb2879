package batch

import (
	"fmt"
	"time"

	"udk-migrate/internal/asset"
)

// Status is the state of one job. Every job starts Pending and ends in one of
// the other states.
type Status int

const (
	Pending Status = iota
	Succeeded
	Failed
	Cancelled
)

var statusNames = [...]string{"pending", "succeeded", "failed", "cancelled"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	for i, n := range statusNames {
		if n == string(b) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("batch: unknown status %q", b)
}

// Outcome records what happened to one job.
type Outcome struct {
	Job       Job           `json:"job"`
	Status    Status        `json:"status"`
	Code      asset.Code    `json:"code"`
	Reason    string        `json:"reason,omitempty"`
	Bytes     int64         `json:"bytes,omitempty"`
	Kind      asset.Kind    `json:"kind"`
	Converted string        `json:"converted,omitempty"` // converter output, when run
	Duration  time.Duration `json:"duration"`
}

// OK reports success.
func (o Outcome) OK() bool { return o.Status == Succeeded }

// Result aggregates a batch. Outcomes follow submission order.
// Succeeded+Failed counts processed jobs; Cancelled counts jobs never started.
// A Pending outcome is counted in Total only, so it can never pass as success.
type Result struct {
	ID        string        `json:"id"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Cancelled int           `json:"cancelled"`
	Outcomes  []Outcome     `json:"outcomes"`
	Elapsed   time.Duration `json:"elapsed"`
}

func (r *Result) tally() {
	r.Total = len(r.Outcomes)
	r.Succeeded, r.Failed, r.Cancelled = 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case Pending:
		case Succeeded:
			r.Succeeded++
		case Failed:
			r.Failed++
		case Cancelled:
			r.Cancelled++
		}
	}
}

// Processed is the number of jobs that ran.
func (r Result) Processed() int { return r.Succeeded + r.Failed }

// ExitCode is the legacy batch status: 0 only when every job succeeded.
func (r Result) ExitCode() int {
	if r.Total > 0 && r.Succeeded == r.Total {
		return 0
	}
	return 1
}

// Summary is a one-line description for logs.
func (r Result) Summary() string {
	return fmt.Sprintf("batch %s: %d/%d succeeded, %d failed, %d cancelled in %s",
		r.ID, r.Succeeded, r.Total, r.Failed, r.Cancelled, r.Elapsed.Round(time.Millisecond))
}

// Failures returns the outcomes that did not succeed, in order.
func (r Result) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}
