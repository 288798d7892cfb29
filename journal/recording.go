package journal

import (
	"errors"
	"fmt"
	"time"
)

// State is a recording's transcription state.
type State int

const (
	NotSubmitted State = iota
	Submitting
	Pending
	Completed
	Failed
)

var stateNames = [...]string{
	NotSubmitted: "not_submitted",
	Submitting:   "submitting",
	Pending:      "pending",
	Completed:    "completed",
	Failed:       "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText renders the state name in JSON output.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether no further transition happens without Retry.
func (s State) Terminal() bool { return s == Completed || s == Failed }

// Recording is a captured audio clip and its transcription lifecycle.
// Values handed out by the controller are snapshots.
type Recording struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	Audio       []byte    `json:"-"`
	ContentType string    `json:"content_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// JobID is set once submission succeeds.
	JobID string `json:"job_id,omitempty"`
	State State  `json:"state"`
	// Transcript is non-nil exactly when State is Completed.
	Transcript *string `json:"transcript,omitempty"`
	// Err describes why State is Failed.
	Err *Error `json:"error,omitempty"`
	// Polls counts status queries made for the current job.
	Polls int `json:"polls"`
}

// FileName is the download name for the clip.
func (r Recording) FileName() string {
	return "mindease-recording-" + r.CreatedAt.Format("20060102-150405") + ".webm"
}

// Text returns the transcript or "".
func (r Recording) Text() string {
	if r.Transcript == nil {
		return ""
	}
	return *r.Transcript
}

// CheckInvariants reports a violation of the recording invariants.
func (r Recording) CheckInvariants() error {
	var errs []error
	if (r.Transcript != nil) != (r.State == Completed) {
		errs = append(errs, fmt.Errorf("transcript set=%t in state %s", r.Transcript != nil, r.State))
	}
	switch r.State {
	case NotSubmitted, Submitting:
		if r.JobID != "" {
			errs = append(errs, fmt.Errorf("job id %q in state %s", r.JobID, r.State))
		}
	case Pending, Completed:
		if r.JobID == "" {
			errs = append(errs, fmt.Errorf("no job id in state %s", r.State))
		}
	}
	if (r.Err != nil) != (r.State == Failed) {
		errs = append(errs, fmt.Errorf("error set=%t in state %s", r.Err != nil, r.State))
	}
	return errors.Join(errs...)
}

func (r Recording) clone() Recording {
	out := r
	if r.Audio != nil {
		out.Audio = append([]byte(nil), r.Audio...)
	}
	if r.Transcript != nil {
		text := *r.Transcript
		out.Transcript = &text
	}
	return out
}
