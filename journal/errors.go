package journal

import (
	"errors"
	"fmt"

	apperrors "github.com/kbukum/mindease/errors"
)

// Kind classifies workflow errors.
type Kind int

const (
	// KindSubmission: upload or job creation failed, or the audio was empty.
	KindSubmission Kind = iota
	// KindPollTransport: a status query failed before reaching a verdict.
	// The chain keeps polling.
	KindPollTransport
	// KindJobFailed: the backend reported the job failed.
	KindJobFailed
	// KindPollTimeout: the poll budget ran out.
	KindPollTimeout
	// KindClosed: the controller shut down while the job was outstanding.
	KindClosed
)

func (k Kind) String() string {
	switch k {
	case KindSubmission:
		return "submission"
	case KindPollTransport:
		return "poll_transport"
	case KindJobFailed:
		return "job_failed"
	case KindPollTimeout:
		return "poll_timeout"
	case KindClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind name in JSON output.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Error is a workflow failure tied to one recording.
type Error struct {
	Kind        Kind   `json:"kind"`
	RecordingID string `json:"recording_id"`
	JobID       string `json:"job_id,omitempty"`
	Message     string `json:"message"`
	Err         error  `json:"-"`
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("journal: %s error for recording %s", e.Kind, e.RecordingID)
	if e.JobID != "" {
		msg += " (job " + e.JobID + ")"
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// ToAppError maps the failure onto the shared error codes.
func (e *Error) ToAppError() *apperrors.AppError {
	switch e.Kind {
	case KindSubmission:
		return apperrors.SubmissionFailed(e.RecordingID, e.Err).WithDetail("reason", e.Message)
	case KindPollTimeout:
		return apperrors.TranscriptionTimeout(e.RecordingID, e.JobID)
	case KindPollTransport:
		return apperrors.ExternalServiceError("transcription", e.Err)
	case KindClosed:
		return apperrors.ServiceUnavailable("journal").WithDetail("recording_id", e.RecordingID)
	default:
		return apperrors.TranscriptionFailed(e.RecordingID, e.JobID, e.Message)
	}
}

// IsKind reports whether err is a journal *Error of kind k.
func IsKind(err error, k Kind) bool {
	var je *Error
	return errors.As(err, &je) && je.Kind == k
}

// ErrDeleted is returned when the recording was deleted while an operation
// on it was in flight.
var ErrDeleted = errors.New("journal: recording deleted")
