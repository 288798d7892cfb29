package transcription

// Status is the remote job status as reported by a provider.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Phase groups statuses by what a poller should do next.
type Phase int

const (
	PhaseInProgress Phase = iota
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	default:
		return "failed"
	}
}

// Phase maps queued and processing to in-progress, completed to completed,
// and every other value, including unknown ones, to failed.
func (s Status) Phase() Phase {
	switch s {
	case StatusQueued, StatusProcessing:
		return PhaseInProgress
	case StatusCompleted:
		return PhaseCompleted
	default:
		return PhaseFailed
	}
}

// AudioRequest is the payload for creating a transcription job.
type AudioRequest struct {
	Audio       []byte `json:"-"`
	FileName    string `json:"file_name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	// Language is a hint such as "en"; empty lets the backend detect it.
	Language string `json:"language,omitempty"`
}

// Job is a snapshot of a remote transcription job.
type Job struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	// Text is set once Status is completed.
	Text string `json:"text,omitempty"`
	// Error carries the backend's failure reason, if any.
	Error string `json:"error,omitempty"`
}
