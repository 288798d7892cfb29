package transcription

import (
	"context"

	"github.com/kbukum/mindease/provider"
)

// Provider is the contract every speech-to-text backend implements.
type Provider interface {
	provider.Provider

	// CreateJob uploads audio and starts a job. It makes no retries of its
	// own beyond those of the underlying HTTP client.
	CreateJob(ctx context.Context, req AudioRequest) (string, error)
	// GetJob fetches the current state of a job.
	GetJob(ctx context.Context, id string) (*Job, error)
}
