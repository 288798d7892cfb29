package journal

import (
	"context"
	"slices"
	"time"

	"github.com/kbukum/mindease/logger"
)

// ArchiveEntry is one finished transcript.
type ArchiveEntry struct {
	RecordingID string    `json:"recording_id"`
	JobID       string    `json:"job_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Archive is the per-user transcript list persisted in the key-value store.
type Archive struct {
	Entries []ArchiveEntry `json:"entries"`
}

// ArchiveKey is the storage key of a user's archive.
func ArchiveKey(userID string) string { return "voice_journal:" + userID }

func (c *Controller) archiveTranscript(rec Recording) {
	if c.archive == nil || rec.UserID == "" {
		return
	}
	c.archiveMu.Lock()
	defer c.archiveMu.Unlock()

	ctx := context.Background()
	key := ArchiveKey(rec.UserID)
	a, err := c.archive.Load(ctx, key)
	if err == nil {
		if a == nil {
			a = &Archive{}
		}
		a.Entries = append(a.Entries, ArchiveEntry{
			RecordingID: rec.ID,
			JobID:       rec.JobID,
			Text:        rec.Text(),
			CreatedAt:   rec.CreatedAt,
			CompletedAt: c.now(),
		})
		err = c.archive.Save(ctx, key, a, c.cfg.ArchiveTTL)
	}
	if err != nil {
		fields := logger.RecordingFields(rec.ID, rec.JobID)
		fields[logger.FieldError] = err.Error()
		c.log.Warn("transcript not archived", fields)
	}
}

// Transcripts returns the user's archived transcripts, newest first.
func (c *Controller) Transcripts(ctx context.Context, userID string) ([]ArchiveEntry, error) {
	if c.archive == nil {
		return nil, nil
	}
	a, err := c.archive.Load(ctx, ArchiveKey(userID))
	if err != nil || a == nil {
		return nil, err
	}
	out := slices.Clone(a.Entries)
	slices.Reverse(out)
	return out, nil
}
