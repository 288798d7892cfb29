package proxy

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/mindease/companion"
	apperrors "github.com/kbukum/mindease/errors"
	"github.com/kbukum/mindease/logger"
	"github.com/kbukum/mindease/provider"
	"github.com/kbukum/mindease/server"
	"github.com/kbukum/mindease/storage"
	"github.com/kbukum/mindease/transcription"
	"github.com/kbukum/mindease/transcription/relay"
)

// TranscriptKey is the cache key of a transcript's last known status.
func TranscriptKey(id string) string { return "transcripts:" + id }

const defaultAudioExt = ".webm"

// AudioKey is the storage path of an archived upload. ext includes the dot.
func AudioKey(id, ext string) string { return "audio/" + id + ext }

// Config tunes the proxy handlers.
type Config struct {
	// CacheTTL expires remembered transcript statuses; 0 keeps them.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl" validate:"gte=0"`
	// Language is passed to the backend with every upload.
	Language string `yaml:"language" mapstructure:"language"`
}

// Handler serves the transcription relay and companion endpoints.
type Handler struct {
	provider  transcription.Provider
	cache     provider.ContextStore[transcription.Job]
	companion *companion.Companion
	audio     storage.Storage
	cfg       Config
	log       *logger.Logger
}

// HandlerOption customizes a Handler.
type HandlerOption func(*Handler)

// WithAudioArchive keeps every upload in s and serves it back from
// GET /transcription/:id/audio.
func WithAudioArchive(s storage.Storage) HandlerOption {
	return func(h *Handler) { h.audio = s }
}

// NewHandler creates a Handler. comp may be nil to serve transcription only.
func NewHandler(p transcription.Provider, cache provider.ContextStore[transcription.Job], comp *companion.Companion, cfg Config, log *logger.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		provider:  p,
		cache:     cache,
		companion: comp,
		cfg:       cfg,
		log:       log.WithComponent("proxy"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/transcribe", h.Transcribe)
	r.GET("/transcription/:id", h.Transcription)
	if h.audio != nil {
		r.GET("/transcription/:id/audio", h.Audio)
	}
	if h.companion != nil {
		g := r.Group("/companion/:userId")
		g.GET("/messages", h.Messages)
		g.POST("/messages", h.Send)
		g.DELETE("/messages", h.Clear)
	}
}

// Transcribe uploads the multipart "audio" file and creates a job.
func (h *Handler) Transcribe(c *gin.Context) {
	fh, err := c.FormFile("audio")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			server.RespondWithError(c, apperrors.New(apperrors.ErrCodeInvalidInput, "Audio file is too large.", http.StatusRequestEntityTooLarge))
			return
		}
		server.RespondWithError(c, apperrors.MissingField("audio"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("audio", "unreadable upload"))
		return
	}
	defer func() { _ = f.Close() }()
	audio, err := io.ReadAll(f)
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("audio", "unreadable upload"))
		return
	}
	if len(audio) == 0 {
		server.RespondWithError(c, apperrors.InvalidInput("audio", "file is empty"))
		return
	}

	ctx := c.Request.Context()
	id, err := h.provider.CreateJob(ctx, transcription.AudioRequest{
		Audio:       audio,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Language:    h.cfg.Language,
	})
	if err != nil {
		h.log.WithContext(ctx).Error("transcription upload failed", logger.ErrorFields("create_job", err))
		server.RespondWithError(c, apperrors.ExternalServiceError("transcription", err))
		return
	}
	h.remember(ctx, &transcription.Job{ID: id, Status: transcription.StatusQueued})
	h.archive(ctx, id, fh.Filename, audio)
	c.JSON(http.StatusAccepted, relay.TranscribeResponse{TranscriptID: id})
}

// Audio streams an archived upload back as an attachment.
func (h *Handler) Audio(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	files, err := h.audio.List(ctx, AudioKey(id, "."))
	if err != nil {
		server.RespondWithError(c, apperrors.ServiceUnavailable("audio archive").WithCause(err))
		return
	}
	if len(files) == 0 {
		server.RespondWithError(c, apperrors.NotFound("recording audio", id))
		return
	}
	file := files[0]
	rc, err := h.audio.Download(ctx, file.Path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			server.RespondWithError(c, apperrors.NotFound("recording audio", id))
			return
		}
		server.RespondWithError(c, apperrors.ServiceUnavailable("audio archive").WithCause(err))
		return
	}
	defer func() { _ = rc.Close() }()

	ct := file.ContentType
	if ct == "" || ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(path.Ext(file.Path)); byExt != "" {
			ct = byExt
		} else {
			ct = "application/octet-stream"
		}
	}
	c.DataFromReader(http.StatusOK, file.Size, ct, rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + path.Base(file.Path) + `"`,
	})
}

// Transcription reports a job's status. Terminal statuses are answered
// from the cache.
func (h *Handler) Transcription(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if job := h.cached(ctx, id); job != nil && job.Status.Phase() != transcription.PhaseInProgress {
		c.JSON(http.StatusOK, statusResponse(job))
		return
	}

	job, err := h.provider.GetJob(ctx, id)
	if err != nil {
		if appErr := apperrors.From(err); appErr.Code == apperrors.ErrCodeNotFound {
			server.RespondWithError(c, apperrors.NotFound("transcript", id).WithCause(err))
			return
		}
		h.log.WithContext(ctx).Warn("transcription status failed", logger.ErrorFields("get_job", err))
		server.RespondWithError(c, apperrors.ExternalServiceError("transcription", err))
		return
	}
	h.remember(ctx, job)
	c.JSON(http.StatusOK, statusResponse(job))
}

type sendRequest struct {
	Text string `json:"text" binding:"required"`
}

// Messages returns the conversation and the quick prompts.
func (h *Handler) Messages(c *gin.Context) {
	msgs, err := h.companion.History(c.Request.Context(), c.Param("userId"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, gin.H{"messages": msgs, "quickPrompts": companion.QuickPrompts})
}

// Send runs one companion turn.
func (h *Handler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.MissingField("text"))
		return
	}
	reply, err := h.companion.Send(c.Request.Context(), c.Param("userId"), req.Text)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, reply)
}

// Clear deletes the conversation.
func (h *Handler) Clear(c *gin.Context) {
	if err := h.companion.Clear(c.Request.Context(), c.Param("userId")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) cached(ctx context.Context, id string) *transcription.Job {
	if h.cache == nil {
		return nil
	}
	job, err := h.cache.Load(ctx, TranscriptKey(id))
	if err != nil {
		h.log.Warn("transcript cache read failed", logger.ErrorFields("cache_load", err))
		return nil
	}
	return job
}

func (h *Handler) remember(ctx context.Context, job *transcription.Job) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Save(ctx, TranscriptKey(job.ID), job, h.cfg.CacheTTL); err != nil {
		h.log.Warn("transcript cache write failed", logger.ErrorFields("cache_save", err))
	}
}

// archive stores the upload. A failure only loses the download; the job
// was already created.
func (h *Handler) archive(ctx context.Context, id, fileName string, audio []byte) {
	if h.audio == nil {
		return
	}
	ext := strings.ToLower(path.Ext(fileName))
	if ext == "" {
		ext = defaultAudioExt
	}
	if err := h.audio.Upload(ctx, AudioKey(id, ext), bytes.NewReader(audio)); err != nil {
		h.log.WithContext(ctx).Warn("audio archive failed", logger.Fields("job_id", id, "error", err.Error()))
	}
}

func statusResponse(job *transcription.Job) relay.StatusResponse {
	return relay.StatusResponse{Status: string(job.Status), Text: job.Text, Error: job.Error}
}
