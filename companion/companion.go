package companion

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/mindease/errors"
	"github.com/kbukum/mindease/logger"
	"github.com/kbukum/mindease/observability"
	"github.com/kbukum/mindease/provider"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Message is one conversation entry.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Intent    Intent    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// History is the stored conversation of one user.
type History struct {
	Messages []Message `json:"messages"`
}

// HistoryKey is the storage key of a user's conversation.
func HistoryKey(userID string) string { return "ai_chat:" + userID }

// Config tunes the conversation store.
type Config struct {
	// HistoryLimit caps stored messages; the oldest are dropped first.
	HistoryLimit int `yaml:"history_limit" mapstructure:"history_limit" validate:"gte=0"`
	// HistoryTTL expires idle conversations; 0 keeps them.
	HistoryTTL time.Duration `yaml:"history_ttl" mapstructure:"history_ttl" validate:"gte=0"`
	// MaxMessageLength bounds a user message in characters.
	MaxMessageLength int `yaml:"max_message_length" mapstructure:"max_message_length" validate:"gte=0"`
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.HistoryLimit == 0 {
		c.HistoryLimit = 200
	}
	if c.MaxMessageLength == 0 {
		c.MaxMessageLength = 2000
	}
}

// Reply is the outcome of one turn.
type Reply struct {
	Intent  Intent  `json:"intent"`
	User    Message `json:"user"`
	Message Message `json:"reply"`
}

// Option customizes a Companion.
type Option func(*Companion)

func WithClassifier(c *Classifier) Option         { return func(cp *Companion) { cp.classifier = c } }
func WithLogger(l *logger.Logger) Option          { return func(cp *Companion) { cp.log = l } }
func WithMetrics(m *observability.Metrics) Option { return func(cp *Companion) { cp.metrics = m } }
func WithClock(now func() time.Time) Option       { return func(cp *Companion) { cp.now = now } }

// Companion answers user messages with canned replies and keeps the
// conversation per user.
type Companion struct {
	classifier *Classifier
	store      provider.ContextStore[History]
	cfg        Config
	log        *logger.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// New creates a Companion persisting conversations in store.
func New(store provider.ContextStore[History], cfg Config, opts ...Option) *Companion {
	cfg.ApplyDefaults()
	c := &Companion{store: store, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.classifier == nil {
		c.classifier = DefaultClassifier()
	}
	if c.log == nil {
		c.log = logger.Get("companion")
	}
	return c
}

// History returns the conversation, starting with the welcome message when
// nothing is stored.
func (c *Companion) History(ctx context.Context, userID string) ([]Message, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.MissingField("user_id")
	}
	h, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return h.Messages, nil
}

// Send classifies text, appends the user message and the reply, and
// persists the conversation.
func (c *Companion) Send(ctx context.Context, userID, text string) (*Reply, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.MissingField("user_id")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.InvalidInput("text", "message is empty")
	}
	if utf8.RuneCountInString(text) > c.cfg.MaxMessageLength {
		return nil, apperrors.InvalidInput("text", "message is too long")
	}

	h, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	intent := c.classifier.Classify(text)
	now := c.now()
	userMsg := Message{ID: uuid.NewString(), Role: RoleUser, Content: text, Timestamp: now}
	reply := Message{ID: uuid.NewString(), Role: RoleAI, Content: Response(intent), Intent: intent, Timestamp: now}
	h.Messages = append(h.Messages, userMsg, reply)
	if over := len(h.Messages) - c.cfg.HistoryLimit; over > 0 {
		h.Messages = h.Messages[over:]
	}

	if err := c.store.Save(ctx, HistoryKey(userID), h, c.cfg.HistoryTTL); err != nil {
		return nil, apperrors.ServiceUnavailable("conversation store").WithCause(err)
	}
	c.metrics.RecordIntent(ctx, string(intent))
	c.log.WithContext(ctx).Debug("companion reply", logger.Fields(
		logger.FieldUserID, userID,
		logger.FieldIntent, string(intent),
	))
	return &Reply{Intent: intent, User: userMsg, Message: reply}, nil
}

// Clear deletes the user's conversation.
func (c *Companion) Clear(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.MissingField("user_id")
	}
	if err := c.store.Delete(ctx, HistoryKey(userID)); err != nil {
		return apperrors.ServiceUnavailable("conversation store").WithCause(err)
	}
	return nil
}

// Classify exposes the classifier.
func (c *Companion) Classify(text string) Intent { return c.classifier.Classify(text) }

func (c *Companion) load(ctx context.Context, userID string) (*History, error) {
	h, err := c.store.Load(ctx, HistoryKey(userID))
	if err != nil {
		return nil, apperrors.ServiceUnavailable("conversation store").WithCause(err)
	}
	if h == nil || len(h.Messages) == 0 {
		h = &History{Messages: []Message{{
			ID:        uuid.NewString(),
			Role:      RoleAI,
			Content:   Welcome,
			Timestamp: c.now(),
		}}}
	}
	return h, nil
}
