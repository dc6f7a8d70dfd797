package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"
)

// ConversationLogFileName is the NDJSON file written under the log directory.
const ConversationLogFileName = "consultations.ndjson"

// ConversationLogEvent is one NDJSON line in the consultation audit log.
type ConversationLogEvent struct {
	Timestamp      string         `json:"ts"`
	ConsultationID string         `json:"consultation_id"`
	Persona        string         `json:"persona"`
	Channel        string         `json:"channel"`
	Direction      string         `json:"direction"`
	EventType      string         `json:"event_type"`
	ContentRaw     string         `json:"content_raw,omitempty"`
	Content        string         `json:"content,omitempty"`
	Meta           map[string]any `json:"meta,omitempty"`
}

// ConversationLogConfig configures NewConversationLogger.
type ConversationLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// ConversationLogger records consultation events.
type ConversationLogger interface {
	Log(event ConversationLogEvent)
	Close() error
}

type noopConversationLogger struct{}

func (noopConversationLogger) Log(ConversationLogEvent) {}
func (noopConversationLogger) Close() error             { return nil }

// fileConversationLogger appends events from a single writer goroutine.
// Log never blocks; events are dropped when the queue is full.
type fileConversationLogger struct {
	path   string
	queue  chan ConversationLogEvent
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewConversationLogger returns a file-backed logger, or a no-op logger when
// logging is disabled.
func NewConversationLogger(cfg ConversationLogConfig, logger *slog.Logger) (ConversationLogger, error) {
	if !cfg.Enabled {
		return noopConversationLogger{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		return nil, errors.New("conversation log dir is required")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create conversation log dir: %w", err)
	}

	l := &fileConversationLogger{
		path:   filepath.Join(cfg.Dir, ConversationLogFileName),
		queue:  make(chan ConversationLogEvent, cfg.QueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go l.run()
	return l, nil
}

func (l *fileConversationLogger) Log(event ConversationLogEvent) {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if event.Content == "" && event.ContentRaw != "" {
		event.Content = cleanForReadability(event.ContentRaw)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- event:
	default:
		l.logger.Warn("conversation log queue full, dropping event",
			"consultation_id", event.ConsultationID,
			"event_type", event.EventType,
		)
	}
}

func (l *fileConversationLogger) Close() error {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.queue)
		l.mu.Unlock()
	})
	<-l.done
	return nil
}

func (l *fileConversationLogger) run() {
	defer close(l.done)
	for event := range l.queue {
		if err := l.write(event); err != nil {
			l.logger.Warn("failed to write conversation log event", "error", err, "path", l.path)
		}
	}
}

func (l *fileConversationLogger) write(event ConversationLogEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("append log line: %w", err)
	}
	return f.Close()
}

// cleanForReadability collapses whitespace runs and drops control characters.
func cleanForReadability(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
