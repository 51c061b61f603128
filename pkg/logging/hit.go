package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Action describes what happened to a detected secret.
type Action string

const (
	// ActionReplaced indicates the secret was substituted with a placeholder on disk.
	ActionReplaced Action = "replaced"
	// ActionPending indicates a placeholder exists but the file was not written (dry run).
	ActionPending Action = "pending"
	// ActionUnresolved indicates no replacement rule exists for the file and pattern.
	ActionUnresolved Action = "unresolved"
)

// HitLevel defines a custom log level for secret findings.
// Implemented as WarnLevel but transformed to "hit" in output.
const HitLevel zerolog.Level = zerolog.WarnLevel

// HitLevelWriter wraps an io.Writer to transform logs with "level":"warn" to "level":"hit".
type HitLevelWriter struct {
	out       io.Writer
	mu        sync.Mutex
	nextIsHit bool
}

func (w *HitLevelWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	isHit := w.nextIsHit
	w.nextIsHit = false
	out := w.out
	w.mu.Unlock()

	if isHit && len(p) > 0 {
		var logEntry map[string]interface{}
		if err := json.Unmarshal(p, &logEntry); err == nil {
			if logEntry["level"] == "warn" || logEntry["level"] == "error" {
				logEntry["level"] = "hit"
			}
			delete(logEntry, "_hit")

			if newBytes, err := json.Marshal(logEntry); err == nil {
				newBytes = append(newBytes, '\n')
				if _, err := out.Write(newBytes); err != nil {
					return 0, err
				}
				return len(p), nil
			}
		}
	}

	return out.Write(p)
}

func (w *HitLevelWriter) markNextAsHit() {
	w.mu.Lock()
	w.nextIsHit = true
	w.mu.Unlock()
}

func (w *HitLevelWriter) SetOutput(out io.Writer) {
	w.mu.Lock()
	w.out = out
	w.mu.Unlock()
}

// NewHitLevelWriter creates a new HitLevelWriter wrapping the given io.Writer.
func NewHitLevelWriter(out io.Writer) *HitLevelWriter {
	return &HitLevelWriter{out: out}
}

// HitEvent wraps a zerolog.Event for hit-level logging with "level":"hit" output.
type HitEvent struct {
	event  *zerolog.Event
	writer *HitLevelWriter
}

func (h *HitEvent) Str(key, val string) *HitEvent {
	h.event.Str(key, val)
	return h
}

func (h *HitEvent) Bool(key string, val bool) *HitEvent {
	h.event.Bool(key, val)
	return h
}

func (h *HitEvent) Msg(msg string) {
	if h.writer != nil {
		h.writer.markNextAsHit()
	}
	h.event.Bool("_hit", true).Msg(msg)
}

var (
	globalHitWriter     *HitLevelWriter
	globalHitWriterOnce sync.Once
)

func setupGlobalHitWriter() {
	globalHitWriterOnce.Do(func() {
		globalHitWriter = &HitLevelWriter{out: os.Stderr}
		log.Logger = zerolog.New(globalHitWriter).With().Timestamp().Logger()
	})
}

// Hit creates a hit-level log event for a detected secret.
// Example: logging.Hit().Str("ruleName", "firebase_api_key").Msg("SECRET")
func Hit() *HitEvent {
	if globalHitWriter == nil {
		setupGlobalHitWriter()
	}
	return &HitEvent{
		event:  log.WithLevel(zerolog.ErrorLevel),
		writer: globalHitWriter,
	}
}

// ParseLevel extends zerolog's ParseLevel to support "hit" level.
func ParseLevel(levelStr string) (zerolog.Level, error) {
	if levelStr == "hit" {
		return HitLevel, nil
	}
	return zerolog.ParseLevel(levelStr)
}

// SetGlobalHitWriter sets the global HitLevelWriter used by Hit.
func SetGlobalHitWriter(writer *HitLevelWriter) {
	globalHitWriter = writer
}
