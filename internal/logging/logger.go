// Package logging carries makanbot's two output channels: a leveled
// slog.Logger on stderr for operational messages, and a DecisionLogger
// that traces each pipeline stage of a request to a JSONL file so a
// surprising recommendation can be replayed stage by stage.
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace sits below Debug and unlocks full-content logging: entire
// generate-text prompts and responses instead of their sizes.
const LevelTrace = slog.LevelDebug - 4

// Pipeline stage names recorded by the DecisionLogger, in execution order.
const (
	StageMatch    = "match"
	StageClassify = "classify"
	StageGapFill  = "gapfill"
	StageResolve  = "resolve"
	StageRank     = "rank"
)

var levelNames = map[string]slog.Level{
	"info":  slog.LevelInfo,
	"debug": slog.LevelDebug,
	"trace": LevelTrace,
}

// ParseLevel maps a config level name ("info", "debug", "trace",
// case-insensitive) to its slog.Level. Anything else means info.
func ParseLevel(s string) slog.Level {
	if lvl, ok := levelNames[strings.ToLower(s)]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// NewLogger creates a leveled text logger writing to w. The custom trace
// level prints as "TRACE" rather than slog's "DEBUG-4".
func NewLogger(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: labelTraceLevel,
	}))
}

func labelTraceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}

// DecisionLogger appends one JSONL event per pipeline stage to
// dir/decisions.jsonl. It is safe for concurrent use, and a nil
// DecisionLogger is a valid no-op tracer: every method checks its
// receiver, so callers never guard the calls.
type DecisionLogger struct {
	mu  sync.Mutex
	enc *json.Encoder
	f   *os.File
}

// NewDecisionLogger opens the trace file under dir. Tracing only happens
// at debug or trace level; at info (the default) it returns nil, which
// downstream code uses as-is. Open failures also yield nil — losing the
// trace never fails a request.
func NewDecisionLogger(dir string, level string) *DecisionLogger {
	if ParseLevel(level) >= slog.LevelInfo {
		return nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, "decisions.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}
	return &DecisionLogger{enc: json.NewEncoder(f), f: f}
}

// Stage records one pipeline stage (StageMatch through StageRank) with
// its attributes. The event gets "stage" and "time" fields; the caller's
// map is left untouched.
func (dl *DecisionLogger) Stage(stage string, attrs map[string]any) {
	if dl == nil {
		return
	}
	event := make(map[string]any, len(attrs)+2)
	for k, v := range attrs {
		event[k] = v
	}
	event["stage"] = stage
	event["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.enc == nil {
		return
	}
	_ = dl.enc.Encode(event)
}

// Close releases the trace file. Stage calls after Close are no-ops.
func (dl *DecisionLogger) Close() {
	if dl == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.f != nil {
		dl.f.Close()
		dl.f = nil
		dl.enc = nil
	}
}
