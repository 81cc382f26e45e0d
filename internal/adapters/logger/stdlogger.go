package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
)

// LogLevel defines the logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel converts a level name to a LogLevel. Unknown names map to Info.
func ParseLevel(levelStr string) LogLevel {
	name := strings.ToUpper(strings.TrimSpace(levelStr))
	if name == "WARNING" {
		return LevelWarn
	}
	for lvl, n := range levelNames {
		if n == name {
			return LogLevel(lvl)
		}
	}
	return LevelInfo
}

// StdLogger implements ports.Logger as single-line key=value records.
// Loggers derived with With share the underlying writer.
type StdLogger struct {
	out    *log.Logger
	level  LogLevel
	static map[string]interface{}
}

// NewStdLogger creates a logger writing to os.Stderr.
func NewStdLogger(level LogLevel) *StdLogger {
	return NewWriterLogger(os.Stderr, level)
}

// NewWriterLogger creates a logger writing to w.
func NewWriterLogger(w io.Writer, level LogLevel) *StdLogger {
	return &StdLogger{
		out:   log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		level: level,
	}
}

// Level returns the configured threshold.
func (l *StdLogger) Level() LogLevel {
	return l.level
}

// With returns a logger that adds fields to every record. Per-call fields
// win on key collisions.
func (l *StdLogger) With(fields map[string]interface{}) *StdLogger {
	static := make(map[string]interface{}, len(l.static)+len(fields))
	for k, v := range l.static {
		static[k] = v
	}
	for k, v := range fields {
		static[k] = v
	}
	return &StdLogger{out: l.out, level: l.level, static: static}
}

func (l *StdLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(LevelDebug, msg, nil, fields)
}

func (l *StdLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(LevelInfo, msg, nil, fields)
}

func (l *StdLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(LevelWarn, msg, nil, fields)
}

func (l *StdLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.write(LevelError, msg, err, fields)
}

func (l *StdLogger) write(level LogLevel, msg string, err error, fields []map[string]interface{}) {
	if level < l.level {
		return
	}
	l.out.Println(l.format(level, msg, err, fields))
}

// format renders "[LEVEL] msg | error: e | k=v ..." with keys sorted.
func (l *StdLogger) format(level LogLevel, msg string, err error, fields []map[string]interface{}) string {
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(level.String())
	sb.WriteString("] ")
	sb.WriteString(msg)
	if err != nil {
		sb.WriteString(" | error: ")
		sb.WriteString(err.Error())
	}

	merged := l.merge(fields)
	if len(merged) == 0 {
		return sb.String()
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sb.WriteString(" |")
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, merged[k])
	}
	return sb.String()
}

func (l *StdLogger) merge(fields []map[string]interface{}) map[string]interface{} {
	if len(l.static) == 0 && len(fields) == 1 {
		return fields[0]
	}
	merged := make(map[string]interface{}, len(l.static))
	for k, v := range l.static {
		merged[k] = v
	}
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}
