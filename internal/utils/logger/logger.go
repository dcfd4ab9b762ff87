package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps LOG_LEVEL values onto a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type Logger struct {
	serviceName string
}

var (
	// INFO_EMOJI Emoji constants
	INFO_EMOJI    = "ℹ️ "
	SUCCESS_EMOJI = "✅ "
	WARN_EMOJI    = "⚠️ "
	ERROR_EMOJI   = "❌ "
	DEBUG_EMOJI   = "🔍 "
)

var (
	outputMu sync.Mutex
	output   io.Writer = color.Output
	minLevel           = ParseLevel(os.Getenv("LOG_LEVEL"))
)

// SetOutput redirects every logger, mostly for tests.
func SetOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	output = w
}

// SetLevel drops messages below l.
func SetLevel(l Level) {
	outputMu.Lock()
	defer outputMu.Unlock()
	minLevel = l
}

func New(serviceName string) *Logger {
	return &Logger{
		serviceName: serviceName,
	}
}

// Named returns a logger for a sub component, e.g. "API-Server/books".
func (l *Logger) Named(name string) *Logger {
	return New(l.serviceName + "/" + name)
}

func (l *Logger) formatMessage(level, emoji, msg string) string {
	_, file, line, _ := runtime.Caller(3)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fileName := filepath.Base(file)

	return fmt.Sprintf("%s | %s | %s | %s:%d | %s | %s",
		emoji,
		timestamp,
		level,
		fileName,
		line,
		l.serviceName,
		msg,
	)
}

func (l *Logger) write(lvl Level, paint *color.Color, level, emoji, msg string) {
	outputMu.Lock()
	defer outputMu.Unlock()
	if lvl < minLevel {
		return
	}
	paint.Fprintln(output, l.formatMessage(level, emoji, msg))
}

var (
	cyan    = color.New(color.FgCyan)
	green   = color.New(color.FgGreen)
	yellow  = color.New(color.FgYellow)
	red     = color.New(color.FgRed)
	magenta = color.New(color.FgMagenta)
)

func (l *Logger) Info(msg string, args ...interface{}) {
	l.write(LevelInfo, cyan, "INFO", INFO_EMOJI, fmt.Sprintf(msg, args...))
}

func (l *Logger) Success(msg string, args ...interface{}) {
	l.write(LevelInfo, green, "SUCCESS", SUCCESS_EMOJI, fmt.Sprintf(msg, args...))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.write(LevelWarn, yellow, "WARN", WARN_EMOJI, fmt.Sprintf(msg, args...))
}

// Error logs msg with err appended to args and returns err wrapped in msg.
func (l *Logger) Error(msg string, err error, args ...interface{}) error {
	if err == nil {
		err = fmt.Errorf("unknown error")
	}
	text := fmt.Sprintf(msg, args...)
	l.write(LevelError, red, "ERROR", ERROR_EMOJI, fmt.Sprintf("%s: %v", text, err))
	return fmt.Errorf("%s: %w", text, err)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.write(LevelDebug, magenta, "DEBUG", DEBUG_EMOJI, fmt.Sprintf(msg, args...))
}
