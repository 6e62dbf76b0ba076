// Package logger prints pillmate diagnostics to stderr.
//
// Warnings are always shown. Debug and info lines, and the section headers
// that frame the identification and retrieval pipelines, appear only in
// verbose mode (--verbose).
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is the minimum severity that is printed.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn

	// LevelSilent suppresses everything, for full-screen interfaces that
	// own the terminal.
	LevelSilent
)

var (
	mu     sync.RWMutex
	level            = LevelWarn
	output io.Writer = os.Stderr
)

// SetVerbose switches between debug output and warnings only.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// IsVerbose reports whether debug lines are printed.
func IsVerbose() bool {
	return CurrentLevel() == LevelDebug
}

// SetLevel sets the minimum printed severity.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// CurrentLevel returns the minimum printed severity.
func CurrentLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetOutput sets the destination writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l < level {
		return
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}

// Debug prints pipeline detail in verbose mode.
func Debug(format string, args ...any) {
	logf(LevelDebug, "[DEBUG] ", format, args...)
}

// Info prints progress in verbose mode.
func Info(format string, args ...any) {
	logf(LevelInfo, "[INFO] ", format, args...)
}

// Warn prints a recoverable problem, such as skipped dataset rows.
func Warn(format string, args ...any) {
	logf(LevelWarn, "[WARN] ", format, args...)
}

// Section prints a header in verbose mode.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if level == LevelDebug {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Elapsed logs how long an operation took since start, at debug level.
//
//	defer logger.Elapsed("catalog load", time.Now())
func Elapsed(name string, start time.Time) {
	logf(LevelDebug, "[DEBUG] ", "%s took %s", name, time.Since(start).Round(time.Millisecond))
}
