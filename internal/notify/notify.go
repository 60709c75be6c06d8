// Package notify delivers short user-facing notifications.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Level of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// User-facing messages
const (
	MsgEmptyPrompt    = "Please enter a prompt!"
	MsgBusy           = "Generation already in progress"
	MsgInvalidOption  = "Please choose a valid option"
	MsgGenerated      = "Image generated successfully!"
	MsgGenerateFailed = "Failed to generate image. Please try again."
	MsgCopied         = "URL copied to clipboard!"
	MsgCopyFailed     = "Failed to copy URL"
	MsgDownloaded     = "Image downloaded!"
	MsgDownloadFailed = "Failed to download image"
)

// Notifier shows notifications to the user
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Console prints notifications as single lines
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Success(msg string) { c.print("✓", msg) }

func (c *Console) Error(msg string) { c.print("✗", msg) }

func (c *Console) print(mark, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n", mark, msg)
}

// Log writes notifications to a structured logger. Used by the HTTP server where
// the message itself travels in the response.
type Log struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Success(msg string) {
	l.log.Info("notification", slog.String("level", string(LevelSuccess)), slog.String("message", msg))
}

func (l *Log) Error(msg string) {
	l.log.Warn("notification", slog.String("level", string(LevelError)), slog.String("message", msg))
}

// Notification is a single recorded message
type Notification struct {
	Level   Level
	Message string
}

// Recorder keeps every notification in memory
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }

func (r *Recorder) Error(msg string) { r.add(LevelError, msg) }

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Level: level, Message: msg})
}

// All returns a copy of the recorded notifications
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Multi fans out to several notifiers
type Multi []Notifier

func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}
