package export

import (
	"log/slog"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/basel-ax/aiimage/internal/lib/sl"
	"github.com/basel-ax/aiimage/internal/notify"
)

// DefaultCopiedDelay is how long the "copied" indicator stays on
const DefaultCopiedDelay = 2 * time.Second

// ClipboardWriter writes text to a clipboard
type ClipboardWriter interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Copier copies image URLs and tracks the transient "copied" indicator
type Copier struct {
	writer   ClipboardWriter
	notifier notify.Notifier
	log      *slog.Logger
	delay    time.Duration

	mu     sync.Mutex
	copied string
	timer  *time.Timer
}

// NewCopier creates a Copier. A non-positive delay uses DefaultCopiedDelay.
func NewCopier(writer ClipboardWriter, notifier notify.Notifier, log *slog.Logger, delay time.Duration) *Copier {
	if delay <= 0 {
		delay = DefaultCopiedDelay
	}
	return &Copier{
		writer:   writer,
		notifier: notifier,
		log:      log.With(sl.Module("export.clipboard")),
		delay:    delay,
	}
}

// Copy writes url to the clipboard and turns the indicator on for the configured delay
func (c *Copier) Copy(url string) error {
	if err := c.writer.WriteAll(url); err != nil {
		c.log.Debug("clipboard write failed", sl.Err(err))
		c.notifier.Error(notify.MsgCopyFailed)
		return err
	}

	c.mu.Lock()
	c.copied = url
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() { c.clear(url) })
	c.mu.Unlock()

	c.notifier.Success(notify.MsgCopied)
	return nil
}

// CopiedURL returns the URL whose indicator is on, or "" when none is
func (c *Copier) CopiedURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copied
}

// IsCopied reports whether the indicator is on for url
func (c *Copier) IsCopied(url string) bool {
	return url != "" && c.CopiedURL() == url
}

// clear turns the indicator off unless a newer copy replaced url
func (c *Copier) clear(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.copied == url {
		c.copied = ""
	}
}
