// Package report periodically logs the state of the gallery.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/basel-ax/aiimage/internal/lib/sl"
	"github.com/basel-ax/aiimage/internal/service"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs the report every five minutes
const DefaultSchedule = "0 */5 * * * *"

// Source is what the report reads
type Source interface {
	IsGenerating() bool
	Summary(ctx context.Context) (string, error)
}

// Counter is implemented by sources that can count gallery records
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Reporter logs gallery state on a cron schedule
type Reporter struct {
	source  Source
	counter Counter
	log     *slog.Logger
	cron    *cron.Cron
	mu      sync.Mutex
}

// New creates a Reporter for schedule, a cron expression with a leading seconds field
func New(source Source, counter Counter, log *slog.Logger, schedule string) (*Reporter, error) {
	log = log.With(sl.Module("report"))
	r := &Reporter{
		source:  source,
		counter: counter,
		log:     log,
		cron:    cron.New(cron.WithSeconds(), cron.WithLogger(cronLogger{log: log})),
	}

	if _, err := r.cron.AddFunc(schedule, func() { r.Report(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Run starts the scheduler and blocks until ctx is cancelled
func (r *Reporter) Run(ctx context.Context) {
	r.cron.Start()
	r.log.Info("report scheduler started")

	<-ctx.Done()
	<-r.cron.Stop().Done()
	r.log.Info("report scheduler stopped")
}

// Report logs one snapshot. Overlapping runs are serialized.
func (r *Reporter) Report(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary, err := r.source.Summary(ctx)
	if err != nil {
		r.log.Error("failed to read gallery", sl.Err(err))
		return
	}

	attrs := []any{
		slog.Bool("generating", r.source.IsGenerating()),
		slog.String("summary", summary),
	}
	if r.counter != nil {
		count, err := r.counter.Count(ctx)
		if err != nil {
			r.log.Error("failed to count images", sl.Err(err))
			return
		}
		attrs = append(attrs, slog.Int("images", count))
	}

	r.log.Info("gallery status", attrs...)
}

// cronLogger routes scheduler messages to slog
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, sl.Err(err))...)
}

var _ Source = (*service.ImageGenerationService)(nil)
