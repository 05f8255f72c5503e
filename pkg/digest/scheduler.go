package digest

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sink receives each digest run's report.
type Sink func(report *Report)

// SchedulerConfig configures a recurring digest run.
type SchedulerConfig struct {
	// Schedule is a standard 5-field cron expression, e.g. "0 2 * * *"
	// for a nightly 02:00 UTC run.
	Schedule string
	Sink     Sink
	Logger   *slog.Logger
	// RangeFor returns a time inside the day a given firing should cover;
	// RunNow passes it to Day. Defaults to now.Add(-24h), i.e. "yesterday"
	// for a nightly run.
	RangeFor func(now time.Time) time.Time
}

// Scheduler wraps an Assembler with a cron cadence. The assembler stays
// pure and synchronous; Scheduler is the only part of this package that
// owns a background goroutine.
type Scheduler struct {
	assembler *Assembler
	cfg       SchedulerConfig
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewScheduler constructs a Scheduler that has not yet started running.
func NewScheduler(assembler *Assembler, cfg SchedulerConfig) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "digest.scheduler")
	}
	return &Scheduler{
		assembler: assembler,
		cfg:       cfg,
		cron:      cron.New(cron.WithLocation(time.UTC)),
		logger:    cfg.Logger,
	}
}

// Start registers the cron job and begins its background clock. It
// returns an error only if the schedule expression fails to parse.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Schedule, s.runOnce)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron clock and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunNow assembles and delivers a digest immediately, outside the cron
// cadence — useful for an on-demand "digest now" CLI invocation.
func (s *Scheduler) RunNow(t time.Time) *Report {
	r := Day(s.coveredDay(t))
	report := s.assembler.Assemble(r)
	if s.cfg.Sink != nil {
		s.cfg.Sink(report)
	}
	return report
}

func (s *Scheduler) runOnce() {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("digest: run panicked", "panic", rec)
		}
	}()
	s.RunNow(time.Now().UTC())
}

func (s *Scheduler) coveredDay(now time.Time) time.Time {
	if s.cfg.RangeFor != nil {
		return s.cfg.RangeFor(now)
	}
	return now.Add(-24 * time.Hour)
}
