// Package autosave periodically writes changed word libraries to disk.
package autosave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Saver flushes pending changes and reports how many libraries it wrote.
type Saver interface {
	SaveAll() int
}

type Config struct {
	Enabled  bool
	Schedule string // Cron format: "*/5 * * * *" = every 5 minutes
}

// Scheduler runs Saver.SaveAll on a cron schedule.
type Scheduler struct {
	saver  Saver
	config Config
	logger *slog.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewScheduler(saver Saver, config Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		saver:  saver,
		config: config,
		logger: logger.With("component", "autosave"),
		cron:   cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler if autosave is enabled. The scheduler stops
// when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		s.logger.Info("autosave disabled")
		return nil
	}

	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, s.run)
	if err != nil {
		return fmt.Errorf("failed to schedule autosave job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancel = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRunTime(s.config.Schedule)
	s.logger.Info("autosave started", "schedule", s.config.Schedule, "next_run", next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running save to finish and stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(s.entryID)

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.isRunning = false

	s.logger.Info("autosave stopped")
}

// RunNow triggers an immediate save in the background.
func (s *Scheduler) RunNow() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()
}

// Wait blocks until saves started by RunNow have finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next save will occur, or nil when stopped.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() || entry.Next.IsZero() {
		return nil
	}
	t := entry.Next
	return &t
}

func (s *Scheduler) run() {
	start := time.Now()
	saved := s.saver.SaveAll()
	s.logger.Debug("autosave run finished", "saved", saved, "duration", time.Since(start).Round(time.Millisecond))
}

// ValidateSchedule checks a 5-field cron schedule.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime calculates when a schedule fires next.
func NextRunTime(schedule string) (*time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}
