// Package reminder periodically scans the task store for tasks coming
// due and announces them on the event bus.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dohr-michael/taskchat/internal/events"
	"github.com/dohr-michael/taskchat/internal/tasks"
)

// scanLimit bounds how many due tasks a single sweep considers.
const scanLimit = 500

// Service runs a cron-scheduled sweep over the task store and publishes
// a task.due event for every unfinished task due within the horizon.
// Each task is announced once per due date; rescheduling re-arms it.
type Service struct {
	store   tasks.Store
	bus     *events.Bus
	logger  *slog.Logger
	expr    *CronExpr
	horizon time.Duration

	mu        sync.Mutex
	announced map[int64]time.Time

	done   chan struct{}
	wg     sync.WaitGroup
	stopMu sync.Mutex
}

// Config wires a reminder Service.
type Config struct {
	Store    tasks.Store
	Bus      *events.Bus
	Logger   *slog.Logger
	Schedule string        // cron spec (default "*/15 * * * *")
	Horizon  time.Duration // look-ahead window (default 24h)
}

// New creates a reminder service. The schedule must be a valid 5-field
// cron expression.
func New(cfg Config) (*Service, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "*/15 * * * *"
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	expr, err := ParseCron(cfg.Schedule)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:     cfg.Store,
		bus:       cfg.Bus,
		logger:    cfg.Logger,
		expr:      expr,
		horizon:   cfg.Horizon,
		announced: make(map[int64]time.Time),
		done:      make(chan struct{}),
	}, nil
}

// Start launches the sweep loop. The loop ticks every minute and runs a
// sweep when the minute matches the schedule.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		s.logger.Info("reminder service started",
			"schedule", s.expr.String(),
			"horizon", s.horizon.String())

		for {
			select {
			case <-s.done:
				return
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if !s.expr.Matches(now) {
					continue
				}
				if err := s.Sweep(ctx, now); err != nil {
					s.logger.Warn("reminder sweep failed", "error", err)
				}
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *Service) Stop() {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()

	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)
	s.wg.Wait()
}

// Sweep runs one pass: every unfinished task due before now+horizon is
// announced, unless it was already announced for the same due date.
func (s *Service) Sweep(ctx context.Context, now time.Time) error {
	cutoff := now.Add(s.horizon)
	list, err := s.store.List(ctx, 0, scanLimit, &tasks.Filter{DueBefore: &cutoff})
	if err != nil {
		return err
	}

	for _, t := range list {
		if t.Status == tasks.StatusDone || t.DueDate == nil {
			continue
		}

		s.mu.Lock()
		prev, seen := s.announced[t.ID]
		if seen && prev.Equal(*t.DueDate) {
			s.mu.Unlock()
			continue
		}
		s.announced[t.ID] = *t.DueDate
		s.mu.Unlock()

		s.logger.Info("task due",
			"task_id", t.ID,
			"title", t.Title,
			"due_date", t.DueDate.Format(time.RFC3339))

		if s.bus != nil {
			s.bus.Publish(events.NewTypedEvent(events.SourceReminder, events.TaskDuePayload{
				TaskID:  t.ID,
				Title:   t.Title,
				DueDate: *t.DueDate,
			}))
		}
	}

	return nil
}
