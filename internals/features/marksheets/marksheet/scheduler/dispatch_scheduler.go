package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/service"
)

// Report summarizes one scheduler pass.
type Report struct {
	Scanned   int `json:"scanned"`
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// DispatchScheduler runs two independent cadences over the marksheet store:
// a pre-notification sweep for imminent dispatches and the due-dispatch
// processor. Both are idempotent per record via persisted flags, so an
// overlapping or repeated pass is harmless.
type DispatchScheduler struct {
	store    service.Store
	dispatch *service.DispatchService
	notifier service.Notifier

	cron         *cron.Cron
	upcomingSpec string
	dueSpec      string
	lookahead    time.Duration
	now          func() time.Time
}

type Option func(*DispatchScheduler)

// WithClock injects a fake clock for tests.
func WithClock(now func() time.Time) Option {
	return func(s *DispatchScheduler) { s.now = now }
}

// WithIntervals overrides the two cadences (cron spec strings).
func WithIntervals(upcomingSpec, dueSpec string) Option {
	return func(s *DispatchScheduler) {
		s.upcomingSpec = upcomingSpec
		s.dueSpec = dueSpec
	}
}

func NewDispatchScheduler(store service.Store, dispatch *service.DispatchService, notifier service.Notifier, opts ...Option) *DispatchScheduler {
	s := &DispatchScheduler{
		store:        store,
		dispatch:     dispatch,
		notifier:     notifier,
		upcomingSpec: "@every 10m",
		dueSpec:      "@every 5m",
		lookahead:    time.Hour,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the cron entries and begins ticking. Safe to call once.
func (s *DispatchScheduler) Start() error {
	if s.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(s.upcomingSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		if _, err := s.CheckUpcomingDispatches(ctx); err != nil {
			log.Printf("[SCHEDULER] upcoming sweep failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("register upcoming sweep: %w", err)
	}
	if _, err := c.AddFunc(s.dueSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		if _, err := s.ProcessScheduledDispatches(ctx); err != nil {
			log.Printf("[SCHEDULER] due sweep failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("register due sweep: %w", err)
	}
	c.Start()
	s.cron = c
	log.Printf("[SCHEDULER] started (upcoming=%s, due=%s)", s.upcomingSpec, s.dueSpec)
	return nil
}

// Stop halts the timers and waits for any in-flight pass to finish, bounded
// by ctx.
func (s *DispatchScheduler) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		log.Println("[SCHEDULER] stop timed out with a pass still running")
	}
	s.cron = nil
	log.Println("[SCHEDULER] stopped")
}

// CheckUpcomingDispatches notifies staff of dispatches scheduled within the
// next hour. The pre-dispatch flag is persisted per record before moving on,
// so a crash mid-batch cannot re-notify already-processed records.
func (s *DispatchScheduler) CheckUpcomingDispatches(ctx context.Context) (Report, error) {
	now := s.now()
	batch, err := s.store.UpcomingDispatches(ctx, now, now.Add(s.lookahead))
	if err != nil {
		return Report{}, fmt.Errorf("upcoming query: %w", err)
	}

	report := Report{Scanned: len(batch)}
	for i := range batch {
		m := &batch[i]
		if err := s.preNotifyOne(ctx, m); err != nil {
			report.Failed++
			log.Printf("[SCHEDULER] pre-notify failed for %s: %v", m.HexID(), err)
			continue
		}
		report.Processed++
	}
	if report.Scanned > 0 {
		log.Printf("[SCHEDULER] upcoming sweep: %d scanned, %d notified, %d failed",
			report.Scanned, report.Processed, report.Failed)
	}
	return report, nil
}

func (s *DispatchScheduler) preNotifyOne(ctx context.Context, m *model.Marksheet) error {
	when := "soon"
	if m.DispatchRequest.ScheduledDispatchDate != nil {
		when = m.DispatchRequest.ScheduledDispatchDate.Format("02 Jan 2006 15:04")
	}
	s.notifier.NotifyUser(ctx, m.Staff.Email,
		"Upcoming marksheet dispatch",
		fmt.Sprintf("Marksheet of %s (%s) is scheduled for WhatsApp dispatch at %s.",
			m.Student.Name, m.Student.RegisterNumber, when),
		"/staff/marksheets/"+m.HexID())

	// Persist the flag immediately; the next record must not depend on this
	// one's outcome.
	_, err := s.store.UpdateFields(ctx, m.HexID(), map[string]interface{}{
		"dispatchRequest.preDispatchNotificationSent": true,
		"updatedAt": s.now(),
	})
	return err
}

// ProcessScheduledDispatches sends every due marksheet through the dispatch
// service. Each record is marked autoDispatched regardless of outcome, so
// the next pass never re-attempts it; failures are terminal until an
// operator resets the flags.
func (s *DispatchScheduler) ProcessScheduledDispatches(ctx context.Context) (Report, error) {
	now := s.now()
	batch, err := s.store.DueDispatches(ctx, now)
	if err != nil {
		return Report{}, fmt.Errorf("due query: %w", err)
	}

	report := Report{Scanned: len(batch)}
	for i := range batch {
		m := &batch[i]
		ok, err := s.dispatch.AutoDispatch(ctx, m)
		if err != nil {
			// Store-level fault on this record; the others still get their
			// turn and the record stays eligible for the next pass.
			report.Skipped++
			log.Printf("[SCHEDULER] auto-dispatch errored for %s: %v", m.HexID(), err)
			continue
		}
		report.Processed++
		if ok {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	if report.Scanned > 0 {
		log.Printf("[SCHEDULER] due sweep: %d scanned, %d sent, %d failed, %d skipped",
			report.Scanned, report.Succeeded, report.Failed, report.Skipped)
	}
	return report, nil
}

// RunAllNow triggers both sweeps synchronously (operator control surface).
func (s *DispatchScheduler) RunAllNow(ctx context.Context) (upcoming Report, due Report, err error) {
	upcoming, err = s.CheckUpcomingDispatches(ctx)
	if err != nil {
		return upcoming, due, err
	}
	due, err = s.ProcessScheduledDispatches(ctx)
	return upcoming, due, err
}
