package reminders

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avelichko/inkwell/internal/entities"
)

// Notifier receives the book ids to remind the user about when a reminder
// fires. Delivery (push, desktop notification, email) is the consumer's
// concern.
type Notifier interface {
	Remind(bookIDs []string)
}

// LogNotifier writes reminders to the process log.
type LogNotifier struct{}

func (LogNotifier) Remind(bookIDs []string) {
	log.Printf("Reminder: time to write (%d books tracked)", len(bookIDs))
}

// Scheduler fires writing reminders according to the configured interval.
type Scheduler struct {
	store    *SettingsStore
	notifier Notifier

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	generation uint64
	baseCtx    context.Context
	cancelFunc context.CancelFunc
}

// NewScheduler creates a scheduler over the given settings store.
func NewScheduler(store *SettingsStore, notifier Notifier) *Scheduler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Scheduler{
		store:    store,
		notifier: notifier,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// CronSpec maps an interval class to its cron schedule. Reminders fire at
// 09:00 local time on the days the class selects.
func CronSpec(interval entities.ReminderInterval) (string, error) {
	switch interval {
	case entities.ReminderDaily:
		return "0 9 * * *", nil
	case entities.ReminderEveryTwo:
		return "0 9 */2 * *", nil
	case entities.ReminderWeekly:
		return "0 9 * * 1", nil
	case entities.ReminderBiweekly:
		return "0 9 1,15 * *", nil
	case entities.ReminderMonthly:
		return "0 9 1 * *", nil
	}
	return "", fmt.Errorf("unknown reminder interval %q", interval)
}

// Start begins the scheduler if reminders are enabled. The context is
// remembered, so later Reschedule calls stay tied to the composition root.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.baseCtx = ctx

	if s.isRunning {
		return nil
	}

	settings := s.store.Get()
	if !settings.Enabled {
		log.Printf("Reminder scheduler: disabled")
		return nil
	}

	spec, err := CronSpec(settings.Interval)
	if err != nil {
		return err
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		s.notifier.Remind(s.store.Get().BookIDs)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	s.generation++
	gen := s.generation

	log.Printf("Reminder scheduler: started with interval '%s'", settings.Interval)

	// The generation guard keeps a watcher that outlived its run from
	// stopping a later one.
	go func() {
		<-cancelCtx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation == gen {
			s.stopLocked()
		}
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		// Releases the watcher goroutine spawned by Start.
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Reminder scheduler: stopped")
}

// Reschedule applies updated settings (call after the store changes). The
// restarted job inherits the context given to the original Start.
func (s *Scheduler) Reschedule() error {
	s.mu.RLock()
	wasRunning := s.isRunning
	ctx := s.baseCtx
	s.mu.RUnlock()

	if ctx == nil {
		ctx = context.Background()
	}
	if wasRunning {
		s.Stop()
	}
	return s.Start(ctx)
}

// IsRunning returns whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next reminder will fire, or nil when stopped.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}
