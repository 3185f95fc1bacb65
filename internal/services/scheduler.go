package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/foxxcyber/hisab-kitab/internal/config"
	"github.com/foxxcyber/hisab-kitab/internal/models"
)

// ErrUnknownJob is returned by RunJob for a name that is not scheduled
var ErrUnknownJob = errors.New("unknown job")

// jobTimeout bounds a single scheduled run
const jobTimeout = 10 * time.Minute

// SchedulerStore is the database surface the background jobs use
type SchedulerStore interface {
	ListUsersWithParentalContact(ctx context.Context) ([]*models.User, error)
	ListUsersWithPreference(ctx context.Context, key, value string) ([]*models.User, error)
	ListDueRecurringExpenses(ctx context.Context, now time.Time) ([]*models.RecurringExpense, error)
	ProcessRecurringExpense(ctx context.Context, id int, now time.Time) (int, error)
	CleanupExpiredScans(ctx context.Context) ([]string, error)
}

// RecurringRecorder counts generated recurring expenses
type RecurringRecorder interface {
	ObserveRecurring(n int)
}

// Scheduler runs the periodic report, alert, recurring-expense and cleanup jobs
type Scheduler struct {
	cron     *cron.Cron
	store    SchedulerStore
	notifier *Notifier
	bills    BillStore
	recorder RecurringRecorder
	loc      *time.Location
	now      func() time.Time
	jobs     map[string]func(context.Context) error
}

// NewScheduler registers every job on a cron running in the configured time
// zone. bills may be nil when archiving is disabled.
func NewScheduler(cfg *config.Config, store SchedulerStore, notifier *Notifier, bills BillStore, recorder RecurringRecorder) (*Scheduler, error) {
	loc := cfg.Location()
	logger := cron.PrintfLogger(log.StandardLogger())

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		store:    store,
		notifier: notifier,
		bills:    bills,
		recorder: recorder,
		loc:      loc,
		now:      time.Now,
		jobs:     map[string]func(context.Context) error{},
	}

	jobs := []struct {
		name     string
		schedule string
		run      func(context.Context) error
	}{
		{"monthly-report", cfg.MonthlyReportSchedule, s.RunMonthlyReports},
		{"recurring-expenses", cfg.RecurringSchedule, func(ctx context.Context) error {
			_, err := s.RunRecurring(ctx)
			return err
		}},
		{"weekly-report", cfg.WeeklyReportSchedule, s.RunWeeklyReports},
		{"scan-cleanup", cfg.ScanCleanupSchedule, s.RunScanCleanup},
		{"budget-alerts", cfg.BudgetAlertSchedule, s.RunBudgetAlerts},
		{"expense-reminders", cfg.ReminderSchedule, s.RunExpenseReminders},
	}

	for _, j := range jobs {
		if _, err := s.cron.AddFunc(j.schedule, s.wrap(j.name, j.run)); err != nil {
			return nil, fmt.Errorf("invalid schedule %q for %s: %w", j.schedule, j.name, err)
		}
		s.jobs[j.name] = j.run
		log.WithFields(log.Fields{"job": j.name, "schedule": j.schedule}).Info("Scheduled job")
	}

	return s, nil
}

// Start runs the cron in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling new runs and waits for running jobs until ctx ends
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn("Scheduler stopped before running jobs finished")
	}
}

// JobNames lists the registered jobs
func (s *Scheduler) JobNames() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunJob runs one job immediately, outside the schedule
func (s *Scheduler) RunJob(ctx context.Context, name string) error {
	run, ok := s.jobs[name]
	if !ok {
		return ErrUnknownJob
	}
	log.WithField("job", name).Info("Running job on demand")
	return run(ctx)
}

func (s *Scheduler) wrap(name string, run func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := run(ctx); err != nil {
			log.WithField("job", name).WithError(err).Error("Scheduled job failed")
			return
		}
		log.WithFields(log.Fields{"job": name, "duration": time.Since(start)}).Info("Scheduled job finished")
	}
}

// RunMonthlyReports sends last month's report for every user with a
// parental contact. A failing user does not stop the rest.
func (s *Scheduler) RunMonthlyReports(ctx context.Context) error {
	users, err := s.store.ListUsersWithParentalContact(ctx)
	if err != nil {
		return fmt.Errorf("list users with parental contact: %w", err)
	}

	from, to := PreviousMonthRange(s.now().In(s.loc))
	failed := 0
	for _, u := range users {
		report, err := s.notifier.BuildReport(ctx, u.ID, MonthlyReportSubject, from, to)
		if err != nil {
			failed++
			log.WithField("user_id", u.ID).WithError(err).Error("Failed to build monthly report")
			continue
		}
		if _, err := s.notifier.SendMonthlyReport(ctx, u, report); err != nil {
			failed++
		}
	}

	log.WithFields(log.Fields{"users": len(users), "failed": failed}).Info("Monthly reports processed")
	return nil
}

// RunWeeklyReports emails the previous seven days' summary to users who
// opted in.
func (s *Scheduler) RunWeeklyReports(ctx context.Context) error {
	users, err := s.store.ListUsersWithPreference(ctx, models.PrefWeeklyReports, "true")
	if err != nil {
		return fmt.Errorf("list weekly report subscribers: %w", err)
	}

	now := s.now().In(s.loc)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	from := to.AddDate(0, 0, -7)

	for _, u := range users {
		report, err := s.notifier.BuildReport(ctx, u.ID, WeeklyReportSubject, from, to)
		if err != nil {
			log.WithField("user_id", u.ID).WithError(err).Error("Failed to build weekly report")
			continue
		}
		_ = s.notifier.SendWeeklySummary(ctx, u, report)
	}
	return nil
}

// RunBudgetAlerts emails opted-in users whose month-to-date spend crossed
// 80% or 100% of their monthly budget in the last day. The job runs daily so
// each level is announced once per month.
func (s *Scheduler) RunBudgetAlerts(ctx context.Context) error {
	users, err := s.store.ListUsersWithPreference(ctx, models.PrefBudgetAlerts, "true")
	if err != nil {
		return fmt.Errorf("list budget alert subscribers: %w", err)
	}

	now := s.now().In(s.loc)
	from, _ := MonthRange(now)
	since := now.Add(-24 * time.Hour)
	if since.Before(from) {
		since = from
	}

	sent := 0
	for _, u := range users {
		if u.MonthlyBudget <= 0 {
			continue
		}
		current, err := s.notifier.BuildReport(ctx, u.ID, BudgetAlertSubject, from, now)
		if err != nil {
			log.WithField("user_id", u.ID).WithError(err).Error("Failed to compute budget usage")
			continue
		}
		previous, err := s.notifier.BuildReport(ctx, u.ID, BudgetAlertSubject, from, since)
		if err != nil {
			log.WithField("user_id", u.ID).WithError(err).Error("Failed to compute budget usage")
			continue
		}

		level := CrossedBudgetLevel(previous.Total, current.Total, u.MonthlyBudget)
		if level == 0 {
			continue
		}
		if err := s.notifier.SendBudgetAlert(ctx, u, current, level); err == nil {
			sent++
		}
	}

	log.WithFields(log.Fields{"users": len(users), "sent": sent}).Info("Budget alerts processed")
	return nil
}

// RunExpenseReminders reminds opted-in users who have logged nothing today
func (s *Scheduler) RunExpenseReminders(ctx context.Context) error {
	users, err := s.store.ListUsersWithPreference(ctx, models.PrefExpenseReminders, "true")
	if err != nil {
		return fmt.Errorf("list expense reminder subscribers: %w", err)
	}

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	for _, u := range users {
		report, err := s.notifier.BuildReport(ctx, u.ID, ExpenseReminderSubject, today, now)
		if err != nil {
			log.WithField("user_id", u.ID).WithError(err).Error("Failed to check today's expenses")
			continue
		}
		if report.Count > 0 {
			continue
		}
		_ = s.notifier.SendExpenseReminder(ctx, u)
	}
	return nil
}

// RunRecurring materializes every due recurring expense and returns how many
// expenses were created. Each recurring row commits on its own.
func (s *Scheduler) RunRecurring(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.store.ListDueRecurringExpenses(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due recurring expenses: %w", err)
	}

	created := 0
	for _, r := range due {
		n, err := s.store.ProcessRecurringExpense(ctx, r.ID, now)
		if err != nil {
			log.WithField("recurring_id", r.ID).WithError(err).Error("Failed to process recurring expense")
			continue
		}
		created += n
	}

	if s.recorder != nil {
		s.recorder.ObserveRecurring(created)
	}
	if created > 0 {
		log.WithFields(log.Fields{"due": len(due), "created": created}).Info("Recurring expenses processed")
	}
	return created, nil
}

// RunScanCleanup deletes expired bill scans and their archived images
func (s *Scheduler) RunScanCleanup(ctx context.Context) error {
	keys, err := s.store.CleanupExpiredScans(ctx)
	if err != nil {
		return fmt.Errorf("cleanup expired scans: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if s.bills != nil {
		if err := s.bills.DeleteMultiple(ctx, keys); err != nil {
			return fmt.Errorf("delete expired bill images: %w", err)
		}
	}
	log.WithField("count", len(keys)).Info("Expired bill scans removed")
	return nil
}
