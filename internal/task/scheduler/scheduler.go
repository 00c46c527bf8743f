package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	pushdomain "taskflow-backend/internal/push/domain"
	"taskflow-backend/internal/push/gateway"
	pushrepo "taskflow-backend/internal/push/repository"
	"taskflow-backend/internal/task/domain"
	"taskflow-backend/internal/task/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const reminderTitle = "Task Reminder"

// ErrTickInProgress is returned by RunOnce when another tick holds the scheduler.
var ErrTickInProgress = errors.New("reminder tick already in progress")

// Config controls the reminder cadence and selection window.
type Config struct {
	Interval       time.Duration
	Window         time.Duration
	Offset         time.Duration
	IncludeOverdue bool
}

// TickReport summarises one tick.
type TickReport struct {
	Selected   int // tasks returned by the due query
	Notified   int // tasks marked reminderSent
	Superseded int // tasks rescheduled between selection and mark
	Delivered  int
	Evicted    int
	Failed     int // transient delivery failures
}

// TaskReminderScheduler notifies owners of tasks entering the reminder window.
type TaskReminderScheduler struct {
	taskRepo repository.TaskRepository
	subRepo  pushrepo.SubscriptionRepository
	gateway  gateway.Gateway
	cfg      Config
	logger   *zap.Logger
	cron     *cron.Cron
	mu       sync.Mutex
	now      func() time.Time
}

// New creates a scheduler. Zero config values fall back to a 1 minute cadence
// with a 30 minute window and offset.
func New(
	taskRepo repository.TaskRepository,
	subRepo pushrepo.SubscriptionRepository,
	gw gateway.Gateway,
	cfg Config,
	logger *zap.Logger,
) *TaskReminderScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Window <= 0 {
		cfg.Window = 30 * time.Minute
	}
	if cfg.Offset <= 0 {
		cfg.Offset = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cronLog := newCronLogger(logger)
	return &TaskReminderScheduler{
		taskRepo: taskRepo,
		subRepo:  subRepo,
		gateway:  gw,
		cfg:      cfg,
		logger:   logger,
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		now: time.Now,
	}
}

// Start registers the tick and launches the cron runner.
func (s *TaskReminderScheduler) Start() error {
	schedule := fmt.Sprintf("@every %s", s.cfg.Interval)
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return fmt.Errorf("schedule reminder tick: %w", err)
	}
	s.cron.Start()
	s.logger.Info("reminder scheduler started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Duration("window", s.cfg.Window),
		zap.Bool("include_overdue", s.cfg.IncludeOverdue))
	return nil
}

// Stop stops scheduling new ticks and waits for a running one, or for ctx.
func (s *TaskReminderScheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		s.logger.Warn("reminder scheduler stop timed out")
		return
	}
	s.logger.Info("reminder scheduler stopped")
}

func (s *TaskReminderScheduler) tick() {
	// Each delivery is bounded by the gateway timeout; the tick itself runs to completion.
	report, err := s.RunOnce(context.Background())
	switch {
	case errors.Is(err, ErrTickInProgress):
		s.logger.Debug("previous tick still running, skipping")
	case err != nil:
		s.logger.Error("reminder tick aborted", zap.Error(err), zap.Any("report", report))
	case report.Selected > 0:
		s.logger.Info("reminder tick finished", zap.Any("report", report))
	}
}

// RunOnce performs a single tick: select due tasks, notify their owners, evict
// dead subscriptions and mark each task. A failing subscription read or a
// cancelled ctx aborts the tick between tasks. A task whose deliveries were
// attempted is always marked, so a reminder is sent at most once per due date.
func (s *TaskReminderScheduler) RunOnce(ctx context.Context) (TickReport, error) {
	var report TickReport
	if !s.mu.TryLock() {
		return report, ErrTickInProgress
	}
	defer s.mu.Unlock()

	now := s.now().UTC()
	tasks, err := s.taskRepo.FindDueForReminder(ctx, repository.DueQuery{
		From:           now,
		To:             now.Add(s.cfg.Window),
		IncludeOverdue: s.cfg.IncludeOverdue,
	})
	if err != nil {
		return report, fmt.Errorf("select due tasks: %w", err)
	}
	report.Selected = len(tasks)

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if task.ReminderSent {
			continue
		}
		if err := s.remind(ctx, task, &report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (s *TaskReminderScheduler) remind(ctx context.Context, task *domain.Task, report *TickReport) error {
	log := s.logger.With(zap.String("task_id", task.ID), zap.String("user_id", task.UserID))

	subs, err := s.subRepo.FindByUserID(ctx, task.UserID)
	if err != nil {
		return fmt.Errorf("load subscriptions for task %s: %w", task.ID, err)
	}

	n := s.notification(task)
	for i := range subs {
		s.deliver(ctx, log, &subs[i], n, report)
	}

	marked, err := s.taskRepo.MarkReminderSent(context.WithoutCancel(ctx), task.ID, task.ReminderGeneration)
	switch {
	case err != nil:
		log.Error("failed to mark reminder sent, will retry next tick", zap.Error(err))
	case !marked:
		report.Superseded++
		log.Info("due date changed during tick, reminder not marked")
	default:
		report.Notified++
		log.Debug("reminder sent", zap.Int("subscriptions", len(subs)))
	}
	return nil
}

func (s *TaskReminderScheduler) deliver(ctx context.Context, log *zap.Logger, sub *pushdomain.PushSubscription, n gateway.Notification, report *TickReport) {
	res := s.gateway.Send(ctx, sub.Wire(), n)
	switch res.Outcome {
	case gateway.Delivered:
		report.Delivered++
	case gateway.PermanentFailure:
		if err := s.subRepo.Delete(ctx, sub.ID); err != nil {
			log.Error("failed to evict subscription", zap.String("subscription_id", sub.ID), zap.Error(err))
			return
		}
		report.Evicted++
		log.Info("evicted expired subscription",
			zap.String("subscription_id", sub.ID),
			zap.Int("status", res.StatusCode))
	default:
		report.Failed++
		log.Warn("push delivery failed",
			zap.String("subscription_id", sub.ID),
			zap.Int("status", res.StatusCode),
			zap.Error(res.Err))
	}
}

func (s *TaskReminderScheduler) notification(task *domain.Task) gateway.Notification {
	return gateway.Notification{
		Title: reminderTitle,
		Body:  fmt.Sprintf("Your task \"%s\" is due in %s!", task.Title, durationPhrase(s.cfg.Offset)),
	}
}

// durationPhrase renders whole hours or minutes in words, e.g. "30 minutes".
func durationPhrase(d time.Duration) string {
	plural := func(n int64, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int64(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int64(d/time.Minute), "minute")
	default:
		return d.String()
	}
}
