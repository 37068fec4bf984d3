package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/store"
	"github.com/taskcur/taskcur/internal/task"
	"github.com/taskcur/taskcur/internal/user"
)

// Dispatcher runs the two notification batch jobs. Each invocation is
// a one-shot pass over current ledger state; nothing here runs
// continuously.
type Dispatcher struct {
	ledger  *task.Ledger
	users   *user.Directory
	store   store.Store
	mailer  Mailer
	logger  *log.Logger
	baseURL string
	now     func() time.Time
}

// NewDispatcher wires a dispatcher. The store is only used for the
// notification log.
func NewDispatcher(
	ledger *task.Ledger,
	users *user.Directory,
	s store.Store,
	mailer Mailer,
	baseURL string,
	logger *log.Logger,
) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		ledger:  ledger,
		users:   users,
		store:   s,
		mailer:  mailer,
		logger:  logger.With("component", "dispatcher"),
		baseURL: baseURL,
		now:     time.Now,
	}
}

// WeeklySummary mails a task summary to every user whose summary
// preference asks for one and who has at least one open or scheduled
// task. Returns how many summaries were sent. A failure for one user
// does not stop the rest; the errors come back joined.
func (d *Dispatcher) WeeklySummary(ctx context.Context) (int, error) {
	usersList, err := d.users.List(ctx)
	if err != nil {
		return 0, err
	}

	var sent int
	var errs []error
	for _, u := range usersList {
		if u.SummaryPref != model.SummaryPrefWeeklyFriday {
			continue
		}

		ov, err := d.ledger.OverviewForOwner(ctx, u.Name, u.ClosedDisplayCount)
		if err != nil {
			errs = append(errs, fmt.Errorf("summary for %s: %w", u.Name, err))
			continue
		}
		if len(ov.Open)+len(ov.Scheduled) == 0 {
			continue
		}

		subject := fmt.Sprintf("TaskCur Summary for %s", u.Name)
		body := renderSummary(u.Name, ov, d.baseURL)
		if err := d.mailer.Send(ctx, u.EmailList(), subject, body); err != nil {
			errs = append(errs, fmt.Errorf("summary for %s: %w", u.Name, err))
			continue
		}

		if err := d.record(ctx, model.Notification{
			UserName: u.Name,
			Kind:     model.NotificationWeeklySummary,
			Subject:  subject,
		}); err != nil {
			errs = append(errs, err)
		}

		sent++
		d.logger.Info("weekly summary sent", "user", u.Name)
	}
	return sent, errors.Join(errs...)
}

// DailyTaskTrigger consumes every arrived trigger date, re-opening the
// tasks, and mails the owners that asked for trigger email. The
// consume step runs under the ledger lock, so a task's trigger fires
// and is mailed at most once no matter how often the job runs.
// Returns how many trigger mails were sent.
func (d *Dispatcher) DailyTaskTrigger(ctx context.Context) (int, error) {
	fired, err := d.ledger.ConsumeTriggers(ctx, d.now())
	if err != nil {
		return 0, err
	}

	var sent int
	var errs []error
	for _, t := range fired {
		u, err := d.users.Get(ctx, t.Owner)
		if err != nil {
			errs = append(errs, fmt.Errorf("trigger mail for task %d: %w", t.ID, err))
			continue
		}
		if u.TriggerPref != model.TriggerPrefEmail {
			continue
		}

		subject := fmt.Sprintf("Task Triggered: %s", t.Title)
		body := renderTrigger(t, d.baseURL)
		if err := d.mailer.Send(ctx, u.EmailList(), subject, body); err != nil {
			errs = append(errs, fmt.Errorf("trigger mail for task %d: %w", t.ID, err))
			continue
		}

		taskID := t.ID
		if err := d.record(ctx, model.Notification{
			UserName: u.Name,
			TaskID:   &taskID,
			Kind:     model.NotificationTaskTrigger,
			Subject:  subject,
		}); err != nil {
			errs = append(errs, err)
		}

		sent++
		d.logger.Info("trigger mail sent", "user", u.Name, "task", t.ID)
	}
	return sent, errors.Join(errs...)
}

func (d *Dispatcher) record(ctx context.Context, n model.Notification) error {
	n.SentAt = d.now().UTC()
	if err := d.store.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("recording notification for %s: %w", n.UserName, err)
	}
	return nil
}
