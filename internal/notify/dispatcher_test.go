package notify

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/store"
	"github.com/taskcur/taskcur/internal/task"
	"github.com/taskcur/taskcur/internal/user"
	"github.com/taskcur/taskcur/tests/testutil"
)

type sentMail struct {
	to      []string
	subject string
	body    string
}

// fakeMailer records every send; failTo makes sends to that address
// fail.
type fakeMailer struct {
	sent   []sentMail
	failTo string
}

func (f *fakeMailer) Send(_ context.Context, to []string, subject, body string) error {
	for _, addr := range to {
		if f.failTo != "" && addr == f.failTo {
			return fmt.Errorf("delivery to %s refused", addr)
		}
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type dispatcherFixture struct {
	store      *store.SQLiteStore
	ledger     *task.Ledger
	users      *user.Directory
	mailer     *fakeMailer
	dispatcher *Dispatcher
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()
	st := testutil.NewTestStore(t)
	ledger := task.NewLedger(st, nil)
	users := user.NewDirectory(st, 0, nil)
	mailer := &fakeMailer{}
	d := NewDispatcher(ledger, users, st, mailer, "http://tasks.example.com", nil)
	return &dispatcherFixture{store: st, ledger: ledger, users: users, mailer: mailer, dispatcher: d}
}

func (f *dispatcherFixture) createUser(t *testing.T, name, summaryPref, triggerPref string) {
	t.Helper()
	_, err := f.users.Create(context.Background(), user.CreateParams{
		Name:               name,
		EmailAddress:       name + "@example.com",
		SummaryPref:        summaryPref,
		TriggerPref:        triggerPref,
		ClosedDisplayCount: 10,
	})
	require.NoError(t, err)
}

func TestDispatcher_WeeklySummary(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	f.createUser(t, "alice", model.SummaryPrefWeeklyFriday, model.TriggerPrefNone)
	f.createUser(t, "bob", model.SummaryPrefNone, model.TriggerPrefNone)
	f.createUser(t, "carol", model.SummaryPrefWeeklyFriday, model.TriggerPrefNone)

	// alice has tasks, bob opted out, carol has nothing to summarize.
	_, err := f.ledger.Create(ctx, "alice", "Pay rent", "due first", "")
	require.NoError(t, err)
	_, err = f.ledger.Create(ctx, "alice", "Renew passport", "", "2099-01-01")
	require.NoError(t, err)
	_, err = f.ledger.Create(ctx, "bob", "Ignored", "", "")
	require.NoError(t, err)

	sent, err := f.dispatcher.WeeklySummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, f.mailer.sent, 1)
	mail := f.mailer.sent[0]
	assert.Equal(t, []string{"alice@example.com"}, mail.to)
	assert.Equal(t, "TaskCur Summary for alice", mail.subject)
	assert.Contains(t, mail.body, "Pay rent")
	assert.Contains(t, mail.body, "Renew passport")
	assert.Contains(t, mail.body, "http://tasks.example.com/task/")
	assert.Contains(t, mail.body, "2099-01-01")

	notes, err := f.store.GetNotificationsForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationWeeklySummary, notes[0].Kind)
}

func TestDispatcher_WeeklySummaryClosedOnlyIsSkipped(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	f.createUser(t, "alice", model.SummaryPrefWeeklyFriday, model.TriggerPrefNone)
	created, err := f.ledger.Create(ctx, "alice", "Already done", "", "")
	require.NoError(t, err)
	_, err = f.ledger.Close(ctx, created.ID)
	require.NoError(t, err)

	sent, err := f.dispatcher.WeeklySummary(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, f.mailer.sent)
}

func TestDispatcher_WeeklySummaryFailureDoesNotStopOthers(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	f.createUser(t, "alice", model.SummaryPrefWeeklyFriday, model.TriggerPrefNone)
	f.createUser(t, "bob", model.SummaryPrefWeeklyFriday, model.TriggerPrefNone)
	_, err := f.ledger.Create(ctx, "alice", "Pay rent", "", "")
	require.NoError(t, err)
	_, err = f.ledger.Create(ctx, "bob", "Water plants", "", "")
	require.NoError(t, err)

	f.mailer.failTo = "alice@example.com"
	sent, err := f.dispatcher.WeeklySummary(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, []string{"bob@example.com"}, f.mailer.sent[0].to)
}

func TestDispatcher_DailyTaskTriggerExactlyOnce(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	f.createUser(t, "alice", model.SummaryPrefNone, model.TriggerPrefEmail)

	now := time.Date(2026, 3, 6, 8, 0, 0, 0, time.UTC)
	f.dispatcher.now = func() time.Time { return now }

	due, err := f.ledger.Create(ctx, "alice", "Call plumber", "kitchen sink\r\nstill leaking", now.Format(model.TriggerDateLayout))
	require.NoError(t, err)

	sent, err := f.dispatcher.DailyTaskTrigger(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, f.mailer.sent, 1)
	mail := f.mailer.sent[0]
	assert.Equal(t, "Task Triggered: Call plumber", mail.subject)
	assert.Contains(t, mail.body, fmt.Sprintf("/task/%d", due.ID))
	assert.Contains(t, mail.body, "kitchen sink<br>still leaking")

	reopened, err := f.ledger.Get(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, reopened.Status)
	assert.Nil(t, reopened.TriggerDate)

	notes, err := f.store.GetNotificationsForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationTaskTrigger, notes[0].Kind)
	require.NotNil(t, notes[0].TaskID)
	assert.Equal(t, due.ID, *notes[0].TaskID)

	// The second run finds nothing to fire.
	sent, err = f.dispatcher.DailyTaskTrigger(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, f.mailer.sent, 1)
}

func TestDispatcher_DailyTaskTriggerHonorsPreference(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	f.createUser(t, "quiet", model.SummaryPrefNone, model.TriggerPrefNone)

	now := time.Date(2026, 3, 6, 8, 0, 0, 0, time.UTC)
	f.dispatcher.now = func() time.Time { return now }

	due, err := f.ledger.Create(ctx, "quiet", "Silent task", "", now.Format(model.TriggerDateLayout))
	require.NoError(t, err)

	// The trigger still fires and reopens the task; no mail goes out.
	sent, err := f.dispatcher.DailyTaskTrigger(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, f.mailer.sent)

	reopened, err := f.ledger.Get(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, reopened.Status)
}

func TestRenderTaskTable(t *testing.T) {
	assert.Equal(t, "None", renderTaskTable(nil, model.StatusOpen, "http://x"))

	trigger := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	body := renderTaskTable([]model.Task{{
		ID:          42,
		Title:       "Escape <this>",
		Description: "line one\r\nline two",
		Status:      model.StatusScheduled,
		TriggerDate: &trigger,
	}}, model.StatusScheduled, "http://x")

	assert.Contains(t, body, "Trigger Date")
	assert.Contains(t, body, `<a href="http://x/task/42">Escape &lt;this&gt;</a>`)
	assert.Contains(t, body, "line one<br>line two")
	assert.Contains(t, body, "2099-01-01")
	assert.False(t, strings.Contains(body, "<this>"))
}

func TestWeeklySummaryErrorNamesUser(t *testing.T) {
	f := newDispatcherFixture(t)
	ctx := context.Background()

	f.createUser(t, "alice", model.SummaryPrefWeeklyFriday, model.TriggerPrefNone)
	_, err := f.ledger.Create(ctx, "alice", "Pay rent", "", "")
	require.NoError(t, err)

	f.mailer.failTo = "alice@example.com"
	_, err = f.dispatcher.WeeklySummary(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary for alice")
}
