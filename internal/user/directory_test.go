package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskcur/taskcur/internal/auth"
	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/store"
	"github.com/taskcur/taskcur/tests/testutil"
)

func validParams() CreateParams {
	return CreateParams{
		Name:               "alice",
		EmailAddress:       "alice@example.com",
		SummaryPref:        model.SummaryPrefWeeklyFriday,
		TriggerPref:        model.TriggerPrefEmail,
		ClosedDisplayCount: 10,
	}
}

func TestDirectory_Create(t *testing.T) {
	st := testutil.NewTestStore(t)
	d := NewDirectory(st, 0, nil)
	ctx := context.Background()

	p := validParams()
	p.Name = "  alice  "
	p.EmailAddress = "alice@example.com, spouse@example.com "
	p.Password = "longenough"
	p.PasswordConfirm = "longenough"

	u, err := d.Create(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Name)
	assert.Equal(t, "alice@example.com,spouse@example.com", u.EmailAddress)
	assert.Equal(t, []string{"alice@example.com", "spouse@example.com"}, u.EmailList())
	assert.True(t, auth.VerifyPassword("longenough", u.PasswordHash))

	stored, err := d.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.EmailAddress, stored.EmailAddress)
}

func TestDirectory_CreateWithoutPasswordLeavesSetupPending(t *testing.T) {
	st := testutil.NewTestStore(t)
	d := NewDirectory(st, 0, nil)

	u, err := d.Create(context.Background(), validParams())
	require.NoError(t, err)
	assert.True(t, auth.NeedsSetup(u))
}

func TestDirectory_CreateValidation(t *testing.T) {
	st := testutil.NewTestStore(t)
	d := NewDirectory(st, 0, nil)
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*CreateParams)
		wantErr error
	}{
		{"bad name", func(p *CreateParams) { p.Name = "alice smith" }, model.ErrInvalidUserName},
		{"empty name", func(p *CreateParams) { p.Name = "" }, model.ErrInvalidUserName},
		{"bad email", func(p *CreateParams) { p.EmailAddress = "not-an-email" }, model.ErrInvalidEmail},
		{"bad email in list", func(p *CreateParams) { p.EmailAddress = "a@b.com,oops" }, model.ErrInvalidEmail},
		{"bad summary pref", func(p *CreateParams) { p.SummaryPref = "daily" }, model.ErrInvalidSummaryPref},
		{"bad trigger pref", func(p *CreateParams) { p.TriggerPref = "sms" }, model.ErrInvalidTriggerPref},
		{"zero display count", func(p *CreateParams) { p.ClosedDisplayCount = 0 }, model.ErrInvalidDisplayCount},
		{"short password", func(p *CreateParams) { p.Password, p.PasswordConfirm = "short", "short" }, auth.ErrPasswordTooShort},
		{"password mismatch", func(p *CreateParams) { p.Password, p.PasswordConfirm = "longenough", "different" }, auth.ErrPasswordMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams()
			tc.mutate(&p)
			_, err := d.Create(ctx, p)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDirectory_CreateDuplicateName(t *testing.T) {
	st := testutil.NewTestStore(t)
	d := NewDirectory(st, 0, nil)
	ctx := context.Background()

	_, err := d.Create(ctx, validParams())
	require.NoError(t, err)

	_, err = d.Create(ctx, validParams())
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestDirectory_Update(t *testing.T) {
	st := testutil.NewTestStore(t)
	d := NewDirectory(st, 0, nil)
	ctx := context.Background()

	_, err := d.Create(ctx, validParams())
	require.NoError(t, err)

	u, err := d.Update(ctx, "alice", UpdateParams{
		EmailAddress:       "new@example.com",
		SummaryPref:        model.SummaryPrefNone,
		TriggerPref:        model.TriggerPrefNone,
		ClosedDisplayCount: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.EmailAddress)
	assert.Equal(t, model.SummaryPrefNone, u.SummaryPref)
	assert.Equal(t, 5, u.ClosedDisplayCount)

	_, err = d.Update(ctx, "nobody", UpdateParams{
		EmailAddress:       "new@example.com",
		SummaryPref:        model.SummaryPrefNone,
		TriggerPref:        model.TriggerPrefNone,
		ClosedDisplayCount: 5,
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDirectory_SetPassword(t *testing.T) {
	st := testutil.NewTestStore(t)
	d := NewDirectory(st, 0, nil)
	ctx := context.Background()

	_, err := d.Create(ctx, validParams())
	require.NoError(t, err)

	assert.ErrorIs(t, d.SetPassword(ctx, "alice", "short", "short"), auth.ErrPasswordTooShort)

	require.NoError(t, d.SetPassword(ctx, "alice", "longenough", "longenough"))
	u, err := d.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword("longenough", u.PasswordHash))
}

func TestDirectory_DeleteCascadesTasks(t *testing.T) {
	st := testutil.NewTestStore(t)
	d := NewDirectory(st, 0, nil)
	ctx := context.Background()

	_, err := d.Create(ctx, validParams())
	require.NoError(t, err)

	now := time.Now().UTC()
	taskID, err := st.CreateTask(ctx, model.Task{
		Owner:     "alice",
		Title:     "Orphan candidate",
		Status:    model.StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)

	require.NoError(t, d.Delete(ctx, "alice"))

	_, err = d.Get(ctx, "alice")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetTask(ctx, taskID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDirectory_PurgeInactive(t *testing.T) {
	st := testutil.NewTestStore(t)
	d := NewDirectory(st, 30*24*time.Hour, nil)
	ctx := context.Background()

	// Seeded users carry a fixed 2026-03-02 timestamp.
	testutil.SeedUser(t, st, "idle", "")
	testutil.SeedUser(t, st, "busy", "")

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := st.CreateTask(ctx, model.Task{
		Owner:     "busy",
		Title:     "Keeps the account alive",
		Status:    model.StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)

	// Inside the window: nobody is purged.
	d.now = func() time.Time { return now.AddDate(0, 0, 7) }
	purged, err := d.PurgeInactive(ctx)
	require.NoError(t, err)
	assert.Empty(t, purged)

	// Past the window: only the task-less idle account goes.
	d.now = func() time.Time { return now.AddDate(0, 0, 60) }
	purged, err = d.PurgeInactive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"idle"}, purged)

	_, err = d.Get(ctx, "idle")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = d.Get(ctx, "busy")
	require.NoError(t, err)
}
