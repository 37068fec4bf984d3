package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskcur/taskcur/internal/auth"
	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/notify"
	"github.com/taskcur/taskcur/internal/store"
	"github.com/taskcur/taskcur/internal/task"
	"github.com/taskcur/taskcur/internal/user"
	"github.com/taskcur/taskcur/tests/testutil"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

type discardMailer struct{}

func (discardMailer) Send(context.Context, []string, string, string) error { return nil }

type fixture struct {
	store   *store.SQLiteStore
	ledger  *task.Ledger
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := testutil.NewTestStore(t)
	ledger := task.NewLedger(st, nil)
	users := user.NewDirectory(st, 0, nil)
	sessions := auth.NewSessions(st, 0, nil)
	guard := auth.NewGuard(ledger)
	dispatcher := notify.NewDispatcher(ledger, users, st, discardMailer{}, "http://example.com", nil)

	srv := New(ledger, users, sessions, guard, dispatcher, "", nil)
	return &fixture{store: st, ledger: ledger, handler: srv.Handler()}
}

func (f *fixture) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

func (f *fixture) post(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

// signup creates an account through the real form and returns its
// session cookie.
func (f *fixture) signup(t *testing.T, name string) *http.Cookie {
	t.Helper()
	w := f.post("/create-user", url.Values{
		"user_name":                            {name},
		"email_address":                        {name + "@example.com"},
		"summary_notification_preference":      {model.SummaryPrefNone},
		"trigger_notification_preference":      {model.TriggerPrefNone},
		"closed_task_display_count_preference": {"10"},
		"password":                             {"longenough"},
		"password_confirm":                     {"longenough"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code, "signup should redirect, body: %s", w.Body.String())
	require.Equal(t, "/user/"+name, w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "signup should set a session cookie")
	return cookies[0]
}

func TestRootRedirectsToLogin(t *testing.T) {
	f := newFixture(t)
	w := f.get("/", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestResponsesAreUncacheable(t *testing.T) {
	f := newFixture(t)
	w := f.get("/login", nil)
	assert.Equal(t, "no-cache, no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
}

func TestSignupLoginLogout(t *testing.T) {
	f := newFixture(t)
	cookie := f.signup(t, "alice")

	w := f.get("/user/alice", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")

	// Logout revokes the session.
	w = f.post("/logout", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = f.get("/user/alice", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// A fresh login works with the chosen password.
	w = f.post("/user-login", url.Values{
		"user_name": {"alice"},
		"password":  {"longenough"},
	}, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/user/alice", w.Header().Get("Location"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "alice")

	for _, form := range []url.Values{
		{"user_name": {"alice"}, "password": {"wrong password"}},
		{"user_name": {"nobody"}, "password": {"longenough"}},
	} {
		w := f.post("/user-login", form, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid user name or password.")
		assert.Empty(t, w.Result().Cookies(), "failed login must not issue a session")
	}
}

func TestLegacyAccountRoutedToPasswordSetup(t *testing.T) {
	f := newFixture(t)
	testutil.SeedUser(t, f.store, "legacy", "")

	w := f.post("/user-login", url.Values{
		"user_name": {"legacy"},
		"password":  {"anything"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Set a password to continue.")

	// Setting the password issues a session and lands on the home page.
	w = f.post("/set-password", url.Values{
		"user_name":        {"legacy"},
		"password":         {"longenough"},
		"password_confirm": {"longenough"},
	}, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/user/legacy", w.Header().Get("Location"))
	assert.NotEmpty(t, w.Result().Cookies())

	// Setup only works once; afterwards it behaves like a failed login.
	w = f.post("/set-password", url.Values{
		"user_name":        {"legacy"},
		"password":         {"otherpassword"},
		"password_confirm": {"otherpassword"},
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid user name or password.")
}

func TestUnauthenticatedRequestsRedirectToLogin(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/user/alice", "/task/1", "/user/alice/create-task"} {
		w := f.get(path, nil)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}
}

func TestForeignUserPageRedirectsHome(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "alice")
	bobCookie := f.signup(t, "bob")

	w := f.get("/user/alice", bobCookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/user/bob", w.Header().Get("Location"))
}

func TestForeignAndMissingTasksAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "alice")
	bobCookie := f.signup(t, "bob")

	aliceTask, err := f.ledger.Create(context.Background(), "alice", "Private", "", "")
	require.NoError(t, err)

	foreign := f.get("/task/"+itoa(aliceTask.ID), bobCookie)
	missing := f.get("/task/999999", bobCookie)

	assert.Equal(t, http.StatusSeeOther, foreign.Code)
	assert.Equal(t, http.StatusSeeOther, missing.Code)
	assert.Equal(t, foreign.Header().Get("Location"), missing.Header().Get("Location"))
	assert.Equal(t, "/user/bob", foreign.Header().Get("Location"))
}

func TestCreateTask(t *testing.T) {
	f := newFixture(t)
	cookie := f.signup(t, "alice")

	w := f.post("/user/alice/create-task", url.Values{
		"task_title":       {"Pay rent"},
		"task_description": {"due on the first"},
		"trigger_date":     {""},
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Task Created")

	tasks, err := f.ledger.ListForOwner(context.Background(), "alice", "")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Pay rent", tasks[0].Title)
	assert.Equal(t, model.StatusOpen, tasks[0].Status)
}

func TestCreateTaskKeepsInputOnBadDate(t *testing.T) {
	f := newFixture(t)
	cookie := f.signup(t, "alice")

	w := f.post("/user/alice/create-task", url.Values{
		"task_title":       {"Pay rent"},
		"task_description": {"due on the first"},
		"trigger_date":     {"not-a-date"},
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Pay rent")
	assert.Contains(t, body, "due on the first")

	tasks, err := f.ledger.ListForOwner(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCloseTask(t *testing.T) {
	f := newFixture(t)
	cookie := f.signup(t, "alice")

	created, err := f.ledger.Create(context.Background(), "alice", "Water plants", "", "")
	require.NoError(t, err)

	w := f.post("/task/"+itoa(created.ID)+"/close", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/user/alice", w.Header().Get("Location"))

	got, err := f.ledger.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, got.Status)
}

func TestCloseAndRecreatePrefillsWithoutCreating(t *testing.T) {
	f := newFixture(t)
	cookie := f.signup(t, "alice")

	created, err := f.ledger.Create(context.Background(), "alice", "File taxes", "gather receipts", "2099-04-01")
	require.NoError(t, err)

	w := f.post("/task/"+itoa(created.ID)+"/close-and-recreate", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "File taxes")
	assert.Contains(t, body, "gather receipts")

	got, err := f.ledger.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, got.Status)

	tasks, err := f.ledger.ListForOwner(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Len(t, tasks, 1, "the draft page must not create the new task")
}

func TestDeleteUserClearsSessionAndTasks(t *testing.T) {
	f := newFixture(t)
	cookie := f.signup(t, "alice")

	_, err := f.ledger.Create(context.Background(), "alice", "Orphan candidate", "", "")
	require.NoError(t, err)

	w := f.post("/user/alice/delete", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	tasks, err := f.store.GetTasksForUser(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	// The old cookie is dead.
	w = f.get("/user/alice", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestBatchEndpoints(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/weekly-summary", "/daily-task-trigger", "/purge-inactive-users"} {
		w := f.get(path, nil)
		assert.Equal(t, http.StatusNoContent, w.Code, path)
	}
}
