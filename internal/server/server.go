// Package server is the thin HTTP layer over the task ledger, user
// directory, access guard, and notification dispatcher. It owns
// routing, forms, and redirects; all rules live in the services.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taskcur/taskcur/internal/auth"
	"github.com/taskcur/taskcur/internal/notify"
	"github.com/taskcur/taskcur/internal/task"
	"github.com/taskcur/taskcur/internal/user"
)

// Server wires the HTTP routes to the services.
type Server struct {
	ledger     *task.Ledger
	users      *user.Directory
	sessions   *auth.Sessions
	guard      *auth.Guard
	dispatcher *notify.Dispatcher
	logger     *log.Logger
	cookieName string
	now        func() time.Time
}

// New creates a Server.
func New(
	ledger *task.Ledger,
	users *user.Directory,
	sessions *auth.Sessions,
	guard *auth.Guard,
	dispatcher *notify.Dispatcher,
	cookieName string,
	logger *log.Logger,
) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cookieName == "" {
		cookieName = "taskcur_session"
	}
	return &Server{
		ledger:     ledger,
		users:      users,
		sessions:   sessions,
		guard:      guard,
		dispatcher: dispatcher,
		logger:     logger.With("component", "http"),
		cookieName: cookieName,
		now:        time.Now,
	}
}

// Handler builds the route table. Every response goes through the
// no-cache middleware; the pages behind a login also go through
// requireUser.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})

	// Anonymous surface.
	mux.HandleFunc("GET /login", s.handleLoginHome)
	mux.HandleFunc("POST /user-login", s.handleUserLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /create-user", s.handleCreateUserHome)
	mux.HandleFunc("POST /create-user", s.handleCreateUser)
	mux.HandleFunc("GET /set-password", s.handleSetPasswordHome)
	mux.HandleFunc("POST /set-password", s.handleSetPassword)

	// User resources.
	mux.Handle("GET /user/{name}", s.requireUser(s.handleUserHome))
	mux.Handle("GET /user/{name}/update", s.requireUser(s.handleUpdateUserHome))
	mux.Handle("POST /user/{name}/update", s.requireUser(s.handleUpdateUser))
	mux.Handle("POST /user/{name}/delete", s.requireUser(s.handleDeleteUser))
	mux.Handle("GET /user/{name}/password", s.requireUser(s.handleChangePasswordHome))
	mux.Handle("POST /user/{name}/password", s.requireUser(s.handleChangePassword))
	mux.Handle("GET /user/{name}/create-task", s.requireUser(s.handleCreateTaskHome))
	mux.Handle("POST /user/{name}/create-task", s.requireUser(s.handleCreateTask))

	// Task resources.
	mux.Handle("GET /task/{id}", s.requireUser(s.handleTaskHome))
	mux.Handle("GET /task/{id}/update", s.requireUser(s.handleUpdateTaskHome))
	mux.Handle("POST /task/{id}/update", s.requireUser(s.handleUpdateTask))
	mux.Handle("GET /task/{id}/close", s.requireUser(s.handleCloseTaskHome))
	mux.Handle("POST /task/{id}/close", s.requireUser(s.handleCloseTask))
	mux.Handle("POST /task/{id}/close-and-recreate", s.requireUser(s.handleCloseAndRecreate))
	mux.Handle("POST /task/{id}/delete", s.requireUser(s.handleDeleteTask))

	// Batch endpoints, hit by cron rather than browsers.
	mux.HandleFunc("/weekly-summary", s.handleWeeklySummary)
	mux.HandleFunc("/daily-task-trigger", s.handleDailyTaskTrigger)
	mux.HandleFunc("/purge-inactive-users", s.handlePurgeInactiveUsers)

	return noCache(mux)
}
