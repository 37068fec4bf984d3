package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/taskcur/taskcur/internal/auth"
	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/store"
	"github.com/taskcur/taskcur/internal/task"
)

// guardTask authorizes the caller against the task id in the path. A
// missing task and a foreign task produce the same redirect so the
// response never confirms the task exists; only the log knows the
// difference.
func (s *Server) guardTask(w http.ResponseWriter, r *http.Request) (model.User, int64, bool) {
	caller := s.caller(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.denyToHome(w, r, caller)
		return model.User{}, 0, false
	}

	d, err := s.guard.AuthorizeTaskAction(r.Context(), caller.Name, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("task action on unknown task", "caller", caller.Name, "task", id)
			s.denyToHome(w, r, caller)
			return model.User{}, 0, false
		}
		s.logger.Error("authorizing task action", "task", id, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return model.User{}, 0, false
	}
	if !d.Allowed {
		s.logger.Warn("task action denied", "caller", caller.Name, "task", id, "reason", d.Reason)
		if d.Reason == auth.DenyNotAuthenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		} else {
			s.denyToHome(w, r, caller)
		}
		return model.User{}, 0, false
	}
	return caller, id, true
}

func (s *Server) handleCreateTaskHome(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.guardUser(w, r, r.PathValue("name"))
	if !ok {
		return
	}
	s.render(w, "create_task", taskFormView{
		UserName: caller.Name,
		MinDate:  tomorrow(s.now()),
	})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.guardUser(w, r, r.PathValue("name"))
	if !ok {
		return
	}

	title := r.FormValue("task_title")
	description := r.FormValue("task_description")
	trigger := r.FormValue("trigger_date")

	_, err := s.ledger.Create(r.Context(), caller.Name, title, description, trigger)
	if err != nil {
		// Keep the typed input on validation failures.
		s.render(w, "create_task", taskFormView{
			UserName:       caller.Name,
			Title:          title,
			RawDescription: description,
			TriggerDate:    trigger,
			MinDate:        tomorrow(s.now()),
			Message:        err.Error(),
		})
		return
	}

	s.render(w, "create_task", taskFormView{
		UserName: caller.Name,
		MinDate:  tomorrow(s.now()),
		Message:  "Task Created",
	})
}

func (s *Server) handleTaskHome(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := s.guardTask(w, r)
	if !ok {
		return
	}

	t, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		s.denyToHome(w, r, caller)
		return
	}
	s.render(w, "task_home", newTaskFormView(t, s.now(), ""))
}

func (s *Server) handleUpdateTaskHome(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := s.guardTask(w, r)
	if !ok {
		return
	}

	t, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		s.denyToHome(w, r, caller)
		return
	}
	s.render(w, "update_task", newTaskFormView(t, s.now(), ""))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	_, id, ok := s.guardTask(w, r)
	if !ok {
		return
	}

	title := r.FormValue("task_title")
	description := r.FormValue("task_description")
	trigger := r.FormValue("trigger_date")

	t, err := s.ledger.Update(r.Context(), id, title, description, trigger)
	if err != nil {
		if errors.Is(err, model.ErrInvalidDate) || errors.Is(err, task.ErrEmptyTitle) {
			view := taskFormView{
				ID:             id,
				Title:          title,
				RawDescription: description,
				TriggerDate:    trigger,
				MinDate:        tomorrow(s.now()),
				Message:        err.Error(),
			}
			s.render(w, "update_task", view)
			return
		}
		s.logger.Error("updating task", "task", id, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.render(w, "update_task", newTaskFormView(t, s.now(), "Task Updated"))
}

func (s *Server) handleCloseTaskHome(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := s.guardTask(w, r)
	if !ok {
		return
	}

	t, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		s.denyToHome(w, r, caller)
		return
	}
	s.render(w, "close_task", newTaskFormView(t, s.now(), ""))
}

func (s *Server) handleCloseTask(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := s.guardTask(w, r)
	if !ok {
		return
	}

	if _, err := s.ledger.Close(r.Context(), id); err != nil {
		s.logger.Error("closing task", "task", id, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.denyToHome(w, r, caller)
}

func (s *Server) handleCloseAndRecreate(w http.ResponseWriter, r *http.Request) {
	_, id, ok := s.guardTask(w, r)
	if !ok {
		return
	}

	draft, err := s.ledger.CloseAndRecreate(r.Context(), id)
	if err != nil {
		s.logger.Error("close-and-recreate", "task", id, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// The closed task's title and description come back pre-filled;
	// submitting the form is what creates the new task.
	s.render(w, "recreate_task", taskFormView{
		UserName:       draft.Owner,
		Title:          draft.Title,
		RawDescription: draft.Description,
		MinDate:        tomorrow(s.now()),
	})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := s.guardTask(w, r)
	if !ok {
		return
	}

	if err := s.ledger.Delete(r.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("deleting task", "task", id, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.denyToHome(w, r, caller)
}
