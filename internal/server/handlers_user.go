package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/taskcur/taskcur/internal/auth"
	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/store"
	"github.com/taskcur/taskcur/internal/user"
)

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("rendering page", "template", name, "err", err)
	}
}

// caller returns the authenticated user placed in the context by
// requireUser.
func (s *Server) caller(r *http.Request) model.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}

// denyToHome sends a refused caller back to their own home page. The
// redirect is identical for "no such resource" and "not yours", so the
// response never reveals whether a foreign resource exists.
func (s *Server) denyToHome(w http.ResponseWriter, r *http.Request, caller model.User) {
	http.Redirect(w, r, "/user/"+caller.Name, http.StatusSeeOther)
}

// guardUser authorizes the caller against the user name in the path.
// Returns false after writing the redirect when the caller may not
// proceed.
func (s *Server) guardUser(w http.ResponseWriter, r *http.Request, target string) (model.User, bool) {
	caller := s.caller(r)
	if d := s.guard.AuthorizeUserAction(caller.Name, target); !d.Allowed {
		s.logger.Warn("user action denied", "caller", caller.Name, "reason", d.Reason)
		if d.Reason == auth.DenyNotAuthenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		} else {
			s.denyToHome(w, r, caller)
		}
		return model.User{}, false
	}
	return caller, true
}

func (s *Server) handleLoginHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login", userFormView{})
}

func (s *Server) handleUserLogin(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("user_name")
	password := r.FormValue("password")

	token, expires, err := s.sessions.Login(r.Context(), name, password)
	switch {
	case errors.Is(err, auth.ErrPasswordNotSet):
		s.render(w, "set_password", userFormView{
			UserName: name,
			Message:  "Welcome back. Set a password to continue.",
		})
		return
	case errors.Is(err, auth.ErrInvalidLogin):
		s.render(w, "login", userFormView{
			UserName: name,
			Message:  "Invalid user name or password.",
		})
		return
	case err != nil:
		s.logger.Error("login", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.setSessionCookie(w, token, expires)
	http.Redirect(w, r, "/user/"+name, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.cookieName); err == nil {
		_ = s.sessions.Logout(r.Context(), cookie.Value)
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleCreateUserHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, "create_user", userFormView{SummaryPref: model.SummaryPrefNone, TriggerPref: model.TriggerPrefNone, ClosedDisplayCount: 10})
}

func userFormFromRequest(r *http.Request) userFormView {
	count, _ := strconv.Atoi(r.FormValue("closed_task_display_count_preference"))
	return userFormView{
		UserName:           r.FormValue("user_name"),
		EmailAddress:       r.FormValue("email_address"),
		SummaryPref:        r.FormValue("summary_notification_preference"),
		TriggerPref:        r.FormValue("trigger_notification_preference"),
		ClosedDisplayCount: count,
	}
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	form := userFormFromRequest(r)
	u, err := s.users.Create(r.Context(), user.CreateParams{
		Name:               form.UserName,
		EmailAddress:       form.EmailAddress,
		SummaryPref:        form.SummaryPref,
		TriggerPref:        form.TriggerPref,
		ClosedDisplayCount: form.ClosedDisplayCount,
		Password:           r.FormValue("password"),
		PasswordConfirm:    r.FormValue("password_confirm"),
	})
	if err != nil {
		// Validation failures re-display the form with the input
		// intact.
		form.Message = err.Error()
		s.render(w, "create_user", form)
		return
	}

	if auth.NeedsSetup(u) {
		s.render(w, "set_password", userFormView{
			UserName: u.Name,
			Message:  "Account created. Set a password to continue.",
		})
		return
	}

	token, expires, err := s.sessions.Issue(r.Context(), u.Name)
	if err != nil {
		s.logger.Error("issuing session after signup", "err", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	s.setSessionCookie(w, token, expires)
	http.Redirect(w, r, "/user/"+u.Name, http.StatusSeeOther)
}

func (s *Server) handleSetPasswordHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, "set_password", userFormView{UserName: r.URL.Query().Get("user_name")})
}

// handleSetPassword is first-time password setup for accounts that
// predate authentication. It only works while the account has no
// credential; afterwards the change-password page takes over.
func (s *Server) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("user_name")

	u, err := s.users.Get(r.Context(), name)
	if err != nil || !auth.NeedsSetup(u) {
		// Same response for an unknown account and one that already
		// has a password.
		s.render(w, "login", userFormView{Message: "Invalid user name or password."})
		return
	}

	if err := s.users.SetPassword(r.Context(), name, r.FormValue("password"), r.FormValue("password_confirm")); err != nil {
		s.render(w, "set_password", userFormView{UserName: name, Message: err.Error()})
		return
	}

	token, expires, err := s.sessions.Issue(r.Context(), name)
	if err != nil {
		s.logger.Error("issuing session after password setup", "err", err)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	s.setSessionCookie(w, token, expires)
	http.Redirect(w, r, "/user/"+name, http.StatusSeeOther)
}

func (s *Server) handleUserHome(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.guardUser(w, r, r.PathValue("name"))
	if !ok {
		return
	}

	ov, err := s.ledger.OverviewForOwner(r.Context(), caller.Name, caller.ClosedDisplayCount)
	if err != nil {
		s.logger.Error("loading user home", "user", caller.Name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.render(w, "user_home", newUserHomeView(caller.Name, "", ov))
}

func (s *Server) handleUpdateUserHome(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.guardUser(w, r, r.PathValue("name"))
	if !ok {
		return
	}
	s.render(w, "update_user", userFormView{
		UserName:           caller.Name,
		EmailAddress:       caller.EmailAddress,
		SummaryPref:        caller.SummaryPref,
		TriggerPref:        caller.TriggerPref,
		ClosedDisplayCount: caller.ClosedDisplayCount,
	})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.guardUser(w, r, r.PathValue("name"))
	if !ok {
		return
	}

	form := userFormFromRequest(r)
	form.UserName = caller.Name
	_, err := s.users.Update(r.Context(), caller.Name, user.UpdateParams{
		EmailAddress:       form.EmailAddress,
		SummaryPref:        form.SummaryPref,
		TriggerPref:        form.TriggerPref,
		ClosedDisplayCount: form.ClosedDisplayCount,
	})
	if err != nil {
		form.Message = err.Error()
		s.render(w, "update_user", form)
		return
	}

	form.Message = "User Updated"
	s.render(w, "update_user", form)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.guardUser(w, r, r.PathValue("name"))
	if !ok {
		return
	}

	if err := s.users.Delete(r.Context(), caller.Name); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("deleting user", "user", caller.Name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleChangePasswordHome(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.guardUser(w, r, r.PathValue("name"))
	if !ok {
		return
	}
	s.render(w, "change_password", userFormView{UserName: caller.Name})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.guardUser(w, r, r.PathValue("name"))
	if !ok {
		return
	}

	err := s.users.SetPassword(r.Context(), caller.Name, r.FormValue("password"), r.FormValue("password_confirm"))
	if err != nil {
		s.render(w, "change_password", userFormView{UserName: caller.Name, Message: err.Error()})
		return
	}
	s.render(w, "change_password", userFormView{UserName: caller.Name, Message: "Password Updated"})
}
