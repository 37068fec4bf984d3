package server

import "net/http"

// The batch endpoints are meant for cron. Each invocation is a single
// idempotent pass; failures come back as 500 so the scheduler can see
// them.

func (s *Server) handleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	sent, err := s.dispatcher.WeeklySummary(r.Context())
	if err != nil {
		s.logger.Error("weekly summary", "sent", sent, "err", err)
		http.Error(w, "weekly summary failed", http.StatusInternalServerError)
		return
	}
	s.logger.Info("weekly summary complete", "sent", sent)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDailyTaskTrigger(w http.ResponseWriter, r *http.Request) {
	sent, err := s.dispatcher.DailyTaskTrigger(r.Context())
	if err != nil {
		s.logger.Error("daily task trigger", "sent", sent, "err", err)
		http.Error(w, "daily task trigger failed", http.StatusInternalServerError)
		return
	}
	s.logger.Info("daily task trigger complete", "sent", sent)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePurgeInactiveUsers(w http.ResponseWriter, r *http.Request) {
	purged, err := s.users.PurgeInactive(r.Context())
	if err != nil {
		s.logger.Error("purging inactive users", "err", err)
		http.Error(w, "purge failed", http.StatusInternalServerError)
		return
	}
	s.logger.Info("purge complete", "count", len(purged))
	w.WriteHeader(http.StatusNoContent)
}
