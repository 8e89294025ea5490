package http

import (
	"context"
	"net/http"
	"time"

	"financas/internal/analytics"
	"financas/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady checks that the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{}
	status, code := "ready", http.StatusOK

	if s.deps.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Store.Ping(ctx); err != nil {
			s.logger.ErrorContext(r.Context(), "Readiness check failed",
				log.NewFields().WithError(err, log.ErrorTypeDatabase).ToSlice()...)
			checks["store"] = map[string]any{"status": "error", "error": err.Error()}
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = map[string]any{"status": "ok"}
		}
	}
	checks["rate_limiter"] = map[string]any{
		"status":         "ok",
		"active_clients": s.limiter.ActiveClients(),
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := analytics.ParsePeriod(q.Get("periodo"), q.Get("data_inicio"), q.Get("data_fim"))
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	snap, err := s.deps.Reports.Dashboard(r.Context(), session(r), period)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRecurring(w http.ResponseWriter, r *http.Request) {
	rep, err := s.deps.Reports.Recurring(r.Context(), session(r))
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	rep, err := s.deps.Reports.Monthly(r.Context(), session(r))
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Reports.Projection(r.Context(), session(r))
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
