package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/mise-api/internal/scheduler"
)

const healthTimeout = 2 * time.Second

type pinger interface {
	PingContext(ctx context.Context) error
}

type jobLister interface {
	Pending() []scheduler.Job
}

// jobsResponse is the body of GET /jobs.
type jobsResponse struct {
	Count int             `json:"count"`
	Jobs  []scheduler.Job `json:"jobs"`
}

// setupRouter builds the ops router for the application.
func (app *application) setupRouter() http.Handler {
	return newRouter(app.db, app.scheduler, app.logger)
}

func newRouter(db pinger, jobs jobLister, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Warn("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", "error", err)
		}
	})

	r.Get("/jobs", func(w http.ResponseWriter, r *http.Request) {
		pending := jobs.Pending()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(jobsResponse{Count: len(pending), Jobs: pending}); err != nil {
			logger.Error("failed to write jobs response", "error", err)
		}
	})

	return r
}
