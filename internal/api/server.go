// Package api serves the campus manager HTTP interface: form webhook intake,
// distribution runs, roster listing and operational endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/ntsvetkov/campus-manager/internal/config"
	"github.com/ntsvetkov/campus-manager/pkg/core/model"
	"github.com/ntsvetkov/campus-manager/pkg/core/services"
	"github.com/ntsvetkov/campus-manager/pkg/db"
	"github.com/ntsvetkov/campus-manager/pkg/metrics"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Store defines the database operations the HTTP handlers depend on
type Store interface {
	GetStudents(ctx context.Context) ([]db.StudentRow, error)
	GetWeights(ctx context.Context) ([]db.WeightRow, error)
	WriteRanking(ctx context.Context, students []model.ScoredStudent) error
	AppendStudent(ctx context.Context, row db.StudentRow) error
}

// Server is the campus manager HTTP server
type Server struct {
	cfg      *config.Config
	store    Store
	recorder services.RunRecorder
	logger   *zap.Logger
	metrics  *metrics.Manager
	router   chi.Router
}

// NewServer builds the server and its route table. recorder may be nil when
// no run history store is configured.
func NewServer(cfg *config.Config, store Store, recorder services.RunRecorder, logger *zap.Logger, manager *metrics.Manager) *Server {
	server := &Server{
		cfg:      cfg,
		store:    store,
		recorder: recorder,
		logger:   logger,
		metrics:  manager,
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))
	router.Use(server.observe)

	router.Get("/health", server.handleHealth)
	router.Handle("/metrics", manager.Handler())

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/students", server.handleListStudents)
		v1.Post("/submissions", server.handleSubmission)
		v1.Post("/calculate", server.handleCalculate)
	})

	server.router = router
	return server
}

// Router returns the HTTP handler, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.router,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.cfg.Server.Addr))
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// RunScheduledRecalc recomputes the distribution at the times the recurrence
// rule yields, until the context is cancelled or the rule is exhausted
func (s *Server) RunScheduledRecalc(ctx context.Context, rule *rrule.RRule) {
	for {
		next := rule.After(time.Now(), false)
		if next.IsZero() {
			s.logger.Info("Recalculation schedule exhausted")
			return
		}

		s.logger.Info("Next scheduled recalculation", zap.Time("at", next))
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := s.runCalculation(ctx, false); err != nil {
			s.logger.Error("Scheduled recalculation failed", zap.Error(err))
		}
	}
}

// runCalculation wraps the distribution service with metric recording
func (s *Server) runCalculation(ctx context.Context, dryRun bool) (*services.CalculateResult, error) {
	start := time.Now()
	result, err := services.CalculateDistribution(ctx, s.store, s.cfg, s.logger, dryRun)
	s.metrics.ObserveComputation(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRanking(
		result.Distribution.Count,
		len(result.Distribution.Skipped),
		countFallbacks(result.Distribution.Students),
	)

	// History is auxiliary; a recording failure must not fail the run
	if s.recorder != nil {
		if err := services.RecordRun(ctx, s.recorder, s.logger, result); err != nil {
			s.logger.Warn("Failed to record run history", zap.Error(err))
		}
	}
	return result, nil
}

func countFallbacks(students []model.ScoredStudent) int {
	count := 0
	for _, s := range students {
		if s.DefaultWeights {
			count++
		}
	}
	return count
}

// observe records request counts and latencies per route
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(wrapped, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = r.URL.Path
		}
		s.metrics.ObserveHTTPRequest(r.Method, path, wrapped.Status(), time.Since(start))
	})
}
