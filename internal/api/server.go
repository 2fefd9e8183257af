// Package api exposes the audit engine over HTTP for the report viewer
// and other in-house callers.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/tradeline-audit/internal/config"
	"github.com/sells-group/tradeline-audit/internal/delta"
	"github.com/sells-group/tradeline-audit/internal/model"
	"github.com/sells-group/tradeline-audit/internal/report"
	"github.com/sells-group/tradeline-audit/internal/store"
)

// Server is the tradeline-audit HTTP API server.
type Server struct {
	engine    *report.Engine
	store     store.Store // nil disables the account routes
	readiness float64
	limiter   *rate.Limiter
	origins   []string
}

// NewServer creates an API server. st may be nil when no store is
// configured; the stateless analysis routes still work.
func NewServer(engine *report.Engine, st store.Store, cfg config.ServerConfig, readiness float64) *Server {
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 20
	}
	return &Server{
		engine:    engine,
		store:     st,
		readiness: readiness,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		origins:   cfg.AllowedOrigins,
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(s.rateLimit)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/compare", s.handleCompare)
		r.Post("/audit", s.handleAudit)

		if s.store != nil {
			r.Route("/accounts/{accountID}", func(r chi.Router) {
				r.Post("/snapshots", s.handleSaveSnapshot)
				r.Get("/snapshots", s.handleListSnapshots)
				r.Post("/audit", s.handleAccountAudit)
			})
			r.Get("/runs", s.handleListRuns)
			r.Get("/runs/{runID}", s.handleGetRun)
		}
	})

	return r
}

// rateLimit applies the server-wide request budget. Analysis is cheap but
// the API fronts a single shared store.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Snapshot model.Snapshot `json:"snapshot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.AnalyzeSnapshot(req.Snapshot))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Older model.Snapshot `json:"older"`
		Newer model.Snapshot `json:"newer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	deltas := delta.Compare(req.Older, req.Newer)
	writeJSON(w, http.StatusOK, map[string]any{"deltas": deltas})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string                 `json:"account_id"`
		Snapshots []model.SeriesSnapshot `json:"snapshots"`
		Readiness *float64               `json:"readiness,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Snapshots) == 0 {
		writeError(w, http.StatusBadRequest, "snapshots are required")
		return
	}
	readiness := s.readiness
	if req.Readiness != nil {
		readiness = *req.Readiness
	}
	writeJSON(w, http.StatusOK, s.engine.Audit(req.AccountID, req.Snapshots, readiness))
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	var snap model.SeriesSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}
	if err := s.store.SaveSnapshot(r.Context(), accountID, snap); err != nil {
		zap.L().Error("api: save snapshot failed",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "saved"})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	snaps, err := s.store.ListSnapshots(r.Context(), accountID)
	if err != nil {
		zap.L().Error("api: list snapshots failed",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}

// handleAccountAudit audits an account from its stored snapshot history
// and persists the resulting run.
func (s *Server) handleAccountAudit(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	snaps, err := s.store.ListSnapshots(r.Context(), accountID)
	if err != nil {
		zap.L().Error("api: load snapshots failed",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to load snapshots")
		return
	}
	if len(snaps) == 0 {
		writeError(w, http.StatusNotFound, "no snapshots for account")
		return
	}

	rep := s.engine.Audit(accountID, snaps, s.readiness)
	run, err := s.store.SaveRun(r.Context(), store.AuditRun{AccountID: accountID, Report: rep})
	if err != nil {
		zap.L().Error("api: save run failed",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to save run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		zap.L().Error("api: get run failed", zap.String("run_id", runID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context(), store.RunFilter{
		AccountID: r.URL.Query().Get("account_id"),
	})
	if err != nil {
		zap.L().Error("api: list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
