package webui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dealbrief/dealbrief/internal/config"
	"github.com/dealbrief/dealbrief/internal/logging"
	"github.com/dealbrief/dealbrief/internal/report"
)

// CustomerLister supplies the customer names for the form dropdown.
type CustomerLister interface {
	ListCustomers(ctx context.Context) ([]string, error)
}

// Server is the dashboard HTTP + WebSocket server.
type Server struct {
	cfg        config.WebConfig
	jobs       *JobManager
	customers  CustomerLister
	log        *logging.Logger
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// New creates a dashboard server.
func New(cfg config.WebConfig, jobs *JobManager, customers CustomerLister, log *logging.Logger) *Server {
	return &Server{
		cfg:       cfg,
		jobs:      jobs,
		customers: customers,
		log:       log.Sub("webui"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Handler returns the dashboard route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /reports", s.handleStartJob)
	mux.HandleFunc("GET /jobs/{id}", s.handleJobStatus)
	mux.HandleFunc("GET /ws", s.handleProgressStream)
	mux.HandleFunc("GET /reports/{id}", s.handleReport)
	mux.HandleFunc("GET /reports/{id}/download", s.handleDownload)
	return s.withLogging(mux)
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.WebConfig) string {
	switch cfg.Bind {
	case "lan":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.Host
		if host == "" {
			host = "0.0.0.0"
		}
		return fmt.Sprintf("%s:%d", host, cfg.Port)
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start listens and serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.log.Info().Str("addr", ln.Addr().String()).Msg("dashboard ready")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down dashboard")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names, err := s.customers.ListCustomers(r.Context())
	if err != nil {
		// The form still renders with a free-text field when the
		// gateway is unreachable.
		s.log.Warn().Err(err).Msg("customer list unavailable")
		names = nil
	}
	s.renderIndex(w, names)
}

type startJobRequest struct {
	CustomerName string `json:"customer_name"`
	Purpose      string `json:"purpose"`
}

func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	var req startJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CustomerName == "" {
		writeJSONError(w, http.StatusBadRequest, "Missing required parameter: customer_name")
		return
	}

	job := s.jobs.Start(req.CustomerName, req.Purpose)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(job.View())
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.Get(r.PathValue("id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "job not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.View())
}

// handleProgressStream upgrades to WebSocket and streams the job's
// lifecycle events: a replay of everything so far, then live events, a
// final status frame, and a normal close.
func (s *Server) handleProgressStream(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.Get(r.URL.Query().Get("job"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "job not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	replay, live, cancel := job.Subscribe()
	defer cancel()

	for _, p := range replay {
		if err := conn.WriteJSON(p); err != nil {
			return
		}
	}
	for p := range live {
		if err := conn.WriteJSON(p); err != nil {
			return
		}
	}

	view := job.View()
	if err := conn.WriteJSON(map[string]any{"event": "job_" + string(view.Status), "data": view}); err != nil {
		return
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(view.Status)))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.completedReport(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, rep.HTML)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.completedReport(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", report.ReportFileName(rep.CustomerName)))
	fmt.Fprint(w, rep.HTML)
}

func (s *Server) completedReport(w http.ResponseWriter, r *http.Request) (*report.Report, bool) {
	job, ok := s.jobs.Get(r.PathValue("id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "job not found")
		return nil, false
	}
	rep := job.Report()
	if rep == nil {
		writeJSONError(w, http.StatusConflict, "report not ready")
		return nil, false
	}
	return rep, true
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
