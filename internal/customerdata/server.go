package customerdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dealbrief/dealbrief/internal/logging"
)

// Server exposes the customer lookup service over HTTP.
//
// Contract: GET /?customer_name=<name> or POST / with a JSON body of
// {"customer_name": <name>} returns the full record as JSON. Missing
// parameter is 400, unknown customer is 404, store failure is 500 — all
// with JSON error bodies. CORS is open to all origins.
type Server struct {
	store *Store
	log   *logging.Logger

	httpServer *http.Server
}

// NewServer creates a lookup server over the given store.
func NewServer(store *Store, log *logging.Logger) *Server {
	return &Server{store: store, log: log.Sub("customerd")}
}

// Handler returns the HTTP handler for the service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleLookup)
	mux.HandleFunc("/customers", s.handleList)
	return s.withLogging(mux)
}

// Start begins serving on the given address. Blocks until the listener
// fails or Shutdown is called.
func (s *Server) Start(listen string) error {
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Str("listen", listen).Msg("customer data service listening")

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// setCORSHeaders applies the open CORS policy to every response.
func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Max-Age", "3600")
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found", "path": r.URL.Path})
		return
	}

	var customerName string
	if r.Method == http.MethodPost {
		var body struct {
			CustomerName string `json:"customer_name"`
		}
		// A malformed body is not fatal: the query parameter may still be set.
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			customerName = body.CustomerName
		}
	}
	if customerName == "" {
		customerName = r.URL.Query().Get("customer_name")
	}

	if customerName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "Missing required parameter: customer_name",
		})
		return
	}

	record, err := s.store.Get(r.Context(), customerName)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("Customer '%s' not found in customer store.", customerName),
			"data":  map[string]any{},
		})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("customer", customerName).Msg("customer query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": fmt.Sprintf("customer query failed: %s", err),
		})
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	names, err := s.store.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("customer list failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": fmt.Sprintf("customer query failed: %s", err),
		})
		return
	}
	if names == nil {
		names = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"customers": names})
}

// withLogging logs each HTTP request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("http request")
	})
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
