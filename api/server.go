// Package api exposes the messaging webhook and the content query API
// over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	ingest "github.com/zombar/linksaver"
	"github.com/zombar/linksaver/db"
	"github.com/zombar/linksaver/models"
)

// ContentStore is the persistence surface the API reads and mutates.
type ContentStore interface {
	GetByID(ctx context.Context, id string) (*models.ContentRecord, error)
	ListByUser(ctx context.Context, userPhone string, filter db.ListFilter) ([]*models.ContentRecord, error)
	Update(ctx context.Context, id string, update models.ContentUpdate) (*models.ContentRecord, error)
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context, userPhone string) (*models.UserStats, error)
	Count(ctx context.Context) (int, error)
}

// LinkProcessor saves one link and produces the reply text.
type LinkProcessor interface {
	Process(ctx context.Context, userPhone, targetURL, overrideTag string) string
}

// Server represents the API server.
type Server struct {
	store       ContentStore
	pipeline    LinkProcessor
	addr        string
	server      *http.Server
	mux         *http.ServeMux
	corsEnabled bool
}

// Config contains server configuration.
type Config struct {
	Addr        string
	CORSEnabled bool
}

const maxListLimit = 100

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		CORSEnabled: true,
	}
}

// NewServer creates an API server on top of an existing store and
// ingest pipeline.
func NewServer(config Config, store ContentStore, pipeline LinkProcessor) *Server {
	s := &Server{
		store:       store,
		pipeline:    pipeline,
		addr:        config.Addr,
		mux:         http.NewServeMux(),
		corsEnabled: config.CORSEnabled,
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:        config.Addr,
		Handler:     s.middleware(s.mux),
		ReadTimeout: 30 * time.Second,
		// Extraction chains can take close to a minute on slow upstreams
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/webhook/whatsapp", s.handleWebhook)
	s.mux.HandleFunc("/api/content", s.handleList)
	s.mux.HandleFunc("/api/content/", s.handleContentItem) // /api/content/{id} and /api/content/stats/{phone}
	s.mux.Handle("/metrics", promhttp.Handler())
}

// Start starts the API server.
func (s *Server) Start() error {
	slog.Info("starting API server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// middleware applies CORS headers and request logging to all routes.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsEnabled {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		start := time.Now()
		next.ServeHTTP(w, r)

		if r.URL.Path != "/health" && r.URL.Path != "/metrics" {
			slog.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start).String(),
			)
		}
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	count, err := s.store.Count(r.Context())
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"records": count,
	})
}

// handleWebhook receives inbound messages. Every inbound message gets
// a TwiML reply: help text without a URL, a save result with one.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		// Webhook URL verification
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			respondError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		msg := models.WebhookMessage{
			From:       r.PostFormValue("From"),
			To:         r.PostFormValue("To"),
			Body:       r.PostFormValue("Body"),
			MessageSid: r.PostFormValue("MessageSid"),
		}

		userPhone := ingest.NormalizePhone(msg.From)
		targetURL, overrideTag := ingest.ParseMessage(msg.Body)

		if targetURL == "" {
			respondTwiML(w, ingest.HelpReply())
			return
		}
		respondTwiML(w, s.pipeline.Process(r.Context(), userPhone, targetURL, overrideTag))
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleList returns a user's saved content, newest first.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userPhone := r.URL.Query().Get("user_phone")
	if userPhone == "" {
		respondError(w, http.StatusBadRequest, "user_phone is required")
		return
	}

	filter := db.ListFilter{
		Search: r.URL.Query().Get("search"),
		Skip:   queryInt(r, "skip", 0),
		Limit:  queryInt(r, "limit", 0),
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, ok := models.ParseCategory(raw)
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown category")
			return
		}
		filter.Category = category
	}

	records, err := s.store.ListByUser(r.Context(), userPhone, filter)
	if err != nil {
		slog.Error("failed to list content", "user", userPhone, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list content")
		return
	}
	if records == nil {
		records = []*models.ContentRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

// handleContentItem dispatches /api/content/{id} and
// /api/content/stats/{phone}.
func (s *Server) handleContentItem(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/content/")
	if path == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	if phone, ok := strings.CutPrefix(path, "stats/"); ok {
		s.handleStats(w, r, phone)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGet(w, r, path)
	case http.MethodPatch:
		s.handleUpdate(w, r, path)
	case http.MethodDelete:
		s.handleDelete(w, r, path)
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	record, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		slog.Error("failed to get content", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get content")
		return
	}
	if record == nil {
		respondError(w, http.StatusNotFound, "content not found")
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var update models.ContentUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if update.Category != nil {
		if _, ok := models.ParseCategory(string(*update.Category)); !ok {
			respondError(w, http.StatusBadRequest, "unknown category")
			return
		}
	}

	record, err := s.store.Update(r.Context(), id, update)
	if err != nil {
		slog.Error("failed to update content", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update content")
		return
	}
	if record == nil {
		respondError(w, http.StatusNotFound, "content not found")
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	deleted, err := s.store.Delete(r.Context(), id)
	if err != nil {
		slog.Error("failed to delete content", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete content")
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "content not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, phone string) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if phone == "" {
		respondError(w, http.StatusBadRequest, "phone is required")
		return
	}

	stats, err := s.store.Stats(r.Context(), phone)
	if err != nil {
		slog.Error("failed to get stats", "user", phone, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
