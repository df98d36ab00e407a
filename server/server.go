// Package server exposes the extraction engine over HTTP. The surface is
// deliberately thin: upload, strategy introspection and health.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/docrelay/docrelay/config"
	"github.com/docrelay/docrelay/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

type Server struct {
	*config.Config

	router chi.Router
}

func New(cfg *config.Config) *Server {
	r := chi.NewRouter()

	s := &Server{
		Config: cfg,

		router: r,
	}

	r.Use(cors.AllowAll().Handler)
	r.Use(s.requestID)
	r.Use(s.authenticate)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Get("/strategies", s.handleStrategies)
	})

	r.Get("/health", s.handleHealth)

	return s
}

func (s *Server) ListenAndServe() error {
	s.Logger.Info("starting server", "address", s.Address)

	return http.ListenAndServe(s.Address, s.router)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestID tags every request with an id and attaches a scoped logger to the
// context.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")

		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set("X-Request-Id", id)

		log := s.Logger.With("request_id", id)
		ctx := logger.WithContext(r.Context(), log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate enforces the static bearer token. An empty configured token
// leaves the server open. The health endpoint is never gated.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Token == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")

		if header == "" {
			writeError(w, http.StatusUnauthorized, errors.New("missing authorization header"))
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")

		if !ok {
			writeError(w, http.StatusUnauthorized, errors.New("invalid authorization header"))
			return
		}

		if token != s.Token {
			writeError(w, http.StatusUnauthorized, errors.New("invalid token"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	resp := errorResponse{}
	resp.Error.Message = err.Error()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(resp)
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func logError(ctx context.Context, msg string, err error) {
	logger.FromContext(ctx).Error(msg, "error", err)
}
