package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/stenoworks/minuted/internal/minutes"
	"github.com/stenoworks/minuted/internal/processor"
	"github.com/stenoworks/minuted/internal/progress"
	"github.com/stenoworks/minuted/internal/store"
)

// maxUploadBytes caps an audio upload at 500 MB.
const maxUploadBytes = 500 << 20

type Server struct {
	router   *chi.Mux
	port     int
	apiToken string
	store    *store.Store
	proc     *processor.Processor
	tracker  *progress.Tracker
	logger   *slog.Logger
}

func NewServer(port int, apiToken string, db *store.Store, proc *processor.Processor, tracker *progress.Tracker, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		apiToken: apiToken,
		store:    db,
		proc:     proc,
		tracker:  tracker,
		logger:   logger,
	}

	router.Get("/health", s.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/sessions", s.listSessions)
		r.Get("/sessions/{id}", s.getSession)
		r.Get("/sessions/{id}/progress", s.sessionProgress)
		r.Get("/minutes/{id}", s.getMinutes)
		r.Get("/minutes/{id}/progress", s.minutesProgress)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(apiToken))
			r.Post("/sessions", s.createSession)
			r.Post("/minutes/{id}/regenerate", s.regenerateMinutes)
		})
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// BearerAuthMiddleware rejects requests lacking the configured token. An
// empty token disables auth entirely.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" {
				got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
				if got != token {
					writeError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing audio file")
		return
	}
	defer file.Close()

	// Buffer the upload; the multipart temp file dies with this handler but
	// transcription runs on a background goroutine.
	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read audio: "+err.Error())
		return
	}

	sessionID := uuid.New().String()
	s.proc.StartIngest(sessionID, header.Filename, bytes.NewReader(audio))

	writeJSON(w, http.StatusAccepted, map[string]string{"session_id": sessionID})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	refs, err := s.store.ListSessions(r.Context())
	if err != nil {
		s.logger.Error("list sessions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list sessions failed")
		return
	}
	if refs == nil {
		refs = []store.SessionRef{}
	}
	writeJSON(w, http.StatusOK, refs)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.GetSession(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		s.logger.Error("get session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "get session failed")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) sessionProgress(w http.ResponseWriter, r *http.Request) {
	st, ok := s.tracker.Get(chi.URLParam(r, "id"))
	if !ok {
		st = progress.Status{Status: "unknown", Progress: 0}
	}
	writeJSON(w, http.StatusOK, st)
}

type regenerateRequest struct {
	MeetingType string `json:"meeting_type"`
}

func (s *Server) regenerateMinutes(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req regenerateRequest
	if r.Body != nil {
		// An empty or absent body means auto-detect.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	}
	override := req.MeetingType
	if override == "" {
		override = processor.MeetingTypeAuto
	}

	switch override {
	case processor.MeetingTypeAuto, string(minutes.MeetingRegular), string(minutes.MeetingIncident):
	default:
		writeError(w, http.StatusBadRequest, "invalid meeting_type: "+override)
		return
	}

	if _, err := s.store.GetSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		s.logger.Error("get session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "get session failed")
		return
	}

	if err := s.proc.StartMinutesJob(sessionID, override); err != nil {
		if errors.Is(err, processor.ErrSummarizationDisabled) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) getMinutes(w http.ResponseWriter, r *http.Request) {
	raw, err := s.store.GetMinutesRaw(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Minutes not found")
		return
	}
	if err != nil {
		s.logger.Error("get minutes failed", "error", err)
		writeError(w, http.StatusInternalServerError, "get minutes failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (s *Server) minutesProgress(w http.ResponseWriter, r *http.Request) {
	st, ok := s.tracker.Get(processor.MinutesToken(chi.URLParam(r, "id")))
	if !ok {
		st = progress.Status{Status: "unknown", Progress: 0, Step: "Unknown"}
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
