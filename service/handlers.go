package service

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hazyhaar/surveypipe/session"
	"github.com/hazyhaar/surveypipe/shield"
	"github.com/hazyhaar/surveypipe/skiplogic"
)

// Handler returns the chi router for the JSON API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
	r.Use(shield.RequestID)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.basicAuth)

		r.Post("/api/extract", s.handleExtract)

		r.Get("/api/sessions", s.handleListSessions)
		r.Route("/api/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/graph", s.handleGraph)
			r.Get("/analyze", s.handleAnalyze)
			r.Get("/simulate", s.handleSimulate)
			r.Get("/scenarios", s.handleScenarios)
			r.Post("/trace", s.handleTrace)
		})
	})

	return r
}

// basicAuth enforces HTTP basic auth when a password hash is configured.
// With an empty hash the API is open (local tooling mode).
func (s *Service) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Auth.PasswordHash == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.cfg.Auth.User)) != 1 ||
			bcrypt.CompareHashAndPassword([]byte(s.cfg.Auth.PasswordHash), []byte(pass)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="surveypipe"`)
			writeJSON(w, 401, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes()); err != nil {
		writeError(w, 400, err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, 400, err)
		return
	}
	defer file.Close()

	rec, err := s.ExtractFile(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, 422, err)
		return
	}
	writeJSON(w, 201, rec)
}

func (s *Service) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.Sessions(r.Context())
	if err != nil {
		writeError(w, 500, err)
		return
	}
	if list == nil {
		list = []session.Summary{}
	}
	writeJSON(w, 200, list)
}

func (s *Service) handleGetSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, 200, rec)
}

func (s *Service) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "deleted"})
}

func (s *Service) handleGraph(w http.ResponseWriter, r *http.Request) {
	mode := skiplogic.ViewMode(r.URL.Query().Get("mode"))
	orientation := r.URL.Query().Get("orientation")
	res, err := s.Graph(r.Context(), chi.URLParam(r, "id"), mode, orientation)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, 200, res)
}

func (s *Service) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	res, err := s.Analyze(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, 200, res)
}

func (s *Service) handleSimulate(w http.ResponseWriter, r *http.Request) {
	res, err := s.Simulate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, 200, res)
}

func (s *Service) handleScenarios(w http.ResponseWriter, r *http.Request) {
	res, err := s.Scenarios(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, 200, res)
}

func (s *Service) handleTrace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Selections map[string]string `json:"selections"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, err)
		return
	}
	res, err := s.Trace(r.Context(), chi.URLParam(r, "id"), req.Selections)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, 200, res)
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, 404, err)
		return
	}
	writeError(w, 500, err)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
