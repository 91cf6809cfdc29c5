// Package router maps the session API onto HTTP.
package router

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/vakuf-map/internal/cluster"
	"github.com/mohammed-shakir/vakuf-map/internal/core/config"
	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
	"github.com/mohammed-shakir/vakuf-map/internal/core/observability"
	mylog "github.com/mohammed-shakir/vakuf-map/internal/logger"
	"github.com/mohammed-shakir/vakuf-map/internal/navigation"
	"github.com/mohammed-shakir/vakuf-map/internal/session"
)

const maxBody = 64 << 10

// Sessions is the session registry behind the API.
type Sessions interface {
	Create(mobile bool) *session.Session
	Get(id string) (*session.Session, error)
	Delete(id string) error
}

// RecordCounter reports the size of the loaded record set.
type RecordCounter interface {
	Count() int
}

type api struct {
	log      *slog.Logger
	cfg      config.Config
	sessions Sessions
	records  RecordCounter
}

// Mount registers the session API on r.
func Mount(r chi.Router, logger *slog.Logger, cfg config.Config, sessions Sessions, records RecordCounter) {
	a := &api{log: logger, cfg: cfg, sessions: sessions, records: records}

	r.Get("/options", instrument("/options", a.options))
	r.Get("/records/count", instrument("/records/count", a.count))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", instrument("/sessions", a.create))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", instrument("/sessions/{id}", a.withSession(a.state)))
			r.Delete("/", instrument("/sessions/{id}", a.remove))
			r.Post("/input", instrument("/sessions/{id}/input", a.withSession(a.input)))
			r.Post("/keys", instrument("/sessions/{id}/keys", a.withSession(a.keys)))
			r.Post("/pick", instrument("/sessions/{id}/pick", a.withSession(a.pick)))
			r.Post("/city", instrument("/sessions/{id}/city", a.withSession(a.city)))
			r.Post("/type", instrument("/sessions/{id}/type", a.withSession(a.typ)))
			r.Post("/name", instrument("/sessions/{id}/name", a.withSession(a.name)))
			r.Post("/dismiss", instrument("/sessions/{id}/dismiss", a.withSession(a.dismiss)))
			r.Get("/commands", instrument("/sessions/{id}/commands", a.withSession(a.commands)))
			r.Get("/clusters", instrument("/sessions/{id}/clusters", a.withSession(a.clusters)))
		})
	})
}

// instrument records status and latency under the route pattern.
func instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, s *session.Session)

func (a *api) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s, err := a.sessions.Get(id)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h(w, r.WithContext(mylog.WithSessionID(r.Context(), id)), s)
	}
}

type optionsResponse struct {
	Types  []string `json:"types"`
	Cities []string `json:"cities"`
}

func (a *api) options(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, optionsResponse{Types: model.Types(), Cities: model.Cities()})
}

func (a *api) count(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"count": a.records.Count()})
}

type createRequest struct {
	Mobile bool `json:"mobile"`
}

func (a *api) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s := a.sessions.Create(req.Mobile)
	w.Header().Set("Location", "/sessions/"+s.ID())
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

func (a *api) remove(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) state(w http.ResponseWriter, _ *http.Request, s *session.Session) {
	writeJSON(w, http.StatusOK, s.Snapshot())
}

type textRequest struct {
	Text string `json:"text"`
}

func (a *api) input(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req textRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap := s.OnInputChanged(req.Text)
	a.log.DebugContext(r.Context(), "input changed", "session_id", s.ID(),
		"visible", snap.VisibleCount, "suggestions", len(snap.Suggestions))
	writeJSON(w, http.StatusOK, snap)
}

type keyRequest struct {
	Key string `json:"key"`
}

func (a *api) keys(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req keyRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.OnArrowKey(navigation.ParseKey(req.Key)))
}

func (a *api) pick(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req textRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.OnSuggestionPicked(req.Text))
}

type valueRequest struct {
	Value string `json:"value"`
}

func (a *api) selection(w http.ResponseWriter, r *http.Request, apply func(string) session.Snapshot) {
	var req valueRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, apply(req.Value))
}

func (a *api) city(w http.ResponseWriter, r *http.Request, s *session.Session) {
	a.selection(w, r, s.OnCitySelected)
}

func (a *api) typ(w http.ResponseWriter, r *http.Request, s *session.Session) {
	a.selection(w, r, s.OnTypeSelected)
}

func (a *api) name(w http.ResponseWriter, r *http.Request, s *session.Session) {
	a.selection(w, r, s.OnNameSelected)
}

func (a *api) dismiss(w http.ResponseWriter, _ *http.Request, s *session.Session) {
	writeJSON(w, http.StatusOK, s.OnDismiss())
}

func (a *api) commands(w http.ResponseWriter, _ *http.Request, s *session.Session) {
	writeJSON(w, http.StatusOK, s.Commands.Drain())
}

func (a *api) clusters(w http.ResponseWriter, r *http.Request, s *session.Session) {
	zoom := a.cfg.MapInitialZoom
	if raw := strings.TrimSpace(r.URL.Query().Get("zoom")); raw != "" {
		z, err := strconv.ParseFloat(raw, 64)
		if err != nil || z < 0 {
			writeError(w, http.StatusBadRequest, "invalid zoom")
			return
		}
		zoom = z
	}
	out, err := cluster.Group(s.Visible(), cluster.ResForZoom(zoom))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
