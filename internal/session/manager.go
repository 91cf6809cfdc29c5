package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
	"github.com/mohammed-shakir/vakuf-map/internal/core/observability"
	"github.com/mohammed-shakir/vakuf-map/internal/logger"
	"github.com/mohammed-shakir/vakuf-map/internal/mapview"
)

var ErrNotFound = errors.New("session not found")

// RecordSource supplies the record set new sessions are built over.
type RecordSource interface {
	Records() []model.Record
}

type ManagerOptions struct {
	Logger *slog.Logger
	// per-session controller settings; Filter.Initial is derived from the
	// map settings below
	Session Options

	Center     model.LatLng
	Zoom       float64
	MobileZoom float64

	// sessions untouched for this long are closed by Sweep; 0 disables
	IdleTTL time.Duration
	// bound on undrained map commands per session; 0 = unbounded
	MaxCommands int
}

// Session pairs a controller with the command log its map view drains.
type Session struct {
	*Controller
	Commands *mapview.CommandLog
}

// Manager owns the live sessions.
type Manager struct {
	src  RecordSource
	opts ManagerOptions
	log  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(src RecordSource, opts ManagerOptions) *Manager {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Session.Now == nil {
		opts.Session.Now = time.Now
	}
	if opts.Session.Logger == nil {
		opts.Session.Logger = opts.Logger
	}
	return &Manager{
		src:      src,
		opts:     opts,
		log:      opts.Logger,
		sessions: make(map[string]*Session),
	}
}

// Create opens a session over the current record set. Mobile screens start
// at the wider mobile zoom.
func (m *Manager) Create(mobile bool) *Session {
	zoom := m.opts.Zoom
	if mobile && m.opts.MobileZoom > 0 {
		zoom = m.opts.MobileZoom
	}
	o := m.opts.Session
	o.Filter.Initial = mapview.Viewport{Center: m.opts.Center, Zoom: zoom}

	cmds := mapview.NewCommandLog(m.opts.MaxCommands)
	// the view starts at the initial viewport
	cmds.SetCenter(o.Filter.Initial.Center)
	cmds.SetZoom(o.Filter.Initial.Zoom)

	id := logger.NewID()
	s := &Session{Controller: New(id, cmds, m.src.Records(), o), Commands: cmds}

	m.mu.Lock()
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	observability.SetActiveSessions(n)
	m.log.Info("session created", "session_id", id, "mobile", mobile, "records", len(s.engine.Records()))
	return s
}

// Get returns the session and counts the lookup as activity. A session
// built over an older record set is moved to the current one first.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !s.ReplaceRecords(m.src.Records()) {
		s.Touch()
	}
	return s, nil
}

// Delete closes and forgets the session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	observability.SetActiveSessions(n)
	return nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than IdleTTL and returns how many
// were evicted.
func (m *Manager) Sweep() int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := m.opts.Session.Now().Add(-m.opts.IdleTTL)

	var idle []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.LastUsed().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		observability.SetActiveSessions(n)
		m.log.Info("idle sessions evicted", "evicted", len(idle), "active", n)
	}
	return len(idle)
}

// Run sweeps periodically until ctx is done, then closes every session.
func (m *Manager) Run(ctx context.Context) {
	defer m.CloseAll()
	if m.opts.IdleTTL <= 0 {
		<-ctx.Done()
		return
	}
	t := time.NewTicker(max(m.opts.IdleTTL/2, time.Second))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
	observability.SetActiveSessions(0)
}
