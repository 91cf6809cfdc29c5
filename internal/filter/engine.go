package filter

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
	"github.com/mohammed-shakir/vakuf-map/internal/core/observability"
	"github.com/mohammed-shakir/vakuf-map/internal/debounce"
	"github.com/mohammed-shakir/vakuf-map/internal/mapview"
	"github.com/mohammed-shakir/vakuf-map/internal/textnorm"
)

const DefaultFitDelay = 500 * time.Millisecond

type Options struct {
	Logger *slog.Logger
	// quiet period before a fit-to-bounds is sent to the view
	FitDelay time.Duration
	// center and zoom restored by Reset
	Initial mapview.Viewport
	// scheduler override for the fit timer (tests)
	AfterFunc debounce.AfterFunc
}

// Engine recomputes the visible set over a fixed record set. It is not safe
// for concurrent use except for Close; callers serialize Apply and Reset.
type Engine struct {
	log       *slog.Logger
	view      mapview.View
	markers   *mapview.Markers
	normNames []string
	initial   mapview.Viewport
	fit       *debounce.Timer

	visible []model.Record
	// the view shows the initial center and zoom; nothing moved it since
	atInitial bool

	// guards the view against fits racing Close
	fitMu  sync.Mutex
	closed bool
}

func NewEngine(view mapview.View, records []model.Record, opts Options) *Engine {
	if view == nil {
		view = mapview.Discard{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	delay := opts.FitDelay
	if delay <= 0 {
		delay = DefaultFitDelay
	}
	var timerOpts []debounce.Option
	if opts.AfterFunc != nil {
		timerOpts = append(timerOpts, debounce.WithAfterFunc(opts.AfterFunc))
	}

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = textnorm.Normalize(r.Name)
	}
	return &Engine{
		log:       opts.Logger,
		view:      view,
		markers:   mapview.NewMarkers(view, records),
		normNames: names,
		initial:   opts.Initial,
		fit:       debounce.New(delay, timerOpts...),
		visible:   records,
		atInitial: true,
	}
}

// Records returns the full record set.
func (e *Engine) Records() []model.Record { return e.markers.Records() }

// Markers exposes the handle side table.
func (e *Engine) Markers() *mapview.Markers { return e.markers }

// Visible returns the visible set of the last Apply or Reset.
func (e *Engine) Visible() []model.Record { return e.visible }

// FitPending reports whether a viewport fit is waiting for its quiet period.
func (e *Engine) FitPending() bool { return e.fit.Pending() }

// Apply evaluates c over every record, syncs marker visibility and schedules
// a debounced fit to the bounds of the result.
func (e *Engine) Apply(c Criteria) []model.Record {
	p := compile(c)
	recs := e.markers.Records()
	out := make([]model.Record, 0, len(recs))
	for i, r := range recs {
		ok := p.match(r, e.normNames[i])
		e.markers.SetVisible(i, ok)
		if ok {
			out = append(out, r)
		}
	}
	e.visible = out
	e.atInitial = false
	observability.ObserveFilter("apply", len(out))

	if bb, ok := BoundsOf(out); ok {
		e.fit.Schedule(func() { e.fitTo(bb) })
	} else {
		// nothing to frame; an older pending fit would show stale bounds
		e.fit.Cancel()
	}

	e.log.Debug("filter applied",
		"query", c.Query, "city", c.City, "type", c.Type, "name", c.Name,
		"visible", len(out), "total", len(recs))
	return out
}

// Reset shows every marker, drops any pending fit and restores the initial
// center and zoom. An all-records fit would not reproduce the initial view.
// The view is restored once per return to the empty criteria; repeated
// resets leave a map the user panned since alone.
func (e *Engine) Reset() []model.Record {
	e.fit.Cancel()
	changed := e.markers.ShowAll()
	e.visible = e.markers.Records()

	e.fitMu.Lock()
	if !e.closed && !e.atInitial {
		e.atInitial = true
		e.view.SetCenter(e.initial.Center)
		e.view.SetZoom(e.initial.Zoom)
		observability.IncViewportFit("reset")
	}
	e.fitMu.Unlock()

	observability.ObserveFilter("reset", len(e.visible))
	e.log.Debug("filter reset", "visible", len(e.visible), "shown", changed)
	return e.visible
}

// Refresh resets when c is empty and applies it otherwise.
func (e *Engine) Refresh(c Criteria) []model.Record {
	if c.IsEmpty() {
		return e.Reset()
	}
	return e.Apply(c)
}

func (e *Engine) fitTo(bb model.BBox) {
	e.fitMu.Lock()
	defer e.fitMu.Unlock()
	if e.closed {
		return
	}
	e.view.FitBounds(bb)
	observability.IncViewportFit("bounds")
}

// Close releases the fit timer. No command reaches the view afterwards.
func (e *Engine) Close() {
	e.fit.Stop()
	e.fitMu.Lock()
	e.closed = true
	e.fitMu.Unlock()
}
