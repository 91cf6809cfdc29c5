// Package session is the per-user search controller. It owns the filter
// state, turns UI events into filter, suggestion and navigation updates and
// serializes them behind one lock.
package session

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
	"github.com/mohammed-shakir/vakuf-map/internal/filter"
	"github.com/mohammed-shakir/vakuf-map/internal/mapview"
	"github.com/mohammed-shakir/vakuf-map/internal/navigation"
	"github.com/mohammed-shakir/vakuf-map/internal/suggest"
	"github.com/mohammed-shakir/vakuf-map/internal/textnorm"
)

type Options struct {
	Logger *slog.Logger
	Filter filter.Options
	// upper bound on suggestions shown; 0 = unbounded
	SuggestMax int
	// visible height of the suggestion panel in pixels; 0 disables scroll tracking
	PanelHeight float64
	// clock for idle tracking (tests)
	Now func() time.Time
}

// Suggestion is one panel entry with its match wrapped in <strong>.
type Suggestion struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	ID           string          `json:"id"`
	Criteria     filter.Criteria `json:"criteria"`
	VisibleCount int             `json:"visibleCount"`
	Visible      []model.Record  `json:"visible"`
	Suggestions  []Suggestion    `json:"suggestions"`
	Cursor       int             `json:"cursor"`
	ScrollOffset float64         `json:"scrollOffset"`
	PanelVisible bool            `json:"panelVisible"`
	NameOptions  []string        `json:"nameOptions"`
}

type Controller struct {
	id  string
	log *slog.Logger
	now func() time.Time

	// kept to rebuild the engine over a reloaded record set
	view  mapview.View
	fopts filter.Options

	mu          sync.Mutex
	state       *filter.State
	engine      *filter.Engine
	nav         *navigation.Controller
	suggestMax  int
	suggestions []string
	panel       bool
	names       []string
	lastUsed    time.Time
	closed      bool
}

// New builds a controller over records that drives view. Every marker starts
// visible.
func New(id string, view mapview.View, records []model.Record, opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger.With("session_id", id)
	fopts := opts.Filter
	fopts.Logger = log
	c := &Controller{
		id:         id,
		log:        log,
		now:        opts.Now,
		view:       view,
		fopts:      fopts,
		state:      filter.NewState(),
		engine:     filter.NewEngine(view, records, fopts),
		nav:        navigation.NewController(opts.PanelHeight),
		suggestMax: opts.SuggestMax,
	}
	c.names = nameOptions(c.engine.Visible())
	c.lastUsed = c.now()
	return c
}

func (c *Controller) ID() string { return c.id }

// lock takes the controller lock and reports false once the controller is
// closed. On true the caller must unlock.
func (c *Controller) lock() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.lastUsed = c.now()
	return true
}

// OnInputChanged handles a new value of the search field. Valid input
// filters and regenerates suggestions at once; blank input hides the panel
// and resets when nothing else is selected; invalid input still filters on
// the raw text but shows no suggestions.
func (c *Controller) OnInputChanged(text string) Snapshot {
	if !c.lock() {
		return c.Snapshot()
	}
	defer c.mu.Unlock()

	c.state.SetQuery(text)
	switch {
	case strings.TrimSpace(text) == "":
		c.hidePanel()
		c.engine.Refresh(c.state.Criteria())
	case textnorm.ValidInput(text):
		visible := c.engine.Apply(c.state.Criteria())
		c.setSuggestions(suggest.Limit(suggest.Generate(visible, text), c.suggestMax))
	default:
		c.engine.Apply(c.state.Criteria())
		c.hidePanel()
	}
	return c.snapshotLocked()
}

// OnArrowKey moves the highlight. The query field follows the highlighted
// suggestion without committing it. Enter is routed to OnEnterKey.
func (c *Controller) OnArrowKey(key navigation.Key) Snapshot {
	if key == navigation.KeyEnter {
		return c.OnEnterKey()
	}
	if !c.lock() {
		return c.Snapshot()
	}
	defer c.mu.Unlock()

	if r := c.nav.Handle(key); r.Moved {
		c.state.SetQuery(r.Query)
	}
	return c.snapshotLocked()
}

// OnEnterKey commits the highlighted suggestion. Without a highlight it is a
// no-op.
func (c *Controller) OnEnterKey() Snapshot {
	if !c.lock() {
		return c.Snapshot()
	}
	defer c.mu.Unlock()

	if r := c.nav.Handle(navigation.KeyEnter); r.HasPick {
		c.pick(r.Picked)
	}
	return c.snapshotLocked()
}

// OnSuggestionPicked commits text as if it had been chosen from the panel.
func (c *Controller) OnSuggestionPicked(text string) Snapshot {
	if !c.lock() {
		return c.Snapshot()
	}
	defer c.mu.Unlock()

	c.pick(text)
	return c.snapshotLocked()
}

func (c *Controller) pick(text string) {
	c.state.SetQuery(suggest.QueryFor(text))
	c.hidePanel()
	c.engine.Refresh(c.state.Criteria())
	c.log.Debug("suggestion picked", "text", text, "query", c.state.Query())
}

// OnCitySelected sets the city filter ("" clears it), refilters and rebuilds
// the name options from the new visible set. The selected name is cleared.
func (c *Controller) OnCitySelected(city string) Snapshot {
	return c.selectDependent(func(s *filter.State) { s.SetCity(city) })
}

// OnTypeSelected is OnCitySelected for the vakuf type.
func (c *Controller) OnTypeSelected(typ string) Snapshot {
	return c.selectDependent(func(s *filter.State) { s.SetType(typ) })
}

func (c *Controller) selectDependent(set func(*filter.State)) Snapshot {
	if !c.lock() {
		return c.Snapshot()
	}
	defer c.mu.Unlock()

	set(c.state)
	c.state.SetName("")
	c.names = nameOptions(c.engine.Refresh(c.state.Criteria()))
	return c.snapshotLocked()
}

// OnNameSelected sets the exact name filter ("" clears it) and refilters.
func (c *Controller) OnNameSelected(name string) Snapshot {
	if !c.lock() {
		return c.Snapshot()
	}
	defer c.mu.Unlock()

	c.state.SetName(name)
	c.engine.Refresh(c.state.Criteria())
	return c.snapshotLocked()
}

// OnDismiss hides the suggestion panel, e.g. on a click outside it.
func (c *Controller) OnDismiss() Snapshot {
	if !c.lock() {
		return c.Snapshot()
	}
	defer c.mu.Unlock()

	c.panel = false
	return c.snapshotLocked()
}

func (c *Controller) setSuggestions(s []string) {
	c.suggestions = s
	c.nav.Reset(s)
	c.panel = len(s) > 0
}

func (c *Controller) hidePanel() {
	c.suggestions = nil
	c.nav.Reset(nil)
	c.panel = false
}

// nameOptions lists the distinct names of recs in order.
func nameOptions(recs []model.Record) []string {
	seen := make(map[string]struct{}, len(recs))
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		if r.Name == "" {
			continue
		}
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		out = append(out, r.Name)
	}
	return out
}

func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Query()
}

// SetQuery writes the query field without filtering.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SetQuery(q)
}

func (c *Controller) Criteria() filter.Criteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Criteria()
}

func (c *Controller) Visible() []model.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Record(nil), c.engine.Visible()...)
}

func (c *Controller) Suggestions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.suggestions...)
}

func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nav.Cursor()
}

func (c *Controller) SuggestionsVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel
}

func (c *Controller) NameOptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.names...)
}

// FitPending reports whether a viewport fit is still waiting.
func (c *Controller) FitPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.FitPending()
}

// Touch marks the session as in use without changing its state.
func (c *Controller) Touch() {
	if c.lock() {
		c.mu.Unlock()
	}
}

// ReplaceRecords rebuilds the engine over records when they are not the set
// the session already filters, and reapplies the current criteria. It
// reports whether the set was replaced.
func (c *Controller) ReplaceRecords(records []model.Record) bool {
	if !c.lock() {
		return false
	}
	defer c.mu.Unlock()

	if sameRecords(c.engine.Records(), records) {
		return false
	}
	c.engine.Close()
	c.engine = filter.NewEngine(c.view, records, c.fopts)
	if crit := c.state.Criteria(); !crit.IsEmpty() {
		c.engine.Apply(crit)
	}
	c.names = nameOptions(c.engine.Visible())
	c.hidePanel()
	c.log.Info("record set replaced", "records", len(records), "visible", len(c.engine.Visible()))
	return true
}

// sameRecords reports whether a and b are the same published slice.
func sameRecords(a, b []model.Record) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// LastUsed is the time of the last event handled.
func (c *Controller) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	crit := c.state.Criteria()
	visible := c.engine.Visible()
	sugs := make([]Suggestion, len(c.suggestions))
	for i, s := range c.suggestions {
		sugs[i] = Suggestion{Text: s, HTML: textnorm.HighlightHTML(s, crit.Query)}
	}
	return Snapshot{
		ID:           c.id,
		Criteria:     crit,
		VisibleCount: len(visible),
		Visible:      append(make([]model.Record, 0, len(visible)), visible...),
		Suggestions:  sugs,
		Cursor:       c.nav.Cursor(),
		ScrollOffset: c.nav.Offset(),
		PanelVisible: c.panel,
		NameOptions:  append(make([]string, 0, len(c.names)), c.names...),
	}
}

// Close stops the pending fit. Later events are ignored and no command
// reaches the view.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.engine.Close()
	c.log.Debug("session closed")
}
