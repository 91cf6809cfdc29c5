package mapview

import (
	"sync"

	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
)

type Op string

const (
	OpSetVisible Op = "set_visible"
	OpFitBounds  Op = "fit_bounds"
	OpSetCenter  Op = "set_center"
	OpSetZoom    Op = "set_zoom"
)

// Command is one map instruction as delivered to the browser view.
type Command struct {
	Op      Op            `json:"op"`
	Handle  Handle        `json:"handle,omitempty,string"`
	Visible *bool         `json:"visible,omitempty"`
	Bounds  *Bounds       `json:"bounds,omitempty"`
	Center  *model.LatLng `json:"center,omitempty"`
	Zoom    *float64      `json:"zoom,omitempty"`
}

// Bounds is the JSON shape of a fit-to-bounds box.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

func boundsOf(bb model.BBox) *Bounds {
	return &Bounds{South: bb.Y1, West: bb.X1, North: bb.Y2, East: bb.X2}
}

// CommandLog is a View that queues commands until the view drains them. It
// is safe for concurrent use because debounced fits arrive from timer
// goroutines.
type CommandLog struct {
	mu   sync.Mutex
	cmds []Command
	max  int
}

// NewCommandLog keeps at most max undrained commands (0 = unbounded); the
// oldest are dropped first.
func NewCommandLog(max int) *CommandLog {
	return &CommandLog{max: max}
}

func (l *CommandLog) push(c Command) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cmds = append(l.cmds, c)
	if l.max > 0 && len(l.cmds) > l.max {
		l.cmds = append([]Command(nil), l.cmds[len(l.cmds)-l.max:]...)
	}
}

func (l *CommandLog) SetVisible(h Handle, visible bool) {
	v := visible
	l.push(Command{Op: OpSetVisible, Handle: h, Visible: &v})
}

func (l *CommandLog) FitBounds(bb model.BBox) {
	l.push(Command{Op: OpFitBounds, Bounds: boundsOf(bb)})
}

func (l *CommandLog) SetCenter(p model.LatLng) {
	c := p
	l.push(Command{Op: OpSetCenter, Center: &c})
}

func (l *CommandLog) SetZoom(z float64) {
	zz := z
	l.push(Command{Op: OpSetZoom, Zoom: &zz})
}

// Drain returns and clears the queued commands.
func (l *CommandLog) Drain() []Command {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.cmds
	l.cmds = nil
	if out == nil {
		out = []Command{}
	}
	return out
}

// Len returns the number of undrained commands.
func (l *CommandLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cmds)
}

// Count returns how many undrained commands have op.
func (l *CommandLog) Count(op Op) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.cmds {
		if c.Op == op {
			n++
		}
	}
	return n
}
