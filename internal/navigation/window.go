package navigation

// DefaultItemHeight is the rendered height of one suggestion row in pixels.
const DefaultItemHeight = 41

type Direction int

const (
	Down Direction = iota
	Up
)

// Window models the scroll container of the suggestion list. Offset is the
// scroll position of its top edge.
type Window struct {
	ItemHeight     float64
	ViewportHeight float64
	Items          int
	Offset         float64
}

func (w *Window) itemHeight() float64 {
	if w.ItemHeight <= 0 {
		return DefaultItemHeight
	}
	return w.ItemHeight
}

// ScrollTo brings item index into view after a move in dir and returns the
// new offset. A wrap to the first (Down) or last (Up) item snaps to that end
// of the list; otherwise the offset only moves when the item is cut off, and
// by the smallest amount that shows it whole.
func (w *Window) ScrollTo(index int, dir Direction) float64 {
	if index < 0 || index >= w.Items || w.ViewportHeight <= 0 {
		return w.Offset
	}
	h := w.itemHeight()

	switch {
	case dir == Down && index == 0:
		w.Offset = 0
		return w.Offset
	case dir == Up && index == w.Items-1:
		w.Offset = max(float64(w.Items)*h-w.ViewportHeight, 0)
		return w.Offset
	}

	top := float64(index) * h
	bottom := top + h
	switch {
	case bottom > w.Offset+w.ViewportHeight:
		w.Offset = bottom - w.ViewportHeight
	case top < w.Offset:
		w.Offset = top
	}
	return w.Offset
}

// Reset scrolls back to the top of a list of n items.
func (w *Window) Reset(n int) {
	w.Items = n
	w.Offset = 0
}
