// Package navigation implements arrow-key movement over the suggestion list.
package navigation

// NoSelection is the cursor value when no suggestion is highlighted.
const NoSelection = -1

// Result describes the outcome of one key press.
type Result struct {
	Cursor int
	// Query is the highlighted suggestion the input field should show after
	// a move; empty when the cursor did not move.
	Query string
	Moved bool
	// Picked is set once when Enter commits the highlighted suggestion.
	Picked  string
	HasPick bool
	// Offset is the scroll position of the list after the key press.
	Offset float64
}

// Controller tracks the highlighted suggestion. Not safe for concurrent use.
type Controller struct {
	list   []string
	cursor int
	win    Window
}

// NewController returns a controller with an empty list. viewportHeight is
// the visible height of the suggestion panel; 0 disables scroll tracking.
func NewController(viewportHeight float64) *Controller {
	return &Controller{
		cursor: NoSelection,
		win:    Window{ItemHeight: DefaultItemHeight, ViewportHeight: viewportHeight},
	}
}

// Reset installs a freshly generated list and clears the selection.
func (c *Controller) Reset(list []string) {
	c.list = list
	c.cursor = NoSelection
	c.win.Reset(len(list))
}

func (c *Controller) Cursor() int { return c.cursor }

func (c *Controller) List() []string { return c.list }

// Offset returns the current scroll position of the list.
func (c *Controller) Offset() float64 { return c.win.Offset }

// Selected returns the highlighted suggestion, if any.
func (c *Controller) Selected() (string, bool) {
	if c.cursor < 0 || c.cursor >= len(c.list) {
		return "", false
	}
	return c.list[c.cursor], true
}

// Handle applies key to the cursor. With an empty list every key is a no-op.
func (c *Controller) Handle(key Key) Result {
	n := len(c.list)
	if n == 0 {
		c.cursor = NoSelection
		return c.result()
	}
	// a stale cursor from a shrunk list counts as no selection
	if c.cursor >= n {
		c.cursor = NoSelection
	}

	switch key {
	case KeyDown:
		c.cursor = (c.cursor + 1) % n
		c.win.ScrollTo(c.cursor, Down)
	case KeyUp:
		if c.cursor <= 0 {
			c.cursor = n - 1
		} else {
			c.cursor--
		}
		c.win.ScrollTo(c.cursor, Up)
	case KeyEnter:
		text, ok := c.Selected()
		if !ok {
			return c.result()
		}
		c.cursor = NoSelection
		r := c.result()
		r.Picked, r.HasPick = text, true
		return r
	default:
		return c.result()
	}

	r := c.result()
	r.Query, r.Moved = c.list[c.cursor], true
	return r
}

func (c *Controller) result() Result {
	return Result{Cursor: c.cursor, Offset: c.win.Offset}
}
