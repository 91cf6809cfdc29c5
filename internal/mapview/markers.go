package mapview

import (
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
)

// Markers associates each record with its marker handle and tracks the
// visibility flag last sent to the view. Handles are derived from record
// content so a reloaded record keeps its marker.
type Markers struct {
	view     View
	records  []model.Record
	handles  []Handle
	byHandle map[Handle]int
	visible  []bool
}

// NewMarkers registers one marker per record. Markers start visible, the
// way the map adapter creates them.
func NewMarkers(view View, records []model.Record) *Markers {
	if view == nil {
		view = Discard{}
	}
	m := &Markers{
		view:     view,
		records:  records,
		handles:  make([]Handle, len(records)),
		byHandle: make(map[Handle]int, len(records)),
		visible:  make([]bool, len(records)),
	}
	for i, r := range records {
		h := handleFor(r)
		// probe past collisions, e.g. two identical rows
		for {
			if _, taken := m.byHandle[h]; !taken {
				break
			}
			h++
		}
		m.handles[i] = h
		m.byHandle[h] = i
		m.visible[i] = true
	}
	return m
}

func handleFor(r model.Record) Handle {
	d := xxhash.New()
	_, _ = d.WriteString(r.Name)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(r.ParcelID)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.FormatUint(math.Float64bits(r.Position.Lat), 16))
	_, _ = d.WriteString(strconv.FormatUint(math.Float64bits(r.Position.Lng), 16))
	return Handle(d.Sum64())
}

func (m *Markers) Len() int { return len(m.records) }

// Records returns the registered records in registration order.
func (m *Markers) Records() []model.Record { return m.records }

// Handle returns the marker handle of the i-th record.
func (m *Markers) Handle(i int) (Handle, bool) {
	if i < 0 || i >= len(m.handles) {
		return 0, false
	}
	return m.handles[i], true
}

// Record resolves a handle back to its record.
func (m *Markers) Record(h Handle) (model.Record, bool) {
	i, ok := m.byHandle[h]
	if !ok {
		return model.Record{}, false
	}
	return m.records[i], true
}

// Visible reports the flag last sent for the i-th marker.
func (m *Markers) Visible(i int) bool {
	if i < 0 || i >= len(m.visible) {
		return false
	}
	return m.visible[i]
}

// SetVisible sends a visibility command only when the flag changes and
// reports whether it did.
func (m *Markers) SetVisible(i int, visible bool) bool {
	if i < 0 || i >= len(m.visible) {
		return false
	}
	if m.visible[i] == visible {
		return false
	}
	m.visible[i] = visible
	m.view.SetVisible(m.handles[i], visible)
	return true
}

// ShowAll makes every marker visible and returns how many changed.
func (m *Markers) ShowAll() int {
	n := 0
	for i := range m.records {
		if m.SetVisible(i, true) {
			n++
		}
	}
	return n
}
