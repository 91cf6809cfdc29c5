// Package mapview is the boundary to the map SDK: the core only issues
// commands to a View and keeps its own side table from opaque marker handles
// to records.
package mapview

import (
	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
)

// Handle identifies one marker on the map. It carries no record data.
type Handle uint64

// View receives map commands. Implementations must not call back into the
// core.
type View interface {
	SetVisible(h Handle, visible bool)
	FitBounds(bb model.BBox)
	SetCenter(p model.LatLng)
	SetZoom(z float64)
}

// Viewport is a center/zoom pair, used to restore the initial view.
type Viewport struct {
	Center model.LatLng `json:"center"`
	Zoom   float64      `json:"zoom"`
}

// Discard ignores every command.
type Discard struct{}

func (Discard) SetVisible(Handle, bool) {}
func (Discard) FitBounds(model.BBox)    {}
func (Discard) SetCenter(model.LatLng)  {}
func (Discard) SetZoom(float64)         {}
