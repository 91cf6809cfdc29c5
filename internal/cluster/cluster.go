// Package cluster groups marker positions into H3 cells so a view can draw
// one cluster icon per cell instead of overlapping markers.
package cluster

import (
	"fmt"
	"math"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
)

const (
	MinRes = 0
	MaxRes = 15
)

// Cluster is the group of records whose positions fall in one cell.
type Cluster struct {
	Cell   string       `json:"cell"`
	Res    int          `json:"res"`
	Center model.LatLng `json:"center"`
	Count  int          `json:"count"`
	// bounds of the member positions, south/west/north/east
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
	// member record names, in record order
	Names []string `json:"names"`
}

func validateRes(res int) error {
	if res < MinRes || res > MaxRes {
		return fmt.Errorf("invalid H3 resolution %d (must be %d..%d)", res, MinRes, MaxRes)
	}
	return nil
}

// ResForZoom picks the cell resolution for a web map zoom level: about one
// resolution step per 1.3 zoom levels, so a cell spans a few dozen pixels.
func ResForZoom(zoom float64) int {
	if math.IsNaN(zoom) {
		return MinRes
	}
	res := int(math.Round((zoom - 3) * 0.75))
	return min(max(res, MinRes), MaxRes)
}

// Group assigns every record to its cell at res. The result is sorted by
// cell for determinism.
func Group(records []model.Record, res int) ([]Cluster, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	byCell := make(map[h3.Cell]*Cluster)
	for _, r := range records {
		cell, err := h3.LatLngToCell(h3.LatLng{Lat: r.Position.Lat, Lng: r.Position.Lng}, res)
		if err != nil {
			return nil, fmt.Errorf("h3 cell for %q: %w", r.Name, err)
		}
		c, ok := byCell[cell]
		if !ok {
			c = &Cluster{
				Cell:  cell.String(),
				Res:   res,
				South: r.Position.Lat, North: r.Position.Lat,
				West: r.Position.Lng, East: r.Position.Lng,
			}
			byCell[cell] = c
		}
		c.add(r.Position, 1, r.Name)
	}
	return finish(byCell)
}

func (c *Cluster) add(p model.LatLng, n int, names ...string) {
	c.Count += n
	c.South = min(c.South, p.Lat)
	c.North = max(c.North, p.Lat)
	c.West = min(c.West, p.Lng)
	c.East = max(c.East, p.Lng)
	c.Names = append(c.Names, names...)
}

// Coarsen merges clusters into their parents at res, which must not exceed
// the resolution of any input cluster.
func Coarsen(clusters []Cluster, res int) ([]Cluster, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	byCell := make(map[h3.Cell]*Cluster)
	for _, in := range clusters {
		var cell h3.Cell
		if err := cell.UnmarshalText([]byte(in.Cell)); err != nil {
			return nil, fmt.Errorf("parse cell: %w", err)
		}
		if !cell.IsValid() {
			return nil, fmt.Errorf("invalid h3 cell %q", in.Cell)
		}
		if cur := cell.Resolution(); res > cur {
			return nil, fmt.Errorf("parent res %d must be <= cell resolution %d", res, cur)
		}
		parent, err := cell.Parent(res)
		if err != nil {
			return nil, fmt.Errorf("h3 parent: %w", err)
		}
		c, ok := byCell[parent]
		if !ok {
			c = &Cluster{
				Cell: parent.String(), Res: res,
				South: in.South, North: in.North, West: in.West, East: in.East,
			}
			byCell[parent] = c
		}
		c.add(model.LatLng{Lat: in.South, Lng: in.West}, 0)
		c.add(model.LatLng{Lat: in.North, Lng: in.East}, in.Count, in.Names...)
	}
	return finish(byCell)
}

func finish(byCell map[h3.Cell]*Cluster) ([]Cluster, error) {
	out := make([]Cluster, 0, len(byCell))
	for cell, c := range byCell {
		ll, err := cell.LatLng()
		if err != nil {
			return nil, fmt.Errorf("h3 cell center: %w", err)
		}
		c.Center = model.LatLng{Lat: ll.Lat, Lng: ll.Lng}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cell < out[j].Cell })
	return out, nil
}
