// Package model defines core domain types shared across the service.
package model

import "fmt"

// LatLng is a WGS84 position in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BBox is a lon/lat bounding box (X = longitude, Y = latitude).
type BBox struct {
	X1, Y1 float64
	X2, Y2 float64
	SRID   string
}

// String representation matching the wfs/wms bbox format
func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f,%s", b.X1, b.Y1, b.X2, b.Y2, b.SRID)
}

// Extend grows the box to cover p.
func (b BBox) Extend(p LatLng) BBox {
	if p.Lng < b.X1 {
		b.X1 = p.Lng
	}
	if p.Lng > b.X2 {
		b.X2 = p.Lng
	}
	if p.Lat < b.Y1 {
		b.Y1 = p.Lat
	}
	if p.Lat > b.Y2 {
		b.Y2 = p.Lat
	}
	return b
}

// PointBBox is the degenerate box around a single position.
func PointBBox(p LatLng) BBox {
	return BBox{X1: p.Lng, Y1: p.Lat, X2: p.Lng, Y2: p.Lat, SRID: "EPSG:4326"}
}

// Record is a vakuf entry as stored in the document store. The core treats it
// as immutable.
type Record struct {
	Name                  string `json:"vakufName"`
	Type                  string `json:"vakufType"`
	City                  string `json:"city"`
	CadastralMunicipality string `json:"cadastralMunicipality,omitempty"`
	ParcelID              string `json:"cadastralParcelNumber"`
	RealEstateNumber      string `json:"realEstateNumber,omitempty"`
	AreaSize              string `json:"areaSize,omitempty"`
	YearFounded           string `json:"yearFounded,omitempty"`
	StreetName            string `json:"streetName,omitempty"`
	Image                 string `json:"vakufImage,omitempty"`
	Position              LatLng `json:"position"`
}

// Vakuf object types.
const (
	TypeMosque   = "Džamija"
	TypeBuilding = "Zgrada"
	TypeMeadow   = "Livada"
	TypeForest   = "Šuma"
	TypeCemetery = "Groblje"
)

// Types lists the vakuf object types in dropdown order.
func Types() []string {
	return []string{TypeMosque, TypeBuilding, TypeMeadow, TypeForest, TypeCemetery}
}

// Cities lists the Sandžak municipalities offered by the city dropdown.
func Cities() []string {
	return []string{
		"Novi Pazar",
		"Tutin",
		"Sjenica",
		"Prijepolje",
		"Priboj",
		"Nova Varoš",
		"Pljevlja",
		"Bijelo Polje",
		"Berane",
		"Rožaje",
		"Plav",
		"Gusinje",
		"Petnjica",
	}
}
