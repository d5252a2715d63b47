// Package h3calc is a thin semantic façade over the hierarchical hexagonal
// discrete global grid library (github.com/uber/h3-go/v4, the same H3
// system the original C++ implementation links against via h3/h3api.h).
//
// Every function here is pure: no I/O, no shared state. Numeric failures
// from the backing library surface as *CellCalculusError.
package h3calc

import (
	"fmt"

	"github.com/uber/h3-go/v4"
)

// CellID is an opaque identifier of a cell in the grid. It carries an
// implicit resolution in [0,15] recoverable via Resolution.
type CellID uint64

// Resolution selects cell size in [0,15]; higher values mean smaller cells.
type Resolution int

// MinResolution and MaxResolution bound the valid range.
const (
	MinResolution Resolution = 0
	MaxResolution Resolution = 15
)

// CellCalculusError wraps a failure from the backing grid library.
type CellCalculusError struct {
	Op    string
	cause error
}

func (e *CellCalculusError) Error() string {
	return fmt.Sprintf("h3calc: %s: %v", e.Op, e.cause)
}

func (e *CellCalculusError) Unwrap() error { return e.cause }

// ValidateResolution reports whether r is in [0,15].
func ValidateResolution(r int) bool {
	return r >= int(MinResolution) && r <= int(MaxResolution)
}

// LatLngToCell maps a geographic point to its cell at resolution r.
// Deterministic for identical inputs and identical backing-library
// versions (contract C3).
func LatLngToCell(lat, lng float64, r Resolution) (CellID, error) {
	cell := h3.LatLngToCell(h3.NewLatLng(lat, lng), int(r))
	return CellID(cell), nil
}

// CellToParent returns the ancestor of c at resolution r, where
// r <= Resolution(c).
func CellToParent(c CellID, r Resolution) (CellID, error) {
	if r > Resolution(h3.Cell(c).Resolution()) {
		return 0, &CellCalculusError{Op: "CellToParent", cause: fmt.Errorf("target resolution %d finer than cell resolution %d", r, h3.Cell(c).Resolution())}
	}
	if r < MinResolution {
		return 0, &CellCalculusError{Op: "CellToParent", cause: fmt.Errorf("target resolution %d below minimum resolution %d", r, MinResolution)}
	}
	parent := h3.Cell(c).Parent(int(r))
	return CellID(parent), nil
}

// CellToChildren returns every descendant of c at the finer resolution r,
// where r > Resolution(c). Order is library-defined but stable across
// calls for identical inputs.
func CellToChildren(c CellID, r Resolution) ([]CellID, error) {
	if r <= Resolution(h3.Cell(c).Resolution()) {
		return nil, &CellCalculusError{Op: "CellToChildren", cause: fmt.Errorf("target resolution %d not finer than cell resolution %d", r, h3.Cell(c).Resolution())}
	}
	children := h3.Cell(c).Children(int(r))
	out := make([]CellID, len(children))
	for i, ch := range children {
		out[i] = CellID(ch)
	}
	return out, nil
}

// CellToChildrenCount returns the number of descendants of c at
// resolution r without materializing them, so callers can decide whether
// to stream rather than buffer (spec §4.4.2 complexity note).
func CellToChildrenCount(c CellID, r Resolution) (int64, error) {
	n := int(r) - h3.Cell(c).Resolution()
	if n < 0 {
		return 0, nil
	}
	hex := int64(1)
	for i := 0; i < n; i++ {
		hex *= 7
	}
	if h3.Cell(c).IsPentagon() {
		// A pentagon has one pentagonal and five hexagonal children per level.
		return 1 + 5*(hex-1)/6, nil
	}
	return hex, nil
}

// LatLng is a geographic point in (lat, lng) order, matching the data
// model's coordinate convention.
type LatLng struct {
	Lat, Lng float64
}

// PolygonToCells returns every cell at resolution r whose center lies
// inside the polygon (exterior minus holes). exterior and holes are
// vertex rings in (lat, lng) order.
func PolygonToCells(exterior []LatLng, holes [][]LatLng, r Resolution) ([]CellID, error) {
	geoPolygon := h3.GeoPolygon{
		GeoLoop: toGeoLoop(exterior),
		Holes:   make([]h3.GeoLoop, len(holes)),
	}
	for i, hole := range holes {
		geoPolygon.Holes[i] = toGeoLoop(hole)
	}

	cells := h3.PolygonToCells(geoPolygon, int(r))
	out := make([]CellID, len(cells))
	for i, c := range cells {
		out[i] = CellID(c)
	}
	return out, nil
}

func toGeoLoop(pts []LatLng) h3.GeoLoop {
	loop := make(h3.GeoLoop, len(pts))
	for i, p := range pts {
		loop[i] = h3.NewLatLng(p.Lat, p.Lng)
	}
	return loop
}

// IsValidCell reports whether c is a well-formed cell identifier.
func IsValidCell(c CellID) bool {
	return h3.Cell(c).IsValid()
}

// CellResolution extracts the implicit resolution carried by c.
func CellResolution(c CellID) Resolution {
	return Resolution(h3.Cell(c).Resolution())
}
