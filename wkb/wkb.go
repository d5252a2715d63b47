// Package wkb decodes well-known-binary geometry values into the closed
// point/line-string/polygon variant the rest of this module operates on.
//
// Decoding is delegated to github.com/paulmach/orb/encoding/wkb; this
// package's only job is to re-wrap the result as a closed tagged union so
// callers switch on Kind instead of type-asserting an open orb.Geometry
// interface (spec §9, "Polymorphism").
package wkb

import (
	"fmt"

	"github.com/paulmach/orb"
	owkb "github.com/paulmach/orb/encoding/wkb"
)

// Kind discriminates the closed geometry variant.
type Kind int

const (
	// KindNull is the sentinel variant for empty input, distinct from every
	// valid geometry variant (spec §4.1).
	KindNull Kind = iota
	KindPoint
	KindLineString
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindPoint:
		return "point"
	case KindLineString:
		return "linestring"
	case KindPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// Geometry is the closed variant produced by Parse. Exactly one of Point,
// LineString, Polygon is meaningful, selected by Kind.
type Geometry struct {
	Kind       Kind
	Point      orb.Point
	LineString orb.LineString
	Polygon    orb.Polygon
}

// ErrUnsupportedGeometry indicates a WKB geometry type outside
// point/line-string/polygon (e.g. multi-geometries, collections).
type ErrUnsupportedGeometry struct {
	Kind string
}

func (e *ErrUnsupportedGeometry) Error() string {
	return fmt.Sprintf("wkb: unsupported geometry type %q", e.Kind)
}

// ErrMalformed wraps a decode failure from the underlying codec.
type ErrMalformed struct {
	cause error
}

func (e *ErrMalformed) Error() string { return fmt.Sprintf("wkb: malformed input: %v", e.cause) }
func (e *ErrMalformed) Unwrap() error { return e.cause }

// Parse decodes data as little-endian WKB. Empty input maps to
// Geometry{Kind: KindNull}, a sentinel distinct from every valid variant.
func Parse(data []byte) (Geometry, error) {
	if len(data) == 0 {
		return Geometry{Kind: KindNull}, nil
	}

	geom, err := owkb.Unmarshal(data)
	if err != nil {
		return Geometry{}, &ErrMalformed{cause: err}
	}

	switch g := geom.(type) {
	case orb.Point:
		return Geometry{Kind: KindPoint, Point: g}, nil
	case orb.LineString:
		return Geometry{Kind: KindLineString, LineString: g}, nil
	case orb.Polygon:
		return Geometry{Kind: KindPolygon, Polygon: g}, nil
	default:
		return Geometry{}, &ErrUnsupportedGeometry{Kind: geom.GeoJSONType()}
	}
}

// Vertices returns every vertex of g in ring/path order, regardless of
// variant. For polygons this includes interior-ring vertices, matching
// the "every vertex of g" language used by the coverage invariant (P1).
func (g Geometry) Vertices() []orb.Point {
	switch g.Kind {
	case KindPoint:
		return []orb.Point{g.Point}
	case KindLineString:
		return g.LineString
	case KindPolygon:
		var out []orb.Point
		for _, ring := range g.Polygon {
			out = append(out, ring...)
		}
		return out
	default:
		return nil
	}
}

// ExteriorRing returns the polygon's outer ring. Panics if Kind != KindPolygon.
func (g Geometry) ExteriorRing() orb.Ring {
	return g.Polygon[0]
}

// InteriorRings returns the polygon's holes, if any. Panics if Kind != KindPolygon.
func (g Geometry) InteriorRings() []orb.Ring {
	if len(g.Polygon) <= 1 {
		return nil
	}
	return g.Polygon[1:]
}
