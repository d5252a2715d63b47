// Package predicate provides a default GeometryPredicates implementation
// for the seven spatial relations ExecGeoRelations can evaluate.
//
// The index itself treats these predicates as a black box (spec §4.4.4,
// §1 "exact geometric predicate kernels... treated as a black-box
// library"); this package is one concrete, pluggable implementation, built
// on ring/segment primitives over github.com/paulmach/orb geometry types.
// A production deployment embedding this index is expected to supply a
// more complete predicate library (e.g. a GEOS binding) via
// geoh3index.WithPredicates.
package predicate

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/hupe1980/geoh3index/wkb"
)

// Predicates is the default implementation, grounded on point-in-ring and
// segment-intersection primitives.
type Predicates struct{}

// New returns the default GeometryPredicates implementation.
func New() *Predicates {
	return &Predicates{}
}

func (p *Predicates) Equals(a, b []byte) (bool, error)     { return relate(a, b, equals) }
func (p *Predicates) Touches(a, b []byte) (bool, error)    { return relate(a, b, touches) }
func (p *Predicates) Overlaps(a, b []byte) (bool, error)   { return relate(a, b, overlaps) }
func (p *Predicates) Crosses(a, b []byte) (bool, error)    { return relate(a, b, crosses) }
func (p *Predicates) Contains(a, b []byte) (bool, error)   { return relate(a, b, contains) }
func (p *Predicates) Intersects(a, b []byte) (bool, error) { return relate(a, b, intersects) }
func (p *Predicates) Within(a, b []byte) (bool, error)     { return relate(a, b, within) }

type relFunc func(a, b wkb.Geometry) bool

func relate(rawA, rawB []byte, f relFunc) (bool, error) {
	a, err := wkb.Parse(rawA)
	if err != nil {
		return false, err
	}
	b, err := wkb.Parse(rawB)
	if err != nil {
		return false, err
	}
	if a.Kind == wkb.KindNull || b.Kind == wkb.KindNull {
		return false, nil
	}
	return f(a, b), nil
}

func within(a, b wkb.Geometry) bool     { return contains(b, a) }
func intersects(a, b wkb.Geometry) bool { return !disjoint(a, b) }

func equals(a, b wkb.Geometry) bool {
	va, vb := a.Vertices(), b.Vertices()
	if len(va) != len(vb) {
		return false
	}
	for i := range va {
		if !pointsEqual(va[i], vb[i]) {
			return false
		}
	}
	return true
}

func disjoint(a, b wkb.Geometry) bool {
	for _, pa := range a.Vertices() {
		if pointIn(pa, b) {
			return false
		}
	}
	for _, pb := range b.Vertices() {
		if pointIn(pb, a) {
			return false
		}
	}
	return !segmentsCross(a, b)
}

// contains reports whether every point of b lies within or on the
// boundary of a (approximate DE-9IM "Contains").
func contains(a, b wkb.Geometry) bool {
	for _, pb := range b.Vertices() {
		if !pointIn(pb, a) {
			return false
		}
	}
	return true
}

// overlaps reports whether a and b share interior points but neither
// contains the other.
func overlaps(a, b wkb.Geometry) bool {
	if contains(a, b) || contains(b, a) {
		return false
	}
	return !disjoint(a, b) && interiorsOverlap(a, b)
}

// touches reports whether a and b share only boundary points, no interior
// overlap.
func touches(a, b wkb.Geometry) bool {
	if disjoint(a, b) {
		return false
	}
	return !interiorsOverlap(a, b)
}

// crosses reports whether a and b intersect in a set of lower dimension
// than the higher-dimensioned operand, approximated here as: they are not
// both polygons, they intersect, their contact is not boundary-only (they
// do not touch), and neither contains the other.
func crosses(a, b wkb.Geometry) bool {
	if a.Kind == wkb.KindPolygon && b.Kind == wkb.KindPolygon {
		return false
	}
	if disjoint(a, b) {
		return false
	}
	return !touches(a, b) && !contains(a, b) && !contains(b, a)
}

func interiorsOverlap(a, b wkb.Geometry) bool {
	// Boundary-only contact means no vertex of either geometry lies
	// strictly inside the other's interior.
	for _, pa := range a.Vertices() {
		if strictlyInside(pa, b) {
			return true
		}
	}
	for _, pb := range b.Vertices() {
		if strictlyInside(pb, a) {
			return true
		}
	}
	return false
}

func pointsEqual(a, b orb.Point) bool {
	const eps = 1e-9
	return math.Abs(a.X()-b.X()) < eps && math.Abs(a.Y()-b.Y()) < eps
}

// pointIn reports whether pt lies within or on the boundary of g.
func pointIn(pt orb.Point, g wkb.Geometry) bool {
	switch g.Kind {
	case wkb.KindPoint:
		return pointsEqual(pt, g.Point)
	case wkb.KindLineString:
		return pointOnPath(pt, g.LineString)
	case wkb.KindPolygon:
		if !pointInRing(pt, g.ExteriorRing()) {
			return false
		}
		for _, hole := range g.InteriorRings() {
			if pointInRing(pt, hole) && !pointOnPath(pt, orb.LineString(hole)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// strictlyInside reports whether pt lies inside g's interior, excluding
// its boundary. Used to distinguish touches from overlaps/crosses.
func strictlyInside(pt orb.Point, g wkb.Geometry) bool {
	if g.Kind != wkb.KindPolygon {
		return false
	}
	return pointInRing(pt, g.ExteriorRing()) && !pointOnPath(pt, orb.LineString(g.ExteriorRing()))
}

// pointInRing is a standard ray-casting point-in-polygon test, inclusive
// of the boundary.
func pointInRing(pt orb.Point, ring orb.Ring) bool {
	if pointOnPath(pt, orb.LineString(ring)) {
		return true
	}
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Y() > pt.Y()) != (pj.Y() > pt.Y()) {
			xCross := pi.X() + (pt.Y()-pi.Y())/(pj.Y()-pi.Y())*(pj.X()-pi.X())
			if pt.X() < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

func pointOnPath(pt orb.Point, path orb.LineString) bool {
	for i := 0; i+1 < len(path); i++ {
		if pointOnSegment(pt, path[i], path[i+1]) {
			return true
		}
	}
	return false
}

func pointOnSegment(pt, a, b orb.Point) bool {
	const eps = 1e-9
	cross := (b.X()-a.X())*(pt.Y()-a.Y()) - (b.Y()-a.Y())*(pt.X()-a.X())
	if math.Abs(cross) > eps {
		return false
	}
	return pt.X() >= math.Min(a.X(), b.X())-eps && pt.X() <= math.Max(a.X(), b.X())+eps &&
		pt.Y() >= math.Min(a.Y(), b.Y())-eps && pt.Y() <= math.Max(a.Y(), b.Y())+eps
}

func segmentsCross(a, b wkb.Geometry) bool {
	segsA := segmentsOf(a)
	segsB := segmentsOf(b)
	for _, sa := range segsA {
		for _, sb := range segsB {
			if segmentsIntersect(sa[0], sa[1], sb[0], sb[1]) {
				return true
			}
		}
	}
	return false
}

func segmentsOf(g wkb.Geometry) [][2]orb.Point {
	var path orb.LineString
	switch g.Kind {
	case wkb.KindLineString:
		path = g.LineString
	case wkb.KindPolygon:
		path = orb.LineString(g.ExteriorRing())
	default:
		return nil
	}
	segs := make([][2]orb.Point, 0, len(path))
	for i := 0; i+1 < len(path); i++ {
		segs = append(segs, [2]orb.Point{path[i], path[i+1]})
	}
	return segs
}

func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

func direction(a, b, c orb.Point) float64 {
	return (b.X()-a.X())*(c.Y()-a.Y()) - (b.Y()-a.Y())*(c.X()-a.X())
}

func onSegment(a, b, pt orb.Point) bool {
	return math.Min(a.X(), b.X()) <= pt.X() && pt.X() <= math.Max(a.X(), b.X()) &&
		math.Min(a.Y(), b.Y()) <= pt.Y() && pt.Y() <= math.Max(a.Y(), b.Y())
}
