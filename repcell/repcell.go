// Package repcell implements the representative-cell resolver: the
// mapping from an arbitrary geometry to a single cell that conservatively
// contains it at an adaptive resolution, climbing the cell hierarchy until
// a single covering cell is found (spec §4.3).
package repcell

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/hupe1980/geoh3index/h3calc"
	"github.com/hupe1980/geoh3index/wkb"
)

// ErrUnsupportedGeometry indicates g.Kind is outside point/line-string/polygon.
type ErrUnsupportedGeometry struct {
	Kind wkb.Kind
}

func (e *ErrUnsupportedGeometry) Error() string {
	return fmt.Sprintf("repcell: unsupported geometry kind %v", e.Kind)
}

// Resolve returns the representative cell for g at max resolution maxRes:
// the finest single cell at resolution <= maxRes that covers every vertex
// of g (contract C1/C2).
//
//   - Point: the cell at maxRes containing the point.
//   - LineString: map every vertex to its cell at maxRes, then climb
//     parents in lock-step until exactly one cell remains.
//   - Polygon: cover the exterior ring with polygon_to_cells at maxRes,
//     then climb the same way. Interior rings are never subtracted — the
//     result is conservative, may overcover (spec design note §9).
func Resolve(g wkb.Geometry, maxRes h3calc.Resolution) (h3calc.CellID, error) {
	switch g.Kind {
	case wkb.KindPoint:
		return h3calc.LatLngToCell(g.Point.Lat(), g.Point.Lon(), maxRes)

	case wkb.KindLineString:
		set := make(map[h3calc.CellID]struct{}, len(g.LineString))
		for _, v := range g.LineString {
			c, err := h3calc.LatLngToCell(v.Lat(), v.Lon(), maxRes)
			if err != nil {
				return 0, err
			}
			set[c] = struct{}{}
		}
		return climb(set, maxRes)

	case wkb.KindPolygon:
		exterior := toLatLngRing(g.ExteriorRing())
		cells, err := h3calc.PolygonToCells(exterior, nil, maxRes)
		if err != nil {
			return 0, err
		}
		set := make(map[h3calc.CellID]struct{}, len(cells))
		for _, c := range cells {
			set[c] = struct{}{}
		}
		if len(set) == 0 {
			// A polygon too small to contain any cell center at maxRes still
			// must resolve to a covering cell: fall back to its first vertex.
			c, err := h3calc.LatLngToCell(exterior[0].Lat, exterior[0].Lng, maxRes)
			if err != nil {
				return 0, err
			}
			set[c] = struct{}{}
		}
		return climb(set, maxRes)

	default:
		return 0, &ErrUnsupportedGeometry{Kind: g.Kind}
	}
}

// climb replaces set with the parents of its members, one resolution at a
// time, until a single cell remains. Starting resolution is cur.
func climb(set map[h3calc.CellID]struct{}, cur h3calc.Resolution) (h3calc.CellID, error) {
	for len(set) > 1 {
		cur--
		next := make(map[h3calc.CellID]struct{}, len(set))
		for c := range set {
			parent, err := h3calc.CellToParent(c, cur)
			if err != nil {
				return 0, err
			}
			next[parent] = struct{}{}
		}
		set = next
	}
	for c := range set {
		return c, nil
	}
	return 0, fmt.Errorf("repcell: empty cell set, geometry had no vertices")
}

func toLatLngRing(ring orb.Ring) []h3calc.LatLng {
	out := make([]h3calc.LatLng, len(ring))
	for i, p := range ring {
		out[i] = h3calc.LatLng{Lat: p.Lat(), Lng: p.Lon()}
	}
	return out
}
