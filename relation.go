package geoh3index

// RelationOp selects one of the seven spatial predicates ExecGeoRelations
// can evaluate. It is a closed enum dispatched by switch, never an open
// string or plugin registry (spec §9, "Polymorphism").
type RelationOp int

const (
	RelationEquals RelationOp = iota
	RelationTouches
	RelationOverlaps
	RelationCrosses
	RelationContains
	RelationIntersects
	RelationWithin
)

func (op RelationOp) String() string {
	switch op {
	case RelationEquals:
		return "Equals"
	case RelationTouches:
		return "Touches"
	case RelationOverlaps:
		return "Overlaps"
	case RelationCrosses:
		return "Crosses"
	case RelationContains:
		return "Contains"
	case RelationIntersects:
		return "Intersects"
	case RelationWithin:
		return "Within"
	default:
		return "Unknown"
	}
}

// GeometryPredicates is the exact-predicate collaborator ExecGeoRelations
// delegates to. The index treats it as a black box operating on two raw
// WKB values — it never reimplements spatial algebra itself (spec §4.4.4).
type GeometryPredicates interface {
	Equals(a, b []byte) (bool, error)
	Touches(a, b []byte) (bool, error)
	Overlaps(a, b []byte) (bool, error)
	Crosses(a, b []byte) (bool, error)
	Contains(a, b []byte) (bool, error)
	Intersects(a, b []byte) (bool, error)
	Within(a, b []byte) (bool, error)
}

// evalRelation dispatches op against a single (row, query) WKB pair.
func evalRelation(p GeometryPredicates, op RelationOp, row, query []byte) (bool, error) {
	switch op {
	case RelationEquals:
		return p.Equals(row, query)
	case RelationTouches:
		return p.Touches(row, query)
	case RelationOverlaps:
		return p.Overlaps(row, query)
	case RelationCrosses:
		return p.Crosses(row, query)
	case RelationContains:
		return p.Contains(row, query)
	case RelationIntersects:
		return p.Intersects(row, query)
	case RelationWithin:
		return p.Within(row, query)
	default:
		return false, &ErrUnsupportedGeometry{Kind: "invalid RelationOp"}
	}
}
