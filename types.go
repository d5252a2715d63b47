package geoh3index

// RowOffset is a dense, zero-based ordinal identifying a row within the
// indexed column segment. It mirrors core.LocalID's role in the teacher
// codebase: a 32-bit dense index used for every hot-path structure.
type RowOffset uint32

// MaxRowOffset is the maximum representable RowOffset.
const MaxRowOffset = ^RowOffset(0)

// IndexType names this scalar index kind, matching the original
// GeoH3Index::GetIndexType()'s ScalarIndexType::H3 tag. A caller's index
// registry can use this to discriminate index kinds without a type
// assertion.
const IndexType = "H3"
