package catalog

import "math"

// Where is a WHERE clause tree: either a leaf comparison (Field Op
// Literal) or an And/Or combination of two sub-clauses.
type Where struct {
	Op      string // "=", "<", ">", "and", "or"
	Field   string
	Literal Value

	Left, Right *Where
}

func Equals(field string, v Value) *Where      { return &Where{Op: "=", Field: field, Literal: v} }
func LessThan(field string, v Value) *Where    { return &Where{Op: "<", Field: field, Literal: v} }
func GreaterThan(field string, v Value) *Where { return &Where{Op: ">", Field: field, Literal: v} }
func And(l, r *Where) *Where                   { return &Where{Op: "and", Left: l, Right: r} }
func Or(l, r *Where) *Where                     { return &Where{Op: "or", Left: l, Right: r} }

// rangeFor converts a leaf comparison into the [lo, hi] key range
// pkg/bplustree.SearchRange scans: "<" v searches [0, max(0, v-1)] and
// ">" v searches [v+1, MaxInt64]. Only "<" is clamped to non-negative
// keys, a deliberate simplification (see DESIGN.md); ">" with a negative
// v still scans negative keys from v+1 up.
func rangeFor(op string, key int64) (lo, hi int64) {
	switch op {
	case "=":
		return key, key
	case "<":
		hi = key - 1
		if hi < 0 {
			hi = 0
		}
		return 0, hi
	case ">":
		lo = key + 1
		return lo, math.MaxInt64
	default:
		return 0, 0
	}
}

func intersectUIDs(a, b []uint64) []uint64 {
	set := make(map[uint64]struct{}, len(b))
	for _, u := range b {
		set[u] = struct{}{}
	}
	var out []uint64
	for _, u := range a {
		if _, ok := set[u]; ok {
			out = append(out, u)
		}
	}
	return out
}
