package diag

// Ranger wraps the Range method.
type Ranger interface {
	// Range returns the range associated with the value.
	Range() Ranging
}

// Ranging represents a range [From, To) within a piece of source code. Structs
// can embed Ranging to satisfy the Ranger interface.
type Ranging struct {
	From int
	To   int
}

// Range returns the Ranging itself.
func (r Ranging) Range() Ranging { return r }

// PointRanging returns a zero-width Ranging at the given point.
func PointRanging(p int) Ranging {
	return Ranging{p, p}
}

// Contains reports whether the index p lies within the range. The end of the
// range counts as inside, so that a cursor placed right after a fragment still
// refers to it.
func (r Ranging) Contains(p int) bool {
	return r.From <= p && p <= r.To
}
