package domain

// Overlaps reports whether the half-open windows [aFrom, aTo) and
// [bFrom, bTo) intersect. Bounds are ISO-8601 strings compared
// lexicographically, which for UTC timestamps of equal precision matches
// chronological order. Touching windows ([t0,t1) and [t1,t2)) do not
// overlap.
func Overlaps(aFrom, aTo, bFrom, bTo string) bool {
	return !(aTo <= bFrom || aFrom >= bTo)
}
