package domain

// Decide applies the decision rule: it reports whether every belief is
// strictly greater than threshold. An empty belief vector is accepted
// vacuously. NaN never compares greater, so any NaN belief rejects.
func Decide(beliefs []float64, threshold float64) bool {
	for _, b := range beliefs {
		if !(b > threshold) {
			return false
		}
	}
	return true
}

// Unanimous folds verdicts with logical AND. It is true for an empty slice.
func Unanimous(verdicts []bool) bool {
	all := true
	for _, v := range verdicts {
		all = all && v
	}
	return all
}
