package classifier

import "sort"

// SparseVector is one transformed document. Indices are strictly ascending.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// At returns the value of column i, or zero when the column is not stored.
func (v SparseVector) At(i int) float64 {
	k := sort.SearchInts(v.Indices, i)
	if k < len(v.Indices) && v.Indices[k] == i {
		return v.Values[k]
	}
	return 0
}

// Dot returns the inner product with a dense weight vector. Columns are
// visited in ascending order so the sum is reproducible.
func (v SparseVector) Dot(w []float64) float64 {
	var sum float64
	for k, i := range v.Indices {
		sum += v.Values[k] * w[i]
	}
	return sum
}
