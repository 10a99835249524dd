package ndarray

import "gonum.org/v1/gonum/mat"

// FromDense copies a gonum matrix into a 2-D Float64 array with the same
// row-major layout.
func FromDense(m mat.Matrix) *Array {
	r, c := m.Dims()
	a := New(Float64, r, c)
	out := a.Float64s()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[i*c+j] = m.At(i, j)
		}
	}
	return a
}

// Dense copies a 2-D Float64 array into a new gonum Dense matrix.
// Panics if the array is not rank-2 Float64.
func (a *Array) Dense() *mat.Dense {
	if a.Rank() != 2 {
		panic("ndarray: Dense requires a rank-2 array")
	}
	data := make([]float64, a.Len())
	copy(data, a.Float64s())
	return mat.NewDense(a.shape[0], a.shape[1], data)
}
