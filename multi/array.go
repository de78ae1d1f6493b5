package multi

import (
	"fmt"
	"math"
)

// Array is a batched stack of k real matrices, each rows x cols, stored
// row-major per block in one flat slice. The zero value is not usable;
// use Zeros or FromData.
//
// An Array is not safe for concurrent mutation, but all package-level
// operations treat their inputs as read-only.
type Array struct {
	k, rows, cols int
	data          []float64
}

// Zeros returns a zero-filled stack of k rows x cols matrices.
// It panics if any dimension is not positive; invalid dimensions are a
// programming error, not an input condition.
func Zeros(k, rows, cols int) *Array {
	if k < 1 || rows < 1 || cols < 1 {
		panic(fmt.Sprintf("multi: invalid array dimensions %dx%dx%d", k, rows, cols))
	}
	return &Array{k: k, rows: rows, cols: cols, data: make([]float64, k*rows*cols)}
}

// FromData wraps an existing flat slice as a batched array without
// copying. The slice length must equal k*rows*cols.
func FromData(k, rows, cols int, data []float64) (*Array, error) {
	if k < 1 || rows < 1 || cols < 1 || len(data) != k*rows*cols {
		return nil, &ErrShapeMismatch{
			Op:   "multi.FromData",
			Want: fmt.Sprintf("%d elements", k*rows*cols),
			Got:  fmt.Sprintf("%d elements for %s", len(data), shapeString(k, rows, cols)),
		}
	}
	return &Array{k: k, rows: rows, cols: cols, data: data}, nil
}

// Dims returns the batch count and the per-block matrix dimensions.
func (a *Array) Dims() (k, rows, cols int) { return a.k, a.rows, a.cols }

// K returns the batch count.
func (a *Array) K() int { return a.k }

// Rows returns the per-block row count.
func (a *Array) Rows() int { return a.rows }

// Cols returns the per-block column count.
func (a *Array) Cols() int { return a.cols }

// Data returns the backing slice. Mutating it mutates the array.
func (a *Array) Data() []float64 { return a.data }

// Block returns a view of block i as a flat rows x cols row-major slice.
func (a *Array) Block(i int) []float64 {
	size := a.rows * a.cols
	return a.data[i*size : (i+1)*size]
}

// At returns element (r, c) of block i.
func (a *Array) At(i, r, c int) float64 {
	return a.data[i*a.rows*a.cols+r*a.cols+c]
}

// Set assigns element (r, c) of block i.
func (a *Array) Set(i, r, c int, v float64) {
	a.data[i*a.rows*a.cols+r*a.cols+c] = v
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	data := make([]float64, len(a.data))
	copy(data, a.data)
	return &Array{k: a.k, rows: a.rows, cols: a.cols, data: data}
}

// SameShape reports whether b has identical batch count and block shape.
func (a *Array) SameShape(b *Array) bool {
	return a.k == b.k && a.rows == b.rows && a.cols == b.cols
}

func (a *Array) shapeCheck(op string, b *Array) error {
	if !a.SameShape(b) {
		return &ErrShapeMismatch{
			Op:   op,
			Want: shapeString(a.k, a.rows, a.cols),
			Got:  shapeString(b.k, b.rows, b.cols),
		}
	}
	return nil
}

// Scale returns a * f element-wise.
func (a *Array) Scale(f float64) *Array {
	out := a.Clone()
	for i := range out.data {
		out.data[i] *= f
	}
	return out
}

// Add returns a + b element-wise.
func (a *Array) Add(b *Array) (*Array, error) {
	if err := a.shapeCheck("multi.Add", b); err != nil {
		return nil, err
	}
	out := a.Clone()
	for i := range out.data {
		out.data[i] += b.data[i]
	}
	return out, nil
}

// Sub returns a - b element-wise.
func (a *Array) Sub(b *Array) (*Array, error) {
	if err := a.shapeCheck("multi.Sub", b); err != nil {
		return nil, err
	}
	out := a.Clone()
	for i := range out.data {
		out.data[i] -= b.data[i]
	}
	return out, nil
}

// Dot returns the flat Euclidean inner product over the whole stack.
func (a *Array) Dot(b *Array) (float64, error) {
	if err := a.shapeCheck("multi.Dot", b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a.data {
		sum += a.data[i] * b.data[i]
	}
	return sum, nil
}

// Norm returns the Frobenius norm over the whole stack.
func (a *Array) Norm() float64 {
	var sum float64
	for _, v := range a.data {
		sum += v * v
	}
	return math.Sqrt(sum)
}
