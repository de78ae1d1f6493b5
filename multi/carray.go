package multi

import (
	"fmt"
	"math"
	"math/cmplx"
)

// CArray is the complex128 counterpart of Array: a batched stack of k
// complex matrices, each rows x cols, row-major per block.
type CArray struct {
	k, rows, cols int
	data          []complex128
}

// ZerosC returns a zero-filled complex stack of k rows x cols matrices.
// It panics if any dimension is not positive.
func ZerosC(k, rows, cols int) *CArray {
	if k < 1 || rows < 1 || cols < 1 {
		panic(fmt.Sprintf("multi: invalid array dimensions %dx%dx%d", k, rows, cols))
	}
	return &CArray{k: k, rows: rows, cols: cols, data: make([]complex128, k*rows*cols)}
}

// FromDataC wraps an existing flat complex slice as a batched array
// without copying.
func FromDataC(k, rows, cols int, data []complex128) (*CArray, error) {
	if k < 1 || rows < 1 || cols < 1 || len(data) != k*rows*cols {
		return nil, &ErrShapeMismatch{
			Op:   "multi.FromDataC",
			Want: fmt.Sprintf("%d elements", k*rows*cols),
			Got:  fmt.Sprintf("%d elements for %s", len(data), shapeString(k, rows, cols)),
		}
	}
	return &CArray{k: k, rows: rows, cols: cols, data: data}, nil
}

// Dims returns the batch count and the per-block matrix dimensions.
func (a *CArray) Dims() (k, rows, cols int) { return a.k, a.rows, a.cols }

// K returns the batch count.
func (a *CArray) K() int { return a.k }

// Rows returns the per-block row count.
func (a *CArray) Rows() int { return a.rows }

// Cols returns the per-block column count.
func (a *CArray) Cols() int { return a.cols }

// Data returns the backing slice. Mutating it mutates the array.
func (a *CArray) Data() []complex128 { return a.data }

// Block returns a view of block i as a flat rows x cols row-major slice.
func (a *CArray) Block(i int) []complex128 {
	size := a.rows * a.cols
	return a.data[i*size : (i+1)*size]
}

// At returns element (r, c) of block i.
func (a *CArray) At(i, r, c int) complex128 {
	return a.data[i*a.rows*a.cols+r*a.cols+c]
}

// Set assigns element (r, c) of block i.
func (a *CArray) Set(i, r, c int, v complex128) {
	a.data[i*a.rows*a.cols+r*a.cols+c] = v
}

// Clone returns a deep copy.
func (a *CArray) Clone() *CArray {
	data := make([]complex128, len(a.data))
	copy(data, a.data)
	return &CArray{k: a.k, rows: a.rows, cols: a.cols, data: data}
}

// SameShape reports whether b has identical batch count and block shape.
func (a *CArray) SameShape(b *CArray) bool {
	return a.k == b.k && a.rows == b.rows && a.cols == b.cols
}

func (a *CArray) shapeCheck(op string, b *CArray) error {
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
func (a *CArray) Scale(f complex128) *CArray {
	out := a.Clone()
	for i := range out.data {
		out.data[i] *= f
	}
	return out
}

// Add returns a + b element-wise.
func (a *CArray) Add(b *CArray) (*CArray, error) {
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
func (a *CArray) Sub(b *CArray) (*CArray, error) {
	if err := a.shapeCheck("multi.Sub", b); err != nil {
		return nil, err
	}
	out := a.Clone()
	for i := range out.data {
		out.data[i] -= b.data[i]
	}
	return out, nil
}

// Dot returns the conjugate-bilinear inner product over the whole stack,
// conjugating a.
func (a *CArray) Dot(b *CArray) (complex128, error) {
	if err := a.shapeCheck("multi.Dot", b); err != nil {
		return 0, err
	}
	var sum complex128
	for i := range a.data {
		sum += cmplx.Conj(a.data[i]) * b.data[i]
	}
	return sum, nil
}

// Norm returns the Frobenius norm over the whole stack.
func (a *CArray) Norm() float64 {
	var sum float64
	for _, v := range a.data {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(sum)
}
