package multi

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/riemgo/internal/lin"
)

// parallelThreshold is the batch size above which per-block loops with
// heavy work fan out across goroutines.
const parallelThreshold = 4

// EachBlock runs fn once per block index in [0, k). Blocks are fully
// independent, so larger batches fan out across goroutines; results are
// deterministic either way. The first error wins.
func EachBlock(k int, fn func(i int) error) error {
	if k < parallelThreshold {
		for i := 0; i < k; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < k; i++ {
		i := i
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

// Prod multiplies corresponding blocks of a and b: out[i] = a[i] * b[i].
// Block shapes must be compatible for matrix multiplication and batch
// counts must agree.
func Prod(a, b *Array) (*Array, error) {
	if a.k != b.k || a.cols != b.rows {
		return nil, &ErrShapeMismatch{
			Op:   "multi.Prod",
			Want: fmt.Sprintf("k=%d, %d rows", a.k, a.cols),
			Got:  shapeString(b.k, b.rows, b.cols),
		}
	}
	out := Zeros(a.k, a.rows, b.cols)
	for i := 0; i < a.k; i++ {
		copy(out.Block(i), lin.MatMul(a.rows, a.cols, b.cols, a.Block(i), b.Block(i)))
	}
	return out, nil
}

// ProdC is the complex counterpart of Prod.
func ProdC(a, b *CArray) (*CArray, error) {
	if a.k != b.k || a.cols != b.rows {
		return nil, &ErrShapeMismatch{
			Op:   "multi.ProdC",
			Want: fmt.Sprintf("k=%d, %d rows", a.k, a.cols),
			Got:  shapeString(b.k, b.rows, b.cols),
		}
	}
	out := ZerosC(a.k, a.rows, b.cols)
	for i := 0; i < a.k; i++ {
		copy(out.Block(i), lin.CMatMul(a.rows, a.cols, b.cols, a.Block(i), b.Block(i)))
	}
	return out, nil
}

// Transp transposes the trailing two axes of every block, leaving the
// batch axis untouched.
func Transp(a *Array) *Array {
	out := Zeros(a.k, a.cols, a.rows)
	for i := 0; i < a.k; i++ {
		copy(out.Block(i), lin.Transpose(a.rows, a.cols, a.Block(i)))
	}
	return out
}

// TranspC transposes the trailing two axes of every complex block
// without conjugation.
func TranspC(a *CArray) *CArray {
	out := ZerosC(a.k, a.cols, a.rows)
	for i := 0; i < a.k; i++ {
		src := a.Block(i)
		dst := out.Block(i)
		for r := 0; r < a.rows; r++ {
			for c := 0; c < a.cols; c++ {
				dst[c*a.rows+r] = src[r*a.cols+c]
			}
		}
	}
	return out
}

// HConj conjugate-transposes the trailing two axes of every block.
func HConj(a *CArray) *CArray {
	out := ZerosC(a.k, a.cols, a.rows)
	for i := 0; i < a.k; i++ {
		copy(out.Block(i), lin.CHConj(a.rows, a.cols, a.Block(i)))
	}
	return out
}

// Sym symmetrizes every block: 0.5 * (A + A^T). Blocks must be square.
func Sym(a *Array) (*Array, error) {
	if a.rows != a.cols {
		return nil, &ErrShapeMismatch{
			Op:   "multi.Sym",
			Want: "square blocks",
			Got:  shapeString(a.k, a.rows, a.cols),
		}
	}
	out := a.Clone()
	n := a.rows
	for i := 0; i < a.k; i++ {
		blk := out.Block(i)
		for r := 0; r < n; r++ {
			for c := r + 1; c < n; c++ {
				v := 0.5 * (blk[r*n+c] + blk[c*n+r])
				blk[r*n+c] = v
				blk[c*n+r] = v
			}
		}
	}
	return out, nil
}

// Skew skew-symmetrizes every block: 0.5 * (A - A^T). Blocks must be
// square.
func Skew(a *Array) (*Array, error) {
	if a.rows != a.cols {
		return nil, &ErrShapeMismatch{
			Op:   "multi.Skew",
			Want: "square blocks",
			Got:  shapeString(a.k, a.rows, a.cols),
		}
	}
	out := a.Clone()
	n := a.rows
	for i := 0; i < a.k; i++ {
		blk := out.Block(i)
		for r := 0; r < n; r++ {
			blk[r*n+r] = 0
			for c := r + 1; c < n; c++ {
				v := 0.5 * (blk[r*n+c] - blk[c*n+r])
				blk[r*n+c] = v
				blk[c*n+r] = -v
			}
		}
	}
	return out, nil
}

// Eye returns a stack of k n x n identity matrices.
func Eye(k, n int) *Array {
	out := Zeros(k, n, n)
	for i := 0; i < k; i++ {
		blk := out.Block(i)
		for r := 0; r < n; r++ {
			blk[r*n+r] = 1
		}
	}
	return out
}

// EyeC returns a stack of k complex n x n identity matrices.
func EyeC(k, n int) *CArray {
	out := ZerosC(k, n, n)
	for i := 0; i < k; i++ {
		blk := out.Block(i)
		for r := 0; r < n; r++ {
			blk[r*n+r] = 1
		}
	}
	return out
}
