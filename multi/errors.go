package multi

import (
	"errors"
	"fmt"

	"github.com/hupe1980/riemgo/internal/lin"
)

var (
	// ErrSingular indicates a singular linear system inside a matrix
	// function.
	ErrSingular = errors.New("singular system")

	// ErrRankDeficient indicates a rank-deficient factorization.
	ErrRankDeficient = errors.New("rank deficient")

	// ErrNoConvergence indicates that a general matrix logarithm or
	// exponential failed to converge on a block, e.g. because the block
	// has eigenvalues on the non-positive real axis.
	ErrNoConvergence = errors.New("no convergence")
)

// ErrShapeMismatch indicates block shapes that are incompatible with the
// requested operation.
type ErrShapeMismatch struct {
	Op   string
	Want string
	Got  string
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("%s: shape mismatch: want %s, got %s", e.Op, e.Want, e.Got)
}

func shapeString(k, rows, cols int) string {
	if k == 1 {
		return fmt.Sprintf("%dx%d", rows, cols)
	}
	return fmt.Sprintf("%dx%dx%d", k, rows, cols)
}

// translateLinError maps internal kernel sentinels onto the public ones,
// tagging the failing block.
func translateLinError(err error, block int) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, lin.ErrSingular):
		return fmt.Errorf("block %d: %w: %v", block, ErrSingular, err)
	case errors.Is(err, lin.ErrRankDeficient):
		return fmt.Errorf("block %d: %w: %v", block, ErrRankDeficient, err)
	case errors.Is(err, lin.ErrNoConvergence):
		return fmt.Errorf("block %d: %w: %v", block, ErrNoConvergence, err)
	}
	return fmt.Errorf("block %d: %w", block, err)
}
