package lin

import "errors"

var (
	// ErrSingular is returned when a linear solve meets a zero (or
	// non-finite) pivot.
	ErrSingular = errors.New("singular system")

	// ErrRankDeficient is returned when a QR factorization meets a
	// numerically zero column.
	ErrRankDeficient = errors.New("rank deficient")

	// ErrNoConvergence is returned when an iterative matrix function
	// (general matrix logarithm or square root) fails to converge.
	ErrNoConvergence = errors.New("no convergence")

	// ErrBadShape is returned when slice lengths disagree with the
	// stated matrix dimensions.
	ErrBadShape = errors.New("bad matrix shape")
)
