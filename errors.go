package riemgo

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerate indicates a numerically degenerate computation, such
	// as the singular linear solve inside the Grassmann logarithm map
	// when two subspaces meet at a principal angle of pi/2. The
	// operation is not retried: identical inputs fail identically, so a
	// caller should perturb or treat the condition as a boundary case.
	ErrDegenerate = errors.New("numerically degenerate operation")

	// ErrEmptyProduct is returned when a product manifold is constructed
	// with no constituents.
	ErrEmptyProduct = errors.New("product manifold needs at least one constituent")

	// ErrInvalidSize indicates invalid construction sizes for the flat
	// geometries (Euclidean, Sphere, Oblique).
	ErrInvalidSize = errors.New("invalid manifold size")
)

// ErrInvalidDimension indicates invalid manifold construction
// parameters.
type ErrInvalidDimension struct {
	N, P, K int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid manifold dimensions: need n >= p >= 1 and k >= 1, got n=%d, p=%d, k=%d", e.N, e.P, e.K)
}

// ErrPointType indicates a point or tangent vector of the wrong dynamic
// type for the manifold.
type ErrPointType struct {
	Op   string
	Want string
	Got  any
}

func (e *ErrPointType) Error() string {
	return fmt.Sprintf("%s: unexpected point type: want %s, got %T", e.Op, e.Want, e.Got)
}

// ErrPointShape indicates a point or tangent vector with the wrong array
// shape for the manifold.
type ErrPointShape struct {
	Op   string
	Want string
	Got  string
}

func (e *ErrPointShape) Error() string {
	return fmt.Sprintf("%s: unexpected point shape: want %s, got %s", e.Op, e.Want, e.Got)
}
