package riemgo

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/riemgo/multi"
)

// Euclidean is the flat manifold of rows x cols real matrices with the
// trace inner product. Points are unconstrained *multi.Array values
// with k == 1; every tangent space is the whole ambient space, so
// projection is the identity and geodesics are straight lines.
type Euclidean struct {
	rows, cols int
	name       string
}

// NewEuclidean constructs the Euclidean manifold of rows x cols
// matrices.
func NewEuclidean(rows, cols int) (*Euclidean, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: Euclidean needs positive dimensions, got %dx%d", ErrInvalidSize, rows, cols)
	}
	return &Euclidean{
		rows: rows,
		cols: cols,
		name: fmt.Sprintf("Euclidean manifold of %dx%d matrices", rows, cols),
	}, nil
}

// Name returns a human-readable description of the manifold.
func (e *Euclidean) Name() string { return e.name }

// Dim returns rows * cols.
func (e *Euclidean) Dim() int { return e.rows * e.cols }

// TypicalDist returns sqrt(rows * cols).
func (e *Euclidean) TypicalDist() float64 { return math.Sqrt(float64(e.Dim())) }

func (e *Euclidean) array(op string, p Point) (*multi.Array, error) {
	arr, ok := p.(*multi.Array)
	if !ok {
		return nil, &ErrPointType{Op: op, Want: "*multi.Array", Got: p}
	}
	if k, r, c := arr.Dims(); k != 1 || r != e.rows || c != e.cols {
		return nil, &ErrPointShape{
			Op:   op,
			Want: fmt.Sprintf("1x%dx%d", e.rows, e.cols),
			Got:  fmt.Sprintf("%dx%dx%d", k, r, c),
		}
	}
	return arr, nil
}

// InnerProduct returns the trace inner product of the two vectors.
func (e *Euclidean) InnerProduct(point, u, v Point) (float64, error) {
	if _, err := e.array("Euclidean.InnerProduct", point); err != nil {
		return 0, err
	}
	ua, err := e.array("Euclidean.InnerProduct", u)
	if err != nil {
		return 0, err
	}
	va, err := e.array("Euclidean.InnerProduct", v)
	if err != nil {
		return 0, err
	}
	return ua.Dot(va)
}

// Norm returns the Frobenius norm of v.
func (e *Euclidean) Norm(point, v Point) (float64, error) {
	if _, err := e.array("Euclidean.Norm", point); err != nil {
		return 0, err
	}
	va, err := e.array("Euclidean.Norm", v)
	if err != nil {
		return 0, err
	}
	return va.Norm(), nil
}

// Dist returns the Euclidean distance between the two points.
func (e *Euclidean) Dist(a, b Point) (float64, error) {
	aa, err := e.array("Euclidean.Dist", a)
	if err != nil {
		return 0, err
	}
	ba, err := e.array("Euclidean.Dist", b)
	if err != nil {
		return 0, err
	}
	diff, err := ba.Sub(aa)
	if err != nil {
		return 0, err
	}
	return diff.Norm(), nil
}

// Projection is the identity: every ambient vector is tangent.
func (e *Euclidean) Projection(point, vector Point) (Point, error) {
	if _, err := e.array("Euclidean.Projection", point); err != nil {
		return nil, err
	}
	va, err := e.array("Euclidean.Projection", vector)
	if err != nil {
		return nil, err
	}
	return va.Clone(), nil
}

// EuclideanToRiemannianGradient returns the ambient gradient unchanged.
func (e *Euclidean) EuclideanToRiemannianGradient(point, gradient Point) (Point, error) {
	return e.Projection(point, gradient)
}

// EuclideanToRiemannianHessian returns the ambient Hessian-vector
// product unchanged: a flat space has no curvature correction.
func (e *Euclidean) EuclideanToRiemannianHessian(point, gradient, hessian, v Point) (Point, error) {
	if _, err := e.array("Euclidean.EuclideanToRiemannianHessian", point); err != nil {
		return nil, err
	}
	ha, err := e.array("Euclidean.EuclideanToRiemannianHessian", hessian)
	if err != nil {
		return nil, err
	}
	return ha.Clone(), nil
}

// Retraction moves along the straight line point + v.
func (e *Euclidean) Retraction(point, v Point) (Point, error) {
	return e.Exp(point, v)
}

// Exp moves along the straight line point + v; straight lines are the
// geodesics of a flat space.
func (e *Euclidean) Exp(point, v Point) (Point, error) {
	pa, err := e.array("Euclidean.Exp", point)
	if err != nil {
		return nil, err
	}
	va, err := e.array("Euclidean.Exp", v)
	if err != nil {
		return nil, err
	}
	return pa.Add(va)
}

// Log returns b - a.
func (e *Euclidean) Log(a, b Point) (Point, error) {
	aa, err := e.array("Euclidean.Log", a)
	if err != nil {
		return nil, err
	}
	ba, err := e.array("Euclidean.Log", b)
	if err != nil {
		return nil, err
	}
	return ba.Sub(aa)
}

// Transport returns v unchanged: parallel transport is trivial in a
// flat space.
func (e *Euclidean) Transport(a, b, v Point) (Point, error) {
	if _, err := e.array("Euclidean.Transport", a); err != nil {
		return nil, err
	}
	if _, err := e.array("Euclidean.Transport", b); err != nil {
		return nil, err
	}
	va, err := e.array("Euclidean.Transport", v)
	if err != nil {
		return nil, err
	}
	return va.Clone(), nil
}

// RandomPoint draws independent standard-normal entries.
func (e *Euclidean) RandomPoint(rng *rand.Rand) (Point, error) {
	norm := normSource(rng)
	out := multi.Zeros(1, e.rows, e.cols)
	data := out.Data()
	for i := range data {
		data[i] = norm()
	}
	return out, nil
}

// RandomTangentVector draws a standard-normal array normalized to unit
// norm.
func (e *Euclidean) RandomTangentVector(rng *rand.Rand, point Point) (Point, error) {
	if _, err := e.array("Euclidean.RandomTangentVector", point); err != nil {
		return nil, err
	}
	v, err := e.RandomPoint(rng)
	if err != nil {
		return nil, err
	}
	va := v.(*multi.Array)
	n := va.Norm()
	if n == 0 {
		return nil, fmt.Errorf("%w: zero random tangent vector", ErrDegenerate)
	}
	return va.Scale(1 / n), nil
}

// ZeroTangentVector returns the zero array of point shape.
func (e *Euclidean) ZeroTangentVector() Point {
	return multi.Zeros(1, e.rows, e.cols)
}

// PairMean returns the midpoint (a + b) / 2.
func (e *Euclidean) PairMean(a, b Point) (Point, error) {
	aa, err := e.array("Euclidean.PairMean", a)
	if err != nil {
		return nil, err
	}
	ba, err := e.array("Euclidean.PairMean", b)
	if err != nil {
		return nil, err
	}
	sum, err := aa.Add(ba)
	if err != nil {
		return nil, err
	}
	return sum.Scale(0.5), nil
}
