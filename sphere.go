package riemgo

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/riemgo/multi"
)

// smallStep is the tangent-vector norm below which the spherical
// exponential map falls back to a retraction: sin(t)/t degrades to 0/0
// as t vanishes.
const smallStep = 4.5e-8

// Sphere is the unit sphere S^(n-1) embedded in R^n with the round
// metric. Points are unit-norm n x 1 *multi.Array values with k == 1.
type Sphere struct {
	n    int
	name string
}

// NewSphere constructs the sphere of unit vectors in R^n, n >= 2.
func NewSphere(n int) (*Sphere, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: Sphere needs n >= 2, got n=%d", ErrInvalidSize, n)
	}
	return &Sphere{n: n, name: fmt.Sprintf("Sphere manifold S^%d", n-1)}, nil
}

// Name returns a human-readable description of the manifold.
func (s *Sphere) Name() string { return s.name }

// Dim returns n - 1.
func (s *Sphere) Dim() int { return s.n - 1 }

// TypicalDist returns pi, the largest possible distance on a sphere.
func (s *Sphere) TypicalDist() float64 { return math.Pi }

func (s *Sphere) array(op string, p Point) (*multi.Array, error) {
	arr, ok := p.(*multi.Array)
	if !ok {
		return nil, &ErrPointType{Op: op, Want: "*multi.Array", Got: p}
	}
	if k, r, c := arr.Dims(); k != 1 || r != s.n || c != 1 {
		return nil, &ErrPointShape{
			Op:   op,
			Want: fmt.Sprintf("1x%dx1", s.n),
			Got:  fmt.Sprintf("%dx%dx%d", k, r, c),
		}
	}
	return arr, nil
}

// InnerProduct returns the Euclidean inner product of the two tangent
// vectors.
func (s *Sphere) InnerProduct(point, u, v Point) (float64, error) {
	if _, err := s.array("Sphere.InnerProduct", point); err != nil {
		return 0, err
	}
	ua, err := s.array("Sphere.InnerProduct", u)
	if err != nil {
		return 0, err
	}
	va, err := s.array("Sphere.InnerProduct", v)
	if err != nil {
		return 0, err
	}
	return ua.Dot(va)
}

// Norm returns the Euclidean norm of v.
func (s *Sphere) Norm(point, v Point) (float64, error) {
	if _, err := s.array("Sphere.Norm", point); err != nil {
		return 0, err
	}
	va, err := s.array("Sphere.Norm", v)
	if err != nil {
		return 0, err
	}
	return va.Norm(), nil
}

// Dist returns the great-circle distance arccos(<a, b>), with the inner
// product clamped to [-1, 1] against rounding.
func (s *Sphere) Dist(a, b Point) (float64, error) {
	aa, err := s.array("Sphere.Dist", a)
	if err != nil {
		return 0, err
	}
	ba, err := s.array("Sphere.Dist", b)
	if err != nil {
		return 0, err
	}
	dot, err := aa.Dot(ba)
	if err != nil {
		return 0, err
	}
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	return math.Acos(dot), nil
}

// Projection removes the radial component: v - <p, v> p.
func (s *Sphere) Projection(point, vector Point) (Point, error) {
	pa, err := s.array("Sphere.Projection", point)
	if err != nil {
		return nil, err
	}
	va, err := s.array("Sphere.Projection", vector)
	if err != nil {
		return nil, err
	}
	dot, err := pa.Dot(va)
	if err != nil {
		return nil, err
	}
	return va.Sub(pa.Scale(dot))
}

// EuclideanToRiemannianGradient projects the ambient gradient onto the
// tangent space.
func (s *Sphere) EuclideanToRiemannianGradient(point, gradient Point) (Point, error) {
	return s.Projection(point, gradient)
}

// EuclideanToRiemannianHessian projects the ambient Hessian-vector
// product and subtracts the curvature correction <p, grad> v.
func (s *Sphere) EuclideanToRiemannianHessian(point, gradient, hessian, v Point) (Point, error) {
	pa, err := s.array("Sphere.EuclideanToRiemannianHessian", point)
	if err != nil {
		return nil, err
	}
	ga, err := s.array("Sphere.EuclideanToRiemannianHessian", gradient)
	if err != nil {
		return nil, err
	}
	va, err := s.array("Sphere.EuclideanToRiemannianHessian", v)
	if err != nil {
		return nil, err
	}
	projected, err := s.Projection(point, hessian)
	if err != nil {
		return nil, err
	}
	dot, err := pa.Dot(ga)
	if err != nil {
		return nil, err
	}
	return projected.(*multi.Array).Sub(va.Scale(dot))
}

// Retraction normalizes point + v back onto the sphere.
func (s *Sphere) Retraction(point, v Point) (Point, error) {
	pa, err := s.array("Sphere.Retraction", point)
	if err != nil {
		return nil, err
	}
	va, err := s.array("Sphere.Retraction", v)
	if err != nil {
		return nil, err
	}
	sum, err := pa.Add(va)
	if err != nil {
		return nil, err
	}
	n := sum.Norm()
	if n == 0 {
		return nil, fmt.Errorf("%w: cannot normalize zero vector", ErrDegenerate)
	}
	return sum.Scale(1 / n), nil
}

// Exp follows the great circle: cos(t) p + sin(t) v/t with t = ||v||.
// Steps too small to divide by fall back to the retraction.
func (s *Sphere) Exp(point, v Point) (Point, error) {
	pa, err := s.array("Sphere.Exp", point)
	if err != nil {
		return nil, err
	}
	va, err := s.array("Sphere.Exp", v)
	if err != nil {
		return nil, err
	}
	t := va.Norm()
	if t <= smallStep {
		return s.Retraction(point, v)
	}
	return pa.Scale(math.Cos(t)).Add(va.Scale(math.Sin(t) / t))
}

// Log returns the tangent vector at a pointing along the great circle
// to b, with length Dist(a, b). For nearly coincident points the
// projected difference already has the right length, and forcing the
// scale factor to 1 avoids a 0/0.
func (s *Sphere) Log(a, b Point) (Point, error) {
	aa, err := s.array("Sphere.Log", a)
	if err != nil {
		return nil, err
	}
	ba, err := s.array("Sphere.Log", b)
	if err != nil {
		return nil, err
	}
	diff, err := ba.Sub(aa)
	if err != nil {
		return nil, err
	}
	projected, err := s.Projection(a, diff)
	if err != nil {
		return nil, err
	}
	pv := projected.(*multi.Array)
	d, err := s.Dist(a, b)
	if err != nil {
		return nil, err
	}
	factor := 1.0
	if d > 1e-6 {
		n := pv.Norm()
		if n == 0 {
			// Antipodal-ish: the geodesic direction is not unique.
			return nil, fmt.Errorf("%w: logarithm between opposite points", ErrDegenerate)
		}
		factor = d / n
	}
	return pv.Scale(factor), nil
}

// Transport carries a tangent vector by projecting it onto the tangent
// space at the destination.
func (s *Sphere) Transport(a, b, v Point) (Point, error) {
	if _, err := s.array("Sphere.Transport", a); err != nil {
		return nil, err
	}
	return transportByProjection(s, b, v)
}

// RandomPoint normalizes a standard-normal vector onto the sphere.
func (s *Sphere) RandomPoint(rng *rand.Rand) (Point, error) {
	norm := normSource(rng)
	out := multi.Zeros(1, s.n, 1)
	data := out.Data()
	for i := range data {
		data[i] = norm()
	}
	n := out.Norm()
	if n == 0 {
		return nil, fmt.Errorf("%w: zero random draw", ErrDegenerate)
	}
	return out.Scale(1 / n), nil
}

// RandomTangentVector projects a standard-normal draw onto the tangent
// space at point and normalizes it.
func (s *Sphere) RandomTangentVector(rng *rand.Rand, point Point) (Point, error) {
	if _, err := s.array("Sphere.RandomTangentVector", point); err != nil {
		return nil, err
	}
	norm := normSource(rng)
	ambient := multi.Zeros(1, s.n, 1)
	data := ambient.Data()
	for i := range data {
		data[i] = norm()
	}
	projected, err := s.Projection(point, ambient)
	if err != nil {
		return nil, err
	}
	pv := projected.(*multi.Array)
	n := pv.Norm()
	if n == 0 {
		return nil, fmt.Errorf("%w: zero random tangent vector", ErrDegenerate)
	}
	return pv.Scale(1 / n), nil
}

// ZeroTangentVector returns the zero vector of point shape.
func (s *Sphere) ZeroTangentVector() Point {
	return multi.Zeros(1, s.n, 1)
}

// PairMean returns the point half-way along the great circle between a
// and b.
func (s *Sphere) PairMean(a, b Point) (Point, error) {
	return geodesicPairMean(s, a, b)
}
