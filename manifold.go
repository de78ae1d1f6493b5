package riemgo

import (
	"math/rand"

	"github.com/hupe1980/riemgo/multi"
)

// Point is a location on a manifold, or a tangent vector at one. The
// dynamic type depends on the manifold: *multi.Array for the real
// geometries, *multi.CArray for ComplexGrassmann, Tuple for Product.
// Manifolds validate the dynamic type and shape of every argument and
// return a structured error on mismatch.
type Point any

// Tuple is the point type of a Product manifold: one entry per
// constituent, each a valid point of its own manifold.
type Tuple []Point

// Manifold is the capability set every geometry implements.
//
// Contracts, common to all implementations:
//   - Dist is non-negative, symmetric, and zero exactly when the two
//     points represent the same manifold element (not necessarily the
//     same array).
//   - InnerProduct is real-valued, bilinear and symmetric in the two
//     tangent vectors; Norm(p, v) = sqrt(InnerProduct(p, v, v)).
//   - Projection returns the tangent vector closest to an ambient
//     vector and is idempotent.
//   - Retraction is a first-order approximation of Exp, used by solvers
//     as a cheaper substitute for the true geodesic.
//   - Exp and Log are mutual inverses within the injectivity radius:
//     Exp(p, Log(p, q)) == q and Log(p, Exp(p, v)) == v up to rounding.
//   - EuclideanToRiemannianHessian converts an ambient Hessian-vector
//     product into the Riemannian one, correcting for the curvature of
//     the embedded constraint set.
type Manifold interface {
	// Name returns a human-readable description of the manifold.
	Name() string

	// Dim returns the intrinsic dimension as a real manifold.
	Dim() int

	// TypicalDist returns the scale of typical distances, used by
	// solvers to size initial steps.
	TypicalDist() float64

	// InnerProduct returns the Riemannian inner product of two tangent
	// vectors at a point.
	InnerProduct(point, u, v Point) (float64, error)

	// Norm returns the Riemannian norm of a tangent vector at a point.
	Norm(point, v Point) (float64, error)

	// Dist returns the geodesic distance between two points.
	Dist(a, b Point) (float64, error)

	// Projection maps an ambient vector to the closest tangent vector
	// at the given point.
	Projection(point, vector Point) (Point, error)

	// EuclideanToRiemannianGradient converts an ambient gradient into
	// the Riemannian gradient at the given point.
	EuclideanToRiemannianGradient(point, gradient Point) (Point, error)

	// EuclideanToRiemannianHessian converts an ambient Hessian-vector
	// product into the Riemannian one along tangent vector v.
	EuclideanToRiemannianHessian(point, gradient, hessian, v Point) (Point, error)

	// Retraction moves from point along tangent vector v, approximating
	// the exponential map to first order.
	Retraction(point, v Point) (Point, error)

	// Exp returns the endpoint of the geodesic starting at point with
	// initial velocity v.
	Exp(point, v Point) (Point, error)

	// Log returns the tangent vector at a whose geodesic reaches b.
	Log(a, b Point) (Point, error)

	// Transport carries a tangent vector at a to the tangent space at b.
	Transport(a, b, v Point) (Point, error)

	// RandomPoint samples a point uniformly-ish over the manifold. A nil
	// rng uses the global math/rand source.
	RandomPoint(rng *rand.Rand) (Point, error)

	// RandomTangentVector samples a unit-norm tangent vector at point.
	// A nil rng uses the global math/rand source.
	RandomTangentVector(rng *rand.Rand, point Point) (Point, error)

	// ZeroTangentVector returns the zero tangent vector.
	ZeroTangentVector() Point

	// PairMean returns the point half-way along the geodesic between
	// two points.
	PairMean(a, b Point) (Point, error)
}

// normSource returns a standard-normal sampler backed by rng, or by the
// global math/rand source when rng is nil.
func normSource(rng *rand.Rand) func() float64 {
	if rng == nil {
		return rand.NormFloat64
	}
	return rng.NormFloat64
}

// scaleTangent scales a tangent vector of any supported point type.
func scaleTangent(v Point, f float64) (Point, error) {
	switch t := v.(type) {
	case *multi.Array:
		return t.Scale(f), nil
	case *multi.CArray:
		return t.Scale(complex(f, 0)), nil
	case Tuple:
		out := make(Tuple, len(t))
		for i, e := range t {
			s, err := scaleTangent(e, f)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, &ErrPointType{Op: "riemgo.scaleTangent", Want: "*multi.Array, *multi.CArray or Tuple", Got: v}
	}
}

// geodesicPairMean is the shared PairMean behavior: walk half of the
// logarithm map. Manifolds with a cheaper closed form (Oblique)
// override it.
func geodesicPairMean(m Manifold, a, b Point) (Point, error) {
	v, err := m.Log(a, b)
	if err != nil {
		return nil, err
	}
	half, err := scaleTangent(v, 0.5)
	if err != nil {
		return nil, err
	}
	return m.Exp(a, half)
}

// transportByProjection is the shared Transport behavior: project the
// source tangent vector onto the destination tangent space.
func transportByProjection(m Manifold, b, v Point) (Point, error) {
	return m.Projection(b, v)
}
