package riemgo

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/riemgo/internal/lin"
	"github.com/hupe1980/riemgo/multi"
)

// Grassmann is the manifold of p-dimensional subspaces of an
// n-dimensional real vector space, optionally batched as a product of k
// independent copies.
//
// A point is a *multi.Array of k orthonormal n x p basis blocks. Only
// the column space of each block is meaningful: two bases related by a
// p x p orthogonal change of basis represent the same subspace, and all
// operations are invariant to that ambiguity. A tangent vector at X is
// an array of the same shape with X^T * V = 0 per block; the invariant
// is guaranteed by construction (projection), never re-checked.
type Grassmann struct {
	n, p, k int
	dim     int
	name    string
}

// NewGrassmann constructs the Grassmann manifold Gr(n, p)^k. It fails
// unless n >= p >= 1 and k >= 1.
func NewGrassmann(n, p, k int) (*Grassmann, error) {
	if n < p || p < 1 || k < 1 {
		return nil, &ErrInvalidDimension{N: n, P: p, K: k}
	}
	name := fmt.Sprintf("Grassmann manifold Gr(%d,%d)", n, p)
	if k >= 2 {
		name = fmt.Sprintf("Product Grassmann manifold Gr(%d,%d)^%d", n, p, k)
	}
	return &Grassmann{
		n:    n,
		p:    p,
		k:    k,
		dim:  k * (n*p - p*p),
		name: name,
	}, nil
}

// Name returns a human-readable description of the manifold.
func (g *Grassmann) Name() string { return g.name }

// Dim returns k * (n*p - p^2).
func (g *Grassmann) Dim() int { return g.dim }

// TypicalDist returns sqrt(p * k).
func (g *Grassmann) TypicalDist() float64 { return math.Sqrt(float64(g.p * g.k)) }

// array coerces a Point into a correctly shaped *multi.Array.
func (g *Grassmann) array(op string, p Point) (*multi.Array, error) {
	arr, ok := p.(*multi.Array)
	if !ok {
		return nil, &ErrPointType{Op: op, Want: "*multi.Array", Got: p}
	}
	if k, r, c := arr.Dims(); k != g.k || r != g.n || c != g.p {
		return nil, &ErrPointShape{
			Op:   op,
			Want: fmt.Sprintf("%dx%dx%d", g.k, g.n, g.p),
			Got:  fmt.Sprintf("%dx%dx%d", k, r, c),
		}
	}
	return arr, nil
}

// InnerProduct returns the Euclidean inner product of the flattened
// tangent arrays; the base point fixes only the tangent space.
func (g *Grassmann) InnerProduct(point, u, v Point) (float64, error) {
	if _, err := g.array("Grassmann.InnerProduct", point); err != nil {
		return 0, err
	}
	ua, err := g.array("Grassmann.InnerProduct", u)
	if err != nil {
		return 0, err
	}
	va, err := g.array("Grassmann.InnerProduct", v)
	if err != nil {
		return 0, err
	}
	return ua.Dot(va)
}

// Norm returns the Frobenius norm of the tangent vector.
func (g *Grassmann) Norm(point, v Point) (float64, error) {
	if _, err := g.array("Grassmann.Norm", point); err != nil {
		return 0, err
	}
	va, err := g.array("Grassmann.Norm", v)
	if err != nil {
		return 0, err
	}
	return va.Norm(), nil
}

// Dist returns the 2-norm of the principal angles between the two
// subspaces, summed over blocks. The angles are the arc-cosines of the
// singular values of A^T*B; values pushed past 1 by rounding are clamped
// back to exactly 1.
func (g *Grassmann) Dist(a, b Point) (float64, error) {
	aa, err := g.array("Grassmann.Dist", a)
	if err != nil {
		return 0, err
	}
	ba, err := g.array("Grassmann.Dist", b)
	if err != nil {
		return 0, err
	}

	sums := make([]float64, g.k)
	err = multi.EachBlock(g.k, func(i int) error {
		atb := lin.MatMul(g.p, g.n, g.p, lin.Transpose(g.n, g.p, aa.Block(i)), ba.Block(i))
		s, err := lin.SingularValues(g.p, g.p, atb)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDegenerate, err)
		}
		var sum float64
		for _, sv := range s {
			if sv > 1 {
				sv = 1
			}
			theta := math.Acos(sv)
			sum += theta * theta
		}
		sums[i] = sum
		return nil
	})
	if err != nil {
		return 0, err
	}

	var total float64
	for _, s := range sums {
		total += s
	}
	return math.Sqrt(total), nil
}

// Projection removes the component of an ambient vector lying in the
// column space of the point, block-wise: V - X * (X^T * V).
func (g *Grassmann) Projection(point, vector Point) (Point, error) {
	x, err := g.array("Grassmann.Projection", point)
	if err != nil {
		return nil, err
	}
	v, err := g.array("Grassmann.Projection", vector)
	if err != nil {
		return nil, err
	}
	xtv, err := multi.Prod(multi.Transp(x), v)
	if err != nil {
		return nil, err
	}
	xxtv, err := multi.Prod(x, xtv)
	if err != nil {
		return nil, err
	}
	return v.Sub(xxtv)
}

// EuclideanToRiemannianGradient projects the ambient gradient onto the
// tangent space.
func (g *Grassmann) EuclideanToRiemannianGradient(point, gradient Point) (Point, error) {
	return g.Projection(point, gradient)
}

// EuclideanToRiemannianHessian projects the ambient Hessian-vector
// product and subtracts the curvature correction V * (X^T * grad).
func (g *Grassmann) EuclideanToRiemannianHessian(point, gradient, hessian, v Point) (Point, error) {
	x, err := g.array("Grassmann.EuclideanToRiemannianHessian", point)
	if err != nil {
		return nil, err
	}
	grad, err := g.array("Grassmann.EuclideanToRiemannianHessian", gradient)
	if err != nil {
		return nil, err
	}
	va, err := g.array("Grassmann.EuclideanToRiemannianHessian", v)
	if err != nil {
		return nil, err
	}
	projected, err := g.Projection(point, hessian)
	if err != nil {
		return nil, err
	}
	xtg, err := multi.Prod(multi.Transp(x), grad)
	if err != nil {
		return nil, err
	}
	correction, err := multi.Prod(va, xtg)
	if err != nil {
		return nil, err
	}
	return projected.(*multi.Array).Sub(correction)
}

// Retraction returns the polar factor of X + V per block: the nearest
// point whose basis spans the moved subspace. Column-sign ambiguity of
// the SVD is immaterial since only the span matters.
func (g *Grassmann) Retraction(point, v Point) (Point, error) {
	x, err := g.array("Grassmann.Retraction", point)
	if err != nil {
		return nil, err
	}
	va, err := g.array("Grassmann.Retraction", v)
	if err != nil {
		return nil, err
	}
	y, err := x.Add(va)
	if err != nil {
		return nil, err
	}

	out := multi.Zeros(g.k, g.n, g.p)
	err = multi.EachBlock(g.k, func(i int) error {
		u, _, vv, err := lin.SVDThin(g.n, g.p, y.Block(i))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDegenerate, err)
		}
		copy(out.Block(i), lin.MatMul(g.n, g.p, g.p, u, lin.Transpose(g.p, g.p, vv)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Exp returns the exact geodesic endpoint. Per block, with
// U*diag(s)*V^T the thin SVD of the tangent vector:
//
//	Y = X*V*diag(cos s)*V^T + U*diag(sin s)*V^T
//
// followed by a QR re-orthonormalization to counter rounding drift. The
// re-orthonormalization dominates the cost but is required for
// numerical fidelity.
func (g *Grassmann) Exp(point, v Point) (Point, error) {
	x, err := g.array("Grassmann.Exp", point)
	if err != nil {
		return nil, err
	}
	va, err := g.array("Grassmann.Exp", v)
	if err != nil {
		return nil, err
	}

	out := multi.Zeros(g.k, g.n, g.p)
	err = multi.EachBlock(g.k, func(i int) error {
		u, s, vv, err := lin.SVDThin(g.n, g.p, va.Block(i))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDegenerate, err)
		}

		// V with column j scaled by cos(s_j), U by sin(s_j).
		vcos := make([]float64, g.p*g.p)
		for r := 0; r < g.p; r++ {
			for c := 0; c < g.p; c++ {
				vcos[r*g.p+c] = vv[r*g.p+c] * math.Cos(s[c])
			}
		}
		usin := make([]float64, g.n*g.p)
		for r := 0; r < g.n; r++ {
			for c := 0; c < g.p; c++ {
				usin[r*g.p+c] = u[r*g.p+c] * math.Sin(s[c])
			}
		}

		vt := lin.Transpose(g.p, g.p, vv)
		xvcos := lin.MatMul(g.n, g.p, g.p, x.Block(i), vcos)
		y := lin.MatMul(g.n, g.p, g.p, xvcos, vt)
		usinvt := lin.MatMul(g.n, g.p, g.p, usin, vt)
		for j := range y {
			y[j] += usinvt[j]
		}

		q, _, err := lin.QR(g.n, g.p, y)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDegenerate, err)
		}
		copy(out.Block(i), q)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Log returns the tangent vector at a whose geodesic reaches b. Per
// block it solves (B^T*A) * Z = B^T - (B^T*A)*A^T for Z, then rebuilds
// the tangent from the SVD of Z^T with arctan of the singular values in
// place of the raw values. The solve is singular when the subspaces
// meet at a principal angle of exactly pi/2, which makes the connecting
// geodesic non-unique; the failure wraps ErrDegenerate.
func (g *Grassmann) Log(a, b Point) (Point, error) {
	aa, err := g.array("Grassmann.Log", a)
	if err != nil {
		return nil, err
	}
	ba, err := g.array("Grassmann.Log", b)
	if err != nil {
		return nil, err
	}

	out := multi.Zeros(g.k, g.n, g.p)
	err = multi.EachBlock(g.k, func(i int) error {
		bt := lin.Transpose(g.n, g.p, ba.Block(i)) // p x n
		at := lin.Transpose(g.n, g.p, aa.Block(i)) // p x n
		btA := lin.MatMul(g.p, g.n, g.p, bt, aa.Block(i)) // p x p

		rhs := lin.MatMul(g.p, g.p, g.n, btA, at) // p x n
		for j := range rhs {
			rhs[j] = bt[j] - rhs[j]
		}

		zt, err := lin.SolveMulti(g.p, g.n, btA, rhs) // p x n
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDegenerate, err)
		}
		z := lin.Transpose(g.p, g.n, zt) // n x p

		u, s, vv, err := lin.SVDThin(g.n, g.p, z)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDegenerate, err)
		}
		uatan := make([]float64, g.n*g.p)
		for r := 0; r < g.n; r++ {
			for c := 0; c < g.p; c++ {
				uatan[r*g.p+c] = u[r*g.p+c] * math.Atan(s[c])
			}
		}
		copy(out.Block(i), lin.MatMul(g.n, g.p, g.p, uatan, lin.Transpose(g.p, g.p, vv)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Transport carries a tangent vector by projecting it onto the tangent
// space at the destination.
func (g *Grassmann) Transport(a, b, v Point) (Point, error) {
	if _, err := g.array("Grassmann.Transport", a); err != nil {
		return nil, err
	}
	return transportByProjection(g, b, v)
}

// RandomPoint draws independent standard-normal n x p blocks and
// orthonormalizes each by QR.
func (g *Grassmann) RandomPoint(rng *rand.Rand) (Point, error) {
	norm := normSource(rng)
	out := multi.Zeros(g.k, g.n, g.p)
	for i := 0; i < g.k; i++ {
		blk := make([]float64, g.n*g.p)
		for j := range blk {
			blk[j] = norm()
		}
		q, _, err := lin.QR(g.n, g.p, blk)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDegenerate, err)
		}
		copy(out.Block(i), q)
	}
	return out, nil
}

// RandomTangentVector draws a standard-normal ambient array, projects it
// onto the tangent space at point and normalizes it to unit norm.
func (g *Grassmann) RandomTangentVector(rng *rand.Rand, point Point) (Point, error) {
	x, err := g.array("Grassmann.RandomTangentVector", point)
	if err != nil {
		return nil, err
	}
	norm := normSource(rng)
	ambient := multi.Zeros(g.k, g.n, g.p)
	data := ambient.Data()
	for j := range data {
		data[j] = norm()
	}
	projected, err := g.Projection(x, ambient)
	if err != nil {
		return nil, err
	}
	pa := projected.(*multi.Array)
	n := pa.Norm()
	if n == 0 {
		return nil, fmt.Errorf("%w: zero random tangent vector", ErrDegenerate)
	}
	return pa.Scale(1 / n), nil
}

// ZeroTangentVector returns the zero array of point shape.
func (g *Grassmann) ZeroTangentVector() Point {
	return multi.Zeros(g.k, g.n, g.p)
}

// PairMean returns the point half-way along the geodesic between a and b.
func (g *Grassmann) PairMean(a, b Point) (Point, error) {
	return geodesicPairMean(g, a, b)
}
