package riemgo

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/riemgo/internal/lin"
	"github.com/hupe1980/riemgo/multi"
)

// ComplexGrassmann is the manifold of p-dimensional subspaces of an
// n-dimensional complex vector space, optionally batched over k
// independent blocks.
//
// A point is a *multi.CArray of k blocks whose columns are orthonormal
// under the conjugate inner product: X^H * X = I per block. Two bases
// related by a p x p unitary change of basis represent the same
// subspace. Every formula mirrors the real Grassmann with the
// conjugate transpose in place of the transpose, and the Riemannian
// inner product takes the real part of the conjugate-bilinear pairing,
// so metric quantities stay real even though the arrays are complex.
type ComplexGrassmann struct {
	n, p, k int
	dim     int
	name    string
}

// NewComplexGrassmann constructs the complex Grassmann manifold
// Gr(n, p)^k. It fails unless n >= p >= 1 and k >= 1.
func NewComplexGrassmann(n, p, k int) (*ComplexGrassmann, error) {
	if n < p || p < 1 || k < 1 {
		return nil, &ErrInvalidDimension{N: n, P: p, K: k}
	}
	name := fmt.Sprintf("Complex Grassmann manifold Gr(%d,%d)", n, p)
	if k >= 2 {
		name = fmt.Sprintf("Product complex Grassmann manifold Gr(%d,%d)^%d", n, p, k)
	}
	return &ComplexGrassmann{
		n:    n,
		p:    p,
		k:    k,
		dim:  2 * k * (n*p - p*p),
		name: name,
	}, nil
}

// Name returns a human-readable description of the manifold.
func (g *ComplexGrassmann) Name() string { return g.name }

// Dim returns 2 * k * (n*p - p^2), the intrinsic real dimension.
func (g *ComplexGrassmann) Dim() int { return g.dim }

// TypicalDist returns sqrt(p * k).
func (g *ComplexGrassmann) TypicalDist() float64 { return math.Sqrt(float64(g.p * g.k)) }

func (g *ComplexGrassmann) carray(op string, p Point) (*multi.CArray, error) {
	arr, ok := p.(*multi.CArray)
	if !ok {
		return nil, &ErrPointType{Op: op, Want: "*multi.CArray", Got: p}
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

// InnerProduct returns the real part of the conjugate-bilinear pairing
// of the flattened tangent arrays.
func (g *ComplexGrassmann) InnerProduct(point, u, v Point) (float64, error) {
	if _, err := g.carray("ComplexGrassmann.InnerProduct", point); err != nil {
		return 0, err
	}
	ua, err := g.carray("ComplexGrassmann.InnerProduct", u)
	if err != nil {
		return 0, err
	}
	va, err := g.carray("ComplexGrassmann.InnerProduct", v)
	if err != nil {
		return 0, err
	}
	dot, err := ua.Dot(va)
	if err != nil {
		return 0, err
	}
	return real(dot), nil
}

// Norm returns the Frobenius norm of the tangent vector.
func (g *ComplexGrassmann) Norm(point, v Point) (float64, error) {
	if _, err := g.carray("ComplexGrassmann.Norm", point); err != nil {
		return 0, err
	}
	va, err := g.carray("ComplexGrassmann.Norm", v)
	if err != nil {
		return 0, err
	}
	return va.Norm(), nil
}

// Dist returns the 2-norm of the principal angles between the two
// subspaces: arc-cosines of the singular values of A^H*B, clamped to 1.
// The singular values are real by construction, so only the real part
// of the arc-cosine survives even when rounding puts a value at exactly
// 1.
func (g *ComplexGrassmann) Dist(a, b Point) (float64, error) {
	aa, err := g.carray("ComplexGrassmann.Dist", a)
	if err != nil {
		return 0, err
	}
	ba, err := g.carray("ComplexGrassmann.Dist", b)
	if err != nil {
		return 0, err
	}

	sums := make([]float64, g.k)
	err = multi.EachBlock(g.k, func(i int) error {
		ahb := lin.CMatMul(g.p, g.n, g.p, lin.CHConj(g.n, g.p, aa.Block(i)), ba.Block(i))
		s, err := lin.CSingularValues(g.p, g.p, ahb)
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
// column space of the point, block-wise: V - X * (X^H * V).
func (g *ComplexGrassmann) Projection(point, vector Point) (Point, error) {
	x, err := g.carray("ComplexGrassmann.Projection", point)
	if err != nil {
		return nil, err
	}
	v, err := g.carray("ComplexGrassmann.Projection", vector)
	if err != nil {
		return nil, err
	}
	xhv, err := multi.ProdC(multi.HConj(x), v)
	if err != nil {
		return nil, err
	}
	xxhv, err := multi.ProdC(x, xhv)
	if err != nil {
		return nil, err
	}
	return v.Sub(xxhv)
}

// EuclideanToRiemannianGradient projects the ambient gradient onto the
// tangent space.
func (g *ComplexGrassmann) EuclideanToRiemannianGradient(point, gradient Point) (Point, error) {
	return g.Projection(point, gradient)
}

// EuclideanToRiemannianHessian projects the ambient Hessian-vector
// product and subtracts the curvature correction V * (X^H * grad).
func (g *ComplexGrassmann) EuclideanToRiemannianHessian(point, gradient, hessian, v Point) (Point, error) {
	x, err := g.carray("ComplexGrassmann.EuclideanToRiemannianHessian", point)
	if err != nil {
		return nil, err
	}
	grad, err := g.carray("ComplexGrassmann.EuclideanToRiemannianHessian", gradient)
	if err != nil {
		return nil, err
	}
	va, err := g.carray("ComplexGrassmann.EuclideanToRiemannianHessian", v)
	if err != nil {
		return nil, err
	}
	projected, err := g.Projection(point, hessian)
	if err != nil {
		return nil, err
	}
	xhg, err := multi.ProdC(multi.HConj(x), grad)
	if err != nil {
		return nil, err
	}
	correction, err := multi.ProdC(va, xhg)
	if err != nil {
		return nil, err
	}
	return projected.(*multi.CArray).Sub(correction)
}

// Retraction returns the polar factor of X + V per block.
func (g *ComplexGrassmann) Retraction(point, v Point) (Point, error) {
	x, err := g.carray("ComplexGrassmann.Retraction", point)
	if err != nil {
		return nil, err
	}
	va, err := g.carray("ComplexGrassmann.Retraction", v)
	if err != nil {
		return nil, err
	}
	y, err := x.Add(va)
	if err != nil {
		return nil, err
	}

	out := multi.ZerosC(g.k, g.n, g.p)
	err = multi.EachBlock(g.k, func(i int) error {
		u, _, vv, err := lin.CSVDThin(g.n, g.p, y.Block(i))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDegenerate, err)
		}
		copy(out.Block(i), lin.CMatMul(g.n, g.p, g.p, u, lin.CHConj(g.p, g.p, vv)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Exp returns the exact geodesic endpoint per block:
//
//	Y = X*V*diag(cos s)*V^H + U*diag(sin s)*V^H
//
// with U*diag(s)*V^H the thin SVD of the tangent vector, followed by a
// mandatory QR re-orthonormalization against rounding drift.
func (g *ComplexGrassmann) Exp(point, v Point) (Point, error) {
	x, err := g.carray("ComplexGrassmann.Exp", point)
	if err != nil {
		return nil, err
	}
	va, err := g.carray("ComplexGrassmann.Exp", v)
	if err != nil {
		return nil, err
	}

	out := multi.ZerosC(g.k, g.n, g.p)
	err = multi.EachBlock(g.k, func(i int) error {
		u, s, vv, err := lin.CSVDThin(g.n, g.p, va.Block(i))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDegenerate, err)
		}

		vcos := make([]complex128, g.p*g.p)
		for r := 0; r < g.p; r++ {
			for c := 0; c < g.p; c++ {
				vcos[r*g.p+c] = vv[r*g.p+c] * complex(math.Cos(s[c]), 0)
			}
		}
		usin := make([]complex128, g.n*g.p)
		for r := 0; r < g.n; r++ {
			for c := 0; c < g.p; c++ {
				usin[r*g.p+c] = u[r*g.p+c] * complex(math.Sin(s[c]), 0)
			}
		}

		vh := lin.CHConj(g.p, g.p, vv)
		xvcos := lin.CMatMul(g.n, g.p, g.p, x.Block(i), vcos)
		y := lin.CMatMul(g.n, g.p, g.p, xvcos, vh)
		usinvh := lin.CMatMul(g.n, g.p, g.p, usin, vh)
		for j := range y {
			y[j] += usinvh[j]
		}

		q, _, err := lin.CQR(g.n, g.p, y)
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

// Log returns the tangent vector at a whose geodesic reaches b, solving
// (B^H*A) * Z = B^H - (B^H*A)*A^H per block and rebuilding the tangent
// from the SVD of Z^H with arctan of the singular values. A singular
// solve wraps ErrDegenerate.
func (g *ComplexGrassmann) Log(a, b Point) (Point, error) {
	aa, err := g.carray("ComplexGrassmann.Log", a)
	if err != nil {
		return nil, err
	}
	ba, err := g.carray("ComplexGrassmann.Log", b)
	if err != nil {
		return nil, err
	}

	out := multi.ZerosC(g.k, g.n, g.p)
	err = multi.EachBlock(g.k, func(i int) error {
		bh := lin.CHConj(g.n, g.p, ba.Block(i))            // p x n
		bhA := lin.CMatMul(g.p, g.n, g.p, bh, aa.Block(i)) // p x p
		ah := lin.CHConj(g.n, g.p, aa.Block(i))            // p x n

		rhs := lin.CMatMul(g.p, g.p, g.n, bhA, ah) // p x n
		for j := range rhs {
			rhs[j] = bh[j] - rhs[j]
		}

		zh, err := lin.CSolveMulti(g.p, g.n, bhA, rhs) // p x n
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDegenerate, err)
		}
		z := lin.CHConj(g.p, g.n, zh) // n x p

		u, s, vv, err := lin.CSVDThin(g.n, g.p, z)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDegenerate, err)
		}
		uatan := make([]complex128, g.n*g.p)
		for r := 0; r < g.n; r++ {
			for c := 0; c < g.p; c++ {
				uatan[r*g.p+c] = u[r*g.p+c] * complex(math.Atan(s[c]), 0)
			}
		}
		copy(out.Block(i), lin.CMatMul(g.n, g.p, g.p, uatan, lin.CHConj(g.p, g.p, vv)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Transport carries a tangent vector by projecting it onto the tangent
// space at the destination.
func (g *ComplexGrassmann) Transport(a, b, v Point) (Point, error) {
	if _, err := g.carray("ComplexGrassmann.Transport", a); err != nil {
		return nil, err
	}
	return transportByProjection(g, b, v)
}

// RandomPoint draws blocks with independent standard-normal real and
// imaginary parts and orthonormalizes each by QR.
func (g *ComplexGrassmann) RandomPoint(rng *rand.Rand) (Point, error) {
	norm := normSource(rng)
	out := multi.ZerosC(g.k, g.n, g.p)
	for i := 0; i < g.k; i++ {
		blk := make([]complex128, g.n*g.p)
		for j := range blk {
			blk[j] = complex(norm(), norm())
		}
		q, _, err := lin.CQR(g.n, g.p, blk)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDegenerate, err)
		}
		copy(out.Block(i), q)
	}
	return out, nil
}

// RandomTangentVector draws a random complex ambient array, projects it
// onto the tangent space at point and normalizes it to unit norm.
func (g *ComplexGrassmann) RandomTangentVector(rng *rand.Rand, point Point) (Point, error) {
	x, err := g.carray("ComplexGrassmann.RandomTangentVector", point)
	if err != nil {
		return nil, err
	}
	norm := normSource(rng)
	ambient := multi.ZerosC(g.k, g.n, g.p)
	data := ambient.Data()
	for j := range data {
		data[j] = complex(norm(), norm())
	}
	projected, err := g.Projection(x, ambient)
	if err != nil {
		return nil, err
	}
	pa := projected.(*multi.CArray)
	n := pa.Norm()
	if n == 0 {
		return nil, fmt.Errorf("%w: zero random tangent vector", ErrDegenerate)
	}
	return pa.Scale(complex(1/n, 0)), nil
}

// ZeroTangentVector returns the zero complex array of point shape.
func (g *ComplexGrassmann) ZeroTangentVector() Point {
	return multi.ZerosC(g.k, g.n, g.p)
}

// PairMean returns the point half-way along the geodesic between a and b.
func (g *ComplexGrassmann) PairMean(a, b Point) (Point, error) {
	return geodesicPairMean(g, a, b)
}
