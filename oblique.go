package riemgo

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hupe1980/riemgo/multi"
)

// Oblique is the manifold of m x n real matrices whose columns each
// have unit 2-norm: a product of n spheres in R^m, treated as a
// Riemannian submanifold of the m x n matrices with the trace inner
// product. Points are *multi.Array values with k == 1.
type Oblique struct {
	m, n int
	name string
}

// NewOblique constructs the oblique manifold OB(m, n) of m x n matrices
// with unit-norm columns, m >= 2.
func NewOblique(m, n int) (*Oblique, error) {
	if m < 2 || n < 1 {
		return nil, fmt.Errorf("%w: Oblique needs m >= 2 and n >= 1, got m=%d, n=%d", ErrInvalidSize, m, n)
	}
	return &Oblique{m: m, n: n, name: fmt.Sprintf("Oblique manifold OB(%d,%d)", m, n)}, nil
}

// Name returns a human-readable description of the manifold.
func (o *Oblique) Name() string { return o.name }

// Dim returns (m - 1) * n.
func (o *Oblique) Dim() int { return (o.m - 1) * o.n }

// TypicalDist returns pi * sqrt(n).
func (o *Oblique) TypicalDist() float64 { return math.Pi * math.Sqrt(float64(o.n)) }

func (o *Oblique) array(op string, p Point) (*multi.Array, error) {
	arr, ok := p.(*multi.Array)
	if !ok {
		return nil, &ErrPointType{Op: op, Want: "*multi.Array", Got: p}
	}
	if k, r, c := arr.Dims(); k != 1 || r != o.m || c != o.n {
		return nil, &ErrPointShape{
			Op:   op,
			Want: fmt.Sprintf("1x%dx%d", o.m, o.n),
			Got:  fmt.Sprintf("%dx%dx%d", k, r, c),
		}
	}
	return arr, nil
}

// colDots returns the per-column inner products of a and b.
func (o *Oblique) colDots(a, b *multi.Array) []float64 {
	dots := make([]float64, o.n)
	for c := 0; c < o.n; c++ {
		var sum float64
		for r := 0; r < o.m; r++ {
			sum += a.At(0, r, c) * b.At(0, r, c)
		}
		dots[c] = sum
	}
	return dots
}

// normalizeColumns rescales every column of x to unit norm.
func (o *Oblique) normalizeColumns(x *multi.Array) (*multi.Array, error) {
	out := x.Clone()
	for c := 0; c < o.n; c++ {
		var sum float64
		for r := 0; r < o.m; r++ {
			v := out.At(0, r, c)
			sum += v * v
		}
		norm := math.Sqrt(sum)
		if norm == 0 {
			return nil, fmt.Errorf("%w: cannot normalize zero column %d", ErrDegenerate, c)
		}
		inv := 1 / norm
		for r := 0; r < o.m; r++ {
			out.Set(0, r, c, out.At(0, r, c)*inv)
		}
	}
	return out, nil
}

// InnerProduct returns the trace inner product of the two tangent
// vectors.
func (o *Oblique) InnerProduct(point, u, v Point) (float64, error) {
	if _, err := o.array("Oblique.InnerProduct", point); err != nil {
		return 0, err
	}
	ua, err := o.array("Oblique.InnerProduct", u)
	if err != nil {
		return 0, err
	}
	va, err := o.array("Oblique.InnerProduct", v)
	if err != nil {
		return 0, err
	}
	return ua.Dot(va)
}

// Norm returns the Frobenius norm of v.
func (o *Oblique) Norm(point, v Point) (float64, error) {
	if _, err := o.array("Oblique.Norm", point); err != nil {
		return 0, err
	}
	va, err := o.array("Oblique.Norm", v)
	if err != nil {
		return 0, err
	}
	return va.Norm(), nil
}

// Dist returns the 2-norm over columns of the per-column great-circle
// distances.
func (o *Oblique) Dist(a, b Point) (float64, error) {
	aa, err := o.array("Oblique.Dist", a)
	if err != nil {
		return 0, err
	}
	ba, err := o.array("Oblique.Dist", b)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, dot := range o.colDots(aa, ba) {
		if dot > 1 {
			dot = 1
		} else if dot < -1 {
			dot = -1
		}
		theta := math.Acos(dot)
		sum += theta * theta
	}
	return math.Sqrt(sum), nil
}

// Projection removes the radial component of every column:
// H - X * diag(colsum(X .* H)).
func (o *Oblique) Projection(point, vector Point) (Point, error) {
	xa, err := o.array("Oblique.Projection", point)
	if err != nil {
		return nil, err
	}
	ha, err := o.array("Oblique.Projection", vector)
	if err != nil {
		return nil, err
	}
	out := ha.Clone()
	for c, dot := range o.colDots(xa, ha) {
		for r := 0; r < o.m; r++ {
			out.Set(0, r, c, out.At(0, r, c)-dot*xa.At(0, r, c))
		}
	}
	return out, nil
}

// EuclideanToRiemannianGradient projects the ambient gradient onto the
// tangent space.
func (o *Oblique) EuclideanToRiemannianGradient(point, gradient Point) (Point, error) {
	return o.Projection(point, gradient)
}

// EuclideanToRiemannianHessian projects the ambient Hessian-vector
// product and subtracts the per-column curvature correction
// U * diag(colsum(X .* grad)).
func (o *Oblique) EuclideanToRiemannianHessian(point, gradient, hessian, v Point) (Point, error) {
	xa, err := o.array("Oblique.EuclideanToRiemannianHessian", point)
	if err != nil {
		return nil, err
	}
	ga, err := o.array("Oblique.EuclideanToRiemannianHessian", gradient)
	if err != nil {
		return nil, err
	}
	va, err := o.array("Oblique.EuclideanToRiemannianHessian", v)
	if err != nil {
		return nil, err
	}
	projected, err := o.Projection(point, hessian)
	if err != nil {
		return nil, err
	}
	out := projected.(*multi.Array)
	for c, dot := range o.colDots(xa, ga) {
		for r := 0; r < o.m; r++ {
			out.Set(0, r, c, out.At(0, r, c)-dot*va.At(0, r, c))
		}
	}
	return out, nil
}

// Retraction normalizes the columns of X + U back onto their spheres.
func (o *Oblique) Retraction(point, v Point) (Point, error) {
	xa, err := o.array("Oblique.Retraction", point)
	if err != nil {
		return nil, err
	}
	va, err := o.array("Oblique.Retraction", v)
	if err != nil {
		return nil, err
	}
	sum, err := xa.Add(va)
	if err != nil {
		return nil, err
	}
	return o.normalizeColumns(sum)
}

// Exp follows each column's great circle independently. Columns whose
// step is too small for the sin(t)/t form use the retraction instead.
func (o *Oblique) Exp(point, v Point) (Point, error) {
	xa, err := o.array("Oblique.Exp", point)
	if err != nil {
		return nil, err
	}
	va, err := o.array("Oblique.Exp", v)
	if err != nil {
		return nil, err
	}
	out := multi.Zeros(1, o.m, o.n)
	for c := 0; c < o.n; c++ {
		var sum float64
		for r := 0; r < o.m; r++ {
			u := va.At(0, r, c)
			sum += u * u
		}
		t := math.Sqrt(sum)
		if t <= smallStep {
			var nsum float64
			for r := 0; r < o.m; r++ {
				y := xa.At(0, r, c) + va.At(0, r, c)
				out.Set(0, r, c, y)
				nsum += y * y
			}
			norm := math.Sqrt(nsum)
			if norm == 0 {
				return nil, fmt.Errorf("%w: cannot normalize zero column %d", ErrDegenerate, c)
			}
			for r := 0; r < o.m; r++ {
				out.Set(0, r, c, out.At(0, r, c)/norm)
			}
			continue
		}
		cosT := math.Cos(t)
		sincT := math.Sin(t) / t
		for r := 0; r < o.m; r++ {
			out.Set(0, r, c, xa.At(0, r, c)*cosT+va.At(0, r, c)*sincT)
		}
	}
	return out, nil
}

// Log returns the column-wise great-circle logarithm. Per column the
// projected difference is rescaled by dist/norm; for nearly coincident
// columns both vanish together and the ratio is forced to 1 to avoid a
// NaN.
func (o *Oblique) Log(a, b Point) (Point, error) {
	aa, err := o.array("Oblique.Log", a)
	if err != nil {
		return nil, err
	}
	ba, err := o.array("Oblique.Log", b)
	if err != nil {
		return nil, err
	}
	diff, err := ba.Sub(aa)
	if err != nil {
		return nil, err
	}
	projected, err := o.Projection(a, diff)
	if err != nil {
		return nil, err
	}
	out := projected.(*multi.Array)
	dots := o.colDots(aa, ba)
	for c := 0; c < o.n; c++ {
		dot := dots[c]
		if dot > 1 {
			dot = 1
		} else if dot < -1 {
			dot = -1
		}
		d := math.Acos(dot)
		factor := 1.0
		if d > 1e-6 {
			var sum float64
			for r := 0; r < o.m; r++ {
				v := out.At(0, r, c)
				sum += v * v
			}
			norm := math.Sqrt(sum)
			if norm == 0 {
				return nil, fmt.Errorf("%w: logarithm between opposite columns", ErrDegenerate)
			}
			factor = d / norm
		}
		for r := 0; r < o.m; r++ {
			out.Set(0, r, c, out.At(0, r, c)*factor)
		}
	}
	return out, nil
}

// Transport carries a tangent vector by projecting it onto the tangent
// space at the destination.
func (o *Oblique) Transport(a, b, v Point) (Point, error) {
	if _, err := o.array("Oblique.Transport", a); err != nil {
		return nil, err
	}
	return transportByProjection(o, b, v)
}

// RandomPoint normalizes the columns of a standard-normal matrix.
func (o *Oblique) RandomPoint(rng *rand.Rand) (Point, error) {
	norm := normSource(rng)
	out := multi.Zeros(1, o.m, o.n)
	data := out.Data()
	for i := range data {
		data[i] = norm()
	}
	return o.normalizeColumns(out)
}

// RandomTangentVector projects a standard-normal draw onto the tangent
// space at point and normalizes it to unit norm.
func (o *Oblique) RandomTangentVector(rng *rand.Rand, point Point) (Point, error) {
	if _, err := o.array("Oblique.RandomTangentVector", point); err != nil {
		return nil, err
	}
	norm := normSource(rng)
	ambient := multi.Zeros(1, o.m, o.n)
	data := ambient.Data()
	for i := range data {
		data[i] = norm()
	}
	projected, err := o.Projection(point, ambient)
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

// ZeroTangentVector returns the zero array of point shape.
func (o *Oblique) ZeroTangentVector() Point {
	return multi.Zeros(1, o.m, o.n)
}

// PairMean normalizes the columns of X + Y: cheaper than the geodesic
// midpoint and equal to it column-wise on the sphere.
func (o *Oblique) PairMean(a, b Point) (Point, error) {
	aa, err := o.array("Oblique.PairMean", a)
	if err != nil {
		return nil, err
	}
	ba, err := o.array("Oblique.PairMean", b)
	if err != nil {
		return nil, err
	}
	sum, err := aa.Add(ba)
	if err != nil {
		return nil, err
	}
	return o.normalizeColumns(sum)
}
