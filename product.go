package riemgo

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Product presents a tuple of heterogeneous manifolds as a single
// manifold over tuples of points. Every per-point operation delegates
// element-wise; aggregate quantities combine per-constituent results
// (summed inner products, root-sum-square distances).
type Product struct {
	manifolds []Manifold
	dim       int
	name      string
}

// NewProduct composes the given manifolds into their Cartesian product.
func NewProduct(manifolds ...Manifold) (*Product, error) {
	if len(manifolds) == 0 {
		return nil, ErrEmptyProduct
	}
	names := make([]string, len(manifolds))
	dim := 0
	for i, m := range manifolds {
		names[i] = m.Name()
		dim += m.Dim()
	}
	return &Product{
		manifolds: append([]Manifold(nil), manifolds...),
		dim:       dim,
		name:      "Product manifold: " + strings.Join(names, " x "),
	}, nil
}

// Manifolds returns the constituent manifolds in order.
func (p *Product) Manifolds() []Manifold {
	return append([]Manifold(nil), p.manifolds...)
}

// Name returns a human-readable description of the manifold.
func (p *Product) Name() string { return p.name }

// Dim returns the sum of the constituent dimensions.
func (p *Product) Dim() int { return p.dim }

// TypicalDist returns the Euclidean norm of the constituent typical
// distances.
func (p *Product) TypicalDist() float64 {
	var sum float64
	for _, m := range p.manifolds {
		td := m.TypicalDist()
		sum += td * td
	}
	return math.Sqrt(sum)
}

func (p *Product) tuple(op string, pt Point) (Tuple, error) {
	t, ok := pt.(Tuple)
	if !ok {
		return nil, &ErrPointType{Op: op, Want: "riemgo.Tuple", Got: pt}
	}
	if len(t) != len(p.manifolds) {
		return nil, &ErrPointShape{
			Op:   op,
			Want: fmt.Sprintf("tuple of %d entries", len(p.manifolds)),
			Got:  fmt.Sprintf("tuple of %d entries", len(t)),
		}
	}
	return t, nil
}

// InnerProduct sums the constituent inner products.
func (p *Product) InnerProduct(point, u, v Point) (float64, error) {
	pt, err := p.tuple("Product.InnerProduct", point)
	if err != nil {
		return 0, err
	}
	ut, err := p.tuple("Product.InnerProduct", u)
	if err != nil {
		return 0, err
	}
	vt, err := p.tuple("Product.InnerProduct", v)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i, m := range p.manifolds {
		ip, err := m.InnerProduct(pt[i], ut[i], vt[i])
		if err != nil {
			return 0, err
		}
		sum += ip
	}
	return sum, nil
}

// Norm returns sqrt(InnerProduct(point, v, v)).
func (p *Product) Norm(point, v Point) (float64, error) {
	ip, err := p.InnerProduct(point, v, v)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(ip), nil
}

// Dist returns the Euclidean combination of the constituent distances:
// sqrt(sum of squared per-manifold distances).
func (p *Product) Dist(a, b Point) (float64, error) {
	at, err := p.tuple("Product.Dist", a)
	if err != nil {
		return 0, err
	}
	bt, err := p.tuple("Product.Dist", b)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i, m := range p.manifolds {
		d, err := m.Dist(at[i], bt[i])
		if err != nil {
			return 0, err
		}
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// apply runs one binary element-wise operation across the tuple.
func (p *Product) apply(op string, a, b Point, fn func(m Manifold, a, b Point) (Point, error)) (Point, error) {
	at, err := p.tuple(op, a)
	if err != nil {
		return nil, err
	}
	bt, err := p.tuple(op, b)
	if err != nil {
		return nil, err
	}
	out := make(Tuple, len(p.manifolds))
	for i, m := range p.manifolds {
		r, err := fn(m, at[i], bt[i])
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// Projection projects each tuple entry onto its tangent space.
func (p *Product) Projection(point, vector Point) (Point, error) {
	return p.apply("Product.Projection", point, vector, func(m Manifold, a, b Point) (Point, error) {
		return m.Projection(a, b)
	})
}

// EuclideanToRiemannianGradient converts each tuple entry.
func (p *Product) EuclideanToRiemannianGradient(point, gradient Point) (Point, error) {
	return p.apply("Product.EuclideanToRiemannianGradient", point, gradient, func(m Manifold, a, b Point) (Point, error) {
		return m.EuclideanToRiemannianGradient(a, b)
	})
}

// EuclideanToRiemannianHessian converts each tuple entry.
func (p *Product) EuclideanToRiemannianHessian(point, gradient, hessian, v Point) (Point, error) {
	const op = "Product.EuclideanToRiemannianHessian"
	pt, err := p.tuple(op, point)
	if err != nil {
		return nil, err
	}
	gt, err := p.tuple(op, gradient)
	if err != nil {
		return nil, err
	}
	ht, err := p.tuple(op, hessian)
	if err != nil {
		return nil, err
	}
	vt, err := p.tuple(op, v)
	if err != nil {
		return nil, err
	}
	out := make(Tuple, len(p.manifolds))
	for i, m := range p.manifolds {
		r, err := m.EuclideanToRiemannianHessian(pt[i], gt[i], ht[i], vt[i])
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// Retraction retracts each tuple entry.
func (p *Product) Retraction(point, v Point) (Point, error) {
	return p.apply("Product.Retraction", point, v, func(m Manifold, a, b Point) (Point, error) {
		return m.Retraction(a, b)
	})
}

// Exp follows each constituent geodesic.
func (p *Product) Exp(point, v Point) (Point, error) {
	return p.apply("Product.Exp", point, v, func(m Manifold, a, b Point) (Point, error) {
		return m.Exp(a, b)
	})
}

// Log returns the tuple of constituent logarithms.
func (p *Product) Log(a, b Point) (Point, error) {
	return p.apply("Product.Log", a, b, func(m Manifold, a, b Point) (Point, error) {
		return m.Log(a, b)
	})
}

// Transport carries each tuple entry to the destination tangent space.
func (p *Product) Transport(a, b, v Point) (Point, error) {
	const op = "Product.Transport"
	at, err := p.tuple(op, a)
	if err != nil {
		return nil, err
	}
	bt, err := p.tuple(op, b)
	if err != nil {
		return nil, err
	}
	vt, err := p.tuple(op, v)
	if err != nil {
		return nil, err
	}
	out := make(Tuple, len(p.manifolds))
	for i, m := range p.manifolds {
		r, err := m.Transport(at[i], bt[i], vt[i])
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// RandomPoint samples each constituent independently.
func (p *Product) RandomPoint(rng *rand.Rand) (Point, error) {
	out := make(Tuple, len(p.manifolds))
	for i, m := range p.manifolds {
		r, err := m.RandomPoint(rng)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// RandomTangentVector samples each constituent independently and
// rescales the tuple to unit norm under the product metric.
func (p *Product) RandomTangentVector(rng *rand.Rand, point Point) (Point, error) {
	pt, err := p.tuple("Product.RandomTangentVector", point)
	if err != nil {
		return nil, err
	}
	out := make(Tuple, len(p.manifolds))
	for i, m := range p.manifolds {
		r, err := m.RandomTangentVector(rng, pt[i])
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	n, err := p.Norm(point, out)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: zero random tangent vector", ErrDegenerate)
	}
	return scaleTangent(out, 1/n)
}

// ZeroTangentVector returns the tuple of constituent zero vectors.
func (p *Product) ZeroTangentVector() Point {
	out := make(Tuple, len(p.manifolds))
	for i, m := range p.manifolds {
		out[i] = m.ZeroTangentVector()
	}
	return out
}

// PairMean returns the point half-way along the product geodesic:
// Exp(a, 0.5 * Log(a, b)).
func (p *Product) PairMean(a, b Point) (Point, error) {
	return geodesicPairMean(p, a, b)
}
