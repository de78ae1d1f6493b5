// Package riemgo provides Riemannian-manifold geometry primitives for
// optimizing smooth functions over constrained parameter spaces.
//
// A Manifold supplies the geometric operations an iterative solver
// consumes each step: projection onto tangent spaces, retraction,
// geodesic exponential and logarithm maps, Riemannian inner products and
// distances, and conversion of ambient (Euclidean) gradients and
// Hessian-vector products into their Riemannian counterparts.
//
// # Quick Start
//
//	gr, _ := riemgo.NewGrassmann(128, 3, 1)
//	x, _ := gr.RandomPoint(nil)
//	v, _ := gr.RandomTangentVector(nil, x)
//	y, _ := gr.Exp(x, v)
//	d, _ := gr.Dist(x, y)
//
// Concrete geometries: Grassmann and ComplexGrassmann (subspace
// manifolds, real and complex, optionally batched over k independent
// blocks), Euclidean, Sphere, Oblique, and Product, which composes any
// tuple of manifolds into one. Points and tangent vectors are dense
// arrays from the multi package (*multi.Array, *multi.CArray) or a
// Tuple of those for Product.
//
// All manifold values are immutable after construction and safe for
// concurrent use; every operation is a pure function over its
// arguments. Failures (invalid construction parameters, shape
// mismatches, numerically degenerate solves) are returned as errors and
// never retried or logged internally.
//
// The automatic-differentiation backend that produces ambient gradient
// and Hessian-vector-product callables, and the solver loop that drives
// points along the manifold, are external to this module: the geometry
// layer treats both as black boxes.
package riemgo
