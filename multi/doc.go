// Package multi provides vectorized linear algebra over batched stacks
// of dense matrices.
//
// An Array is a stack of k >= 1 real matrices of identical shape stored
// in one flat row-major slice; CArray is the complex128 analogue. Every
// operation applies block-wise along the batch axis, with k == 1 simply
// the unbatched special case. Blocks are fully independent of each
// other, so batched operations with heavy per-block work fan out across
// goroutines without changing results.
//
// The matrix logarithm and exponential offer a closed-form
// eigendecomposition path behind a caller-supplied precondition flag.
// Guaranteeing the precondition (symmetry/Hermitian-ness, positive
// definiteness) is the caller's responsibility: the fast path applied
// to a matrix that violates it silently returns numerically meaningless
// results.
package multi
