// Package lin provides dense linear-algebra kernels over flat row-major
// slices. This is an internal package - external users should use the
// multi package or the manifold types.
//
// All kernels operate on a single matrix; batching over stacks of
// matrices is handled by the callers. Real kernels work on []float64,
// complex kernels on []complex128. A matrix of m rows and n columns is
// stored as a slice of length m*n with element (i, j) at index i*n+j.
package lin
