package lin

import (
	"fmt"
	"math"
	"sort"
)

func checkShape(m, n int, a []float64) error {
	if m < 1 || n < 1 || len(a) != m*n {
		return fmt.Errorf("%w: %dx%d with %d elements", ErrBadShape, m, n, len(a))
	}
	return nil
}

// MatMul computes C = A*B for A (m x k) and B (k x n), row-major.
func MatMul(m, k, n int, a, b []float64) []float64 {
	c := make([]float64, m*n)
	for i := 0; i < m; i++ {
		for l := 0; l < k; l++ {
			av := a[i*k+l]
			if av == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				c[i*n+j] += av * b[l*n+j]
			}
		}
	}
	return c
}

// Transpose returns A^T for A (m x n).
func Transpose(m, n int, a []float64) []float64 {
	t := make([]float64, n*m)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			t[j*m+i] = a[i*n+j]
		}
	}
	return t
}

// Eye returns the n x n identity.
func Eye(n int) []float64 {
	e := make([]float64, n*n)
	for i := 0; i < n; i++ {
		e[i*n+i] = 1
	}
	return e
}

// SolveMulti solves A*X = B for X, with A (n x n) and B (n x m), using
// Gaussian elimination with partial pivoting. A and B are not modified.
func SolveMulti(n, m int, a, b []float64) ([]float64, error) {
	if err := checkShape(n, n, a); err != nil {
		return nil, err
	}
	if err := checkShape(n, m, b); err != nil {
		return nil, err
	}
	aa := make([]float64, len(a))
	copy(aa, a)
	bb := make([]float64, len(b))
	copy(bb, b)

	for k := 0; k < n; k++ {
		piv := k
		maxAbs := math.Abs(aa[k*n+k])
		for i := k + 1; i < n; i++ {
			if v := math.Abs(aa[i*n+k]); v > maxAbs {
				maxAbs = v
				piv = i
			}
		}
		if maxAbs == 0 || math.IsNaN(maxAbs) || math.IsInf(maxAbs, 0) {
			return nil, ErrSingular
		}
		if piv != k {
			for j := k; j < n; j++ {
				aa[k*n+j], aa[piv*n+j] = aa[piv*n+j], aa[k*n+j]
			}
			for j := 0; j < m; j++ {
				bb[k*m+j], bb[piv*m+j] = bb[piv*m+j], bb[k*m+j]
			}
		}

		pivot := aa[k*n+k]
		for i := k + 1; i < n; i++ {
			f := aa[i*n+k] / pivot
			if f == 0 {
				continue
			}
			aa[i*n+k] = 0
			for j := k + 1; j < n; j++ {
				aa[i*n+j] -= f * aa[k*n+j]
			}
			for j := 0; j < m; j++ {
				bb[i*m+j] -= f * bb[k*m+j]
			}
		}
	}

	x := make([]float64, n*m)
	for i := n - 1; i >= 0; i-- {
		pivot := aa[i*n+i]
		if pivot == 0 {
			return nil, ErrSingular
		}
		for j := 0; j < m; j++ {
			sum := bb[i*m+j]
			for k := i + 1; k < n; k++ {
				sum -= aa[i*n+k] * x[k*m+j]
			}
			x[i*m+j] = sum / pivot
		}
	}
	return x, nil
}

// Inverse returns A^-1 for A (n x n).
func Inverse(n int, a []float64) ([]float64, error) {
	return SolveMulti(n, n, a, Eye(n))
}

// rankTol is the relative threshold below which a reduced column in
// modified Gram-Schmidt counts as numerically zero: on rank-deficient
// input the residual is rounding noise, never an exact zero. The
// rounding error of projecting one column is bounded by roughly
// (m + sqrt(m)) * eps relative to the column norm; the factor 8 keeps
// that comfortably inside the threshold.
func rankTol(m int) float64 {
	const eps = 2.220446049250313e-16
	return 8 * float64(m) * eps
}

// QR computes a thin QR factorization of A (m x n, m >= n): A = Q*R with
// Q (m x n) having orthonormal columns and R (n x n) upper-triangular.
// Uses modified Gram-Schmidt. A column whose reduced norm falls below
// rankTol relative to its original norm makes A numerically
// rank-deficient and fails with ErrRankDeficient.
func QR(m, n int, a []float64) (q, r []float64, err error) {
	if err := checkShape(m, n, a); err != nil {
		return nil, nil, err
	}
	q = make([]float64, m*n)
	copy(q, a)
	r = make([]float64, n*n)

	origNorm := make([]float64, n)
	for j := 0; j < n; j++ {
		var sum float64
		for i := 0; i < m; i++ {
			v := a[i*n+j]
			sum += v * v
		}
		origNorm[j] = math.Sqrt(sum)
	}
	tol := rankTol(m)

	for k := 0; k < n; k++ {
		var norm float64
		for i := 0; i < m; i++ {
			v := q[i*n+k]
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm <= tol*origNorm[k] || math.IsNaN(norm) || math.IsInf(norm, 0) {
			return nil, nil, ErrRankDeficient
		}
		r[k*n+k] = norm
		inv := 1 / norm
		for i := 0; i < m; i++ {
			q[i*n+k] *= inv
		}
		for j := k + 1; j < n; j++ {
			var dot float64
			for i := 0; i < m; i++ {
				dot += q[i*n+k] * q[i*n+j]
			}
			r[k*n+j] = dot
			for i := 0; i < m; i++ {
				q[i*n+j] -= dot * q[i*n+k]
			}
		}
	}
	return q, r, nil
}

// EigSym computes the eigendecomposition of a symmetric matrix A (n x n)
// using cyclic Jacobi rotations. It returns the eigenvalues in ascending
// order and the matching eigenvectors as columns of V, so that
// A = V*diag(w)*V^T. Only the symmetric part of A is consulted.
func EigSym(n int, a []float64) (w, v []float64, err error) {
	if err := checkShape(n, n, a); err != nil {
		return nil, nil, err
	}
	aa := make([]float64, len(a))
	copy(aa, a)
	v = Eye(n)

	const (
		maxSweeps = 64
		eps       = 1e-14
	)

	for sweep := 0; sweep < maxSweeps; sweep++ {
		var off float64
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				off += aa[i*n+j] * aa[i*n+j]
			}
		}
		if off < eps*eps {
			break
		}
		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				apq := aa[p*n+q]
				if math.Abs(apq) < eps {
					continue
				}
				app := aa[p*n+p]
				aqq := aa[q*n+q]

				tau := (aqq - app) / (2 * apq)
				t := 1 / (math.Abs(tau) + math.Sqrt(1+tau*tau))
				if tau < 0 {
					t = -t
				}
				c := 1 / math.Sqrt(1+t*t)
				s := t * c

				for k := 0; k < n; k++ {
					if k == p || k == q {
						continue
					}
					akp := aa[k*n+p]
					akq := aa[k*n+q]
					aa[k*n+p] = c*akp - s*akq
					aa[k*n+q] = s*akp + c*akq
					aa[p*n+k] = aa[k*n+p]
					aa[q*n+k] = aa[k*n+q]
				}
				aa[p*n+p] = c*c*app - 2*s*c*apq + s*s*aqq
				aa[q*n+q] = s*s*app + 2*s*c*apq + c*c*aqq
				aa[p*n+q] = 0
				aa[q*n+p] = 0

				for k := 0; k < n; k++ {
					vkp := v[k*n+p]
					vkq := v[k*n+q]
					v[k*n+p] = c*vkp - s*vkq
					v[k*n+q] = s*vkp + c*vkq
				}
			}
		}
	}

	w = make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = aa[i*n+i]
	}

	// Sort ascending, carrying eigenvector columns along.
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return w[idx[i]] < w[idx[j]] })
	ws := make([]float64, n)
	vs := make([]float64, n*n)
	for col, src := range idx {
		ws[col] = w[src]
		for row := 0; row < n; row++ {
			vs[row*n+col] = v[row*n+src]
		}
	}
	return ws, vs, nil
}

// SVDThin computes a thin singular value decomposition A = U*diag(s)*V^T
// for A (m x n, m >= n). It returns U (m x n), s (n) and V (n x n) with
// singular values sorted descending. The factorization goes through the
// eigendecomposition of A^T*A, so tiny singular values are resolved only
// to roughly the square root of machine precision.
func SVDThin(m, n int, a []float64) (u, s, v []float64, err error) {
	if err := checkShape(m, n, a); err != nil {
		return nil, nil, nil, err
	}

	at := Transpose(m, n, a)
	ata := MatMul(n, m, n, at, a)

	evals, vecs, err := EigSym(n, ata)
	if err != nil {
		return nil, nil, nil, err
	}

	// Singular values = sqrt(max(eigenvalue, 0)), sorted descending.
	type pair struct {
		s float64
		i int
	}
	ps := make([]pair, n)
	for i := 0; i < n; i++ {
		ev := evals[i]
		if ev < 0 {
			ev = 0
		}
		ps[i] = pair{s: math.Sqrt(ev), i: i}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].s > ps[j].s })

	v = make([]float64, n*n)
	s = make([]float64, n)
	for col, p := range ps {
		s[col] = p.s
		for row := 0; row < n; row++ {
			v[row*n+col] = vecs[row*n+p.i]
		}
	}

	// U = A*V*diag(1/s).
	av := MatMul(m, n, n, a, v)
	u = make([]float64, m*n)
	for col := 0; col < n; col++ {
		sigma := s[col]
		if sigma == 0 {
			continue
		}
		inv := 1 / sigma
		for row := 0; row < m; row++ {
			u[row*n+col] = av[row*n+col] * inv
		}
	}

	// Re-orthonormalize U via QR to improve stability. Rank-deficient
	// inputs keep the unpolished U (zero columns for zero singular
	// values), matching the convention of the callers.
	if qq, _, qerr := QR(m, n, u); qerr == nil {
		u = qq
	}

	return u, s, v, nil
}

// SingularValues returns the singular values of A (m x n, m >= n) in
// descending order without forming U or V.
func SingularValues(m, n int, a []float64) ([]float64, error) {
	if err := checkShape(m, n, a); err != nil {
		return nil, err
	}
	at := Transpose(m, n, a)
	evals, _, err := EigSym(n, MatMul(n, m, n, at, a))
	if err != nil {
		return nil, err
	}
	s := make([]float64, n)
	for i := 0; i < n; i++ {
		ev := evals[n-1-i]
		if ev < 0 {
			ev = 0
		}
		s[i] = math.Sqrt(ev)
	}
	return s, nil
}
