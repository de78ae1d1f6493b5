package lin

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
)

func checkShapeC(m, n int, a []complex128) error {
	if m < 1 || n < 1 || len(a) != m*n {
		return fmt.Errorf("%w: %dx%d with %d elements", ErrBadShape, m, n, len(a))
	}
	return nil
}

// CMatMul computes C = A*B for complex A (m x k) and B (k x n).
func CMatMul(m, k, n int, a, b []complex128) []complex128 {
	c := make([]complex128, m*n)
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

// CHConj returns the conjugate transpose A^H for A (m x n).
func CHConj(m, n int, a []complex128) []complex128 {
	t := make([]complex128, n*m)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			t[j*m+i] = cmplx.Conj(a[i*n+j])
		}
	}
	return t
}

// CEye returns the n x n complex identity.
func CEye(n int) []complex128 {
	e := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		e[i*n+i] = 1
	}
	return e
}

// CSolveMulti solves A*X = B for complex A (n x n) and B (n x m) using
// Gaussian elimination with partial pivoting on the modulus.
func CSolveMulti(n, m int, a, b []complex128) ([]complex128, error) {
	if err := checkShapeC(n, n, a); err != nil {
		return nil, err
	}
	if err := checkShapeC(n, m, b); err != nil {
		return nil, err
	}
	aa := make([]complex128, len(a))
	copy(aa, a)
	bb := make([]complex128, len(b))
	copy(bb, b)

	for k := 0; k < n; k++ {
		piv := k
		maxAbs := cmplx.Abs(aa[k*n+k])
		for i := k + 1; i < n; i++ {
			if v := cmplx.Abs(aa[i*n+k]); v > maxAbs {
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

	x := make([]complex128, n*m)
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

// CInverse returns A^-1 for complex A (n x n).
func CInverse(n int, a []complex128) ([]complex128, error) {
	return CSolveMulti(n, n, a, CEye(n))
}

// CQR computes a thin QR factorization of complex A (m x n, m >= n) by
// modified Gram-Schmidt with the conjugate inner product: A = Q*R,
// Q^H*Q = I. Numerical rank deficiency fails with ErrRankDeficient,
// under the same relative threshold as QR.
func CQR(m, n int, a []complex128) (q, r []complex128, err error) {
	if err := checkShapeC(m, n, a); err != nil {
		return nil, nil, err
	}
	q = make([]complex128, m*n)
	copy(q, a)
	r = make([]complex128, n*n)

	origNorm := make([]float64, n)
	for j := 0; j < n; j++ {
		var sum float64
		for i := 0; i < m; i++ {
			v := a[i*n+j]
			sum += real(v)*real(v) + imag(v)*imag(v)
		}
		origNorm[j] = math.Sqrt(sum)
	}
	tol := rankTol(m)

	for k := 0; k < n; k++ {
		var norm float64
		for i := 0; i < m; i++ {
			v := q[i*n+k]
			norm += real(v)*real(v) + imag(v)*imag(v)
		}
		norm = math.Sqrt(norm)
		if norm <= tol*origNorm[k] || math.IsNaN(norm) || math.IsInf(norm, 0) {
			return nil, nil, ErrRankDeficient
		}
		r[k*n+k] = complex(norm, 0)
		inv := complex(1/norm, 0)
		for i := 0; i < m; i++ {
			q[i*n+k] *= inv
		}
		for j := k + 1; j < n; j++ {
			var dot complex128
			for i := 0; i < m; i++ {
				dot += cmplx.Conj(q[i*n+k]) * q[i*n+j]
			}
			r[k*n+j] = dot
			for i := 0; i < m; i++ {
				q[i*n+j] -= dot * q[i*n+k]
			}
		}
	}
	return q, r, nil
}

// CEigHerm computes the eigendecomposition of a Hermitian matrix A (n x n)
// using cyclic Jacobi rotations. Each rotation first rotates the phase of
// the pivot entry onto the real axis and then applies the real Jacobi
// angle, which keeps the working matrix Hermitian throughout. It returns
// the (real) eigenvalues in ascending order and the eigenvectors as
// columns of V, so that A = V*diag(w)*V^H.
func CEigHerm(n int, a []complex128) (w []float64, v []complex128, err error) {
	if err := checkShapeC(n, n, a); err != nil {
		return nil, nil, err
	}
	aa := make([]complex128, len(a))
	copy(aa, a)
	v = CEye(n)

	const (
		maxSweeps = 64
		eps       = 1e-14
	)

	for sweep := 0; sweep < maxSweeps; sweep++ {
		var off float64
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				z := aa[i*n+j]
				off += real(z)*real(z) + imag(z)*imag(z)
			}
		}
		if off < eps*eps {
			break
		}
		for p := 0; p < n-1; p++ {
			for q := p + 1; q < n; q++ {
				apq := aa[p*n+q]
				rho := cmplx.Abs(apq)
				if rho < eps {
					continue
				}
				phase := apq / complex(rho, 0)
				app := real(aa[p*n+p])
				aqq := real(aa[q*n+q])

				tau := (aqq - app) / (2 * rho)
				t := 1 / (math.Abs(tau) + math.Sqrt(1+tau*tau))
				if tau < 0 {
					t = -t
				}
				c := 1 / math.Sqrt(1+t*t)
				s := t * c

				// Unitary G differs from the real rotation only by the
				// phase folded into column q.
				gpp := complex(c, 0)
				gpq := complex(s, 0)
				gqp := -complex(s, 0) * cmplx.Conj(phase)
				gqq := complex(c, 0) * cmplx.Conj(phase)

				// A <- G^H * A * G, columns first, then rows.
				for k := 0; k < n; k++ {
					akp := aa[k*n+p]
					akq := aa[k*n+q]
					aa[k*n+p] = akp*gpp + akq*gqp
					aa[k*n+q] = akp*gpq + akq*gqq
				}
				for k := 0; k < n; k++ {
					apk := aa[p*n+k]
					aqk := aa[q*n+k]
					aa[p*n+k] = cmplx.Conj(gpp)*apk + cmplx.Conj(gqp)*aqk
					aa[q*n+k] = cmplx.Conj(gpq)*apk + cmplx.Conj(gqq)*aqk
				}
				aa[p*n+q] = 0
				aa[q*n+p] = 0
				aa[p*n+p] = complex(real(aa[p*n+p]), 0)
				aa[q*n+q] = complex(real(aa[q*n+q]), 0)

				// V <- V * G.
				for k := 0; k < n; k++ {
					vkp := v[k*n+p]
					vkq := v[k*n+q]
					v[k*n+p] = vkp*gpp + vkq*gqp
					v[k*n+q] = vkp*gpq + vkq*gqq
				}
			}
		}
	}

	w = make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = real(aa[i*n+i])
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return w[idx[i]] < w[idx[j]] })
	ws := make([]float64, n)
	vs := make([]complex128, n*n)
	for col, src := range idx {
		ws[col] = w[src]
		for row := 0; row < n; row++ {
			vs[row*n+col] = v[row*n+src]
		}
	}
	return ws, vs, nil
}

// CSVDThin computes a thin SVD A = U*diag(s)*V^H for complex A (m x n,
// m >= n) via the eigendecomposition of A^H*A. Singular values are real,
// non-negative and sorted descending.
func CSVDThin(m, n int, a []complex128) (u []complex128, s []float64, v []complex128, err error) {
	if err := checkShapeC(m, n, a); err != nil {
		return nil, nil, nil, err
	}

	ah := CHConj(m, n, a)
	aha := CMatMul(n, m, n, ah, a)

	evals, vecs, err := CEigHerm(n, aha)
	if err != nil {
		return nil, nil, nil, err
	}

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

	v = make([]complex128, n*n)
	s = make([]float64, n)
	for col, p := range ps {
		s[col] = p.s
		for row := 0; row < n; row++ {
			v[row*n+col] = vecs[row*n+p.i]
		}
	}

	av := CMatMul(m, n, n, a, v)
	u = make([]complex128, m*n)
	for col := 0; col < n; col++ {
		sigma := s[col]
		if sigma == 0 {
			continue
		}
		inv := complex(1/sigma, 0)
		for row := 0; row < m; row++ {
			u[row*n+col] = av[row*n+col] * inv
		}
	}

	if qq, _, qerr := CQR(m, n, u); qerr == nil {
		u = qq
	}

	return u, s, v, nil
}

// CSingularValues returns the singular values of complex A (m x n,
// m >= n) in descending order.
func CSingularValues(m, n int, a []complex128) ([]float64, error) {
	if err := checkShapeC(m, n, a); err != nil {
		return nil, err
	}
	ah := CHConj(m, n, a)
	evals, _, err := CEigHerm(n, CMatMul(n, m, n, ah, a))
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
