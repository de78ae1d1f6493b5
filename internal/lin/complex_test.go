package lin

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomCMatrix(rng *rand.Rand, m, n int) []complex128 {
	a := make([]complex128, m*n)
	for i := range a {
		a[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	return a
}

func maxAbsDiffC(a, b []complex128) float64 {
	var max float64
	for i := range a {
		if d := cmplx.Abs(a[i] - b[i]); d > max {
			max = d
		}
	}
	return max
}

func TestCMatMul(t *testing.T) {
	// (1+i) * (2-i) = 3+i, plus a second column to exercise the layout.
	a := []complex128{1 + 1i, 2i}
	b := []complex128{2 - 1i, 1, 3, -1i}
	got := CMatMul(1, 2, 2, a, b)
	want := []complex128{3 + 1i + 6i, 1 + 1i + 2}
	assert.InDelta(t, 0, maxAbsDiffC(got, want), 1e-14)
}

func TestCHConj(t *testing.T) {
	a := []complex128{1 + 2i, 3, 4 - 1i, 5i}
	got := CHConj(2, 2, a)
	want := []complex128{1 - 2i, 4 + 1i, 3, -5i}
	assert.Equal(t, want, got)
}

func TestCSolveMulti(t *testing.T) {
	t.Run("RandomRoundTrip", func(t *testing.T) {
		rng := rand.New(rand.NewSource(10))
		a := randomCMatrix(rng, 4, 4)
		x := randomCMatrix(rng, 4, 2)
		b := CMatMul(4, 4, 2, a, x)
		got, err := CSolveMulti(4, 2, a, b)
		require.NoError(t, err)
		assert.InDelta(t, 0, maxAbsDiffC(x, got), 1e-9)
	})

	t.Run("Singular", func(t *testing.T) {
		a := []complex128{1 + 1i, 2 + 2i, 2 + 2i, 4 + 4i} // rank 1
		_, err := CSolveMulti(2, 1, a, []complex128{1, 1})
		assert.ErrorIs(t, err, ErrSingular)
	})
}

func TestCInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	a := randomCMatrix(rng, 3, 3)
	inv, err := CInverse(3, a)
	require.NoError(t, err)
	assert.InDelta(t, 0, maxAbsDiffC(CMatMul(3, 3, 3, a, inv), CEye(3)), 1e-10)
}

func TestCQR(t *testing.T) {
	t.Run("Orthonormality", func(t *testing.T) {
		rng := rand.New(rand.NewSource(12))
		m, n := 6, 3
		a := randomCMatrix(rng, m, n)
		q, r, err := CQR(m, n, a)
		require.NoError(t, err)

		// Q^H*Q = I.
		qhq := CMatMul(n, m, n, CHConj(m, n, q), q)
		assert.InDelta(t, 0, maxAbsDiffC(qhq, CEye(n)), 1e-12)

		// R upper-triangular with real positive diagonal.
		for i := 0; i < n; i++ {
			assert.Greater(t, real(r[i*n+i]), 0.0)
			assert.InDelta(t, 0, imag(r[i*n+i]), 1e-14)
			for j := 0; j < i; j++ {
				assert.InDelta(t, 0, cmplx.Abs(r[i*n+j]), 1e-14)
			}
		}

		// A = Q*R.
		qr := CMatMul(m, n, n, q, r)
		assert.InDelta(t, 0, maxAbsDiffC(a, qr), 1e-12)
	})

	t.Run("RankDeficient", func(t *testing.T) {
		// Rank 1: the second column is a complex multiple of the first,
		// so its Gram-Schmidt residual is rounding noise, not an exact
		// zero.
		f := 2 - 1i
		a := []complex128{
			1 + 1i, (1 + 1i) * f,
			2 - 1i, (2 - 1i) * f,
			1i, 1i * f,
		}
		_, _, err := CQR(3, 2, a)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRankDeficient)
	})

	t.Run("ZeroColumn", func(t *testing.T) {
		a := []complex128{1, 0, 1i, 0, 1, 0}
		_, _, err := CQR(3, 2, a)
		assert.ErrorIs(t, err, ErrRankDeficient)
	})
}

func TestCEigHerm(t *testing.T) {
	t.Run("KnownEigenvalues", func(t *testing.T) {
		// [[2, i], [-i, 2]] has eigenvalues 1 and 3.
		a := []complex128{2, 1i, -1i, 2}
		w, v, err := CEigHerm(2, a)
		require.NoError(t, err)
		assert.InDelta(t, 1, w[0], 1e-12)
		assert.InDelta(t, 3, w[1], 1e-12)

		scaled := make([]complex128, 4)
		for r := 0; r < 2; r++ {
			for c := 0; c < 2; c++ {
				scaled[r*2+c] = v[r*2+c] * complex(w[c], 0)
			}
		}
		back := CMatMul(2, 2, 2, scaled, CHConj(2, 2, v))
		assert.InDelta(t, 0, maxAbsDiffC(a, back), 1e-12)
	})

	t.Run("RandomReconstruction", func(t *testing.T) {
		rng := rand.New(rand.NewSource(13))
		n := 5
		g := randomCMatrix(rng, n, n)
		// Hermitian part of g.
		gh := CHConj(n, n, g)
		a := make([]complex128, n*n)
		for i := range a {
			a[i] = 0.5 * (g[i] + gh[i])
		}
		w, v, err := CEigHerm(n, a)
		require.NoError(t, err)

		for i := 1; i < n; i++ {
			assert.LessOrEqual(t, w[i-1], w[i])
		}

		// V unitary.
		vhv := CMatMul(n, n, n, CHConj(n, n, v), v)
		assert.InDelta(t, 0, maxAbsDiffC(vhv, CEye(n)), 1e-10)

		scaled := make([]complex128, n*n)
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				scaled[r*n+c] = v[r*n+c] * complex(w[c], 0)
			}
		}
		back := CMatMul(n, n, n, scaled, CHConj(n, n, v))
		assert.InDelta(t, 0, maxAbsDiffC(a, back), 1e-10)
	})
}

func TestCSVDThin(t *testing.T) {
	t.Run("Reconstruction", func(t *testing.T) {
		rng := rand.New(rand.NewSource(14))
		m, n := 6, 3
		a := randomCMatrix(rng, m, n)
		u, s, v, err := CSVDThin(m, n, a)
		require.NoError(t, err)

		for i := 1; i < n; i++ {
			assert.GreaterOrEqual(t, s[i-1], s[i])
		}

		uhu := CMatMul(n, m, n, CHConj(m, n, u), u)
		assert.InDelta(t, 0, maxAbsDiffC(uhu, CEye(n)), 1e-8)

		us := make([]complex128, m*n)
		for r := 0; r < m; r++ {
			for c := 0; c < n; c++ {
				us[r*n+c] = u[r*n+c] * complex(s[c], 0)
			}
		}
		back := CMatMul(m, n, n, us, CHConj(n, n, v))
		assert.InDelta(t, 0, maxAbsDiffC(a, back), 1e-8)
	})

	t.Run("SingularValuesOnly", func(t *testing.T) {
		rng := rand.New(rand.NewSource(15))
		a := randomCMatrix(rng, 5, 2)
		_, s, _, err := CSVDThin(5, 2, a)
		require.NoError(t, err)
		sv, err := CSingularValues(5, 2, a)
		require.NoError(t, err)
		assert.InDeltaSlice(t, s, sv, 1e-10)
	})
}

func TestCExpM(t *testing.T) {
	t.Run("Diagonal", func(t *testing.T) {
		// exp(diag(i*pi/2, 0)) = diag(i, 1).
		a := []complex128{complex(0, math.Pi/2), 0, 0, 0}
		got, err := CExpM(2, a)
		require.NoError(t, err)
		want := []complex128{1i, 0, 0, 1}
		assert.InDelta(t, 0, maxAbsDiffC(got, want), 1e-12)
	})

	t.Run("SkewHermitianIsUnitary", func(t *testing.T) {
		rng := rand.New(rand.NewSource(16))
		n := 3
		g := randomCMatrix(rng, n, n)
		gh := CHConj(n, n, g)
		a := make([]complex128, n*n)
		for i := range a {
			a[i] = 0.5 * (g[i] - gh[i])
		}
		e, err := CExpM(n, a)
		require.NoError(t, err)
		ehe := CMatMul(n, n, n, CHConj(n, n, e), e)
		assert.InDelta(t, 0, maxAbsDiffC(ehe, CEye(n)), 1e-10)
	})
}

func TestCLogM(t *testing.T) {
	t.Run("Identity", func(t *testing.T) {
		got, err := CLogM(2, CEye(2))
		require.NoError(t, err)
		assert.InDelta(t, 0, maxAbsDiffC(got, make([]complex128, 4)), 1e-14)
	})

	t.Run("InverseOfExp", func(t *testing.T) {
		rng := rand.New(rand.NewSource(17))
		n := 3
		a := randomCMatrix(rng, n, n)
		for i := range a {
			a[i] *= 0.25
		}
		e, err := CExpM(n, a)
		require.NoError(t, err)
		back, err := CLogM(n, e)
		require.NoError(t, err)
		assert.InDelta(t, 0, maxAbsDiffC(a, back), 1e-8)
	})
}

func TestCSqrtM(t *testing.T) {
	rng := rand.New(rand.NewSource(18))
	n := 3
	g := randomCMatrix(rng, n, n)
	// Hermitian positive definite: G^H*G + I.
	a := CMatMul(n, n, n, CHConj(n, n, g), g)
	for i := 0; i < n; i++ {
		a[i*n+i] += 1
	}
	r, err := CSqrtM(n, a)
	require.NoError(t, err)
	back := CMatMul(n, n, n, r, r)
	assert.InDelta(t, 0, maxAbsDiffC(a, back), 1e-9)
}
