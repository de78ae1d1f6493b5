package lin

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomMatrix(rng *rand.Rand, m, n int) []float64 {
	a := make([]float64, m*n)
	for i := range a {
		a[i] = rng.NormFloat64()
	}
	return a
}

func maxAbsDiff(a, b []float64) float64 {
	var max float64
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > max {
			max = d
		}
	}
	return max
}

func TestMatMul(t *testing.T) {
	// 2x3 * 3x2 with a known result.
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{7, 8, 9, 10, 11, 12}
	got := MatMul(2, 3, 2, a, b)
	want := []float64{58, 64, 139, 154}
	assert.InDeltaSlice(t, want, got, 1e-12)
}

func TestTranspose(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6}
	got := Transpose(2, 3, a)
	want := []float64{1, 4, 2, 5, 3, 6}
	assert.Equal(t, want, got)
}

func TestSolveMulti(t *testing.T) {
	t.Run("KnownSystem", func(t *testing.T) {
		a := []float64{2, 0, 0, 3}
		b := []float64{4, 6, 9, 3}
		x, err := SolveMulti(2, 2, a, b)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{2, 3, 3, 1}, x, 1e-12)
	})

	t.Run("RandomRoundTrip", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		a := randomMatrix(rng, 5, 5)
		x := randomMatrix(rng, 5, 3)
		b := MatMul(5, 5, 3, a, x)
		got, err := SolveMulti(5, 3, a, b)
		require.NoError(t, err)
		assert.InDelta(t, 0, maxAbsDiff(x, got), 1e-9)
	})

	t.Run("Singular", func(t *testing.T) {
		a := []float64{1, 2, 2, 4} // rank 1
		b := []float64{1, 1}
		_, err := SolveMulti(2, 1, a, b)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSingular)
	})

	t.Run("BadShape", func(t *testing.T) {
		_, err := SolveMulti(2, 2, []float64{1, 2, 3}, []float64{1, 2, 3, 4})
		assert.ErrorIs(t, err, ErrBadShape)
	})
}

func TestQR(t *testing.T) {
	t.Run("Orthonormality", func(t *testing.T) {
		rng := rand.New(rand.NewSource(2))
		a := randomMatrix(rng, 8, 3)
		q, r, err := QR(8, 3, a)
		require.NoError(t, err)

		qtq := MatMul(3, 8, 3, Transpose(8, 3, q), q)
		assert.InDelta(t, 0, maxAbsDiff(qtq, Eye(3)), 1e-12)

		// R upper-triangular with positive diagonal.
		for i := 0; i < 3; i++ {
			assert.Greater(t, r[i*3+i], 0.0)
			for j := 0; j < i; j++ {
				assert.InDelta(t, 0, r[i*3+j], 1e-12)
			}
		}

		// A = Q*R.
		qr := MatMul(8, 3, 3, q, r)
		assert.InDelta(t, 0, maxAbsDiff(a, qr), 1e-12)
	})

	t.Run("RankDeficient", func(t *testing.T) {
		// Rank 1, and the Gram-Schmidt residual of the second column is
		// rounding noise rather than an exact zero.
		a := []float64{
			1, 1,
			1, 1,
			1, 1,
		}
		_, _, err := QR(3, 2, a)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRankDeficient)
	})

	t.Run("RankDeficientScaledColumn", func(t *testing.T) {
		// Second column is a non-trivial multiple of the first, leaving
		// a residual near 1e-16 that the relative threshold must catch.
		a := []float64{
			1, 3,
			2, 6,
			-1, -3,
		}
		_, _, err := QR(3, 2, a)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRankDeficient)
	})

	t.Run("ZeroColumn", func(t *testing.T) {
		a := []float64{
			1, 0,
			0, 0,
			1, 0,
		}
		_, _, err := QR(3, 2, a)
		assert.ErrorIs(t, err, ErrRankDeficient)
	})
}

func TestEigSym(t *testing.T) {
	t.Run("KnownEigenvalues", func(t *testing.T) {
		// [[2, 1], [1, 2]] has eigenvalues 1 and 3.
		a := []float64{2, 1, 1, 2}
		w, v, err := EigSym(2, a)
		require.NoError(t, err)
		assert.InDelta(t, 1, w[0], 1e-12)
		assert.InDelta(t, 3, w[1], 1e-12)

		// Reconstruct V*diag(w)*V^T.
		scaled := make([]float64, 4)
		for r := 0; r < 2; r++ {
			for c := 0; c < 2; c++ {
				scaled[r*2+c] = v[r*2+c] * w[c]
			}
		}
		back := MatMul(2, 2, 2, scaled, Transpose(2, 2, v))
		assert.InDelta(t, 0, maxAbsDiff(a, back), 1e-12)
	})

	t.Run("RandomReconstruction", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		n := 6
		g := randomMatrix(rng, n, n)
		// Symmetrize.
		a := make([]float64, n*n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				a[i*n+j] = 0.5 * (g[i*n+j] + g[j*n+i])
			}
		}
		w, v, err := EigSym(n, a)
		require.NoError(t, err)

		// Ascending order.
		for i := 1; i < n; i++ {
			assert.LessOrEqual(t, w[i-1], w[i])
		}

		scaled := make([]float64, n*n)
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				scaled[r*n+c] = v[r*n+c] * w[c]
			}
		}
		back := MatMul(n, n, n, scaled, Transpose(n, n, v))
		assert.InDelta(t, 0, maxAbsDiff(a, back), 1e-10)
	})
}

func TestSVDThin(t *testing.T) {
	t.Run("Reconstruction", func(t *testing.T) {
		rng := rand.New(rand.NewSource(4))
		m, n := 7, 4
		a := randomMatrix(rng, m, n)
		u, s, v, err := SVDThin(m, n, a)
		require.NoError(t, err)

		// Descending singular values.
		for i := 1; i < n; i++ {
			assert.GreaterOrEqual(t, s[i-1], s[i])
		}

		// U has orthonormal columns.
		utu := MatMul(n, m, n, Transpose(m, n, u), u)
		assert.InDelta(t, 0, maxAbsDiff(utu, Eye(n)), 1e-8)

		// A = U*diag(s)*V^T.
		us := make([]float64, m*n)
		for r := 0; r < m; r++ {
			for c := 0; c < n; c++ {
				us[r*n+c] = u[r*n+c] * s[c]
			}
		}
		back := MatMul(m, n, n, us, Transpose(n, n, v))
		assert.InDelta(t, 0, maxAbsDiff(a, back), 1e-8)
	})

	t.Run("SingularValuesOnly", func(t *testing.T) {
		rng := rand.New(rand.NewSource(5))
		a := randomMatrix(rng, 6, 3)
		_, s, _, err := SVDThin(6, 3, a)
		require.NoError(t, err)
		sv, err := SingularValues(6, 3, a)
		require.NoError(t, err)
		assert.InDeltaSlice(t, s, sv, 1e-10)
	})
}
