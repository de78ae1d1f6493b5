package riemgo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/riemgo/multi"
)

func unitVector(t *testing.T, values ...float64) *multi.Array {
	t.Helper()
	arr, err := multi.FromData(1, len(values), 1, values)
	require.NoError(t, err)
	return arr
}

func TestNewSphere(t *testing.T) {
	s, err := NewSphere(4)
	require.NoError(t, err)
	assert.Equal(t, "Sphere manifold S^3", s.Name())
	assert.Equal(t, 3, s.Dim())
	assert.InDelta(t, math.Pi, s.TypicalDist(), 1e-12)

	_, err = NewSphere(1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestSphereDist(t *testing.T) {
	s, err := NewSphere(3)
	require.NoError(t, err)

	ex := unitVector(t, 1, 0, 0)
	ey := unitVector(t, 0, 1, 0)

	d, err := s.Dist(ex, ey)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, d, 1e-12)

	d, err = s.Dist(ex, ex)
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-12)
}

func TestSphereExpLog(t *testing.T) {
	s, err := NewSphere(5)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(61))

	a, err := s.RandomPoint(rng)
	require.NoError(t, err)

	t.Run("PointIsUnit", func(t *testing.T) {
		assert.InDelta(t, 1, a.(*multi.Array).Norm(), 1e-12)
	})

	t.Run("LogAfterExp", func(t *testing.T) {
		v, err := s.RandomTangentVector(rng, a)
		require.NoError(t, err)
		step := v.(*multi.Array).Scale(0.8)

		b, err := s.Exp(a, step)
		require.NoError(t, err)
		assert.InDelta(t, 1, b.(*multi.Array).Norm(), 1e-12)

		back, err := s.Log(a, b)
		require.NoError(t, err)
		diff, err := back.(*multi.Array).Sub(step)
		require.NoError(t, err)
		assert.InDelta(t, 0, diff.Norm(), 1e-9)
	})

	t.Run("DistMatchesStepLength", func(t *testing.T) {
		v, err := s.RandomTangentVector(rng, a)
		require.NoError(t, err)
		step := v.(*multi.Array).Scale(0.5)
		b, err := s.Exp(a, step)
		require.NoError(t, err)
		d, err := s.Dist(a, b)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, d, 1e-9)
	})

	t.Run("TinyStepFallsBackToRetraction", func(t *testing.T) {
		v, err := s.RandomTangentVector(rng, a)
		require.NoError(t, err)
		step := v.(*multi.Array).Scale(1e-12)
		b, err := s.Exp(a, step)
		require.NoError(t, err)
		assert.InDelta(t, 1, b.(*multi.Array).Norm(), 1e-12)
		d, err := s.Dist(a, b)
		require.NoError(t, err)
		assert.InDelta(t, 0, d, 1e-8)
	})

	t.Run("AntipodalLogFails", func(t *testing.T) {
		ex := unitVector(t, 1, 0, 0, 0, 0)
		minus := unitVector(t, -1, 0, 0, 0, 0)
		_, err := s.Log(ex, minus)
		assert.ErrorIs(t, err, ErrDegenerate)
	})
}

func TestSphereTangency(t *testing.T) {
	s, err := NewSphere(4)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(62))

	a, err := s.RandomPoint(rng)
	require.NoError(t, err)
	v, err := s.RandomTangentVector(rng, a)
	require.NoError(t, err)

	dot, err := a.(*multi.Array).Dot(v.(*multi.Array))
	require.NoError(t, err)
	assert.InDelta(t, 0, dot, 1e-12)

	n, err := s.Norm(a, v)
	require.NoError(t, err)
	assert.InDelta(t, 1, n, 1e-12)
}

func TestSpherePairMean(t *testing.T) {
	s, err := NewSphere(3)
	require.NoError(t, err)

	ex := unitVector(t, 1, 0, 0)
	ey := unitVector(t, 0, 1, 0)

	mid, err := s.PairMean(ex, ey)
	require.NoError(t, err)

	r := 1 / math.Sqrt(2)
	assert.InDeltaSlice(t, []float64{r, r, 0}, mid.(*multi.Array).Data(), 1e-9)
}
