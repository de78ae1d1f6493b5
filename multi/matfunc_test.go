package multi

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomSPD returns a stack of symmetric positive-definite blocks.
func randomSPD(rng *rand.Rand, k, n int) *Array {
	g := randomArray(rng, k, n, n)
	gt := Transp(g)
	out, err := Prod(gt, g)
	if err != nil {
		panic(err)
	}
	for i := 0; i < k; i++ {
		blk := out.Block(i)
		for r := 0; r < n; r++ {
			blk[r*n+r] += 1
		}
	}
	return out
}

// randomHPD returns a stack of Hermitian positive-definite blocks.
func randomHPD(rng *rand.Rand, k, n int) *CArray {
	g := randomCArray(rng, k, n, n)
	gh := HConj(g)
	out, err := ProdC(gh, g)
	if err != nil {
		panic(err)
	}
	for i := 0; i < k; i++ {
		blk := out.Block(i)
		for r := 0; r < n; r++ {
			blk[r*n+r] += 1
		}
	}
	return out
}

func maxBlockDiff(a, b *Array) float64 {
	var max float64
	ad, bd := a.Data(), b.Data()
	for i := range ad {
		if d := math.Abs(ad[i] - bd[i]); d > max {
			max = d
		}
	}
	return max
}

func maxBlockDiffC(a, b *CArray) float64 {
	var max float64
	ad, bd := a.Data(), b.Data()
	for i := range ad {
		d := ad[i] - bd[i]
		if v := math.Hypot(real(d), imag(d)); v > max {
			max = v
		}
	}
	return max
}

func TestLogM(t *testing.T) {
	t.Run("FastPathMatchesGeneral", func(t *testing.T) {
		rng := rand.New(rand.NewSource(30))
		a := randomSPD(rng, 5, 3)

		fast, err := LogM(a, true)
		require.NoError(t, err)
		general, err := LogM(a, false)
		require.NoError(t, err)
		assert.InDelta(t, 0, maxBlockDiff(fast, general), 1e-7)
	})

	t.Run("ExpRoundTrip", func(t *testing.T) {
		rng := rand.New(rand.NewSource(31))
		a := randomSPD(rng, 6, 3)

		l, err := LogM(a, true)
		require.NoError(t, err)
		back, err := ExpM(l, true)
		require.NoError(t, err)
		assert.InDelta(t, 0, maxBlockDiff(a, back), 1e-8)
	})

	t.Run("NonSquare", func(t *testing.T) {
		_, err := LogM(Zeros(1, 2, 3), false)
		var shapeErr *ErrShapeMismatch
		assert.ErrorAs(t, err, &shapeErr)
	})

	t.Run("NonPositiveSpectrum", func(t *testing.T) {
		// -I has its spectrum on the negative real axis; the general
		// logarithm must fail rather than return garbage.
		a, err := FromData(1, 1, 1, []float64{-1})
		require.NoError(t, err)
		_, err = LogM(a, false)
		require.Error(t, err)
	})
}

func TestExpM(t *testing.T) {
	t.Run("FastPathMatchesGeneral", func(t *testing.T) {
		rng := rand.New(rand.NewSource(32))
		g := randomArray(rng, 4, 3, 3)
		a, err := Sym(g)
		require.NoError(t, err)

		fast, err := ExpM(a, true)
		require.NoError(t, err)
		general, err := ExpM(a, false)
		require.NoError(t, err)
		assert.InDelta(t, 0, maxBlockDiff(fast, general), 1e-8)
	})

	t.Run("ZeroGivesIdentity", func(t *testing.T) {
		got, err := ExpM(Zeros(3, 2, 2), false)
		require.NoError(t, err)
		assert.InDelta(t, 0, maxBlockDiff(got, Eye(3, 2)), 1e-14)
	})
}

func TestLogMC(t *testing.T) {
	t.Run("FastPathMatchesGeneral", func(t *testing.T) {
		rng := rand.New(rand.NewSource(33))
		a := randomHPD(rng, 5, 3)

		fast, err := LogMC(a, true)
		require.NoError(t, err)
		general, err := LogMC(a, false)
		require.NoError(t, err)
		assert.InDelta(t, 0, maxBlockDiffC(fast, general), 1e-7)
	})

	t.Run("ExpRoundTrip", func(t *testing.T) {
		rng := rand.New(rand.NewSource(34))
		a := randomHPD(rng, 4, 2)

		l, err := LogMC(a, true)
		require.NoError(t, err)
		back, err := ExpMC(l, true)
		require.NoError(t, err)
		assert.InDelta(t, 0, maxBlockDiffC(a, back), 1e-8)
	})
}

func TestExpMC(t *testing.T) {
	rng := rand.New(rand.NewSource(35))
	g := randomCArray(rng, 4, 3, 3)
	gh := HConj(g)
	a, err := g.Add(gh)
	require.NoError(t, err)
	a = a.Scale(0.5)

	fast, err := ExpMC(a, true)
	require.NoError(t, err)
	general, err := ExpMC(a, false)
	require.NoError(t, err)
	assert.InDelta(t, 0, maxBlockDiffC(fast, general), 1e-8)
}
