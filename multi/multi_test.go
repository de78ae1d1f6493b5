package multi

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomArray(rng *rand.Rand, k, rows, cols int) *Array {
	out := Zeros(k, rows, cols)
	data := out.Data()
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return out
}

func randomCArray(rng *rand.Rand, k, rows, cols int) *CArray {
	out := ZerosC(k, rows, cols)
	data := out.Data()
	for i := range data {
		data[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	return out
}

func TestFromData(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		a, err := FromData(2, 2, 3, make([]float64, 12))
		require.NoError(t, err)
		k, r, c := a.Dims()
		assert.Equal(t, 2, k)
		assert.Equal(t, 2, r)
		assert.Equal(t, 3, c)
	})

	t.Run("WrongLength", func(t *testing.T) {
		_, err := FromData(2, 2, 3, make([]float64, 11))
		var shapeErr *ErrShapeMismatch
		assert.ErrorAs(t, err, &shapeErr)
	})
}

func TestProd(t *testing.T) {
	t.Run("Unbatched", func(t *testing.T) {
		// A single 4x3 * 3x5 block behaves exactly like an ordinary
		// matrix product.
		rng := rand.New(rand.NewSource(20))
		a := randomArray(rng, 1, 4, 3)
		b := randomArray(rng, 1, 3, 5)
		got, err := Prod(a, b)
		require.NoError(t, err)

		k, r, c := got.Dims()
		assert.Equal(t, 1, k)
		assert.Equal(t, 4, r)
		assert.Equal(t, 5, c)

		for i := 0; i < 4; i++ {
			for j := 0; j < 5; j++ {
				var want float64
				for l := 0; l < 3; l++ {
					want += a.At(0, i, l) * b.At(0, l, j)
				}
				assert.InDelta(t, want, got.At(0, i, j), 1e-12)
			}
		}
	})

	t.Run("Batched", func(t *testing.T) {
		// Each of the 10 output blocks is the product of the
		// corresponding input blocks, independent of its neighbours.
		rng := rand.New(rand.NewSource(21))
		a := randomArray(rng, 10, 4, 3)
		b := randomArray(rng, 10, 3, 5)
		got, err := Prod(a, b)
		require.NoError(t, err)

		for blk := 0; blk < 10; blk++ {
			single, err := FromData(1, 4, 3, a.Block(blk))
			require.NoError(t, err)
			other, err := FromData(1, 3, 5, b.Block(blk))
			require.NoError(t, err)
			want, err := Prod(single, other)
			require.NoError(t, err)
			assert.InDeltaSlice(t, want.Data(), got.Block(blk), 1e-12)
		}
	})

	t.Run("InnerDimMismatch", func(t *testing.T) {
		a := Zeros(1, 4, 3)
		b := Zeros(1, 4, 5)
		_, err := Prod(a, b)
		var shapeErr *ErrShapeMismatch
		require.ErrorAs(t, err, &shapeErr)
		assert.Equal(t, "multi.Prod", shapeErr.Op)
	})

	t.Run("BatchMismatch", func(t *testing.T) {
		a := Zeros(2, 4, 3)
		b := Zeros(3, 3, 5)
		_, err := Prod(a, b)
		var shapeErr *ErrShapeMismatch
		assert.ErrorAs(t, err, &shapeErr)
	})
}

func TestProdC(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	a := randomCArray(rng, 3, 2, 4)
	b := randomCArray(rng, 3, 4, 2)
	got, err := ProdC(a, b)
	require.NoError(t, err)

	for blk := 0; blk < 3; blk++ {
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				var want complex128
				for l := 0; l < 4; l++ {
					want += a.At(blk, i, l) * b.At(blk, l, j)
				}
				d := got.At(blk, i, j) - want
				assert.InDelta(t, 0, math.Hypot(real(d), imag(d)), 1e-12)
			}
		}
	}
}

func TestTransp(t *testing.T) {
	a, err := FromData(2, 2, 3, []float64{
		1, 2, 3,
		4, 5, 6,

		7, 8, 9,
		10, 11, 12,
	})
	require.NoError(t, err)
	got := Transp(a)

	k, r, c := got.Dims()
	assert.Equal(t, 2, k)
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, got.Block(0))
	assert.Equal(t, []float64{7, 10, 8, 11, 9, 12}, got.Block(1))
}

func TestTranspC(t *testing.T) {
	a, err := FromDataC(1, 2, 2, []complex128{1 + 1i, 2, 3, 4 - 1i})
	require.NoError(t, err)
	got := TranspC(a)
	// Plain transpose keeps the entries unconjugated.
	assert.Equal(t, []complex128{1 + 1i, 3, 2, 4 - 1i}, got.Block(0))
}

func TestHConj(t *testing.T) {
	a, err := FromDataC(1, 2, 2, []complex128{1 + 1i, 2, 3, 4 - 1i})
	require.NoError(t, err)
	got := HConj(a)
	assert.Equal(t, []complex128{1 - 1i, 3, 2, 4 + 1i}, got.Block(0))
}

func TestSymSkew(t *testing.T) {
	a, err := FromData(1, 2, 2, []float64{1, 4, 2, 5})
	require.NoError(t, err)

	sym, err := Sym(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 3, 5}, sym.Block(0))

	skew, err := Skew(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, -1, 0}, skew.Block(0))

	// Sym + Skew recovers the original.
	sum, err := sym.Add(skew)
	require.NoError(t, err)
	assert.Equal(t, a.Data(), sum.Data())

	t.Run("NonSquare", func(t *testing.T) {
		bad := Zeros(1, 2, 3)
		_, err := Sym(bad)
		var shapeErr *ErrShapeMismatch
		assert.ErrorAs(t, err, &shapeErr)
		_, err = Skew(bad)
		assert.ErrorAs(t, err, &shapeErr)
	})
}

func TestEye(t *testing.T) {
	e := Eye(3, 2)
	for blk := 0; blk < 3; blk++ {
		assert.Equal(t, []float64{1, 0, 0, 1}, e.Block(blk))
	}

	ec := EyeC(2, 2)
	for blk := 0; blk < 2; blk++ {
		assert.Equal(t, []complex128{1, 0, 0, 1}, ec.Block(blk))
	}
}

func TestEachBlock(t *testing.T) {
	t.Run("VisitsAllBlocks", func(t *testing.T) {
		// Above the fan-out threshold blocks run concurrently; writing
		// to disjoint slots stays race-free.
		const k = 16
		seen := make([]bool, k)
		err := EachBlock(k, func(i int) error {
			seen[i] = true
			return nil
		})
		require.NoError(t, err)
		for i, ok := range seen {
			assert.True(t, ok, "block %d not visited", i)
		}
	})

	t.Run("PropagatesError", func(t *testing.T) {
		wantErr := &ErrShapeMismatch{Op: "test", Want: "x", Got: "y"}
		err := EachBlock(8, func(i int) error {
			if i == 5 {
				return wantErr
			}
			return nil
		})
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestArrayArithmetic(t *testing.T) {
	a, err := FromData(1, 1, 3, []float64{1, 2, 3})
	require.NoError(t, err)
	b, err := FromData(1, 1, 3, []float64{4, 5, 6})
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7, 9}, sum.Data())

	diff, err := b.Sub(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3, 3}, diff.Data())

	dot, err := a.Dot(b)
	require.NoError(t, err)
	assert.InDelta(t, 32, dot, 1e-12)

	assert.InDelta(t, math.Sqrt(14), a.Norm(), 1e-12)
	assert.Equal(t, []float64{2, 4, 6}, a.Scale(2).Data())

	t.Run("ShapeMismatch", func(t *testing.T) {
		c := Zeros(1, 3, 1)
		_, err := a.Add(c)
		var shapeErr *ErrShapeMismatch
		assert.ErrorAs(t, err, &shapeErr)
	})
}
