package lin

import (
	"fmt"
	"math"
)

// onesNorm returns the maximum absolute column sum of A (n x n).
func onesNorm(n int, a []float64) float64 {
	var max float64
	for j := 0; j < n; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += math.Abs(a[i*n+j])
		}
		if sum > max {
			max = sum
		}
	}
	return max
}

func matAddScaled(dst, src []float64, f float64) {
	for i := range dst {
		dst[i] += f * src[i]
	}
}

// ExpM computes the matrix exponential of A (n x n) by scaling and
// squaring with a diagonal Pade approximant of order 6.
func ExpM(n int, a []float64) ([]float64, error) {
	if err := checkShape(n, n, a); err != nil {
		return nil, err
	}

	// Scale A down until its norm is comfortable for the approximant.
	norm := onesNorm(n, a)
	squarings := 0
	scale := 1.0
	for norm*scale > 0.5 {
		scale /= 2
		squarings++
	}
	as := make([]float64, n*n)
	for i := range as {
		as[i] = a[i] * scale
	}

	// Diagonal Pade(6, 6): N = sum c_j A^j, D = sum (-1)^j c_j A^j.
	const order = 6
	num := Eye(n)
	den := Eye(n)
	pow := Eye(n)
	c := 1.0
	for j := 1; j <= order; j++ {
		c = c * float64(order-j+1) / float64(j*(2*order-j+1))
		pow = MatMul(n, n, n, pow, as)
		matAddScaled(num, pow, c)
		sign := 1.0
		if j%2 == 1 {
			sign = -1
		}
		matAddScaled(den, pow, sign*c)
	}

	f, err := SolveMulti(n, n, den, num)
	if err != nil {
		return nil, fmt.Errorf("matrix exponential: %w", err)
	}

	for i := 0; i < squarings; i++ {
		f = MatMul(n, n, n, f, f)
	}
	return f, nil
}

// SqrtM computes a square root of A (n x n) using the Denman-Beavers
// iteration. It converges for matrices with no eigenvalues on the
// non-positive real axis and fails otherwise.
func SqrtM(n int, a []float64) ([]float64, error) {
	if err := checkShape(n, n, a); err != nil {
		return nil, err
	}
	y := make([]float64, n*n)
	copy(y, a)
	z := Eye(n)

	const (
		maxIter = 64
		tol     = 1e-14
	)
	for iter := 0; iter < maxIter; iter++ {
		zi, err := Inverse(n, z)
		if err != nil {
			return nil, fmt.Errorf("matrix square root: %w", err)
		}
		yi, err := Inverse(n, y)
		if err != nil {
			return nil, fmt.Errorf("matrix square root: %w", err)
		}
		var diff float64
		yn := make([]float64, n*n)
		zn := make([]float64, n*n)
		for i := range y {
			yn[i] = 0.5 * (y[i] + zi[i])
			zn[i] = 0.5 * (z[i] + yi[i])
			diff += math.Abs(yn[i] - y[i])
		}
		y, z = yn, zn
		if diff <= tol*onesNorm(n, y) || diff == 0 {
			return y, nil
		}
	}
	return nil, fmt.Errorf("matrix square root: %w", ErrNoConvergence)
}

// LogM computes the matrix logarithm of A (n x n) by inverse scaling and
// squaring: repeated square roots bring A close to the identity, a
// truncated Mercator series evaluates log(I + X), and the result is
// scaled back up. Defined for matrices with no eigenvalues on the
// non-positive real axis; other inputs fail with an error.
func LogM(n int, a []float64) ([]float64, error) {
	if err := checkShape(n, n, a); err != nil {
		return nil, err
	}

	x := make([]float64, n*n)
	copy(x, a)
	roots := 0

	const maxRoots = 40
	for {
		d := make([]float64, n*n)
		copy(d, x)
		for i := 0; i < n; i++ {
			d[i*n+i] -= 1
		}
		if onesNorm(n, d) <= 0.25 {
			break
		}
		if roots == maxRoots {
			return nil, fmt.Errorf("matrix logarithm: %w", ErrNoConvergence)
		}
		var err error
		x, err = SqrtM(n, x)
		if err != nil {
			return nil, fmt.Errorf("matrix logarithm: %w", err)
		}
		roots++
	}

	// log(I + S) = S - S^2/2 + S^3/3 - ... with ||S|| <= 1/4.
	s := make([]float64, n*n)
	copy(s, x)
	for i := 0; i < n; i++ {
		s[i*n+i] -= 1
	}
	const terms = 24
	result := make([]float64, n*n)
	pow := Eye(n)
	for k := 1; k <= terms; k++ {
		pow = MatMul(n, n, n, pow, s)
		sign := 1.0
		if k%2 == 0 {
			sign = -1
		}
		matAddScaled(result, pow, sign/float64(k))
	}

	factor := math.Ldexp(1, roots) // 2^roots
	for i := range result {
		result[i] *= factor
	}
	return result, nil
}
