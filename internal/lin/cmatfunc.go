package lin

import (
	"fmt"
	"math"
	"math/cmplx"
)

func onesNormC(n int, a []complex128) float64 {
	var max float64
	for j := 0; j < n; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += cmplx.Abs(a[i*n+j])
		}
		if sum > max {
			max = sum
		}
	}
	return max
}

func matAddScaledC(dst, src []complex128, f complex128) {
	for i := range dst {
		dst[i] += f * src[i]
	}
}

// CExpM computes the matrix exponential of complex A (n x n) by scaling
// and squaring with a diagonal Pade approximant of order 6.
func CExpM(n int, a []complex128) ([]complex128, error) {
	if err := checkShapeC(n, n, a); err != nil {
		return nil, err
	}

	norm := onesNormC(n, a)
	squarings := 0
	scale := 1.0
	for norm*scale > 0.5 {
		scale /= 2
		squarings++
	}
	as := make([]complex128, n*n)
	for i := range as {
		as[i] = a[i] * complex(scale, 0)
	}

	const order = 6
	num := CEye(n)
	den := CEye(n)
	pow := CEye(n)
	c := 1.0
	for j := 1; j <= order; j++ {
		c = c * float64(order-j+1) / float64(j*(2*order-j+1))
		pow = CMatMul(n, n, n, pow, as)
		matAddScaledC(num, pow, complex(c, 0))
		sign := 1.0
		if j%2 == 1 {
			sign = -1
		}
		matAddScaledC(den, pow, complex(sign*c, 0))
	}

	f, err := CSolveMulti(n, n, den, num)
	if err != nil {
		return nil, fmt.Errorf("matrix exponential: %w", err)
	}

	for i := 0; i < squarings; i++ {
		f = CMatMul(n, n, n, f, f)
	}
	return f, nil
}

// CSqrtM computes a square root of complex A (n x n) using the
// Denman-Beavers iteration.
func CSqrtM(n int, a []complex128) ([]complex128, error) {
	if err := checkShapeC(n, n, a); err != nil {
		return nil, err
	}
	y := make([]complex128, n*n)
	copy(y, a)
	z := CEye(n)

	const (
		maxIter = 64
		tol     = 1e-14
	)
	for iter := 0; iter < maxIter; iter++ {
		zi, err := CInverse(n, z)
		if err != nil {
			return nil, fmt.Errorf("matrix square root: %w", err)
		}
		yi, err := CInverse(n, y)
		if err != nil {
			return nil, fmt.Errorf("matrix square root: %w", err)
		}
		var diff float64
		yn := make([]complex128, n*n)
		zn := make([]complex128, n*n)
		for i := range y {
			yn[i] = 0.5 * (y[i] + zi[i])
			zn[i] = 0.5 * (z[i] + yi[i])
			diff += cmplx.Abs(yn[i] - y[i])
		}
		y, z = yn, zn
		if diff <= tol*onesNormC(n, y) || diff == 0 {
			return y, nil
		}
	}
	return nil, fmt.Errorf("matrix square root: %w", ErrNoConvergence)
}

// CLogM computes the matrix logarithm of complex A (n x n) by inverse
// scaling and squaring, like LogM.
func CLogM(n int, a []complex128) ([]complex128, error) {
	if err := checkShapeC(n, n, a); err != nil {
		return nil, err
	}

	x := make([]complex128, n*n)
	copy(x, a)
	roots := 0

	const maxRoots = 40
	for {
		d := make([]complex128, n*n)
		copy(d, x)
		for i := 0; i < n; i++ {
			d[i*n+i] -= 1
		}
		if onesNormC(n, d) <= 0.25 {
			break
		}
		if roots == maxRoots {
			return nil, fmt.Errorf("matrix logarithm: %w", ErrNoConvergence)
		}
		var err error
		x, err = CSqrtM(n, x)
		if err != nil {
			return nil, fmt.Errorf("matrix logarithm: %w", err)
		}
		roots++
	}

	s := make([]complex128, n*n)
	copy(s, x)
	for i := 0; i < n; i++ {
		s[i*n+i] -= 1
	}
	const terms = 24
	result := make([]complex128, n*n)
	pow := CEye(n)
	for k := 1; k <= terms; k++ {
		pow = CMatMul(n, n, n, pow, s)
		sign := 1.0
		if k%2 == 0 {
			sign = -1
		}
		matAddScaledC(result, pow, complex(sign/float64(k), 0))
	}

	factor := complex(math.Ldexp(1, roots), 0)
	for i := range result {
		result[i] *= factor
	}
	return result, nil
}
