// Package stats implements the closed-form statistical approximations used
// as normalization constants by the isolation-tree engine: harmonic numbers,
// the digamma function, and the expected isolation / separation depths of
// random binary trees.
//
// These values are baked into anomaly and distance scores, so the exact
// small-n tables, series thresholds and hot-start checkpoints are part of
// the numeric contract and must not be "improved" casually.
package stats

import (
	"math"
	"math/bits"
)

// eulersGamma is the Euler-Mascheroni constant.
const eulersGamma = 0.577215664901532860606512

// thresholdExactH is the largest n for which harmonic numbers are computed
// exactly; above it the asymptotic series takes over.
const thresholdExactH = 256

// Log2Ceil returns the smallest e such that 2^e >= n. Log2Ceil(0) and
// Log2Ceil(1) are both 0.
func Log2Ceil(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// Harmonic returns the n-th harmonic number H(n) = 1 + 1/2 + ... + 1/n,
// with H(0) = 0.
//
// Small n are computed exactly by recursive bisection, which keeps the
// floating-point error from accumulating term by term; large n use the
// standard asymptotic expansion.
func Harmonic(n int) float64 {
	if n <= 0 {
		return 0
	}
	if n > thresholdExactH {
		nf := float64(n)
		invSq := 1. / (nf * nf)
		return math.Log(nf) + eulersGamma +
			0.5*(1./nf) -
			0.5*invSq*(1./6.-invSq*(1./60.-(1./126.)*invSq))
	}
	return harmonicRecursive(1, float64(n+1))
}

func harmonicRecursive(a, b float64) float64 {
	if b == a+1 {
		return 1 / a
	}
	m := math.Floor((a + b) / 2)
	return harmonicRecursive(a, m) + harmonicRecursive(m, b)
}

// Digamma returns the digamma function psi(x) for x > 0. Positive integers
// up to the exact-harmonic threshold use H(x-1) - gamma directly; other
// arguments below 10 are shifted up through psi(x) = psi(x+1) - 1/x before
// the cephes asymptotic series is applied.
func Digamma(x float64) float64 {
	if x >= 1 && x <= thresholdExactH && x == math.Floor(x) {
		return Harmonic(int(x)-1) - eulersGamma
	}

	shift := 0.0
	for x < 10 {
		shift += 1 / x
		x++
	}

	var y float64
	if x < 1.0e17 {
		z := 1.0 / (x * x)
		z2 := z * z
		y = z * (8.33333333333333333333e-2 -
			8.33333333333333333333e-3*z +
			3.96825396825396825397e-3*z2 -
			4.16666666666666666667e-3*z2*z +
			7.57575757575757575758e-3*z2*z2 -
			2.10927960927960927961e-2*z2*z2*z +
			8.33333333333333333333e-2*z2*z2*z2)
	}

	return math.Log(x) - (0.5 / x) - y - shift
}

// ExpectedAvgDepth returns the expected path length to isolate one point
// among sampleSize points via random binary splitting. Exact values for
// sampleSize <= 9, 2*(H(n)-1) beyond.
func ExpectedAvgDepth(sampleSize int) float64 {
	switch sampleSize {
	case 0, 1:
		return 0.
	case 2:
		return 1.
	case 3:
		return 5.0 / 3.0
	case 4:
		return 13.0 / 6.0
	case 5:
		return 77.0 / 30.0
	case 6:
		return 29.0 / 10.0
	case 7:
		return 223.0 / 70.0
	case 8:
		return 481.0 / 140.0
	case 9:
		return 4609.0 / 1260.0
	default:
		return 2. * (Harmonic(sampleSize) - 1.)
	}
}

// ExpectedAvgDepthFrac is ExpectedAvgDepth for fractional effective sample
// sizes, as arise with non-integer sums of row weights.
// Uses H(x) = psi(x+1) + gamma.
func ExpectedAvgDepthFrac(approxSampleSize float64) float64 {
	switch {
	case approxSampleSize <= 1:
		return 0
	case approxSampleSize < float64(math.MaxInt32):
		return 2. * (Digamma(approxSampleSize+1.) + eulersGamma - 1.)
	default:
		invSq := 1. / (approxSampleSize * approxSampleSize)
		return 2.*math.Log(approxSampleSize) + 2.*(eulersGamma-1.) +
			(1./approxSampleSize) -
			invSq*(1./6.-invSq*(1./60.-(1./126.)*invSq))
	}
}

// thresholdExactS is the sample size beyond which the expected separation
// depth is taken as its asymptotic value of 3 (difference is below 5e-4).
const thresholdExactS = 87670

// ExpectedSeparationDepth returns the expected depth at which two specific
// points among n end up in different partitions. Tabulated for n <= 10,
// asymptotically 3, and computed by an incremental recurrence in between.
func ExpectedSeparationDepth(n int) float64 {
	switch n {
	case 0, 1:
		return 0.
	case 2:
		return 1.
	case 3:
		return 1. + (1. / 3.)
	case 4:
		return 1. + (1. / 3.) + (2. / 9.)
	case 5:
		return 1.71666666667
	case 6:
		return 1.84
	case 7:
		return 1.93809524
	case 8:
		return 2.01836735
	case 9:
		return 2.08551587
	case 10:
		return 2.14268078
	default:
		if n >= thresholdExactS {
			return 3
		}
		return separationDepthHotstart(2.14268078, 10, n)
	}
}

// separationDepthHotstart advances the separation-depth recurrence
//
//	curr += (-curr*i + 3*i - 4) / (i*(i-1))
//
// from nCurr to nFinal. Checkpoint constants let large nFinal start near the
// answer instead of iterating from scratch; their precision is deliberately
// coarser at smaller n, where the statistic's own standard error is larger.
func separationDepthHotstart(curr float64, nCurr, nFinal int) float64 {
	if nFinal >= 1360 {
		switch {
		case nFinal >= thresholdExactS:
			return 3
		case nFinal >= 40774:
			return 2.999
		case nFinal >= 18844:
			return 2.998
		case nFinal >= 11956:
			return 2.997
		case nFinal >= 8643:
			return 2.996
		case nFinal >= 6713:
			return 2.995
		case nFinal >= 4229:
			return 2.9925
		case nFinal >= 3040:
			return 2.99
		case nFinal >= 2724:
			return 2.989
		case nFinal >= 1902:
			return 2.985
		default:
			return 2.98
		}
	}

	for i := nCurr + 1; i <= nFinal; i++ {
		fi := float64(i)
		curr += (-curr*fi + 3.*fi - 4.) / (fi * (fi - 1.))
	}
	return curr
}

// ExpectedSeparationDepthFrac linearly interpolates the separation depth for
// fractional n.
func ExpectedSeparationDepthFrac(n float64) float64 {
	if n >= thresholdExactS {
		return 3
	}
	sL := ExpectedSeparationDepth(int(math.Floor(n)))
	u := math.Ceil(n)
	sU := sL + (-sL*u+3.*u-4.)/(u*(u-1.))
	diff := n - math.Floor(n)
	return sL + diff*sU
}
