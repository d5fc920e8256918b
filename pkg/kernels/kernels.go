// Package kernels provides the numeric building blocks shared by the
// DataCube container and the S+C finder: NaN-safe summation, streaming
// standard deviation and MAD about a value, and the boxcar / Gaussian
// filters used to smooth cube planes and spectra.
//
// Every operation here is generated once from a Go generic constrained to
// the two floating-point payload widths the cube supports (float32,
// float64); integer payloads are rejected by the caller before reaching
// this package, matching the reference's own BITPIX sanity check.
package kernels

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Float is the constraint satisfied by the two on-disk floating-point
// payload widths the cube supports.
type Float interface {
	~float32 | ~float64
}

// FluxRange selects which side of the flux distribution a statistic is
// computed over, matching spec.md's r ∈ {-1,0,+1}.
type FluxRange int

const (
	// RangeFull includes every finite value.
	RangeFull FluxRange = 0
	// RangeNegative includes only finite values <= the reference value.
	RangeNegative FluxRange = -1
	// RangePositive includes only finite values >= the reference value.
	RangePositive FluxRange = 1
)

// Sum returns the NaN-safe sum of data: NaNs are skipped unless every
// element is NaN, in which case NaN is returned.
func Sum[T Float](data []T) float64 {
	total := 0.0
	seen := false
	for _, v := range data {
		f := float64(v)
		if math.IsNaN(f) {
			continue
		}
		total += f
		seen = true
	}
	if !seen {
		return math.NaN()
	}
	return total
}

// StdDev computes the standard deviation of data about value, sampled
// every cadence-th element (cadence >= 1), restricted to the flux range
// selected by rng. Returns NaN if no samples qualify.
func StdDev[T Float](data []T, value float64, cadence int, rng FluxRange) float64 {
	if cadence < 1 {
		cadence = 1
	}
	sumSq := 0.0
	n := 0
	for i := 0; i < len(data); i += cadence {
		f := float64(data[i])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		switch rng {
		case RangeNegative:
			if f > value {
				continue
			}
		case RangePositive:
			if f < value {
				continue
			}
		}
		d := f - value
		sumSq += d * d
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return math.Sqrt(sumSq / float64(n))
}

// MAD computes the median absolute deviation of data about value. It
// collects the absolute deviations of the finite values into a new
// slice and sorts that; data itself is not modified.
func MAD[T Float](data []T, value float64) float64 {
	devs := make([]float64, 0, len(data))
	for _, v := range data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		devs = append(devs, math.Abs(f-value))
	}
	if len(devs) == 0 {
		return math.NaN()
	}
	sort.Float64s(devs)
	return median(devs)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Boxcar1D applies a symmetric zero-padded boxcar filter of half-width
// radius to src, writing the result into dst (length len(src)). scratch
// must have length len(src)+2*radius and is used as the padded working
// buffer; it is caller-owned so repeated calls (one per spectrum) avoid
// reallocating. NaNs in src are zeroed in the padded buffer before
// filtering; a NaN-free src produces bit-identical output to the
// always-zero-padding path.
func Boxcar1D[T Float](src, dst []T, scratch []float64, radius int) {
	n := len(src)
	if radius < 1 {
		radius = 1
	}
	if len(scratch) != n+2*radius {
		scratch = make([]float64, n+2*radius)
	}
	for i := range scratch {
		scratch[i] = 0
	}
	for i, v := range src {
		f := float64(v)
		if math.IsNaN(f) {
			f = 0
		}
		scratch[radius+i] = f
	}

	window := 2*radius + 1
	// Running-sum boxcar: seed the first window via gonum/floats, then slide by one.
	sum := floats.Sum(scratch[:window])
	dst[0] = T(sum / float64(window))
	for i := 1; i < n; i++ {
		sum += scratch[i+window-1] - scratch[i-1]
		dst[i] = T(sum / float64(window))
	}
}

// GaussianParams returns the number of boxcar passes n and the half-width
// radius r that approximate a Gaussian of standard deviation sigma via
// n repeated boxcars, following n*((2r+1)^2-1)/12 ≈ sigma^2. sigma is
// floored at 1.5, the reference's minimum effective value.
func GaussianParams(sigma float64) (n, radius int) {
	if sigma < 1.5 {
		sigma = 1.5
	}
	// Pick a small number of iterations and solve for the matching radius,
	// mirroring the reference's optimal_filter_size: more iterations give
	// a better Gaussian approximation at the cost of extra passes.
	n = 4
	target := 12.0*sigma*sigma/float64(n) + 1.0
	r := int(math.Round((math.Sqrt(target) - 1) / 2))
	if r < 1 {
		r = 1
	}
	return n, r
}

// Gaussian2D applies a 2-D separable Gaussian filter of standard
// deviation sigma to the width*height plane stored row-major in data, by
// repeated 1-D boxcars along rows then columns. rowScratch and
// colScratch are caller-owned padded buffers of length width+2*radius
// and height+2*radius respectively (radius from GaussianParams).
func Gaussian2D[T Float](data []T, width, height int, sigma float64, rowScratch, colScratch []float64) {
	n, radius := GaussianParams(sigma)
	row := make([]T, width)
	col := make([]T, height)
	for iter := 0; iter < n; iter++ {
		for y := 0; y < height; y++ {
			base := y * width
			Boxcar1D(data[base:base+width], row, rowScratch, radius)
			copy(data[base:base+width], row)
		}
		for x := 0; x < width; x++ {
			extractColumn(data, col, width, height, x)
			Boxcar1D(col, col, colScratch, radius)
			storeColumn(data, col, width, height, x)
		}
	}
}

func extractColumn[T Float](data []T, col []T, width, height, x int) {
	for y := 0; y < height; y++ {
		col[y] = data[y*width+x]
	}
}

func storeColumn[T Float](data []T, col []T, width, height, x int) {
	for y := 0; y < height; y++ {
		data[y*width+x] = col[y]
	}
}

// containsNaN reports whether any element of data is NaN, mirroring the
// reference's contains_nan_flt/contains_nan_dbl guards that select
// between the zero-substitution path and a direct pass-through. The Go
// filters above always zero NaNs defensively, so this helper exists for
// callers (pkg/cube) that want to skip allocating a mask when they
// already know a plane is NaN-free.
func containsNaN[T Float](data []T) bool {
	for _, v := range data {
		if math.IsNaN(float64(v)) {
			return true
		}
	}
	return false
}

// ContainsNaN exposes containsNaN for callers outside the package.
func ContainsNaN[T Float](data []T) bool { return containsNaN(data) }
