package kernels

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// GaussianFitNoise estimates the noise of data by histogramming the
// sampled values symmetrically about zero, smoothing the histogram with
// a single low-pass FFT pass (gonum.org/v1/gonum/dsp/fourier, the same
// wrapper the teacher's shearlet package uses for its 2-D FFT), and
// fitting a parabola to the log of the smoothed bin counts via linear
// least squares (gonum.org/v1/gonum/mat). The noise is recovered from the
// curvature of the fitted parabola, since a Gaussian's log-density is
// itself a parabola. madGuess seeds the histogram half-width (±5*madGuess)
// and should come from a cheap MAD estimate of the same samples.
//
// Returns NaN if the fit fails (non-negative curvature, or too few
// populated bins), signalling the caller to fall back to another
// statistic.
func GaussianFitNoise[T Float](data []T, cadence int, madGuess float64) float64 {
	if cadence < 1 {
		cadence = 1
	}
	if madGuess <= 0 || math.IsNaN(madGuess) {
		return math.NaN()
	}

	const numBins = 101
	half := 5 * madGuess
	binWidth := 2 * half / float64(numBins)
	hist := make([]float64, numBins)

	for i := 0; i < len(data); i += cadence {
		f := float64(data[i])
		if math.IsNaN(f) || f < -half || f >= half {
			continue
		}
		bin := int((f + half) / binWidth)
		if bin < 0 {
			bin = 0
		} else if bin >= numBins {
			bin = numBins - 1
		}
		hist[bin]++
	}

	smoothHistogram(hist)

	// Build the least-squares system for log(count) = a + b*x + c*x^2
	// over populated bins only.
	var xs, ys []float64
	for i, count := range hist {
		if count <= 0 {
			continue
		}
		x := -half + (float64(i)+0.5)*binWidth
		xs = append(xs, x)
		ys = append(ys, math.Log(count))
	}
	if len(xs) < 5 {
		return math.NaN()
	}

	rows := len(xs)
	a := mat.NewDense(rows, 3, nil)
	b := mat.NewVecDense(rows, ys)
	for i, x := range xs {
		a.Set(i, 0, 1)
		a.Set(i, 1, x)
		a.Set(i, 2, x*x)
	}

	var coeffs mat.VecDense
	if err := coeffs.SolveVec(a, b); err != nil {
		return math.NaN()
	}

	c := coeffs.AtVec(2)
	if c >= 0 {
		return math.NaN()
	}
	return math.Sqrt(-1 / (2 * c))
}

// smoothHistogram applies a single real-FFT low-pass round trip to hist
// in place: transform, zero every coefficient from a quarter of the
// coefficient count upward (keeping only the lowest frequencies),
// inverse transform. This damps single-bin shot noise before the parabola fit
// without needing a second bespoke smoothing kernel.
func smoothHistogram(hist []float64) {
	n := len(hist)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, hist)
	cutoff := len(coeffs) / 4
	for i := cutoff; i < len(coeffs); i++ {
		coeffs[i] = 0
	}
	smoothed := fft.Sequence(nil, coeffs)
	for i := range hist {
		if smoothed[i] < 0 {
			smoothed[i] = 0
		}
		hist[i] = smoothed[i]
	}
}
