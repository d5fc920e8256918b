package cube

import "cubefind/pkg/kernels"

// StatStd returns the standard deviation of the cube about value, using
// every cadence-th sample and restricted to the given flux range.
func (c *Cube) StatStd(value float64, cadence int, rng kernels.FluxRange) (float64, error) {
	if err := c.requireFloat("StatStd"); err != nil {
		return 0, err
	}
	if c.Type == Float32 {
		return kernels.StdDev(c.f32, value, cadence, rng), nil
	}
	return kernels.StdDev(c.f64, value, cadence, rng), nil
}

// StatSum returns the NaN-safe sum of the cube's flux values.
func (c *Cube) StatSum() (float64, error) {
	if err := c.requireFloat("StatSum"); err != nil {
		return 0, err
	}
	if c.Type == Float32 {
		return kernels.Sum(c.f32), nil
	}
	return kernels.Sum(c.f64), nil
}

// StatMAD returns the median absolute deviation of the cube about value.
func (c *Cube) StatMAD(value float64) (float64, error) {
	if err := c.requireFloat("StatMAD"); err != nil {
		return 0, err
	}
	if c.Type == Float32 {
		return kernels.MAD(c.f32, value), nil
	}
	return kernels.MAD(c.f64, value), nil
}

// StatGaussianFitNoise estimates the noise level by fitting a Gaussian
// to a histogram of the cube's values, per SPEC_FULL.md §4.A.1. madGuess
// seeds the histogram range and should usually be the cube's StatMAD.
func (c *Cube) StatGaussianFitNoise(cadence int, madGuess float64) (float64, error) {
	if err := c.requireFloat("StatGaussianFitNoise"); err != nil {
		return 0, err
	}
	if c.Type == Float32 {
		return kernels.GaussianFitNoise(c.f32, cadence, madGuess), nil
	}
	return kernels.GaussianFitNoise(c.f64, cadence, madGuess), nil
}

// ContainsNaN reports whether the cube holds any NaN pixel.
func (c *Cube) ContainsNaN() bool {
	if !c.isFloat() {
		return false
	}
	if c.Type == Float32 {
		return kernels.ContainsNaN(c.f32)
	}
	return kernels.ContainsNaN(c.f64)
}
