// Package scfind implements the Smooth+Clip (S+C) source finder: given
// a floating-point data cube and a grid of spatial (Gaussian FWHM) and
// spectral (boxcar width) smoothing scales, it measures the noise level
// at each scale and unions together every pixel whose smoothed value
// exceeds threshold times that scale's noise into a single 32-bit mask,
// following the reference's DataCube_run_scfind.
package scfind

import (
	"math"

	"cubefind/internal/logging"
	"cubefind/pkg/cube"
	"cubefind/pkg/cubeerr"
	"cubefind/pkg/kernels"
)

// fwhmConst converts a Gaussian FWHM to its standard deviation:
// sigma = FWHM / (2*sqrt(2*ln(2))).
const fwhmConst = 2.354820045030949382 // 2*sqrt(2*ln(2))

// maxPixConst bounds how many samples the noise measurement uses,
// matching the reference's 1e6-sample cap.
const maxPixConst = 1.0e6

// Config holds the S+C finder's tunables, matching spec.md §6's
// `scfind.*` parameters.
type Config struct {
	// KernelsSpatial is the list of spatial Gaussian FWHM values to try;
	// 0 means "no spatial smoothing".
	KernelsSpatial []float64
	// KernelsSpectral is the list of spectral boxcar widths (must be odd
	// or 0) to try; 0 means "no spectral smoothing".
	KernelsSpectral []int
	// Threshold is the relative flux threshold, in units of the noise
	// level at each smoothing scale.
	Threshold float64
	// MaskScaleXY is the factor (times the cube's original rms) used to
	// clip already-detected pixels before re-smoothing, so that strong
	// sources don't smear into their surroundings under large kernels.
	MaskScaleXY float64
	// Statistic selects the noise estimator: "std", "mad" or "gauss".
	Statistic string
	// FluxRange restricts the noise estimate's input samples, following
	// kernels.FluxRange (used only by the "std" statistic).
	FluxRange kernels.FluxRange
}

// DefaultConfig mirrors the reference's commonly used defaults.
func DefaultConfig() Config {
	return Config{
		KernelsSpatial:  []float64{0},
		KernelsSpectral: []int{0},
		Threshold:       5.0,
		MaskScaleXY:     2.0,
		Statistic:       "std",
		FluxRange:       kernels.RangeNegative,
	}
}

// Run executes the S+C finder over data, returning a freshly allocated
// 32-bit integer mask cube of the same shape, where detected pixels
// carry the value 1 and background pixels carry 0. data is never
// modified. log may be nil.
func Run(data *cube.Cube, cfg Config, log *logging.Logger) (*cube.Cube, error) {
	if len(cfg.KernelsSpatial) == 0 || len(cfg.KernelsSpectral) == 0 {
		return nil, cubeerr.Wrapf(cubeerr.ErrUserInput, "at least one spatial and one spectral kernel is required")
	}
	if cfg.Threshold < 0 {
		return nil, cubeerr.Wrapf(cubeerr.ErrUserInput, "negative flux threshold %v", cfg.Threshold)
	}

	mask, err := cube.New(data.Nx, data.Ny, data.Nz, cube.Int32)
	if err != nil {
		return nil, err
	}
	mask.CopyWCS(data)

	sampleRms := sampleCadence(data.Size())
	rms, err := measureNoise(data, cfg, sampleRms)
	if err != nil {
		return nil, err
	}
	if err := data.Mask(mask, cfg.Threshold*rms); err != nil {
		return nil, err
	}

	for _, spat := range cfg.KernelsSpatial {
		for _, spec := range cfg.KernelsSpectral {
			log.Debug("scfind", "applying smoothing kernel", map[string]any{"spatial": spat, "spectral": spec})
			if spat == 0 && spec == 0 {
				continue
			}

			smoothed := data.Copy()
			if err := smoothed.SetMasked(mask, cfg.MaskScaleXY*rms); err != nil {
				return nil, err
			}
			if spat > 0 {
				if err := smoothed.Gaussian(spat / fwhmConst); err != nil {
					return nil, err
				}
			}
			if spec > 0 {
				if err := smoothed.Boxcar(spec / 2); err != nil {
					return nil, err
				}
			}

			rmsSmooth, err := measureNoise(smoothed, cfg, sampleRms)
			if err != nil {
				return nil, err
			}
			if err := smoothed.Mask(mask, cfg.Threshold*rmsSmooth); err != nil {
				return nil, err
			}
		}
	}

	return mask, nil
}

// sampleCadence picks the noise-measurement sampling stride so that no
// more than maxPixConst samples are used, per the reference's
// pow(size/1e6, 1/3) cadence.
func sampleCadence(size int) int {
	cadence := int(math.Pow(float64(size)/maxPixConst, 1.0/3.0))
	if cadence < 1 {
		cadence = 1
	}
	return cadence
}

// measureNoise estimates the noise level of c using the statistic named
// in cfg.Statistic.
func measureNoise(c *cube.Cube, cfg Config, cadence int) (float64, error) {
	switch cfg.Statistic {
	case "mad":
		mad, err := c.StatMAD(0.0)
		if err != nil {
			return 0, err
		}
		// Scale MAD to a Gaussian-equivalent sigma, matching the
		// reference's convention for using MAD as a robust noise proxy.
		return mad / 0.6744888, nil
	case "gauss":
		mad, err := c.StatMAD(0.0)
		if err != nil {
			return 0, err
		}
		sigma, err := c.StatGaussianFitNoise(cadence, mad/0.6744888)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(sigma) {
			return mad / 0.6744888, nil
		}
		return sigma, nil
	default:
		return c.StatStd(0.0, cadence, cfg.FluxRange)
	}
}
