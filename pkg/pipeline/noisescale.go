package pipeline

import (
	"math"

	"cubefind/internal/logging"
	"cubefind/pkg/config"
	"cubefind/pkg/cube"
	"cubefind/pkg/cubeerr"
	"cubefind/pkg/interpolation"
	"cubefind/pkg/kernels"
)

// scaleNoise implements SPEC_FULL.md §4.C.1's scaleNoise.* stage: divide
// the cube by either one global noise estimate, or a coarser local
// noise surface evaluated on a grid and optionally interpolated back to
// full resolution. Returns a new cube; data is left untouched.
func scaleNoise(data *cube.Cube, cfg *config.Config, log *logging.Logger) (*cube.Cube, error) {
	fluxRange := config.ParseFluxRange(cfg.ScaleNoise.FluxRange)
	if cfg.ScaleNoise.Mode == "local" {
		return scaleNoiseLocal(data, cfg, fluxRange, log)
	}
	return scaleNoiseGlobal(data, cfg, fluxRange, log)
}

func scaleNoiseGlobal(data *cube.Cube, cfg *config.Config, fluxRange kernels.FluxRange, log *logging.Logger) (*cube.Cube, error) {
	noise, err := measureStatistic(data, cfg.ScaleNoise.Statistic, fluxRange)
	if err != nil {
		return nil, err
	}
	if noise == 0 || math.IsNaN(noise) {
		return nil, cubeerr.Wrapf(cubeerr.ErrUserInput, "global noise scaling failed: noise estimate is zero or undefined")
	}
	log.Info("pipeline", "scaling by global noise estimate", map[string]any{"noise": noise})

	out := data.Copy()
	for z := 0; z < out.Nz; z++ {
		for y := 0; y < out.Ny; y++ {
			for x := 0; x < out.Nx; x++ {
				v, err := out.GetFlt(x, y, z)
				if err != nil {
					return nil, err
				}
				if err := out.SetFlt(x, y, z, v/noise); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

func scaleNoiseLocal(data *cube.Cube, cfg *config.Config, fluxRange kernels.FluxRange, log *logging.Logger) (*cube.Cube, error) {
	winXY := cfg.ScaleNoise.WindowSpatial
	winZ := cfg.ScaleNoise.WindowSpectral
	if winXY <= 0 {
		winXY = data.Nx
	}
	if winZ <= 0 {
		winZ = data.Nz
	}
	gridXY := cfg.ScaleNoise.GridSpatial
	gridZ := cfg.ScaleNoise.GridSpectral
	if gridXY <= 0 {
		gridXY = winXY
	}
	if gridZ <= 0 {
		gridZ = winZ
	}

	gx := gridPoints(data.Nx, gridXY)
	gy := gridPoints(data.Ny, gridXY)
	gz := gridPoints(data.Nz, gridZ)

	var gridPts []interpolation.Point3D
	var gridVals []float64
	for _, x0 := range gx {
		for _, y0 := range gy {
			for _, z0 := range gz {
				noise, err := measureWindow(data, x0, y0, z0, winXY, winZ, cfg.ScaleNoise.Statistic, fluxRange)
				if err != nil {
					return nil, err
				}
				gridPts = append(gridPts, interpolation.Point3D{X: float64(x0), Y: float64(y0), Z: float64(z0)})
				gridVals = append(gridVals, noise)
			}
		}
	}

	log.Info("pipeline", "scaling by local noise surface", map[string]any{
		"gridPoints": len(gridPts), "interpolate": cfg.ScaleNoise.Interpolate,
	})

	out := data.Copy()
	if !cfg.ScaleNoise.Interpolate {
		for z := 0; z < data.Nz; z++ {
			for y := 0; y < data.Ny; y++ {
				for x := 0; x < data.Nx; x++ {
					noise := gridVals[nearestIndex3D(gridPts, x, y, z)]
					if noise == 0 || math.IsNaN(noise) {
						continue
					}
					v, err := data.GetFlt(x, y, z)
					if err != nil {
						return nil, err
					}
					if err := out.SetFlt(x, y, z, v/noise); err != nil {
						return nil, err
					}
				}
			}
		}
		return out, nil
	}

	surface := interpolation.New(gridPts, gridVals, interpolation.Gaussian)
	for z := 0; z < data.Nz; z++ {
		for y := 0; y < data.Ny; y++ {
			for x := 0; x < data.Nx; x++ {
				noise := surface.Estimate(interpolation.Point3D{X: float64(x), Y: float64(y), Z: float64(z)})
				if noise == 0 || math.IsNaN(noise) {
					continue
				}
				v, err := data.GetFlt(x, y, z)
				if err != nil {
					return nil, err
				}
				if err := out.SetFlt(x, y, z, v/noise); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

func nearestIndex3D(pts []interpolation.Point3D, x, y, z int) int {
	target := interpolation.Point3D{X: float64(x), Y: float64(y), Z: float64(z)}
	best, bestDist := 0, math.Inf(1)
	for i, p := range pts {
		if d := target.Distance(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// gridPoints returns the grid sample coordinates along one axis, spaced
// step apart, including 0 and the last index so the surface covers the
// whole axis even if size doesn't divide evenly by step. When step is
// at least size, the single centre index size/2 is returned instead.
func gridPoints(size, step int) []int {
	if step >= size {
		return []int{size / 2}
	}
	var pts []int
	for p := 0; p < size; p += step {
		pts = append(pts, p)
	}
	if pts[len(pts)-1] != size-1 {
		pts = append(pts, size-1)
	}
	return pts
}

func measureWindow(data *cube.Cube, x0, y0, z0, winXY, winZ int, statistic string, fluxRange kernels.FluxRange) (float64, error) {
	hxy := winXY / 2
	hz := winZ / 2
	x1, x2 := clamp(x0-hxy, data.Nx), clamp(x0+hxy, data.Nx)
	y1, y2 := clamp(y0-hxy, data.Ny), clamp(y0+hxy, data.Ny)
	z1, z2 := clamp(z0-hz, data.Nz), clamp(z0+hz, data.Nz)

	samples := make([]float64, 0, (x2-x1+1)*(y2-y1+1)*(z2-z1+1))
	for z := z1; z <= z2; z++ {
		for y := y1; y <= y2; y++ {
			for x := x1; x <= x2; x++ {
				v, err := data.GetFlt(x, y, z)
				if err != nil {
					return 0, err
				}
				samples = append(samples, v)
			}
		}
	}
	return measureSamples(samples, statistic, fluxRange)
}

func clamp(v, size int) int {
	if v < 0 {
		return 0
	}
	if v > size-1 {
		return size - 1
	}
	return v
}

// measureStatistic dispatches to the matching Cube statistic method.
func measureStatistic(c *cube.Cube, statistic string, fluxRange kernels.FluxRange) (float64, error) {
	switch statistic {
	case "mad":
		mad, err := c.StatMAD(0.0)
		return mad / 0.6744888, err
	case "gauss":
		mad, err := c.StatMAD(0.0)
		if err != nil {
			return 0, err
		}
		sigma, err := c.StatGaussianFitNoise(1, mad/0.6744888)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(sigma) {
			return mad / 0.6744888, nil
		}
		return sigma, nil
	default:
		return c.StatStd(0.0, 1, fluxRange)
	}
}

// measureSamples applies the same statistic choices as measureStatistic
// but over an already-extracted window of samples, for the local noise
// surface where each grid point's window is a small slice rather than
// the whole cube.
func measureSamples(samples []float64, statistic string, fluxRange kernels.FluxRange) (float64, error) {
	switch statistic {
	case "mad":
		return kernels.MAD(samples, 0.0) / 0.6744888, nil
	case "gauss":
		mad := kernels.MAD(samples, 0.0) / 0.6744888
		sigma := kernels.GaussianFitNoise(samples, 1, mad)
		if math.IsNaN(sigma) {
			return mad, nil
		}
		return sigma, nil
	default:
		return kernels.StdDev(samples, 0.0, 1, fluxRange), nil
	}
}
