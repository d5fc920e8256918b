package cube

import "cubefind/pkg/kernels"

// Boxcar convolves every spectrum (line of sight along the z axis) with
// a boxcar filter of width 2*radius+1, NaN-safe and zero-padded beyond
// the cube's spectral range, per the reference's DataCube_boxcar.
func (c *Cube) Boxcar(radius int) error {
	if err := c.requireFloat("Boxcar"); err != nil {
		return err
	}
	if radius <= 0 {
		return nil
	}
	if c.Type == Float32 {
		return boxcarSpectral(c.f32, c.Nx, c.Ny, c.Nz, radius)
	}
	return boxcarSpectral(c.f64, c.Nx, c.Ny, c.Nz, radius)
}

func boxcarSpectral[T kernels.Float](data []T, nx, ny, nz, radius int) error {
	spectrum := make([]T, nz)
	out := make([]T, nz)
	scratch := make([]float64, nz+2*radius)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			for z := 0; z < nz; z++ {
				spectrum[z] = data[x+nx*(y+ny*z)]
			}
			kernels.Boxcar1D(spectrum, out, scratch, radius)
			for z := 0; z < nz; z++ {
				data[x+nx*(y+ny*z)] = out[z]
			}
		}
	}
	return nil
}

// Gaussian applies a spatial Gaussian filter (approximated by repeated
// boxcar passes, per kernels.Gaussian2D) of the given sigma to every
// x-y plane of the cube independently, per the reference's
// DataCube_gaussian.
func (c *Cube) Gaussian(sigma float64) error {
	if err := c.requireFloat("Gaussian"); err != nil {
		return err
	}
	if sigma <= 0 {
		return nil
	}
	if c.Type == Float32 {
		return gaussianPlanes(c.f32, c.Nx, c.Ny, c.Nz, sigma)
	}
	return gaussianPlanes(c.f64, c.Nx, c.Ny, c.Nz, sigma)
}

func gaussianPlanes[T kernels.Float](data []T, nx, ny, nz int, sigma float64) error {
	planeSize := nx * ny
	_, radius := kernels.GaussianParams(sigma)
	rowScratch := make([]float64, nx+2*radius)
	colScratch := make([]float64, ny+2*radius)
	for z := 0; z < nz; z++ {
		plane := data[z*planeSize : (z+1)*planeSize]
		kernels.Gaussian2D(plane, nx, ny, sigma, rowScratch, colScratch)
	}
	return nil
}
