package linker

import (
	"cubefind/pkg/cube"
	"cubefind/pkg/cubeerr"
)

// Config holds the linker's merging radii, minimum-extent requirements
// and the negative-source filter, matching the `linker.*` parameters of
// SPEC_FULL.md §6.
type Config struct {
	RadiusX, RadiusY, RadiusZ int
	MinSizeX, MinSizeY, MinSizeZ int
	// RemoveNegative discards sources whose net flux (summed over the
	// original, pre-mask cube) is negative, per SPEC_FULL.md §4.F.1.
	// Defaults to true.
	RemoveNegative bool
}

// DefaultConfig returns the reference's long-standing defaults: a
// merging radius of 1 on every axis, no minimum size, and negative
// sources removed. With radius 1 the skip test in withinEllipse
// rejects every offset with dx or dy non-zero, so only pixels at the
// same (x, y) in neighbouring channels are linked.
func DefaultConfig() Config {
	return Config{RadiusX: 1, RadiusY: 1, RadiusZ: 1, RemoveNegative: true}
}

// point is one cell on the explicit work stack used in place of the
// reference's recursive DataCube_mark_neighbours, so that large,
// sprawling sources cannot overflow the Go call stack.
type point struct{ x, y, z int }

// Run labels every connected group of 1-valued pixels in mask (which
// must be a 32-bit integer cube) with a unique provisional label, then
// filters out groups smaller than the configured minimum extent or
// (when enabled) with negative net flux in original, replacing
// surviving labels with a final, consecutively numbered label starting
// at 1. mask is modified in place. original supplies the flux values
// used for the negative-source filter; it must have the same shape as
// mask. Returns the table of surviving sources.
func Run(mask *cube.Cube, original *cube.Cube, cfg Config) ([]Source, error) {
	nx, ny, nz := mask.Nx, mask.Ny, mask.Nz
	tbl := NewTable()

	var label int32 = 2
	var stack []point

	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				v, err := mask.GetInt(x, y, z)
				if err != nil {
					return nil, err
				}
				if v != 1 {
					continue
				}
				if err := mask.SetInt(x, y, z, int64(label)); err != nil {
					return nil, err
				}
				tbl.Push(x, y, z) // index always equals label, by construction
				flux, err := original.GetFlt(x, y, z)
				if err != nil {
					return nil, err
				}
				tbl.AddFlux(label, flux)

				stack = append(stack, point{x, y, z})
				for len(stack) > 0 {
					p := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					if err := markNeighbours(mask, original, p, cfg, label, tbl, &stack); err != nil {
						return nil, err
					}
				}

				label++
				if label < 2 {
					return nil, cubeerr.Wrapf(cubeerr.ErrUserInput, "too many sources for 32-bit mask dynamic range")
				}
			}
		}
	}

	var nextFinal int32 = 1
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				v, err := mask.GetInt(x, y, z)
				if err != nil {
					return nil, err
				}
				lbl := int32(v)
				if lbl <= 0 {
					continue
				}
				if rejectedBySize(tbl, lbl, cfg) || rejectedByFlux(tbl, lbl, cfg) {
					if err := mask.SetInt(x, y, z, 0); err != nil {
						return nil, err
					}
					continue
				}
				if tbl.GetLabel(lbl) == 0 {
					tbl.SetLabel(lbl, nextFinal)
					nextFinal++
				}
				if err := mask.SetInt(x, y, z, int64(tbl.GetLabel(lbl))); err != nil {
					return nil, err
				}
			}
		}
	}

	return tbl.Reduce(), nil
}

func rejectedBySize(tbl *Table, lbl int32, cfg Config) bool {
	return tbl.GetSize(lbl, 0) < cfg.MinSizeX ||
		tbl.GetSize(lbl, 1) < cfg.MinSizeY ||
		tbl.GetSize(lbl, 2) < cfg.MinSizeZ
}

func rejectedByFlux(tbl *Table, lbl int32, cfg Config) bool {
	return cfg.RemoveNegative && tbl.GetFluxSum(lbl) < 0
}

// markNeighbours pushes every unlabelled neighbour of p within the
// configured ellipsoidal radius onto the work stack, labelling each as
// it is found. withinEllipse reproduces spec.md §9(i)'s skip predicate
// verbatim, including its surprising product-against-product form.
func markNeighbours(mask, original *cube.Cube, p point, cfg Config, label int32, tbl *Table, stack *[]point) error {
	nx, ny, nz := mask.Nx, mask.Ny, mask.Nz
	x1, x2 := clampRadius(p.x, cfg.RadiusX, nx)
	y1, y2 := clampRadius(p.y, cfg.RadiusY, ny)
	z1, z2 := clampRadius(p.z, cfg.RadiusZ, nz)

	for zz := z1; zz <= z2; zz++ {
		for yy := y1; yy <= y2; yy++ {
			for xx := x1; xx <= x2; xx++ {
				if withinEllipse(xx-p.x, yy-p.y, cfg.RadiusX, cfg.RadiusY) {
					continue
				}
				v, err := mask.GetInt(xx, yy, zz)
				if err != nil {
					return err
				}
				if v != 1 {
					continue
				}
				if err := mask.SetInt(xx, yy, zz, int64(label)); err != nil {
					return err
				}
				flux, err := original.GetFlt(xx, yy, zz)
				if err != nil {
					return err
				}
				tbl.Update(label, xx, yy, zz, flux)
				*stack = append(*stack, point{xx, yy, zz})
			}
		}
	}
	return nil
}

// withinEllipse reports whether the offset (dx, dy) should be *skipped*
// as outside the merging ellipse, per spec.md §9(i): the reference
// tests (dx^2 + dy^2) >= rx*ry rather than the geometrically "correct"
// (dx/rx)^2 + (dy/ry)^2 >= 1. This is reproduced exactly, not corrected.
func withinEllipse(dx, dy, rx, ry int) bool {
	return dx*dx+dy*dy >= rx*ry
}

func clampRadius(v, radius, size int) (int, int) {
	lo := v - radius
	if lo < 0 {
		lo = 0
	}
	hi := v + radius
	if hi > size-1 {
		hi = size - 1
	}
	return lo, hi
}
