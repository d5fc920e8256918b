package region

import (
	"strings"

	"cubefind/pkg/cubeerr"
)

// Flag is a tagged union over the shapes the reference Flagger class
// supports, reduced per spec.md §9's design note to a fixed set of
// variants (dropping the original's variadic argument handling).
type Flag interface {
	// shape reports which of the four variants this is, for dispatch by
	// callers that need to format or serialise a Flag generically.
	shape() string

	// Voxels calls visit(x, y, z) for every voxel this flag covers
	// within a cube of the given dimensions.
	Voxels(nx, ny, nz int, visit func(x, y, z int))
}

// FlagPixel flags a single (x, y) spatial pixel across every channel.
type FlagPixel struct{ X, Y int }

func (FlagPixel) shape() string { return "PIXEL" }

// FlagChannel flags an entire spectral channel.
type FlagChannel struct{ Z int }

func (FlagChannel) shape() string { return "CHANNEL" }

// FlagRegion flags an arbitrary axis-aligned box.
type FlagRegion struct{ Region }

func (FlagRegion) shape() string { return "REGION" }

// FlagCircle flags a circular spatial aperture of radius R centred at (X, Y),
// applied identically to every channel.
type FlagCircle struct{ X, Y, R int }

func (FlagCircle) shape() string { return "CIRCLE" }

// ParseFlag parses a comma-separated integer list into the Flag variant
// whose field count matches: 2 -> FlagPixel, 1 -> FlagChannel,
// 6 -> FlagRegion, 3 -> FlagCircle.
func ParseFlag(s string) (Flag, error) {
	s = strings.TrimSpace(s)
	arr, err := ParseInts(s)
	if err != nil {
		return nil, err
	}
	switch arr.Size() {
	case 1:
		return FlagChannel{Z: int(arr.GetInt(0))}, nil
	case 2:
		return FlagPixel{X: int(arr.GetInt(0)), Y: int(arr.GetInt(1))}, nil
	case 3:
		return FlagCircle{X: int(arr.GetInt(0)), Y: int(arr.GetInt(1)), R: int(arr.GetInt(2))}, nil
	case 6:
		r, err := ParseRegion(s)
		if err != nil {
			return nil, err
		}
		return FlagRegion{Region: r}, nil
	default:
		return nil, cubeerr.Wrapf(cubeerr.ErrUserInput, "flag with %d values matches no known shape (want 1, 2, 3 or 6)", arr.Size())
	}
}

// Voxels calls visit(x, y, z) for every voxel f covers within a cube of
// the given dimensions, letting the caller (pkg/cube's Flag application)
// decide what "flagging" means (e.g. setting the value to NaN).
func (f FlagPixel) Voxels(nx, ny, nz int, visit func(x, y, z int)) {
	if f.X < 0 || f.X >= nx || f.Y < 0 || f.Y >= ny {
		return
	}
	for z := 0; z < nz; z++ {
		visit(f.X, f.Y, z)
	}
}

// Voxels calls visit(x, y, z) for every voxel in the flagged channel.
func (f FlagChannel) Voxels(nx, ny, nz int, visit func(x, y, z int)) {
	if f.Z < 0 || f.Z >= nz {
		return
	}
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			visit(x, y, f.Z)
		}
	}
}

// Voxels calls visit(x, y, z) for every voxel in the flagged region,
// clipped to the cube's dimensions.
func (f FlagRegion) Voxels(nx, ny, nz int, visit func(x, y, z int)) {
	r := f.Region.Clip(nx, ny, nz)
	for z := r.ZMin; z <= r.ZMax; z++ {
		for y := r.YMin; y <= r.YMax; y++ {
			for x := r.XMin; x <= r.XMax; x++ {
				visit(x, y, z)
			}
		}
	}
}

// Voxels calls visit(x, y, z) for every voxel within radius R of (X, Y)
// in every channel.
func (f FlagCircle) Voxels(nx, ny, nz int, visit func(x, y, z int)) {
	r2 := f.R * f.R
	x0, x1 := clampRange(f.X-f.R, f.X+f.R, nx)
	y0, y1 := clampRange(f.Y-f.R, f.Y+f.R, ny)
	for z := 0; z < nz; z++ {
		for y := y0; y <= y1; y++ {
			dy := y - f.Y
			for x := x0; x <= x1; x++ {
				dx := x - f.X
				if dx*dx+dy*dy <= r2 {
					visit(x, y, z)
				}
			}
		}
	}
}

func clampRange(lo, hi, n int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}
