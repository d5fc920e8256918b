// Package region provides the small value containers parsed from
// comma-separated strings: a generic Array of ints or floats (used for
// S+C kernel lists and raw sub-cube bounds), a Region of six clipped
// integer bounds, and the Flagger's tagged-union Flag shapes.
package region

import (
	"strconv"
	"strings"

	"cubefind/pkg/cubeerr"
)

// Kind distinguishes the element type an Array was parsed as.
type Kind int

const (
	// KindInt marks an Array of integers.
	KindInt Kind = iota
	// KindFloat marks an Array of floats.
	KindFloat
)

// Array is a fixed-length, caller-owned list of ints or floats parsed
// from a comma-separated string. It never resizes after construction.
type Array struct {
	kind  Kind
	ints  []int64
	flts  []float64
}

// ParseInts parses a comma-separated string of integers into an Array.
func ParseInts(s string) (*Array, error) {
	fields, err := splitFields(s)
	if err != nil {
		return nil, err
	}
	ints := make([]int64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, cubeerr.Wrapf(cubeerr.ErrUserInput, "field %d (%q) is not an integer", i, f)
		}
		ints[i] = v
	}
	return &Array{kind: KindInt, ints: ints}, nil
}

// ParseFloats parses a comma-separated string of floats into an Array.
func ParseFloats(s string) (*Array, error) {
	fields, err := splitFields(s)
	if err != nil {
		return nil, err
	}
	flts := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, cubeerr.Wrapf(cubeerr.ErrUserInput, "field %d (%q) is not a float", i, f)
		}
		flts[i] = v
	}
	return &Array{kind: KindFloat, flts: flts}, nil
}

func splitFields(s string) ([]string, error) {
	raw := strings.Split(s, ",")
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return nil, cubeerr.Wrapf(cubeerr.ErrUserInput, "empty value list %q", s)
	}
	return fields, nil
}

// Size returns the number of elements in the Array.
func (a *Array) Size() int {
	if a.kind == KindInt {
		return len(a.ints)
	}
	return len(a.flts)
}

// GetInt returns element i as an int64; an element of a float Array is
// truncated towards zero.
func (a *Array) GetInt(i int) int64 {
	if a.kind == KindInt {
		return a.ints[i]
	}
	return int64(a.flts[i])
}

// GetFlt returns element i widened to float64.
func (a *Array) GetFlt(i int) float64 {
	if a.kind == KindInt {
		return float64(a.ints[i])
	}
	return a.flts[i]
}

// Region is six integer bounds [xmin,xmax,ymin,ymax,zmin,zmax].
type Region struct {
	XMin, XMax int
	YMin, YMax int
	ZMin, ZMax int
}

// ParseRegion parses a comma-separated "xmin,xmax,ymin,ymax,zmin,zmax"
// string into a Region, without clipping (clipping happens at load time
// against the cube's actual axis sizes, see pkg/cube).
func ParseRegion(s string) (Region, error) {
	arr, err := ParseInts(s)
	if err != nil {
		return Region{}, err
	}
	if arr.Size() != 6 {
		return Region{}, cubeerr.Wrapf(cubeerr.ErrUserInput, "region requires exactly 6 values, got %d", arr.Size())
	}
	r := Region{
		XMin: int(arr.GetInt(0)), XMax: int(arr.GetInt(1)),
		YMin: int(arr.GetInt(2)), YMax: int(arr.GetInt(3)),
		ZMin: int(arr.GetInt(4)), ZMax: int(arr.GetInt(5)),
	}
	if r.XMin > r.XMax || r.YMin > r.YMax || r.ZMin > r.ZMax {
		return Region{}, cubeerr.Wrapf(cubeerr.ErrUserInput, "region bounds must satisfy min <= max on every axis")
	}
	return r, nil
}

// Clip restricts r to [0, size-1] on each axis.
func (r Region) Clip(nx, ny, nz int) Region {
	clip := func(v, max int) int {
		if v < 0 {
			v = 0
		}
		if v > max {
			v = max
		}
		return v
	}
	return Region{
		XMin: clip(r.XMin, nx-1), XMax: clip(r.XMax, nx-1),
		YMin: clip(r.YMin, ny-1), YMax: clip(r.YMax, ny-1),
		ZMin: clip(r.ZMin, nz-1), ZMax: clip(r.ZMax, nz-1),
	}
}

// Size returns the region's extent along each axis.
func (r Region) Size() (nx, ny, nz int) {
	return r.XMax - r.XMin + 1, r.YMax - r.YMin + 1, r.ZMax - r.ZMin + 1
}
