// Package cube implements the DataCube container: a FITS-subset header
// (pkg/header) paired with a typed 1-, 2- or 3-dimensional payload. Six
// BITPIX-style data types are supported, matching the reference's
// float64/float32/uint8/int16/int32/int64 switch, but represented here as
// one typed Go slice per Cube rather than a void pointer plus a byte
// count, so that the type-dispatch switches of the original collapse
// into ordinary Go type assertions at the package boundary only.
package cube

import (
	"math"

	"cubefind/pkg/cubeerr"
	"cubefind/pkg/header"
)

// DType identifies the native pixel type, using the same numeric values
// as the FITS BITPIX keyword.
type DType int

const (
	Float64 DType = -64
	Float32 DType = -32
	Uint8   DType = 8
	Int16   DType = 16
	Int32   DType = 32
	Int64   DType = 64
)

// wordSize returns the size in bytes of one pixel of the given type, or
// 0 if dt is not one of the six supported types.
func wordSize(dt DType) int {
	switch dt {
	case Float64, Int64:
		return 8
	case Float32, Int32:
		return 4
	case Int16:
		return 2
	case Uint8:
		return 1
	}
	return 0
}

func validDType(dt DType) bool {
	return wordSize(dt) != 0
}

// Cube is a DataCube: a header plus a typed payload. Exactly one of the
// typed slices below is non-nil, selected by Type.
type Cube struct {
	Header *header.Header
	Type   DType

	// Nx, Ny, Nz are the cube's axis sizes; a 1-D or 2-D cube has
	// trailing axes of size 1, mirroring the reference's convention of
	// treating lower-dimensional data as a degenerate 3-D cube.
	Nx, Ny, Nz int

	f64 []float64
	f32 []float32
	u8  []uint8
	i16 []int16
	i32 []int32
	i64 []int64
}

// New allocates a blank cube of the given dimensions and type, with all
// pixels set to zero and a minimal header carrying SIMPLE/BITPIX/NAXIS*.
func New(nx, ny, nz int, dt DType) (*Cube, error) {
	if !validDType(dt) {
		return nil, cubeerr.Wrapf(cubeerr.ErrUserInput, "unsupported data type %d", dt)
	}
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, cubeerr.Wrapf(cubeerr.ErrUserInput, "invalid cube dimensions %dx%dx%d", nx, ny, nz)
	}
	c := &Cube{Type: dt, Nx: nx, Ny: ny, Nz: nz}
	c.alloc(nx * ny * nz)

	c.Header = header.New()
	dim := int64(1)
	if nz > 1 {
		dim = 3
	} else if ny > 1 {
		dim = 2
	}
	c.Header.PutInt("BITPIX", int64(dt))
	c.Header.PutInt("NAXIS", dim)
	c.Header.PutInt("NAXIS1", int64(nx))
	if dim > 1 {
		c.Header.PutInt("NAXIS2", int64(ny))
		c.Header.PutFloat("CRPIX2", 1.0)
		c.Header.PutFloat("CDELT2", 1.0)
		c.Header.PutFloat("CRVAL2", 1.0)
	}
	if dim > 2 {
		c.Header.PutInt("NAXIS3", int64(nz))
		c.Header.PutFloat("CRPIX3", 1.0)
		c.Header.PutFloat("CDELT3", 1.0)
		c.Header.PutFloat("CRVAL3", 1.0)
	}
	c.Header.PutFloat("CRPIX1", 1.0)
	c.Header.PutFloat("CDELT1", 1.0)
	c.Header.PutFloat("CRVAL1", 1.0)
	return c, nil
}

func (c *Cube) alloc(n int) {
	switch c.Type {
	case Float64:
		c.f64 = make([]float64, n)
	case Float32:
		c.f32 = make([]float32, n)
	case Uint8:
		c.u8 = make([]uint8, n)
	case Int16:
		c.i16 = make([]int16, n)
	case Int32:
		c.i32 = make([]int32, n)
	case Int64:
		c.i64 = make([]int64, n)
	}
}

// Copy returns a deep copy of c, including its header.
func (c *Cube) Copy() *Cube {
	out := &Cube{Type: c.Type, Nx: c.Nx, Ny: c.Ny, Nz: c.Nz}
	hdrCopy := make([]byte, len(c.Header.Bytes()))
	copy(hdrCopy, c.Header.Bytes())
	out.Header = header.FromBytes(hdrCopy)
	switch c.Type {
	case Float64:
		out.f64 = append([]float64(nil), c.f64...)
	case Float32:
		out.f32 = append([]float32(nil), c.f32...)
	case Uint8:
		out.u8 = append([]uint8(nil), c.u8...)
	case Int16:
		out.i16 = append([]int16(nil), c.i16...)
	case Int32:
		out.i32 = append([]int32(nil), c.i32...)
	case Int64:
		out.i64 = append([]int64(nil), c.i64...)
	}
	return out
}

// Size returns the total number of pixels in the cube.
func (c *Cube) Size() int { return c.Nx * c.Ny * c.Nz }

func (c *Cube) index(x, y, z int) int { return x + c.Nx*(y+c.Ny*z) }

func (c *Cube) checkBounds(x, y, z int) error {
	if x < 0 || x >= c.Nx || y < 0 || y >= c.Ny || z < 0 || z >= c.Nz {
		return cubeerr.Wrapf(cubeerr.ErrIndexRange, "position (%d,%d,%d) outside cube bounds (%d,%d,%d)", x, y, z, c.Nx, c.Ny, c.Nz)
	}
	return nil
}

// GetFlt returns the pixel at (x, y, z) widened to float64, regardless
// of the cube's native type. Returns cubeerr.ErrIndexRange if the
// coordinate is outside the cube, per spec.md's "out-of-bounds
// coordinates fail with ERR_INDEX_RANGE".
func (c *Cube) GetFlt(x, y, z int) (float64, error) {
	if err := c.checkBounds(x, y, z); err != nil {
		return 0, err
	}
	i := c.index(x, y, z)
	switch c.Type {
	case Float64:
		return c.f64[i], nil
	case Float32:
		return float64(c.f32[i]), nil
	case Uint8:
		return float64(c.u8[i]), nil
	case Int16:
		return float64(c.i16[i]), nil
	case Int32:
		return float64(c.i32[i]), nil
	case Int64:
		return float64(c.i64[i]), nil
	}
	return math.NaN(), nil
}

// GetInt returns the pixel at (x, y, z) narrowed/truncated to int64.
// Returns cubeerr.ErrIndexRange if the coordinate is outside the cube.
func (c *Cube) GetInt(x, y, z int) (int64, error) {
	if err := c.checkBounds(x, y, z); err != nil {
		return 0, err
	}
	i := c.index(x, y, z)
	switch c.Type {
	case Float64:
		return int64(c.f64[i]), nil
	case Float32:
		return int64(c.f32[i]), nil
	case Uint8:
		return int64(c.u8[i]), nil
	case Int16:
		return int64(c.i16[i]), nil
	case Int32:
		return int64(c.i32[i]), nil
	case Int64:
		return c.i64[i], nil
	}
	return 0, nil
}

// SetFlt writes value, cast to the cube's native type, at (x, y, z).
// Returns cubeerr.ErrIndexRange if the coordinate is outside the cube.
func (c *Cube) SetFlt(x, y, z int, value float64) error {
	if err := c.checkBounds(x, y, z); err != nil {
		return err
	}
	i := c.index(x, y, z)
	switch c.Type {
	case Float64:
		c.f64[i] = value
	case Float32:
		c.f32[i] = float32(value)
	case Uint8:
		c.u8[i] = uint8(value)
	case Int16:
		c.i16[i] = int16(value)
	case Int32:
		c.i32[i] = int32(value)
	case Int64:
		c.i64[i] = int64(value)
	}
	return nil
}

// SetInt writes value, cast to the cube's native type, at (x, y, z).
// Returns cubeerr.ErrIndexRange if the coordinate is outside the cube.
func (c *Cube) SetInt(x, y, z int, value int64) error {
	return c.SetFlt(x, y, z, float64(value))
}

func (c *Cube) isFloat() bool { return c.Type == Float32 || c.Type == Float64 }

func (c *Cube) isInt() bool {
	return c.Type == Uint8 || c.Type == Int16 || c.Type == Int32 || c.Type == Int64
}

// requireFloat is shared by every statistic/filter method that only
// makes sense on floating-point data.
func (c *Cube) requireFloat(op string) error {
	if !c.isFloat() {
		return cubeerr.Wrapf(cubeerr.ErrUserInput, "%s requires a floating-point cube, got type %d", op, c.Type)
	}
	return nil
}
