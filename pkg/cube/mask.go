package cube

import "math"

// Mask sets every pixel of maskCube to 1 where the absolute value of the
// corresponding pixel in c exceeds threshold. maskCube must be an
// integer-typed cube of the same dimensions as c, per the reference's
// DataCube_mask/DataCube_mask_32.
func (c *Cube) Mask(maskCube *Cube, threshold float64) error {
	if err := c.requireFloat("Mask"); err != nil {
		return err
	}
	if !maskCube.isInt() {
		return requireIntErr("Mask", maskCube.Type)
	}
	if err := c.checkSameShape(maskCube); err != nil {
		return err
	}
	if threshold <= 0 {
		return requireErr("Mask", "threshold must be positive")
	}
	n := c.Size()
	for i := 0; i < n; i++ {
		v := c.flatGetFlt(i)
		if v > threshold || v < -threshold {
			maskCube.flatSetInt(i, 1)
		}
	}
	return nil
}

// SetMasked replaces every pixel of c whose corresponding maskCube pixel
// is non-zero with copysign(value, pixel), preserving sign while
// clamping already-detected pixels to a fixed magnitude ahead of a
// repeat smoothing pass, per DataCube_set_masked.
func (c *Cube) SetMasked(maskCube *Cube, value float64) error {
	if err := c.requireFloat("SetMasked"); err != nil {
		return err
	}
	if !maskCube.isInt() {
		return requireIntErr("SetMasked", maskCube.Type)
	}
	if err := c.checkSameShape(maskCube); err != nil {
		return err
	}
	n := c.Size()
	for i := 0; i < n; i++ {
		if maskCube.flatGetInt(i) != 0 {
			c.flatSetFlt(i, math.Copysign(value, c.flatGetFlt(i)))
		}
	}
	return nil
}

func (c *Cube) checkSameShape(other *Cube) error {
	if c.Nx != other.Nx || c.Ny != other.Ny || c.Nz != other.Nz {
		return requireErr("cube", "operand cubes have different dimensions")
	}
	return nil
}

func (c *Cube) flatGetFlt(i int) float64 {
	switch c.Type {
	case Float64:
		return c.f64[i]
	case Float32:
		return float64(c.f32[i])
	}
	return math.NaN()
}

func (c *Cube) flatSetFlt(i int, v float64) {
	switch c.Type {
	case Float64:
		c.f64[i] = v
	case Float32:
		c.f32[i] = float32(v)
	}
}

func (c *Cube) flatGetInt(i int) int64 {
	switch c.Type {
	case Uint8:
		return int64(c.u8[i])
	case Int16:
		return int64(c.i16[i])
	case Int32:
		return int64(c.i32[i])
	case Int64:
		return c.i64[i]
	}
	return 0
}

func (c *Cube) flatSetInt(i int, v int64) {
	switch c.Type {
	case Uint8:
		c.u8[i] = uint8(v)
	case Int16:
		c.i16[i] = int16(v)
	case Int32:
		c.i32[i] = int32(v)
	case Int64:
		c.i64[i] = v
	}
}
