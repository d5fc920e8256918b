package cube

import "math"

// CopyWCS copies a fixed set of world-coordinate-system header keywords
// (present only if already set in src) from src into c, used when
// deriving a mask cube from a data cube so that catalogue output can
// report source positions in the original cube's coordinate system. No
// projection math is performed, per SPEC_FULL.md's WCS-copy-through
// Non-goal.
func (c *Cube) CopyWCS(src *Cube) {
	strKeys := []string{"CTYPE1", "CTYPE2", "CTYPE3"}
	for _, k := range strKeys {
		if src.Header.Check(k) == 0 {
			continue
		}
		if v, err := src.Header.GetString(k); err == nil {
			c.Header.PutString(k, v)
		}
	}
	fltKeys := []string{"CRVAL1", "CRVAL2", "CRVAL3", "CRPIX1", "CRPIX2", "CRPIX3", "CDELT1", "CDELT2", "CDELT3", "EPOCH"}
	for _, k := range fltKeys {
		if src.Header.Check(k) == 0 {
			continue
		}
		c.Header.PutFloat(k, src.Header.GetFloat(k))
	}
}

// ApplyFlag sets every voxel covered by f to NaN, used by the pipeline
// to blank known-bad regions ahead of the S+C finder, per
// SPEC_FULL.md §4.G.1.
func (c *Cube) ApplyFlag(f Flag) error {
	if err := c.requireFloat("ApplyFlag"); err != nil {
		return err
	}
	var setErr error
	f.Voxels(c.Nx, c.Ny, c.Nz, func(x, y, z int) {
		if err := c.SetFlt(x, y, z, math.NaN()); err != nil && setErr == nil {
			setErr = err
		}
	})
	return setErr
}

// Flag mirrors pkg/region.Flag's interface so callers can pass either a
// region.Flag or anything else exposing the same Voxels method without
// this package importing pkg/region solely for the interface shape.
type Flag interface {
	Voxels(nx, ny, nz int, visit func(x, y, z int))
}
