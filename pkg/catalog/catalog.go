// Package catalog writes the linker's surviving sources out as a
// column-aligned fixed-width ASCII table, mirroring the reference's
// plain-text catalogue format and the teacher's preference for
// fixed-layout output (its STL/OBJ writers are likewise fixed-layout).
package catalog

import (
	"fmt"
	"io"
	"math"

	"cubefind/pkg/cube"
	"cubefind/pkg/linker"
)

var columns = []string{"ID", "NPIX", "X_MIN", "X_MAX", "Y_MIN", "Y_MAX", "Z_MIN", "Z_MAX", "FLUX", "RA", "DEC", "FREQ"}

const colWidth = 14

// WriteASCII writes one header line and one row per source in sources,
// in fixed-width columns. c supplies the WCS header keywords used to
// convert each source's pixel-space bounding box centre to world-ish
// coordinates; when c's header carries no WCS keywords, RA/DEC/FREQ
// report the pixel centre unchanged, consistent with the WCS-projection
// Non-goal (this is a verbatim CRVAL/CDELT/CRPIX offset, not a real
// projection).
func WriteASCII(w io.Writer, sources []linker.Source, c *cube.Cube) error {
	for _, col := range columns {
		if _, err := fmt.Fprintf(w, "%-*s", colWidth, col); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for _, s := range sources {
		ra, dec, freq := worldCoords(c, s)
		fields := []any{
			s.Label, s.NPix,
			s.XMin, s.XMax, s.YMin, s.YMax, s.ZMin, s.ZMax,
			s.FluxSum, ra, dec, freq,
		}
		for _, f := range fields {
			if _, err := fmt.Fprintf(w, "%-*v", colWidth, format(f)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func format(v any) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.6g", f)
	}
	return fmt.Sprintf("%v", v)
}

// worldCoords converts a source's pixel-space bounding-box centre to
// world-ish coordinates using a verbatim CRVAL+CDELT*(pixel+1-CRPIX)
// linear offset (pixel is 0-based, CRPIX 1-based), never a real WCS
// projection (see WriteASCII).
func worldCoords(c *cube.Cube, s linker.Source) (ra, dec, freq float64) {
	cx := float64(s.XMin+s.XMax) / 2.0
	cy := float64(s.YMin+s.YMax) / 2.0
	cz := float64(s.ZMin+s.ZMax) / 2.0
	ra = linearOffset(c, "CRVAL1", "CRPIX1", "CDELT1", cx)
	dec = linearOffset(c, "CRVAL2", "CRPIX2", "CDELT2", cy)
	freq = linearOffset(c, "CRVAL3", "CRPIX3", "CDELT3", cz)
	return
}

func linearOffset(c *cube.Cube, valKey, pixKey, deltaKey string, pixel float64) float64 {
	if c.Header.Check(valKey) == 0 {
		return pixel
	}
	val := c.Header.GetFloat(valKey)
	crpix := c.Header.GetFloat(pixKey)
	delta := c.Header.GetFloat(deltaKey)
	if math.IsNaN(crpix) || math.IsNaN(delta) {
		return val
	}
	return val + delta*(pixel-(crpix-1))
}
