// Package linker implements the 3-D connected-component labeller that
// turns the S+C finder's 0/1 mask into consecutively numbered sources:
// the LinkerPar table of per-label bounding boxes and pixel counts
// (this file) and the ellipsoidal-neighbourhood labelling sweep itself
// (linker.go).
package linker

// record holds the running bounding box, pixel count and flux sum for
// one provisional label, plus the final label it is remapped to (0
// until assigned, meaning "not yet kept").
type record struct {
	xMin, xMax int
	yMin, yMax int
	zMin, zMax int
	nPix       int64
	fluxSum    float64
	label      int32
}

// Table is the LinkerPar table: one record per provisional label,
// indexed directly by label value. Labels 0 and 1 are reserved dummy
// entries so that real provisional labels start at 2, mirroring the
// reference's "create two dummy objects" convention (background is 0,
// so labelling can start at 1 without colliding with it; the reference
// reserves 2 to leave room for a distinguished "unlinked" value of 1 in
// the mask it labels in place).
type Table struct {
	records []record
}

// NewTable returns an empty table with its two reserved dummy entries.
func NewTable() *Table {
	t := &Table{}
	t.Push(0, 0, 0)
	t.Push(0, 0, 0)
	return t
}

// Push appends a new record seeded at the single pixel (x, y, z) with a
// pixel count of 1, returning its index (the provisional label that
// should be assigned to this and subsequent connected pixels).
func (t *Table) Push(x, y, z int) int {
	t.records = append(t.records, record{xMin: x, xMax: x, yMin: y, yMax: y, zMin: z, zMax: z, nPix: 1})
	return len(t.records) - 1
}

// Update extends the bounding box and pixel/flux accumulators of the
// record at the given provisional label to include (x, y, z) with the
// given flux value.
func (t *Table) Update(label int32, x, y, z int, flux float64) {
	r := &t.records[label]
	if x < r.xMin {
		r.xMin = x
	}
	if x > r.xMax {
		r.xMax = x
	}
	if y < r.yMin {
		r.yMin = y
	}
	if y > r.yMax {
		r.yMax = y
	}
	if z < r.zMin {
		r.zMin = z
	}
	if z > r.zMax {
		r.zMax = z
	}
	r.nPix++
	r.fluxSum += flux
}

// AddFlux adds flux to the running flux sum of label without touching
// its bounding box or pixel count, used to account for the seed pixel
// pushed via Push (whose flux is not yet known at push time).
func (t *Table) AddFlux(label int32, flux float64) {
	t.records[label].fluxSum += flux
}

// GetSize returns the bounding-box extent of the record at label along
// axis (0 = x, 1 = y, 2 = z).
func (t *Table) GetSize(label int32, axis int) int {
	r := &t.records[label]
	switch axis {
	case 0:
		return r.xMax - r.xMin + 1
	case 1:
		return r.yMax - r.yMin + 1
	default:
		return r.zMax - r.zMin + 1
	}
}

// GetNPix returns the pixel count of the record at label.
func (t *Table) GetNPix(label int32) int64 { return t.records[label].nPix }

// GetFluxSum returns the running flux sum of the record at label.
func (t *Table) GetFluxSum(label int32) float64 { return t.records[label].fluxSum }

// SetLabel sets the final (post-filtering) label of the record at
// provisional label.
func (t *Table) SetLabel(label int32, final int32) { t.records[label].label = final }

// GetLabel returns the final label of the record at provisional label,
// or 0 if none has been assigned yet.
func (t *Table) GetLabel(label int32) int32 { return t.records[label].label }

// Source is one surviving, finally-labelled source, exposed to callers
// outside the package (the pipeline and catalogue writer) after Reduce.
type Source struct {
	Label      int32
	XMin, XMax int
	YMin, YMax int
	ZMin, ZMax int
	NPix       int64
	FluxSum    float64
}

// Reduce discards every record whose final label is still 0 (filtered
// out for size or negative-flux reasons) and returns the survivors as
// Sources sorted by final label, ascending.
func (t *Table) Reduce() []Source {
	out := make([]Source, 0, len(t.records))
	for _, r := range t.records {
		if r.label == 0 {
			continue
		}
		out = append(out, Source{
			Label: r.label,
			XMin: r.xMin, XMax: r.xMax,
			YMin: r.yMin, YMax: r.yMax,
			ZMin: r.zMin, ZMax: r.zMax,
			NPix: r.nPix, FluxSum: r.fluxSum,
		})
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Label > out[j].Label; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
