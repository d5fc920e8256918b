package cube

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"cubefind/pkg/cubeerr"
	"cubefind/pkg/kernels"
	"cubefind/pkg/region"
)

func setFlt(t *testing.T, c *Cube, x, y, z int, v float64) {
	t.Helper()
	if err := c.SetFlt(x, y, z, v); err != nil {
		t.Fatal(err)
	}
}

func getFlt(t *testing.T, c *Cube, x, y, z int) float64 {
	t.Helper()
	v, err := c.GetFlt(x, y, z)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func setInt(t *testing.T, c *Cube, x, y, z int, v int64) {
	t.Helper()
	if err := c.SetInt(x, y, z, v); err != nil {
		t.Fatal(err)
	}
}

func getInt(t *testing.T, c *Cube, x, y, z int) int64 {
	t.Helper()
	v, err := c.GetInt(x, y, z)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestNewHasConsistentShape(t *testing.T) {
	c, err := New(4, 3, 2, Float32)
	if err != nil {
		t.Fatal(err)
	}
	if c.Size() != 24 {
		t.Errorf("expected size 24, got %d", c.Size())
	}
	if c.Header.GetInt("NAXIS1") != 4 || c.Header.GetInt("NAXIS2") != 3 || c.Header.GetInt("NAXIS3") != 2 {
		t.Errorf("header axis sizes do not match constructor arguments")
	}
}

func TestNewRejectsUnsupportedType(t *testing.T) {
	if _, err := New(1, 1, 1, DType(17)); err == nil {
		t.Error("expected an error for an unsupported BITPIX value")
	}
}

func TestSetGetFltIntRoundTrip(t *testing.T) {
	c, err := New(3, 3, 3, Float64)
	if err != nil {
		t.Fatal(err)
	}
	setFlt(t, c, 1, 2, 0, 3.5)
	if got := getFlt(t, c, 1, 2, 0); got != 3.5 {
		t.Errorf("expected 3.5, got %v", got)
	}

	ic, err := New(3, 3, 3, Int32)
	if err != nil {
		t.Fatal(err)
	}
	setInt(t, ic, 0, 0, 0, 42)
	if got := getInt(t, ic, 0, 0, 0); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestAccessorsRejectOutOfBoundsCoordinates(t *testing.T) {
	c, _ := New(2, 2, 2, Float64)
	ic, _ := New(2, 2, 2, Int32)

	cases := []struct {
		name string
		call func() error
	}{
		{"GetFlt", func() error { _, err := c.GetFlt(2, 0, 0); return err }},
		{"GetFlt negative", func() error { _, err := c.GetFlt(0, -1, 0); return err }},
		{"GetInt", func() error { _, err := ic.GetInt(0, 0, 2); return err }},
		{"SetFlt", func() error { return c.SetFlt(5, 0, 0, 1.0) }},
		{"SetInt", func() error { return ic.SetInt(0, 5, 0, 1) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			if err == nil {
				t.Fatal("expected an error for an out-of-bounds coordinate")
			}
			if !errors.Is(err, cubeerr.ErrIndexRange) {
				t.Errorf("expected cubeerr.ErrIndexRange, got %v", err)
			}
		})
	}
}

func TestCopyIsDeep(t *testing.T) {
	c, _ := New(2, 2, 2, Float32)
	setFlt(t, c, 0, 0, 0, 1.0)
	dup := c.Copy()
	setFlt(t, dup, 0, 0, 0, 2.0)
	if getFlt(t, c, 0, 0, 0) != 1.0 {
		t.Error("mutating the copy affected the original")
	}
}

func TestFloatOnlyOperationsRejectIntegerCubes(t *testing.T) {
	c, _ := New(2, 2, 2, Int16)
	if _, err := c.StatSum(); err == nil {
		t.Error("expected StatSum to reject an integer cube")
	}
	if err := c.Boxcar(1); err == nil {
		t.Error("expected Boxcar to reject an integer cube")
	}
}

func TestMaskAndSetMasked(t *testing.T) {
	c, _ := New(3, 1, 1, Float32)
	setFlt(t, c, 0, 0, 0, 5.0)
	setFlt(t, c, 1, 0, 0, -5.0)
	setFlt(t, c, 2, 0, 0, 1.0)

	mask, _ := New(3, 1, 1, Int32)
	if err := c.Mask(mask, 3.0); err != nil {
		t.Fatal(err)
	}
	if getInt(t, mask, 0, 0, 0) != 1 || getInt(t, mask, 1, 0, 0) != 1 || getInt(t, mask, 2, 0, 0) != 0 {
		t.Errorf("unexpected mask contents: %d %d %d", getInt(t, mask, 0, 0, 0), getInt(t, mask, 1, 0, 0), getInt(t, mask, 2, 0, 0))
	}

	if err := c.SetMasked(mask, 9.0); err != nil {
		t.Fatal(err)
	}
	if getFlt(t, c, 0, 0, 0) != 9.0 || getFlt(t, c, 1, 0, 0) != -9.0 || getFlt(t, c, 2, 0, 0) != 1.0 {
		t.Errorf("unexpected data after SetMasked: %v %v %v", getFlt(t, c, 0, 0, 0), getFlt(t, c, 1, 0, 0), getFlt(t, c, 2, 0, 0))
	}
}

func TestDivideByWeights(t *testing.T) {
	c, _ := New(2, 1, 1, Float64)
	setFlt(t, c, 0, 0, 0, 10.0)
	setFlt(t, c, 1, 0, 0, 10.0)

	w, _ := New(2, 1, 1, Float64)
	setFlt(t, w, 0, 0, 0, 2.0)
	setFlt(t, w, 1, 0, 0, 0.0)

	if err := c.DivideByWeights(w); err != nil {
		t.Fatal(err)
	}
	if getFlt(t, c, 0, 0, 0) != 5.0 {
		t.Errorf("expected 5.0, got %v", getFlt(t, c, 0, 0, 0))
	}
	if !math.IsNaN(getFlt(t, c, 1, 0, 0)) {
		t.Errorf("expected NaN for zero weight, got %v", getFlt(t, c, 1, 0, 0))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c, _ := New(3, 2, 2, Float32)
	for z := 0; z < 2; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 3; x++ {
				setFlt(t, c, x, y, z, float64(x+10*y+100*z))
			}
		}
	}

	path := filepath.Join(t.TempDir(), "cube.fits")
	if err := c.Save(path, false); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Nx != 3 || loaded.Ny != 2 || loaded.Nz != 2 {
		t.Fatalf("unexpected loaded shape %dx%dx%d", loaded.Nx, loaded.Ny, loaded.Nz)
	}
	for z := 0; z < 2; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 3; x++ {
				want := float64(x + 10*y + 100*z)
				if got := getFlt(t, loaded, x, y, z); got != want {
					t.Errorf("(%d,%d,%d): expected %v, got %v", x, y, z, want, got)
				}
			}
		}
	}
}

func TestSaveRefusesToOverwriteByDefault(t *testing.T) {
	c, _ := New(1, 1, 1, Float32)
	path := filepath.Join(t.TempDir(), "cube.fits")
	if err := c.Save(path, false); err != nil {
		t.Fatal(err)
	}
	if err := c.Save(path, false); err == nil {
		t.Error("expected Save to refuse to overwrite an existing file")
	}
	if err := c.Save(path, true); err != nil {
		t.Errorf("expected overwrite=true to succeed, got %v", err)
	}
}

func TestSavePadsOutputToA2880ByteBoundary(t *testing.T) {
	c, _ := New(3, 2, 2, Float32)
	path := filepath.Join(t.TempDir(), "cube.fits")
	if err := c.Save(path, false); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size()%2880 != 0 {
		t.Errorf("expected file size to be a multiple of 2880, got %d", info.Size())
	}
}

func TestLoadRegionCropsAndAdjustsCRPIX(t *testing.T) {
	c, _ := New(5, 5, 1, Float64)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			setFlt(t, c, x, y, 0, float64(x+10*y))
		}
	}
	c.Header.PutFloat("CRPIX1", 1.0)
	c.Header.PutFloat("CRPIX2", 1.0)

	path := filepath.Join(t.TempDir(), "cube.fits")
	if err := c.Save(path, false); err != nil {
		t.Fatal(err)
	}

	r := region.Region{XMin: 1, XMax: 3, YMin: 2, YMax: 4, ZMin: 0, ZMax: 0}
	loaded, err := Load(path, &r, nil)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Nx != 3 || loaded.Ny != 3 || loaded.Nz != 1 {
		t.Fatalf("unexpected cropped shape %dx%dx%d", loaded.Nx, loaded.Ny, loaded.Nz)
	}
	if getFlt(t, loaded, 0, 0, 0) != float64(1+10*2) {
		t.Errorf("expected origin pixel 21, got %v", getFlt(t, loaded, 0, 0, 0))
	}
	if got := loaded.Header.GetFloat("CRPIX1"); got != 0.0 {
		t.Errorf("expected CRPIX1 shifted to 0, got %v", got)
	}
}

func TestBoxcarIsLinearAcrossSpectrum(t *testing.T) {
	c1, _ := New(1, 1, 8, Float64)
	c2, _ := New(1, 1, 8, Float64)
	sum, _ := New(1, 1, 8, Float64)
	for z := 0; z < 8; z++ {
		v1 := float64(z)
		v2 := float64(8 - z)
		setFlt(t, c1, 0, 0, z, v1)
		setFlt(t, c2, 0, 0, z, v2)
		setFlt(t, sum, 0, 0, z, v1+v2)
	}
	if err := c1.Boxcar(2); err != nil {
		t.Fatal(err)
	}
	if err := c2.Boxcar(2); err != nil {
		t.Fatal(err)
	}
	if err := sum.Boxcar(2); err != nil {
		t.Fatal(err)
	}
	for z := 0; z < 8; z++ {
		want := getFlt(t, c1, 0, 0, z) + getFlt(t, c2, 0, 0, z)
		got := getFlt(t, sum, 0, 0, z)
		if math.Abs(want-got) > 1e-9 {
			t.Errorf("boxcar not linear at z=%d: %v vs %v", z, want, got)
		}
	}
}

func TestStatStdUsesFluxRange(t *testing.T) {
	c, _ := New(1, 1, 4, Float64)
	setFlt(t, c, 0, 0, 0, -10)
	setFlt(t, c, 0, 0, 1, -10)
	setFlt(t, c, 0, 0, 2, 1)
	setFlt(t, c, 0, 0, 3, 1)
	neg, err := c.StatStd(0, 1, kernels.RangeNegative)
	if err != nil {
		t.Fatal(err)
	}
	if neg != 10 {
		t.Errorf("expected stddev 10 restricted to negative values, got %v", neg)
	}
}
