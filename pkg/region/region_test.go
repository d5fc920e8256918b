package region

import (
	"testing"
)

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("5,9,0,4,0,4")
	if err != nil {
		t.Fatal(err)
	}
	if r.XMin != 5 || r.XMax != 9 || r.YMin != 0 || r.YMax != 4 || r.ZMin != 0 || r.ZMax != 4 {
		t.Errorf("unexpected region: %+v", r)
	}
	nx, ny, nz := r.Size()
	if nx != 5 || ny != 5 || nz != 5 {
		t.Errorf("expected size 5x5x5, got %dx%dx%d", nx, ny, nz)
	}
}

func TestParseRegionRejectsInvertedBounds(t *testing.T) {
	if _, err := ParseRegion("9,5,0,4,0,4"); err == nil {
		t.Error("expected an error for xmin > xmax")
	}
}

func TestRegionClip(t *testing.T) {
	r := Region{XMin: -3, XMax: 100, YMin: 2, YMax: 3, ZMin: 0, ZMax: 0}
	clipped := r.Clip(10, 10, 10)
	if clipped.XMin != 0 || clipped.XMax != 9 {
		t.Errorf("expected x clipped to [0,9], got [%d,%d]", clipped.XMin, clipped.XMax)
	}
}

func TestParseFloatsKernelGrid(t *testing.T) {
	arr, err := ParseFloats("0.0, 3.5, 7.0")
	if err != nil {
		t.Fatal(err)
	}
	if arr.Size() != 3 {
		t.Fatalf("expected 3 elements, got %d", arr.Size())
	}
	if arr.GetFlt(1) != 3.5 {
		t.Errorf("expected 3.5, got %v", arr.GetFlt(1))
	}
}

func TestParseFlagShapes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"Channel", "12", "CHANNEL"},
		{"Pixel", "4,5", "PIXEL"},
		{"Circle", "4,5,3", "CIRCLE"},
		{"Region", "0,1,0,1,0,1", "REGION"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f, err := ParseFlag(c.in)
			if err != nil {
				t.Fatal(err)
			}
			if f.shape() != c.want {
				t.Errorf("expected shape %s, got %s", c.want, f.shape())
			}
		})
	}
}

func TestParseFlagRejectsUnknownShape(t *testing.T) {
	if _, err := ParseFlag("1,2,3,4"); err == nil {
		t.Error("expected an error for an unrecognised field count")
	}
}

func TestFlagCircleVoxels(t *testing.T) {
	f := FlagCircle{X: 5, Y: 5, R: 2}
	count := 0
	f.Voxels(10, 10, 3, func(x, y, z int) { count++ })
	// A discrete radius-2 disc (r^2=4) has 13 lattice points per plane.
	want := 13 * 3
	if count != want {
		t.Errorf("expected %d flagged voxels, got %d", want, count)
	}
}
