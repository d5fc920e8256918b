package scfind

import (
	"math"
	"testing"

	"cubefind/pkg/cube"
)

// deterministic PRNG avoids taking a dependency on math/rand's version-
// sensitive stream just to synthesise repeatable Gaussian noise.
type xorshift struct{ state uint64 }

func (x *xorshift) next() uint64 {
	x.state ^= x.state << 13
	x.state ^= x.state >> 7
	x.state ^= x.state << 17
	return x.state
}

func (x *xorshift) gaussian() float64 {
	u1 := float64(x.next()%1_000_000) / 1_000_000
	u2 := float64(x.next()%1_000_000) / 1_000_000
	if u1 < 1e-12 {
		u1 = 1e-12
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func noisyCubeWithSource(t *testing.T, nx, ny, nz int, sigma, sourceAmp float64) *cube.Cube {
	t.Helper()
	c, err := cube.New(nx, ny, nz, cube.Float64)
	if err != nil {
		t.Fatal(err)
	}
	rng := &xorshift{state: 88172645463325252}
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				if err := c.SetFlt(x, y, z, sigma*rng.gaussian()); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
	cx, cy, cz := nx/2, ny/2, nz/2
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if err := c.SetFlt(cx+dx, cy+dy, cz+dz, sourceAmp); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
	return c
}

func TestRunDetectsInjectedSource(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping synthetic-cube scfind test in short mode")
	}
	c := noisyCubeWithSource(t, 32, 32, 32, 1.0, 50.0)
	cfg := DefaultConfig()
	cfg.Threshold = 5.0
	cfg.FluxRange = 0

	mask, err := Run(c, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	cx, cy, cz := 16, 16, 16
	v, err := mask.GetInt(cx, cy, cz)
	if err != nil {
		t.Fatal(err)
	}
	if v == 0 {
		t.Error("expected the injected high-amplitude source to be detected")
	}
}

func TestRunRejectsEmptyKernelLists(t *testing.T) {
	c, _ := cube.New(2, 2, 2, cube.Float64)
	cfg := DefaultConfig()
	cfg.KernelsSpatial = nil
	if _, err := Run(c, cfg, nil); err == nil {
		t.Error("expected an error for an empty spatial kernel list")
	}
}

func TestRunRejectsNegativeThreshold(t *testing.T) {
	c, _ := cube.New(2, 2, 2, cube.Float64)
	cfg := DefaultConfig()
	cfg.Threshold = -1
	if _, err := Run(c, cfg, nil); err == nil {
		t.Error("expected an error for a negative threshold")
	}
}

func TestSampleCadenceNeverBelowOne(t *testing.T) {
	if got := sampleCadence(10); got != 1 {
		t.Errorf("expected cadence 1 for a small cube, got %d", got)
	}
}
