package interpolation

import (
	"math"
	"testing"
)

func TestEstimateRecoversExactValueAtSamplePoint(t *testing.T) {
	pts := []Point3D{{0, 0, 0}, {5, 0, 0}, {0, 5, 0}, {5, 5, 0}}
	vals := []float64{1, 2, 3, 4}
	k := New(pts, vals, Gaussian)

	got := k.Estimate(Point3D{0, 0, 0})
	if math.Abs(got-1) > 1e-6 {
		t.Errorf("expected estimate at a sample point to recover its value, got %v", got)
	}
}

func TestEstimateInterpolatesBetweenPoints(t *testing.T) {
	pts := []Point3D{{0, 0, 0}, {10, 0, 0}}
	vals := []float64{0, 10}
	k := New(pts, vals, Exponential)

	got := k.Estimate(Point3D{5, 0, 0})
	if got < 0 || got > 10 {
		t.Errorf("expected an interpolated value between the two samples, got %v", got)
	}
}

func TestEstimateWithNoPointsReturnsNaN(t *testing.T) {
	k := New(nil, nil, Spherical)
	got := k.Estimate(Point3D{1, 1, 1})
	if !math.IsNaN(got) {
		t.Errorf("expected NaN with no sample points, got %v", got)
	}
}

func TestEstimateFallsBackToInverseDistanceWithFewPoints(t *testing.T) {
	pts := []Point3D{{0, 0, 0}, {1, 0, 0}}
	vals := []float64{4, 8}
	k := New(pts, vals, Gaussian)

	got := k.Estimate(Point3D{0, 0, 0})
	if math.Abs(got-4) > 1e-9 {
		t.Errorf("expected the value at a coincident point, got %v", got)
	}
}

func TestSampleVarianceHandlesDegenerateInput(t *testing.T) {
	if v := sampleVariance(nil); v != 1 {
		t.Errorf("expected default variance 1 for empty input, got %v", v)
	}
	if v := sampleVariance([]float64{5}); v != 1 {
		t.Errorf("expected default variance 1 for a single sample, got %v", v)
	}
}
