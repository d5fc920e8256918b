// Package interpolation provides an ordinary-kriging spatial
// interpolator, grounded on the teacher's edge-preserving kriging but
// reworked for scattered 3-D sample points rather than fixed MRI slice
// gaps: pkg/pipeline's local noise scaling (SPEC_FULL.md §4.C.1) samples
// the noise statistic on a coarse grid and uses this package to
// interpolate the surface back up to full resolution.
package interpolation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// VariogramModel selects the spatial correlation function fitted
// between sample points.
type VariogramModel int

const (
	Spherical VariogramModel = iota
	Exponential
	Gaussian
)

// Point3D is a location in grid coordinates.
type Point3D struct{ X, Y, Z float64 }

// Compare implements kdtree.Comparable.
func (p Point3D) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(Point3D)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		return p.Z - q.Z
	}
}

// Dims implements kdtree.Comparable.
func (Point3D) Dims() int { return 3 }

// Distance returns the squared Euclidean distance to c.
func (p Point3D) Distance(c kdtree.Comparable) float64 {
	q := c.(Point3D)
	dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
	return dx*dx + dy*dy + dz*dz
}

// points is a kdtree.Interface over a slice of Point3D.
type points []Point3D

func (p points) Index(i int) kdtree.Comparable        { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p points) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(plane{p, d}, kdtree.MedianOfRandoms(plane{p, d}, 100))
}

type plane struct {
	points
	kdtree.Dim
}

func (s plane) Less(i, j int) bool {
	switch s.Dim {
	case 0:
		return s.points[i].X < s.points[j].X
	case 1:
		return s.points[i].Y < s.points[j].Y
	default:
		return s.points[i].Z < s.points[j].Z
	}
}
func (s plane) Slice(start, end int) kdtree.SortSlicer { return plane{s.points[start:end], s.Dim} }
func (s plane) Swap(i, j int)                          { s.points[i], s.points[j] = s.points[j], s.points[i] }

// Params holds a fitted variogram.
type Params struct {
	Range, Sill, Nugget float64
	Model                VariogramModel
}

// Interpolator is an ordinary-kriging estimator over a fixed set of
// sample points and values, following up to MaxNeighbors nearest
// points per query via a kd-tree.
type Interpolator struct {
	points       []Point3D
	values       []float64
	params       Params
	tree         *kdtree.Tree
	MaxNeighbors int
}

// New builds an Interpolator from sample locations and values,
// estimating Params from the sample's own spatial variance: Sill is the
// sample variance, Range is the median nearest-neighbour spacing scaled
// by 4, and Nugget is zero (the grid samples are themselves statistics,
// not noisy raw measurements).
func New(pts []Point3D, values []float64, model VariogramModel) *Interpolator {
	k := &Interpolator{points: pts, values: values, MaxNeighbors: 16}
	if len(pts) > 0 {
		// kdtree.New reorders its input, so build it over a copy to keep
		// k.points aligned with k.values.
		k.tree = kdtree.New(points(append([]Point3D(nil), pts...)), true)
	}
	k.params = Params{
		Range: estimateRange(pts),
		Sill:  sampleVariance(values),
		Model: model,
	}
	return k
}

func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 1
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	v := sumSq / float64(len(values)-1)
	if v <= 0 {
		return 1
	}
	return v
}

// estimateRange approximates the variogram range as 4x the median
// distance from each point to its nearest neighbour.
func estimateRange(pts []Point3D) float64 {
	if len(pts) < 2 {
		return 1
	}
	dists := make([]float64, 0, len(pts))
	for i, p := range pts {
		best := math.Inf(1)
		for j, q := range pts {
			if i == j {
				continue
			}
			d := p.Distance(q)
			if d < best {
				best = d
			}
		}
		dists = append(dists, math.Sqrt(best))
	}
	sort.Float64s(dists)
	median := dists[len(dists)/2]
	if median <= 0 {
		median = 1
	}
	return 4 * median
}

func (k *Interpolator) variogram(h float64) float64 {
	if h == 0 {
		return 0
	}
	p := k.params
	switch p.Model {
	case Spherical:
		if h >= p.Range {
			return p.Nugget + p.Sill
		}
		r := h / p.Range
		return p.Nugget + p.Sill*(1.5*r-0.5*r*r*r)
	case Exponential:
		return p.Nugget + p.Sill*(1-math.Exp(-3*h/p.Range))
	default: // Gaussian
		return p.Nugget + p.Sill*(1-math.Exp(-3*h*h/(p.Range*p.Range)))
	}
}

// Estimate returns the ordinary-kriging estimate at p, falling back to
// inverse-distance weighting of the available points when fewer than 3
// neighbours are known (the kriging system is singular below that).
func (k *Interpolator) Estimate(p Point3D) float64 {
	idx := k.nearest(p)
	if len(idx) == 0 {
		return math.NaN()
	}
	if len(idx) < 3 {
		return k.inverseDistance(p, idx)
	}

	n := len(idx)
	a := mat.NewDense(n+1, n+1, nil)
	b := mat.NewVecDense(n+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, k.variogram(math.Sqrt(k.points[idx[i]].Distance(k.points[idx[j]]))))
		}
		a.Set(i, n, 1)
		a.Set(n, i, 1)
		b.SetVec(i, k.variogram(math.Sqrt(p.Distance(k.points[idx[i]]))))
	}
	b.SetVec(n, 1)

	var weights mat.VecDense
	if err := weights.SolveVec(a, b); err != nil {
		return k.inverseDistance(p, idx)
	}

	estimate := 0.0
	for i := 0; i < n; i++ {
		estimate += weights.AtVec(i) * k.values[idx[i]]
	}
	return estimate
}

func (k *Interpolator) inverseDistance(p Point3D, idx []int) float64 {
	totalWeight, weightedSum := 0.0, 0.0
	for _, i := range idx {
		d := math.Sqrt(p.Distance(k.points[i]))
		if d < 1e-9 {
			return k.values[i]
		}
		w := 1 / (d * d)
		weightedSum += w * k.values[i]
		totalWeight += w
	}
	if totalWeight == 0 {
		return math.NaN()
	}
	return weightedSum / totalWeight
}

func (k *Interpolator) nearest(p Point3D) []int {
	if k.tree == nil {
		return nil
	}
	keeper := kdtree.NewNKeeper(k.MaxNeighbors)
	k.tree.NearestSet(keeper, p)
	idx := make([]int, 0, keeper.Len())
	for _, item := range keeper.Heap {
		if item.Comparable == nil {
			continue
		}
		q := item.Comparable.(Point3D)
		for i, cand := range k.points {
			if cand == q {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}
