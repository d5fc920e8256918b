package cube

import "math"

// DivideByWeights divides every pixel of c by the corresponding pixel of
// weights, setting the result to NaN where the weight is zero or
// non-finite. Both cubes must be floating-point and identically shaped,
// per SPEC_FULL.md §4.C.1.
func (c *Cube) DivideByWeights(weights *Cube) error {
	if err := c.requireFloat("DivideByWeights"); err != nil {
		return err
	}
	if err := weights.requireFloat("DivideByWeights"); err != nil {
		return err
	}
	if err := c.checkSameShape(weights); err != nil {
		return err
	}
	n := c.Size()
	for i := 0; i < n; i++ {
		w := weights.flatGetFlt(i)
		v := c.flatGetFlt(i)
		if w == 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			c.flatSetFlt(i, math.NaN())
			continue
		}
		c.flatSetFlt(i, v/w)
	}
	return nil
}
