package bezier

import (
	"sort"

	"github.com/cockroachdb/apd/v3"
)

// Extrema returns the interior parameters in (0, 1) where the derivative of
// either coordinate vanishes, in increasing order. Together with t=0 and t=1
// these are the only places an axis-aligned bounding box can touch the curve.
//
// For the degrees with closed forms (derivative degree at most two, curves up
// to cubic) the roots are solved exactly in decimal arithmetic; above that
// they are located by a sign scan followed by bisection to the configured
// tolerance.
func (b Bezier) Extrema(c *Context) ([]*apd.Decimal, error) {
	if err := b.valid(); err != nil {
		return nil, err
	}
	h := b.hodograph(c)
	if len(b) == 2 {
		// Constant derivative, no interior extrema.
		return nil, nil
	}
	xs := make([]*apd.Decimal, len(h))
	ys := make([]*apd.Decimal, len(h))
	for i, pt := range h {
		xs[i] = pt.X
		ys[i] = pt.Y
	}
	roots := append(c.bernsteinRoots(xs), c.bernsteinRoots(ys)...)
	sort.Slice(roots, func(i, j int) bool { return roots[i].Cmp(roots[j]) < 0 })
	return roots, nil
}

// BoundingBox returns the exact axis-aligned bounding box of the curve over
// [0, 1]: the curve is evaluated at its endpoints and at every interior
// derivative root, never merely sampled.
func (b Bezier) BoundingBox(c *Context) (Rect, error) {
	if err := b.valid(); err != nil {
		return Rect{}, err
	}
	bbox := NewRectFromPoints(c, b.Start(), b.End())
	roots, err := b.Extrema(c)
	if err != nil {
		return Rect{}, err
	}
	for _, t := range roots {
		bbox = bbox.UnionPoint(c, b.eval(c, t))
	}
	return bbox, nil
}

// bernsteinRoots returns the roots in (0, 1) of a scalar polynomial given by
// its Bernstein coefficients.
func (c *Context) bernsteinRoots(coef []*apd.Decimal) []*apd.Decimal {
	switch len(coef) {
	case 0, 1:
		return nil
	case 2:
		return c.linearBernsteinRoots(coef[0], coef[1])
	case 3:
		return c.quadraticBernsteinRoots(coef[0], coef[1], coef[2])
	default:
		return c.scannedBernsteinRoots(coef)
	}
}

func (c *Context) linearBernsteinRoots(c0, c1 *apd.Decimal) []*apd.Decimal {
	den := c.sub(c0, c1)
	if den.IsZero() {
		return nil
	}
	t := c.quo(c0, den)
	if t.Sign() <= 0 || t.Cmp(c.one) >= 0 {
		return nil
	}
	return []*apd.Decimal{t}
}

// quadraticBernsteinRoots converts to the power basis and applies the
// quadratic formula in decimal arithmetic.
func (c *Context) quadraticBernsteinRoots(c0, c1, c2 *apd.Decimal) []*apd.Decimal {
	a := c.add(c.sub(c0, c.mul(c.two, c1)), c2)
	bb := c.mul(c.two, c.sub(c1, c0))
	cc := c0
	if a.IsZero() {
		if bb.IsZero() {
			return nil
		}
		t := c.neg(c.quo(cc, bb))
		if t.Sign() <= 0 || t.Cmp(c.one) >= 0 {
			return nil
		}
		return []*apd.Decimal{t}
	}
	disc := c.sub(c.mul(bb, bb), c.mul(c.num(4), c.mul(a, cc)))
	if disc.Sign() < 0 {
		return nil
	}
	sq := c.sqrt(disc)
	den := c.mul(c.two, a)
	var roots []*apd.Decimal
	for _, num := range []*apd.Decimal{c.add(c.neg(bb), sq), c.sub(c.neg(bb), sq)} {
		t := c.quo(num, den)
		if t.Sign() > 0 && t.Cmp(c.one) < 0 {
			roots = append(roots, t)
		}
	}
	if len(roots) == 2 && roots[0].Cmp(roots[1]) == 0 {
		roots = roots[:1]
	}
	return roots
}

// scannedBernsteinRoots locates sign changes on a uniform scan and bisects
// each bracketing interval down to the configured tolerance. It backs the
// generic-degree case, where no closed form applies.
func (c *Context) scannedBernsteinRoots(coef []*apd.Decimal) []*apd.Decimal {
	n := 16 * len(coef)
	step := c.quo(c.one, c.num(int64(n)))
	var roots []*apd.Decimal
	tPrev := c.zero
	vPrev := c.bernsteinValue(coef, tPrev)
	for i := 1; i <= n; i++ {
		t := c.mul(step, c.num(int64(i)))
		v := c.bernsteinValue(coef, t)
		switch {
		case v.IsZero():
			if t.Sign() > 0 && t.Cmp(c.one) < 0 {
				roots = append(roots, t)
			}
		case vPrev.Sign()*v.Sign() < 0:
			r := c.bisectBernstein(coef, tPrev, t, vPrev)
			if r.Sign() > 0 && r.Cmp(c.one) < 0 {
				roots = append(roots, r)
			}
		}
		tPrev, vPrev = t, v
	}
	return roots
}

func (c *Context) bernsteinValue(coef []*apd.Decimal, t *apd.Decimal) *apd.Decimal {
	work := make([]*apd.Decimal, len(coef))
	copy(work, coef)
	for level := len(work) - 1; level > 0; level-- {
		for i := 0; i < level; i++ {
			work[i] = c.lerp(work[i], work[i+1], t)
		}
	}
	return work[0]
}

func (c *Context) bisectBernstein(coef []*apd.Decimal, lo, hi, vLo *apd.Decimal) *apd.Decimal {
	sLo := vLo.Sign()
	for i := 0; i < c.MaxIterations*4; i++ {
		mid := c.mul(c.half, c.add(lo, hi))
		if c.sub(hi, lo).Cmp(c.Tol) <= 0 {
			return mid
		}
		v := c.bernsteinValue(coef, mid)
		if v.IsZero() {
			return mid
		}
		if v.Sign() == sLo {
			lo = mid
		} else {
			hi = mid
		}
	}
	return c.mul(c.half, c.add(lo, hi))
}
