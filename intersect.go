package bezier

import (
	"fmt"
	"sort"

	"github.com/cockroachdb/apd/v3"
)

// Status classifies how an intersection record was obtained. Only
// StatusRefined results met the convergence tolerance; the other statuses
// exist so lower-confidence fallbacks are never shaped like verified
// answers.
type Status int

const (
	// StatusRefined marks a result polished by Newton-Raphson to within
	// tolerance.
	StatusRefined Status = iota
	// StatusUnconverged marks a candidate whose refinement exhausted its
	// iteration budget; the pre-refinement estimate is kept.
	StatusUnconverged
	// StatusWindowLimit marks the midpoint of the remaining parameter
	// windows, reported because subdivision hit its depth bound.
	StatusWindowLimit
)

func (s Status) String() string {
	switch s {
	case StatusRefined:
		return "refined"
	case StatusUnconverged:
		return "unconverged"
	case StatusWindowLimit:
		return "window-limit"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Intersection is one crossing of two curves, or of a curve with itself. T1
// parametrizes the first curve and T2 the second; for self-intersections
// both parametrize the same curve with T1 < T2. Residual is the distance
// between the two independently evaluated curve points.
type Intersection struct {
	T1, T2   *apd.Decimal
	At       Point
	Residual *apd.Decimal
	Status   Status
}

func (x Intersection) String() string {
	return fmt.Sprintf("t1=%s t2=%s at %s (%s)", x.T1, x.T2, x.At, x.Status)
}

func requireLine(b Bezier) error {
	if err := b.valid(); err != nil {
		return err
	}
	if len(b) != 2 {
		return fmt.Errorf("%w: line must have exactly two control points, got %d", ErrBadInput, len(b))
	}
	return nil
}

// IntersectLines intersects two line segments by the closed form: the
// determinant of the direction vectors decides solvability and Cramer's rule
// yields both parameters. A determinant below ParallelThreshold reports no
// intersection; this deliberately classifies exactly coincident overlapping
// lines as parallel rather than returning a degenerate overlap set. The
// result is empty or a single record.
func IntersectLines(c *Context, a, b Bezier) ([]Intersection, error) {
	if err := requireLine(a); err != nil {
		return nil, fmt.Errorf("first line: %w", err)
	}
	if err := requireLine(b); err != nil {
		return nil, fmt.Errorf("second line: %w", err)
	}
	d1 := a[1].Sub(c, a[0])
	d2 := b[1].Sub(c, b[0])
	det := d1.Cross(c, d2)
	if c.abs(det).Cmp(c.ParallelThreshold) < 0 {
		return nil, nil
	}
	diff := b[0].Sub(c, a[0])
	t1 := c.quo(diff.Cross(c, d2), det)
	t2 := c.quo(diff.Cross(c, d1), det)
	if !c.inUnitRange(t1) || !c.inUnitRange(t2) {
		return nil, nil
	}
	t1, t2 = c.clamp01(t1), c.clamp01(t2)
	p1 := a[0].Add(c, d1.Mul(c, t1))
	p2 := b[0].Add(c, d2.Mul(c, t2))
	return []Intersection{{
		T1:       t1,
		T2:       t2,
		At:       p1.Midpoint(c, p2),
		Residual: p1.Distance(c, p2),
		Status:   StatusRefined,
	}}, nil
}

// inUnitRange reports whether t lies in [0, 1] with Tol slack on each end.
func (c *Context) inUnitRange(t *apd.Decimal) bool {
	return c.add(t, c.Tol).Sign() >= 0 && t.Cmp(c.add(c.one, c.Tol)) <= 0
}

// IntersectCurveLine intersects a curve with a line segment. The signed
// distance of the curve from the line is sampled at LineSamples points per
// curve degree; every sign change is narrowed by bisection until the
// bracketing interval is below tolerance. The line parameter is recovered by
// projecting the curve point onto the line, and a record is accepted only
// when that parameter lies in [0, 1] and the two independently evaluated
// points coincide within the verification tolerance.
func IntersectCurveLine(c *Context, b, line Bezier) ([]Intersection, error) {
	if err := b.valid(); err != nil {
		return nil, fmt.Errorf("curve: %w", err)
	}
	if err := requireLine(line); err != nil {
		return nil, err
	}
	dir := line[1].Sub(c, line[0])
	len2 := dir.Hypot2(c)
	if c.sqrt(len2).Cmp(c.CuspThreshold) < 0 {
		return nil, fmt.Errorf("%w: degenerate line", ErrInvalidCurve)
	}
	// Unnormalized signed distance; only its sign and zero set matter.
	dist := func(t *apd.Decimal) *apd.Decimal {
		return dir.Cross(c, b.eval(c, t).Sub(c, line[0]))
	}

	n := c.LineSamples * b.Degree()
	if n < c.LineSamples {
		n = c.LineSamples
	}
	step := c.quo(c.one, c.num(int64(n)))
	var roots []*apd.Decimal
	tPrev := c.zero
	vPrev := dist(tPrev)
	for i := 1; i <= n; i++ {
		var t *apd.Decimal
		if i == n {
			t = c.one
		} else {
			t = c.mul(step, c.num(int64(i)))
		}
		v := dist(t)
		switch {
		case v.IsZero():
			roots = append(roots, t)
		case vPrev.IsZero():
			// Handled when vPrev was current.
		case vPrev.Sign()*v.Sign() < 0:
			roots = append(roots, c.bisectRoot(dist, tPrev, t, vPrev))
		}
		tPrev, vPrev = t, v
	}
	if dist(c.zero).IsZero() {
		roots = append([]*apd.Decimal{c.zero}, roots...)
	}

	verifyTol := c.mul(c.Tol, c.VerifyFactor)
	var out []Intersection
	for _, t := range roots {
		pt := b.eval(c, t)
		s := c.quo(pt.Sub(c, line[0]).Dot(c, dir), len2)
		if !c.inUnitRange(s) {
			continue
		}
		s = c.clamp01(s)
		onLine := line[0].Add(c, dir.Mul(c, s))
		residual := pt.Distance(c, onLine)
		if residual.Cmp(verifyTol) > 0 {
			continue
		}
		out = append(out, Intersection{
			T1:       t,
			T2:       s,
			At:       pt.Midpoint(c, onLine),
			Residual: residual,
			Status:   StatusRefined,
		})
	}
	return c.dedupe(out, c.DedupTolerance), nil
}

// bisectRoot narrows a sign change of f to a parameter interval below Tol.
func (c *Context) bisectRoot(f func(*apd.Decimal) *apd.Decimal, lo, hi, vLo *apd.Decimal) *apd.Decimal {
	sLo := vLo.Sign()
	for i := 0; i < c.MaxIterations*4; i++ {
		mid := c.mul(c.half, c.add(lo, hi))
		if c.sub(hi, lo).Cmp(c.Tol) <= 0 {
			return mid
		}
		v := f(mid)
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

// ctrlBox returns the control-point bounding box. By the convex hull
// property it contains the curve, which is all the subdivision pruning
// needs; the exact extrema-based box is reserved for BoundingBox.
func (b Bezier) ctrlBox(c *Context) Rect {
	box := NewRectFromPoints(c, b[0], b[1])
	for _, pt := range b[2:] {
		box = box.UnionPoint(c, pt)
	}
	return box
}

// window is a shrinking parameter range on one curve during subdivision.
type window struct {
	lo, hi *apd.Decimal
}

func (w window) width(c *Context) *apd.Decimal {
	return c.sub(w.hi, w.lo)
}

func (w window) mid(c *Context) *apd.Decimal {
	return c.mul(c.half, c.add(w.lo, w.hi))
}

// IntersectCurves finds all intersections of two curves by recursive
// subdivision with bounding-box pruning. Whichever curve spans the larger
// parameter window is split in half (both when the windows are equal),
// recursing into the surviving combinations. Once both windows are below
// WindowTolerance the candidate is polished with a two-variable
// Newton-Raphson solve on the original curves; a branch whose Jacobian is
// singular (locally near-parallel curves) is abandoned rather than divided
// through. Hitting the depth bound yields the midpoint of the remaining
// windows, tagged StatusWindowLimit. Results are deduplicated by
// parameter-pair proximity.
//
// Two-point inputs degrade to the closed-form line solve.
//
// Exactly coincident overlapping spans are not given overlap semantics,
// mirroring the coincident-line policy of [IntersectLines]: every window
// pair along the overlap survives bounding-box pruning, so the subdivision
// degenerates to an exhaustive sweep bounded only by WindowTolerance and
// SubdivMaxDepth. Callers who may feed a curve against itself or a
// sub-span of itself should use [SelfIntersections] or crop the shared
// span away first.
func IntersectCurves(c *Context, a, b Bezier) ([]Intersection, error) {
	if err := a.valid(); err != nil {
		return nil, fmt.Errorf("first curve: %w", err)
	}
	if err := b.valid(); err != nil {
		return nil, fmt.Errorf("second curve: %w", err)
	}
	if len(a) == 2 && len(b) == 2 {
		return IntersectLines(c, a, b)
	}
	var out []Intersection
	c.subdivideIntersect(a, b, a, b, window{c.zero, c.one}, window{c.zero, c.one}, 0, &out)
	return c.dedupe(out, c.DedupTolerance), nil
}

func (c *Context) subdivideIntersect(origA, origB, subA, subB Bezier, wa, wb window, depth int, out *[]Intersection) {
	if !subA.ctrlBox(c).Overlaps(c, subB.ctrlBox(c), c.Tol) {
		return
	}
	aw := wa.width(c)
	bw := wb.width(c)
	if aw.Cmp(c.WindowTolerance) < 0 && bw.Cmp(c.WindowTolerance) < 0 {
		if x, ok := c.refinePair(origA, origB, wa.mid(c), wb.mid(c)); ok {
			*out = append(*out, x)
		}
		return
	}
	if depth >= c.SubdivMaxDepth {
		// Degenerate fallback; the distinct status keeps it from passing
		// for a converged result.
		t1, t2 := wa.mid(c), wb.mid(c)
		p1 := origA.eval(c, t1)
		p2 := origB.eval(c, t2)
		*out = append(*out, Intersection{
			T1:       t1,
			T2:       t2,
			At:       p1.Midpoint(c, p2),
			Residual: p1.Distance(c, p2),
			Status:   StatusWindowLimit,
		})
		return
	}
	cmp := aw.Cmp(bw)
	splitA := cmp >= 0
	splitB := cmp <= 0
	aParts := []Bezier{subA}
	aWins := []window{wa}
	if splitA {
		l, r := subA.split(c, c.half)
		m := wa.mid(c)
		aParts = []Bezier{l, r}
		aWins = []window{{wa.lo, m}, {m, wa.hi}}
	}
	bParts := []Bezier{subB}
	bWins := []window{wb}
	if splitB {
		l, r := subB.split(c, c.half)
		m := wb.mid(c)
		bParts = []Bezier{l, r}
		bWins = []window{{wb.lo, m}, {m, wb.hi}}
	}
	for i, ap := range aParts {
		for j, bp := range bParts {
			c.subdivideIntersect(origA, origB, ap, bp, aWins[i], bWins[j], depth+1, out)
		}
	}
}

// refinePair polishes a candidate (t1, t2) with Newton-Raphson on
// F(t1, t2) = A(t1) - B(t2). It reports false for singular-Jacobian
// branches, which are abandoned.
func (c *Context) refinePair(a, b Bezier, t1, t2 *apd.Decimal) (Intersection, bool) {
	t1, t2, residual, converged, singular := c.newton2(a, b, t1, t2, false)
	if singular {
		return Intersection{}, false
	}
	p1 := a.eval(c, t1)
	p2 := b.eval(c, t2)
	x := Intersection{
		T1:       t1,
		T2:       t2,
		At:       p1.Midpoint(c, p2),
		Residual: residual,
		Status:   StatusRefined,
	}
	if !converged {
		x.Status = StatusUnconverged
	}
	return x, true
}

// newton2 runs the shared two-variable Newton-Raphson loop solving
// A(t1) - B(t2) = (0, 0). Parameters are clamped into [0, 1] every step. In
// selfMode the two parameters belong to the same curve: the separation
// t2 - t1 >= MinSeparation is restored after every step, and a singular
// Jacobian nudges the parameters apart instead of aborting.
func (c *Context) newton2(a, b Bezier, t1, t2 *apd.Decimal, selfMode bool) (rt1, rt2, residual *apd.Decimal, converged, singular bool) {
	ha := a.hodograph(c)
	hb := b.hodograph(c)
	nudge := c.quo(c.MinSeparation, c.num(10))
	f := a.eval(c, t1).Sub(c, b.eval(c, t2))
	residual = f.Hypot(c)
	for iter := 0; iter < c.MaxIterations; iter++ {
		if residual.Cmp(c.Tol) <= 0 {
			return t1, t2, residual, true, false
		}
		da := ha.eval(c, t1)
		db := hb.eval(c, t2)
		// J = [da, -db]; det = -da.x*db.y + db.x*da.y
		det := c.sub(c.mul(db.X, da.Y), c.mul(da.X, db.Y))
		if c.abs(det).Cmp(c.JacobianThreshold) < 0 {
			if !selfMode {
				return t1, t2, residual, false, true
			}
			t1 = c.clamp01(c.sub(t1, nudge))
			t2 = c.clamp01(c.add(t2, nudge))
			t1, t2 = c.enforceSeparation(t1, t2)
			f = a.eval(c, t1).Sub(c, b.eval(c, t2))
			residual = f.Hypot(c)
			continue
		}
		// d = J^-1 * F for J = [[da.x, -db.x], [da.y, -db.y]].
		d1 := c.quo(c.sub(c.mul(db.X, f.Y), c.mul(db.Y, f.X)), det)
		d2 := c.quo(c.sub(c.mul(da.X, f.Y), c.mul(da.Y, f.X)), det)
		t1 = c.clamp01(c.sub(t1, d1))
		t2 = c.clamp01(c.sub(t2, d2))
		if selfMode {
			t1, t2 = c.enforceSeparation(t1, t2)
		}
		f = a.eval(c, t1).Sub(c, b.eval(c, t2))
		residual = f.Hypot(c)
	}
	return t1, t2, residual, residual.Cmp(c.Tol) <= 0, false
}

// enforceSeparation pushes t1 and t2 symmetrically apart to MinSeparation
// when an iteration step pulled them too close, keeping both in [0, 1].
func (c *Context) enforceSeparation(t1, t2 *apd.Decimal) (*apd.Decimal, *apd.Decimal) {
	if t1.Cmp(t2) > 0 {
		t1, t2 = t2, t1
	}
	if c.sub(t2, t1).Cmp(c.MinSeparation) >= 0 {
		return t1, t2
	}
	mid := c.mul(c.half, c.add(t1, t2))
	halfSep := c.mul(c.half, c.MinSeparation)
	t1 = c.clamp01(c.sub(mid, halfSep))
	t2 = c.clamp01(c.add(mid, halfSep))
	// Clamping at a boundary can eat the separation; push the free side.
	if c.sub(t2, t1).Cmp(c.MinSeparation) < 0 {
		if t1.IsZero() {
			t2 = c.clamp01(c.add(t1, c.MinSeparation))
		} else {
			t1 = c.clamp01(c.sub(t2, c.MinSeparation))
		}
	}
	return t1, t2
}

// dedupe removes records whose parameter pairs lie within tol of an earlier
// record, keeping the better-converged (then smaller-residual) of each
// cluster.
func (c *Context) dedupe(xs []Intersection, tol *apd.Decimal) []Intersection {
	var out []Intersection
	for _, x := range xs {
		dup := false
		for i, y := range out {
			d := c.add(c.abs(c.sub(x.T1, y.T1)), c.abs(c.sub(x.T2, y.T2)))
			if d.Cmp(tol) > 0 {
				continue
			}
			dup = true
			if x.Status < y.Status || (x.Status == y.Status && x.Residual.Cmp(y.Residual) < 0) {
				out[i] = x
			}
			break
		}
		if !dup {
			out = append(out, x)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if cmp := out[i].T1.Cmp(out[j].T1); cmp != 0 {
			return cmp < 0
		}
		return out[i].T2.Cmp(out[j].T2) < 0
	})
	return out
}

// SelfIntersections finds the points where a curve crosses itself. Curves
// below cubic degree cannot self-intersect and answer an empty result.
//
// The parameter domain is recursively bisected; wherever the current range
// exceeds twice MinSeparation the curve is cropped into its two halves and
// the halves intersected against each other, with found parameters mapped
// back into the original domain and pairs closer than MinSeparation
// discarded (the halves share their split point, which is not a crossing).
// Candidates are deduplicated with a tolerance derived from MinSeparation,
// since several branches can rediscover the same crossing, then refined by
// Newton-Raphson directly on the original curve. A candidate whose
// refinement fails to converge is kept in its pre-refinement form.
func SelfIntersections(c *Context, b Bezier) ([]Intersection, error) {
	if err := b.valid(); err != nil {
		return nil, err
	}
	if len(b) < 4 {
		return nil, nil
	}
	var candidates []Intersection
	if err := c.selfIntersectRange(b, c.zero, c.one, 0, &candidates); err != nil {
		return nil, err
	}
	candidates = c.dedupe(candidates, c.mul(c.half, c.MinSeparation))

	var out []Intersection
	for _, cand := range candidates {
		t1, t2, residual, converged, _ := c.newton2(b, b, cand.T1, cand.T2, true)
		if !converged {
			cand.Status = StatusUnconverged
			out = append(out, cand)
			continue
		}
		if t1.Cmp(t2) > 0 {
			t1, t2 = t2, t1
		}
		p1 := b.eval(c, t1)
		p2 := b.eval(c, t2)
		out = append(out, Intersection{
			T1:       t1,
			T2:       t2,
			At:       p1.Midpoint(c, p2),
			Residual: residual,
			Status:   StatusRefined,
		})
	}
	return c.dedupe(out, c.mul(c.half, c.MinSeparation)), nil
}

func (c *Context) selfIntersectRange(b Bezier, lo, hi *apd.Decimal, depth int, out *[]Intersection) error {
	if depth >= c.SubdivMaxDepth {
		return nil
	}
	if c.sub(hi, lo).Cmp(c.mul(c.two, c.MinSeparation)) <= 0 {
		return nil
	}
	mid := c.mul(c.half, c.add(lo, hi))
	left, err := b.Crop(c, lo, mid)
	if err != nil {
		return err
	}
	right, err := b.Crop(c, mid, hi)
	if err != nil {
		return err
	}
	xs, err := IntersectCurves(c, left, right)
	if err != nil {
		return err
	}
	for _, x := range xs {
		t1 := c.lerp(lo, mid, x.T1)
		t2 := c.lerp(mid, hi, x.T2)
		if c.sub(t2, t1).Cmp(c.MinSeparation) < 0 {
			continue
		}
		x.T1, x.T2 = t1, t2
		*out = append(*out, x)
	}
	if err := c.selfIntersectRange(b, lo, mid, depth+1, out); err != nil {
		return err
	}
	return c.selfIntersectRange(b, mid, hi, depth+1, out)
}

// PathIntersection tags an intersection with the segment indices it was
// found on.
type PathIntersection struct {
	Seg1, Seg2 int
	Intersection
}

// PathIntersections intersects every segment pair across two paths.
func PathIntersections(c *Context, p, q Path) ([]PathIntersection, error) {
	if err := p.valid(); err != nil {
		return nil, fmt.Errorf("first path: %w", err)
	}
	if err := q.valid(); err != nil {
		return nil, fmt.Errorf("second path: %w", err)
	}
	var out []PathIntersection
	for i, a := range p {
		for j, b := range q {
			xs, err := IntersectCurves(c, a, b)
			if err != nil {
				return nil, fmt.Errorf("segments %d/%d: %w", i, j, err)
			}
			for _, x := range xs {
				out = append(out, PathIntersection{Seg1: i, Seg2: j, Intersection: x})
			}
		}
	}
	return out, nil
}

// PathSelfIntersections finds where a path crosses itself: self-intersection
// within each segment plus curve-curve intersection across all non-adjacent
// segment pairs. Consecutive segments share a vertex and are skipped; for a
// closed path the first and last segments are likewise adjacent and their
// shared vertex is not reported.
func PathSelfIntersections(c *Context, p Path, closed bool) ([]PathIntersection, error) {
	if err := p.valid(); err != nil {
		return nil, err
	}
	var out []PathIntersection
	for i, seg := range p {
		xs, err := SelfIntersections(c, seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		for _, x := range xs {
			out = append(out, PathIntersection{Seg1: i, Seg2: i, Intersection: x})
		}
	}
	for i := 0; i < len(p); i++ {
		for j := i + 2; j < len(p); j++ {
			if closed && i == 0 && j == len(p)-1 {
				continue
			}
			xs, err := IntersectCurves(c, p[i], p[j])
			if err != nil {
				return nil, fmt.Errorf("segments %d/%d: %w", i, j, err)
			}
			for _, x := range xs {
				out = append(out, PathIntersection{Seg1: i, Seg2: j, Intersection: x})
			}
		}
	}
	return out, nil
}
