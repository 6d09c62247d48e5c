package bezier

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cockroachdb/apd/v3"
)

// Speed returns the magnitude of the first derivative at t.
func (b Bezier) Speed(c *Context, t *apd.Decimal) (*apd.Decimal, error) {
	d, err := b.Derivative(c, t, 1)
	if err != nil {
		return nil, err
	}
	return d.Hypot(c), nil
}

// Arclen returns the arc length of the whole curve.
func (b Bezier) Arclen(c *Context) (*apd.Decimal, error) {
	return b.ArclenBetween(c, c.zero, c.one)
}

// ArclenBetween returns the arc length between parameters t0 and t1 by
// adaptive Gauss-Legendre quadrature over the curve's speed. Two embedded
// rules of different order are evaluated over each interval; where they
// disagree by more than the interval's share of the tolerance budget, the
// interval is bisected and each half solved with half the budget, down to
// the configured depth bound. Length is a magnitude, so t0 > t1 is handled
// by swapping.
func (b Bezier) ArclenBetween(c *Context, t0, t1 *apd.Decimal) (*apd.Decimal, error) {
	if err := b.valid(); err != nil {
		return nil, err
	}
	t0 = c.clamp01(t0)
	t1 = c.clamp01(t1)
	if t0.Cmp(t1) > 0 {
		t0, t1 = t1, t0
	}
	if t0.Cmp(t1) == 0 {
		return c.zero, nil
	}
	h := b.hodograph(c)
	return c.adaptiveArclen(h, t0, t1, c.Tol, 0), nil
}

// quadSpeed integrates |h(t)| over [a, b] with one Gauss-Legendre rule,
// where h is the curve's hodograph.
func (c *Context) quadSpeed(rule []gaussNode, h Bezier, a, b *apd.Decimal) *apd.Decimal {
	halfWidth := c.mul(c.half, c.sub(b, a))
	mid := c.mul(c.half, c.add(a, b))
	sum := c.zero
	for _, node := range rule {
		t := c.add(mid, c.mul(halfWidth, node.x))
		sum = c.add(sum, c.mul(node.w, h.eval(c, t).Hypot(c)))
	}
	return c.mul(sum, halfWidth)
}

func (c *Context) adaptiveArclen(h Bezier, a, b, tol *apd.Decimal, depth int) *apd.Decimal {
	lo := c.quadSpeed(c.gaussLo, h, a, b)
	hi := c.quadSpeed(c.gaussHi, h, a, b)
	if depth >= c.QuadMinDepth {
		if c.abs(c.sub(hi, lo)).Cmp(tol) <= 0 || depth >= c.QuadMaxDepth {
			return hi
		}
	}
	mid := c.mul(c.half, c.add(a, b))
	halfTol := c.mul(c.half, tol)
	return c.add(
		c.adaptiveArclen(h, a, mid, halfTol, depth+1),
		c.adaptiveArclen(h, mid, b, halfTol, depth+1),
	)
}

// InverseResult reports the outcome of an inverse arc-length solve.
// Converged must be checked: an exhausted iteration budget is reported here,
// never as a silent success.
type InverseResult struct {
	// T is the parameter with arc length Length from the curve's start.
	T *apd.Decimal
	// Length is the arc length actually attained at T.
	Length *apd.Decimal
	// Residual is |Length - target|.
	Residual   *apd.Decimal
	Iterations int
	Converged  bool
}

// SolveForArclen finds the parameter t such that the arc length from the
// curve's start to t equals target. The target accepts the same
// representations as [Context.Scalar].
//
// The solve is Newton-Raphson on f(t) = arclen(0,t) - target with
// f'(t) = speed(t). A near-zero speed (cusp) substitutes a bisection
// half-step for that iteration, and any step that would leave [0, 1] is
// shortened to half the distance to the violated bound. target = 0 answers
// t=0 immediately; target at or beyond the total length answers t=1.
func (b Bezier) SolveForArclen(c *Context, target any) (InverseResult, error) {
	return b.solveForArclen(c, target, nil)
}

// SolveForArclenFrom is SolveForArclen with an initial-guess hint, clamped
// into [0, 1]. Lookup tables use it to seed the solve near the answer.
func (b Bezier) SolveForArclenFrom(c *Context, target any, hint *apd.Decimal) (InverseResult, error) {
	return b.solveForArclen(c, target, hint)
}

func (b Bezier) solveForArclen(c *Context, target any, hint *apd.Decimal) (InverseResult, error) {
	if err := b.valid(); err != nil {
		return InverseResult{}, err
	}
	goal, err := c.Scalar(target)
	if err != nil {
		return InverseResult{}, err
	}
	if goal.Sign() < 0 {
		return InverseResult{}, fmt.Errorf("%w: %s", ErrNegativeLength, goal)
	}
	if goal.IsZero() {
		return InverseResult{T: c.zero, Length: c.zero, Residual: c.zero, Converged: true}, nil
	}
	total, err := b.Arclen(c)
	if err != nil {
		return InverseResult{}, err
	}
	if goal.Cmp(total) >= 0 {
		return InverseResult{
			T:         c.one,
			Length:    total,
			Residual:  c.abs(c.sub(total, goal)),
			Converged: true,
		}, nil
	}

	h := b.hodograph(c)
	var t *apd.Decimal
	if hint != nil {
		t = c.clamp01(hint)
	} else {
		t = c.quo(goal, total)
	}
	// Bracket for bisection fallback: f(lo) < 0 < f(hi) throughout.
	bLo, bHi := c.zero, c.one

	length := c.adaptiveArclen(h, c.zero, t, c.Tol, 0)
	f := c.sub(length, goal)
	res := InverseResult{T: t, Length: length, Residual: c.abs(f)}
	for iter := 1; iter <= c.MaxIterations; iter++ {
		res.Iterations = iter
		if res.Residual.Cmp(c.Tol) <= 0 {
			res.Converged = true
			return res, nil
		}
		if f.Sign() < 0 {
			bLo = t
		} else {
			bHi = t
		}
		speed := h.eval(c, t).Hypot(c)
		var next *apd.Decimal
		if speed.Cmp(c.CuspThreshold) < 0 {
			// Cusp: a Newton step would divide by a vanishing speed.
			next = c.mul(c.half, c.add(bLo, bHi))
		} else {
			next = c.sub(t, c.quo(f, speed))
			if next.Sign() < 0 {
				next = c.mul(c.half, t)
			} else if next.Cmp(c.one) > 0 {
				next = c.mul(c.half, c.add(t, c.one))
			}
		}
		step := c.abs(c.sub(next, t))
		t = next
		length = c.adaptiveArclen(h, c.zero, t, c.Tol, 0)
		f = c.sub(length, goal)
		res.T, res.Length, res.Residual = t, length, c.abs(f)
		if step.Cmp(c.Tol) <= 0 {
			res.Converged = true
			return res, nil
		}
	}
	return res, nil
}

// ArclenTable is a precomputed parameter-to-cumulative-length map used for
// fast approximate inversion. It is read-only after construction; both
// columns are monotonically non-decreasing and the ends pin (0, 0) and
// (1, total).
type ArclenTable struct {
	curve Bezier
	ts    []*apd.Decimal
	cum   []*apd.Decimal
}

// NewArclenTable samples the curve at n equally spaced parameters and
// accumulates the quadrature arc length of every sample-to-sample span.
// n is the sample count and must be at least 2.
func (b Bezier) NewArclenTable(c *Context, n int) (*ArclenTable, error) {
	if err := b.valid(); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: table size %d", ErrBadInput, n)
	}
	h := b.hodograph(c)
	ts := make([]*apd.Decimal, n)
	cum := make([]*apd.Decimal, n)
	ts[0], cum[0] = c.zero, c.zero
	den := c.num(int64(n - 1))
	for i := 1; i < n; i++ {
		if i == n-1 {
			ts[i] = c.one
		} else {
			ts[i] = c.quo(c.num(int64(i)), den)
		}
		span := c.adaptiveArclen(h, ts[i-1], ts[i], c.Tol, 0)
		cum[i] = c.add(cum[i-1], span)
	}
	return &ArclenTable{curve: b, ts: ts, cum: cum}, nil
}

// Len returns the number of samples.
func (tab *ArclenTable) Len() int {
	return len(tab.ts)
}

// Total returns the cumulative length at t=1.
func (tab *ArclenTable) Total() *apd.Decimal {
	return tab.cum[len(tab.cum)-1]
}

// At returns the i-th (parameter, cumulative length) sample.
func (tab *ArclenTable) At(i int) (t, length *apd.Decimal) {
	return tab.ts[i], tab.cum[i]
}

// T returns the approximate parameter for a given arc length: binary search
// over the table and linear interpolation between the bracketing samples.
// Lengths at or below zero answer 0; lengths at or beyond the total answer 1.
func (tab *ArclenTable) T(c *Context, length *apd.Decimal) *apd.Decimal {
	if length.Sign() <= 0 {
		return c.zero
	}
	if length.Cmp(tab.Total()) >= 0 {
		return c.one
	}
	// First sample with cumulative length >= target.
	i := sort.Search(len(tab.cum), func(i int) bool {
		return tab.cum[i].Cmp(length) >= 0
	})
	span := c.sub(tab.cum[i], tab.cum[i-1])
	if span.IsZero() {
		return tab.ts[i]
	}
	frac := c.quo(c.sub(length, tab.cum[i-1]), span)
	return c.lerp(tab.ts[i-1], tab.ts[i], frac)
}

// Solve refines the table's approximate inversion with the exact
// Newton-based solver, seeded at the interpolated parameter.
func (tab *ArclenTable) Solve(c *Context, length any) (InverseResult, error) {
	goal, err := c.Scalar(length)
	if err != nil {
		return InverseResult{}, err
	}
	return tab.curve.SolveForArclenFrom(c, goal, tab.T(c, goal))
}

// VerifyArclenBounds checks chordLength <= arclen <= controlPolygonLength.
func (b Bezier) VerifyArclenBounds(c *Context) error {
	arclen, err := b.Arclen(c)
	if err != nil {
		return err
	}
	chord, err := b.ChordLength(c)
	if err != nil {
		return err
	}
	poly, err := b.PolygonLength(c)
	if err != nil {
		return err
	}
	slack := c.mul(c.Tol, c.VerifyFactor)
	if c.add(arclen, slack).Cmp(chord) < 0 {
		return fmt.Errorf("arc length %s below chord length %s", arclen, chord)
	}
	if arclen.Cmp(c.add(poly, slack)) > 0 {
		return fmt.Errorf("arc length %s above control polygon length %s", arclen, poly)
	}
	return nil
}

// VerifyArclenChordSum cross-checks the quadrature arc length against a
// dense n-chord approximation. Chords never overestimate arc length, so the
// quadrature result must be at or above the sum, and within tol of it; tol
// must absorb the chord approximation's own O(1/n^2) error.
func (b Bezier) VerifyArclenChordSum(c *Context, n int, tol *apd.Decimal) error {
	if n < 1 {
		return fmt.Errorf("%w: %d chords", ErrBadInput, n)
	}
	arclen, err := b.Arclen(c)
	if err != nil {
		return err
	}
	sum := c.zero
	prev := b.Start()
	step := c.quo(c.one, c.num(int64(n)))
	for i := 1; i <= n; i++ {
		var pt Point
		if i == n {
			pt = b.End()
		} else {
			pt = b.eval(c, c.mul(step, c.num(int64(i))))
		}
		sum = c.add(sum, prev.Distance(c, pt))
		prev = pt
	}
	if c.add(arclen, c.mul(c.Tol, c.VerifyFactor)).Cmp(sum) < 0 {
		return fmt.Errorf("arc length %s below %d-chord sum %s", arclen, n, sum)
	}
	if c.sub(arclen, sum).Cmp(tol) > 0 {
		return fmt.Errorf("arc length %s exceeds %d-chord sum %s by more than %s", arclen, n, sum, tol)
	}
	return nil
}

// VerifyArclenAdditivity checks arclen(0,t) + arclen(t,1) = arclen(0,1)
// within tolerance.
func (b Bezier) VerifyArclenAdditivity(c *Context, t *apd.Decimal) error {
	left, err := b.ArclenBetween(c, c.zero, t)
	if err != nil {
		return err
	}
	right, err := b.ArclenBetween(c, t, c.one)
	if err != nil {
		return err
	}
	total, err := b.Arclen(c)
	if err != nil {
		return err
	}
	diff := c.abs(c.sub(c.add(left, right), total))
	// Three independent quadratures, each within Tol.
	if diff.Cmp(c.mul(c.Tol, c.num(4))) > 0 {
		return fmt.Errorf("additivity violated at t=%s: %s + %s != %s", t, left, right, total)
	}
	return nil
}

// VerifyInverseRoundTrip checks that feeding the inverse solve's parameter
// back into the arc length reproduces the target, and that the solve
// converged.
func (b Bezier) VerifyInverseRoundTrip(c *Context, target any) error {
	goal, err := c.Scalar(target)
	if err != nil {
		return err
	}
	res, err := b.SolveForArclen(c, goal)
	if err != nil {
		return err
	}
	if !res.Converged {
		return fmt.Errorf("inverse arc length did not converge for target %s after %d iterations", goal, res.Iterations)
	}
	back, err := b.ArclenBetween(c, c.zero, res.T)
	if err != nil {
		return err
	}
	if c.abs(c.sub(back, goal)).Cmp(c.mul(c.Tol, c.VerifyFactor)) > 0 {
		return fmt.Errorf("round trip for target %s landed at %s", goal, back)
	}
	return nil
}

// Verify checks the table's contract: strictly increasing parameters,
// non-decreasing lengths, pinned boundary entries, and a total matching the
// direct computation within a widened tolerance that absorbs accumulated
// per-span error. Lengths may tie between consecutive samples: a zero-speed
// span (a degenerate curve, or a cusp plateau) contributes no length, and
// rejecting it would fail tables that are otherwise exact.
func (tab *ArclenTable) Verify(c *Context) error {
	if tab.ts[0].Sign() != 0 || tab.cum[0].Sign() != 0 {
		return fmt.Errorf("table does not start at (0, 0)")
	}
	if tab.ts[len(tab.ts)-1].Cmp(c.one) != 0 {
		return fmt.Errorf("table does not end at t=1")
	}
	for i := 1; i < len(tab.cum); i++ {
		if tab.ts[i].Cmp(tab.ts[i-1]) <= 0 {
			return fmt.Errorf("table parameters not increasing at sample %d", i)
		}
		if tab.cum[i].Cmp(tab.cum[i-1]) < 0 {
			return fmt.Errorf("table lengths decrease at sample %d", i)
		}
	}
	direct, err := tab.curve.Arclen(c)
	if err != nil {
		return err
	}
	slack := c.mul(c.Tol, c.mul(c.VerifyFactor, c.num(int64(len(tab.ts)))))
	if c.abs(c.sub(tab.Total(), direct)).Cmp(slack) > 0 {
		return fmt.Errorf("table total %s disagrees with direct arc length %s", tab.Total(), direct)
	}
	return nil
}

// VerifyArclen runs the whole arc-length verification family on the curve,
// collecting every failure rather than stopping at the first.
func (b Bezier) VerifyArclen(c *Context) error {
	var errs []error
	if err := b.VerifyArclenBounds(c); err != nil {
		errs = append(errs, fmt.Errorf("bounds: %w", err))
	}
	total, err := b.Arclen(c)
	if err != nil {
		return err
	}
	chordTol := c.quo(total, c.num(1000))
	if err := b.VerifyArclenChordSum(c, 1000, chordTol); err != nil {
		errs = append(errs, fmt.Errorf("chord sum: %w", err))
	}
	for _, s := range []string{"0.125", "0.5", "0.875"} {
		if err := b.VerifyArclenAdditivity(c, mustParse(s)); err != nil {
			errs = append(errs, fmt.Errorf("additivity: %w", err))
		}
	}
	for _, s := range []string{"0.25", "0.5", "0.75"} {
		if err := b.VerifyInverseRoundTrip(c, c.mul(total, mustParse(s))); err != nil {
			errs = append(errs, fmt.Errorf("round trip: %w", err))
		}
	}
	tab, err := b.NewArclenTable(c, c.TableSize)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	if err := tab.Verify(c); err != nil {
		errs = append(errs, fmt.Errorf("table: %w", err))
	}
	return errors.Join(errs...)
}
