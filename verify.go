package bezier

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// VerifyIntersections re-evaluates both curves at every record's parameters
// and checks that the resulting points coincide within the verification
// tolerance. Failures are collected per record rather than aborting at the
// first.
func VerifyIntersections(c *Context, a, b Bezier, xs []Intersection) error {
	if err := a.valid(); err != nil {
		return err
	}
	if err := b.valid(); err != nil {
		return err
	}
	verifyTol := c.mul(c.Tol, c.VerifyFactor)
	var errs []error
	for i, x := range xs {
		p1 := a.eval(c, c.clamp01(x.T1))
		p2 := b.eval(c, c.clamp01(x.T2))
		if d := p1.Distance(c, p2); d.Cmp(verifyTol) > 0 {
			errs = append(errs, fmt.Errorf("record %d (%s): points %s and %s are %s apart", i, x.Status, p1, p2, d))
		}
	}
	return errors.Join(errs...)
}

// VerifySelfIntersections checks each record's parameter ordering (T1 < T2),
// the minimum separation, point coincidence, and that the curve genuinely
// crosses itself there: stepping a small offset to either side of both
// parameters must move the two branches farther apart than the reported
// points, which rules out a tangential touch misreported as a crossing.
func VerifySelfIntersections(c *Context, b Bezier, xs []Intersection) error {
	if err := b.valid(); err != nil {
		return err
	}
	verifyTol := c.mul(c.Tol, c.VerifyFactor)
	offset := c.quo(c.MinSeparation, c.num(4))
	var errs []error
	for i, x := range xs {
		if x.T1.Cmp(x.T2) >= 0 {
			errs = append(errs, fmt.Errorf("record %d: t1=%s is not below t2=%s", i, x.T1, x.T2))
			continue
		}
		if c.sub(x.T2, x.T1).Cmp(c.MinSeparation) < 0 {
			errs = append(errs, fmt.Errorf("record %d: separation %s below minimum %s", i, c.sub(x.T2, x.T1), c.MinSeparation))
		}
		p1 := b.eval(c, c.clamp01(x.T1))
		p2 := b.eval(c, c.clamp01(x.T2))
		gap := p1.Distance(c, p2)
		if gap.Cmp(verifyTol) > 0 {
			errs = append(errs, fmt.Errorf("record %d: points %s and %s are %s apart", i, p1, p2, gap))
			continue
		}
		for _, side := range []*apd.Decimal{c.neg(offset), offset} {
			q1 := b.eval(c, c.clamp01(c.add(x.T1, side)))
			q2 := b.eval(c, c.clamp01(c.add(x.T2, side)))
			if q1.Distance(c, q2).Cmp(gap) <= 0 {
				errs = append(errs, fmt.Errorf("record %d: branches do not separate around t1=%s, t2=%s", i, x.T1, x.T2))
				break
			}
		}
	}
	return errors.Join(errs...)
}

// SelfTestResult is one named check of the self-test harness.
type SelfTestResult struct {
	Name string
	Err  error
}

// Pass reports whether the check succeeded.
func (r SelfTestResult) Pass() bool {
	return r.Err == nil
}

// SelfTestReport is the outcome of the full self-test harness.
type SelfTestReport struct {
	Results []SelfTestResult
	// Pass is true when every individual check passed.
	Pass bool
}

// SelfTest exercises every intersection and arc-length entry point against
// canonical configurations with known or known-absent answers, collecting a
// per-check verdict. It is a contractual health check: a context whose
// tolerances and precision are configured inconsistently will fail here
// before it fails silently in production use.
func SelfTest(c *Context) SelfTestReport {
	var report SelfTestReport
	check := func(name string, fn func() error) {
		report.Results = append(report.Results, SelfTestResult{Name: name, Err: fn()})
	}

	check("line-line crossing", func() error {
		a, err := c.Line(0, 0, 100, 100)
		if err != nil {
			return err
		}
		b, err := c.Line(0, 100, 100, 0)
		if err != nil {
			return err
		}
		xs, err := IntersectLines(c, a, b)
		if err != nil {
			return err
		}
		if len(xs) != 1 {
			return fmt.Errorf("want 1 intersection, got %d", len(xs))
		}
		want, _ := c.Pt(50, 50)
		if d := xs[0].At.Distance(c, want); d.Cmp(c.mul(c.Tol, c.VerifyFactor)) > 0 {
			return fmt.Errorf("intersection at %s, want (50, 50)", xs[0].At)
		}
		if c.abs(c.sub(xs[0].T1, c.half)).Cmp(c.Tol) > 0 || c.abs(c.sub(xs[0].T2, c.half)).Cmp(c.Tol) > 0 {
			return fmt.Errorf("parameters %s, %s, want 0.5, 0.5", xs[0].T1, xs[0].T2)
		}
		return VerifyIntersections(c, a, b, xs)
	})

	check("line-line parallel", func() error {
		a, err := c.Line(0, 0, 100, 0)
		if err != nil {
			return err
		}
		b, err := c.Line(0, 5, 100, 5)
		if err != nil {
			return err
		}
		xs, err := IntersectLines(c, a, b)
		if err != nil {
			return err
		}
		if len(xs) != 0 {
			return fmt.Errorf("parallel lines report %d intersections", len(xs))
		}
		return nil
	})

	check("curve-line arch", func() error {
		arch, err := c.Bezier(0, 0, 0, 100, 100, 100, 100, 0)
		if err != nil {
			return err
		}
		line, err := c.Line(-10, 50, 110, 50)
		if err != nil {
			return err
		}
		xs, err := IntersectCurveLine(c, arch, line)
		if err != nil {
			return err
		}
		if len(xs) != 2 {
			return fmt.Errorf("want 2 crossings of the arch, got %d", len(xs))
		}
		return VerifyIntersections(c, arch, line, xs)
	})

	check("curve-curve crossing", func() error {
		arch, err := c.Bezier(0, 0, 0, 100, 100, 100, 100, 0)
		if err != nil {
			return err
		}
		vertical, err := c.Bezier(50, -10, 50, 30, 50, 70, 50, 110)
		if err != nil {
			return err
		}
		xs, err := IntersectCurves(c, arch, vertical)
		if err != nil {
			return err
		}
		if len(xs) != 1 {
			return fmt.Errorf("want 1 intersection, got %d", len(xs))
		}
		want, _ := c.Pt(50, 75)
		if d := xs[0].At.Distance(c, want); d.Cmp(c.mul(c.Tol, c.VerifyFactor)) > 0 {
			return fmt.Errorf("intersection at %s, want (50, 75)", xs[0].At)
		}
		return VerifyIntersections(c, arch, vertical, xs)
	})

	check("curve-curve disjoint", func() error {
		a, err := c.Bezier(0, 0, 30, 80, 70, 80, 100, 0)
		if err != nil {
			return err
		}
		b, err := c.Bezier(200, 0, 230, 80, 270, 80, 300, 0)
		if err != nil {
			return err
		}
		xs, err := IntersectCurves(c, a, b)
		if err != nil {
			return err
		}
		if len(xs) != 0 {
			return fmt.Errorf("disjoint curves report %d intersections", len(xs))
		}
		return nil
	})

	check("self-intersection loop", func() error {
		loop, err := c.Bezier(0, 0, 150, 100, -50, 100, 100, 0)
		if err != nil {
			return err
		}
		xs, err := SelfIntersections(c, loop)
		if err != nil {
			return err
		}
		if len(xs) == 0 {
			return fmt.Errorf("loop reports no self-intersection")
		}
		return VerifySelfIntersections(c, loop, xs)
	})

	check("path-path intersections", func() error {
		a, err := c.Line(0, 0, 100, 100)
		if err != nil {
			return err
		}
		b, err := c.Line(0, 100, 100, 0)
		if err != nil {
			return err
		}
		arch, err := c.Bezier(0, 50, 0, 150, 100, 150, 100, 50)
		if err != nil {
			return err
		}
		xs, err := PathIntersections(c, Path{a}, Path{b, arch})
		if err != nil {
			return err
		}
		if len(xs) == 0 {
			return fmt.Errorf("crossing paths report no intersections")
		}
		for _, x := range xs {
			if x.Seg1 != 0 {
				return fmt.Errorf("intersection tagged with segment %d on a one-segment path", x.Seg1)
			}
		}
		return nil
	})

	check("path self-intersections", func() error {
		loop, err := c.Bezier(0, 0, 150, 100, -50, 100, 100, 0)
		if err != nil {
			return err
		}
		tail, err := c.Line(100, 0, 200, 0)
		if err != nil {
			return err
		}
		xs, err := PathSelfIntersections(c, Path{loop, tail}, false)
		if err != nil {
			return err
		}
		if len(xs) == 0 {
			return fmt.Errorf("looping path reports no self-intersections")
		}
		return nil
	})

	check("arc-length family", func() error {
		arch, err := c.Bezier(0, 0, 0, 100, 100, 100, 100, 0)
		if err != nil {
			return err
		}
		return arch.VerifyArclen(c)
	})

	report.Pass = true
	for _, r := range report.Results {
		if !r.Pass() {
			report.Pass = false
			break
		}
	}
	return report
}
