package bezier

import (
	"errors"
	"testing"
)

func TestIntersectLinesDiagonals(t *testing.T) {
	c := testCtx
	a := curve(t, 0, 0, 100, 100)
	b := curve(t, 0, 100, 100, 0)
	xs, err := IntersectLines(c, a, b)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 1, len(xs))
	x := xs[0]
	near(t, c.half, x.T1, c.Tol)
	near(t, c.half, x.T2, c.Tol)
	nearPt(t, point(t, 50, 50), x.At, c.Tol)
	diff(t, StatusRefined, x.Status)
	if err := VerifyIntersections(c, a, b, xs); err != nil {
		t.Error(err)
	}
}

func TestIntersectLinesParallel(t *testing.T) {
	c := testCtx
	a := curve(t, 0, 0, 100, 0)
	b := curve(t, 0, 5, 100, 5)
	xs, err := IntersectLines(c, a, b)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 0, len(xs))
}

// Coincident overlapping lines are classified as parallel and report no
// intersection; the overlap set is deliberately not enumerated.
func TestIntersectLinesCoincident(t *testing.T) {
	c := testCtx
	a := curve(t, 0, 0, 100, 100)
	b := curve(t, 25, 25, 75, 75)
	xs, err := IntersectLines(c, a, b)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 0, len(xs))
}

func TestIntersectLinesOutsideSegments(t *testing.T) {
	c := testCtx
	// The infinite lines cross, the segments do not.
	a := curve(t, 0, 0, 10, 10)
	b := curve(t, 50, 0, 50, 5)
	xs, err := IntersectLines(c, a, b)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 0, len(xs))
}

func TestIntersectLinesValidation(t *testing.T) {
	three := curve(t, 0, 0, 50, 50, 100, 0)
	if _, err := IntersectLines(testCtx, three, curve(t, 0, 0, 1, 1)); !errors.Is(err, ErrBadInput) {
		t.Errorf("err = %v, want ErrBadInput", err)
	}
}

func TestIntersectCurveLineArch(t *testing.T) {
	c := testCtx
	arch := archCurve(t)
	line := curve(t, -10, 50, 110, 50)
	xs, err := IntersectCurveLine(c, arch, line)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 2, len(xs))
	// The arch's height is 300*t*(1-t); it crosses y=50 at
	// t = (1 +- sqrt(1/3))/2.
	near(t, dec(t, "0.21132486540518711774542560974902127217619912436493"), xs[0].T1, dec(t, "1e-25"))
	near(t, dec(t, "0.78867513459481288225457439025097872782380087563507"), xs[1].T1, dec(t, "1e-25"))
	for _, x := range xs {
		near(t, dec(t, "50"), x.At.Y, c.mul(c.Tol, c.VerifyFactor))
	}
	if err := VerifyIntersections(c, arch, line, xs); err != nil {
		t.Error(err)
	}
}

func TestIntersectCurveLineMiss(t *testing.T) {
	c := testCtx
	xs, err := IntersectCurveLine(c, archCurve(t), curve(t, -10, 90, 110, 90))
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 0, len(xs))
}

func TestIntersectCurveLineOffSegment(t *testing.T) {
	c := testCtx
	// The supporting line crosses the arch, the segment stops short of it.
	xs, err := IntersectCurveLine(c, archCurve(t), curve(t, -100, 50, -20, 50))
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 0, len(xs))
}

func TestIntersectCurvesArchAndVertical(t *testing.T) {
	c := testCtx
	arch := archCurve(t)
	vertical := curve(t, 50, -10, 50, 30, 50, 70, 50, 110)
	xs, err := IntersectCurves(c, arch, vertical)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 1, len(xs))
	x := xs[0]
	diff(t, StatusRefined, x.Status)
	nearPt(t, point(t, 50, 75), x.At, c.mul(c.Tol, c.VerifyFactor))
	near(t, c.half, x.T1, dec(t, "1e-20"))
	if err := VerifyIntersections(c, arch, vertical, xs); err != nil {
		t.Error(err)
	}
}

func TestIntersectCurvesDisjoint(t *testing.T) {
	c := testCtx
	a := curve(t, 0, 0, 30, 80, 70, 80, 100, 0)
	b := curve(t, 200, 0, 230, 80, 270, 80, 300, 0)
	xs, err := IntersectCurves(c, a, b)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 0, len(xs))
}

func TestIntersectCurvesDelegatesLines(t *testing.T) {
	c := testCtx
	xs, err := IntersectCurves(c, curve(t, 0, 0, 100, 100), curve(t, 0, 100, 100, 0))
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 1, len(xs))
	nearPt(t, point(t, 50, 50), xs[0].At, c.Tol)
}

func TestIntersectCurvesTwoCrossings(t *testing.T) {
	c := testCtx
	arch := archCurve(t)
	// A mirrored arch hanging from y=100 crosses the first one twice.
	hang := curve(t, 0, 100, 0, 0, 100, 0, 100, 100)
	xs, err := IntersectCurves(c, arch, hang)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 2, len(xs))
	if err := VerifyIntersections(c, arch, hang, xs); err != nil {
		t.Error(err)
	}
	// Symmetry puts the crossings at mirrored parameters.
	near(t, c.one, c.add(xs[0].T1, xs[1].T1), dec(t, "1e-20"))
}

func TestSelfIntersectionLoop(t *testing.T) {
	c := testCtx
	loop := loopCurve(t)
	xs, err := SelfIntersections(c, loop)
	if err != nil {
		t.Fatal(err)
	}
	if len(xs) == 0 {
		t.Fatal("loop reports no self-intersection")
	}
	for _, x := range xs {
		if x.T1.Cmp(x.T2) >= 0 {
			t.Errorf("t1=%s not below t2=%s", x.T1, x.T2)
		}
		if c.sub(x.T2, x.T1).Cmp(c.MinSeparation) < 0 {
			t.Errorf("separation %s below minimum", c.sub(x.T2, x.T1))
		}
		p1, err := loop.Eval(c, x.T1)
		if err != nil {
			t.Fatal(err)
		}
		p2, err := loop.Eval(c, x.T2)
		if err != nil {
			t.Fatal(err)
		}
		nearPt(t, p1, p2, c.mul(c.Tol, c.VerifyFactor))
	}
	if err := VerifySelfIntersections(c, loop, xs); err != nil {
		t.Error(err)
	}
}

func TestSelfIntersectionNone(t *testing.T) {
	c := testCtx
	// The arch does not cross itself.
	xs, err := SelfIntersections(c, archCurve(t))
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 0, len(xs))

	// Quadratics cannot self-intersect and answer empty without work.
	xs, err = SelfIntersections(c, curve(t, 0, 0, 50, 80, 100, 0))
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 0, len(xs))
}

func TestPathIntersections(t *testing.T) {
	c := testCtx
	p := Path{curve(t, 0, 0, 100, 100)}
	q := Path{curve(t, 0, 100, 100, 0), curve(t, 0, 50, 0, 150, 100, 150, 100, 50)}
	xs, err := PathIntersections(c, p, q)
	if err != nil {
		t.Fatal(err)
	}
	if len(xs) == 0 {
		t.Fatal("crossing paths report no intersections")
	}
	sawLine := false
	for _, x := range xs {
		diff(t, 0, x.Seg1)
		if x.Seg2 == 0 {
			sawLine = true
			nearPt(t, point(t, 50, 50), x.At, c.mul(c.Tol, c.VerifyFactor))
		}
	}
	if !sawLine {
		t.Error("missing the line-line crossing on segment pair (0, 0)")
	}
}

func TestPathSelfIntersections(t *testing.T) {
	c := testCtx
	// Segment 2 crosses segment 0; segments are otherwise straight.
	p := Path{
		curve(t, 0, 0, 100, 100),
		curve(t, 100, 100, 200, 0),
		curve(t, 200, 0, 0, 100),
	}
	xs, err := PathSelfIntersections(c, p, false)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 1, len(xs))
	diff(t, 0, xs[0].Seg1)
	diff(t, 2, xs[0].Seg2)
	// y = x meets the (200,0)-(0,100) chord at x = 200/3.
	want := point(t, "66.666666666666666666666666666666666666667", "66.666666666666666666666666666666666666667")
	nearPt(t, want, xs[0].At, dec(t, "1e-25"))
}

func TestPathSelfIntersectionsClosedAdjacency(t *testing.T) {
	c := testCtx
	// A closed square: every touching pair is adjacent, including the
	// first/last pair, so nothing is reported.
	square := Path{
		curve(t, 0, 0, 100, 0),
		curve(t, 100, 0, 100, 100),
		curve(t, 100, 100, 0, 100),
		curve(t, 0, 100, 0, 0),
	}
	xs, err := PathSelfIntersections(c, square, true)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 0, len(xs))

	// Treated as open, the first/last pair is checked and their shared
	// corner shows up.
	xs, err = PathSelfIntersections(c, square, false)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 1, len(xs))
	diff(t, 0, xs[0].Seg1)
	diff(t, 3, xs[0].Seg2)
	nearPt(t, point(t, 0, 0), xs[0].At, c.mul(c.Tol, c.VerifyFactor))
}

func TestIntersectionStatusString(t *testing.T) {
	diff(t, "refined", StatusRefined.String())
	diff(t, "unconverged", StatusUnconverged.String())
	diff(t, "window-limit", StatusWindowLimit.String())
}
