package bezier

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/integrate/quad"
)

func TestArclenLine(t *testing.T) {
	c := testCtx
	got, err := curve(t, 0, 0, 3, 4).Arclen(c)
	if err != nil {
		t.Fatal(err)
	}
	near(t, dec(t, "5"), got, c.Tol)
}

func TestArclenSwapsReversedRange(t *testing.T) {
	c := testCtx
	b := archCurve(t)
	fwd, err := b.ArclenBetween(c, dec(t, "0.2"), dec(t, "0.8"))
	if err != nil {
		t.Fatal(err)
	}
	rev, err := b.ArclenBetween(c, dec(t, "0.8"), dec(t, "0.2"))
	if err != nil {
		t.Fatal(err)
	}
	near(t, fwd, rev, c.Tol)
	if fwd.Sign() <= 0 {
		t.Fatalf("arc length %s not positive", fwd)
	}
}

func TestArclenBounds(t *testing.T) {
	for _, b := range []Bezier{archCurve(t), loopCurve(t), curve(t, 0, 0, 50, 80, 100, 0)} {
		if err := b.VerifyArclenBounds(testCtx); err != nil {
			t.Error(err)
		}
	}
}

func TestArclenAdditivity(t *testing.T) {
	for _, s := range []string{"0.1", "0.25", "0.5", "0.642", "0.9"} {
		if err := archCurve(t).VerifyArclenAdditivity(testCtx, dec(t, s)); err != nil {
			t.Error(err)
		}
	}
}

func TestArclenChordSum(t *testing.T) {
	c := testCtx
	total, err := archCurve(t).Arclen(c)
	if err != nil {
		t.Fatal(err)
	}
	if err := archCurve(t).VerifyArclenChordSum(c, 2000, c.quo(total, c.num(1000))); err != nil {
		t.Error(err)
	}
}

// Cross-check the decimal quadrature against an independent float64
// integration of the same speed function.
func TestArclenAgainstFloat64Quadrature(t *testing.T) {
	c := testCtx
	arch := archCurve(t)
	speed := func(u float64) float64 {
		// Hodograph of the arch: x' = 600*u*(1-u), y' = 300*(1-2*u).
		dx := 600 * u * (1 - u)
		dy := 300 * (1 - 2*u)
		return math.Hypot(dx, dy)
	}
	want := quad.Fixed(speed, 0, 1, 60, quad.Legendre{}, 0)
	got, err := arch.Arclen(c)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, want, Float64(got), cmpopts.EquateApprox(0, 1e-9))
}

func TestSolveForArclen(t *testing.T) {
	c := testCtx
	b := archCurve(t)
	total, err := b.Arclen(c)
	if err != nil {
		t.Fatal(err)
	}

	res, err := b.SolveForArclen(c, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged || res.Iterations != 0 {
		t.Errorf("zero target: %+v", res)
	}
	near(t, c.zero, res.T, c.zero)

	res, err = b.SolveForArclen(c, c.add(total, c.one))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged {
		t.Errorf("overshoot target did not converge: %+v", res)
	}
	near(t, c.one, res.T, c.zero)

	for _, s := range []string{"0.1", "0.37", "0.5", "0.82"} {
		goal := c.mul(total, dec(t, s))
		res, err := b.SolveForArclen(c, goal)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Converged {
			t.Fatalf("target %s did not converge after %d iterations (residual %s)", goal, res.Iterations, res.Residual)
		}
		back, err := b.ArclenBetween(c, c.zero, res.T)
		if err != nil {
			t.Fatal(err)
		}
		near(t, goal, back, c.mul(c.Tol, c.VerifyFactor))
	}
}

func TestSolveForArclenNegative(t *testing.T) {
	if _, err := archCurve(t).SolveForArclen(testCtx, -1); !errors.Is(err, ErrNegativeLength) {
		t.Errorf("err = %v, want ErrNegativeLength", err)
	}
}

// A cusp halves the speed to zero mid-curve; the solver must still land on
// the symmetric midpoint.
func TestSolveForArclenThroughCusp(t *testing.T) {
	c := testCtx
	cusp := curve(t, 0, 0, 100, 100, 100, 0, 0, 100)
	total, err := cusp.Arclen(c)
	if err != nil {
		t.Fatal(err)
	}
	res, err := cusp.SolveForArclen(c, c.mul(total, c.half))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged {
		t.Fatalf("cusp solve did not converge: %+v", res)
	}
	near(t, c.half, res.T, dec(t, "1e-20"))
}

func TestInverseRoundTripFamily(t *testing.T) {
	c := testCtx
	b := loopCurve(t)
	total, err := b.Arclen(c)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"0.2", "0.5", "0.8"} {
		if err := b.VerifyInverseRoundTrip(c, c.mul(total, dec(t, s))); err != nil {
			t.Error(err)
		}
	}
}

func TestArclenTable(t *testing.T) {
	c := testCtx
	b := archCurve(t)
	tab, err := b.NewArclenTable(c, 21)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, 21, tab.Len())
	if err := tab.Verify(c); err != nil {
		t.Fatal(err)
	}

	t0, l0 := tab.At(0)
	near(t, c.zero, t0, c.zero)
	near(t, c.zero, l0, c.zero)
	tn, ln := tab.At(tab.Len() - 1)
	near(t, c.one, tn, c.zero)
	near(t, tab.Total(), ln, c.zero)

	// Approximate inversion brackets the exact answer.
	half := c.mul(tab.Total(), c.half)
	approx := tab.T(c, half)
	exact, err := b.SolveForArclen(c, half)
	if err != nil {
		t.Fatal(err)
	}
	if !exact.Converged {
		t.Fatalf("exact solve did not converge: %+v", exact)
	}
	near(t, exact.T, approx, dec(t, "0.01"))

	// The refined lookup matches the exact solver.
	refined, err := tab.Solve(c, half)
	if err != nil {
		t.Fatal(err)
	}
	if !refined.Converged {
		t.Fatalf("refined solve did not converge: %+v", refined)
	}
	near(t, exact.T, refined.T, c.mul(c.Tol, c.VerifyFactor))

	// Out-of-range lookups clamp.
	near(t, c.zero, tab.T(c, dec(t, "-3")), c.zero)
	near(t, c.one, tab.T(c, c.add(tab.Total(), c.one)), c.zero)
}

func TestArclenTableZeroSpeedSpans(t *testing.T) {
	c := testCtx
	// A degenerate point-like curve has zero speed everywhere; every
	// cumulative length ties at zero and Verify must accept the table.
	b := curve(t, 7, 7, 7, 7)
	tab, err := b.NewArclenTable(c, 5)
	if err != nil {
		t.Fatal(err)
	}
	if err := tab.Verify(c); err != nil {
		t.Errorf("zero-length table rejected: %v", err)
	}
	near(t, c.zero, tab.Total(), c.zero)
}

func TestArclenTableValidation(t *testing.T) {
	if _, err := archCurve(t).NewArclenTable(testCtx, 1); !errors.Is(err, ErrBadInput) {
		t.Errorf("err = %v, want ErrBadInput", err)
	}
}

func TestVerifyArclenFamily(t *testing.T) {
	if err := archCurve(t).VerifyArclen(testCtx); err != nil {
		t.Error(err)
	}
}
