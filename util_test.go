package bezier

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/go-cmp/cmp"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

// testCtx is shared by all tests. It is read-only after construction, so
// parallel tests can use it freely.
var testCtx = DefaultContext()

func dec(t *testing.T, s string) *apd.Decimal {
	t.Helper()
	d, err := testCtx.Scalar(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func curve(t *testing.T, coords ...any) Bezier {
	t.Helper()
	b, err := testCtx.Bezier(coords...)
	if err != nil {
		t.Fatalf("bad curve %v: %v", coords, err)
	}
	return b
}

func point(t *testing.T, x, y any) Point {
	t.Helper()
	pt, err := testCtx.Pt(x, y)
	if err != nil {
		t.Fatalf("bad point (%v, %v): %v", x, y, err)
	}
	return pt
}

// near fails unless |want - got| <= tol.
func near(t *testing.T, want, got, tol *apd.Decimal) {
	t.Helper()
	d := testCtx.abs(testCtx.sub(want, got))
	if d.Cmp(tol) > 0 {
		t.Errorf("got %s, want %s (off by %s, tolerance %s)", got, want, d, tol)
	}
}

// nearPt fails unless both coordinates match within tol.
func nearPt(t *testing.T, want, got Point, tol *apd.Decimal) {
	t.Helper()
	if d := want.Distance(testCtx, got); d.Cmp(tol) > 0 {
		t.Errorf("got %s, want %s (%s apart, tolerance %s)", got, want, d, tol)
	}
}
