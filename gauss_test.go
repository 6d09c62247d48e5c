package bezier

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
)

func TestLegendreWeightsSum(t *testing.T) {
	c := testCtx
	// Weights of any Gauss-Legendre rule sum to the interval width 2.
	for _, rule := range [][]gaussNode{c.gaussLo, c.gaussHi} {
		sum := c.zero
		for _, n := range rule {
			sum = c.add(sum, n.w)
		}
		near(t, c.two, sum, dec(t, "1e-75"))
	}
}

func TestLegendreSymmetry(t *testing.T) {
	c := testCtx
	for _, rule := range [][]gaussNode{c.gaussLo, c.gaussHi} {
		n := len(rule)
		for i := 0; i < n/2; i++ {
			near(t, c.neg(rule[i].x), rule[n-1-i].x, dec(t, "1e-75"))
			near(t, rule[i].w, rule[n-1-i].w, dec(t, "1e-75"))
		}
	}
}

func TestLegendreExactForPolynomials(t *testing.T) {
	c := testCtx
	// An n-point rule integrates polynomials up to degree 2n-1 exactly:
	// check x^8 with the 5-point rule and x^18 with the 10-point rule.
	integrate := func(rule []gaussNode, power int) *apd.Decimal {
		sum := c.zero
		for _, node := range rule {
			v := c.one
			for p := 0; p < power; p++ {
				v = c.mul(v, node.x)
			}
			sum = c.add(sum, c.mul(node.w, v))
		}
		return sum
	}
	// Integral of x^(2k) over [-1, 1] is 2/(2k+1).
	near(t, c.quo(c.two, c.num(9)), integrate(c.gaussLo, 8), dec(t, "1e-70"))
	near(t, c.quo(c.two, c.num(19)), integrate(c.gaussHi, 18), dec(t, "1e-70"))
	// Odd powers vanish by symmetry.
	near(t, c.zero, integrate(c.gaussLo, 7), dec(t, "1e-70"))
}

func TestLegendreNodeCount(t *testing.T) {
	diff(t, 5, len(testCtx.gaussLo))
	diff(t, 10, len(testCtx.gaussHi))
}

func TestLegendreKnownNodes(t *testing.T) {
	// Float64 projections of the synthesized 5-point nodes must match the
	// published table values. The cosine seeds run from i=1 upward, so the
	// nodes come out in descending order.
	want := []float64{
		0.906179845938664,
		0.5384693101056831,
		0,
		-0.5384693101056831,
		-0.906179845938664,
	}
	for i, node := range testCtx.gaussLo {
		got := Float64(node.x)
		if d := got - want[i]; d > 1e-14 || d < -1e-14 {
			t.Errorf("node %d = %v, want %v", i, got, want[i])
		}
	}
}
