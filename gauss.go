package bezier

import (
	"math"

	"github.com/cockroachdb/apd/v3"
)

// gaussNode is one abscissa/weight pair of a Gauss-Legendre rule on [-1, 1].
type gaussNode struct {
	x *apd.Decimal
	w *apd.Decimal
}

// legendreRule synthesizes the n-point Gauss-Legendre nodes and weights at
// the context's precision. Published coefficient tables stop far short of 80
// digits, so each node is produced by Newton iteration on the Legendre
// recurrence, seeded with the standard float64 estimate
// cos(pi*(i-1/4)/(n+1/2)). Newton doubles the correct digits per step, so a
// 53-bit seed reaches full decimal precision in a handful of iterations.
func legendreRule(dec *apd.Context, n int) []gaussNode {
	// Guard digits keep the final rounded nodes correct to the working
	// precision.
	work := dec.WithPrecision(dec.Precision + 10)
	one := apd.New(1, 0)
	two := apd.New(2, 0)
	// Stop once the Newton step is far below the working precision.
	eps := apd.New(1, -int32(work.Precision))

	nodes := make([]gaussNode, n)
	for i := 1; i <= n; i++ {
		seed := math.Cos(math.Pi * (float64(i) - 0.25) / (float64(n) + 0.5))
		x := new(apd.Decimal)
		if _, err := x.SetFloat64(seed); err != nil {
			panic("legendre seed: " + err.Error())
		}
		var deriv *apd.Decimal
		for iter := 0; iter < 64; iter++ {
			p, dp := legendreEval(work, n, x)
			deriv = dp
			step := new(apd.Decimal)
			work.Quo(step, p, dp)
			work.Sub(x, x, step)
			if new(apd.Decimal).Abs(step).Cmp(eps) <= 0 {
				break
			}
		}
		// w = 2 / ((1-x^2) * P'(x)^2)
		x2 := new(apd.Decimal)
		work.Mul(x2, x, x)
		den := new(apd.Decimal)
		work.Sub(den, one, x2)
		dp2 := new(apd.Decimal)
		work.Mul(dp2, deriv, deriv)
		work.Mul(den, den, dp2)
		w := new(apd.Decimal)
		work.Quo(w, two, den)

		xr := new(apd.Decimal)
		dec.Round(xr, x)
		wr := new(apd.Decimal)
		dec.Round(wr, w)
		nodes[i-1] = gaussNode{x: xr, w: wr}
	}
	return nodes
}

// legendreEval returns P_n(x) and P'_n(x) via the three-term recurrence
//
//	k*P_k = (2k-1)*x*P_{k-1} - (k-1)*P_{k-2}
//
// and the derivative identity P'_n = n*(x*P_n - P_{n-1}) / (x^2 - 1).
func legendreEval(work *apd.Context, n int, x *apd.Decimal) (p, dp *apd.Decimal) {
	pPrev := apd.New(1, 0) // P_0
	pCur := new(apd.Decimal).Set(x)
	if n == 0 {
		return pPrev, apd.New(0, 0)
	}
	tmp := new(apd.Decimal)
	for k := 2; k <= n; k++ {
		// (2k-1) * x * P_{k-1}
		a := new(apd.Decimal)
		work.Mul(a, x, pCur)
		work.Mul(a, a, apd.New(int64(2*k-1), 0))
		// (k-1) * P_{k-2}
		work.Mul(tmp, pPrev, apd.New(int64(k-1), 0))
		work.Sub(a, a, tmp)
		work.Quo(a, a, apd.New(int64(k), 0))
		pPrev = pCur
		pCur = a
	}
	// P'_n(x); the nodes lie strictly inside (-1, 1), so x^2-1 is nonzero.
	num := new(apd.Decimal)
	work.Mul(num, x, pCur)
	work.Sub(num, num, pPrev)
	work.Mul(num, num, apd.New(int64(n), 0))
	den := new(apd.Decimal)
	work.Mul(den, x, x)
	work.Sub(den, den, apd.New(1, 0))
	dp = new(apd.Decimal)
	work.Quo(dp, num, den)
	return pCur, dp
}
