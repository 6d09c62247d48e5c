package bezier

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Bezier is a Bezier curve of arbitrary degree, represented by its ordered
// control points. The degree is the number of control points minus one; a
// two-point curve is a line segment. Curves are immutable values: every
// transformation returns a new curve.
type Bezier []Point

// Bezier builds a curve from a flat list of caller-supplied coordinate
// values (x0, y0, x1, y1, ...), accepting the same representations as
// [Context.Scalar].
func (c *Context) Bezier(coords ...any) (Bezier, error) {
	if len(coords)%2 != 0 {
		return nil, fmt.Errorf("%w: odd coordinate count %d", ErrBadInput, len(coords))
	}
	if len(coords) < 4 {
		return nil, ErrInvalidCurve
	}
	b := make(Bezier, 0, len(coords)/2)
	for i := 0; i < len(coords); i += 2 {
		pt, err := c.Pt(coords[i], coords[i+1])
		if err != nil {
			return nil, fmt.Errorf("control point %d: %w", i/2, err)
		}
		b = append(b, pt)
	}
	return b, nil
}

// Line builds a two-point curve.
func (c *Context) Line(x0, y0, x1, y1 any) (Bezier, error) {
	return c.Bezier(x0, y0, x1, y1)
}

func (b Bezier) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, pt := range b {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(pt.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Degree returns the curve's polynomial degree.
func (b Bezier) Degree() int {
	return len(b) - 1
}

func (b Bezier) valid() error {
	if len(b) < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidCurve, len(b))
	}
	for i, pt := range b {
		if pt.X == nil || pt.Y == nil {
			return fmt.Errorf("%w: control point %d has nil coordinate", ErrInvalidCurve, i)
		}
	}
	return nil
}

// Start returns the first control point, which the curve interpolates at t=0.
func (b Bezier) Start() Point {
	return b[0]
}

// End returns the last control point, which the curve interpolates at t=1.
func (b Bezier) End() Point {
	return b[len(b)-1]
}

// Eval evaluates the curve at parameter t using de Casteljau's algorithm.
// Parameters outside [0, 1] are clamped; iterative callers drift slightly
// out of range and expect the boundary value rather than an extrapolation.
func (b Bezier) Eval(c *Context, t *apd.Decimal) (Point, error) {
	if err := b.valid(); err != nil {
		return Point{}, err
	}
	return b.eval(c, c.clamp01(t)), nil
}

func (b Bezier) eval(c *Context, t *apd.Decimal) Point {
	work := make([]Point, len(b))
	copy(work, b)
	for level := len(work) - 1; level > 0; level-- {
		for i := 0; i < level; i++ {
			work[i] = work[i].Lerp(c, work[i+1], t)
		}
	}
	return work[0]
}

// Hodograph returns the derivative curve: one degree lower, with control
// points n*(P[i+1]-P[i]). The hodograph of a two-point curve is the
// constant derivative vector, returned as a repeated two-point curve so the
// result remains a valid Bezier.
func (b Bezier) Hodograph(c *Context) (Bezier, error) {
	if err := b.valid(); err != nil {
		return nil, err
	}
	return b.hodograph(c), nil
}

func (b Bezier) hodograph(c *Context) Bezier {
	n := c.num(int64(b.Degree()))
	if len(b) == 2 {
		d := b[1].Sub(c, b[0])
		return Bezier{d, d}
	}
	h := make(Bezier, len(b)-1)
	for i := range h {
		h[i] = b[i+1].Sub(c, b[i]).Mul(c, n)
	}
	return h
}

// Derivative evaluates the order-th derivative vector at t. Orders above
// the curve's degree return the zero vector; the degree-th derivative is the
// curve's constant top derivative.
func (b Bezier) Derivative(c *Context, t *apd.Decimal, order int) (Point, error) {
	if err := b.valid(); err != nil {
		return Point{}, err
	}
	if order < 1 {
		return Point{}, fmt.Errorf("%w: derivative order %d", ErrBadInput, order)
	}
	if order > b.Degree() {
		return Point{X: c.zero, Y: c.zero}, nil
	}
	h := b
	for k := 0; k < order; k++ {
		if len(h) == 2 {
			// Constant derivative from here on; one more differentiation
			// yields zero.
			d := h[1].Sub(c, h[0])
			if k == order-1 {
				return d, nil
			}
			return Point{X: c.zero, Y: c.zero}, nil
		}
		h = h.hodograph(c)
	}
	return h.eval(c, c.clamp01(t)), nil
}

// Tangent returns the unit tangent vector at t. At a cusp (vanishing first
// derivative) it fails with ErrZeroDerivative.
func (b Bezier) Tangent(c *Context, t *apd.Decimal) (Point, error) {
	d, err := b.Derivative(c, t, 1)
	if err != nil {
		return Point{}, err
	}
	return d.Normalize(c)
}

// Normal returns the unit normal vector at t, the tangent rotated by 90
// degrees. At a cusp it fails with ErrZeroDerivative.
func (b Bezier) Normal(c *Context, t *apd.Decimal) (Point, error) {
	tan, err := b.Tangent(c, t)
	if err != nil {
		return Point{}, err
	}
	return tan.Turn90(c), nil
}

// Curvature returns the signed curvature at t,
//
//	k = (x'y'' - y'x'') / (x'^2 + y'^2)^(3/2)
//
// The sign indicates turning direction. At a cusp the curvature is reported
// as zero rather than dividing by a vanishing speed; callers must not divide
// by the result without checking it.
func (b Bezier) Curvature(c *Context, t *apd.Decimal) (*apd.Decimal, error) {
	d1, err := b.Derivative(c, t, 1)
	if err != nil {
		return nil, err
	}
	d2, err := b.Derivative(c, t, 2)
	if err != nil {
		return nil, err
	}
	speed2 := d1.Hypot2(c)
	if c.sqrt(speed2).Cmp(c.CuspThreshold) < 0 {
		return c.zero, nil
	}
	num := d1.Cross(c, d2)
	den := c.mul(speed2, c.sqrt(speed2))
	return c.quo(num, den), nil
}

// Split subdivides the curve at t into two curves of the same degree using
// de Casteljau's algorithm. The left curve ends and the right curve starts
// at the exact point Eval(t).
func (b Bezier) Split(c *Context, t *apd.Decimal) (Bezier, Bezier, error) {
	if err := b.valid(); err != nil {
		return nil, nil, err
	}
	if t.Sign() < 0 || t.Cmp(c.one) > 0 {
		return nil, nil, fmt.Errorf("%w: split at %s", ErrParamRange, t)
	}
	left, right := b.split(c, t)
	return left, right, nil
}

func (b Bezier) split(c *Context, t *apd.Decimal) (Bezier, Bezier) {
	work := make([]Point, len(b))
	copy(work, b)
	left := make(Bezier, len(b))
	right := make(Bezier, len(b))
	left[0] = work[0]
	right[len(b)-1] = work[len(b)-1]
	for level := len(work) - 1; level > 0; level-- {
		for i := 0; i < level; i++ {
			work[i] = work[i].Lerp(c, work[i+1], t)
		}
		left[len(b)-level] = work[0]
		right[level-1] = work[level-1]
	}
	return left, right
}

// Crop extracts the sub-curve between t0 and t1, 0 <= t0 < t1 <= 1. The
// result's endpoints equal Eval(t0) and Eval(t1) exactly.
func (b Bezier) Crop(c *Context, t0, t1 *apd.Decimal) (Bezier, error) {
	if err := b.valid(); err != nil {
		return nil, err
	}
	if t0.Sign() < 0 || t1.Cmp(c.one) > 0 {
		return nil, fmt.Errorf("%w: crop [%s, %s]", ErrParamRange, t0, t1)
	}
	if t0.Cmp(t1) >= 0 {
		return nil, fmt.Errorf("%w: crop [%s, %s]", ErrParamRange, t0, t1)
	}
	// Split at t1, keep the left part, then split that at t0 rescaled into
	// the left part's parameter space. t1 > t0 >= 0, so t1 > 0 and the
	// rescaling denominator never vanishes.
	left, _ := b.split(c, t1)
	if t0.IsZero() {
		return left, nil
	}
	_, right := left.split(c, c.quo(t0, t1))
	return right, nil
}

// ChordLength returns the distance between the curve's endpoints. It is a
// lower bound for the arc length.
func (b Bezier) ChordLength(c *Context) (*apd.Decimal, error) {
	if err := b.valid(); err != nil {
		return nil, err
	}
	return b.Start().Distance(c, b.End()), nil
}

// PolygonLength returns the total length of the control polygon. It is an
// upper bound for the arc length.
func (b Bezier) PolygonLength(c *Context) (*apd.Decimal, error) {
	if err := b.valid(); err != nil {
		return nil, err
	}
	sum := c.zero
	for i := 0; i+1 < len(b); i++ {
		sum = c.add(sum, b[i].Distance(c, b[i+1]))
	}
	return sum, nil
}

// Deviation returns the maximum distance between the curve, sampled at the
// given number of interior parameters, and the chord connecting its
// endpoints. A curve with collinear control points reports zero deviation.
// For degenerate chords (coincident endpoints) the distance from the start
// point is used.
func (b Bezier) Deviation(c *Context, samples int) (*apd.Decimal, error) {
	if err := b.valid(); err != nil {
		return nil, err
	}
	if samples < 1 {
		return nil, fmt.Errorf("%w: %d samples", ErrBadInput, samples)
	}
	dir := b.End().Sub(c, b.Start())
	chord := dir.Hypot(c)
	degenerate := chord.Cmp(c.CuspThreshold) < 0
	worst := c.zero
	step := c.quo(c.one, c.num(int64(samples)+1))
	t := c.zero
	for i := 1; i <= samples; i++ {
		t = c.add(t, step)
		pt := b.eval(c, t)
		var d *apd.Decimal
		if degenerate {
			d = pt.Distance(c, b.Start())
		} else {
			d = c.abs(c.quo(dir.Cross(c, pt.Sub(c, b.Start())), chord))
		}
		worst = c.max(worst, d)
	}
	return worst, nil
}

// IsStraight reports whether the curve deviates from its chord by no more
// than tol at any sampled interior parameter.
func (b Bezier) IsStraight(c *Context, tol *apd.Decimal) (bool, error) {
	dev, err := b.Deviation(c, c.LineSamples*b.Degree())
	if err != nil {
		return false, err
	}
	return dev.Cmp(tol) <= 0, nil
}

// Elevate returns the same curve expressed with one more control point.
func (b Bezier) Elevate(c *Context) (Bezier, error) {
	if err := b.valid(); err != nil {
		return nil, err
	}
	n := int64(len(b))
	out := make(Bezier, len(b)+1)
	out[0] = b[0]
	out[len(b)] = b[len(b)-1]
	for i := int64(1); i < n; i++ {
		w := c.quo(c.num(i), c.num(n))
		out[i] = b[i].Lerp(c, b[i-1], w)
	}
	return out, nil
}
