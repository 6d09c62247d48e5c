package bezier

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Point is an immutable pair of arbitrary-precision coordinates. It doubles
// as a 2D vector for derivative and direction values.
type Point struct {
	X *apd.Decimal
	Y *apd.Decimal
}

// Pt builds a point from two caller-supplied values, accepting the same
// representations as [Context.Scalar].
func (c *Context) Pt(x, y any) (Point, error) {
	xs, err := c.Scalar(x)
	if err != nil {
		return Point{}, fmt.Errorf("x: %w", err)
	}
	ys, err := c.Scalar(y)
	if err != nil {
		return Point{}, fmt.Errorf("y: %w", err)
	}
	return Point{X: xs, Y: ys}, nil
}

func (pt Point) String() string {
	return fmt.Sprintf("(%s, %s)", pt.X, pt.Y)
}

// Splat returns the coordinates as float64 display values.
func (pt Point) Splat() (float64, float64) {
	return Float64(pt.X), Float64(pt.Y)
}

// Add computes pt + o, treating o as a vector.
func (pt Point) Add(c *Context, o Point) Point {
	return Point{X: c.add(pt.X, o.X), Y: c.add(pt.Y, o.Y)}
}

// Sub computes pt - o.
func (pt Point) Sub(c *Context, o Point) Point {
	return Point{X: c.sub(pt.X, o.X), Y: c.sub(pt.Y, o.Y)}
}

// Mul scales both coordinates by k.
func (pt Point) Mul(c *Context, k *apd.Decimal) Point {
	return Point{X: c.mul(pt.X, k), Y: c.mul(pt.Y, k)}
}

// Lerp linearly interpolates between two points.
func (pt Point) Lerp(c *Context, o Point, t *apd.Decimal) Point {
	return Point{X: c.lerp(pt.X, o.X, t), Y: c.lerp(pt.Y, o.Y, t)}
}

// Midpoint returns the midpoint of two points.
func (pt Point) Midpoint(c *Context, o Point) Point {
	return pt.Lerp(c, o, c.half)
}

// Dot returns the dot product of pt and o as vectors.
func (pt Point) Dot(c *Context, o Point) *apd.Decimal {
	return c.add(c.mul(pt.X, o.X), c.mul(pt.Y, o.Y))
}

// Cross returns the 2D cross product (signed area of the parallelogram
// spanned by pt and o).
func (pt Point) Cross(c *Context, o Point) *apd.Decimal {
	return c.sub(c.mul(pt.X, o.Y), c.mul(pt.Y, o.X))
}

// Hypot returns the euclidean magnitude of pt as a vector.
func (pt Point) Hypot(c *Context) *apd.Decimal {
	return c.hypot(pt.X, pt.Y)
}

// Hypot2 returns the squared magnitude of pt as a vector.
func (pt Point) Hypot2(c *Context) *apd.Decimal {
	return pt.Dot(c, pt)
}

// Distance returns the euclidean distance between two points.
func (pt Point) Distance(c *Context, o Point) *apd.Decimal {
	return pt.Sub(c, o).Hypot(c)
}

// Turn90 rotates pt as a vector by 90 degrees counterclockwise in a
// y-up coordinate system.
func (pt Point) Turn90(c *Context) Point {
	return Point{X: c.neg(pt.Y), Y: pt.X}
}

// Normalize returns the unit vector in the direction of pt. It fails with
// ErrZeroDerivative when the magnitude is below the cusp threshold.
func (pt Point) Normalize(c *Context) (Point, error) {
	h := pt.Hypot(c)
	if h.Cmp(c.CuspThreshold) < 0 {
		return Point{}, ErrZeroDerivative
	}
	return Point{X: c.quo(pt.X, h), Y: c.quo(pt.Y, h)}, nil
}
