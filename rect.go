package bezier

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Rect is an axis-aligned rectangle with arbitrary-precision bounds.
// X0 <= X1 and Y0 <= Y1 hold for every Rect this package constructs.
type Rect struct {
	X0, Y0, X1, Y1 *apd.Decimal
}

// NewRectFromPoints returns the smallest rectangle containing both points.
func NewRectFromPoints(c *Context, p0, p1 Point) Rect {
	return Rect{
		X0: c.min(p0.X, p1.X),
		Y0: c.min(p0.Y, p1.Y),
		X1: c.max(p0.X, p1.X),
		Y1: c.max(p0.Y, p1.Y),
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%s, %s, %s, %s]", r.X0, r.Y0, r.X1, r.Y1)
}

// UnionPoint extends the rectangle to contain a point.
func (r Rect) UnionPoint(c *Context, pt Point) Rect {
	return Rect{
		X0: c.min(r.X0, pt.X),
		Y0: c.min(r.Y0, pt.Y),
		X1: c.max(r.X1, pt.X),
		Y1: c.max(r.Y1, pt.Y),
	}
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rect) Union(c *Context, o Rect) Rect {
	return Rect{
		X0: c.min(r.X0, o.X0),
		Y0: c.min(r.Y0, o.Y0),
		X1: c.max(r.X1, o.X1),
		Y1: c.max(r.Y1, o.Y1),
	}
}

// Overlaps reports whether the two rectangles share any point, with each
// rectangle grown by margin on every side. A positive margin makes the test
// conservative against round-off in the bounds themselves.
func (r Rect) Overlaps(c *Context, o Rect, margin *apd.Decimal) bool {
	if c.add(r.X1, margin).Cmp(c.sub(o.X0, margin)) < 0 {
		return false
	}
	if c.add(o.X1, margin).Cmp(c.sub(r.X0, margin)) < 0 {
		return false
	}
	if c.add(r.Y1, margin).Cmp(c.sub(o.Y0, margin)) < 0 {
		return false
	}
	if c.add(o.Y1, margin).Cmp(c.sub(r.Y0, margin)) < 0 {
		return false
	}
	return true
}

// Width returns X1 - X0.
func (r Rect) Width(c *Context) *apd.Decimal {
	return c.sub(r.X1, r.X0)
}

// Height returns Y1 - Y0.
func (r Rect) Height(c *Context) *apd.Decimal {
	return c.sub(r.Y1, r.Y0)
}
