package bezier

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Path is an ordered sequence of Bezier segments, implicitly joined
// end-to-start. A closed path additionally treats its last and first
// segments as adjacent.
type Path []Bezier

func (p Path) valid() error {
	if len(p) == 0 {
		return ErrEmptyPath
	}
	for i, seg := range p {
		if err := seg.valid(); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return nil
}

// Arclen returns the total arc length of the path, the sum of its segments'
// arc lengths.
func (p Path) Arclen(c *Context) (*apd.Decimal, error) {
	if err := p.valid(); err != nil {
		return nil, err
	}
	sum := c.zero
	for i, seg := range p {
		l, err := seg.Arclen(c)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		sum = c.add(sum, l)
	}
	return sum, nil
}

// PathPosition locates a distance along a path: the segment holding it, the
// local parameter within that segment, and the total arc length accumulated
// up to that point.
type PathPosition struct {
	Segment int
	T       *apd.Decimal
	Length  *apd.Decimal
	// Inverse carries the per-segment solve that produced T, including its
	// convergence flag.
	Inverse InverseResult
}

// SolveForArclen walks the path's segments accumulating arc length until the
// target falls inside the current segment, then solves the local inverse
// problem there. A target at or beyond the total path length answers the
// last segment at t=1.
func (p Path) SolveForArclen(c *Context, target any) (PathPosition, error) {
	if err := p.valid(); err != nil {
		return PathPosition{}, err
	}
	goal, err := c.Scalar(target)
	if err != nil {
		return PathPosition{}, err
	}
	if goal.Sign() < 0 {
		return PathPosition{}, fmt.Errorf("%w: %s", ErrNegativeLength, goal)
	}
	acc := c.zero
	for i, seg := range p {
		segLen, err := seg.Arclen(c)
		if err != nil {
			return PathPosition{}, fmt.Errorf("segment %d: %w", i, err)
		}
		end := c.add(acc, segLen)
		if goal.Cmp(end) <= 0 || i == len(p)-1 {
			local := c.sub(goal, acc)
			if local.Cmp(segLen) > 0 {
				// Target beyond the path's total length.
				return PathPosition{
					Segment: i,
					T:       c.one,
					Length:  end,
					Inverse: InverseResult{T: c.one, Length: segLen, Residual: c.abs(c.sub(local, segLen)), Converged: true},
				}, nil
			}
			res, err := seg.SolveForArclen(c, local)
			if err != nil {
				return PathPosition{}, fmt.Errorf("segment %d: %w", i, err)
			}
			return PathPosition{
				Segment: i,
				T:       res.T,
				Length:  c.add(acc, res.Length),
				Inverse: res,
			}, nil
		}
		acc = end
	}
	// Unreachable: the loop always returns on the last segment.
	return PathPosition{}, fmt.Errorf("%w: empty path", ErrEmptyPath)
}
