package bezier

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// DefaultPrecision is the default number of significant decimal digits used
// for all geometry arithmetic.
const DefaultPrecision = 80

// Sentinel errors returned by entry-point validation. Failures are reported
// immediately; no operation in this package produces a silently wrong result
// for malformed input.
var (
	// ErrInvalidCurve indicates a curve with fewer than two control points.
	ErrInvalidCurve = fmt.Errorf("curve needs at least two control points")
	// ErrEmptyPath indicates a path with no segments.
	ErrEmptyPath = fmt.Errorf("path has no segments")
	// ErrNegativeLength indicates a negative target arc length.
	ErrNegativeLength = fmt.Errorf("target arc length is negative")
	// ErrParamRange indicates a required parameter outside [0, 1].
	ErrParamRange = fmt.Errorf("parameter outside [0, 1]")
	// ErrBadInput indicates a value that cannot be converted to a scalar.
	ErrBadInput = fmt.Errorf("unsupported scalar input")
	// ErrZeroDerivative indicates a cusp, where tangent and normal are
	// undefined.
	ErrZeroDerivative = fmt.Errorf("first derivative is zero")
)

// Context carries the arithmetic precision and the tuning constants shared by
// all operations in this package. It replaces any process-wide precision
// switch: every entry point takes the Context explicitly, so concurrent calls
// with different configurations never interfere.
//
// A Context is read-only after construction. Override exported fields between
// NewContext and first use; sharing a Context between goroutines afterwards
// is safe.
//
// Tolerances and precision must be chosen consistently: a Tol dramatically
// below 10^(2-precision) cannot be met by the arithmetic and drives every
// adaptive routine to its depth bound. The defaults are tuned together for
// 80 significant digits.
type Context struct {
	// Tol is the general convergence tolerance for quadrature, root
	// refinement and verification.
	Tol *apd.Decimal
	// WindowTolerance is the parameter-window width below which curve-curve
	// subdivision hands over to Newton refinement.
	WindowTolerance *apd.Decimal
	// ParallelThreshold is the determinant magnitude below which two lines
	// are reported as parallel.
	ParallelThreshold *apd.Decimal
	// JacobianThreshold is the determinant magnitude below which a 2-variable
	// Newton step is considered singular.
	JacobianThreshold *apd.Decimal
	// CuspThreshold is the speed magnitude below which a point is treated as
	// a cusp.
	CuspThreshold *apd.Decimal
	// MinSeparation is the minimum parameter distance between the two sides
	// of a reported self-intersection.
	MinSeparation *apd.Decimal
	// DedupTolerance is the parameter-pair distance below which two
	// intersection records are considered duplicates.
	DedupTolerance *apd.Decimal
	// VerifyFactor widens Tol for point-coincidence verification.
	VerifyFactor *apd.Decimal

	// QuadMinDepth and QuadMaxDepth bound interval bisection in the adaptive
	// arc-length quadrature.
	QuadMinDepth int
	QuadMaxDepth int
	// SubdivMaxDepth bounds curve-pair subdivision in curve-curve
	// intersection.
	SubdivMaxDepth int
	// MaxIterations bounds Newton and bisection refinement loops.
	MaxIterations int
	// TableSize is the default sample count for arc-length lookup tables.
	TableSize int
	// LineSamples is the sample count per curve degree for curve-line
	// intersection scanning.
	LineSamples int

	dec *apd.Context

	// Precomputed Gauss-Legendre rules on [-1, 1].
	gaussLo []gaussNode
	gaussHi []gaussNode

	zero, one, two, half *apd.Decimal
}

// NewContext returns a Context configured for the given number of significant
// decimal digits, with all tuning constants at their defaults. A zero
// precision selects DefaultPrecision. Constructing a Context synthesizes the
// Gauss-Legendre quadrature rules at that precision, so contexts are meant to
// be built once and reused.
func NewContext(precision uint32) *Context {
	if precision == 0 {
		precision = DefaultPrecision
	}
	dec := apd.BaseContext.WithPrecision(precision)
	c := &Context{
		Tol:               mustParse("1e-30"),
		WindowTolerance:   mustParse("1e-6"),
		ParallelThreshold: mustParse("1e-60"),
		JacobianThreshold: mustParse("1e-50"),
		CuspThreshold:     mustParse("1e-50"),
		MinSeparation:     mustParse("0.01"),
		DedupTolerance:    mustParse("1e-12"),
		VerifyFactor:      mustParse("100"),
		QuadMinDepth:      2,
		QuadMaxDepth:      40,
		SubdivMaxDepth:    64,
		MaxIterations:     64,
		TableSize:         100,
		LineSamples:       25,
		dec:               dec,
		zero:              apd.New(0, 0),
		one:               apd.New(1, 0),
		two:               apd.New(2, 0),
		half:              mustParse("0.5"),
	}
	c.gaussLo = legendreRule(dec, 5)
	c.gaussHi = legendreRule(dec, 10)
	return c
}

// DefaultContext returns a Context with DefaultPrecision significant digits.
func DefaultContext() *Context {
	return NewContext(DefaultPrecision)
}

// Precision reports the number of significant digits the Context computes
// with.
func (c *Context) Precision() uint32 {
	return c.dec.Precision
}

// Scalar normalizes a caller-supplied value to an arbitrary-precision
// decimal. Accepted representations: *apd.Decimal (used as-is), string (for
// values needing more precision than a float literal can carry), float64,
// float32, int, int32 and int64. Anything else fails with ErrBadInput.
func (c *Context) Scalar(v any) (*apd.Decimal, error) {
	switch v := v.(type) {
	case *apd.Decimal:
		if v == nil {
			return nil, fmt.Errorf("%w: nil decimal", ErrBadInput)
		}
		return v, nil
	case string:
		d, _, err := apd.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrBadInput, v, err)
		}
		return d, nil
	case float64:
		d := new(apd.Decimal)
		if _, err := d.SetFloat64(v); err != nil {
			return nil, fmt.Errorf("%w: %v: %v", ErrBadInput, v, err)
		}
		return d, nil
	case float32:
		return c.Scalar(float64(v))
	case int:
		return apd.New(int64(v), 0), nil
	case int32:
		return apd.New(int64(v), 0), nil
	case int64:
		return apd.New(v, 0), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrBadInput, v)
	}
}

// Float64 converts a scalar to a float64 display value. It is the only
// sanctioned way out of decimal arithmetic; geometry computation never
// round-trips through it.
func Float64(d *apd.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// mustParse parses a known-good decimal literal.
func mustParse(s string) *apd.Decimal {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("bad decimal literal %q: %v", s, err))
	}
	return d
}

func (c *Context) num(i int64) *apd.Decimal {
	return apd.New(i, 0)
}

func (c *Context) add(x, y *apd.Decimal) *apd.Decimal {
	d := new(apd.Decimal)
	c.dec.Add(d, x, y)
	return d
}

func (c *Context) sub(x, y *apd.Decimal) *apd.Decimal {
	d := new(apd.Decimal)
	c.dec.Sub(d, x, y)
	return d
}

func (c *Context) mul(x, y *apd.Decimal) *apd.Decimal {
	d := new(apd.Decimal)
	c.dec.Mul(d, x, y)
	return d
}

// quo divides x by y. Callers guard y against zero; the package never
// divides by an unchecked denominator.
func (c *Context) quo(x, y *apd.Decimal) *apd.Decimal {
	d := new(apd.Decimal)
	c.dec.Quo(d, x, y)
	return d
}

func (c *Context) sqrt(x *apd.Decimal) *apd.Decimal {
	d := new(apd.Decimal)
	c.dec.Sqrt(d, x)
	return d
}

func (c *Context) neg(x *apd.Decimal) *apd.Decimal {
	return new(apd.Decimal).Neg(x)
}

func (c *Context) abs(x *apd.Decimal) *apd.Decimal {
	return new(apd.Decimal).Abs(x)
}

func (c *Context) min(x, y *apd.Decimal) *apd.Decimal {
	if x.Cmp(y) <= 0 {
		return x
	}
	return y
}

func (c *Context) max(x, y *apd.Decimal) *apd.Decimal {
	if x.Cmp(y) >= 0 {
		return x
	}
	return y
}

// clamp01 clamps a parameter into [0, 1]. Iterative solvers routinely step
// slightly out of range; they are pulled back rather than rejected.
func (c *Context) clamp01(t *apd.Decimal) *apd.Decimal {
	if t.Sign() < 0 {
		return c.zero
	}
	if t.Cmp(c.one) > 0 {
		return c.one
	}
	return t
}

// lerp returns a + (b-a)*t.
func (c *Context) lerp(a, b, t *apd.Decimal) *apd.Decimal {
	return c.add(a, c.mul(c.sub(b, a), t))
}

// hypot returns sqrt(x^2 + y^2).
func (c *Context) hypot(x, y *apd.Decimal) *apd.Decimal {
	return c.sqrt(c.add(c.mul(x, x), c.mul(y, y)))
}
