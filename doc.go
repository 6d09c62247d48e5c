// Package bezier implements arbitrary-precision computational geometry for
// parametric Bezier curves of any degree: evaluation, derivatives, tangents,
// normals, curvature, exact bounding boxes, subdivision, arc length and its
// inverse, and intersections between lines, curves, paths and a curve with
// itself.
//
// All geometry arithmetic runs in decimal floating point with a configurable
// number of significant digits (80 by default), carried by a [Context] that
// every entry point takes explicitly. There is no process-wide precision
// switch: independent computations with different contexts can run
// concurrently, and float64 appears only when converting inputs in and
// display values out.
//
// # Precision and tolerances
//
// The Context couples the arithmetic precision with a family of named
// tolerances (convergence tolerance, parallel and Jacobian singularity
// thresholds, minimum self-intersection separation). They are tuned
// together: a convergence tolerance dramatically below 10^(2-precision)
// cannot be satisfied by the arithmetic, and adaptive routines will then run
// to their depth bounds on every call. [SelfTest] exercises the whole
// surface against canonical inputs and reports per-check verdicts, which
// catches inconsistent configurations early.
//
// # Degenerate configurations
//
// Numerical singularities are handled locally and never surfaced as errors:
// a near-parallel line pair reports no intersection, a cusp substitutes a
// bisection step for the Newton step, a singular Jacobian abandons one
// refinement branch. Iteration budgets that run out are reported as an
// unconverged flag or a distinct [Status], never as a silent success. Note
// that exactly coincident overlapping lines are classified as parallel and
// report no intersection; this is a policy choice inherited from the
// package's consumers, not an accident.
package bezier
