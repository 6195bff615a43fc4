package billiards

import "math"

// timeOfImpactQuadratic solves for the smallest non-negative tau such that
// |dp + tau*dv|^2 = combinedRadius^2, given dp/dv already expressed as the
// "other minus self" delta (spec §4.1). It returns +Inf for all the cases
// the spec calls out as "no future impact": zero relative velocity, a
// negative discriminant, and separating or parallel motion (dp.Dot(dv) >= 0).
// If the two circles already overlap and are approaching, it returns 0 so
// the caller treats the event as immediate rather than missing it.
//
// The numerically stable form (spec §4.1) is used whenever dp.Dot(dv) < 0,
// to avoid catastrophic cancellation for grazing impacts.
func timeOfImpactQuadratic(dp, dv Vec2, combinedRadius float64) float64 {
	dvSq := dv.MagnitudeSquared()
	if dvSq == 0 {
		return math.Inf(1)
	}

	pd := dp.Dot(dv)
	if pd >= 0 {
		return math.Inf(1)
	}

	dpSq := dp.MagnitudeSquared()
	rSq := combinedRadius * combinedRadius
	discriminant := pd*pd - dvSq*(dpSq-rSq)
	if discriminant < 0 {
		return math.Inf(1)
	}
	sqrtD := math.Sqrt(discriminant)

	if dpSq < rSq {
		// Already overlapping; approaching (pd < 0 was already established).
		return 0
	}

	tau := (dpSq - rSq) / (-pd + sqrtD)
	if tau < 0 {
		return math.Inf(1)
	}
	return tau
}

// ballBallTimeOfImpact returns the time (relative to "now") at which two
// balls next touch, or +Inf if they never will. Spec §4.1.
func ballBallTimeOfImpact(p1, v1 Vec2, r1 float64, p2, v2 Vec2, r2 float64) float64 {
	dp := p2.Minus(p1)
	dv := v2.Minus(v1)
	return timeOfImpactQuadratic(dp, dv, r1+r2)
}

// elasticBallBall returns the post-impact velocities for an elastic
// collision between two balls, given the unit normal n pointing from ball 1
// toward ball 2 at the moment of contact. Spec §4.1, including the m=Inf
// (immovable) and m=0 (tracer) limits.
func elasticBallBall(v1 Vec2, m1 float64, v2 Vec2, m2 float64, n Vec2) (Vec2, Vec2) {
	inf1 := math.IsInf(m1, 1)
	inf2 := math.IsInf(m2, 1)

	switch {
	case inf1 && inf2:
		return v1, v2
	case inf1:
		return v1, v2.Plus(n.Times(2 * v1.Minus(v2).Dot(n)))
	case inf2:
		return v1.Plus(n.Times(2 * v2.Minus(v1).Dot(n))), v2
	case m1 == 0 && m2 == 0:
		// Both tracers: each reflects as though the other were an immovable
		// wall, and neither perturbs the other.
		v1p := v1.Plus(n.Times(2 * v2.Minus(v1).Dot(n)))
		v2p := v2.Plus(n.Times(2 * v1.Minus(v2).Dot(n)))
		return v1p, v2p
	case m1 == 0:
		// Tracer ball 1: reflects off ball 2 as if ball 2 were immovable;
		// ball 2 is left unperturbed.
		return v1.Plus(n.Times(2 * v2.Minus(v1).Dot(n))), v2
	case m2 == 0:
		return v1, v2.Plus(n.Times(2 * v1.Minus(v2).Dot(n)))
	default:
		rel := v2.Minus(v1).Dot(n)
		v1p := v1.Plus(n.Times((2 * m2 / (m1 + m2)) * rel))
		v2p := v2.Minus(n.Times((2 * m1 / (m1 + m2)) * rel))
		return v1p, v2p
	}
}
