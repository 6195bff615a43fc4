package billiards

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBallBallTimeOfImpactApproaching(t *testing.T) {
	// Two unit balls on the x-axis, 10 apart, closing at combined speed 2.
	tau := ballBallTimeOfImpact(NewVec2(0, 0), NewVec2(1, 0), 1, NewVec2(10, 0), NewVec2(-1, 0), 1)
	// Surfaces touch when the 8-unit gap between surfaces closes at speed 2.
	assert.InDelta(t, 4.0, tau, 1e-9)
}

func TestBallBallTimeOfImpactSeparating(t *testing.T) {
	tau := ballBallTimeOfImpact(NewVec2(0, 0), NewVec2(-1, 0), 1, NewVec2(10, 0), NewVec2(1, 0), 1)
	assert.True(t, math.IsInf(tau, 1))
}

func TestBallBallTimeOfImpactParallelNonClosing(t *testing.T) {
	tau := ballBallTimeOfImpact(NewVec2(0, 0), NewVec2(1, 0), 1, NewVec2(10, 5), NewVec2(1, 0), 1)
	assert.True(t, math.IsInf(tau, 1))
}

func TestBallBallTimeOfImpactZeroRelativeVelocity(t *testing.T) {
	tau := ballBallTimeOfImpact(NewVec2(0, 0), NewVec2(1, 0), 1, NewVec2(10, 0), NewVec2(1, 0), 1)
	assert.True(t, math.IsInf(tau, 1))
}

func TestBallBallTimeOfImpactAlreadyOverlappingApproaching(t *testing.T) {
	// Centers 1 apart, combined radius 3: already overlapping and closing.
	tau := ballBallTimeOfImpact(NewVec2(0, 0), NewVec2(1, 0), 1.5, NewVec2(1, 0), NewVec2(-1, 0), 1.5)
	assert.Equal(t, 0.0, tau)
}

func TestBallBallTimeOfImpactMiss(t *testing.T) {
	// Balls pass by each other without ever touching (negative discriminant).
	tau := ballBallTimeOfImpact(NewVec2(0, 0), NewVec2(1, 0), 0.1, NewVec2(10, 5), NewVec2(-1, 0), 0.1)
	assert.True(t, math.IsInf(tau, 1))
}

func TestElasticBallBallEqualMassHeadOn(t *testing.T) {
	n := NewVec2(1, 0)
	v1p, v2p := elasticBallBall(NewVec2(1, 0), 1, NewVec2(-1, 0), 1, n)
	assert.InDelta(t, -1, v1p.X, 1e-12)
	assert.InDelta(t, 1, v2p.X, 1e-12)
}

func TestElasticBallBallInfiniteMassReflects(t *testing.T) {
	n := NewVec2(1, 0)
	v1p, v2p := elasticBallBall(NewVec2(1, 0), math.Inf(1), NewVec2(-3, 0), 5, n)
	assert.Equal(t, NewVec2(1, 0), v1p)
	assert.InDelta(t, 5, v2p.X, 1e-9)
}

func TestElasticBallBallBothInfiniteIsNoOp(t *testing.T) {
	n := NewVec2(1, 0)
	v1, v2 := NewVec2(2, 0), NewVec2(-2, 0)
	v1p, v2p := elasticBallBall(v1, math.Inf(1), v2, math.Inf(1), n)
	assert.Equal(t, v1, v1p)
	assert.Equal(t, v2, v2p)
}

func TestElasticBallBallMasslessTracerDoesNotPerturb(t *testing.T) {
	n := NewVec2(1, 0)
	v1, v2 := NewVec2(5, 0), NewVec2(-1, 0)
	v1p, v2p := elasticBallBall(v1, 0, v2, 3, n)
	assert.Equal(t, v2, v2p, "massless ball must not perturb the massive one")
	assert.InDelta(t, v1.X+2*(v2.X-v1.X), v1p.X, 1e-9)
}

func TestElasticBallBallBothMasslessReflectSymmetrically(t *testing.T) {
	n := NewVec2(1, 0)
	v1, v2 := NewVec2(3, 0), NewVec2(-4, 0)
	v1p, v2p := elasticBallBall(v1, 0, v2, 0, n)
	assert.InDelta(t, v1.X+2*(v2.X-v1.X), v1p.X, 1e-9)
	assert.InDelta(t, v2.X+2*(v1.X-v2.X), v2p.X, 1e-9)
}

func TestElasticBallBallConservesEnergyGeneralCase(t *testing.T) {
	n := NewVec2(1, 0)
	v1, v2 := NewVec2(4, 1), NewVec2(-2, -1)
	m1, m2 := 2.0, 5.0
	v1p, v2p := elasticBallBall(v1, m1, v2, m2, n)

	before := m1*v1.MagnitudeSquared() + m2*v2.MagnitudeSquared()
	after := m1*v1p.MagnitudeSquared() + m2*v2p.MagnitudeSquared()
	assert.InDelta(t, before, after, 1e-9)

	pBefore := v1.Times(m1).Plus(v2.Times(m2))
	pAfter := v1p.Times(m1).Plus(v2p.Times(m2))
	assert.InDelta(t, pBefore.X, pAfter.X, 1e-9)
	assert.InDelta(t, pBefore.Y, pAfter.Y, 1e-9)
}
