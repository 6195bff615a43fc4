package billiards

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiskRejectsDegenerateRadius(t *testing.T) {
	_, err := NewDisk(NewVec2(0, 0), 0)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)

	_, err = NewDisk(NewVec2(0, 0), -1)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestNewDiskRejectsNonFiniteCenter(t *testing.T) {
	_, err := NewDisk(NewVec2(math.NaN(), 0), 1)
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestDiskTimeOfImpactApproachingFromOutside(t *testing.T) {
	d, err := NewDisk(NewVec2(0, 0), 1)
	require.NoError(t, err)

	tau, hint := d.TimeOfImpact(NewVec2(5, 0), NewVec2(-1, 0), 0.5)
	assert.InDelta(t, 3.5, tau, 1e-9)
	assert.NotNil(t, hint)
}

func TestDiskTimeOfImpactStartingInsideIsOneSided(t *testing.T) {
	d, err := NewDisk(NewVec2(0, 0), 2)
	require.NoError(t, err)

	tau, _ := d.TimeOfImpact(NewVec2(0, 0), NewVec2(1, 0), 0)
	assert.True(t, math.IsInf(tau, 1), "ball starting inside a disk must not register a collision")
}

func TestDiskTimeOfImpactStartingInsideOffCenterMovingInwardIsOneSided(t *testing.T) {
	d, err := NewDisk(NewVec2(0, 0), 2)
	require.NoError(t, err)

	// Center strictly inside the disk (not coincident with d.Center), moving
	// toward d.Center: this is the case the overlap-and-approaching branch of
	// timeOfImpactQuadratic would otherwise mistake for an immediate ball-ball
	// collision.
	tau, hint := d.TimeOfImpact(NewVec2(1, 0), NewVec2(-1, 0), 0)
	assert.True(t, math.IsInf(tau, 1), "ball starting inside a disk must not register a collision even while approaching the center")
	assert.Nil(t, hint)
}

func TestDiskCollideReflectsAboutNormal(t *testing.T) {
	d, err := NewDisk(NewVec2(0, 0), 1)
	require.NoError(t, err)

	v := d.Collide(NewVec2(1, 0), NewVec2(-1, 0), 0, diskHint{})
	assert.InDelta(t, 1, v.X, 1e-12)
	assert.InDelta(t, 0, v.Y, 1e-12)
}

func TestNewInfiniteWallRejectsCoincidentEndpoints(t *testing.T) {
	_, err := NewInfiniteWall(NewVec2(1, 1), NewVec2(1, 1), "left")
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestNewInfiniteWallRejectsInvalidExterior(t *testing.T) {
	_, err := NewInfiniteWall(NewVec2(0, 0), NewVec2(1, 0), "up")
	assert.Error(t, err)
}

func TestInfiniteWallTimeOfImpactAndCollide(t *testing.T) {
	w, err := NewInfiniteWall(NewVec2(0, -1), NewVec2(0, 1), "right")
	require.NoError(t, err)

	tau, hint := w.TimeOfImpact(NewVec2(3, 0), NewVec2(-1, 0), 0.2)
	assert.InDelta(t, 2.8, tau, 1e-9)
	assert.NotNil(t, hint)

	v := w.Collide(NewVec2(0.2, 0), NewVec2(-1, 0), 0.2, hint)
	assert.InDelta(t, 1, v.X, 1e-9)
}

func TestInfiniteWallStartingInsideIsOneSided(t *testing.T) {
	w, err := NewInfiniteWall(NewVec2(0, -1), NewVec2(0, 1), "right")
	require.NoError(t, err)

	tau, _ := w.TimeOfImpact(NewVec2(-3, 0), NewVec2(-1, 0), 0.2)
	assert.True(t, math.IsInf(tau, 1))
}

func TestSegmentInteriorBehavesLikeWall(t *testing.T) {
	s, err := NewSegment(NewVec2(0, -5), NewVec2(0, 5), 0.1, "right")
	require.NoError(t, err)

	tau, hint := s.TimeOfImpact(NewVec2(3, 0), NewVec2(-1, 0), 0.2)
	require.False(t, math.IsInf(tau, 1))

	v := s.Collide(NewVec2(0.3, 0), NewVec2(-1, 0), 0.2, hint)
	assert.InDelta(t, 1, v.X, 1e-9)
}

func TestSegmentEndCapBehavesLikeDisk(t *testing.T) {
	s, err := NewSegment(NewVec2(0, -5), NewVec2(0, 5), 0.5, "right")
	require.NoError(t, err)

	// Approach squarely at the top end cap, beyond the straight interior.
	tau, hint := s.TimeOfImpact(NewVec2(0, 10), NewVec2(0, -1), 0.1)
	require.False(t, math.IsInf(tau, 1))

	h, ok := hint.(segmentHint)
	require.True(t, ok)
	assert.NotNil(t, h.onCap)
}

func TestSegmentRejectsDegenerateRadius(t *testing.T) {
	_, err := NewSegment(NewVec2(0, 0), NewVec2(1, 0), 0, "left")
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}
