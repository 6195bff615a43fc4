package billiards

import (
	"math"

	"github.com/pkg/errors"
)

// Precondition violations (spec §7 class a) are programmer errors: non-finite
// numeric inputs, an invalid mass/radius, or indexing a ball that doesn't
// exist. They are distinct from the no-event sentinel (class b, a plain
// +Inf value, never an error) and from degenerate obstacle geometry
// (class c, rejected at construction below).
var (
	ErrNonFinite          = errors.New("billiards: non-finite numeric input")
	ErrInvalidMass        = errors.New("billiards: mass must be positive and finite, or +Inf")
	ErrInvalidRadius      = errors.New("billiards: radius must be finite and non-negative")
	ErrBallIndex          = errors.New("billiards: ball index out of range")
	ErrDegenerateGeometry = errors.New("billiards: degenerate obstacle geometry")
)

func requireFiniteVec(label string, v Vec2) error {
	if !v.IsFinite() {
		return errors.Wrapf(ErrNonFinite, "%s=%v", label, v)
	}
	return nil
}

func requireMass(m float64) error {
	if math.IsNaN(m) {
		return errors.Wrapf(ErrNonFinite, "mass=%v", m)
	}
	if m <= 0 {
		return errors.Wrapf(ErrInvalidMass, "mass=%v", m)
	}
	return nil
}

func requireRadius(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return errors.Wrapf(ErrNonFinite, "radius=%v", r)
	}
	if r < 0 {
		return errors.Wrapf(ErrInvalidRadius, "radius=%v", r)
	}
	return nil
}
