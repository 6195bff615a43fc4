package billiards

import (
	"math"

	"github.com/pkg/errors"
)

// LocationHint is an opaque value an Obstacle hands back from TimeOfImpact
// and receives again in Collide, so the obstacle need not re-solve its
// geometry to know which edge, cap, or side was hit. Spec §4.2.
type LocationHint any

// Obstacle is the capability every static obstacle must provide: a
// time-of-impact query and a collision response. Implementations are
// immutable value objects with no internal mutation (spec §3.2, §6).
//
// One-sidedness (spec §4.2): TimeOfImpact must return +Inf for a ball that
// starts strictly inside the obstacle — collisions are only registered for
// approaches from outside toward outside. This is preserved deliberately,
// not flipped, per the Open Question in spec §9: it makes obstacle nesting
// asymmetric (a Disk obstacle does not confine a ball placed inside it),
// which a caller who wants confinement must arrange for explicitly.
type Obstacle interface {
	// TimeOfImpact returns the smallest tau >= 0 at which a ball of radius r
	// starting at p with velocity v first touches the obstacle's outside
	// surface while moving outward, or +Inf if no such tau exists.
	TimeOfImpact(p, v Vec2, r float64) (float64, LocationHint)

	// Collide returns the post-impact velocity. p is the contact position;
	// the caller has already advanced the ball there.
	Collide(p, v Vec2, r float64, hint LocationHint) Vec2
}

// Disk is a circular obstacle; its outside is |x - center| >= radius.
type Disk struct {
	Center Vec2
	Radius float64
}

// NewDisk validates and constructs a Disk obstacle. A zero or negative
// radius is degenerate geometry (spec §7 class c) and is rejected here
// rather than silently producing an obstacle nothing can ever hit.
func NewDisk(center Vec2, radius float64) (*Disk, error) {
	if !center.IsFinite() {
		return nil, errors.Wrapf(ErrNonFinite, "disk center=%v", center)
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, errors.Wrapf(ErrNonFinite, "disk radius=%v", radius)
	}
	if radius <= 0 {
		return nil, errors.Wrapf(ErrDegenerateGeometry, "disk radius=%v must be positive", radius)
	}
	return &Disk{Center: center, Radius: radius}, nil
}

type diskHint struct{}

func (d *Disk) TimeOfImpact(p, v Vec2, r float64) (float64, LocationHint) {
	dp := d.Center.Minus(p)
	combined := d.Radius + r
	if dp.MagnitudeSquared() < combined*combined {
		// Ball already starts inside the disk: one-sidedness (spec §4.2, §9)
		// means this obstacle never registers a collision for it, regardless
		// of approach direction. timeOfImpactQuadratic's overlap branch
		// (τ=0 for two approaching balls) does not apply here — that rule is
		// for ball-ball pairs, not for a ball and the obstacle it started
		// inside of.
		return math.Inf(1), nil
	}
	dv := v.Invert()
	tau := timeOfImpactQuadratic(dp, dv, combined)
	if math.IsInf(tau, 1) {
		return tau, nil
	}
	return tau, diskHint{}
}

// Collide reflects v about the tangent plane at the contact point, per
// spec §4.2: v' = v - 2*<v,n>*n where n is the outward normal at contact.
func (d *Disk) Collide(p, v Vec2, r float64, _ LocationHint) Vec2 {
	n := p.Minus(d.Center).Normalize()
	return v.Minus(n.Times(2 * v.Dot(n)))
}

// InfiniteWall is the infinite line through P1, P2; Exterior selects which
// half-plane (relative to the direction P1->P2) is "outside".
type InfiniteWall struct {
	P1, P2   Vec2
	Exterior string // "left" or "right"
	normal   Vec2   // unit normal pointing into the exterior
}

// NewInfiniteWall validates and constructs an InfiniteWall. Coincident
// endpoints give no direction to build a normal from and are degenerate
// geometry (spec §7 class c).
func NewInfiniteWall(p1, p2 Vec2, exterior string) (*InfiniteWall, error) {
	if !p1.IsFinite() || !p2.IsFinite() {
		return nil, errors.Wrapf(ErrNonFinite, "wall endpoints p1=%v p2=%v", p1, p2)
	}
	dir := p2.Minus(p1)
	if dir.IsZero() {
		return nil, errors.Wrapf(ErrDegenerateGeometry, "wall p1=%v and p2=%v coincide", p1, p2)
	}
	dirN := dir.Normalize()

	var normal Vec2
	switch exterior {
	case "left":
		normal = dirN.LeftNormal()
	case "right":
		normal = dirN.RightNormal()
	default:
		return nil, errors.Errorf("billiards: wall exterior must be \"left\" or \"right\", got %q", exterior)
	}

	return &InfiniteWall{P1: p1, P2: p2, Exterior: exterior, normal: normal}, nil
}

type wallHint struct{}

func (w *InfiniteWall) TimeOfImpact(p, v Vec2, r float64) (float64, LocationHint) {
	d := p.Minus(w.P1).Dot(w.normal)
	if d <= r {
		// Starting inside (or exactly touching from the inside); one-sided,
		// per spec §4.2/§9, no collision is registered for this approach.
		return math.Inf(1), nil
	}
	closing := v.Dot(w.normal)
	if closing >= 0 {
		return math.Inf(1), nil
	}
	tau := (d - r) / (-closing)
	if tau < 0 {
		return math.Inf(1), nil
	}
	return tau, wallHint{}
}

// Collide reflects v about the wall's normal, per spec §4.2:
// v' = v - 2*<v,n>*n.
func (w *InfiniteWall) Collide(_, v Vec2, _ float64, _ LocationHint) Vec2 {
	return v.Minus(w.normal.Times(2 * v.Dot(w.normal)))
}

// Segment is a finite cushion wall with rounded end caps: the interior of
// P1..P2 behaves like InfiniteWall, and approaches near either endpoint are
// delegated to a Disk test, exactly as spec §4.2's "Extending the family"
// paragraph describes. This recovers a feature every real billiards table
// needs (the teacher's pool_table.go cushions meet at 22 such segments and
//12 corner vertices) that the distilled core family (Disk, InfiniteWall)
// alone cannot express.
type Segment struct {
	P1, P2   Vec2
	Radius   float64 // end-cap rounding radius; also the wall's half-thickness
	Exterior string

	dir    Vec2
	normal Vec2
	cap1   *Disk
	cap2   *Disk
}

func NewSegment(p1, p2 Vec2, radius float64, exterior string) (*Segment, error) {
	if !p1.IsFinite() || !p2.IsFinite() {
		return nil, errors.Wrapf(ErrNonFinite, "segment endpoints p1=%v p2=%v", p1, p2)
	}
	raw := p2.Minus(p1)
	if raw.IsZero() {
		return nil, errors.Wrapf(ErrDegenerateGeometry, "segment p1=%v and p2=%v coincide", p1, p2)
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0 {
		return nil, errors.Wrapf(ErrDegenerateGeometry, "segment end-cap radius=%v must be positive", radius)
	}
	dir := raw.Normalize()

	var normal Vec2
	switch exterior {
	case "left":
		normal = dir.LeftNormal()
	case "right":
		normal = dir.RightNormal()
	default:
		return nil, errors.Errorf("billiards: segment exterior must be \"left\" or \"right\", got %q", exterior)
	}

	cap1, err := NewDisk(p1, radius)
	if err != nil {
		return nil, err
	}
	cap2, err := NewDisk(p2, radius)
	if err != nil {
		return nil, err
	}

	return &Segment{P1: p1, P2: p2, Radius: radius, Exterior: exterior, dir: dir, normal: normal, cap1: cap1, cap2: cap2}, nil
}

type segmentHint struct {
	onCap *Disk
}

// TimeOfImpact tests the straight interior of the segment and both rounded
// end caps, returning the smallest non-negative time among them. The
// interior test restricts the infinite-line solution to the portion of the
// line between the two caps, matching how cushions meet vertices on a real
// table.
func (s *Segment) TimeOfImpact(p, v Vec2, r float64) (float64, LocationHint) {
	best := math.Inf(1)
	var hint LocationHint

	d := p.Minus(s.P1).Dot(s.normal)
	combined := r + s.Radius
	if d > combined {
		closing := v.Dot(s.normal)
		if closing < 0 {
			tau := (d - combined) / (-closing)
			if tau >= 0 {
				contact := p.Plus(v.Times(tau))
				along := contact.Minus(s.P1).Dot(s.dir)
				length := s.P2.Minus(s.P1).Magnitude()
				if along >= 0 && along <= length {
					best = tau
					hint = segmentHint{}
				}
			}
		}
	}

	if tau, _ := s.cap1.TimeOfImpact(p, v, r); tau < best {
		best, hint = tau, segmentHint{onCap: s.cap1}
	}
	if tau, _ := s.cap2.TimeOfImpact(p, v, r); tau < best {
		best, hint = tau, segmentHint{onCap: s.cap2}
	}

	if math.IsInf(best, 1) {
		return best, nil
	}
	return best, hint
}

func (s *Segment) Collide(p, v Vec2, r float64, hint LocationHint) Vec2 {
	h, _ := hint.(segmentHint)
	if h.onCap != nil {
		return h.onCap.Collide(p, v, r, diskHint{})
	}
	return v.Minus(s.normal.Times(2 * v.Dot(s.normal)))
}
