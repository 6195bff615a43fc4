package billiards

import (
	"io"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TimeCallback is invoked once per resolved collision, after the
// simulation's nominal time has advanced but before any ball callbacks
// fire (spec §4.4 ordering guarantee).
type TimeCallback func(t float64)

// CollisionPartner identifies the other side of a resolved collision for a
// BallCallback: either another ball (BallIndex >= 0, Obstacle == nil) or an
// obstacle (BallIndex == -1, Obstacle != nil).
type CollisionPartner struct {
	BallIndex int
	Obstacle  Obstacle
}

// BallCallback is invoked once per participating ball in a resolved
// collision, in ascending ball-index order (spec §4.4).
type BallCallback func(t float64, position, before, after Vec2, partner CollisionPartner)

// Stats reports the running collision counters from spec §3.3.
type Stats struct {
	BallBall     int
	BallObstacle int
}

// Simulation is the core billiards kernel: a dense, index-aligned ball
// store plus incrementally-maintained time-of-impact caches, advanced by
// jumping from one collision event to the next (spec §1-§4). It is
// strictly single-threaded and synchronous (spec §5): Evolve does not
// suspend, and callbacks run inline on the calling goroutine.
type Simulation struct {
	time float64

	// Dense, index-aligned columns (spec §3.1, §5) rather than an array of
	// per-ball structs: this is what lets balls_position / balls_velocity /
	// balls_mass be exposed as plain read-only slices (spec §6).
	t0     []float64
	p0     []Vec2
	vel    []Vec2
	mass   []float64
	radius []float64

	obstacles []Obstacle
	toi       *toiTables

	ballBallCount     int
	ballObstacleCount int

	runID uuid.UUID
	log   *logrus.Entry
}

// New creates an empty Simulation with the given (immutable, shared)
// obstacle list. Obstacles are registered once and never mutated for the
// life of the Simulation (spec §3.2).
func New(obstacles ...Obstacle) *Simulation {
	return &Simulation{
		obstacles: obstacles,
		toi:       newTOITables(),
		runID:     uuid.New(),
	}
}

// WithLogger attaches a structured logger used for diagnostics (balls added,
// resolved collisions). Logging never changes control flow
// — when no logger is attached, diagnostics are silently dropped. This is
// an ambient concern, not part of the physical model (spec §5, §9).
func (s *Simulation) WithLogger(log *logrus.Entry) *Simulation {
	if log != nil {
		s.log = log.WithField("run_id", s.runID.String())
	}
	return s
}

// logf returns a usable logger entry even when no logger was attached, so
// call sites never need a nil check. The default entry discards output.
func (s *Simulation) logf() *logrus.Entry {
	if s.log == nil {
		return discardLog
	}
	return s.log
}

var discardLog = func() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}()

// Time returns the simulation's current nominal time.
func (s *Simulation) Time() float64 { return s.time }

// NumBalls returns the number of balls currently in the simulation.
func (s *Simulation) NumBalls() int { return len(s.t0) }

// BallsInitialTime returns a read-only copy of each ball's t0 (spec §6).
func (s *Simulation) BallsInitialTime() []float64 {
	out := make([]float64, len(s.t0))
	copy(out, s.t0)
	return out
}

// BallsInitialPosition returns a read-only copy of each ball's p0.
func (s *Simulation) BallsInitialPosition() []Vec2 {
	out := make([]Vec2, len(s.p0))
	copy(out, s.p0)
	return out
}

// BallsVelocity returns a read-only copy of each ball's current velocity.
func (s *Simulation) BallsVelocity() []Vec2 {
	out := make([]Vec2, len(s.vel))
	copy(out, s.vel)
	return out
}

// BallsMass returns a read-only copy of each ball's mass.
func (s *Simulation) BallsMass() []float64 {
	out := make([]float64, len(s.mass))
	copy(out, s.mass)
	return out
}

// BallsRadius returns a read-only copy of each ball's radius.
func (s *Simulation) BallsRadius() []float64 {
	out := make([]float64, len(s.radius))
	copy(out, s.radius)
	return out
}

// Stats returns the number of ball-ball and ball-obstacle collisions
// resolved so far (spec §3.3).
func (s *Simulation) Stats() Stats {
	return Stats{BallBall: s.ballBallCount, BallObstacle: s.ballObstacleCount}
}

// Position materializes ball i's current position: p0[i] + (t - t0[i])*v[i]
// (spec §3.1, §4.5).
func (s *Simulation) Position(i int) (Vec2, error) {
	if i < 0 || i >= len(s.t0) {
		return Vec2{}, errors.Wrapf(ErrBallIndex, "index=%d numBalls=%d", i, len(s.t0))
	}
	return s.positionAt(i, s.time), nil
}

func (s *Simulation) positionAt(i int, t float64) Vec2 {
	return s.p0[i].Plus(s.vel[i].Times(t - s.t0[i]))
}

// AddBall appends a new ball with t0 = current time, p0 = position (spec
// §4.5). Go has no optional parameters, so callers pass radius and mass
// explicitly; spec.md's defaults (radius 0, mass 1) are the caller's to
// supply.
func (s *Simulation) AddBall(position, velocity Vec2, radius, mass float64) (int, error) {
	if err := requireFiniteVec("position", position); err != nil {
		return -1, err
	}
	if err := requireFiniteVec("velocity", velocity); err != nil {
		return -1, err
	}
	if err := requireRadius(radius); err != nil {
		return -1, err
	}
	if err := requireMass(mass); err != nil {
		return -1, err
	}

	i := len(s.t0)
	s.t0 = append(s.t0, s.time)
	s.p0 = append(s.p0, position)
	s.vel = append(s.vel, velocity)
	s.radius = append(s.radius, radius)
	s.mass = append(s.mass, mass)

	s.toi.growForNewBall(len(s.obstacles))
	s.populateBallRow(i)

	s.logf().WithFields(logrus.Fields{"ball": i, "position": position, "velocity": velocity}).Debug("ball added")
	return i, nil
}

// populateBallRow computes ball i's TOI against every other ball and every
// obstacle, mirrors the ball-ball entries into each partner's row, and
// refreshes the row minima that may now be stale (spec §4.3 "Population").
func (s *Simulation) populateBallRow(i int) {
	for j := 0; j < len(s.t0); j++ {
		if j == i {
			continue
		}
		t := s.ballBallAbsoluteTOI(i, j)
		s.toi.bb[i][j] = t
		s.toi.bb[j][i] = t
		s.toi.considerBBCandidate(j, i, t)
	}
	for k := range s.obstacles {
		s.toi.bo[i][k] = s.ballObstacleAbsoluteTOI(i, k)
	}
	s.toi.refreshBBRowMin(i)
	s.toi.refreshBORowMin(i)
}

// ballBallAbsoluteTOI computes ball i's and ball j's TOI as of the common
// "now" (the simulation's current time — both balls' stored (t0, p0) are
// always valid to reconstruct a position at or after their own t0, and
// t0 <= s.time always holds).
func (s *Simulation) ballBallAbsoluteTOI(i, j int) float64 {
	p1 := s.positionAt(i, s.time)
	p2 := s.positionAt(j, s.time)
	tau := ballBallTimeOfImpact(p1, s.vel[i], s.radius[i], p2, s.vel[j], s.radius[j])
	if math.IsInf(tau, 1) {
		return math.Inf(1)
	}
	return s.time + tau
}

// ballObstacleAbsoluteTOI computes ball i's TOI against one obstacle and
// caches the obstacle's location hint for reuse by resolveBallObstacle.
func (s *Simulation) ballObstacleAbsoluteTOI(i, k int) float64 {
	p := s.positionAt(i, s.time)
	tau, hint := s.obstacles[k].TimeOfImpact(p, s.vel[i], s.radius[i])
	s.toi.boHint[i][k] = hint
	if math.IsInf(tau, 1) {
		return math.Inf(1)
	}
	return s.time + tau
}

// RecomputeTOI repairs the TOI caches for an arbitrary set of ball indices
// after direct mutation of position/velocity/mass/radius (spec §4.3
// "External edits", §4.5).
func (s *Simulation) RecomputeTOI(indices []int) error {
	for _, i := range indices {
		if i < 0 || i >= len(s.t0) {
			return errors.Wrapf(ErrBallIndex, "index=%d numBalls=%d", i, len(s.t0))
		}
	}
	s.repair(indices)
	return nil
}

// repair implements spec §4.3's "Repair" algorithm: every row indexed by S
// is fully recomputed (and mirrored), every row outside S whose cached
// minimum partner is in S is fully rescanned (its cached minimum may no
// longer be valid), and every row outside S is offered the freshly recomputed
// entries against S as O(1) candidate improvements (its minimum could only
// ever get better from those).
func (s *Simulation) repair(participants []int) {
	inS := make(map[int]bool, len(participants))
	for _, i := range participants {
		inS[i] = true
	}

	for _, i := range participants {
		for k := range s.obstacles {
			s.toi.bo[i][k] = s.ballObstacleAbsoluteTOI(i, k)
		}
		s.toi.refreshBORowMin(i)

		for j := 0; j < len(s.t0); j++ {
			if j == i {
				continue
			}
			t := s.ballBallAbsoluteTOI(i, j)
			s.toi.bb[i][j] = t
			s.toi.bb[j][i] = t
		}
	}

	for j := 0; j < len(s.t0); j++ {
		if inS[j] {
			s.toi.refreshBBRowMin(j)
			continue
		}
		if inS[s.toi.bbBestPartner[j]] {
			s.toi.refreshBBRowMin(j)
			continue
		}
		for _, i := range participants {
			s.toi.considerBBCandidate(j, i, s.toi.bb[j][i])
		}
	}
}

// NextBallBallCollision returns the globally next ball-ball event.
// (-1, 0) signals no event (time is +Inf); spec §6.
func (s *Simulation) NextBallBallCollision() (time float64, i, j int) {
	return s.toi.nextBallBall()
}

// NextBallObstacleCollision returns the globally next ball-obstacle event.
// i == -1 and obstacle == nil signal no event; spec §6.
func (s *Simulation) NextBallObstacleCollision() (time float64, i int, obstacle Obstacle) {
	t, bi, k := s.toi.nextBallObstacle()
	if bi < 0 {
		return t, -1, nil
	}
	return t, bi, s.obstacles[k]
}

// NextCollision returns the earlier of NextBallBallCollision and
// NextBallObstacleCollision, tie-broken toward ball-ball (spec §4.3).
func (s *Simulation) NextCollision() (time float64, i int, partner CollisionPartner) {
	bbT, bi, bj := s.NextBallBallCollision()
	boT, oi, obstacle := s.NextBallObstacleCollision()

	if bi < 0 && oi < 0 {
		return math.Inf(1), -1, CollisionPartner{BallIndex: -1}
	}
	if oi < 0 || bbT <= boT {
		return bbT, bi, CollisionPartner{BallIndex: bj}
	}
	return boT, oi, CollisionPartner{BallIndex: -1, Obstacle: obstacle}
}

// Evolve advances the simulation until time >= endTime, resolving every
// collision at or before endTime along the way (spec §4.4). It returns
// the number of ball-ball and ball-obstacle collisions resolved during
// this call.
//
// timeCallback, if non-nil, fires once per resolved event, after the
// nominal time advances and before any ball callback. ballCallbacks, if
// non-nil, is consulted by ball index for each participant of a resolved
// event; callbacks fire in ascending ball-index order (spec §4.4).
func (s *Simulation) Evolve(endTime float64, timeCallback TimeCallback, ballCallbacks map[int]BallCallback) (int, int, error) {
	if math.IsNaN(endTime) {
		return 0, 0, errors.Wrapf(ErrNonFinite, "endTime=%v", endTime)
	}

	startBB, startBO := s.ballBallCount, s.ballObstacleCount

	for {
		t, bi, bj := s.toi.nextBallBall()
		bt, boi, bok := s.toi.nextBallObstacle()

		nextTime := math.Inf(1)
		ballBall := false
		if bi >= 0 {
			nextTime = t
			ballBall = true
		}
		if boi >= 0 && bt < nextTime {
			nextTime = bt
			ballBall = false
		}

		if nextTime > endTime {
			if endTime > s.time {
				s.time = endTime
			}
			break
		}

		s.time = nextTime

		var participants []int
		if ballBall {
			s.resolveBallBall(bi, bj, timeCallback, ballCallbacks)
			participants = []int{bi, bj}
			s.ballBallCount++
		} else {
			s.resolveBallObstacle(boi, bok, timeCallback, ballCallbacks)
			participants = []int{boi}
			s.ballObstacleCount++
		}

		s.repair(participants)
	}

	return s.ballBallCount - startBB, s.ballObstacleCount - startBO, nil
}

func (s *Simulation) resolveBallBall(i, j int, timeCB TimeCallback, ballCBs map[int]BallCallback) {
	pi := s.positionAt(i, s.time)
	pj := s.positionAt(j, s.time)

	oldVI, oldVJ := s.vel[i], s.vel[j]

	n := pj.Minus(pi)
	if n.IsZero() {
		// Perfectly coincident centers (degenerate but not impossible with
		// r=0 tracers); fall back to the pre-collision relative velocity
		// direction so the response is still well-defined.
		n = oldVJ.Minus(oldVI)
	}
	n = n.Normalize()

	newVI, newVJ := elasticBallBall(oldVI, s.mass[i], oldVJ, s.mass[j], n)

	s.p0[i], s.t0[i], s.vel[i] = pi, s.time, newVI
	s.p0[j], s.t0[j], s.vel[j] = pj, s.time, newVJ

	s.logf().WithFields(logrus.Fields{"t": s.time, "a": i, "b": j}).Debug("ball-ball collision")

	if timeCB != nil {
		timeCB(s.time)
	}
	lo, hi := i, j
	if lo > hi {
		lo, hi = hi, lo
	}
	if cb, ok := ballCBs[lo]; ok {
		var oldV, newV Vec2
		var partner int
		if lo == i {
			oldV, newV, partner = oldVI, newVI, j
		} else {
			oldV, newV, partner = oldVJ, newVJ, i
		}
		cb(s.time, s.p0[lo], oldV, newV, CollisionPartner{BallIndex: partner})
	}
	if cb, ok := ballCBs[hi]; ok {
		var oldV, newV Vec2
		var partner int
		if hi == i {
			oldV, newV, partner = oldVI, newVI, j
		} else {
			oldV, newV, partner = oldVJ, newVJ, i
		}
		cb(s.time, s.p0[hi], oldV, newV, CollisionPartner{BallIndex: partner})
	}
}

func (s *Simulation) resolveBallObstacle(i int, obstacleIdx int, timeCB TimeCallback, ballCBs map[int]BallCallback) {
	obstacle := s.obstacles[obstacleIdx]
	p := s.positionAt(i, s.time)
	hint := s.toi.boHint[i][obstacleIdx]

	oldV := s.vel[i]
	newV := obstacle.Collide(p, oldV, s.radius[i], hint)

	s.p0[i], s.t0[i], s.vel[i] = p, s.time, newV

	s.logf().WithFields(logrus.Fields{"t": s.time, "ball": i}).Debug("ball-obstacle collision")

	if timeCB != nil {
		timeCB(s.time)
	}
	if cb, ok := ballCBs[i]; ok {
		cb(s.time, p, oldV, newV, CollisionPartner{BallIndex: -1, Obstacle: obstacle})
	}
}

// --- Direct mutation (spec §4.5); caller must call RecomputeTOI after. ---

func (s *Simulation) SetPosition(i int, p Vec2) error {
	if i < 0 || i >= len(s.t0) {
		return errors.Wrapf(ErrBallIndex, "index=%d numBalls=%d", i, len(s.t0))
	}
	if err := requireFiniteVec("position", p); err != nil {
		return err
	}
	s.p0[i] = p
	s.t0[i] = s.time
	return nil
}

func (s *Simulation) SetVelocity(i int, v Vec2) error {
	if i < 0 || i >= len(s.t0) {
		return errors.Wrapf(ErrBallIndex, "index=%d numBalls=%d", i, len(s.t0))
	}
	if err := requireFiniteVec("velocity", v); err != nil {
		return err
	}
	s.p0[i] = s.positionAt(i, s.time)
	s.t0[i] = s.time
	s.vel[i] = v
	return nil
}

func (s *Simulation) SetRadius(i int, r float64) error {
	if i < 0 || i >= len(s.t0) {
		return errors.Wrapf(ErrBallIndex, "index=%d numBalls=%d", i, len(s.t0))
	}
	if err := requireRadius(r); err != nil {
		return err
	}
	s.radius[i] = r
	return nil
}

func (s *Simulation) SetMass(i int, m float64) error {
	if i < 0 || i >= len(s.t0) {
		return errors.Wrapf(ErrBallIndex, "index=%d numBalls=%d", i, len(s.t0))
	}
	if err := requireMass(m); err != nil {
		return err
	}
	s.mass[i] = m
	return nil
}
