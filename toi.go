package billiards

import "math"

// toiTables holds the two per-ball time-of-impact caches described in spec
// §4.3: a symmetric ball-ball table with a per-row minimum, and a ball-
// obstacle table with a per-row minimum. Both are dense, index-aligned
// structures-of-arrays — no spatial index beyond this is in scope (spec §1
// Non-goals).
type toiTables struct {
	bb            [][]float64 // bb[i][j], absolute time; bb[i][i] == +Inf
	bbBestTime    []float64
	bbBestPartner []int // -1 if row has no finite entry

	bo             [][]float64      // bo[i][k], absolute time
	boHint         [][]LocationHint // hint returned alongside bo[i][k]
	boBestTime     []float64
	boBestObstacle []int // -1 if row has no finite entry
}

func newTOITables() *toiTables {
	return &toiTables{}
}

// growForNewBall appends one row/column for a newly inserted ball (spec
// §4.3 "Population"). Existing rows grow by one column; the new row is
// filled by the caller via populateBallRow.
func (tb *toiTables) growForNewBall(numObstacles int) {
	n := len(tb.bb)
	for i := range tb.bb {
		tb.bb[i] = append(tb.bb[i], math.Inf(1))
	}
	newBBRow := make([]float64, n+1)
	for j := range newBBRow {
		newBBRow[j] = math.Inf(1)
	}
	tb.bb = append(tb.bb, newBBRow)
	tb.bbBestTime = append(tb.bbBestTime, math.Inf(1))
	tb.bbBestPartner = append(tb.bbBestPartner, -1)

	newBORow := make([]float64, numObstacles)
	for k := range newBORow {
		newBORow[k] = math.Inf(1)
	}
	tb.bo = append(tb.bo, newBORow)
	tb.boHint = append(tb.boHint, make([]LocationHint, numObstacles))
	tb.boBestTime = append(tb.boBestTime, math.Inf(1))
	tb.boBestObstacle = append(tb.boBestObstacle, -1)
}

// refreshBBRowMin rescans row i from scratch. Used whenever the row was
// just recomputed in full, or whenever the row's cached minimum might have
// gotten worse (its partner just moved).
func (tb *toiTables) refreshBBRowMin(i int) {
	best := math.Inf(1)
	partner := -1
	row := tb.bb[i]
	for j, t := range row {
		if j == i {
			continue
		}
		if t < best {
			best, partner = t, j
		}
	}
	tb.bbBestTime[i] = best
	tb.bbBestPartner[i] = partner
}

func (tb *toiTables) refreshBORowMin(i int) {
	best := math.Inf(1)
	obstacle := -1
	row := tb.bo[i]
	for k, t := range row {
		if t < best {
			best, obstacle = t, k
		}
	}
	tb.boBestTime[i] = best
	tb.boBestObstacle[i] = obstacle
}

// considerBBCandidate offers a freshly (re)computed bb[i][j] value as a
// possible new row minimum for i, without a full rescan. This captures the
// case where a ball outside the repaired set got strictly closer to one
// that collided, which can only ever improve (shrink) that row's minimum.
func (tb *toiTables) considerBBCandidate(i, j int, t float64) {
	if t < tb.bbBestTime[i] {
		tb.bbBestTime[i] = t
		tb.bbBestPartner[i] = j
	}
}

// nextBallBall returns the globally next ball-ball event, applying spec
// §4.3's deterministic tie-break: among equal times, the pair with the
// smaller (min(i,j), max(i,j)) wins.
func (tb *toiTables) nextBallBall() (t float64, i, j int) {
	best := math.Inf(1)
	bi, bj := -1, 0
	for idx, rowBest := range tb.bbBestTime {
		partner := tb.bbBestPartner[idx]
		if partner < 0 {
			continue
		}
		lo, hi := idx, partner
		if lo > hi {
			lo, hi = hi, lo
		}
		if bi < 0 || rowBest < best || (rowBest == best && (lo < bi || (lo == bi && hi < bj))) {
			best, bi, bj = rowBest, lo, hi
		}
	}
	if bi < 0 {
		return math.Inf(1), -1, 0
	}
	return best, bi, bj
}

// nextBallObstacle returns the globally next ball-obstacle event.
func (tb *toiTables) nextBallObstacle() (t float64, i int, obstacleIdx int) {
	best := math.Inf(1)
	bi, bk := -1, -1
	for idx, rowBest := range tb.boBestTime {
		k := tb.boBestObstacle[idx]
		if k < 0 {
			continue
		}
		if rowBest < best || (rowBest == best && idx < bi) {
			best, bi, bk = rowBest, idx, k
		}
	}
	return best, bi, bk
}
