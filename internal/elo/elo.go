// Package elo computes rating adjustments for 2v2 matches.
//
// Both members of a team always move by the same amount: a team strength is
// the mean of its two members and the adjustment is exchanged between the
// two teams.
package elo

import (
	"fmt"
	"math"
)

// KFactor is the maximum number of points exchanged in a single match.
const KFactor = 32

// Side identifies a team in a match.
type Side int

const ( // this is stored in DB, don't change values
	SideTeam1 Side = 1
	SideTeam2 Side = 2
)

func (s Side) Valid() bool {
	return s == SideTeam1 || s == SideTeam2
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideTeam1 {
		return SideTeam2
	}

	return SideTeam1
}

func (s Side) String() string {
	switch s {
	case SideTeam1:
		return "team 1"
	case SideTeam2:
		return "team 2"
	default:
		return fmt.Sprintf("invalid side %d", int(s))
	}
}

// Result holds the outcome of Compute.
type Result struct {
	// New ratings, in the same order as the inputs.
	P1, P2, P3, P4 float64

	// Delta is the signed adjustment applied to team 1, team 2 received -Delta.
	Delta int

	// PointsExchanged is abs(Delta).
	PointsExchanged int
}

// Ratings returns the new ratings as a slice ordered like the inputs.
func (r Result) Ratings() [4]float64 {
	return [4]float64{r.P1, r.P2, r.P3, r.P4}
}

// ExpectedScore returns the probability of a team rated ratingA winning
// against a team rated ratingB.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// Compute returns the updated ratings after a match where r1 and r2 (team 1)
// played against r3 and r4 (team 2).
// An invalid winner is treated as a team 2 win as only a team 1 win scores.
func Compute(r1, r2, r3, r4 float64, winner Side) Result {
	team1 := (r1 + r2) / 2
	team2 := (r3 + r4) / 2

	expected := ExpectedScore(team1, team2)

	var actual float64
	if winner == SideTeam1 {
		actual = 1
	}

	// math.Round rounds half away from zero, this keeps the exchange
	// symmetric when the teams are mirrored.
	delta := int(math.Round(KFactor * (actual - expected)))

	return Result{
		P1: r1 + float64(delta),
		P2: r2 + float64(delta),
		P3: r3 - float64(delta),
		P4: r4 - float64(delta),

		Delta:           delta,
		PointsExchanged: abs(delta),
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
