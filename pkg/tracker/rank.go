package tracker

import (
	"fmt"
	"math"
	"sort"

	"github.com/Frostfire25/airplane-project/pkg/coordinates"
)

// DistanceEpsilonNM is the window within which two distances are treated
// as equal for ranking. Ties inside the window are broken by identity so
// two equally distant aircraft never swap places between cycles.
const DistanceEpsilonNM = 0.05

// Candidate is one aircraft ranked by distance from a reference point.
// Candidates are recomputed every cycle and never persisted.
type Candidate struct {
	// Aircraft is a copy of the tracked state at ranking time
	Aircraft Aircraft

	// DistanceNM is the great-circle distance from the reference point
	// in nautical miles
	DistanceNM float64

	// Bearing from the reference point toward the aircraft, degrees
	// from true north
	Bearing float64
}

// Rank orders a tracker snapshot by ascending great-circle distance from
// the reference point. Aircraft without a position fix are excluded.
// The function is pure: the same snapshot and reference always produce
// the same order. A non-finite or negative computed distance aborts the
// whole ranking, since it indicates corrupt state rather than bad input.
func Rank(snapshot []Aircraft, reference coordinates.Geographic) ([]Candidate, error) {
	if !reference.Valid() {
		return nil, fmt.Errorf("invalid reference point %.4f,%.4f", reference.Latitude, reference.Longitude)
	}

	candidates := make([]Candidate, 0, len(snapshot))
	for _, ac := range snapshot {
		if !ac.HasPosition {
			continue
		}
		d := coordinates.DistanceNauticalMiles(reference, ac.Position)
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return nil, fmt.Errorf("computed distance %.4f nm for %s", d, ac.ICAO)
		}
		candidates = append(candidates, Candidate{
			Aircraft:   ac,
			DistanceNM: d,
			Bearing:    coordinates.Bearing(reference, ac.Position),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].DistanceNM, candidates[j].DistanceNM
		if math.Abs(di-dj) <= DistanceEpsilonNM {
			return candidates[i].Aircraft.ICAO < candidates[j].Aircraft.ICAO
		}
		return di < dj
	})
	return candidates, nil
}
