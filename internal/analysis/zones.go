package analysis

// Five-zone intensity model. Each zone is a band of fractions of
// threshold speed.
//
//	Zone 1  recovery    0.55 - 0.75
//	Zone 2  easy        0.75 - 0.85
//	Zone 3  steady      0.85 - 0.94
//	Zone 4  threshold   0.94 - 1.03
//	Zone 5  hard        1.03 - 1.15

// DefaultAnchorSpeed stands in for the threshold when no estimate exists
// yet, so zone targets can always be produced. 3.0 m/s is a 5:33/km pace.
const DefaultAnchorSpeed = 3.0

var zoneFractions = [5]struct{ low, high float64 }{
	{0.55, 0.75},
	{0.75, 0.85},
	{0.85, 0.94},
	{0.94, 1.03},
	{1.03, 1.15},
}

// clampZone coerces z into 1..5.
func clampZone(z int) int {
	if z < 1 {
		return 1
	}
	if z > 5 {
		return 5
	}
	return z
}

// ZoneBounds returns the speed band in m/s for the given zone at the
// given threshold speed.
func ZoneBounds(zone int, threshold float64) (low, high float64) {
	f := zoneFractions[clampZone(zone)-1]
	return f.low * threshold, f.high * threshold
}

// ZoneSpeed returns the midpoint target speed for the zone.
func ZoneSpeed(zone int, threshold float64) float64 {
	low, high := ZoneBounds(zone, threshold)
	return (low + high) / 2
}

// ZoneFor returns the zone a speed falls in at the given threshold.
// Speeds below zone 1 report 1, above zone 5 report 5.
func ZoneFor(speed, threshold float64) int {
	if threshold <= 0 {
		return 1
	}
	frac := speed / threshold
	for i, f := range zoneFractions {
		if frac < f.high {
			return i + 1
		}
	}
	return 5
}
