package analysis

import (
	"errors"
	"fmt"

	"runcoach/internal/store"
)

// ErrInvalidWorkout is returned when a workout is missing the fields its
// type requires. The workout is rejected individually; it never fails a
// whole recompute.
var ErrInvalidWorkout = errors.New("invalid workout data")

// DefaultFallbackIntensity is the intensity factor assumed when neither a
// threshold estimate nor heart rate data is available. 0.70 works out to
// roughly 49 stress per hour, a moderate aerobic effort.
const DefaultFallbackIntensity = 0.70

// climbFactor converts elevation gain to equivalent flat distance:
// 10 m of climb counts as 100 m of flat ground.
const climbFactor = 10.0

// Thresholds carries the reference values a workout's intensity is
// normalized against. Zero fields mean "not available".
type Thresholds struct {
	Speed             float64 // m/s, from the estimate effective on the workout date
	Power             float64 // watts, configured FTP
	HR                float64 // bpm, configured threshold heart rate
	FallbackIntensity float64 // used when no reference applies
}

// DefaultThresholds returns thresholds with only the fallback set.
func DefaultThresholds() Thresholds {
	return Thresholds{FallbackIntensity: DefaultFallbackIntensity}
}

// ValidateWorkout checks the fields every workout type requires.
func ValidateWorkout(w store.Workout) error {
	if !store.ValidWorkoutType(w.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidWorkout, w.Type)
	}
	if w.MovingTime <= 0 {
		return fmt.Errorf("%w: moving time %d", ErrInvalidWorkout, w.MovingTime)
	}
	if w.Distance <= 0 {
		return fmt.Errorf("%w: distance %.1f", ErrInvalidWorkout, w.Distance)
	}
	if w.PerceivedEffort != nil && (*w.PerceivedEffort < 1 || *w.PerceivedEffort > 10) {
		return fmt.Errorf("%w: perceived effort %d", ErrInvalidWorkout, *w.PerceivedEffort)
	}
	return nil
}

// EffortSpeed returns the grade-adjusted average speed in m/s. Returns 0
// when the workout has no usable distance or time.
func EffortSpeed(w store.Workout) float64 {
	if w.MovingTime <= 0 {
		return 0
	}
	d := w.Distance + climbFactor*w.ElevationGain
	if d <= 0 {
		return 0
	}
	return d / float64(w.MovingTime)
}

// IntensityFactor normalizes the workout's effort against the best
// available reference. Preference order: threshold speed, threshold
// power, threshold heart rate, then the configured fallback.
func IntensityFactor(w store.Workout, thr Thresholds) float64 {
	if thr.Speed > 0 {
		if speed := EffortSpeed(w); speed > 0 {
			return speed / thr.Speed
		}
	}
	if thr.Power > 0 && w.AveragePower != nil && *w.AveragePower > 0 {
		return *w.AveragePower / thr.Power
	}
	if thr.HR > 0 && w.AverageHR != nil && *w.AverageHR > 0 {
		return *w.AverageHR / thr.HR
	}
	if thr.FallbackIntensity > 0 {
		return thr.FallbackIntensity
	}
	return DefaultFallbackIntensity
}

// Score converts one workout into a stress value:
//
//	stress = duration_hours * intensity_factor^2 * 100
//
// A one-hour effort exactly at threshold scores 100.
func Score(w store.Workout, thr Thresholds) (float64, error) {
	if err := ValidateWorkout(w); err != nil {
		return 0, err
	}

	hours := float64(w.MovingTime) / 3600.0
	intensity := IntensityFactor(w, thr)

	return hours * intensity * intensity * 100, nil
}
