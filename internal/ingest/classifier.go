package ingest

import (
	"strings"

	"runcoach/internal/store"
)

// Classify maps a free-text activity name to a workout type. Matching
// is case-insensitive substring search, first hit wins, and anything
// unrecognized is an easy run so ingestion never stalls on a name.
func Classify(name string) store.WorkoutType {
	lower := strings.ToLower(name)

	switch {
	case strings.Contains(lower, "tempo"):
		return store.TypeTempo
	case strings.Contains(lower, "interval"),
		strings.Contains(lower, "speed"),
		strings.Contains(lower, "track"):
		return store.TypeInterval
	case strings.Contains(lower, "hill"):
		return store.TypeHill
	case strings.Contains(lower, "long"):
		return store.TypeLong
	case strings.Contains(lower, "recovery"):
		return store.TypeRecovery
	case strings.Contains(lower, "race"):
		return store.TypeRace
	}
	return store.TypeEasy
}
