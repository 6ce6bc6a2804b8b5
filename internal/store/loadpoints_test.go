package store

import (
	"testing"
	"time"
)

func testPoint(athleteID int64, day time.Time, stress, fitness, fatigue float64) *DailyLoadPoint {
	return &DailyLoadPoint{
		AthleteID: athleteID,
		Date:      day,
		Stress:    stress,
		Fitness:   fitness,
		Fatigue:   fatigue,
		Readiness: fitness - fatigue,
	}
}

func TestLoadPointRoundtrip(t *testing.T) {
	db := openTestDB(t)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	p := testPoint(1, day, 32.5, 18.2, 25.9)
	if err := db.UpsertLoadPoint(p); err != nil {
		t.Fatalf("UpsertLoadPoint failed: %v", err)
	}

	fetched, err := db.GetLoadPoint(1, day)
	if err != nil {
		t.Fatalf("GetLoadPoint failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("Expected a load point, got nil")
	}
	if !fetched.Date.Equal(day) {
		t.Errorf("Expected date %v, got %v", day, fetched.Date)
	}
	if fetched.Stress != 32.5 || fetched.Fitness != 18.2 || fetched.Fatigue != 25.9 {
		t.Errorf("Fields not preserved: %+v", fetched)
	}
	if fetched.Readiness != 18.2-25.9 {
		t.Errorf("Expected readiness %v, got %v", 18.2-25.9, fetched.Readiness)
	}
}

func TestGetLoadPoint_Absent(t *testing.T) {
	db := openTestDB(t)

	p, err := db.GetLoadPoint(1, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetLoadPoint failed: %v", err)
	}
	if p != nil {
		t.Errorf("Expected nil for an absent day, got %+v", p)
	}
}

func TestUpsertLoadPoint_OverwritesSameDay(t *testing.T) {
	db := openTestDB(t)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	db.UpsertLoadPoint(testPoint(1, day, 10, 5, 8))
	if err := db.UpsertLoadPoint(testPoint(1, day, 20, 6, 9)); err != nil {
		t.Fatalf("UpsertLoadPoint failed: %v", err)
	}

	points, err := db.ListLoadPoints(1, day, day)
	if err != nil {
		t.Fatalf("ListLoadPoints failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("Expected 1 point for the day, got %d", len(points))
	}
	if points[0].Stress != 20 {
		t.Errorf("Expected overwritten stress 20, got %v", points[0].Stress)
	}
}

func TestFirstAndLatestLoadPoint(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := db.FirstLoadPoint(1)
	if err != nil {
		t.Fatalf("FirstLoadPoint failed: %v", err)
	}
	latest, err := db.LatestLoadPoint(1)
	if err != nil {
		t.Fatalf("LatestLoadPoint failed: %v", err)
	}
	if first != nil || latest != nil {
		t.Error("Expected nil endpoints for an empty series")
	}

	for i := 0; i < 3; i++ {
		db.UpsertLoadPoint(testPoint(1, base.AddDate(0, 0, i), float64(i), 1, 1))
	}

	first, _ = db.FirstLoadPoint(1)
	latest, _ = db.LatestLoadPoint(1)
	if first == nil || !first.Date.Equal(base) {
		t.Errorf("Expected first point on %v, got %+v", base, first)
	}
	if latest == nil || !latest.Date.Equal(base.AddDate(0, 0, 2)) {
		t.Errorf("Expected latest point on %v, got %+v", base.AddDate(0, 0, 2), latest)
	}
}

func TestListLoadPoints_InclusiveRange(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		db.UpsertLoadPoint(testPoint(1, base.AddDate(0, 0, i), float64(i), 1, 1))
	}

	points, err := db.ListLoadPoints(1, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("ListLoadPoints failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(points))
	}
	if !points[0].Date.Equal(base.AddDate(0, 0, 1)) || !points[2].Date.Equal(base.AddDate(0, 0, 3)) {
		t.Errorf("Expected both range endpoints included, got %v to %v",
			points[0].Date, points[2].Date)
	}
}

func TestDeleteLoadPointsBefore(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		db.UpsertLoadPoint(testPoint(1, base.AddDate(0, 0, i), float64(i), 1, 1))
	}

	if err := db.DeleteLoadPointsBefore(1, base.AddDate(0, 0, 2)); err != nil {
		t.Fatalf("DeleteLoadPointsBefore failed: %v", err)
	}

	points, err := db.ListLoadPoints(1, base, base.AddDate(0, 0, 4))
	if err != nil {
		t.Fatalf("ListLoadPoints failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("Expected 3 points after delete, got %d", len(points))
	}
	// The boundary day itself survives.
	if !points[0].Date.Equal(base.AddDate(0, 0, 2)) {
		t.Errorf("Expected series to start on %v, got %v", base.AddDate(0, 0, 2), points[0].Date)
	}
}
