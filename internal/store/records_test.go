package store

import (
	"errors"
	"testing"
	"time"
)

func testRecord(athleteID int64, distance RaceDistance, workoutID string, seconds int, achievedAt time.Time) RaceRecord {
	meters := distance.Meters()
	return RaceRecord{
		AthleteID:  athleteID,
		Distance:   distance,
		WorkoutID:  workoutID,
		Meters:     meters,
		Seconds:    seconds,
		Speed:      meters / float64(seconds),
		AchievedAt: achievedAt,
	}
}

func TestReplaceRaceRecords(t *testing.T) {
	db := openTestDB(t)
	day := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)

	first := []RaceRecord{
		testRecord(1, Race5K, "w1", 1500, day),
		testRecord(1, Race10K, "w2", 3100, day.AddDate(0, 0, 7)),
	}
	if err := db.ReplaceRaceRecords(1, first); err != nil {
		t.Fatalf("ReplaceRaceRecords failed: %v", err)
	}

	records, err := db.ListRaceRecords(1)
	if err != nil {
		t.Fatalf("ListRaceRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// A recompute that no longer finds the 10k drops its row.
	second := []RaceRecord{
		testRecord(1, Race5K, "w3", 1440, day.AddDate(0, 0, 30)),
	}
	if err := db.ReplaceRaceRecords(1, second); err != nil {
		t.Fatalf("ReplaceRaceRecords failed: %v", err)
	}

	records, err = db.ListRaceRecords(1)
	if err != nil {
		t.Fatalf("ListRaceRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records after replace, want 1", len(records))
	}
	if records[0].WorkoutID != "w3" {
		t.Errorf("record holder = %s, want w3", records[0].WorkoutID)
	}
	if records[0].Seconds != 1440 {
		t.Errorf("Seconds = %d, want 1440", records[0].Seconds)
	}
}

func TestReplaceRaceRecordsLeavesOtherAthletesAlone(t *testing.T) {
	db := openTestDB(t)
	day := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)

	if err := db.ReplaceRaceRecords(1, []RaceRecord{testRecord(1, Race5K, "a1", 1500, day)}); err != nil {
		t.Fatalf("ReplaceRaceRecords failed: %v", err)
	}
	if err := db.ReplaceRaceRecords(2, []RaceRecord{testRecord(2, Race5K, "b1", 1300, day)}); err != nil {
		t.Fatalf("ReplaceRaceRecords failed: %v", err)
	}

	// Clearing athlete 1 must not touch athlete 2.
	if err := db.ReplaceRaceRecords(1, nil); err != nil {
		t.Fatalf("ReplaceRaceRecords failed: %v", err)
	}

	records, err := db.ListRaceRecords(1)
	if err != nil {
		t.Fatalf("ListRaceRecords failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("athlete 1 has %d records, want 0", len(records))
	}

	records, err = db.ListRaceRecords(2)
	if err != nil {
		t.Fatalf("ListRaceRecords failed: %v", err)
	}
	if len(records) != 1 || records[0].WorkoutID != "b1" {
		t.Errorf("athlete 2 records = %+v, want the b1 record intact", records)
	}
}

func TestListRaceRecordsOrder(t *testing.T) {
	db := openTestDB(t)
	day := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)

	records := []RaceRecord{
		testRecord(1, RaceMarathon, "m", 12600, day),
		testRecord(1, Race5K, "5", 1400, day),
		testRecord(1, Race50K, "u", 16200, day),
		testRecord(1, RaceHalf, "h", 5400, day),
	}
	if err := db.ReplaceRaceRecords(1, records); err != nil {
		t.Fatalf("ReplaceRaceRecords failed: %v", err)
	}

	listed, err := db.ListRaceRecords(1)
	if err != nil {
		t.Fatalf("ListRaceRecords failed: %v", err)
	}

	order := []RaceDistance{Race5K, RaceHalf, RaceMarathon, Race50K}
	if len(listed) != len(order) {
		t.Fatalf("got %d records, want %d", len(listed), len(order))
	}
	for i, want := range order {
		if listed[i].Distance != want {
			t.Errorf("listed[%d].Distance = %v, want %v", i, listed[i].Distance, want)
		}
	}
}

func TestGetRaceRecord(t *testing.T) {
	db := openTestDB(t)
	day := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	hr := 172.0

	record := testRecord(1, Race10K, "w9", 2520, day)
	record.AverageHR = &hr
	if err := db.ReplaceRaceRecords(1, []RaceRecord{record}); err != nil {
		t.Fatalf("ReplaceRaceRecords failed: %v", err)
	}

	fetched, err := db.GetRaceRecord(1, Race10K)
	if err != nil {
		t.Fatalf("GetRaceRecord failed: %v", err)
	}
	if fetched.Seconds != 2520 {
		t.Errorf("Seconds = %d, want 2520", fetched.Seconds)
	}
	if fetched.AverageHR == nil || *fetched.AverageHR != 172 {
		t.Errorf("AverageHR = %v, want 172", fetched.AverageHR)
	}
	if !fetched.AchievedAt.Equal(day) {
		t.Errorf("AchievedAt = %v, want %v", fetched.AchievedAt, day)
	}

	if _, err := db.GetRaceRecord(1, RaceMarathon); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("GetRaceRecord miss error = %v, want ErrRecordNotFound", err)
	}
	if _, err := db.GetRaceRecord(2, Race10K); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("GetRaceRecord wrong athlete error = %v, want ErrRecordNotFound", err)
	}
}
