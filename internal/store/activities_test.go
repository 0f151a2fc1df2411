package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

// setupTestDB creates an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func floatPtr(f float64) *float64 { return &f }

func testActivity(id int64, athlete string, start time.Time, kind string) *Activity {
	return &Activity{
		ID:               id,
		AthleteID:        athlete,
		Name:             "Morning " + kind,
		Type:             kind,
		StartDate:        start,
		Distance:         10000,
		MovingTime:       3000,
		ElapsedTime:      3100,
		AverageSpeed:     3.33,
		AverageHeartrate: floatPtr(150),
		MaxHeartrate:     floatPtr(178),
		HasHeartrate:     true,
	}
}

func TestUpsertActivity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	a := testActivity(1, "42", start, "Run")
	if err := db.UpsertActivity(ctx, a); err != nil {
		t.Fatalf("UpsertActivity() error = %v", err)
	}

	a.Name = "Renamed"
	a.AverageHeartrate = nil
	if err := db.UpsertActivity(ctx, a); err != nil {
		t.Fatalf("UpsertActivity() second call error = %v", err)
	}

	got, err := db.GetActivity(ctx, 1)
	if err != nil {
		t.Fatalf("GetActivity() error = %v", err)
	}
	if got.Name != "Renamed" {
		t.Errorf("Name = %q, want %q", got.Name, "Renamed")
	}
	if got.AverageHeartrate != nil {
		t.Errorf("AverageHeartrate = %v, want nil", *got.AverageHeartrate)
	}
	if !got.StartDate.Equal(start) {
		t.Errorf("StartDate = %v, want %v", got.StartDate, start)
	}

	count, err := db.CountActivities(ctx, "42")
	if err != nil {
		t.Fatalf("CountActivities() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountActivities() = %d, want 1", count)
	}
}

func TestGetActivityNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetActivity(context.Background(), 999)
	if !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("GetActivity() error = %v, want ErrActivityNotFound", err)
	}
}

func TestFetchActivities(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

	for i, a := range []*Activity{
		testActivity(1, "42", base.AddDate(0, 0, 5), "Run"),
		testActivity(2, "42", base.AddDate(0, 0, -30), "Run"),
		testActivity(3, "42", base.AddDate(0, 0, 1), "Ride"),
		testActivity(4, "7", base.AddDate(0, 0, 2), "Run"),
	} {
		if err := db.UpsertActivity(ctx, a); err != nil {
			t.Fatalf("UpsertActivity(%d) error = %v", i, err)
		}
	}

	samples, err := db.FetchActivities(ctx, "42", base)
	if err != nil {
		t.Fatalf("FetchActivities() error = %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("FetchActivities() returned %d samples, want 2", len(samples))
	}
	if samples[0].Kind != "Ride" || samples[1].Kind != "Run" {
		t.Errorf("samples not oldest first: %s, %s", samples[0].Kind, samples[1].Kind)
	}

	s := samples[1]
	if s.DurationMinutes != 50 {
		t.Errorf("DurationMinutes = %v, want 50", s.DurationMinutes)
	}
	if s.Pace() != 5 {
		t.Errorf("Pace() = %v, want 5", s.Pace())
	}
	if s.AvgHeartRate != 150 || s.MaxHeartRate != 178 {
		t.Errorf("heart rate = %v/%v, want 150/178", s.AvgHeartRate, s.MaxHeartRate)
	}

	byAthlete, err := db.SamplesByAthlete(ctx, base)
	if err != nil {
		t.Fatalf("SamplesByAthlete() error = %v", err)
	}
	if len(byAthlete["42"]) != 2 || len(byAthlete["7"]) != 1 {
		t.Errorf("SamplesByAthlete() = %d/%d samples, want 2/1", len(byAthlete["42"]), len(byAthlete["7"]))
	}
}

func TestListActivities(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

	for i := int64(1); i <= 5; i++ {
		if err := db.UpsertActivity(ctx, testActivity(i, "42", base.AddDate(0, 0, int(i)), "Run")); err != nil {
			t.Fatalf("UpsertActivity(%d) error = %v", i, err)
		}
	}

	page, err := db.ListActivities(ctx, "42", 2, 1)
	if err != nil {
		t.Fatalf("ListActivities() error = %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("ListActivities() returned %d, want 2", len(page))
	}
	if page[0].ID != 4 || page[1].ID != 3 {
		t.Errorf("ListActivities() ids = %d,%d, want 4,3", page[0].ID, page[1].ID)
	}
}

func TestAuthRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetAuth(ctx); !errors.Is(err, ErrNoAuth) {
		t.Fatalf("GetAuth() error = %v, want ErrNoAuth", err)
	}
	if err := db.UpdateTokens(ctx, "a", "r", time.Now()); !errors.Is(err, ErrNoAuth) {
		t.Fatalf("UpdateTokens() error = %v, want ErrNoAuth", err)
	}

	expires := time.Unix(1700000000, 0)
	if err := db.SaveAuth(ctx, &Auth{AthleteID: 42, AccessToken: "a1", RefreshToken: "r1", ExpiresAt: expires}); err != nil {
		t.Fatalf("SaveAuth() error = %v", err)
	}
	if err := db.UpdateTokens(ctx, "a2", "r2", expires.Add(time.Hour)); err != nil {
		t.Fatalf("UpdateTokens() error = %v", err)
	}

	auth, err := db.GetAuth(ctx)
	if err != nil {
		t.Fatalf("GetAuth() error = %v", err)
	}
	if auth.AthleteID != 42 || auth.AccessToken != "a2" || !auth.ExpiresAt.Equal(expires.Add(time.Hour)) {
		t.Errorf("GetAuth() = %+v", auth)
	}
}

func TestSyncState(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	v, err := db.GetSyncState(ctx, SyncLastActivity)
	if err != nil || v != "" {
		t.Fatalf("GetSyncState() = %q, %v; want empty", v, err)
	}
	if err := db.SetSyncState(ctx, SyncLastActivity, "1700000000"); err != nil {
		t.Fatalf("SetSyncState() error = %v", err)
	}
	if err := db.SetSyncState(ctx, SyncLastActivity, "1700000500"); err != nil {
		t.Fatalf("SetSyncState() error = %v", err)
	}
	if v, _ := db.GetSyncState(ctx, SyncLastActivity); v != "1700000500" {
		t.Errorf("GetSyncState() = %q, want 1700000500", v)
	}
}

func TestAthleteBiometrics(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	bio, err := db.GetBiometrics(ctx, "missing")
	if err != nil {
		t.Fatalf("GetBiometrics() error = %v", err)
	}
	if bio.WeightKg != 0 || bio.BirthDate != nil {
		t.Errorf("GetBiometrics() for unknown athlete = %+v, want empty", bio)
	}

	birth := time.Date(1988, 4, 12, 0, 0, 0, 0, time.UTC)
	gender := "female"
	if err := db.UpsertAthlete(ctx, &Athlete{ID: "42", Name: "Ana", BirthDate: &birth, Gender: &gender, WeightKg: floatPtr(61)}); err != nil {
		t.Fatalf("UpsertAthlete() error = %v", err)
	}

	// a later sync without biometrics must not clear them
	if err := db.UpsertAthlete(ctx, &Athlete{ID: "42", FTPWatts: floatPtr(210)}); err != nil {
		t.Fatalf("UpsertAthlete() second call error = %v", err)
	}

	bio, err = db.GetBiometrics(ctx, "42")
	if err != nil {
		t.Fatalf("GetBiometrics() error = %v", err)
	}
	if bio.Gender != "female" || bio.WeightKg != 61 || bio.FTPWatts != 210 {
		t.Errorf("GetBiometrics() = %+v", bio)
	}
	if bio.BirthDate == nil || bio.BirthDate.Format(dateLayout) != "1988-04-12" {
		t.Errorf("BirthDate = %v, want 1988-04-12", bio.BirthDate)
	}

	a, err := db.GetAthlete(ctx, "42")
	if err != nil {
		t.Fatalf("GetAthlete() error = %v", err)
	}
	if a.Name != "Ana" {
		t.Errorf("Name = %q, want Ana", a.Name)
	}

	ids, err := db.ListAthletes(ctx)
	if err != nil || len(ids) != 1 || ids[0] != "42" {
		t.Errorf("ListAthletes() = %v, %v", ids, err)
	}
}
