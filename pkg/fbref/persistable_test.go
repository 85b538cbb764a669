package fbref

import (
	"testing"
)

func archiveTestRecord() *PlayerMatchRecord {
	return &PlayerMatchRecord{
		Player: "Bukayo Saka", Team: "Arsenal", Opponent: "Chelsea",
		Date: day(2025, 3, 16), Minutes: 90, Goals: 1, XG: 0.42, XA: 0.31,
		Location: LocationHome,
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	fastConfig(t)
	t.Cleanup(func() { CloseDatabase() })

	if err := CreateTable(&PlayerMatchRecord{}); err != nil {
		t.Fatalf("create table: %v", err)
	}

	rec := archiveTestRecord()
	if err := Save(rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	exists, err := Exists(rec)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("saved record not found by primary key")
	}

	results, err := FindWhere(&PlayerMatchRecord{}, "team = ?", "Arsenal")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 archived row, got %d", len(results))
	}
	loaded, ok := results[0].(*PlayerMatchRecord)
	if !ok {
		t.Fatalf("unexpected result type %T", results[0])
	}
	if loaded.Player != "Bukayo Saka" || loaded.Minutes != 90 {
		t.Errorf("loaded row mismatch: %+v", loaded)
	}
	if !loaded.Date.Equal(day(2025, 3, 16)) {
		t.Errorf("date did not survive the round trip: %s", loaded.Date)
	}
	if loaded.CreatedAt.IsZero() {
		t.Error("BeforeSave must stamp CreatedAt")
	}
}

// Re-scraping the same match must replace the earlier row, mirroring
// the keep-last rule of the in-memory dedup.
func TestArchiveUpsertKeepsLatest(t *testing.T) {
	fastConfig(t)
	t.Cleanup(func() { CloseDatabase() })

	if err := CreateTable(&PlayerMatchRecord{}); err != nil {
		t.Fatalf("create table: %v", err)
	}

	first := archiveTestRecord()
	if err := Save(first); err != nil {
		t.Fatalf("save: %v", err)
	}

	corrected := archiveTestRecord()
	corrected.Goals = 2
	if err := BulkSave([]Persistable{corrected}); err != nil {
		t.Fatalf("bulk save: %v", err)
	}

	results, err := FindWhere(&PlayerMatchRecord{}, "player = ?", "Bukayo Saka")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("upsert must not duplicate, got %d rows", len(results))
	}
	if results[0].(*PlayerMatchRecord).Goals != 2 {
		t.Error("archive kept the stale row")
	}
}
