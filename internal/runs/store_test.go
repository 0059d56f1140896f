package runs

import (
	"testing"
	"time"

	"github.com/iexplain/iexplain/internal/db"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewStore(d)
}

func TestRecordAssignsID(t *testing.T) {
	s := testStore(t)

	id, err := s.Record(&Run{
		IntentID: "I1",
		Mode:     "agents",
		Workflow: "sequential",
		Outcome:  "Partial Success",
		Warnings: []string{"one warning"},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Outcome != "Partial Success" || got.IntentID != "I1" {
		t.Errorf("round trip lost data: %+v", got)
	}
	if len(got.Warnings) != 1 || got.Warnings[0] != "one warning" {
		t.Errorf("warnings = %v", got.Warnings)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := testStore(t)
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	for i, outcome := range []string{"Failure", "Success", "Unknown"} {
		_, err := s.Record(&Run{
			IntentID:  "I1",
			Mode:      "heuristic",
			Outcome:   outcome,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.List(2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Outcome != "Unknown" || got[1].Outcome != "Success" {
		t.Errorf("order wrong: %s, %s", got[0].Outcome, got[1].Outcome)
	}
}

func TestForIntent(t *testing.T) {
	s := testStore(t)
	s.Record(&Run{IntentID: "I1", Mode: "agents", Outcome: "Success"})
	s.Record(&Run{IntentID: "I2", Mode: "agents", Outcome: "Failure"})
	s.Record(&Run{IntentID: "I1", Mode: "heuristic", Outcome: "Failure"})

	got, err := s.ForIntent("I1")
	if err != nil {
		t.Fatalf("ForIntent: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	for _, r := range got {
		if r.IntentID != "I1" {
			t.Errorf("got run for %s", r.IntentID)
		}
	}
}

func TestGetMissing(t *testing.T) {
	s := testStore(t)
	if _, err := s.Get("nope"); err == nil {
		t.Error("expected an error for a missing run")
	}
}
