package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/pomo/internal/store"
)

func testSessions() []store.Session {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return []store.Session{
		{ID: 1, Phase: "work", Duration: 1500, EndedAt: base},
		{ID: 2, Phase: "break", Duration: 300, EndedAt: base.Add(5 * time.Minute)},
		{ID: 3, Phase: "work", Duration: 3665, EndedAt: base.Add(time.Hour)},
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	if err := ToCSV(testSessions(), path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// Header + 3 rows
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if records[0][0] != "ID" || records[0][1] != "Phase" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][1] != "work" || records[1][2] != "1500" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[3][3] != "01:01:05" {
		t.Fatalf("unexpected formatted duration: %v", records[3])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected header only, got %d records", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(testSessions(), filepath.Join(t.TempDir(), "missing", "out.csv"))
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := ToJSON(testSessions(), path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var out jsonExport
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 3 || len(out.Sessions) != 3 {
		t.Fatalf("count = %d, sessions = %d", out.Count, len(out.Sessions))
	}
	if out.Sessions[0].Phase != "work" || out.Sessions[0].DurationSec != 1500 {
		t.Fatalf("unexpected session: %+v", out.Sessions[0])
	}
	if out.Sessions[2].Duration != "01:01:05" {
		t.Fatalf("unexpected formatted duration: %q", out.Sessions[2].Duration)
	}
	if out.ExportedAt == "" {
		t.Fatal("exported_at should be set")
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int64]string{
		0:    "00:00:00",
		59:   "00:00:59",
		60:   "00:01:00",
		3665: "01:01:05",
	}
	for secs, want := range cases {
		if got := formatDuration(secs); got != want {
			t.Errorf("formatDuration(%d) = %q, want %q", secs, got, want)
		}
	}
}
