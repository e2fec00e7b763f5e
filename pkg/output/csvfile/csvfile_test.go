package csvfile

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jones139/AgilentDMM/pkg/dmm"
)

func TestFileOutputWritesHeaderAndRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	o, err := NewFile(path)
	if err != nil {
		t.Fatalf("new file: %v", err)
	}

	ts := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	rec := dmm.Record{Timestamp: ts, Mean: 1.2345, Std: 0.001, NSamples: 5, ElapsedS: 2.5, Temps: []float64{77.35}}
	if err := o.Publish(rec); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open written file: %v", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got %d want 2 (header + record)", len(rows))
	}
	if rows[0][0] != "time" || rows[0][2] != "mean_v" {
		t.Fatalf("header incorrect: %v", rows[0])
	}
	if rows[1][2] != "1.234500" {
		t.Fatalf("mean field: got %q", rows[1][2])
	}
	if rows[1][6] != "77.350" {
		t.Fatalf("temp field: got %q", rows[1][6])
	}
}

func TestFileOutputWritesHeaderToExistingEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("pre-create empty file: %v", err)
	}
	o, err := NewFile(path)
	if err != nil {
		t.Fatalf("new file: %v", err)
	}
	rec := dmm.Record{Timestamp: time.Now(), Mean: 0.5, NSamples: 1, ElapsedS: 0.1}
	if err := o.Publish(rec); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open written file: %v", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "time" {
		t.Fatalf("expected header + record, got %v", rows)
	}
}

func TestFileOutputAppendsWithoutDuplicateHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	rec := dmm.Record{Timestamp: time.Now(), Mean: 0.5, NSamples: 1, ElapsedS: 0.1}

	for i := 0; i < 2; i++ {
		o, err := NewFile(path)
		if err != nil {
			t.Fatalf("new file (pass %d): %v", i, err)
		}
		if err := o.Publish(rec); err != nil {
			t.Fatalf("publish (pass %d): %v", i, err)
		}
		if err := o.Close(); err != nil {
			t.Fatalf("close (pass %d): %v", i, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open written file: %v", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d want 3 (one header + two records)", len(rows))
	}
}
