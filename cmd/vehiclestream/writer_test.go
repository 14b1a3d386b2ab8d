package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"vehiclestream/internal/stats"
)

func TestNewStatsWriterNone(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	w, cleanup, err := newStatsWriter(false, "")
	if err != nil {
		t.Fatalf("newStatsWriter returned error: %v", err)
	}
	cleanup()
	if w != nil {
		t.Fatalf("expected nil writer, got %T", w)
	}
}

func TestNewStatsWriterPrintOnly(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	w, cleanup, err := newStatsWriter(true, "")
	if err != nil {
		t.Fatalf("newStatsWriter returned error: %v", err)
	}
	cleanup()
	if _, ok := w.(*stats.JSONWriter); !ok {
		t.Fatalf("expected *stats.JSONWriter, got %T", w)
	}
}

func TestNewStatsWriterStatsFile(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	path := filepath.Join(t.TempDir(), "stats.jsonl")
	w, cleanup, err := newStatsWriter(true, path)
	if err != nil {
		t.Fatalf("newStatsWriter returned error: %v", err)
	}
	if _, ok := w.(*stats.MultiWriter); !ok {
		t.Fatalf("expected *stats.MultiWriter, got %T", w)
	}
	if err := w.WriteStats(stats.Row{ServerID: "s", Timestamp: time.Unix(0, 0).UTC()}); err != nil {
		t.Fatalf("write: %v", err)
	}
	cleanup()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stats file: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected stats row in file")
	}
}

func TestNewStatsWriterFileOnly(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	path := filepath.Join(t.TempDir(), "stats.jsonl")
	w, cleanup, err := newStatsWriter(false, path)
	if err != nil {
		t.Fatalf("newStatsWriter returned error: %v", err)
	}
	defer cleanup()
	if _, ok := w.(*stats.FileWriter); !ok {
		t.Fatalf("expected *stats.FileWriter, got %T", w)
	}
}

func TestNewStatsWriterBadFile(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "")
	path := filepath.Join(t.TempDir(), "missing", "stats.jsonl")
	if _, _, err := newStatsWriter(false, path); err == nil {
		t.Fatalf("expected error for unwritable stats file")
	}
}

func TestNewStatsWriterBadGreptimePort(t *testing.T) {
	t.Setenv("GREPTIMEDB_ENDPOINT", "db.local:notaport")
	if _, _, err := newStatsWriter(false, ""); err == nil {
		t.Fatalf("expected error for invalid endpoint")
	}
}
