package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindLatestBoard(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, mtime time.Time) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("elements: []\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
		return path
	}

	now := time.Now()
	write("old.yaml", now.Add(-2*time.Hour))
	newest := write("new.yml", now.Add(-time.Minute))
	write("ignored.txt", now) // newer, wrong extension

	got, err := FindLatestBoard(dir)
	if err != nil {
		t.Fatalf("FindLatestBoard: %v", err)
	}
	if got != newest {
		t.Errorf("Latest board: got %s, want %s", got, newest)
	}
}

func TestFindLatestBoardEmpty(t *testing.T) {
	if _, err := FindLatestBoard(t.TempDir()); err == nil {
		t.Error("Empty directory should fail")
	}
	if _, err := FindLatestBoard(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Missing directory should fail")
	}
}

func TestSnapshot(t *testing.T) {
	snap := Snapshot()
	if snap.Goroutines < 1 {
		t.Errorf("Goroutines: got %d", snap.Goroutines)
	}
	if snap.RSSMB < 0 || snap.CPUPercent < 0 {
		t.Errorf("Negative perf values: %+v", snap)
	}
	t.Logf("Snapshot: %+v", snap)
}
