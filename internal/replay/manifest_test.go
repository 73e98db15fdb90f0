package replay

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redsighxt/inkreplay/internal/board"
	"github.com/redsighxt/inkreplay/internal/config"
)

func TestBuildManifest(t *testing.T) {
	elements := []board.Element{
		strokeAt(100, 100, "l", 1),
		strokeAt(2000, 100, "l", 2),
	}
	shape := board.NewElement(board.TypeRectangle, "l", 3)
	shape.X, shape.Y, shape.Width, shape.Height = 200, 200, 80, 40
	elements = append(elements, shape)

	m, err := BuildManifest(elements, testConfig(config.ModeChronological), testSettings())
	if err != nil {
		t.Fatalf("BuildManifest: %v", err)
	}

	if m.Elements != 3 {
		t.Errorf("Elements: got %d", m.Elements)
	}
	if m.Pages != 2 {
		t.Errorf("Pages: got %d", m.Pages)
	}

	switches, drawn := 0, 0
	for _, ev := range m.Events {
		switch ev.Kind {
		case "page-switch":
			switches++
			if ev.ToPage == "" {
				t.Errorf("Page switch without a target page")
			}
		case "element":
			drawn++
			if ev.ElementID == "" || ev.Type == "" {
				t.Errorf("Element event missing identity: %+v", ev)
			}
			if ev.Duration <= 0 {
				t.Errorf("Element %s has no duration", ev.ElementID)
			}
		}
	}
	if switches != 3 || drawn != 3 {
		t.Errorf("Event mix: %d switches, %d elements", switches, drawn)
	}

	// First switch has no source page.
	if m.Events[0].Kind != "page-switch" || m.Events[0].FromPage != "" {
		t.Errorf("First event should be a sourceless page switch: %+v", m.Events[0])
	}
}

func TestBuildManifestUnknownMode(t *testing.T) {
	if _, err := BuildManifest([]board.Element{strokeAt(0, 0, "l", 1)}, testConfig("sideways"), testSettings()); err == nil {
		t.Error("Unknown mode should fail")
	}
}

func TestWriteManifest(t *testing.T) {
	elements := []board.Element{strokeAt(100, 100, "l", 1)}
	m, err := BuildManifest(elements, testConfig(""), testSettings())
	if err != nil {
		t.Fatalf("BuildManifest: %v", err)
	}

	path := filepath.Join(t.TempDir(), "timeline.yaml")
	if err := WriteManifest(m, path); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"version:", "events:", "kind: page-switch", "kind: element"} {
		if !strings.Contains(out, want) {
			t.Errorf("Manifest YAML missing %q:\n%s", want, out)
		}
	}
}
