package source

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/redsighxt/inkreplay/internal/board"
)

// stubDocument stands in for a real document: fixed page count, solid images.
type stubDocument struct {
	pages  int
	aspect float64
}

func (s *stubDocument) PageCount() int { return s.pages }

func (s *stubDocument) ImportPage(index, dpi int) (image.Image, float64, error) {
	return image.NewRGBA(image.Rect(0, 0, 8, 8)), s.aspect, nil
}

func (s *stubDocument) Close() error { return nil }

func TestImportComponents(t *testing.T) {
	dir := t.TempDir()
	doc := &stubDocument{pages: 3, aspect: 2}

	out, err := ImportComponents(doc, "imports", dir)
	if err != nil {
		t.Fatalf("ImportComponents: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("Expected 3 components, got %d", len(out))
	}

	for i, el := range out {
		if el.Type != board.TypeLibrary {
			t.Errorf("Component %d type: got %s", i, el.Type)
		}
		if el.LayerID != "imports" {
			t.Errorf("Component %d layer: got %s", i, el.LayerID)
		}
		if el.Width != componentWidth {
			t.Errorf("Component %d width: got %.0f", i, el.Width)
		}
		// A 1:2 page keeps its aspect at component scale.
		if el.Height != componentWidth*2 {
			t.Errorf("Component %d height: got %.0f, want %.0f", i, el.Height, componentWidth*2)
		}
		asset := filepath.Join(dir, fmt.Sprintf("component_%03d.png", i))
		if _, err := os.Stat(asset); err != nil {
			t.Errorf("Component %d asset missing: %v", i, err)
		}
	}

	// Left to right, no overlap, strictly increasing creation times.
	for i := 1; i < len(out); i++ {
		if out[i].X <= out[i-1].X+out[i-1].Width {
			t.Errorf("Components %d/%d overlap: x=%.0f after x=%.0f w=%.0f", i-1, i, out[i].X, out[i-1].X, out[i-1].Width)
		}
		if out[i].CreatedAt <= out[i-1].CreatedAt {
			t.Errorf("Creation times must increase, got %d then %d", out[i-1].CreatedAt, out[i].CreatedAt)
		}
	}
}

func TestImportComponentsAspectFallback(t *testing.T) {
	doc := &stubDocument{pages: 1, aspect: 0}
	out, err := ImportComponents(doc, "imports", t.TempDir())
	if err != nil {
		t.Fatalf("ImportComponents: %v", err)
	}
	// A-series fallback: height/width = sqrt(2).
	want := componentWidth * 1.4142
	if got := out[0].Height; got < want-0.01 || got > want+0.01 {
		t.Errorf("Fallback height: got %.2f, want %.2f", got, want)
	}
}

func TestImportComponentsEmptyDocument(t *testing.T) {
	if _, err := ImportComponents(&stubDocument{pages: 0}, "imports", t.TempDir()); err == nil {
		t.Error("Empty document should fail")
	}
}
