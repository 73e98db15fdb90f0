package board

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBounds(t *testing.T) {
	tests := []struct {
		name string
		el   Element
		want Rect
	}{
		{
			name: "sized shape",
			el:   Element{Type: TypeRectangle, X: 10, Y: 20, Width: 100, Height: 50},
			want: Rect{X: 10, Y: 20, W: 100, H: 50},
		},
		{
			name: "point hull",
			el: Element{Type: TypePath, Points: []Point{
				{X: 50, Y: 10}, {X: -5, Y: 80}, {X: 120, Y: 40},
			}},
			want: Rect{X: -5, Y: 10, W: 125, H: 70},
		},
		{
			name: "points win over position",
			el: Element{Type: TypeLine, X: 999, Y: 999, Points: []Point{
				{X: 0, Y: 0}, {X: 10, Y: 10},
			}},
			want: Rect{X: 0, Y: 0, W: 10, H: 10},
		},
	}
	for _, tt := range tests {
		if got := tt.el.Bounds(); got != tt.want {
			t.Errorf("%s: Bounds() = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestCenter(t *testing.T) {
	shape := Element{Type: TypeEllipse, X: 100, Y: 100, Width: 200, Height: 100}
	if got := shape.Center(); got != (Point{X: 200, Y: 150}) {
		t.Errorf("Shape center: got %+v", got)
	}

	stroke := Element{Type: TypePath, Points: []Point{{X: 0, Y: 0}, {X: 100, Y: 60}}}
	if got := stroke.Center(); got != (Point{X: 50, Y: 30}) {
		t.Errorf("Stroke center: got %+v", got)
	}

	text := Element{Type: TypeText, X: 42, Y: 17}
	if got := text.Center(); got != (Point{X: 42, Y: 17}) {
		t.Errorf("Zero-size center should fall back to position, got %+v", got)
	}
}

func TestIsFreehand(t *testing.T) {
	if !(&Element{Type: TypePath}).IsFreehand() {
		t.Error("path should be freehand")
	}
	if !(&Element{Type: TypeHighlighter}).IsFreehand() {
		t.Error("highlighter should be freehand")
	}
	if (&Element{Type: TypeArrow}).IsFreehand() {
		t.Error("arrow is not freehand")
	}
}

func TestNewElement(t *testing.T) {
	a := NewElement(TypePath, "layer-1", 42)
	b := NewElement(TypePath, "layer-1", 42)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("NewElement must assign unique non-empty IDs: %q vs %q", a.ID, b.ID)
	}
	if a.CreatedAt != 42 || a.LayerID != "layer-1" || a.Type != TypePath {
		t.Errorf("NewElement fields: %+v", a)
	}
	if a.Style.StrokeColor == "" || a.Style.StrokeWidth <= 0 {
		t.Errorf("NewElement should seed a usable style, got %+v", a.Style)
	}
}

func TestBoardRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yaml")

	el := NewElement(TypeArrow, "ink", 1700000000000)
	el.Points = []Point{{X: 0, Y: 0}, {X: 120, Y: 40}}
	el.ControlPoints = []Point{{X: 60, Y: -30}}
	el.Style.DashStyle = DashDashed

	in := &Board{
		Version: "1",
		Name:    "demo",
		Layers:  []Layer{{ID: "ink", Name: "Ink", Index: 0}},
		Elements: []Element{
			el,
			NewElement(TypeText, "ink", 1700000000001),
		},
	}
	if err := WriteBoard(in, path); err != nil {
		t.Fatalf("WriteBoard: %v", err)
	}

	out, err := ReadBoard(path)
	if err != nil {
		t.Fatalf("ReadBoard: %v", err)
	}
	if out.Name != in.Name || len(out.Elements) != 2 || len(out.Layers) != 1 {
		t.Fatalf("Round trip lost structure: %+v", out)
	}
	got := out.Elements[0]
	if got.ID != el.ID || got.Type != TypeArrow || got.CreatedAt != el.CreatedAt {
		t.Errorf("Element identity lost: %+v", got)
	}
	if len(got.ControlPoints) != 1 || got.ControlPoints[0] != el.ControlPoints[0] {
		t.Errorf("Control points lost: %+v", got.ControlPoints)
	}
	if got.Style.DashStyle != DashDashed {
		t.Errorf("Dash style lost: %q", got.Style.DashStyle)
	}
}

func TestReadBoardErrors(t *testing.T) {
	if _, err := ReadBoard(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Missing file should fail")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("elements: {not: [a, list"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBoard(bad); err == nil {
		t.Error("Malformed YAML should fail")
	}
}
