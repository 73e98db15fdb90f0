package board

import (
	"github.com/google/uuid"
)

// Element types. A closed set: the drawing tool never produces anything else.
const (
	TypePath        = "path"
	TypeHighlighter = "highlighter"
	TypeRectangle   = "rectangle"
	TypeEllipse     = "ellipse"
	TypeDiamond     = "diamond"
	TypeLine        = "line"
	TypeArrow       = "arrow"
	TypeText        = "text"
	TypeLibrary     = "library-component"
)

// Stroke dash styles.
const (
	DashSolid  = "solid"
	DashDashed = "dashed"
	DashDotted = "dotted"
)

// Point is a canvas-space coordinate.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Style carries the authored appearance of an element.
type Style struct {
	StrokeColor string  `yaml:"stroke_color"`
	StrokeWidth float64 `yaml:"stroke_width"`
	FillColor   string  `yaml:"fill_color,omitempty"`
	DashStyle   string  `yaml:"dash_style,omitempty"` // solid when empty
	Opacity     float64 `yaml:"opacity"`              // 0..1
}

// Element is one user-drawn object. Geometry is either a position+size
// (shapes) or an ordered point sequence (paths, lines, arrows).
type Element struct {
	ID        string `yaml:"id"`
	LayerID   string `yaml:"layer_id"`
	CreatedAt int64  `yaml:"created_at"` // unix milliseconds, chronological sort key
	Type      string `yaml:"type"`

	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`

	Points []Point `yaml:"points,omitempty"`
	// ControlPoints bend a line/arrow into a cubic bezier when present.
	ControlPoints []Point `yaml:"control_points,omitempty"`
	// EmbeddedPath is vector path markup carried by library components.
	EmbeddedPath string `yaml:"embedded_path,omitempty"`
	Text         string `yaml:"text,omitempty"`

	Style Style `yaml:"style"`
}

// NewElement creates an element of the given type with a fresh ID.
func NewElement(typ, layerID string, createdAt int64) Element {
	return Element{
		ID:        uuid.NewString(),
		LayerID:   layerID,
		CreatedAt: createdAt,
		Type:      typ,
		Style:     Style{StrokeColor: "#1a1a1a", StrokeWidth: 2, Opacity: 1},
	}
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	X, Y, W, H float64
}

// Bounds returns the element's axis-aligned bounding box. Point-sequence
// elements use the hull of their points; sized shapes use position+size.
func (e *Element) Bounds() Rect {
	if len(e.Points) > 0 {
		minX, minY := e.Points[0].X, e.Points[0].Y
		maxX, maxY := minX, minY
		for _, p := range e.Points[1:] {
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
		return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
	}
	return Rect{X: e.X, Y: e.Y, W: e.Width, H: e.Height}
}

// Center returns the representative point used for page assignment: bbox
// midpoint for point sequences, geometric center for sized shapes, and the
// raw position for point-less zero-size elements.
func (e *Element) Center() Point {
	if len(e.Points) > 0 {
		b := e.Bounds()
		return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
	}
	if e.Width == 0 && e.Height == 0 {
		return Point{X: e.X, Y: e.Y}
	}
	return Point{X: e.X + e.Width/2, Y: e.Y + e.Height/2}
}

// IsFreehand reports whether the element is a pen-style stroke (path or
// highlighter), the types the speed multiplier and true-speed mode apply to.
func (e *Element) IsFreehand() bool {
	return e.Type == TypePath || e.Type == TypeHighlighter
}
