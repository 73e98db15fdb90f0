// Package surface abstracts the drawable target a replay renders onto.
// Any 2D backend works: the raster implementation draws into an RGBA image,
// the memory implementation records operations for tests.
package surface

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/redsighxt/inkreplay/internal/board"
)

// Handle identifies a node injected into the surface (a path or an overlay).
type Handle int

// PathStyle is the resolved appearance of a path node.
type PathStyle struct {
	StrokeColor string
	StrokeWidth float64
	DashStyle   string  // solid/dashed/dotted, static authored pattern
	Opacity     float64 // 0..1
	Multiply    bool    // highlighter blend: overlapping strokes darken
}

// Overlay kinds.
const (
	OverlayRect  = "rect"
	OverlayLabel = "label"
)

// OverlaySpec describes a transient overlay node (transition pulse rectangle
// or page indicator label). Overlays live in frame space, not world space.
type OverlaySpec struct {
	Kind    string
	Color   string
	Text    string
	Opacity float64
	Scale   float64 // 1 = full frame
}

// OverlayState is the animated portion of an overlay.
type OverlayState struct {
	Opacity          float64
	OffsetX, OffsetY float64 // frame-space translate
	Scale            float64
}

// Surface is the drawable-surface contract the replay engine drives.
// Viewport translation/scale applies to path nodes only; overlays stay glued
// to the frame.
type Surface interface {
	// AddPath injects a path node. data is the vector path markup, flat its
	// flattened polyline in world space (used by raster backends).
	AddPath(data string, flat []board.Point, style PathStyle) (Handle, error)
	// SetReveal sets the revealed arc-length fraction in [0,1]. This is the
	// dash-offset trick: 0 fully hidden, 1 fully drawn.
	SetReveal(h Handle, fraction float64) error
	// SetDash restores the authored dash pattern once fully revealed.
	SetDash(h Handle, dash string)

	AddOverlay(spec OverlaySpec) (Handle, error)
	UpdateOverlay(h Handle, st OverlayState)

	Remove(h Handle)
	SetViewport(x, y, scale float64)
	Viewport() (x, y, scale float64)
	// Clear removes every injected node. Idempotent.
	Clear()
}

// ParseColor parses #rgb, #rrggbb or #rrggbbaa hex markup. Unparseable input
// falls back to opaque black so a malformed style never aborts a replay.
func ParseColor(s string) color.NRGBA {
	c := color.NRGBA{A: 0xff}
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3:
		if v, err := strconv.ParseUint(h, 16, 16); err == nil {
			c.R = uint8((v >> 8 & 0xf) * 17)
			c.G = uint8((v >> 4 & 0xf) * 17)
			c.B = uint8((v & 0xf) * 17)
		}
	case 6:
		if v, err := strconv.ParseUint(h, 16, 32); err == nil {
			c.R = uint8(v >> 16)
			c.G = uint8(v >> 8)
			c.B = uint8(v)
		}
	case 8:
		if v, err := strconv.ParseUint(h, 16, 64); err == nil {
			c.R = uint8(v >> 24)
			c.G = uint8(v >> 16)
			c.B = uint8(v >> 8)
			c.A = uint8(v)
		}
	}
	return c
}

// FormatColor renders a color back to #rrggbb markup.
func FormatColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
