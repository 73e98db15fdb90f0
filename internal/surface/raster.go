package surface

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/redsighxt/inkreplay/internal/board"
)

// Raster is an image-backed Surface. Paths are stroked into an RGBA frame
// with golang.org/x/image/vector; Frame() snapshots the current state, which
// is what the frame exporter consumes.
type Raster struct {
	mu    sync.Mutex
	w, h  int
	bg    color.NRGBA
	next  Handle
	paths map[Handle]*rasterPath
	over  map[Handle]*rasterOverlay
	order []Handle

	vx, vy, scale float64

	tints []tintRect
}

type rasterPath struct {
	flat   []board.Point
	style  PathStyle
	reveal float64
	dash   string
}

type rasterOverlay struct {
	spec  OverlaySpec
	state OverlayState
}

// tintRect is a translucent world-space wash used by the debug page tint.
type tintRect struct {
	x, y, w, h float64
	col        color.NRGBA
}

func NewRaster(width, height int, background string) *Raster {
	bg := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	if background != "" {
		bg = ParseColor(background)
	}
	return &Raster{
		w:     width,
		h:     height,
		bg:    bg,
		paths: make(map[Handle]*rasterPath),
		over:  make(map[Handle]*rasterOverlay),
		scale: 1,
	}
}

func (r *Raster) Size() (int, int) { return r.w, r.h }

// AddPageTint registers a translucent world-space wash over one virtual page,
// the explicit replacement for the old global debug-tint toggle.
func (r *Raster) AddPageTint(x, y, w, h float64, col string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := ParseColor(col)
	c.A = 0x28
	r.tints = append(r.tints, tintRect{x: x, y: y, w: w, h: h, col: c})
}

func (r *Raster) AddPath(data string, flat []board.Point, style PathStyle) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(flat) == 0 {
		return 0, fmt.Errorf("path has no geometry")
	}
	r.next++
	r.paths[r.next] = &rasterPath{flat: flat, style: style, dash: style.DashStyle}
	r.order = append(r.order, r.next)
	return r.next, nil
}

func (r *Raster) SetReveal(h Handle, fraction float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.paths[h]
	if !ok {
		return fmt.Errorf("unknown path handle %d", h)
	}
	p.reveal = math.Max(0, math.Min(1, fraction))
	return nil
}

func (r *Raster) SetDash(h Handle, dash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.paths[h]; ok {
		p.dash = dash
	}
}

func (r *Raster) AddOverlay(spec OverlaySpec) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.over[r.next] = &rasterOverlay{spec: spec, state: OverlayState{Opacity: spec.Opacity, Scale: spec.Scale}}
	r.order = append(r.order, r.next)
	return r.next, nil
}

func (r *Raster) UpdateOverlay(h Handle, st OverlayState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.over[h]; ok {
		o.state = st
	}
}

func (r *Raster) Remove(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.paths, h)
	delete(r.over, h)
	for i, oh := range r.order {
		if oh == h {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Raster) SetViewport(x, y, scale float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if scale <= 0 {
		scale = 1
	}
	r.vx, r.vy, r.scale = x, y, scale
}

func (r *Raster) Viewport() (float64, float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vx, r.vy, r.scale
}

func (r *Raster) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = make(map[Handle]*rasterPath)
	r.over = make(map[Handle]*rasterOverlay)
	r.order = nil
}

// Frame renders the current surface state into a fresh RGBA image.
func (r *Raster) Frame() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, r.w, r.h))
	fillRect(img, 0, 0, float64(r.w), float64(r.h), r.bg, 1, false)

	for _, t := range r.tints {
		fx, fy := r.toFrame(t.x, t.y)
		fillRect(img, fx, fy, t.w*r.scale, t.h*r.scale, t.col, float64(t.col.A)/255, false)
	}

	for _, h := range r.order {
		if p, ok := r.paths[h]; ok {
			r.drawPath(img, p)
		}
	}
	for _, h := range r.order {
		if o, ok := r.over[h]; ok {
			r.drawOverlay(img, o)
		}
	}
	return img
}

func (r *Raster) toFrame(wx, wy float64) (float64, float64) {
	return (wx - r.vx) * r.scale, (wy - r.vy) * r.scale
}

func (r *Raster) drawPath(img *image.RGBA, p *rasterPath) {
	if p.reveal <= 0 {
		return
	}

	// Viewport transform, then cut the polyline at the revealed arc length.
	pts := make([]board.Point, len(p.flat))
	for i, wp := range p.flat {
		x, y := r.toFrame(wp.X, wp.Y)
		pts[i] = board.Point{X: x, Y: y}
	}
	prefix := revealPrefix(pts, p.reveal)
	if len(prefix) == 0 {
		return
	}

	width := p.style.StrokeWidth * r.scale
	if width < 1 {
		width = 1
	}

	col := ParseColor(p.style.StrokeColor)
	opacity := p.style.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}

	runs := dashRuns(prefix, p.dash, width)
	for _, run := range runs {
		strokePolyline(img, run, width, col, opacity, p.style.Multiply)
	}
}

func (r *Raster) drawOverlay(img *image.RGBA, o *rasterOverlay) {
	st := o.state
	if st.Opacity <= 0 {
		return
	}
	scale := st.Scale
	if scale <= 0 {
		scale = 1
	}
	col := ParseColor(o.spec.Color)

	w := float64(r.w) * scale
	h := float64(r.h) * scale
	x := (float64(r.w)-w)/2 + st.OffsetX
	y := (float64(r.h)-h)/2 + st.OffsetY

	switch o.spec.Kind {
	case OverlayLabel:
		// Compact label box in the bottom-left corner.
		boxW, boxH := 7.0*float64(len(o.spec.Text))+24, 28.0
		bx, by := 24+st.OffsetX, float64(r.h)-boxH-24+st.OffsetY
		fillRect(img, bx, by, boxW, boxH, col, st.Opacity*0.85, false)
		drawLabel(img, int(bx)+12, int(by)+18, o.spec.Text)
	default:
		fillRect(img, x, y, w, h, col, st.Opacity, false)
	}
}

// revealPrefix returns the polyline prefix covering fraction of the total
// arc length, splitting the final segment when the cut lands mid-segment.
func revealPrefix(pts []board.Point, fraction float64) []board.Point {
	if fraction >= 1 || len(pts) < 2 {
		return pts
	}
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += dist(pts[i-1], pts[i])
	}
	if total == 0 {
		return pts
	}

	target := total * fraction
	out := []board.Point{pts[0]}
	for i := 1; i < len(pts); i++ {
		d := dist(pts[i-1], pts[i])
		if d == 0 {
			continue
		}
		if target >= d {
			out = append(out, pts[i])
			target -= d
			continue
		}
		t := target / d
		out = append(out, board.Point{
			X: pts[i-1].X + (pts[i].X-pts[i-1].X)*t,
			Y: pts[i-1].Y + (pts[i].Y-pts[i-1].Y)*t,
		})
		break
	}
	return out
}

// dashRuns splits a polyline into the on-runs of its dash pattern. Solid
// input comes back as a single run.
func dashRuns(pts []board.Point, dash string, width float64) [][]board.Point {
	var on, off float64
	switch dash {
	case board.DashDashed:
		on, off = width*4, width*2
	case board.DashDotted:
		on, off = width*0.8, width*1.6
	default:
		return [][]board.Point{pts}
	}
	if len(pts) < 2 {
		return [][]board.Point{pts}
	}

	var runs [][]board.Point
	var cur []board.Point
	drawing := true
	remain := on

	cur = append(cur, pts[0])
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		segLen := dist(a, b)
		pos := 0.0
		for segLen-pos > remain {
			pos += remain
			t := pos / segLen
			p := board.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
			if drawing {
				cur = append(cur, p)
				runs = append(runs, cur)
				cur = nil
				remain = off
			} else {
				cur = []board.Point{p}
				remain = on
			}
			drawing = !drawing
		}
		remain -= segLen - pos
		if drawing {
			cur = append(cur, b)
		}
	}
	if drawing && len(cur) > 1 {
		runs = append(runs, cur)
	}
	return runs
}

// strokePolyline rasterizes a thick polyline. Each segment becomes a quad and
// each joint a small square, which reads as a miter-less join at stroke sizes.
func strokePolyline(img *image.RGBA, pts []board.Point, width float64, col color.NRGBA, opacity float64, multiply bool) {
	if len(pts) == 0 {
		return
	}
	ras := vector.NewRasterizer(img.Bounds().Dx(), img.Bounds().Dy())
	half := width / 2

	if len(pts) == 1 {
		addQuad(ras,
			pts[0].X-half, pts[0].Y-half,
			pts[0].X+half, pts[0].Y-half,
			pts[0].X+half, pts[0].Y+half,
			pts[0].X-half, pts[0].Y+half)
	}

	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		// Unit normal scaled to half width.
		nx, ny := -dy/l*half, dx/l*half
		addQuad(ras,
			a.X+nx, a.Y+ny,
			b.X+nx, b.Y+ny,
			b.X-nx, b.Y-ny,
			a.X-nx, a.Y-ny)
		// Joint cap.
		addQuad(ras,
			b.X-half, b.Y-half,
			b.X+half, b.Y-half,
			b.X+half, b.Y+half,
			b.X-half, b.Y+half)
	}

	cov := image.NewAlpha(img.Bounds())
	ras.Draw(cov, cov.Bounds(), image.Opaque, image.Point{})
	composite(img, cov, col, opacity, multiply)
}

func addQuad(ras *vector.Rasterizer, x0, y0, x1, y1, x2, y2, x3, y3 float64) {
	ras.MoveTo(float32(x0), float32(y0))
	ras.LineTo(float32(x1), float32(y1))
	ras.LineTo(float32(x2), float32(y2))
	ras.LineTo(float32(x3), float32(y3))
	ras.ClosePath()
}

// composite blends a coverage mask over the frame: source-over normally,
// per-channel multiply for highlighter ink.
func composite(img *image.RGBA, cov *image.Alpha, col color.NRGBA, opacity float64, multiply bool) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := float64(cov.AlphaAt(x, y).A) / 255 * opacity
			if a == 0 {
				continue
			}
			dst := img.RGBAAt(x, y)
			var sr, sg, sb float64
			if multiply {
				sr = float64(dst.R) * float64(col.R) / 255
				sg = float64(dst.G) * float64(col.G) / 255
				sb = float64(dst.B) * float64(col.B) / 255
			} else {
				sr, sg, sb = float64(col.R), float64(col.G), float64(col.B)
			}
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(float64(dst.R)*(1-a) + sr*a),
				G: uint8(float64(dst.G)*(1-a) + sg*a),
				B: uint8(float64(dst.B)*(1-a) + sb*a),
				A: 0xff,
			})
		}
	}
}

func fillRect(img *image.RGBA, x, y, w, h float64, col color.NRGBA, opacity float64, multiply bool) {
	if w <= 0 || h <= 0 {
		return
	}
	ras := vector.NewRasterizer(img.Bounds().Dx(), img.Bounds().Dy())
	addQuad(ras, x, y, x+w, y, x+w, y+h, x, y+h)
	cov := image.NewAlpha(img.Bounds())
	ras.Draw(cov, cov.Bounds(), image.Opaque, image.Point{})
	composite(img, cov, col, opacity, multiply)
}

func drawLabel(img *image.RGBA, x, y int, text string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func dist(a, b board.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
