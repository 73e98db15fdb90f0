package stroke

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redsighxt/inkreplay/internal/board"
)

// Arrowhead geometry: two short segments splayed ±30° off the shaft, 10
// canvas units long.
const (
	arrowheadLength = 10.0
	arrowheadAngle  = math.Pi / 6
)

// curveSteps controls how finely quadratic/cubic segments and ellipse arcs
// are flattened for length measurement and rasterization.
const curveSteps = 12

// Path is a renderable vector path: SVG-style markup plus the flattened
// polyline used for arc-length math and raster stroking.
type Path struct {
	Data string
	Flat []board.Point
}

// Empty reports whether the element produced no drawable geometry.
func (p *Path) Empty() bool {
	return p.Data == "" || len(p.Flat) < 1
}

// Length returns the total arc length of the flattened path.
func (p *Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p.Flat); i++ {
		total += math.Hypot(p.Flat[i].X-p.Flat[i-1].X, p.Flat[i].Y-p.Flat[i-1].Y)
	}
	return total
}

// PathFor converts an element into its vector path. Pure: one branch per
// element type. Unknown types and degenerate geometry return an empty path;
// the caller skips those and keeps the timeline moving.
func PathFor(el *board.Element) Path {
	switch el.Type {
	case board.TypePath, board.TypeHighlighter:
		return freehandPath(el.Points)
	case board.TypeRectangle, board.TypeText:
		// Text reveals as its bounding-box outline; the glyphs themselves are
		// the editor's concern.
		b := el.Bounds()
		return rectPath(b)
	case board.TypeEllipse:
		return ellipsePath(el.Bounds())
	case board.TypeDiamond:
		return diamondPath(el.Bounds())
	case board.TypeLine, board.TypeArrow:
		return linePath(el)
	case board.TypeLibrary:
		if el.EmbeddedPath != "" {
			if p, err := parseMarkup(el.EmbeddedPath); err == nil && !p.Empty() {
				return p
			}
		}
		return rectPath(el.Bounds())
	default:
		return Path{}
	}
}

// freehandPath smooths a multi-point stroke with quadratic curves through
// segment midpoints: each intermediate point is a control point, the curve
// target is the midpoint to the next point. Recorded points are approximated,
// not interpolated exactly.
func freehandPath(pts []board.Point) Path {
	if len(pts) < 2 {
		return Path{}
	}

	var d strings.Builder
	flat := []board.Point{pts[0]}
	fmt.Fprintf(&d, "M %s %s", num(pts[0].X), num(pts[0].Y))

	if len(pts) == 2 {
		fmt.Fprintf(&d, " L %s %s", num(pts[1].X), num(pts[1].Y))
		flat = append(flat, pts[1])
		return Path{Data: d.String(), Flat: flat}
	}

	cur := pts[0]
	for i := 1; i < len(pts)-1; i++ {
		mid := board.Point{X: (pts[i].X + pts[i+1].X) / 2, Y: (pts[i].Y + pts[i+1].Y) / 2}
		fmt.Fprintf(&d, " Q %s %s %s %s", num(pts[i].X), num(pts[i].Y), num(mid.X), num(mid.Y))
		flat = appendQuad(flat, cur, pts[i], mid)
		cur = mid
	}
	last := pts[len(pts)-1]
	fmt.Fprintf(&d, " L %s %s", num(last.X), num(last.Y))
	flat = append(flat, last)

	return Path{Data: d.String(), Flat: flat}
}

// rectPath is a closed 4-point polygon over the bounding box.
func rectPath(b board.Rect) Path {
	if b.W == 0 && b.H == 0 {
		return Path{}
	}
	d := fmt.Sprintf("M %s %s L %s %s L %s %s L %s %s Z",
		num(b.X), num(b.Y),
		num(b.X+b.W), num(b.Y),
		num(b.X+b.W), num(b.Y+b.H),
		num(b.X), num(b.Y+b.H))
	flat := []board.Point{
		{X: b.X, Y: b.Y},
		{X: b.X + b.W, Y: b.Y},
		{X: b.X + b.W, Y: b.Y + b.H},
		{X: b.X, Y: b.Y + b.H},
		{X: b.X, Y: b.Y},
	}
	return Path{Data: d, Flat: flat}
}

// ellipsePath builds two 180° arcs forming the full ellipse.
func ellipsePath(b board.Rect) Path {
	if b.W == 0 || b.H == 0 {
		return Path{}
	}
	cx, cy := b.X+b.W/2, b.Y+b.H/2
	rx, ry := b.W/2, b.H/2

	d := fmt.Sprintf("M %s %s A %s %s 0 1 0 %s %s A %s %s 0 1 0 %s %s",
		num(cx-rx), num(cy),
		num(rx), num(ry), num(cx+rx), num(cy),
		num(rx), num(ry), num(cx-rx), num(cy))

	n := curveSteps * 4
	flat := make([]board.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		// Start at the left extreme to match the markup.
		a := math.Pi + 2*math.Pi*float64(i)/float64(n)
		flat = append(flat, board.Point{X: cx + rx*math.Cos(a), Y: cy + ry*math.Sin(a)})
	}
	return Path{Data: d, Flat: flat}
}

// diamondPath connects the midpoints of each bounding-box edge.
func diamondPath(b board.Rect) Path {
	if b.W == 0 && b.H == 0 {
		return Path{}
	}
	top := board.Point{X: b.X + b.W/2, Y: b.Y}
	right := board.Point{X: b.X + b.W, Y: b.Y + b.H/2}
	bottom := board.Point{X: b.X + b.W/2, Y: b.Y + b.H}
	left := board.Point{X: b.X, Y: b.Y + b.H/2}

	d := fmt.Sprintf("M %s %s L %s %s L %s %s L %s %s Z",
		num(top.X), num(top.Y),
		num(right.X), num(right.Y),
		num(bottom.X), num(bottom.Y),
		num(left.X), num(left.Y))
	return Path{Data: d, Flat: []board.Point{top, right, bottom, left, top}}
}

// linePath renders a line or arrow: straight segment, or a cubic bezier when
// control points are present. Arrows append a two-segment head at the end.
func linePath(el *board.Element) Path {
	if len(el.Points) < 2 {
		return Path{}
	}
	start := el.Points[0]
	end := el.Points[len(el.Points)-1]

	var d strings.Builder
	flat := []board.Point{start}
	fmt.Fprintf(&d, "M %s %s", num(start.X), num(start.Y))

	// Direction used for the arrowhead: into the endpoint.
	dirFrom := start

	if len(el.ControlPoints) > 0 {
		c1 := el.ControlPoints[0]
		c2 := c1
		if len(el.ControlPoints) > 1 {
			c2 = el.ControlPoints[1]
		}
		fmt.Fprintf(&d, " C %s %s %s %s %s %s",
			num(c1.X), num(c1.Y), num(c2.X), num(c2.Y), num(end.X), num(end.Y))
		flat = appendCubic(flat, start, c1, c2, end)
		dirFrom = c2
	} else {
		fmt.Fprintf(&d, " L %s %s", num(end.X), num(end.Y))
		flat = append(flat, end)
	}

	if el.Type == board.TypeArrow {
		theta := math.Atan2(end.Y-dirFrom.Y, end.X-dirFrom.X)
		left := board.Point{
			X: end.X - arrowheadLength*math.Cos(theta-arrowheadAngle),
			Y: end.Y - arrowheadLength*math.Sin(theta-arrowheadAngle),
		}
		right := board.Point{
			X: end.X - arrowheadLength*math.Cos(theta+arrowheadAngle),
			Y: end.Y - arrowheadLength*math.Sin(theta+arrowheadAngle),
		}
		fmt.Fprintf(&d, " M %s %s L %s %s L %s %s",
			num(left.X), num(left.Y), num(end.X), num(end.Y), num(right.X), num(right.Y))
		flat = append(flat, left, end, right)
	}

	return Path{Data: d.String(), Flat: flat}
}

func appendQuad(flat []board.Point, p0, c, p1 board.Point) []board.Point {
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		flat = append(flat, board.Point{
			X: u*u*p0.X + 2*u*t*c.X + t*t*p1.X,
			Y: u*u*p0.Y + 2*u*t*c.Y + t*t*p1.Y,
		})
	}
	return flat
}

func appendCubic(flat []board.Point, p0, c1, c2, p1 board.Point) []board.Point {
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		flat = append(flat, board.Point{
			X: u*u*u*p0.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*p1.X,
			Y: u*u*u*p0.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*p1.Y,
		})
	}
	return flat
}

// parseMarkup flattens embedded vector markup (absolute M/L/Q/C/Z commands,
// the subset library components carry). Anything it cannot read is an error
// and the caller falls back to the bounding box.
func parseMarkup(markup string) (Path, error) {
	fields := tokenize(markup)
	var flat []board.Point
	var cur, first board.Point
	started := false

	readPoint := func(i int) (board.Point, int, error) {
		if i+1 >= len(fields) {
			return board.Point{}, i, fmt.Errorf("truncated path markup")
		}
		x, err1 := strconv.ParseFloat(fields[i], 64)
		y, err2 := strconv.ParseFloat(fields[i+1], 64)
		if err1 != nil || err2 != nil {
			return board.Point{}, i, fmt.Errorf("bad coordinate pair %q %q", fields[i], fields[i+1])
		}
		return board.Point{X: x, Y: y}, i + 2, nil
	}

	i := 0
	for i < len(fields) {
		cmd := fields[i]
		i++
		var err error
		switch cmd {
		case "M":
			cur, i, err = readPoint(i)
			if err != nil {
				return Path{}, err
			}
			first = cur
			started = true
			flat = append(flat, cur)
		case "L":
			var p board.Point
			p, i, err = readPoint(i)
			if err != nil {
				return Path{}, err
			}
			flat = append(flat, p)
			cur = p
		case "Q":
			var c, p board.Point
			c, i, err = readPoint(i)
			if err != nil {
				return Path{}, err
			}
			p, i, err = readPoint(i)
			if err != nil {
				return Path{}, err
			}
			flat = appendQuad(flat, cur, c, p)
			cur = p
		case "C":
			var c1, c2, p board.Point
			c1, i, err = readPoint(i)
			if err != nil {
				return Path{}, err
			}
			c2, i, err = readPoint(i)
			if err != nil {
				return Path{}, err
			}
			p, i, err = readPoint(i)
			if err != nil {
				return Path{}, err
			}
			flat = appendCubic(flat, cur, c1, c2, p)
			cur = p
		case "Z", "z":
			if started {
				flat = append(flat, first)
				cur = first
			}
		default:
			return Path{}, fmt.Errorf("unsupported path command %q", cmd)
		}
	}

	if len(flat) < 2 {
		return Path{}, fmt.Errorf("markup has no segments")
	}
	return Path{Data: markup, Flat: flat}, nil
}

func tokenize(markup string) []string {
	r := strings.NewReplacer(",", " ", "\n", " ", "\t", " ")
	return strings.Fields(r.Replace(markup))
}

// num formats a coordinate compactly (no trailing zeros).
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
