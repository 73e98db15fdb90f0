package replay

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redsighxt/inkreplay/internal/anim"
	"github.com/redsighxt/inkreplay/internal/board"
	"github.com/redsighxt/inkreplay/internal/config"
	"github.com/redsighxt/inkreplay/internal/pages"
	"github.com/redsighxt/inkreplay/internal/surface"
)

func testConfig(mode string) *config.Config {
	return &config.Config{
		Mode:               mode,
		Transition:         config.TransitionNone,
		TransitionDuration: 0.1,
		PanDuration:        0.1,
		FPS:                30,
	}
}

func testSettings() config.Settings {
	s := config.DefaultSettings()
	s.ElementDelay = 0.05
	return s
}

func strokeAt(x, y float64, layer string, ts int64) board.Element {
	el := board.NewElement(board.TypePath, layer, ts)
	el.Points = []board.Point{{X: x, Y: y}, {X: x + 50, Y: y + 50}}
	return el
}

func TestRunPreconditions(t *testing.T) {
	o := New(nil, anim.Instant(30))
	if err := o.Run(context.Background(), []board.Element{strokeAt(0, 0, "l", 1)}, testConfig(""), testSettings(), nil); err == nil {
		t.Error("Run without a surface should fail")
	}

	o = New(surface.NewMemory(), anim.Instant(30))
	if err := o.Run(context.Background(), nil, testConfig(""), testSettings(), nil); err == nil {
		t.Error("Run with no elements should fail")
	}
}

func TestRunProgressMonotone(t *testing.T) {
	mem := surface.NewMemory()
	o := New(mem, anim.Instant(30))

	elements := []board.Element{
		strokeAt(100, 100, "l", 1),
		strokeAt(2000, 100, "l", 2), // crosses onto page-0-1
		strokeAt(200, 200, "l", 3),
		strokeAt(300, 300, "l", 4),
	}

	var progress []float64
	err := o.Run(context.Background(), elements, testConfig(config.ModeChronological), testSettings(), func(p float64) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(progress) != len(elements) {
		t.Fatalf("Progress fires once per element: expected %d calls, got %d", len(elements), len(progress))
	}
	prev := 0.0
	for _, p := range progress {
		if p < prev {
			t.Errorf("Progress regressed: %.2f after %.2f", p, prev)
		}
		if p < 0 || p > 100 {
			t.Errorf("Progress out of range: %.2f", p)
		}
		prev = p
	}
	if progress[len(progress)-1] != 100 {
		t.Errorf("Final progress must be exactly 100, got %.4f", progress[len(progress)-1])
	}

	if mem.PathCount() != len(elements) {
		t.Errorf("Expected %d drawn paths, got %d", len(elements), mem.PathCount())
	}
}

func TestRunPageChangeCallback(t *testing.T) {
	mem := surface.NewMemory()
	o := New(mem, anim.Instant(30))

	var visited []string
	o.OnPageChange = func(p *pages.Page) {
		visited = append(visited, p.ID)
	}

	elements := []board.Element{
		strokeAt(100, 100, "l", 1),
		strokeAt(2000, 100, "l", 2),
		strokeAt(200, 200, "l", 3),
	}
	if err := o.Run(context.Background(), elements, testConfig(config.ModeChronological), testSettings(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"page-0-0", "page-0-1", "page-0-0"}
	if len(visited) != len(want) {
		t.Fatalf("Page changes: expected %v, got %v", want, visited)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("Page change %d: got %s, want %s", i, visited[i], want[i])
		}
	}
}

func TestRunPageModeGroups(t *testing.T) {
	mem := surface.NewMemory()
	o := New(mem, anim.Instant(30))

	var visited []string
	o.OnPageChange = func(p *pages.Page) { visited = append(visited, p.ID) }

	// Interleaved timestamps across two tiles; page mode untangles them.
	elements := []board.Element{
		strokeAt(100, 100, "l", 1),
		strokeAt(2000, 100, "l", 2),
		strokeAt(200, 200, "l", 3),
	}
	if err := o.Run(context.Background(), elements, testConfig(config.ModePageMode), testSettings(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(visited) != 2 {
		t.Fatalf("Page mode visits each page once, got %v", visited)
	}
}

func TestRunOriginBox(t *testing.T) {
	mem := surface.NewMemory()
	o := New(mem, anim.Instant(30))

	elements := []board.Element{
		strokeAt(100, 100, "l", 1),
		strokeAt(5000, 100, "l", 2), // off the origin tile: filtered out
	}
	if err := o.Run(context.Background(), elements, testConfig(config.ModeOriginBox), testSettings(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if mem.PathCount() != 1 {
		t.Errorf("Origin-box mode should draw only origin elements, got %d", mem.PathCount())
	}

	// Viewport never leaves the origin.
	if x, y, _ := mem.Viewport(); x != 0 || y != 0 {
		t.Errorf("Origin-box viewport moved to (%.0f,%.0f)", x, y)
	}

	// All elements off the origin tile is a precondition failure.
	away := []board.Element{strokeAt(5000, 100, "l", 1)}
	if err := o.Run(context.Background(), away, testConfig(config.ModeOriginBox), testSettings(), nil); err == nil {
		t.Error("Origin-box with an empty origin tile should fail")
	}
}

func TestRunUnknownMode(t *testing.T) {
	o := New(surface.NewMemory(), anim.Instant(30))
	elements := []board.Element{strokeAt(0, 0, "l", 1)}
	if err := o.Run(context.Background(), elements, testConfig("spiral"), testSettings(), nil); err == nil {
		t.Error("Unknown mode should fail")
	}
}

func TestRunRejectsConcurrent(t *testing.T) {
	mem := surface.NewMemory()
	o := New(mem, anim.New(30))

	elements := []board.Element{strokeAt(100, 100, "l", 1), strokeAt(200, 200, "l", 2)}
	started := make(chan struct{}, 1)
	done := make(chan error, 1)

	blockOnce := anim.WithWait(30, func(ctx context.Context, d time.Duration) error {
		select {
		case started <- struct{}{}:
		default:
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
			return nil
		}
	})
	o.animator = blockOnce

	go func() {
		done <- o.Run(context.Background(), elements, testConfig(""), testSettings(), nil)
	}()
	<-started

	if err := o.Run(context.Background(), elements, testConfig(""), testSettings(), nil); err == nil {
		t.Error("Second Run while one is active should fail fast")
	}

	o.Stop()
	if err := <-done; err != nil {
		t.Fatalf("Stopped run should finish quietly, got %v", err)
	}
}

func TestStopClearsSurfaceAndIsIdempotent(t *testing.T) {
	mem := surface.NewMemory()
	o := New(mem, anim.Instant(30))

	// Stop before any run: must not panic.
	o.Stop()
	o.Stop()

	elements := []board.Element{strokeAt(100, 100, "l", 1)}
	if err := o.Run(context.Background(), elements, testConfig(""), testSettings(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if mem.PathCount() != 1 {
		t.Fatalf("Expected one drawn path before Stop")
	}

	o.Stop()
	if mem.NodeCount() != 0 {
		t.Errorf("Stop should clear the surface, %d nodes left", mem.NodeCount())
	}

	cleared := 0
	for _, op := range mem.Ops() {
		if strings.HasPrefix(op, "clear") {
			cleared++
		}
	}
	if cleared < 1 {
		t.Errorf("Stop should issue a surface clear")
	}

	// Again after the run: still safe.
	o.Stop()
}

func TestRunTrueSpeedUsesPrecomputedDurations(t *testing.T) {
	mem := surface.NewMemory()

	var total time.Duration
	a := anim.WithWait(10, func(ctx context.Context, d time.Duration) error {
		total += d
		return nil
	})
	o := New(mem, a)

	s := config.DefaultSettings()
	s.TrueSpeed = true
	s.ElementDelay = 0

	shape := board.NewElement(board.TypeRectangle, "l", 1)
	shape.X, shape.Y = 100, 100
	shape.Width, shape.Height = 80, 40

	pen := board.NewElement(board.TypePath, "l", 2)
	pen.Points = []board.Point{{X: 0, Y: 0}, {X: 400, Y: 0}}

	err := o.Run(context.Background(), []board.Element{shape, pen}, testConfig(config.ModeChronological), s, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The precomputed duration array gives non-freehand elements the true-speed
	// fallback (1.5s), not their shape base, and the 400-unit stroke one second
	// at 400 px/s. Anything else means the array was not wired in.
	if want := 2500 * time.Millisecond; total != want {
		t.Errorf("True-speed run consumed %v of animation time, want %v", total, want)
	}
}

func TestStopMidRunLeavesNoResidue(t *testing.T) {
	mem := surface.NewMemory()
	o := New(mem, nil)

	// Stop fires from inside the first reveal tick, after the path node has
	// already been injected. The run must still end with a clean surface.
	var once sync.Once
	o.animator = anim.WithWait(10, func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		once.Do(o.Stop)
		return nil
	})

	elements := []board.Element{strokeAt(100, 100, "l", 1), strokeAt(200, 200, "l", 2)}
	err := o.Run(context.Background(), elements, testConfig(""), testSettings(), nil)
	if err != nil {
		t.Fatalf("Stopped run should finish quietly, got %v", err)
	}
	if mem.NodeCount() != 0 {
		t.Errorf("Stop left %d nodes on the surface", mem.NodeCount())
	}
}

func TestRunAfterStopIsAllowed(t *testing.T) {
	mem := surface.NewMemory()
	o := New(mem, anim.Instant(30))

	elements := []board.Element{strokeAt(100, 100, "l", 1)}
	if err := o.Run(context.Background(), elements, testConfig(""), testSettings(), nil); err != nil {
		t.Fatalf("First run: %v", err)
	}
	o.Stop()
	if err := o.Run(context.Background(), elements, testConfig(""), testSettings(), nil); err != nil {
		t.Fatalf("Run after Stop: %v", err)
	}
}

func TestCameraPanningPansBetweenPages(t *testing.T) {
	mem := surface.NewMemory()
	o := New(mem, anim.Instant(30))

	elements := []board.Element{
		strokeAt(100, 100, "l", 1),
		strokeAt(2000, 100, "l", 2),
	}
	if err := o.Run(context.Background(), elements, testConfig(config.ModeCameraPanning), testSettings(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Lands on the far tile, with intermediate pan positions in between.
	x, _, _ := mem.Viewport()
	if x != float64(config.PageWidth) {
		t.Errorf("Final viewport x: got %.0f, want %d", x, config.PageWidth)
	}
	moves := 0
	for _, op := range mem.Ops() {
		if strings.HasPrefix(op, "viewport") {
			moves++
		}
	}
	if moves < 3 {
		t.Errorf("Camera panning should emit intermediate viewport frames, got %d", moves)
	}
}
