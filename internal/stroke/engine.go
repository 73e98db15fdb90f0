package stroke

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/redsighxt/inkreplay/internal/anim"
	"github.com/redsighxt/inkreplay/internal/board"
	"github.com/redsighxt/inkreplay/internal/config"
	"github.com/redsighxt/inkreplay/internal/surface"
)

// Highlighter ink: constant low opacity with multiply blending so overlapping
// strokes darken instead of repainting.
const highlighterOpacity = 0.45

// Engine animates single elements as progressive stroke reveals on a surface.
// One shared engine serves every replay mode; the modes only differ in
// timeline and transition policy.
type Engine struct {
	Settings config.Settings
	Animator *anim.Animator
}

func NewEngine(settings config.Settings, animator *anim.Animator) *Engine {
	settings.Normalize()
	return &Engine{Settings: settings, Animator: animator}
}

// Duration resolves how long the element's reveal runs, in order:
// a per-element override (true-speed precomputation), then the true-speed
// arc-length rate for freehand strokes, then the type-specific base duration.
func (e *Engine) Duration(el *board.Element, index int, pathLength float64) time.Duration {
	s := &e.Settings

	if index >= 0 && index < len(s.ElementDurations) && s.ElementDurations[index] > 0 {
		return secs(s.ElementDurations[index])
	}

	if s.TrueSpeed && el.IsFreehand() {
		return secs(e.trueSpeedSeconds(el, pathLength))
	}

	var base float64
	switch {
	case el.IsFreehand():
		base = s.PenDuration / s.SpeedMultiplier
	case el.Type == board.TypeLibrary:
		base = s.LibraryDuration
	default:
		base = s.ShapeDuration
	}
	if base <= 0 {
		base = s.FallbackDuration
	}
	return secs(base)
}

// trueSpeedSeconds maps arc length to seconds at the configured drawing rate,
// clamped to the settings bounds. Non-path elements get the configured
// minimum length floor.
func (e *Engine) trueSpeedSeconds(el *board.Element, pathLength float64) float64 {
	s := &e.Settings
	l := pathLength
	if !el.IsFreehand() && l < s.MinPathLength {
		l = s.MinPathLength
	}
	d := l / s.PixelsPerSecond
	if d < s.MinDuration {
		d = s.MinDuration
	}
	if d > s.MaxDuration {
		d = s.MaxDuration
	}
	return d
}

// TrueSpeedDurations precomputes the per-element override array for a
// timeline: freehand strokes get arc-length-proportional time, everything
// else the fallback duration.
func (e *Engine) TrueSpeedDurations(elements []board.Element) []float64 {
	out := make([]float64, len(elements))
	for i := range elements {
		el := &elements[i]
		if el.IsFreehand() {
			p := PathFor(el)
			out[i] = e.trueSpeedSeconds(el, p.Length())
		} else {
			out[i] = e.Settings.FallbackDuration
		}
	}
	return out
}

// Animate renders one element as a progressive reveal: inject the path fully
// hidden, ease the revealed fraction to 1, then restore the authored dash
// pattern so a dashed line ends up dashed rather than solid.
//
// Per-element failures are recoverable by design: degenerate geometry is
// logged and skipped, and a reveal that cannot run falls back to showing the
// path fully drawn. Only cancellation propagates.
func (e *Engine) Animate(ctx context.Context, surf surface.Surface, el *board.Element, index int) error {
	p := PathFor(el)
	if p.Empty() {
		log.Printf("[!] Element %s (%s): no drawable geometry, skipping", el.ID, el.Type)
		return nil
	}

	length := p.Length()
	if length <= 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		log.Printf("[!] Element %s: degenerate path length %.2f, skipping", el.ID, length)
		return nil
	}

	style := surface.PathStyle{
		StrokeColor: el.Style.StrokeColor,
		StrokeWidth: el.Style.StrokeWidth,
		// Animated as solid; the authored pattern comes back after the reveal.
		DashStyle: board.DashSolid,
		Opacity:   1,
	}
	if el.Type == board.TypeHighlighter {
		style.Opacity = highlighterOpacity
		style.Multiply = true
	}

	// A stop can clear the surface between the caller's last check and this
	// injection; re-check so a cancelled run never leaves a stray node behind.
	if err := ctx.Err(); err != nil {
		return err
	}

	h, err := surf.AddPath(p.Data, p.Flat, style)
	if err != nil {
		log.Printf("[!] Element %s: path node construction failed (%v), skipping", el.ID, err)
		return nil
	}

	if err := surf.SetReveal(h, 0); err != nil {
		// No reveal primitive: show the finished stroke instead of nothing.
		log.Printf("[!] Element %s: reveal unavailable (%v), drawing instantly", el.ID, err)
		e.finish(surf, h, el)
		return nil
	}

	d := e.Duration(el, index, length)
	runErr := e.Animator.Run(ctx, d, anim.EaseOutCubic, func(t float64) {
		surf.SetReveal(h, t)
	})
	if runErr != nil {
		return runErr
	}

	e.finish(surf, h, el)
	return nil
}

func (e *Engine) finish(surf surface.Surface, h surface.Handle, el *board.Element) {
	surf.SetReveal(h, 1)
	dash := el.Style.DashStyle
	if dash == "" {
		dash = board.DashSolid
	}
	surf.SetDash(h, dash)
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
