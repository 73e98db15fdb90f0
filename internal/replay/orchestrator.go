// Package replay is the top-level driver: it partitions the board into
// virtual pages, builds the timeline for the requested mode, and steps
// through it animating strokes and page transitions strictly one at a time.
package replay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redsighxt/inkreplay/internal/anim"
	"github.com/redsighxt/inkreplay/internal/board"
	"github.com/redsighxt/inkreplay/internal/config"
	"github.com/redsighxt/inkreplay/internal/pages"
	"github.com/redsighxt/inkreplay/internal/stroke"
	"github.com/redsighxt/inkreplay/internal/surface"
	"github.com/redsighxt/inkreplay/internal/system"
	"github.com/redsighxt/inkreplay/internal/timeline"
	"github.com/redsighxt/inkreplay/internal/transition"
)

// ProgressFunc receives the running percentage in [0,100]. Called after each
// element finishes, never after page-switch-only events.
type ProgressFunc func(percent float64)

// PageChangeFunc is invoked with the newly active page on every switch.
type PageChangeFunc func(page *pages.Page)

// Orchestrator owns one replay target. A single run may be active at a time;
// starting a second while one is running is a caller error and fails fast.
type Orchestrator struct {
	surf     surface.Surface
	animator *anim.Animator

	// OnPageChange, when set, is notified on every page switch (UI badges).
	OnPageChange PageChangeFunc

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	trans   *transition.Controller
}

func New(surf surface.Surface, animator *anim.Animator) *Orchestrator {
	return &Orchestrator{surf: surf, animator: animator}
}

// Run plays the full timeline for the given mode and resolves when done.
// Precondition failures (no surface, no elements, run already active) are
// the only errors that propagate; per-element problems are logged and the
// timeline keeps moving.
func (o *Orchestrator) Run(ctx context.Context, elements []board.Element, cfg *config.Config, settings config.Settings, onProgress ProgressFunc) error {
	if o.surf == nil {
		return errors.New("replay target surface is missing")
	}
	if len(elements) == 0 {
		return errors.New("nothing to replay: the board has no elements")
	}
	if !o.running.CompareAndSwap(false, true) {
		return errors.New("a replay is already running; stop it first")
	}
	defer o.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mgr := pages.NewManager()
	mgr.Rebuild(elements)

	trans := transition.NewController(o.surf, o.animator, cfg)

	o.mu.Lock()
	o.cancel = cancel
	o.trans = trans
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.cancel = nil
		o.mu.Unlock()
	}()

	if cfg.DebugTint {
		o.tintPages(mgr)
	}

	tl, err := buildTimeline(mgr, elements, cfg)
	if err != nil {
		return err
	}
	if tl.ElementCount() == 0 {
		return errors.New("replay timeline is empty")
	}

	engine := stroke.NewEngine(settings, o.animator)
	if settings.TrueSpeed && len(engine.Settings.ElementDurations) == 0 {
		// True speed runs off a duration array precomputed in timeline
		// order, so the override indexes line up with the reveal order.
		engine.Settings.ElementDurations = engine.TrueSpeedDurations(tl.Elements())
	}

	startTime := time.Now()
	total := len(tl.Events)
	processed := 0
	elemIndex := 0
	delay := time.Duration(settings.ElementDelay * float64(time.Second))

	for i := range tl.Events {
		ev := &tl.Events[i]
		if err := ctx.Err(); err != nil {
			return o.absorbCancel(err)
		}

		switch ev.Kind {
		case timeline.KindPageSwitch:
			if o.OnPageChange != nil {
				o.OnPageChange(ev.To)
			}
			if err := o.switchPage(ctx, trans, ev, cfg); err != nil {
				return o.absorbCancel(err)
			}
			processed++

		case timeline.KindElement:
			if err := engine.Animate(ctx, o.surf, ev.Element, elemIndex); err != nil {
				return o.absorbCancel(err)
			}
			elemIndex++

			// The visible pause before the next stroke.
			if err := o.animator.Wait(ctx, delay); err != nil {
				return o.absorbCancel(err)
			}

			processed++
			if onProgress != nil {
				onProgress(float64(processed) / float64(total) * 100)
			}
		}
	}

	if cfg.ShowStats {
		o.report(cfg, startTime, elemIndex, len(mgr.Pages()))
	}
	return nil
}

// switchPage applies the mode's transition policy for one page boundary.
func (o *Orchestrator) switchPage(ctx context.Context, trans *transition.Controller, ev *timeline.Event, cfg *config.Config) error {
	switch cfg.Mode {
	case config.ModeOriginBox:
		// The origin box never leaves its tile.
		return trans.GoToPage(ctx, ev.To, false)

	case config.ModeCameraPanning:
		// First switch is a cut (nothing drawn yet), later ones pan smoothly.
		animated := ev.From != nil
		if err := trans.GoToPage(ctx, ev.To, animated); err != nil {
			return err
		}
		trans.ShowPageIndicator(ev.To)
		return nil

	default:
		if ev.From != nil {
			d := time.Duration(cfg.TransitionDuration * float64(time.Second))
			if err := trans.ShowEffect(ctx, cfg.Transition, d); err != nil {
				return err
			}
		}
		if err := trans.GoToPage(ctx, ev.To, false); err != nil {
			return err
		}
		trans.ShowPageIndicator(ev.To)
		return nil
	}
}

// buildTimeline picks the event ordering strategy for the mode.
func buildTimeline(mgr *pages.Manager, elements []board.Element, cfg *config.Config) (*timeline.Timeline, error) {
	switch cfg.Mode {
	case config.ModeChronological, "":
		if cfg.PageByPage {
			return timeline.Flatten(timeline.BuildByPage(mgr, elements)), nil
		}
		return timeline.BuildChronological(mgr, elements), nil

	case config.ModePageMode:
		return timeline.Flatten(timeline.BuildByPage(mgr, elements)), nil

	case config.ModeLayer, config.ModeCameraPanning:
		return timeline.Flatten(timeline.BuildByLayerWithinPage(mgr, elements)), nil

	case config.ModeOriginBox:
		origin := mgr.Origin()
		var boxed []board.Element
		for i := range elements {
			if mgr.PageForElement(&elements[i]).IsOrigin {
				boxed = append(boxed, elements[i])
			}
		}
		if len(boxed) == 0 {
			return nil, fmt.Errorf("origin-box replay: no elements on %s", origin.ID)
		}
		return timeline.BuildChronological(mgr, boxed), nil

	default:
		return nil, fmt.Errorf("unknown replay mode %q", cfg.Mode)
	}
}

// Stop halts any in-flight animation on its next tick and synchronously
// removes every injected overlay node. Safe to call from any state, before
// any run and repeatedly.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	trans := o.trans
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if trans != nil {
		trans.Stop()
	}
	if o.surf != nil {
		o.surf.Clear()
	}
}

// absorbCancel turns our own Stop into a quiet finish; anything else (caller
// deadline, unexpected failure) propagates. The surface is cleared again on
// the way out: Stop's clear can race a path injection already past the loop's
// context check, and this sweep removes any such straggler.
func (o *Orchestrator) absorbCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		o.surf.Clear()
		log.Printf("[*] Replay stopped")
		return nil
	}
	return err
}

func (o *Orchestrator) tintPages(mgr *pages.Manager) {
	raster, ok := o.surf.(*surface.Raster)
	if !ok {
		return
	}
	// A fixed palette cycled across tiles; enough to tell neighbors apart.
	palette := []string{"#e05252", "#52a0e0", "#5ce052", "#e0c452", "#a052e0", "#52e0c8"}
	for i, p := range mgr.Pages() {
		raster.AddPageTint(p.X, p.Y, config.PageWidth, config.PageHeight, palette[i%len(palette)])
	}
}

func (o *Orchestrator) report(cfg *config.Config, start time.Time, elementCount, pageCount int) {
	total := time.Since(start)
	snap := system.Snapshot()

	fmt.Printf("--- [REPLAY REPORT] ---\n"+
		"Build: %s\n"+
		"Mode: %s\n"+
		"Elements: %d | Pages: %d\n"+
		"Total Time: %.2fs\n"+
		"CPU: %.1f%% | RSS: %.1f MB | Goroutines: %d\n"+
		"-----------------------\n",
		cfg.BuildVersion, cfg.Mode, elementCount, pageCount,
		total.Seconds(), snap.CPUPercent, snap.RSSMB, snap.Goroutines)

	logEntry := fmt.Sprintf("[%s] Build: %s | Mode: %s | Elements: %d | Pages: %d | Total: %.2fs | RSS: %.1fMB\n",
		time.Now().Format("2006-01-02 15:04:05"),
		cfg.BuildVersion, cfg.Mode, elementCount, pageCount, total.Seconds(), snap.RSSMB)
	if err := system.AppendBenchmarkLog(logEntry); err != nil {
		fmt.Printf("[!] Could not write benchmark.log: %v\n", err)
	}
}
