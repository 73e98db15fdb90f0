// Package transition orchestrates viewport changes between virtual pages:
// instant cuts, eased pans, full-frame visual pulses, and the transient page
// indicator overlay.
package transition

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/redsighxt/inkreplay/internal/anim"
	"github.com/redsighxt/inkreplay/internal/config"
	"github.com/redsighxt/inkreplay/internal/pages"
	"github.com/redsighxt/inkreplay/internal/surface"
)

// Controller states, per replay run.
const (
	StateIdle          = "idle"
	StateTransitioning = "transitioning"
	StateSettled       = "settled"
	StateStopped       = "stopped"
)

// How long the page indicator stays up. Cosmetic; never blocks the timeline.
const indicatorDisplay = 1500 * time.Millisecond

type Controller struct {
	surf     surface.Surface
	animator *anim.Animator
	cfg      *config.Config

	mu       sync.Mutex
	state    string
	overlays map[surface.Handle]func()
}

func NewController(surf surface.Surface, animator *anim.Animator, cfg *config.Config) *Controller {
	return &Controller{
		surf:     surf,
		animator: animator,
		cfg:      cfg,
		state:    StateIdle,
		overlays: make(map[surface.Handle]func()),
	}
}

func (c *Controller) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s string) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// GoToPage moves the viewport to the page's top-left world coordinate, either
// as an instant cut or an eased pan. Scale is held constant across page moves;
// only translation changes, so pages never zoom-pop.
func (c *Controller) GoToPage(ctx context.Context, page *pages.Page, animated bool) error {
	_, _, scale := c.surf.Viewport()

	if !animated {
		c.surf.SetViewport(page.X, page.Y, scale)
		return nil
	}

	fromX, fromY, _ := c.surf.Viewport()
	c.setState(StateTransitioning)
	err := c.animator.Run(ctx, secs(c.cfg.PanDuration), anim.EaseInOutCubic, func(t float64) {
		c.surf.SetViewport(anim.Lerp(fromX, page.X, t), anim.Lerp(fromY, page.Y, t), scale)
	})
	if err != nil {
		c.setState(StateStopped)
		return err
	}
	// Land exactly on the target regardless of frame rounding.
	c.surf.SetViewport(page.X, page.Y, scale)
	c.setState(StateSettled)
	return nil
}

// ShowEffect runs a full-frame visual pulse for the configured transition
// type. "none" draws nothing but still consumes the duration so all modes
// keep identical timing.
func (c *Controller) ShowEffect(ctx context.Context, effect string, d time.Duration) error {
	if effect == "" || effect == config.TransitionNone {
		return c.animator.Wait(ctx, d)
	}

	spec := surface.OverlaySpec{Kind: surface.OverlayRect, Color: "#000000", Scale: 1}
	h, err := c.surf.AddOverlay(spec)
	if err != nil {
		// Transitions are cosmetic; keep timing and move on.
		return c.animator.Wait(ctx, d)
	}
	defer c.surf.Remove(h)

	w, hgt := float64(config.PageWidth), float64(config.PageHeight)

	return c.animator.Run(ctx, d, anim.Linear, func(t float64) {
		// sin(πt) rises and falls: a pulse that starts and ends invisible.
		pulse := math.Sin(math.Pi * t)
		st := surface.OverlayState{Scale: 1}

		switch effect {
		case config.TransitionFade:
			st.Opacity = 0.85 * pulse
		case config.TransitionSlideLeft:
			// Slides push out and return: the offset peaks mid-effect
			// and comes back to rest where it started.
			st.Opacity = 0.5 * pulse
			st.OffsetX = -w * pulse
		case config.TransitionSlideRight:
			st.Opacity = 0.5 * pulse
			st.OffsetX = w * pulse
		case config.TransitionSlideUp:
			st.Opacity = 0.5 * pulse
			st.OffsetY = -hgt * pulse
		case config.TransitionSlideDown:
			st.Opacity = 0.5 * pulse
			st.OffsetY = hgt * pulse
		case config.TransitionZoom:
			st.Opacity = 0.4 * pulse
			st.Scale = 1 + 0.2*pulse
		default:
			st.Opacity = 0.85 * pulse
		}
		c.surf.UpdateOverlay(h, st)
	})
}

// ShowPageIndicator flashes a transient label naming the active page. It
// returns immediately; the overlay removes itself after its display time.
func (c *Controller) ShowPageIndicator(page *pages.Page) {
	text := fmt.Sprintf("Page %d,%d", page.Row, page.Col)
	if page.IsOrigin {
		text = "Origin Page"
	}

	h, err := c.surf.AddOverlay(surface.OverlaySpec{
		Kind:    surface.OverlayLabel,
		Color:   "#1f2430",
		Text:    text,
		Opacity: 0.9,
		Scale:   1,
	})
	if err != nil {
		return
	}

	// Expiry runs on the animation clock, not the wall clock, so exported
	// frame sequences carry the label for the same span as live runs.
	c.mu.Lock()
	c.overlays[h] = c.animator.After(indicatorDisplay, func() {
		c.surf.Remove(h)
		c.mu.Lock()
		delete(c.overlays, h)
		c.mu.Unlock()
	})
	c.mu.Unlock()
}

// Stop cancels pending indicator removals and strips every overlay the
// controller injected. Safe to call in any state, any number of times.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for h, cancel := range c.overlays {
		cancel()
		c.surf.Remove(h)
		delete(c.overlays, h)
	}
	c.state = StateStopped
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
