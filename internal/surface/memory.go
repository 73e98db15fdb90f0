package surface

import (
	"fmt"
	"sync"

	"github.com/redsighxt/inkreplay/internal/board"
)

// Memory is an in-memory Surface that records every operation in order.
// It backs the engine tests and doubles as a dry-run target.
type Memory struct {
	mu     sync.Mutex
	next   Handle
	paths  map[Handle]*memPath
	over   map[Handle]*memOverlay
	ops    []string
	trail  map[Handle][]OverlayState
	vx, vy float64
	scale  float64

	// FailAddPath forces AddPath errors, exercising the instant-reveal
	// fallback path of the stroke engine.
	FailAddPath bool
}

type memPath struct {
	data   string
	flat   []board.Point
	style  PathStyle
	reveal float64
	dash   string
}

type memOverlay struct {
	spec  OverlaySpec
	state OverlayState
}

func NewMemory() *Memory {
	return &Memory{
		paths: make(map[Handle]*memPath),
		over:  make(map[Handle]*memOverlay),
		trail: make(map[Handle][]OverlayState),
		scale: 1,
	}
}

func (m *Memory) AddPath(data string, flat []board.Point, style PathStyle) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAddPath {
		return 0, fmt.Errorf("path node construction failed")
	}
	m.next++
	m.paths[m.next] = &memPath{data: data, flat: flat, style: style, dash: style.DashStyle}
	m.ops = append(m.ops, fmt.Sprintf("add-path %d", m.next))
	return m.next, nil
}

func (m *Memory) SetReveal(h Handle, fraction float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.paths[h]
	if !ok {
		return fmt.Errorf("unknown path handle %d", h)
	}
	p.reveal = fraction
	return nil
}

func (m *Memory) SetDash(h Handle, dash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.paths[h]; ok {
		p.dash = dash
		m.ops = append(m.ops, fmt.Sprintf("set-dash %d %s", h, dash))
	}
}

func (m *Memory) AddOverlay(spec OverlaySpec) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.over[m.next] = &memOverlay{spec: spec, state: OverlayState{Opacity: spec.Opacity, Scale: spec.Scale}}
	m.ops = append(m.ops, fmt.Sprintf("add-overlay %d %s", m.next, spec.Kind))
	return m.next, nil
}

func (m *Memory) UpdateOverlay(h Handle, st OverlayState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.over[h]; ok {
		o.state = st
		m.trail[h] = append(m.trail[h], st)
	}
}

func (m *Memory) Remove(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.paths[h]; ok {
		delete(m.paths, h)
		m.ops = append(m.ops, fmt.Sprintf("remove %d", h))
	}
	if _, ok := m.over[h]; ok {
		delete(m.over, h)
		m.ops = append(m.ops, fmt.Sprintf("remove %d", h))
	}
}

func (m *Memory) SetViewport(x, y, scale float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vx, m.vy, m.scale = x, y, scale
	m.ops = append(m.ops, fmt.Sprintf("viewport %.0f,%.0f@%.2f", x, y, scale))
}

func (m *Memory) Viewport() (float64, float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vx, m.vy, m.scale
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = make(map[Handle]*memPath)
	m.over = make(map[Handle]*memOverlay)
	m.ops = append(m.ops, "clear")
}

// NodeCount returns the number of live injected nodes (paths + overlays).
func (m *Memory) NodeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.paths) + len(m.over)
}

// PathCount returns the number of live path nodes.
func (m *Memory) PathCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.paths)
}

// Reveal returns the current revealed fraction of a path.
func (m *Memory) Reveal(h Handle) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.paths[h]; ok {
		return p.reveal
	}
	return 0
}

// Style returns the style a path was injected with.
func (m *Memory) Style(h Handle) PathStyle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.paths[h]; ok {
		return p.style
	}
	return PathStyle{}
}

// Dash returns the current dash pattern of a path.
func (m *Memory) Dash(h Handle) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.paths[h]; ok {
		return p.dash
	}
	return ""
}

// OverlayTrail returns every state an overlay was updated with, in order.
// The trail survives removal so tests can inspect a finished effect.
func (m *Memory) OverlayTrail(h Handle) []OverlayState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]OverlayState, len(m.trail[h]))
	copy(out, m.trail[h])
	return out
}

// Ops returns the recorded operation log.
func (m *Memory) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.ops))
	copy(out, m.ops)
	return out
}
