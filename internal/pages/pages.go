package pages

import (
	"fmt"
	"math"

	"github.com/redsighxt/inkreplay/internal/board"
	"github.com/redsighxt/inkreplay/internal/config"
)

// Page is one fixed-size tile of the infinite canvas. Tiles never overlap
// and together cover the plane exactly; the element list is derived state,
// rebuilt wholesale, never authoritative storage.
type Page struct {
	ID       string
	Row, Col int
	X, Y     float64 // world-space origin (Col*PageWidth, Row*PageHeight)
	IsOrigin bool
	Elements []board.Element
}

// Contains reports whether a world-space point falls inside the tile.
func (p *Page) Contains(x, y float64) bool {
	return x >= p.X && x < p.X+config.PageWidth &&
		y >= p.Y && y < p.Y+config.PageHeight
}

// Manager owns the virtual page registry for one replay context. It is an
// explicit instance rather than process-wide state so concurrent runs and
// tests never share tiles implicitly.
type Manager struct {
	tiles map[[2]int]*Page
	order []*Page // creation order, origin first
}

func NewManager() *Manager {
	m := &Manager{tiles: make(map[[2]int]*Page)}
	m.pageAt(0, 0)
	return m
}

func pageID(row, col int) string {
	return fmt.Sprintf("page-%d-%d", row, col)
}

func (m *Manager) pageAt(row, col int) *Page {
	key := [2]int{row, col}
	if p, ok := m.tiles[key]; ok {
		return p
	}
	p := &Page{
		ID:       pageID(row, col),
		Row:      row,
		Col:      col,
		X:        float64(col) * config.PageWidth,
		Y:        float64(row) * config.PageHeight,
		IsOrigin: row == 0 && col == 0,
	}
	m.tiles[key] = p
	m.order = append(m.order, p)
	return p
}

// PageForPoint returns the tile whose bounds contain (x, y), creating it
// lazily on first use. Deterministic: the grid cell is floor(y/H), floor(x/W).
func (m *Manager) PageForPoint(x, y float64) *Page {
	row := int(math.Floor(y / config.PageHeight))
	col := int(math.Floor(x / config.PageWidth))
	return m.pageAt(row, col)
}

// PageForElement returns the tile owning the element, decided by its
// representative center point.
func (m *Manager) PageForElement(el *board.Element) *Page {
	c := el.Center()
	return m.PageForPoint(c.X, c.Y)
}

// Rebuild resets the registry to the origin tile only and reassigns every
// element to its tile. The input slice is never modified.
func (m *Manager) Rebuild(elements []board.Element) {
	m.tiles = make(map[[2]int]*Page)
	m.order = nil
	m.pageAt(0, 0)

	for i := range elements {
		p := m.PageForElement(&elements[i])
		p.Elements = append(p.Elements, elements[i])
	}
}

// Pages returns all known tiles in creation order (origin first).
func (m *Manager) Pages() []*Page {
	out := make([]*Page, len(m.order))
	copy(out, m.order)
	return out
}

// Origin returns the (0,0) tile.
func (m *Manager) Origin() *Page {
	return m.pageAt(0, 0)
}

// Statistics is a simple aggregate over the current registry state.
type Statistics struct {
	TotalPages         int
	PagesWithElements  int
	TotalElements      int
	OriginPageElements int
}

func (m *Manager) Statistics() Statistics {
	st := Statistics{TotalPages: len(m.order)}
	for _, p := range m.order {
		st.TotalElements += len(p.Elements)
		if len(p.Elements) > 0 {
			st.PagesWithElements++
		}
		if p.IsOrigin {
			st.OriginPageElements = len(p.Elements)
		}
	}
	return st
}
