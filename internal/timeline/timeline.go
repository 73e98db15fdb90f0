package timeline

import (
	"sort"

	"github.com/redsighxt/inkreplay/internal/board"
	"github.com/redsighxt/inkreplay/internal/pages"
)

// Event kinds.
const (
	KindElement    = "element"
	KindPageSwitch = "page-switch"
)

// Event is one step of a replay run: either draw an element or switch the
// active page. Page switches carry the previous page (nil at the start).
type Event struct {
	Kind    string
	Element *board.Element // set when Kind == KindElement
	From    *pages.Page    // set when Kind == KindPageSwitch, nil for the first
	To      *pages.Page    // set when Kind == KindPageSwitch
}

// Timeline is the ordered event sequence for one replay run. Built fresh per
// invocation; never persisted.
type Timeline struct {
	Events []Event
}

// ElementCount returns the number of element events.
func (t *Timeline) ElementCount() int {
	n := 0
	for _, ev := range t.Events {
		if ev.Kind == KindElement {
			n++
		}
	}
	return n
}

// Elements returns the element events' payloads in timeline order.
func (t *Timeline) Elements() []board.Element {
	out := make([]board.Element, 0, t.ElementCount())
	for _, ev := range t.Events {
		if ev.Kind == KindElement {
			out = append(out, *ev.Element)
		}
	}
	return out
}

// sortByTime returns a stably time-sorted copy; ties keep input order.
func sortByTime(elements []board.Element) []board.Element {
	sorted := make([]board.Element, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt < sorted[j].CreatedAt
	})
	return sorted
}

// BuildChronological orders all elements by creation time and inserts a
// page-switch event before the first element of each new active page. An
// empty input yields an empty timeline; the caller treats that as a no-op
// replay and reports it upward.
func BuildChronological(mgr *pages.Manager, elements []board.Element) *Timeline {
	tl := &Timeline{}
	sorted := sortByTime(elements)

	var current *pages.Page
	for i := range sorted {
		p := mgr.PageForElement(&sorted[i])
		if current == nil || p.ID != current.ID {
			tl.Events = append(tl.Events, Event{Kind: KindPageSwitch, From: current, To: p})
			current = p
		}
		tl.Events = append(tl.Events, Event{Kind: KindElement, Element: &sorted[i]})
	}
	return tl
}

// Group is one page (optionally one layer within a page) with its elements
// in chronological order.
type Group struct {
	Page     *pages.Page
	LayerID  string // empty for page-only grouping
	Elements []board.Element
	minTime  int64
}

// BuildByPage groups elements by owning page. Each group is internally
// time-sorted; groups are ordered by the earliest element they contain.
func BuildByPage(mgr *pages.Manager, elements []board.Element) []Group {
	return buildGroups(mgr, elements, false)
}

// BuildByLayerWithinPage groups by the compound (page, layer) key, for the
// layered page-by-page reveal.
func BuildByLayerWithinPage(mgr *pages.Manager, elements []board.Element) []Group {
	return buildGroups(mgr, elements, true)
}

func buildGroups(mgr *pages.Manager, elements []board.Element, byLayer bool) []Group {
	sorted := sortByTime(elements)

	index := make(map[string]int)
	var groups []Group

	for i := range sorted {
		p := mgr.PageForElement(&sorted[i])
		key := p.ID
		layer := ""
		if byLayer {
			layer = sorted[i].LayerID
			key = p.ID + "\x00" + layer
		}

		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, Group{Page: p, LayerID: layer, minTime: sorted[i].CreatedAt})
		}
		groups[gi].Elements = append(groups[gi].Elements, sorted[i])
	}

	// Elements arrive pre-sorted, so group min time is the first element's;
	// order groups by earliest appearance.
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].minTime < groups[j].minTime
	})
	return groups
}

// Flatten expands groups into a timeline: one page-switch per page change,
// then that group's element events.
func Flatten(groups []Group) *Timeline {
	tl := &Timeline{}
	var current *pages.Page
	for gi := range groups {
		g := &groups[gi]
		if current == nil || g.Page.ID != current.ID {
			tl.Events = append(tl.Events, Event{Kind: KindPageSwitch, From: current, To: g.Page})
			current = g.Page
		}
		for i := range g.Elements {
			tl.Events = append(tl.Events, Event{Kind: KindElement, Element: &g.Elements[i]})
		}
	}
	return tl
}
