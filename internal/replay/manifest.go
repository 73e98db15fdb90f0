package replay

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/redsighxt/inkreplay/internal/board"
	"github.com/redsighxt/inkreplay/internal/config"
	"github.com/redsighxt/inkreplay/internal/pages"
	"github.com/redsighxt/inkreplay/internal/stroke"
	"github.com/redsighxt/inkreplay/internal/timeline"
)

// Manifest is a serializable dump of a built timeline: every event with its
// resolved duration, for inspecting what a replay will do before running it.
type Manifest struct {
	Version  string          `yaml:"version"`
	Mode     string          `yaml:"mode"`
	Events   []ManifestEvent `yaml:"events"`
	Elements int             `yaml:"elements"`
	Pages    int             `yaml:"pages"`
}

type ManifestEvent struct {
	Kind      string  `yaml:"kind"`
	ElementID string  `yaml:"element_id,omitempty"`
	Type      string  `yaml:"type,omitempty"`
	FromPage  string  `yaml:"from_page,omitempty"`
	ToPage    string  `yaml:"to_page,omitempty"`
	Duration  float64 `yaml:"duration,omitempty"` // seconds
}

// BuildManifest resolves the timeline and per-element durations for the given
// configuration without rendering anything.
func BuildManifest(elements []board.Element, cfg *config.Config, settings config.Settings) (*Manifest, error) {
	mgr := pages.NewManager()
	mgr.Rebuild(elements)
	tl, err := buildTimeline(mgr, elements, cfg)
	if err != nil {
		return nil, err
	}

	engine := stroke.NewEngine(settings, nil)
	if settings.TrueSpeed && len(engine.Settings.ElementDurations) == 0 {
		// Same precomputed array a true-speed run uses, so the manifest's
		// durations match what the replay will actually do.
		engine.Settings.ElementDurations = engine.TrueSpeedDurations(tl.Elements())
	}
	m := &Manifest{Version: "1.0", Mode: cfg.Mode, Pages: len(mgr.Pages())}

	elemIndex := 0
	for i := range tl.Events {
		ev := &tl.Events[i]
		switch ev.Kind {
		case timeline.KindPageSwitch:
			me := ManifestEvent{Kind: ev.Kind, ToPage: ev.To.ID, Duration: cfg.TransitionDuration}
			if ev.From != nil {
				me.FromPage = ev.From.ID
			}
			m.Events = append(m.Events, me)
		case timeline.KindElement:
			p := stroke.PathFor(ev.Element)
			d := engine.Duration(ev.Element, elemIndex, p.Length())
			m.Events = append(m.Events, ManifestEvent{
				Kind:      ev.Kind,
				ElementID: ev.Element.ID,
				Type:      ev.Element.Type,
				Duration:  d.Seconds(),
			})
			elemIndex++
			m.Elements++
		}
	}
	return m, nil
}

// WriteManifest writes a manifest to a YAML file.
func WriteManifest(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
