package export

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/redsighxt/inkreplay/internal/board"
	"github.com/redsighxt/inkreplay/internal/config"
)

func exportConfig() *config.Config {
	return &config.Config{
		Mode:       config.ModeChronological,
		Transition: config.TransitionNone,
		Width:      160,
		Height:     90,
		Background: "#ffffff",
		FPS:        10,
	}
}

func exportSettings() config.Settings {
	s := config.DefaultSettings()
	s.PenDuration = 0.3
	s.ElementDelay = 0.1
	return s
}

func shortStroke(ts int64) board.Element {
	el := board.NewElement(board.TypePath, "l", ts)
	el.Points = []board.Point{{X: 10, Y: 10}, {X: 80, Y: 60}}
	return el
}

func TestFramesWritesSequence(t *testing.T) {
	dir := t.TempDir()
	elements := []board.Element{shortStroke(1), shortStroke(2)}

	n, err := Frames(context.Background(), elements, exportConfig(), exportSettings(), Options{
		OutDir:  dir,
		Workers: 2,
	})
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}

	// Two 0.3s strokes + two 0.1s delays at 10fps, plus the settle frame.
	want := 9
	if n != want {
		t.Errorf("Frame count: got %d, want %d", n, want)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != n {
		t.Fatalf("Directory holds %d files, reported %d", len(entries), n)
	}

	// Contiguous numbering and decodable frames at the right size.
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i))
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("Frame %d missing: %v", i, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("Frame %d undecodable: %v", i, err)
		}
		if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 90 {
			t.Fatalf("Frame %d size: %v", i, b)
		}
	}

	// The stroke midpoint is blank on the first frame and inked on the last.
	if dark(t, filepath.Join(dir, "frame_00000.png"), 45, 35) {
		t.Error("First frame should predate the stroke reveal")
	}
	if !dark(t, filepath.Join(dir, fmt.Sprintf("frame_%05d.png", n-1)), 45, 35) {
		t.Error("Settle frame should show the finished stroke")
	}
}

func dark(t *testing.T, path string, x, y int) bool {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := img.At(x, y).RGBA()
	return r < 0x8000 && g < 0x8000 && b < 0x8000
}

func TestFramesQRWatermark(t *testing.T) {
	dir := t.TempDir()
	elements := []board.Element{shortStroke(1)}

	cfg := exportConfig()
	cfg.Width, cfg.Height = 320, 240
	n, err := Frames(context.Background(), elements, cfg, exportSettings(), Options{
		OutDir:   dir,
		Workers:  1,
		ShareURL: "https://example.com/b/123",
	})
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if n < 1 {
		t.Fatal("No frames written")
	}

	// QR module pixels land in the bottom-right corner on every frame.
	f, err := os.Open(filepath.Join(dir, "frame_00000.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	dark := 0
	for y := b.Max.Y - qrSize - 16; y < b.Max.Y-16; y++ {
		for x := b.Max.X - qrSize - 16; x < b.Max.X-16; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r < 0x4000 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("Expected QR modules in the bottom-right corner")
	}
}

func TestFramesRequiresOutDir(t *testing.T) {
	if _, err := Frames(context.Background(), []board.Element{shortStroke(1)}, exportConfig(), exportSettings(), Options{}); err == nil {
		t.Error("Missing output directory should fail")
	}
}

func TestFramesPropagatesReplayErrors(t *testing.T) {
	if _, err := Frames(context.Background(), nil, exportConfig(), exportSettings(), Options{OutDir: t.TempDir()}); err == nil {
		t.Error("Empty board should fail")
	}
}
