package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/redsighxt/inkreplay/internal/anim"
	"github.com/redsighxt/inkreplay/internal/board"
	"github.com/redsighxt/inkreplay/internal/config"
	"github.com/redsighxt/inkreplay/internal/export"
	"github.com/redsighxt/inkreplay/internal/replay"
	"github.com/redsighxt/inkreplay/internal/source"
	"github.com/redsighxt/inkreplay/internal/surface"
	"github.com/redsighxt/inkreplay/internal/system"
)

const buildVersion = "1.2.0"

func main() {
	dirs := []string{"input/boards", "output/frames", "output/assets"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	inputPtr := flag.String("input", "", "Board file (default: latest .yaml in input/boards/)")
	modePtr := flag.String("mode", config.ModeChronological, "Replay mode: origin-box, page-mode, camera-panning, chronological, layer")
	transitionPtr := flag.String("transition", config.TransitionFade, "Page transition: none, fade, slide-left, slide-right, slide-up, slide-down, zoom")
	transitionDurPtr := flag.Float64("transition-duration", 0.5, "Page transition duration (sec)")
	panDurPtr := flag.Float64("pan-duration", 0.8, "Camera pan duration (sec)")
	widthPtr := flag.Int("width", 0, "Output width (0 = auto, follows page size)")
	heightPtr := flag.Int("height", 0, "Output height (0 = auto)")
	presetPtr := flag.String("preset", "", "Resolution preset: 1080p, 720p")
	fpsPtr := flag.Int("fps", 30, "FPS")
	backgroundPtr := flag.String("background", "#ffffff", "Background color")
	settingsPtr := flag.String("settings", "", "Animation settings YAML (optional)")
	delayPtr := flag.Float64("element-delay", -1, "Pause between elements (sec, overrides settings)")
	trueSpeedPtr := flag.Bool("true-speed", false, "Pencil duration proportional to stroke length")
	pageByPagePtr := flag.Bool("page-by-page", false, "Group chronological replay page by page")
	debugTintPtr := flag.Bool("debug-tint", false, "Tint each virtual page for debugging")
	statsPtr := flag.Bool("stats", false, "Print performance report")
	exportPtr := flag.String("export-frames", "", "Export frame sequence to this directory")
	shareURLPtr := flag.String("share-url", "", "Stamp exported frames with a QR code to this URL")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Frame encoder workers")
	dumpPtr := flag.String("dump-timeline", "", "Write the resolved timeline manifest to this YAML file and exit")
	importPtr := flag.String("import-pdf", "", "Import a PDF as library components and exit")
	importOutPtr := flag.String("import-out", "input/boards/imported.yaml", "Board file written by -import-pdf")

	flag.Parse()

	if *importPtr != "" {
		if err := runImport(*importPtr, *importOutPtr); err != nil {
			log.Fatalf("[-] Import error: %v", err)
		}
		return
	}

	inputPath := *inputPtr
	if inputPath == "" {
		latest, err := system.FindLatestBoard("input/boards")
		if err != nil {
			log.Fatalf("[-] Error: %v. Put a board file in input/boards/", err)
		}
		inputPath = latest
		fmt.Printf("[*] Selected board: %s\n", inputPath)
	}

	b, err := board.ReadBoard(inputPath)
	if err != nil {
		log.Fatalf("[-] Board load error: %v", err)
	}
	if len(b.Elements) == 0 {
		log.Fatalf("[-] Error: board has no elements")
	}

	settings := config.DefaultSettings()
	if *settingsPtr != "" {
		loaded, err := config.ReadSettings(*settingsPtr)
		if err != nil {
			log.Fatalf("[-] Settings error: %v", err)
		}
		settings = *loaded
	}
	if *delayPtr >= 0 {
		settings.ElementDelay = *delayPtr
	}
	settings.TrueSpeed = settings.TrueSpeed || *trueSpeedPtr

	width, height := *widthPtr, *heightPtr
	switch *presetPtr {
	case "1080p":
		width, height = 1920, 1080
	case "720p":
		width, height = 1280, 720
	}

	cfg := &config.Config{
		Width:              width,
		Height:             height,
		Background:         *backgroundPtr,
		Mode:               *modePtr,
		Transition:         *transitionPtr,
		TransitionDuration: *transitionDurPtr,
		PanDuration:        *panDurPtr,
		FPS:                *fpsPtr,
		PageByPage:         *pageByPagePtr,
		DebugTint:          *debugTintPtr,
		ShowStats:          *statsPtr,
		BuildVersion:       buildVersion,
	}

	if *dumpPtr != "" {
		m, err := replay.BuildManifest(b.Elements, cfg, settings)
		if err != nil {
			log.Fatalf("[-] Timeline error: %v", err)
		}
		if err := replay.WriteManifest(m, *dumpPtr); err != nil {
			log.Fatalf("[-] Manifest write error: %v", err)
		}
		fmt.Printf("[+++] Timeline manifest saved: %s (%d events)\n", *dumpPtr, len(m.Events))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, h := cfg.ResolveSize()
	fmt.Println("--- [INKREPLAY ENGINE] ---")
	fmt.Printf("[*] Board: %s | Elements: %d | Mode: %s\n", inputPath, len(b.Elements), cfg.Mode)
	fmt.Printf("[*] Resolution: %dx%d @ %d FPS | Transition: %s\n", w, h, cfg.FPS, cfg.Transition)
	fmt.Println("--------------------------")

	if *exportPtr != "" {
		opts := export.Options{
			OutDir:   *exportPtr,
			FPS:      cfg.FPS,
			Workers:  *workersPtr,
			ShareURL: *shareURLPtr,
		}
		n, err := export.Frames(ctx, b.Elements, cfg, settings, opts)
		if err != nil {
			log.Fatalf("[-] Export error: %v", err)
		}
		fmt.Printf("[+++] Success! %d frames written to %s\n", n, *exportPtr)
		return
	}

	ras := surface.NewRaster(w, h, cfg.Background)
	orch := replay.New(ras, anim.New(cfg.FPS))

	lastPct := -1.0
	err = orch.Run(ctx, b.Elements, cfg, settings, func(pct float64) {
		if pct-lastPct >= 5 || pct >= 100 {
			fmt.Printf("[>] Progress: %.0f%%\n", pct)
			lastPct = pct
		}
	})
	if err != nil {
		log.Fatalf("[-] Replay error: %v", err)
	}
	fmt.Println("[+++] Replay complete")
}

func runImport(pdfPath, outPath string) error {
	doc, err := source.OpenPDF(pdfPath)
	if err != nil {
		return fmt.Errorf("open PDF: %w", err)
	}
	defer doc.Close()

	elements, err := source.ImportComponents(doc, "layer-imported", "output/assets")
	if err != nil {
		return err
	}

	b := &board.Board{
		Version: "1.0",
		Name:    "imported",
		Layers:  []board.Layer{{ID: "layer-imported", Name: "Imported", Index: 0}},
	}
	b.Elements = elements
	if err := board.WriteBoard(b, outPath); err != nil {
		return err
	}

	fmt.Printf("[+++] Success! %d components imported to %s\n", len(elements), outPath)
	return nil
}
