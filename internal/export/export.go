// Package export renders a replay deterministically into a numbered PNG
// frame sequence, the input a screen-recording pipeline picks up.
package export

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/sync/errgroup"

	"github.com/redsighxt/inkreplay/internal/anim"
	"github.com/redsighxt/inkreplay/internal/board"
	"github.com/redsighxt/inkreplay/internal/config"
	"github.com/redsighxt/inkreplay/internal/replay"
	"github.com/redsighxt/inkreplay/internal/surface"
)

const qrSize = 96

type Options struct {
	OutDir   string
	FPS      int    // 0 = config FPS, then 30
	Workers  int    // PNG encoders, 0 = NumCPU
	ShareURL string // when set, frames carry a QR watermark to this URL
}

type frameJob struct {
	index int
	img   *image.RGBA
}

// Frames runs the replay against a raster surface with a virtual clock and
// writes one PNG per frame tick. Returns the number of frames written.
// Encoding is parallel; the replay itself stays strictly sequential.
func Frames(ctx context.Context, elements []board.Element, cfg *config.Config, settings config.Settings, opts Options) (int, error) {
	if opts.OutDir == "" {
		return 0, fmt.Errorf("export: output directory is required")
	}
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return 0, err
	}

	fps := opts.FPS
	if fps <= 0 {
		fps = cfg.FPS
	}
	if fps <= 0 {
		fps = 30
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var qr image.Image
	if opts.ShareURL != "" {
		code, err := qrcode.New(opts.ShareURL, qrcode.Medium)
		if err != nil {
			return 0, fmt.Errorf("share QR: %w", err)
		}
		qr = code.Image(qrSize)
	}

	w, h := cfg.ResolveSize()
	ras := surface.NewRaster(w, h, cfg.Background)

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan frameJob, workers*2)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for job := range jobs {
				if qr != nil {
					stampQR(job.img, qr)
				}
				name := filepath.Join(opts.OutDir, fmt.Sprintf("frame_%05d.png", job.index))
				if err := writePNG(name, job.img); err != nil {
					return err
				}
			}
			return nil
		})
	}

	// The virtual clock: every wait becomes its frame count, each tick a
	// captured snapshot. No wall time passes during export.
	count := 0
	capture := func(waitCtx context.Context, d time.Duration) error {
		n := int(math.Round(d.Seconds() * float64(fps)))
		for i := 0; i < n; i++ {
			select {
			case jobs <- frameJob{index: count, img: ras.Frame()}:
				count++
			case <-gctx.Done():
				return gctx.Err()
			case <-waitCtx.Done():
				return waitCtx.Err()
			}
		}
		return nil
	}

	orch := replay.New(ras, anim.WithWait(fps, capture))
	runErr := orch.Run(gctx, elements, cfg, settings, nil)

	if runErr == nil {
		// One settle frame showing the finished board.
		select {
		case jobs <- frameJob{index: count, img: ras.Frame()}:
			count++
		case <-gctx.Done():
		}
	}

	close(jobs)
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	return count, runErr
}

// stampQR draws the share QR code in the bottom-right corner.
func stampQR(img *image.RGBA, qr image.Image) {
	b := img.Bounds()
	qb := qr.Bounds()
	offset := image.Pt(b.Max.X-qb.Dx()-16, b.Max.Y-qb.Dy()-16)
	draw.Draw(img, qb.Add(offset), qr, qb.Min, draw.Over)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
