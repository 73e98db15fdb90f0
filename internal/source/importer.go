package source

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/redsighxt/inkreplay/internal/board"
	"github.com/redsighxt/inkreplay/internal/config"
)

// Imported components are laid out in a row on the origin page, scaled so a
// page never dwarfs hand-drawn strokes.
const (
	componentWidth = 400.0
	componentGap   = 40.0
	importDPI      = 150
)

// ImportComponents renders every page of the document into a PNG asset under
// assetsDir and returns one library-component element per page, positioned
// left to right on the origin tile.
func ImportComponents(doc Document, layerID, assetsDir string) ([]board.Element, error) {
	if err := os.MkdirAll(assetsDir, 0755); err != nil {
		return nil, err
	}

	count := doc.PageCount()
	if count == 0 {
		return nil, fmt.Errorf("import document has no pages")
	}

	now := time.Now().UnixMilli()
	x := componentGap
	y := (config.PageHeight - componentWidth) / 2.0

	var out []board.Element
	for i := 0; i < count; i++ {
		img, aspect, err := doc.ImportPage(i, importDPI)
		if err != nil {
			return nil, fmt.Errorf("import page %d: %w", i, err)
		}

		assetPath := filepath.Join(assetsDir, fmt.Sprintf("component_%03d.png", i))
		f, err := os.Create(assetPath)
		if err != nil {
			return nil, err
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, err
		}

		if aspect <= 0 {
			aspect = 1.4142 // A-series fallback
		}

		el := board.NewElement(board.TypeLibrary, layerID, now+int64(i))
		el.X = x
		el.Y = y
		el.Width = componentWidth
		el.Height = componentWidth * aspect
		out = append(out, el)

		x += componentWidth + componentGap
	}
	return out, nil
}
