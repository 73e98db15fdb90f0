// Package source imports external documents into the component library:
// each page becomes a raster asset plus a library-component element the
// replay engine can animate.
package source

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// Document is a multi-page document the importer can turn into components.
// ImportPage renders one page and reports its aspect ratio (height over
// width); a ratio of 0 means unknown, and the importer falls back to A-series
// proportions.
type Document interface {
	PageCount() int
	ImportPage(index, dpi int) (img image.Image, aspect float64, err error)
	Close() error
}

// PDFDocument reads PDF pages through go-fitz.
type PDFDocument struct {
	doc  *fitz.Document
	path string
}

func OpenPDF(path string) (*PDFDocument, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &PDFDocument{doc: doc, path: path}, nil
}

func (p *PDFDocument) PageCount() int {
	return p.doc.NumPage()
}

func (p *PDFDocument) ImportPage(index, dpi int) (image.Image, float64, error) {
	// Fitz documents are not safe for concurrent page rendering; open a
	// scratch document per call so callers may parallelize.
	workerDoc, err := fitz.New(p.path)
	if err != nil {
		return nil, 0, err
	}
	defer workerDoc.Close()

	img, err := workerDoc.ImageDPI(index, float64(dpi))
	if err != nil {
		return nil, 0, err
	}

	aspect := 0.0
	if rect, err := p.doc.Bound(index); err == nil && rect.Dx() > 0 {
		aspect = float64(rect.Dy()) / float64(rect.Dx())
	}
	return img, aspect, nil
}

func (p *PDFDocument) Close() error {
	return p.doc.Close()
}
