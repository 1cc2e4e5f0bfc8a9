// Package fitz rasterizes PDF pages through MuPDF.
package fitz

import (
	"errors"
	"fmt"
	"image"
	"io/fs"

	converterrors "github.com/belphemur/PlanExtractor/pkg/converter/errors"
	"github.com/belphemur/PlanExtractor/pkg/renderer/constant"
	gofitz "github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

type Renderer struct {
	isPrepared bool
}

func New() *Renderer {
	return &Renderer{}
}

func (renderer *Renderer) Type() constant.RendererType {
	return constant.Fitz
}

// PrepareRenderer renders a blank page from memory to make sure MuPDF is usable.
func (renderer *Renderer) PrepareRenderer() error {
	if renderer.isPrepared {
		return nil
	}

	err := renderBlankPage()
	if err != nil {
		return converterrors.NewMissingDependency("MuPDF (PDF renderer)", err,
			"Debian/Ubuntu: apt-get install libmupdf-dev",
			"macOS: brew install mupdf",
			"or build with the bundled MuPDF (the default for go-fitz) and CGO_ENABLED=1")
	}
	renderer.isPrepared = true
	return nil
}

func renderBlankPage() error {
	doc, err := gofitz.NewFromMemory(BlankDocument(1, 72, 72))
	if err != nil {
		return err
	}
	defer doc.Close()

	_, err = doc.ImageDPI(0, 72)
	return err
}

// Open opens the PDF at path. A missing file is reported as fs.ErrNotExist.
func (renderer *Renderer) Open(path string) (*Document, error) {
	log.Debug().Str("file_path", path).Msg("Opening PDF document")
	doc, err := gofitz.New(path)
	if err != nil {
		if errors.Is(err, gofitz.ErrNoSuchFile) {
			return nil, fmt.Errorf("failed to open %s: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	document := &Document{path: path, doc: doc}
	log.Debug().Str("file_path", path).Int("page_count", document.NumPage()).Msg("PDF document opened")
	return document, nil
}

type Document struct {
	path string
	doc  *gofitz.Document
}

func (d *Document) NumPage() int {
	return d.doc.NumPage()
}

// RenderPage rasterizes the zero-based page at dpi onto an opaque white page.
func (d *Document) RenderPage(index int, dpi float64) (image.Image, error) {
	if index < 0 || index >= d.NumPage() {
		return nil, fmt.Errorf("page %d out of range [1, %d]", index+1, d.NumPage())
	}

	img, err := d.doc.ImageDPI(index, dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d of %s: %w", index+1, d.path, err)
	}
	log.Debug().
		Str("file_path", d.path).
		Int("page", index+1).
		Float64("dpi", dpi).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("Page rendered")
	return img, nil
}

func (d *Document) Close() error {
	log.Debug().Str("file_path", d.path).Msg("Closing PDF document")
	return d.doc.Close()
}
