package renderer

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/belphemur/PlanExtractor/pkg/renderer/constant"
	"github.com/belphemur/PlanExtractor/pkg/renderer/fitz"
	"github.com/samber/lo"
)

// Document gives page by page access to an open PDF.
type Document interface {
	// NumPage is the number of pages in the document.
	NumPage() int
	// RenderPage rasterizes the zero-based page at dpi, without alpha.
	RenderPage(index int, dpi float64) (image.Image, error)
	io.Closer
}

type Renderer interface {
	// Type of the renderer
	Type() constant.RendererType
	// Open opens the PDF at path. The caller must close the returned document.
	Open(path string) (Document, error)
	// PrepareRenderer checks that the rendering backend is usable.
	PrepareRenderer() error
}

type fitzRenderer struct {
	*fitz.Renderer
}

func (r fitzRenderer) Open(path string) (Document, error) {
	doc, err := r.Renderer.Open(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

var renderers = map[constant.RendererType]Renderer{
	constant.Fitz: fitzRenderer{fitz.New()},
}

// Available returns a list of available renderers.
func Available() []constant.RendererType {
	return lo.Keys(renderers)
}

// Get returns a renderer by type.
// If the renderer is not available, an error is returned.
var Get = getRenderer

func getRenderer(name constant.RendererType) (Renderer, error) {
	if renderer, ok := renderers[name]; ok {
		return renderer, nil
	}

	return nil, fmt.Errorf("unknown renderer \"%s\", available options are %s", name, strings.Join(lo.Map(Available(), func(item constant.RendererType, index int) string {
		return item.String()
	}), ", "))
}
