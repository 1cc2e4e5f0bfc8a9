package constant

import "fmt"

type RendererType int

const (
	// Fitz renders through MuPDF.
	Fitz RendererType = iota
)

var rendererNames = map[RendererType]string{
	Fitz: "fitz",
}

var DefaultRenderer = Fitz

func (r RendererType) String() string {
	if name, ok := rendererNames[r]; ok {
		return name
	}
	return fmt.Sprintf("renderer(%d)", r)
}
