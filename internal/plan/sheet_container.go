package plan

import (
	"bytes"
	"image"
)

// SheetContainer holds a sheet, the bitmap rendered for it and that bitmap's color mode.
type SheetContainer struct {
	// Sheet is the page being processed.
	Sheet *Sheet
	// Image is the rendered bitmap of the page.
	Image image.Image
	// Mode is the color mode of the rendered bitmap (e.g. "RGB", "RGBA", "CMYK").
	Mode string
	// HasBeenConverted is set once Sheet.Contents holds the encoded image.
	HasBeenConverted bool
}

func NewContainer(sheet *Sheet, img image.Image) *SheetContainer {
	sheet.Source = img.Bounds().Size()
	return &SheetContainer{Sheet: sheet, Image: img, Mode: ColorMode(img)}
}

// SetConverted stores the encoded image and its dimensions on the sheet.
func (sc *SheetContainer) SetConverted(converted *bytes.Buffer, output image.Point) {
	sc.Sheet.Contents = converted
	sc.Sheet.Size = uint64(converted.Len())
	sc.Sheet.Output = output
	sc.HasBeenConverted = true
}

// ColorMode names the color model of img.
func ColorMode(img image.Image) string {
	switch i := img.(type) {
	case *image.RGBA:
		if i.Opaque() {
			return "RGB"
		}
		return "RGBA"
	case *image.NRGBA:
		if i.Opaque() {
			return "RGB"
		}
		return "RGBA"
	case *image.RGBA64, *image.NRGBA64:
		return "RGBA64"
	case *image.Gray:
		return "L"
	case *image.Gray16:
		return "I;16"
	case *image.CMYK:
		return "CMYK"
	case *image.YCbCr:
		return "YCbCr"
	case *image.Paletted:
		return "P"
	default:
		return "unknown"
	}
}
