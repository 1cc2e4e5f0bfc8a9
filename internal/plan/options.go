package plan

import "image"

// Options are the geometry and encoding parameters applied to every sheet.
type Options struct {
	// CropRight is the width in pixels removed from the right edge.
	CropRight int
	// TargetWidth is the exact width of the output.
	TargetWidth int
	// Quality is the JPEG quality, 1-100.
	Quality int
	// DPI is the render resolution and the density written to the output.
	DPI int
}

// DefaultOptions returns the fixed parameters of the extraction.
func DefaultOptions() Options {
	return Options{
		CropRight:   CropRight,
		TargetWidth: TargetWidth,
		Quality:     Quality,
		DPI:         DPI,
	}
}

// OutputSize is the size a width x height bitmap is scaled to once the
// right-hand strip is removed.
func (o Options) OutputSize(width, height int) image.Point {
	cropped := width - o.CropRight
	if cropped <= 0 || o.TargetWidth <= 0 {
		return image.Point{}
	}
	return image.Pt(o.TargetWidth, o.TargetWidth*height/cropped)
}
