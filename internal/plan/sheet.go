package plan

import (
	"bytes"
	"image"
)

type Sheet struct {
	// Index of the page in the source document, zero-based.
	Index uint16 `json:"index"`
	// Label the output file is named after.
	Label string `json:"label"`
	// Source is the size of the 300 DPI render before cropping.
	Source image.Point `json:"source"`
	// Cropped is the size once the right-hand strip is removed.
	Cropped image.Point `json:"cropped"`
	// Output is the size of the encoded image.
	Output image.Point `json:"output"`
	// Size of the encoded image in bytes
	Size uint64 `json:"size"`
	// Contents of the encoded image
	Contents *bytes.Buffer `json:"-"`
	// Path the image was written to.
	Path string `json:"path"`
	// Written is set once Path has been verified on disk.
	Written bool `json:"written"`
}

// NewSheet returns the sheet for the page at index, labelled from Labels.
func NewSheet(index int) *Sheet {
	return &Sheet{
		Index: uint16(index),
		Label: Labels[index],
	}
}

// FileName is the name of the output file for this sheet.
func (s *Sheet) FileName() string {
	return FileName(int(s.Index))
}

// SizeMB is the encoded size in mebibytes.
func (s *Sheet) SizeMB() float64 {
	return float64(s.Size) / (1024 * 1024)
}
