package jpeg

import (
	"bytes"
	"image"
	"io"

	"github.com/belphemur/PlanExtractor/internal/jfif"
	"github.com/gen2brain/jpegli"
)

// PrepareEncoder checks that jpegli can encode by compressing a single pixel.
func PrepareEncoder() error {
	pixel := image.NewRGBA(image.Rect(0, 0, 1, 1))
	return jpegli.Encode(io.Discard, pixel, &jpegli.EncodingOptions{Quality: 75})
}

// encodingOptions returns baseline libjpeg-compatible settings: sequential
// scan, standard quantization tables, no chroma subsampling nor Huffman
// table optimization.
func encodingOptions(quality int) *jpegli.EncodingOptions {
	return &jpegli.EncodingOptions{
		Quality:              quality,
		ChromaSubsampling:    image.YCbCrSubsampleRatio444,
		ProgressiveLevel:     0,
		OptimizeCoding:       false,
		AdaptiveQuantization: false,
		StandardQuantTables:  true,
	}
}

// Encode writes m as a baseline JPEG and records dpi in its JFIF header.
func Encode(w io.Writer, m image.Image, quality int, dpi int) error {
	var buf bytes.Buffer
	err := jpegli.Encode(&buf, m, encodingOptions(quality))
	if err != nil {
		return err
	}

	data, err := jfif.SetDensity(buf.Bytes(), jfif.Density{
		Unit: jfif.DotsPerInch,
		X:    uint16(dpi),
		Y:    uint16(dpi),
	})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
