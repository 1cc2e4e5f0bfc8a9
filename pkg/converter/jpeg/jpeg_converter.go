package jpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/belphemur/PlanExtractor/internal/plan"
	"github.com/belphemur/PlanExtractor/pkg/converter/constant"
	converterrors "github.com/belphemur/PlanExtractor/pkg/converter/errors"
	"github.com/disintegration/imaging"
	"github.com/oliamb/cutter"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
)

type Converter struct {
	isPrepared bool
}

func (converter *Converter) Format() (format constant.ConversionFormat) {
	return constant.JPEG
}

func New() *Converter {
	return &Converter{
		isPrepared: false,
	}
}

func (converter *Converter) PrepareConverter() error {
	if converter.isPrepared {
		return nil
	}
	err := PrepareEncoder()
	if err != nil {
		return converterrors.NewMissingDependency("jpegli (JPEG encoder)", err,
			"the encoder runs as WebAssembly and needs no system library",
			"reinstall with: go install github.com/belphemur/PlanExtractor/cmd/planextractor@latest")
	}
	converter.isPrepared = true
	return nil
}

func (converter *Converter) ConvertSheet(ctx context.Context, container *plan.SheetContainer, options plan.Options) (*plan.SheetContainer, error) {
	err := converter.PrepareConverter()
	if err != nil {
		return nil, err
	}
	sheet := container.Sheet

	img := container.Image
	if container.Mode != "RGB" {
		log.Info().Uint16("page", sheet.Index+1).Str("mode", container.Mode).Msg("Converting to RGB mode")
		img = flatten(img)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cropped, err := converter.cropImage(img, options.CropRight)
	if err != nil {
		return nil, err
	}
	sheet.Cropped = cropped.Bounds().Size()
	log.Debug().
		Uint16("page", sheet.Index+1).
		Int("width", sheet.Cropped.X).
		Int("height", sheet.Cropped.Y).
		Int("removed", options.CropRight).
		Msg("Cropped right edge")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := options.OutputSize(sheet.Source.X, sheet.Source.Y)
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("page %d: %dx%d cannot be scaled to %dpx wide", sheet.Index+1, sheet.Cropped.X, sheet.Cropped.Y, options.TargetWidth)
	}
	resized := imaging.Resize(cropped, size.X, size.Y, imaging.Lanczos)
	log.Debug().
		Uint16("page", sheet.Index+1).
		Int("width", size.X).
		Int("height", size.Y).
		Msg("Resized with Lanczos filter")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	converted, err := converter.convert(resized, options)
	if err != nil {
		return nil, fmt.Errorf("page %d: failed to encode: %w", sheet.Index+1, err)
	}
	container.SetConverted(converted, resized.Bounds().Size())
	return container, nil
}

// cropImage removes a strip of width pixels from the right edge of img.
func (converter *Converter) cropImage(img image.Image, width int) (image.Image, error) {
	bounds := img.Bounds()
	if width >= bounds.Dx() {
		return nil, converterrors.NewCropExceedsWidth(bounds.Size(), width)
	}

	part, err := cutter.Crop(img, cutter.Config{
		Width:  bounds.Dx() - width,
		Height: bounds.Dy(),
		Anchor: bounds.Min,
		Mode:   cutter.TopLeft,
	})
	if err != nil {
		return nil, fmt.Errorf("error cropping right edge: %w", err)
	}
	return part, nil
}

// convert encodes img with the quality and density of options.
func (converter *Converter) convert(img image.Image, options plan.Options) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	err := Encode(&buf, img, options.Quality, options.DPI)
	if err != nil {
		return nil, err
	}

	return &buf, nil
}

// flatten draws img over an opaque white RGB canvas.
func flatten(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)
	xdraw.Draw(dst, dst.Bounds(), img, bounds.Min, xdraw.Over)
	return dst
}
