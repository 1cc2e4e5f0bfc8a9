package utils

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/belphemur/PlanExtractor/internal/plan"
	"github.com/belphemur/PlanExtractor/internal/utils/errs"
	"github.com/belphemur/PlanExtractor/pkg/converter"
	converterrors "github.com/belphemur/PlanExtractor/pkg/converter/errors"
	"github.com/belphemur/PlanExtractor/pkg/renderer"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

type ExtractOptions struct {
	Renderer   renderer.Renderer
	Converter  converter.Converter
	InputPath  string
	OutputPath string
	Options    plan.Options
}

// Report describes what a run produced.
type Report struct {
	OutputPath string
	// DocumentPages is the page count of the source document.
	DocumentPages int
	// Sheets holds every page that was attempted, in page order.
	Sheets []*plan.Sheet
	// Failures holds one PageFailedError per page that was not written.
	Failures []error
}

// Processed is the number of pages the run attempted.
func (r *Report) Processed() int {
	return len(r.Sheets)
}

// Written returns the sheets whose file was verified on disk.
func (r *Report) Written() []*plan.Sheet {
	written := lo.Filter(r.Sheets, func(sheet *plan.Sheet, _ int) bool {
		return sheet.Written
	})
	slices.SortFunc(written, func(a, b *plan.Sheet) int {
		return int(a.Index) - int(b.Index)
	})
	return written
}

// CreatedFile is an output file found on disk.
type CreatedFile struct {
	Name string
	Size int64
}

func (f CreatedFile) SizeMB() float64 {
	return float64(f.Size) / (1024 * 1024)
}

// Created lists the labelled output files present in the output folder, in label order.
func (r *Report) Created() []CreatedFile {
	return lo.FilterMap(plan.Labels[:], func(_ string, index int) (CreatedFile, bool) {
		name := plan.FileName(index)
		info, err := os.Stat(filepath.Join(r.OutputPath, name))
		if err != nil || !info.Mode().IsRegular() {
			return CreatedFile{}, false
		}
		return CreatedFile{Name: name, Size: info.Size()}, true
	})
}

// Extract renders the first pages of the input PDF and writes one JPEG per page.
//
// The output folder is created before anything else, so it exists even when
// the input is missing. A page whose file cannot be written, or whose bitmap is
// narrower than the crop, is logged and recorded in the report and the
// remaining pages are still processed. Every other failure ends the run with a
// MissingInputError, a MissingDependencyError or an UnexpectedError.
func Extract(ctx context.Context, options *ExtractOptions) (report *Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = converterrors.NewUnexpected(fmt.Errorf("panic: %v", r), debug.Stack())
		}
	}()

	log.Debug().
		Str("input_path", options.InputPath).
		Str("output_path", options.OutputPath).
		Int("crop_right", options.Options.CropRight).
		Int("target_width", options.Options.TargetWidth).
		Int("quality", options.Options.Quality).
		Int("dpi", options.Options.DPI).
		Msg("Starting extraction")

	report = &Report{OutputPath: options.OutputPath}

	err = EnsureFolder(options.OutputPath)
	if err != nil {
		return report, unexpected(fmt.Errorf("failed to create output folder %s: %w", options.OutputPath, err))
	}

	if !FileExists(options.InputPath) {
		log.Error().Str("input_path", options.InputPath).Msg("PDF not found")
		return report, converterrors.NewMissingInput(options.InputPath, fs.ErrNotExist)
	}

	err = options.Renderer.PrepareRenderer()
	if err != nil {
		return report, unexpected(fmt.Errorf("failed to prepare renderer: %w", err))
	}
	err = options.Converter.PrepareConverter()
	if err != nil {
		return report, unexpected(fmt.Errorf("failed to prepare converter: %w", err))
	}

	err = extractDocument(ctx, options, report)
	return report, err
}

// extractDocument holds the document open for the whole loop; it is closed on every return path.
func extractDocument(ctx context.Context, options *ExtractOptions, report *Report) (err error) {
	log.Info().Str("input_path", options.InputPath).Msg("Opening PDF")
	doc, err := options.Renderer.Open(options.InputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return converterrors.NewMissingInput(options.InputPath, err)
		}
		return unexpected(fmt.Errorf("failed to open PDF: %w", err))
	}
	// runs after the close below so a close failure is classified where it happened
	defer func() {
		err = unexpected(err)
	}()
	defer errs.Close(&err, doc, "failed to close PDF")

	report.DocumentPages = doc.NumPage()
	count := plan.PageCount(report.DocumentPages)
	log.Info().Int("page_count", report.DocumentPages).Int("to_process", count).Msg("PDF opened")

	for index := 0; index < count; index++ {
		if err := ctx.Err(); err != nil {
			return unexpected(err)
		}

		sheet := plan.NewSheet(index)
		report.Sheets = append(report.Sheets, sheet)
		log.Info().Msgf("Processing page %d/%d: %s", index+1, count, sheet.Label)

		err := extractSheet(ctx, doc, options, sheet)
		if err != nil {
			if !isPageFailure(err) {
				return err
			}
			log.Error().Err(err).Uint16("page", sheet.Index+1).Str("file", sheet.FileName()).Msg("Failed to save page")
			report.Failures = append(report.Failures, err)
			continue
		}

		log.Info().
			Str("file", sheet.FileName()).
			Str("size", fmt.Sprintf("%.2f MB", sheet.SizeMB())).
			Int("width", sheet.Output.X).
			Int("height", sheet.Output.Y).
			Msg("Saved")
	}

	return nil
}

// extractSheet renders, converts and writes one page. Render and convert
// failures come back as UnexpectedError; a page that cannot be cropped or
// saved comes back as PageFailedError.
func extractSheet(ctx context.Context, doc renderer.Document, options *ExtractOptions, sheet *plan.Sheet) error {
	index := int(sheet.Index)
	img, err := doc.RenderPage(index, float64(options.Options.DPI))
	if err != nil {
		return unexpected(fmt.Errorf("failed to render page %d: %w", index+1, err))
	}

	container := plan.NewContainer(sheet, img)
	log.Info().Msgf("Original size: %dx%d pixels @ %d DPI", sheet.Source.X, sheet.Source.Y, options.Options.DPI)

	converted, err := options.Converter.ConvertSheet(ctx, container, options.Options)
	var cropErr *converterrors.CropExceedsWidthError
	if errors.As(err, &cropErr) {
		return converterrors.NewPageFailed(index, sheet.Label, err)
	}
	if err != nil {
		return unexpected(fmt.Errorf("failed to convert page %d: %w", index+1, err))
	}
	if converted == nil || !converted.HasBeenConverted {
		return unexpected(fmt.Errorf("page %d was not converted", index+1))
	}
	log.Info().Msgf("Cropped size: %dx%d pixels", sheet.Cropped.X, sheet.Cropped.Y)
	log.Info().Msgf("Resized to: %dx%d pixels", sheet.Output.X, sheet.Output.Y)

	sheet.Path = filepath.Join(options.OutputPath, sheet.FileName())
	err = os.WriteFile(sheet.Path, sheet.Contents.Bytes(), 0o644)
	// the encoded bytes are not needed once written
	sheet.Contents = nil
	if err != nil {
		return converterrors.NewPageFailed(index, sheet.Label, fmt.Errorf("failed to write %s: %w", sheet.Path, err))
	}

	sheet.Written = FileExists(sheet.Path)
	if !sheet.Written {
		return converterrors.NewPageFailed(index, sheet.Label, fmt.Errorf("%s not found after writing", sheet.Path))
	}
	return nil
}

func isPageFailure(err error) bool {
	var pageErr *converterrors.PageFailedError
	return errors.As(err, &pageErr)
}

// unexpected keeps the known failure kinds and wraps anything else in an
// UnexpectedError carrying the stack of the caller.
func unexpected(err error) error {
	if err == nil {
		return nil
	}

	var missingInput *converterrors.MissingInputError
	var missingDependency *converterrors.MissingDependencyError
	var unexpectedErr *converterrors.UnexpectedError
	switch {
	case errors.As(err, &missingInput), errors.As(err, &missingDependency), errors.As(err, &unexpectedErr):
		return err
	default:
		return converterrors.NewUnexpected(err, debug.Stack())
	}
}
