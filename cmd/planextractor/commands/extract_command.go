package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/belphemur/PlanExtractor/internal/plan"
	"github.com/belphemur/PlanExtractor/internal/utils"
	"github.com/belphemur/PlanExtractor/pkg/converter"
	"github.com/belphemur/PlanExtractor/pkg/converter/constant"
	converterrors "github.com/belphemur/PlanExtractor/pkg/converter/errors"
	"github.com/belphemur/PlanExtractor/pkg/renderer"
	rendererconstant "github.com/belphemur/PlanExtractor/pkg/renderer/constant"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var separator = strings.Repeat("=", 70)

// ExtractCommand runs the extraction with the fixed paths and parameters.
func ExtractCommand(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	options := plan.DefaultOptions()
	printBanner(out, options)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pdfRenderer, err := renderer.Get(rendererconstant.DefaultRenderer)
	if err != nil {
		return diagnose(out, converterrors.NewMissingDependency("PDF renderer", err))
	}
	sheetConverter, err := converter.Get(constant.DefaultConversion)
	if err != nil {
		return diagnose(out, converterrors.NewMissingDependency("JPEG converter", err))
	}

	report, err := utils.Extract(ctx, &utils.ExtractOptions{
		Renderer:   pdfRenderer,
		Converter:  sheetConverter,
		InputPath:  plan.InputPath,
		OutputPath: plan.OutputPath,
		Options:    options,
	})
	if err != nil {
		return diagnose(out, err)
	}

	printSummary(out, report, options)
	return nil
}

func printBanner(out io.Writer, options plan.Options) {
	fmt.Fprintln(out, separator)
	fmt.Fprintln(out, "3BR Technical Plans - Extract & Crop Tool")
	fmt.Fprintln(out, separator)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Image Specifications:")
	printSpecifications(out, options)
	fmt.Fprintf(out, "   Crop: %dpx from right edge (architect contact info)\n", options.CropRight)
	fmt.Fprintln(out)
	fmt.Fprintln(out, separator)
	fmt.Fprintln(out)
}

func printSpecifications(out io.Writer, options plan.Options) {
	fmt.Fprintln(out, "   Format: JPG")
	fmt.Fprintf(out, "   Quality: %d%% (maximum)\n", options.Quality)
	fmt.Fprintf(out, "   Resolution: %d DPI\n", options.DPI)
	fmt.Fprintf(out, "   Width: Exactly %d pixels\n", options.TargetWidth)
	fmt.Fprintln(out, "   Color: RGB mode")
}

func printSummary(out io.Writer, report *utils.Report, options plan.Options) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, separator)
	fmt.Fprintf(out, "SUCCESS! Processed %d pages\n", report.Processed())
	fmt.Fprintln(out, separator)
	fmt.Fprintln(out)

	location, err := filepath.Abs(report.OutputPath)
	if err != nil {
		location = report.OutputPath
	}
	fmt.Fprintln(out, "Output Location:")
	fmt.Fprintf(out, "   %s\n", location)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "All Images Meet Specifications:")
	printSpecifications(out, options)
	fmt.Fprintf(out, "   Architect contact info: REMOVED (cropped %dpx)\n", options.CropRight)
	fmt.Fprintln(out)
	fmt.Fprintln(out, separator)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Created Files:")
	for _, file := range report.Created() {
		fmt.Fprintf(out, "   %s (%.2f MB)\n", file.Name, file.SizeMB())
	}

	if len(report.Failures) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Failed Files:")
		lo.ForEach(report.Failures, func(err error, _ int) {
			fmt.Fprintf(out, "   %v\n", err)
		})
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next Steps:")
	fmt.Fprintf(out, "   1. Upload the JPG files from %s\n", plan.OutputPath)
	fmt.Fprintln(out, "   2. Point the 3BR executive model page at these images")
	fmt.Fprintln(out, "   3. Check them on the website")
	fmt.Fprintln(out)
}

// diagnose prints what went wrong and how to fix it, then returns err unchanged.
func diagnose(out io.Writer, err error) error {
	var missingInput *converterrors.MissingInputError
	var missingDependency *converterrors.MissingDependencyError
	var unexpected *converterrors.UnexpectedError

	switch {
	case errors.As(err, &missingInput):
		log.Error().Str("input_path", missingInput.Path).Msg("PDF not found")
		fmt.Fprintf(out, "Error: PDF not found at %s\n", missingInput.Path)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Make sure:")
		fmt.Fprintln(out, "   1. You're running this tool from the project root folder")
		fmt.Fprintf(out, "   2. The PDF exists in the %s folder\n", filepath.Dir(missingInput.Path))
		fmt.Fprintf(out, "   3. Filename is exactly: %s\n", filepath.Base(missingInput.Path))
	case errors.As(err, &missingDependency):
		log.Error().Err(missingDependency.Err).Str("capability", missingDependency.Capability).Msg("Missing required library")
		fmt.Fprintln(out, "Error: Missing required library")
		fmt.Fprintf(out, "   %s\n", missingDependency.Capability)
		if missingDependency.Err != nil {
			fmt.Fprintf(out, "   %v\n", missingDependency.Err)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Install required libraries:")
		for _, line := range missingDependency.Guidance {
			fmt.Fprintf(out, "   %s\n", line)
		}
	default:
		log.Error().Err(err).Msg("Unexpected error")
		fmt.Fprintf(out, "Unexpected Error: %v\n", err)
		fmt.Fprintln(out)
		if errors.As(err, &unexpected) && len(unexpected.Stack) > 0 {
			fmt.Fprintln(out, string(unexpected.Stack))
		}
		fmt.Fprintln(out, "If the error persists:")
		fmt.Fprintln(out, "   1. Check PDF file is not corrupted")
		fmt.Fprintf(out, "   2. Ensure you have write permissions to %s\n", filepath.Dir(plan.OutputPath))
		fmt.Fprintln(out, "   3. Try closing any programs that might have the PDF open")
	}
	return err
}
