package utils

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/belphemur/PlanExtractor/internal/plan"
	"github.com/belphemur/PlanExtractor/pkg/converter/constant"
	converterrors "github.com/belphemur/PlanExtractor/pkg/converter/errors"
	jpegconverter "github.com/belphemur/PlanExtractor/pkg/converter/jpeg"
	"github.com/belphemur/PlanExtractor/pkg/renderer"
	rendererconstant "github.com/belphemur/PlanExtractor/pkg/renderer/constant"
	"github.com/belphemur/PlanExtractor/pkg/renderer/fitz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockDocument renders opaque gradient pages of a fixed size
type MockDocument struct {
	pages    int
	size     image.Point
	failPage int
	closed   bool
	closeErr error
}

func (m *MockDocument) NumPage() int {
	return m.pages
}

func (m *MockDocument) RenderPage(index int, dpi float64) (image.Image, error) {
	if index == m.failPage {
		return nil, errors.New("mock render error")
	}
	img := image.NewRGBA(image.Rect(0, 0, m.size.X, m.size.Y))
	for y := 0; y < m.size.Y; y++ {
		for x := 0; x < m.size.X; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(index * 40), A: 255})
		}
	}
	return img, nil
}

func (m *MockDocument) Close() error {
	m.closed = true
	return m.closeErr
}

// MockRenderer hands out a single MockDocument
type MockRenderer struct {
	document   *MockDocument
	prepareErr error
	openErr    error
}

func (m *MockRenderer) Type() rendererconstant.RendererType {
	return rendererconstant.Fitz
}

func (m *MockRenderer) Open(path string) (renderer.Document, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.document, nil
}

func (m *MockRenderer) PrepareRenderer() error {
	return m.prepareErr
}

// PanickingConverter fails the way an unguarded library call would
type PanickingConverter struct{}

func (p *PanickingConverter) Format() constant.ConversionFormat {
	return constant.JPEG
}

func (p *PanickingConverter) ConvertSheet(ctx context.Context, container *plan.SheetContainer, options plan.Options) (*plan.SheetContainer, error) {
	panic("index out of range")
}

func (p *PanickingConverter) PrepareConverter() error {
	return nil
}

// FailingConverter rejects one page the way a broken encoder would
type FailingConverter struct {
	failPage int
}

func (f *FailingConverter) Format() constant.ConversionFormat {
	return constant.JPEG
}

func (f *FailingConverter) ConvertSheet(ctx context.Context, container *plan.SheetContainer, options plan.Options) (*plan.SheetContainer, error) {
	if int(container.Sheet.Index) == f.failPage {
		return nil, errors.New("mock encode error")
	}
	return jpegconverter.New().ConvertSheet(ctx, container, options)
}

func (f *FailingConverter) PrepareConverter() error {
	return nil
}

func newTestOptions(t *testing.T, r renderer.Renderer) *ExtractOptions {
	dir := t.TempDir()
	input := filepath.Join(dir, "plans.pdf")
	require.NoError(t, os.WriteFile(input, []byte("%PDF-1.4\n"), 0644))

	return &ExtractOptions{
		Renderer:   r,
		Converter:  jpegconverter.New(),
		InputPath:  input,
		OutputPath: filepath.Join(dir, "out", "3br-technical-plans"),
		Options:    plan.DefaultOptions(),
	}
}

func listOutput(t *testing.T, dir string) []string {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func decodeOutput(t *testing.T, path string) image.Image {
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	img, err := jpeg.Decode(file)
	require.NoError(t, err)
	return img
}

func TestExtract_RenderedDocument(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plans.pdf")
	// 480x360pt renders to 2000x1500px at 300 DPI
	require.NoError(t, os.WriteFile(input, fitz.BlankDocument(2, 480, 360), 0644))

	fitzRenderer, err := renderer.Get(rendererconstant.Fitz)
	require.NoError(t, err)

	options := &ExtractOptions{
		Renderer:   fitzRenderer,
		Converter:  jpegconverter.New(),
		InputPath:  input,
		OutputPath: filepath.Join(dir, "3br-technical-plans"),
		Options:    plan.DefaultOptions(),
	}

	report, err := Extract(context.Background(), options)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 2, report.DocumentPages)
	assert.Equal(t, 2, report.Processed())
	assert.Empty(t, report.Failures)
	assert.ElementsMatch(t, []string{"cover-page.jpg", "floor-plan-main.jpg"}, listOutput(t, options.OutputPath))

	for _, sheet := range report.Written() {
		assert.Equal(t, image.Pt(2000, 1500), sheet.Source)
		assert.Equal(t, image.Pt(1700, 1500), sheet.Cropped)

		img := decodeOutput(t, sheet.Path)
		assert.Equal(t, image.Pt(1400, 1235), img.Bounds().Size())
		_, ok := img.(*image.YCbCr)
		assert.True(t, ok, "expected three color channels, got %T", img)
	}
}

func TestExtract_PageCount(t *testing.T) {
	tests := []struct {
		name          string
		pages         int
		expectedFiles []string
	}{
		{
			name:          "More pages than labels",
			pages:         9,
			expectedFiles: plan.Labels[:],
		},
		{
			name:          "Exactly six pages",
			pages:         6,
			expectedFiles: plan.Labels[:],
		},
		{
			name:          "Three pages",
			pages:         3,
			expectedFiles: plan.Labels[:3],
		},
		{
			name:          "Empty document",
			pages:         0,
			expectedFiles: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			document := &MockDocument{pages: tt.pages, size: image.Pt(600, 320), failPage: -1}
			options := newTestOptions(t, &MockRenderer{document: document})

			report, err := Extract(context.Background(), options)
			require.NoError(t, err)

			assert.True(t, document.closed, "document must be closed")
			assert.Equal(t, len(tt.expectedFiles), report.Processed())
			assert.Len(t, report.Written(), len(tt.expectedFiles))

			created := report.Created()
			require.Len(t, created, len(tt.expectedFiles))
			for i, label := range tt.expectedFiles {
				assert.Equal(t, label+".jpg", created[i].Name)
				assert.Greater(t, created[i].Size, int64(0))

				img := decodeOutput(t, filepath.Join(options.OutputPath, created[i].Name))
				// 600-300 = 300 wide, 1400*320/300 = 1493 high
				assert.Equal(t, image.Pt(1400, 1493), img.Bounds().Size())
			}
		})
	}
}

func TestExtract_MissingInput(t *testing.T) {
	dir := t.TempDir()
	options := &ExtractOptions{
		Renderer:   &MockRenderer{document: &MockDocument{pages: 2, failPage: -1}},
		Converter:  jpegconverter.New(),
		InputPath:  filepath.Join(dir, "attached_assets", "missing.pdf"),
		OutputPath: filepath.Join(dir, "attached_assets", "3br-technical-plans"),
		Options:    plan.DefaultOptions(),
	}

	report, err := Extract(context.Background(), options)
	require.Error(t, err)

	var missingInput *converterrors.MissingInputError
	require.True(t, errors.As(err, &missingInput))
	assert.Equal(t, options.InputPath, missingInput.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.True(t, IsValidFolder(options.OutputPath), "output folder is created even without input")
	assert.Empty(t, listOutput(t, options.OutputPath))
	assert.Empty(t, report.Created())
}

func TestExtract_MissingDependency(t *testing.T) {
	mockRenderer := &MockRenderer{
		document:   &MockDocument{pages: 2, failPage: -1},
		prepareErr: converterrors.NewMissingDependency("MuPDF (PDF renderer)", errors.New("cannot create context")),
	}
	options := newTestOptions(t, mockRenderer)

	_, err := Extract(context.Background(), options)
	require.Error(t, err)

	var missingDependency *converterrors.MissingDependencyError
	require.True(t, errors.As(err, &missingDependency))
	assert.Equal(t, "MuPDF (PDF renderer)", missingDependency.Capability)
	assert.Empty(t, listOutput(t, options.OutputPath))
}

func TestExtract_RenderFailureAborts(t *testing.T) {
	document := &MockDocument{pages: 4, size: image.Pt(500, 200), failPage: 1}
	options := newTestOptions(t, &MockRenderer{document: document})

	report, err := Extract(context.Background(), options)
	require.Error(t, err, "a page that cannot be rendered ends the run")

	var unexpected *converterrors.UnexpectedError
	require.True(t, errors.As(err, &unexpected))
	assert.Contains(t, err.Error(), "failed to render page 2: mock render error")
	assert.Contains(t, string(unexpected.Stack), "utils.extractSheet", "stack is taken where the render failed")

	var pageErr *converterrors.PageFailedError
	assert.False(t, errors.As(err, &pageErr))
	assert.Empty(t, report.Failures)
	assert.Equal(t, 2, report.Processed(), "no page after the failing one is attempted")
	assert.True(t, document.closed)

	assert.Equal(t, []string{"cover-page.jpg"}, listOutput(t, options.OutputPath), "pages written before the fault are kept")
}

func TestExtract_WriteFailureContinues(t *testing.T) {
	document := &MockDocument{pages: 3, size: image.Pt(500, 200), failPage: -1}
	options := newTestOptions(t, &MockRenderer{document: document})
	// a directory in place of the second output file makes its write fail
	require.NoError(t, os.MkdirAll(filepath.Join(options.OutputPath, "floor-plan-main.jpg"), 0755))

	report, err := Extract(context.Background(), options)
	require.NoError(t, err, "a page that cannot be saved does not abort the run")

	assert.Equal(t, 3, report.Processed())
	require.Len(t, report.Failures, 1)

	var pageErr *converterrors.PageFailedError
	require.True(t, errors.As(report.Failures[0], &pageErr))
	assert.Equal(t, 1, pageErr.Index)
	assert.Equal(t, "floor-plan-main", pageErr.Label)
	assert.Contains(t, pageErr.Error(), "failed to write")

	written := report.Written()
	require.Len(t, written, 2)
	assert.Equal(t, "cover-page", written[0].Label)
	assert.Equal(t, "elevations-front-rear", written[1].Label)

	created := report.Created()
	require.Len(t, created, 2, "the blocking directory is not listed as a created file")
	assert.Equal(t, "cover-page.jpg", created[0].Name)
	assert.Equal(t, "elevations-front-rear.jpg", created[1].Name)
}

func TestExtract_CropExceedsWidth(t *testing.T) {
	document := &MockDocument{pages: 2, size: image.Pt(250, 200), failPage: -1}
	options := newTestOptions(t, &MockRenderer{document: document})

	report, err := Extract(context.Background(), options)
	require.NoError(t, err)

	require.Len(t, report.Failures, 2)
	var cropErr *converterrors.CropExceedsWidthError
	assert.True(t, errors.As(report.Failures[0], &cropErr))
	var pageErr *converterrors.PageFailedError
	assert.True(t, errors.As(report.Failures[1], &pageErr))
	assert.Equal(t, "floor-plan-main", pageErr.Label)
	assert.Empty(t, listOutput(t, options.OutputPath))
}

func TestExtract_UnexpectedErrors(t *testing.T) {
	t.Run("Panic closes the document", func(t *testing.T) {
		document := &MockDocument{pages: 2, size: image.Pt(400, 100), failPage: -1}
		options := newTestOptions(t, &MockRenderer{document: document})
		options.Converter = &PanickingConverter{}

		_, err := Extract(context.Background(), options)
		require.Error(t, err)

		var unexpected *converterrors.UnexpectedError
		require.True(t, errors.As(err, &unexpected))
		assert.Contains(t, unexpected.Error(), "index out of range")
		assert.NotEmpty(t, unexpected.Stack)
		assert.True(t, document.closed, "document must be closed on panic")
	})

	t.Run("Unreadable document", func(t *testing.T) {
		options := newTestOptions(t, &MockRenderer{openErr: errors.New("cannot open document")})

		_, err := Extract(context.Background(), options)
		var unexpected *converterrors.UnexpectedError
		require.True(t, errors.As(err, &unexpected))
		assert.Contains(t, string(unexpected.Stack), "utils.extractDocument")
	})

	t.Run("Convert failure aborts", func(t *testing.T) {
		document := &MockDocument{pages: 3, size: image.Pt(400, 100), failPage: -1}
		options := newTestOptions(t, &MockRenderer{document: document})
		options.Converter = &FailingConverter{failPage: 0}

		report, err := Extract(context.Background(), options)
		var unexpected *converterrors.UnexpectedError
		require.True(t, errors.As(err, &unexpected))
		assert.Contains(t, err.Error(), "failed to convert page 1: mock encode error")
		assert.Contains(t, string(unexpected.Stack), "utils.extractSheet")
		assert.Equal(t, 1, report.Processed())
		assert.Empty(t, report.Failures)
		assert.True(t, document.closed)
	})

	t.Run("Close failure is reported", func(t *testing.T) {
		document := &MockDocument{pages: 1, size: image.Pt(400, 100), failPage: -1, closeErr: errors.New("close failed")}
		options := newTestOptions(t, &MockRenderer{document: document})

		report, err := Extract(context.Background(), options)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to close PDF: close failed")
		var unexpected *converterrors.UnexpectedError
		require.True(t, errors.As(err, &unexpected))
		assert.Contains(t, string(unexpected.Stack), "utils.extractDocument")
		assert.Len(t, report.Written(), 1, "pages written before the fault are kept")
	})

	t.Run("Cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		document := &MockDocument{pages: 2, size: image.Pt(400, 100), failPage: -1}
		options := newTestOptions(t, &MockRenderer{document: document})

		_, err := Extract(ctx, options)
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, document.closed)
	})
}
