package errors

import (
	"fmt"
	"image"
)

// MissingInputError is returned when the source document is not at its expected path.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("PDF not found at %s", e.Path)
}

func (e *MissingInputError) Unwrap() error {
	return e.Err
}

func NewMissingInput(path string, err error) error {
	return &MissingInputError{Path: path, Err: err}
}

// MissingDependencyError is returned when a rendering or imaging capability is unusable.
type MissingDependencyError struct {
	// Capability names what is missing, e.g. "MuPDF renderer".
	Capability string
	// Guidance tells the user how to install it.
	Guidance []string
	Err      error
}

func (e *MissingDependencyError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("missing required library: %s", e.Capability)
	}
	return fmt.Sprintf("missing required library: %s: %v", e.Capability, e.Err)
}

func (e *MissingDependencyError) Unwrap() error {
	return e.Err
}

func NewMissingDependency(capability string, err error, guidance ...string) error {
	return &MissingDependencyError{Capability: capability, Guidance: guidance, Err: err}
}

// UnexpectedError wraps a failure that is neither a missing input nor a missing dependency.
type UnexpectedError struct {
	Err error
	// Stack is the trace captured where the failure surfaced.
	Stack []byte
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

func NewUnexpected(err error, stack []byte) error {
	return &UnexpectedError{Err: err, Stack: stack}
}

// PageFailedError records a page that could not be written. It never aborts a run.
type PageFailedError struct {
	Index int
	Label string
	Err   error
}

func (e *PageFailedError) Error() string {
	return fmt.Sprintf("failed to save %s (page %d): %v", e.Label, e.Index+1, e.Err)
}

func (e *PageFailedError) Unwrap() error {
	return e.Err
}

func NewPageFailed(index int, label string, err error) error {
	return &PageFailedError{Index: index, Label: label, Err: err}
}

// CropExceedsWidthError is returned when the strip to remove is at least as wide as the bitmap.
type CropExceedsWidthError struct {
	Size image.Point
	Crop int
}

func (e *CropExceedsWidthError) Error() string {
	return fmt.Sprintf("cannot crop %dpx from a %dx%d image", e.Crop, e.Size.X, e.Size.Y)
}

func NewCropExceedsWidth(size image.Point, crop int) error {
	return &CropExceedsWidthError{Size: size, Crop: crop}
}
