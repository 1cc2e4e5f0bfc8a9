package errs

import (
	"errors"
	"fmt"
	"io"
)

// Capture runs errFunc and joins its error, if any, into *errPtr so a
// deferred cleanup failure is reported without hiding the original error.
func Capture(errPtr *error, errFunc func() error, msg string) {
	err := errFunc()
	if err == nil {
		return
	}
	*errPtr = errors.Join(*errPtr, fmt.Errorf("%s: %w", msg, err))
}

// Close is Capture for an io.Closer.
func Close(errPtr *error, closer io.Closer, msg string) {
	Capture(errPtr, closer.Close, msg)
}
