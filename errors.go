package labelzoom

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidArgument is returned, wrapped with detail, when a call is
// rejected before any I/O because of malformed input.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// FileError reports that a local source file could not be read.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("reading file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ConversionError reports that the remote conversion did not succeed.
// StatusCode is zero when no response was received.
type ConversionError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ConversionError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("conversion failed with status %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("conversion failed with status %d: %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("conversion failed: %v", e.Err)
	default:
		return "conversion failed"
	}
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Temporary reports whether repeating the same call could succeed. Server
// errors, rate limiting and transport failures are temporary; cancellation
// by the caller is not.
func (e *ConversionError) Temporary() bool {
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	if e.StatusCode == 0 || e.StatusCode == http.StatusOK {
		return e.Err != nil
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsInvalidArgument reports whether err was caused by malformed input.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsFileError reports whether err was caused by an unreadable source file.
func IsFileError(err error) bool {
	var fe *FileError
	return errors.As(err, &fe)
}

// IsConversionError reports whether err was caused by a failed remote call.
func IsConversionError(err error) bool {
	var ce *ConversionError
	return errors.As(err, &ce)
}
