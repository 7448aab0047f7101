// Package errors provides the error kinds raised while extracting, converting and transcoding pixel data.
package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is; the typed wrappers below add the offending identifiers.
var (
	ErrInvalidGeometry                      = errors.New("dicom: invalid pixel geometry")
	ErrFrameRange                           = errors.New("dicom: frame index out of range")
	ErrMissingData                          = errors.New("dicom: missing pixel data")
	ErrUnsupportedSyntax                    = errors.New("dicom: unsupported transfer syntax")
	ErrUnsupportedFragmentation             = errors.New("dicom: unsupported fragmentation")
	ErrUnsupportedBitDepth                  = errors.New("dicom: unsupported bit depth")
	ErrUnsupportedPlanarConfiguration       = errors.New("dicom: unsupported planar configuration")
	ErrUnsupportedPhotometricInterpretation = errors.New("dicom: unsupported photometric interpretation")
	ErrUnsupportedTranscoding               = errors.New("dicom: unsupported transcoding")
	ErrUnsupportedParameter                 = errors.New("dicom: unsupported codec parameter")
	ErrEngineNotInitialized                 = errors.New("dicom: codec engine not initialized")
	ErrEngine                               = errors.New("dicom: codec engine failure")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// SyntaxError ties an error to the transfer syntax being processed
type SyntaxError struct {
	Syntax string
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v [syntax: %s]", e.Err, e.Syntax)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// NewSyntaxError creates a new syntax error
func NewSyntaxError(syntax string, err error) *SyntaxError {
	return &SyntaxError{Syntax: syntax, Err: err}
}

// FrameError ties an error to a frame index
type FrameError struct {
	Index int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%v [frame: %d]", e.Err, e.Index)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// NewFrameError creates a new frame error
func NewFrameError(index int, err error) *FrameError {
	return &FrameError{Index: index, Err: err}
}

// TranscodeError records both endpoints of a failed transcoding
type TranscodeError struct {
	From string
	To   string
	Err  error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode %s -> %s: %v", e.From, e.To, e.Err)
}

func (e *TranscodeError) Unwrap() error {
	return e.Err
}

// NewTranscodeError creates a new transcode error
func NewTranscodeError(from, to string, err error) *TranscodeError {
	return &TranscodeError{From: from, To: to, Err: err}
}

// EngineError wraps a failure reported by an entropy coding backend.
// It matches both ErrEngine and the backend's own error.
type EngineError struct {
	Family string
	Op     string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%v: %s %s: %v", ErrEngine, e.Family, e.Op, e.Err)
}

func (e *EngineError) Unwrap() []error {
	return []error{ErrEngine, e.Err}
}

// NewEngineError creates a new engine error
func NewEngineError(family, op string, err error) *EngineError {
	return &EngineError{Family: family, Op: op, Err: err}
}

// Detail wraps kind with a message naming the violated precondition
func Detail(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
